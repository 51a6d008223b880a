package afterthought

import (
	"go.uber.org/zap"

	"github.com/teranos/twitgraph/logger"
	"github.com/teranos/twitgraph/model"
)

// Extractor runs a fixed matcher set over message text. It holds no mutable
// state and may be shared between goroutines.
type Extractor struct {
	matchers []Matcher
	logger   *zap.SugaredLogger
}

// NewExtractor builds an extractor. With no matchers it uses
// DefaultMatchers.
func NewExtractor(log *zap.SugaredLogger, matchers ...Matcher) *Extractor {
	if len(matchers) == 0 {
		matchers = DefaultMatchers()
	}
	return &Extractor{matchers: matchers, logger: logger.OrNop(log)}
}

// Extract returns the annotations stated in text, ordered by clause position
// and then matcher registration order.
func (e *Extractor) Extract(text string) []model.Annotation {
	var out []model.Annotation
	for _, s := range scan(text) {
		for _, clause := range s.clauses {
			matched := false
			for _, m := range e.matchers {
				if a, ok := m.Match(s.subject, clause); ok {
					out = append(out, a)
					matched = true
				}
			}
			if !matched {
				e.logger.Debugw("Clause matched no predicate",
					logger.FieldSubject, s.subject.String(),
					"clause", clause)
			}
		}
	}
	return out
}

// Annotate fills the topics, links and annotations of msg from its text.
// Ancestors are left alone.
func (e *Extractor) Annotate(msg *model.Message) {
	msg.Topics = Topics(msg.Text)
	msg.Links = Links(msg.Text)
	msg.Annotations = e.Extract(msg.Text)
}
