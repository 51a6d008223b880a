// Package ingest feeds messages from a source through knowledge extraction
// into a persister.
package ingest

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/teranos/twitgraph/afterthought"
	"github.com/teranos/twitgraph/errors"
	"github.com/teranos/twitgraph/logger"
	"github.com/teranos/twitgraph/model"
	"github.com/teranos/twitgraph/sym"
)

// Handler persists a fully annotated message. *persist.Persister satisfies it.
type Handler interface {
	Handle(ctx context.Context, msg *model.Message) error
}

// Source produces messages until it is exhausted or ctx is cancelled.
// Run calls emit once per message, in arrival order, and stops early when
// emit returns an error.
type Source interface {
	Run(ctx context.Context, emit func(*model.Message) error) error
}

// Pipeline annotates messages and hands them to a Handler one at a time.
type Pipeline struct {
	extractor *afterthought.Extractor
	handler   Handler
	logger    *zap.SugaredLogger

	mu sync.Mutex

	handled atomic.Int64
	failed  atomic.Int64
}

// NewPipeline creates a pipeline. A nil extractor uses the default matchers.
func NewPipeline(extractor *afterthought.Extractor, handler Handler, log *zap.SugaredLogger) *Pipeline {
	log = logger.OrNop(log)
	if extractor == nil {
		extractor = afterthought.NewExtractor(log)
	}
	return &Pipeline{extractor: extractor, handler: handler, logger: log}
}

// Handle annotates msg and every message in its ancestry, then persists it.
// Calls are serialised.
func (p *Pipeline) Handle(ctx context.Context, msg *model.Message) error {
	if msg == nil {
		return errors.NewInvalidRequestError("nil message")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.annotate(msg, map[*model.Message]bool{})

	if err := p.handler.Handle(ctx, msg); err != nil {
		p.failed.Add(1)
		return err
	}
	p.handled.Add(1)
	return nil
}

func (p *Pipeline) annotate(msg *model.Message, seen map[*model.Message]bool) {
	if seen[msg] {
		return
	}
	seen[msg] = true
	p.extractor.Annotate(msg)
	for _, ancestor := range msg.Ancestors() {
		p.annotate(ancestor, seen)
	}
}

// Run consumes src until it ends. Failures to persist a message are logged
// and do not stop the stream; only a source failure or cancellation ends it.
func (p *Pipeline) Run(ctx context.Context, src Source) error {
	err := src.Run(ctx, func(msg *model.Message) error {
		if err := p.Handle(ctx, msg); err != nil {
			if errors.Is(err, errors.ErrClosed) {
				return errors.Wrap(err, "store closed during ingest")
			}
			log := p.logger
			if msg != nil {
				log = logger.ChildLogger(log, logger.FieldMessageID, msg.ID)
			}
			if errors.IsHandlingError(err) {
				log.Errorw("Message not persisted", logger.FieldError, err)
			} else {
				log.Warnw("Message persisted with errors", logger.FieldError, err)
			}
		}
		return ctx.Err()
	})
	handled, failed := p.Stats()
	p.logger.Infow("Ingest finished",
		"handled", handled,
		"failed", failed,
		logger.FieldSymbol, sym.IX)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stats returns how many messages were handled cleanly and how many failed.
func (p *Pipeline) Stats() (handled, failed int64) {
	return p.handled.Load(), p.failed.Load()
}
