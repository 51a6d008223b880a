package afterthought

import (
	"regexp"
	"strings"

	"github.com/teranos/twitgraph/model"
)

var linkPattern = regexp.MustCompile(`https?://[^\s<>"()]+`)

// Topics returns the distinct hashtags and dollartags in text, in order of
// first appearance.
func Topics(text string) []model.Tag {
	var tags []model.Tag
	seen := map[string]bool{}
	pos := 0
	for {
		ref, ok := nextReference(text, pos)
		if !ok {
			return tags
		}
		pos = ref.end
		if ref.sigil == '@' {
			continue
		}
		tag := ref.resource().(model.Tag)
		if seen[tag.Key()] {
			continue
		}
		seen[tag.Key()] = true
		tags = append(tags, tag)
	}
}

// Links returns the distinct http and https URLs in text, in order of first
// appearance. Trailing sentence punctuation is not part of a link.
func Links(text string) []model.Identifier {
	var links []model.Identifier
	seen := map[string]bool{}
	for _, raw := range linkPattern.FindAllString(text, -1) {
		u := strings.TrimRight(raw, ".,;:!?'")
		if seen[u] || strings.HasSuffix(u, "://") {
			continue
		}
		seen[u] = true
		links = append(links, model.Identifier{IRI: u})
	}
	return links
}
