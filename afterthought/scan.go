package afterthought

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/teranos/twitgraph/model"
)

var (
	// Handles may carry dotted domain parts (alice.bsky.social); a trailing
	// dot is sentence punctuation, not part of the handle.
	handleName = regexp.MustCompile(`^[A-Za-z0-9_]+(?:\.[A-Za-z0-9_-]+)*`)
	// Hashtags need at least one letter so "#1" is not a tag.
	hashtagName = regexp.MustCompile(`^[A-Za-z0-9_]*[A-Za-z][A-Za-z0-9_]*`)
	// Dollartags start with a letter so "$5" is not a tag.
	dollartagName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*`)
)

// reference is a sigil-prefixed token found in message text.
type reference struct {
	sigil byte
	name  string
	start int
	end   int
}

// resource returns what the reference denotes when it is a clause subject:
// the Person holding a handle, or the Tag itself.
func (r reference) resource() model.Resource {
	switch r.sigil {
	case '@':
		return model.Account{Handle: r.name}.HeldBy()
	case '$':
		return model.NewTag(model.Dollartag, r.name)
	default:
		return model.NewTag(model.Hashtag, r.name)
	}
}

// span is a subject reference and the parenthetical clauses following it.
type span struct {
	subject model.Resource
	clauses []string
}

// nextReference finds the first reference at or after pos.
func nextReference(text string, pos int) (reference, bool) {
	for i := pos; i < len(text); i++ {
		c := text[i]
		if c != '@' && c != '#' && c != '$' {
			continue
		}
		if !atWordBoundary(text, i) {
			continue
		}
		var re *regexp.Regexp
		switch c {
		case '@':
			re = handleName
		case '#':
			re = hashtagName
		default:
			re = dollartagName
		}
		name := re.FindString(text[i+1:])
		if name == "" {
			continue
		}
		return reference{sigil: c, name: name, start: i, end: i + 1 + len(name)}, true
	}
	return reference{}, false
}

// atWordBoundary is false when the byte at i continues a word, as the '@' in
// an email address does.
func atWordBoundary(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !(r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r))
}

// scan splits text into subject spans. A reference followed by no clause is
// skipped and scanning resumes right after it; otherwise scanning resumes
// after its last clause. Clauses do not nest: the first ')' closes a clause,
// and an unterminated clause ends the span.
func scan(text string) []span {
	var spans []span
	pos := 0
	for {
		ref, ok := nextReference(text, pos)
		if !ok {
			return spans
		}
		clauses, next := readClauses(text, ref.end)
		if len(clauses) > 0 {
			spans = append(spans, span{subject: ref.resource(), clauses: clauses})
		}
		pos = next
	}
}

func readClauses(text string, pos int) ([]string, int) {
	var clauses []string
	next := pos
	i := skipSpace(text, pos)
	for i < len(text) && text[i] == '(' {
		closing := strings.IndexByte(text[i+1:], ')')
		if closing < 0 {
			break
		}
		clauses = append(clauses, normalize(text[i+1:i+1+closing]))
		next = i + 1 + closing + 1
		i = skipSpace(text, next)
	}
	return clauses, next
}

func skipSpace(text string, i int) int {
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}

// normalize collapses whitespace runs to single spaces and trims the ends.
func normalize(clause string) string {
	return strings.Join(strings.Fields(clause), " ")
}
