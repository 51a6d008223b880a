// Package afterthought extracts facts from parenthetical clauses that follow
// a handle or tag in microblog text, such as "@joshsh (who knows @xixiluo)".
//
// Matching is best-effort: a clause that states no known predicate yields no
// annotations and never an error.
package afterthought

import (
	"regexp"

	"github.com/teranos/twitgraph/errors"
	"github.com/teranos/twitgraph/model"
)

// Matcher recognises one predicate phrase in a normalised clause.
type Matcher interface {
	// Name is the predicate phrase pattern, for logs.
	Name() string
	// Match returns the annotation the clause states about subject, if any.
	Match(subject model.Resource, clause string) (model.Annotation, bool)
}

// An optional relative pronoun may open any clause.
const pronoun = `(?:(?i:who|which|that)\s+)?`

// Option configures a matcher.
type Option func(*options)

type options struct {
	weight       float64
	datatype     string
	valuePattern string
}

// WithWeight sets the confidence weight of produced annotations. 0 (the
// default) means certain.
func WithWeight(w float64) Option {
	return func(o *options) { o.weight = w }
}

// WithDatatype makes a datatype-property matcher produce typed literals.
func WithDatatype(iri string) Option {
	return func(o *options) { o.datatype = iri }
}

// WithValuePattern restricts the values a datatype-property matcher accepts.
// The pattern must match the whole value.
func WithValuePattern(pattern string) Option {
	return func(o *options) { o.valuePattern = pattern }
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ObjectProperty matches "<phrase> @handle" and relates the subject to the
// Person holding the handle.
type ObjectProperty struct {
	predicate model.Identifier
	phrase    string
	weight    float64
	re        *regexp.Regexp
}

// NewObjectProperty compiles a matcher for predicate, recognised by phrase.
// The phrase is a regular expression matched case-insensitively; the handle
// after it is matched case-sensitively.
func NewObjectProperty(predicate, phrase string, opts ...Option) (*ObjectProperty, error) {
	o := applyOptions(opts)
	re, err := regexp.Compile(`^` + pronoun + `(?i:(?:` + phrase + `))\s*@(?P<handle>[A-Za-z0-9_]+(?:\.[A-Za-z0-9_-]+)*)[.!?,;]*$`)
	if err != nil {
		return nil, errors.Wrapf(err, "compile object property phrase %q", phrase)
	}
	return &ObjectProperty{
		predicate: model.Identifier{IRI: predicate},
		phrase:    phrase,
		weight:    o.weight,
		re:        re,
	}, nil
}

// MustObjectProperty is like NewObjectProperty but panics on a bad phrase.
func MustObjectProperty(predicate, phrase string, opts ...Option) *ObjectProperty {
	m, err := NewObjectProperty(predicate, phrase, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *ObjectProperty) Name() string { return m.phrase }

func (m *ObjectProperty) Match(subject model.Resource, clause string) (model.Annotation, bool) {
	groups := m.re.FindStringSubmatch(clause)
	if groups == nil {
		return model.Annotation{}, false
	}
	handle := groups[m.re.SubexpIndex("handle")]
	return model.Annotation{
		Subject:   subject,
		Predicate: m.predicate,
		Object:    model.Account{Handle: handle}.HeldBy(),
		Weight:    m.weight,
	}, true
}

// DatatypeProperty matches "<phrase> value" and relates the subject to the
// value as a literal.
type DatatypeProperty struct {
	predicate model.Identifier
	phrase    string
	datatype  string
	weight    float64
	re        *regexp.Regexp
	value     *regexp.Regexp
}

// NewDatatypeProperty compiles a matcher for predicate, recognised by phrase.
// The value may be separated from the phrase by whitespace, a colon or "is".
func NewDatatypeProperty(predicate, phrase string, opts ...Option) (*DatatypeProperty, error) {
	o := applyOptions(opts)
	re, err := regexp.Compile(`^` + pronoun + `(?i:(?:` + phrase + `))(?:\s*:\s*|\s+)(?:(?i:is)\s+)?(?P<value>\S.*)$`)
	if err != nil {
		return nil, errors.Wrapf(err, "compile datatype property phrase %q", phrase)
	}
	m := &DatatypeProperty{
		predicate: model.Identifier{IRI: predicate},
		phrase:    phrase,
		datatype:  o.datatype,
		weight:    o.weight,
		re:        re,
	}
	if o.valuePattern != "" {
		m.value, err = regexp.Compile(`^(?:` + o.valuePattern + `)$`)
		if err != nil {
			return nil, errors.Wrapf(err, "compile value pattern %q", o.valuePattern)
		}
	}
	return m, nil
}

// MustDatatypeProperty is like NewDatatypeProperty but panics on a bad
// pattern.
func MustDatatypeProperty(predicate, phrase string, opts ...Option) *DatatypeProperty {
	m, err := NewDatatypeProperty(predicate, phrase, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *DatatypeProperty) Name() string { return m.phrase }

func (m *DatatypeProperty) Match(subject model.Resource, clause string) (model.Annotation, bool) {
	groups := m.re.FindStringSubmatch(clause)
	if groups == nil {
		return model.Annotation{}, false
	}
	value := groups[m.re.SubexpIndex("value")]
	if m.value != nil && !m.value.MatchString(value) {
		return model.Annotation{}, false
	}
	var object model.Resource = model.PlainLiteral{Label: value}
	if m.datatype != "" {
		object = model.TypedLiteral{Label: value, Datatype: m.datatype}
	}
	return model.Annotation{
		Subject:   subject,
		Predicate: m.predicate,
		Object:    object,
		Weight:    m.weight,
	}, true
}
