package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeldByIsStable(t *testing.T) {
	a := Account{Handle: "joshsh"}
	assert.Equal(t, a.HeldBy(), Account{Handle: "joshsh"}.HeldBy())
	assert.True(t, Same(a.HeldBy(), Person{Account: a}))
}

func TestHandlesAreCaseSensitive(t *testing.T) {
	assert.False(t, Same(Account{Handle: "Bb"}, Account{Handle: "bb"}))
	assert.False(t, Same(Account{Handle: "Bb"}.HeldBy(), Account{Handle: "bb"}.HeldBy()))
}

func TestTagsAreCaseInsensitive(t *testing.T) {
	assert.True(t, Same(NewTag(Hashtag, "GoLang"), NewTag(Hashtag, "golang")))
	assert.False(t, Same(NewTag(Hashtag, "go"), NewTag(Dollartag, "go")))
	assert.Equal(t, "$aapl", NewTag(Dollartag, "AAPL").String())
}

func TestKeysDistinguishKinds(t *testing.T) {
	resources := []Resource{
		Identifier{IRI: "x"},
		PlainLiteral{Label: "x"},
		TypedLiteral{Label: "x", Datatype: "d"},
		NewTag(Hashtag, "x"),
		Account{Handle: "x"},
		Person{Account: Account{Handle: "x"}},
		&Message{ID: "x"},
	}
	seen := map[string]Kind{}
	for _, r := range resources {
		prev, dup := seen[r.Key()]
		require.False(t, dup, "key %q shared by %s and %s", r.Key(), prev, r.Kind())
		seen[r.Key()] = r.Kind()
	}
}

func TestMessageIdentityIsByID(t *testing.T) {
	a := &Message{ID: "42", Text: "one"}
	b := &Message{ID: "42", Text: "two"}
	assert.True(t, Same(a, b))
	assert.False(t, Same(a, nil))
	assert.True(t, Same(nil, nil))
}

func TestAncestors(t *testing.T) {
	parent := &Message{ID: "1"}
	source := &Message{ID: "2"}

	assert.Empty(t, (&Message{ID: "3"}).Ancestors())
	assert.Equal(t, []*Message{parent, source}, (&Message{ID: "3", InReplyTo: parent, RetweetOf: source}).Ancestors())
	assert.Equal(t, []*Message{source}, (&Message{ID: "3", RetweetOf: source}).Ancestors())
}

func TestAnnotationEqual(t *testing.T) {
	a := Annotation{
		Subject:   Account{Handle: "a"}.HeldBy(),
		Predicate: Identifier{IRI: "http://xmlns.com/foaf/0.1/knows"},
		Object:    Account{Handle: "b"}.HeldBy(),
	}
	b := a
	assert.True(t, a.Equal(b))
	b.Weight = 0.5
	assert.False(t, a.Equal(b))
}

type kindNamer struct{}

func (kindNamer) VisitIdentifier(Identifier) (string, error)     { return "identifier", nil }
func (kindNamer) VisitPlainLiteral(PlainLiteral) (string, error) { return "plain", nil }
func (kindNamer) VisitTypedLiteral(TypedLiteral) (string, error) { return "typed", nil }
func (kindNamer) VisitTag(Tag) (string, error)                   { return "tag", nil }
func (kindNamer) VisitAccount(Account) (string, error)           { return "account", nil }
func (kindNamer) VisitPerson(Person) (string, error)             { return "person", nil }
func (kindNamer) VisitMessage(*Message) (string, error)          { return "message", nil }

func TestVisitDispatch(t *testing.T) {
	tests := []struct {
		r    Resource
		want string
	}{
		{Identifier{IRI: "x"}, "identifier"},
		{PlainLiteral{Label: "x"}, "plain"},
		{TypedLiteral{Label: "1", Datatype: "d"}, "typed"},
		{NewTag(Hashtag, "x"), "tag"},
		{Account{Handle: "x"}, "account"},
		{Person{Account: Account{Handle: "x"}}, "person"},
		{&Message{ID: "x"}, "message"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := Visit[string](tt.r, kindNamer{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Visit[string](nil, kindNamer{})
	assert.Error(t, err)
}
