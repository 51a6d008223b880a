// Package model defines the things that can occupy the subject, predicate or
// object position of an assertion, plus the microblog message that carries
// them.
//
// Resource is a closed union: only the types in this package implement it.
// Code that must handle every variant implements Visitor and dispatches
// through Visit, so adding a variant means adding a Visitor method, and every
// existing visitor stops compiling until it handles the new case.
package model

import (
	"fmt"
	"strings"
)

// Kind identifies a Resource variant.
type Kind int

const (
	KindIdentifier Kind = iota
	KindPlainLiteral
	KindTypedLiteral
	KindTag
	KindAccount
	KindPerson
	KindMessage
)

func (k Kind) String() string {
	switch k {
	case KindIdentifier:
		return "identifier"
	case KindPlainLiteral:
		return "plain_literal"
	case KindTypedLiteral:
		return "typed_literal"
	case KindTag:
		return "tag"
	case KindAccount:
		return "account"
	case KindPerson:
		return "person"
	case KindMessage:
		return "message"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Resource is anything that can appear in an assertion.
type Resource interface {
	Kind() Kind
	// Key is the identity of the resource: two resources with equal keys are
	// the same logical resource.
	Key() string
	String() string
	isResource()
}

// Identifier is an opaque IRI reference.
type Identifier struct {
	IRI string
}

// PlainLiteral is untyped text.
type PlainLiteral struct {
	Label string
}

// TypedLiteral is text with a datatype IRI.
type TypedLiteral struct {
	Label    string
	Datatype string
}

// TagKind distinguishes hashtags from dollartags.
type TagKind int

const (
	Hashtag TagKind = iota
	Dollartag
)

// Prefix returns the sigil the tag is written with.
func (k TagKind) Prefix() string {
	if k == Dollartag {
		return "$"
	}
	return "#"
}

// Tag is a short hash- or dollar-prefixed token. Tags compare
// case-insensitively; Name is stored lower-cased by NewTag.
type Tag struct {
	TagKind TagKind
	Name    string
}

// NewTag builds a Tag with a normalised name.
func NewTag(kind TagKind, name string) Tag {
	return Tag{TagKind: kind, Name: strings.ToLower(name)}
}

// Account is a platform handle. Handles are case-sensitive.
type Account struct {
	Handle string
}

// HeldBy returns the Person holding the account. The relation is stable:
// the same handle always yields the same Person.
func (a Account) HeldBy() Person {
	return Person{Account: a}
}

// Person is the real-world entity behind an Account.
type Person struct {
	Account Account
}

func (Identifier) Kind() Kind   { return KindIdentifier }
func (PlainLiteral) Kind() Kind { return KindPlainLiteral }
func (TypedLiteral) Kind() Kind { return KindTypedLiteral }
func (Tag) Kind() Kind          { return KindTag }
func (Account) Kind() Kind      { return KindAccount }
func (Person) Kind() Kind       { return KindPerson }
func (*Message) Kind() Kind     { return KindMessage }

func (r Identifier) Key() string   { return "i|" + r.IRI }
func (r PlainLiteral) Key() string { return "l|" + r.Label }
func (r TypedLiteral) Key() string { return "t|" + r.Datatype + "|" + r.Label }
func (r Tag) Key() string          { return "g|" + r.TagKind.Prefix() + r.Name }
func (r Account) Key() string      { return "a|" + r.Handle }
func (r Person) Key() string       { return "p|" + r.Account.Handle }
func (m *Message) Key() string     { return "m|" + m.ID }

func (r Identifier) String() string   { return "<" + r.IRI + ">" }
func (r PlainLiteral) String() string { return fmt.Sprintf("%q", r.Label) }
func (r TypedLiteral) String() string { return fmt.Sprintf("%q^^<%s>", r.Label, r.Datatype) }
func (r Tag) String() string          { return r.TagKind.Prefix() + r.Name }
func (r Account) String() string      { return "@" + r.Handle }
func (r Person) String() string       { return "person(@" + r.Account.Handle + ")" }
func (m *Message) String() string     { return "message(" + m.ID + ")" }

func (Identifier) isResource()   {}
func (PlainLiteral) isResource() {}
func (TypedLiteral) isResource() {}
func (Tag) isResource()          {}
func (Account) isResource()      {}
func (Person) isResource()       {}
func (*Message) isResource()     {}

// Same reports whether a and b are the same logical resource.
func Same(a, b Resource) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Key() == b.Key()
}
