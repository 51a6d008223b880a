// Package store is the graph store: a set of subject/predicate/object
// assertions, each scoped to a context graph.
//
// Writes go through transactions. Listeners registered on a store hear about
// assertions once the transaction that added them commits, synchronously on
// the committing goroutine.
package store

import (
	"context"
	"fmt"
	"strings"
)

// Kind distinguishes IRIs from literals.
type Kind int

const (
	IRI Kind = iota
	Literal
)

// Value is a store-native term.
type Value struct {
	Kind     Kind
	Text     string
	Datatype string // literals only; empty for plain literals
}

// NewIRI returns an IRI value.
func NewIRI(iri string) Value {
	return Value{Kind: IRI, Text: iri}
}

// NewLiteral returns a literal value. datatype may be empty.
func NewLiteral(label, datatype string) Value {
	return Value{Kind: Literal, Text: label, Datatype: datatype}
}

// IsIRI reports whether v is an IRI.
func (v Value) IsIRI() bool {
	return v.Kind == IRI && v.Text != ""
}

// String renders v as an N-Quads term.
func (v Value) String() string {
	if v.Kind == IRI {
		return "<" + escapeIRI(v.Text) + ">"
	}
	lit := `"` + escapeLiteral(v.Text) + `"`
	if v.Datatype != "" {
		lit += "^^<" + escapeIRI(v.Datatype) + ">"
	}
	return lit
}

// Assertion is a stored fact.
type Assertion struct {
	ID        string
	Subject   Value
	Predicate Value
	Object    Value
	Context   Value
}

// String renders the assertion as one N-Quads line without the newline.
func (a Assertion) String() string {
	return fmt.Sprintf("%s %s %s %s .", a.Subject, a.Predicate, a.Object, a.Context)
}

// SameFact reports whether a and b state the same quad, ignoring row ids.
func (a Assertion) SameFact(b Assertion) bool {
	return a.Subject == b.Subject && a.Predicate == b.Predicate &&
		a.Object == b.Object && a.Context == b.Context
}

// Pattern selects assertions. Nil fields match anything.
type Pattern struct {
	Subject   *Value
	Predicate *Value
	Object    *Value
	Context   *Value
}

// Listener hears about committed changes.
type Listener interface {
	AssertionAdded(a Assertion)
	AssertionRemoved(a Assertion)
}

// Cursor is a lazy sequence of assertions. Callers must Close it.
type Cursor interface {
	Next() bool
	Assertion() Assertion
	Err() error
	Close() error
}

// Tx is a write transaction. Rollback after Commit is a no-op, so callers
// may defer it.
type Tx interface {
	// Add stages an assertion. Re-adding a stored assertion is not an error.
	Add(ctx context.Context, a Assertion) error
	Commit() error
	Rollback() error
}

// Store is the graph store contract the persister writes through.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
	Read(ctx context.Context, p Pattern) (Cursor, error)
	RemoveContext(ctx context.Context, graph Value) (int64, error)
	RegisterListener(l Listener)
}

func escapeIRI(s string) string {
	if !strings.ContainsAny(s, "<>\"{}|^`\\ \n\r\t") {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r <= 0x20 || strings.ContainsRune("<>\"{}|^`\\", r):
			fmt.Fprintf(&b, `\u%04X`, r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func escapeLiteral(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
