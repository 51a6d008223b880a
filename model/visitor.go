package model

import "github.com/teranos/twitgraph/errors"

// Visitor handles each Resource variant.
type Visitor[T any] interface {
	VisitIdentifier(Identifier) (T, error)
	VisitPlainLiteral(PlainLiteral) (T, error)
	VisitTypedLiteral(TypedLiteral) (T, error)
	VisitTag(Tag) (T, error)
	VisitAccount(Account) (T, error)
	VisitPerson(Person) (T, error)
	VisitMessage(*Message) (T, error)
}

// Visit dispatches r to the matching Visitor method.
func Visit[T any](r Resource, v Visitor[T]) (T, error) {
	switch x := r.(type) {
	case Identifier:
		return v.VisitIdentifier(x)
	case PlainLiteral:
		return v.VisitPlainLiteral(x)
	case TypedLiteral:
		return v.VisitTypedLiteral(x)
	case Tag:
		return v.VisitTag(x)
	case Account:
		return v.VisitAccount(x)
	case Person:
		return v.VisitPerson(x)
	case *Message:
		return v.VisitMessage(x)
	}
	var zero T
	if r == nil {
		return zero, errors.AssertionFailedf("visit of nil resource")
	}
	return zero, errors.AssertionFailedf("unhandled resource kind: %s", r.Kind())
}
