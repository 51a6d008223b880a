package persist

import (
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/teranos/twitgraph/errors"
	"github.com/teranos/twitgraph/model"
	"github.com/teranos/twitgraph/store"
	"github.com/teranos/twitgraph/vocab"
)

// pointNamespace scopes name-based point ids.
var pointNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte(vocab.PointPath))

// MessageIRI is the IRI minted for a message.
func MessageIRI(m *model.Message) store.Value {
	return store.NewIRI(vocab.PostPath + url.PathEscape(m.ID))
}

// GraphIRI is the context graph holding the knowledge extracted from m.
func GraphIRI(m *model.Message) store.Value {
	return store.NewIRI(vocab.GraphPath + url.PathEscape(m.ID))
}

// PointIRI is the IRI minted for a coordinate. Equal coordinates share it.
func PointIRI(p model.Point) store.Value {
	name := strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Long, 'f', -1, 64)
	return store.NewIRI(vocab.PointPath + uuid.NewSHA1(pointNamespace, []byte(name)).String())
}

// PlaceIRI is the IRI minted for a place.
func PlaceIRI(p model.Place) store.Value {
	return store.NewIRI(vocab.LocationPath + url.PathEscape(p.ID))
}

// ValueOf converts a resource to its store value without writing anything.
func ValueOf(r model.Resource) (store.Value, error) {
	return model.Visit[store.Value](r, valueVisitor{})
}

type valueVisitor struct{}

func (valueVisitor) VisitIdentifier(r model.Identifier) (store.Value, error) {
	if r.IRI == "" {
		return store.Value{}, errors.NewInvalidRequestError("empty identifier")
	}
	return store.NewIRI(r.IRI), nil
}

func (valueVisitor) VisitPlainLiteral(r model.PlainLiteral) (store.Value, error) {
	return store.NewLiteral(r.Label, ""), nil
}

func (valueVisitor) VisitTypedLiteral(r model.TypedLiteral) (store.Value, error) {
	return store.NewLiteral(r.Label, r.Datatype), nil
}

func (valueVisitor) VisitTag(r model.Tag) (store.Value, error) {
	base := vocab.HashtagPath
	if r.TagKind == model.Dollartag {
		base = vocab.DollartagPath
	}
	return store.NewIRI(base + url.PathEscape(r.Name)), nil
}

func (valueVisitor) VisitAccount(r model.Account) (store.Value, error) {
	return store.NewIRI(vocab.UserPath + url.PathEscape(r.Handle)), nil
}

func (valueVisitor) VisitPerson(r model.Person) (store.Value, error) {
	return store.NewIRI(vocab.PersonPath + url.PathEscape(r.Account.Handle)), nil
}

func (valueVisitor) VisitMessage(m *model.Message) (store.Value, error) {
	if m.ID == "" {
		return store.Value{}, errors.NewInvalidRequestError("message without id")
	}
	return MessageIRI(m), nil
}
