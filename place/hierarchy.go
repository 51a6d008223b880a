package place

import (
	"net/url"
	"strings"

	"github.com/teranos/twitgraph/errors"
	"github.com/teranos/twitgraph/model"
	"github.com/teranos/twitgraph/store"
	"github.com/teranos/twitgraph/vocab"
)

// parentType is the type of the feature directly containing a place of the
// given type, when the full name names one.
var parentType = map[model.PlaceType]model.PlaceType{
	model.PlaceNeighborhood: model.PlaceCity,
	model.PlaceCity:         model.PlaceAdmin,
}

// Hierarchy returns the assertions placing p, stored as handle, inside its
// containing features. The full name "Oakland, CA" of a city yields the
// region "CA", which in turn lies in the place's country.
func Hierarchy(p model.Place, handle store.Value) ([]store.Assertion, error) {
	if !handle.IsIRI() {
		return nil, errors.NewInvalidRequestError("place handle must be an IRI, got %s", handle)
	}

	var out []store.Assertion
	add := func(s, pred, o store.Value) {
		out = append(out, store.Assertion{Subject: s, Predicate: pred, Object: o, Context: store.NewIRI(vocab.CoreGraph)})
	}
	describe := func(feature store.Value, class, name string) {
		add(feature, store.NewIRI(vocab.RDFType), store.NewIRI(vocab.GeoNamesFeature))
		add(feature, store.NewIRI(vocab.RDFType), store.NewIRI(class))
		add(feature, store.NewIRI(vocab.GeoNamesName), store.NewLiteral(name, ""))
	}
	parentFeature := store.NewIRI(vocab.GeoNamesParentFeature)

	var country store.Value
	if p.CountryCode != "" && p.Type != model.PlaceCountry {
		country = store.NewIRI(vocab.LocationPath + "country/" + url.PathEscape(strings.ToUpper(p.CountryCode)))
		name := p.Country
		if name == "" {
			name = strings.ToUpper(p.CountryCode)
		}
		describe(country, vocab.DBpediaCountry, name)
	}

	child := handle
	if pt, ok := parentType[p.Type]; ok {
		if region := containingName(p); region != "" {
			parent := store.NewIRI(vocab.LocationPath + string(pt) + "/" +
				url.PathEscape(strings.ToUpper(p.CountryCode)) + "/" + url.PathEscape(region))
			describe(parent, Class(pt), region)
			add(child, parentFeature, parent)
			child = parent
		}
	}
	if country.IsIRI() {
		add(child, parentFeature, country)
	}
	return out, nil
}

// containingName is the part of the full name after the place's own name.
func containingName(p model.Place) string {
	parts := strings.SplitN(p.FullName, ",", 2)
	if len(parts) < 2 {
		return ""
	}
	name := strings.TrimSpace(parts[1])
	if name == "" || strings.EqualFold(name, p.Name) || strings.EqualFold(name, p.Country) {
		return ""
	}
	return name
}

// Class maps a place type to its DBpedia class, or "" when unknown.
func Class(t model.PlaceType) string {
	switch t {
	case model.PlaceCountry:
		return vocab.DBpediaCountry
	case model.PlaceAdmin:
		return vocab.DBpediaAdministrativeDivision
	case model.PlaceCity:
		return vocab.DBpediaCity
	case model.PlaceNeighborhood:
		return vocab.DBpediaNeighborhood
	case model.PlacePOI:
		return vocab.DBpediaPointOfInterest
	}
	return ""
}
