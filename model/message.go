package model

import (
	"fmt"
	"time"
)

// Message is a microblog post together with the structure the source
// platform attached to it.
//
// InReplyTo and RetweetOf point at other messages; the ancestry formed by
// following them is expected to be acyclic. Persisters guard against cycles
// but do not report them as errors.
type Message struct {
	ID        string
	Text      string
	CreatedAt time.Time
	Author    *Account
	Geo       *Point
	Place     *Place
	InReplyTo *Message
	RetweetOf *Message

	// Topics and Links are entities found in Text.
	Topics []Tag
	Links  []Identifier

	// Annotations are facts extracted from afterthought clauses in Text.
	// They live only for the handling of this message.
	Annotations []Annotation
}

// HasAnnotations reports whether the message carries extracted facts.
func (m *Message) HasAnnotations() bool {
	return len(m.Annotations) > 0
}

// Describe returns a one-line summary for logs.
func (m *Message) Describe() string {
	author := "?"
	if m.Author != nil {
		author = "@" + m.Author.Handle
	}
	return fmt.Sprintf("[%s] %s: %q (annotations=%d)", m.ID, author, m.Text, len(m.Annotations))
}

// Ancestors returns the direct reply-parent and retweet-source, in that
// order, skipping absent ones.
func (m *Message) Ancestors() []*Message {
	var out []*Message
	if m.InReplyTo != nil {
		out = append(out, m.InReplyTo)
	}
	if m.RetweetOf != nil {
		out = append(out, m.RetweetOf)
	}
	return out
}

// Point is a precise geographic coordinate.
type Point struct {
	Lat  float64
	Long float64
}

// PlaceType is the granularity of a Place.
type PlaceType string

const (
	PlaceCountry      PlaceType = "country"
	PlaceAdmin        PlaceType = "admin"
	PlaceCity         PlaceType = "city"
	PlaceNeighborhood PlaceType = "neighborhood"
	PlacePOI          PlaceType = "poi"
)

// Place is a coarse named location as reported by the source platform.
// FullName usually reads "City, Region" and is what place resolvers use to
// build the containment hierarchy.
type Place struct {
	ID          string
	Name        string
	FullName    string
	Type        PlaceType
	Country     string
	CountryCode string
}
