package place

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teranos/twitgraph/errors"
	tgtest "github.com/teranos/twitgraph/internal/testing"
	"github.com/teranos/twitgraph/model"
	"github.com/teranos/twitgraph/store"
	"github.com/teranos/twitgraph/vocab"
)

var oakland = model.Place{
	ID:          "5a110d312052166f",
	Name:        "Oakland",
	FullName:    "Oakland, CA",
	Type:        model.PlaceCity,
	Country:     "United States",
	CountryCode: "us",
}

func parents(as []store.Assertion) map[string]string {
	out := map[string]string{}
	for _, a := range as {
		if a.Predicate.Text == vocab.GeoNamesParentFeature {
			out[a.Subject.Text] = a.Object.Text
		}
	}
	return out
}

func TestHierarchyCity(t *testing.T) {
	handle := store.NewIRI(vocab.LocationPath + oakland.ID)
	got, err := Hierarchy(oakland, handle)
	require.NoError(t, err)

	region := vocab.LocationPath + "admin/US/CA"
	country := vocab.LocationPath + "country/US"
	assert.Equal(t, map[string]string{
		handle.Text: region,
		region:      country,
	}, parents(got))

	for _, a := range got {
		assert.Equal(t, vocab.CoreGraph, a.Context.Text)
	}
}

func TestHierarchyNeighborhood(t *testing.T) {
	mission := model.Place{ID: "m1", Name: "Mission", FullName: "Mission, San Francisco", Type: model.PlaceNeighborhood, CountryCode: "US"}
	handle := store.NewIRI(vocab.LocationPath + "m1")
	got, err := Hierarchy(mission, handle)
	require.NoError(t, err)

	city := vocab.LocationPath + "city/US/San%20Francisco"
	assert.Equal(t, city, parents(got)[handle.Text])
	assert.Equal(t, vocab.LocationPath+"country/US", parents(got)[city])
}

func TestHierarchyWithoutRegion(t *testing.T) {
	tests := []struct {
		name  string
		place model.Place
		want  map[string]string
	}{
		{
			name:  "admin links to country",
			place: model.Place{ID: "ca", Name: "California", FullName: "California, US", Type: model.PlaceAdmin, CountryCode: "US"},
			want:  map[string]string{vocab.LocationPath + "ca": vocab.LocationPath + "country/US"},
		},
		{
			name:  "country has no parent",
			place: model.Place{ID: "us", Name: "United States", FullName: "United States", Type: model.PlaceCountry, CountryCode: "US"},
			want:  map[string]string{},
		},
		{
			name:  "no country code",
			place: model.Place{ID: "x", Name: "Nowhere", FullName: "Nowhere", Type: model.PlaceCity},
			want:  map[string]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Hierarchy(tt.place, store.NewIRI(vocab.LocationPath+tt.place.ID))
			require.NoError(t, err)
			assert.Equal(t, tt.want, parents(got))
		})
	}
}

func TestHierarchyRejectsLiteralHandle(t *testing.T) {
	_, err := Hierarchy(oakland, store.NewLiteral("oakland", ""))
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestQueueResolverFlushesIntoTransaction(t *testing.T) {
	s := store.NewSQLStore(tgtest.CreateTestDB(t), nil)
	r := NewQueueResolver(4, zap.NewNop().Sugar())
	defer r.Close()

	ctx := context.Background()
	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	r.Submit(oakland, store.NewIRI(vocab.LocationPath+oakland.ID))
	require.NoError(t, r.Flush(ctx, tx))
	require.NoError(t, tx.Commit())

	parent := store.NewIRI(vocab.GeoNamesParentFeature)
	got, err := store.ReadAll(ctx, s, store.Pattern{Predicate: &parent})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// The queue is empty after a flush.
	tx, err = s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, r.Flush(ctx, tx))
	require.NoError(t, tx.Commit())
}

func TestQueueResolverConcurrentSubmit(t *testing.T) {
	r := NewQueueResolver(1, nil)
	defer r.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Submit(oakland, store.NewIRI(vocab.LocationPath+oakland.ID))
		}()
	}
	wg.Wait()

	tx := &recordingTx{}
	require.NoError(t, r.Flush(context.Background(), tx))
	assert.Len(t, tx.added, 8*len(mustHierarchy(t, oakland)))
}

func TestQueueResolverFailure(t *testing.T) {
	r := NewQueueResolver(1, nil)
	defer r.Close()

	r.Submit(oakland, store.NewLiteral("not an iri", ""))
	r.Submit(oakland, store.NewIRI(vocab.LocationPath+oakland.ID))

	tx := &recordingTx{}
	err := r.Flush(context.Background(), tx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrResolver))
	assert.Empty(t, tx.added, "no partial hierarchy")

	require.NoError(t, r.Flush(context.Background(), tx), "failure is reported once")
}

func TestQueueResolverSubmitAfterClose(t *testing.T) {
	r := NewQueueResolver(1, nil)
	r.Close()
	r.Close()

	r.Submit(oakland, store.NewIRI(vocab.LocationPath+oakland.ID))
	assert.NoError(t, r.Flush(context.Background(), &recordingTx{}))
}

func TestClass(t *testing.T) {
	assert.Equal(t, vocab.DBpediaCity, Class(model.PlaceCity))
	assert.Equal(t, vocab.DBpediaPointOfInterest, Class(model.PlacePOI))
	assert.Equal(t, "", Class(model.PlaceType("galaxy")))
}

func mustHierarchy(t *testing.T, p model.Place) []store.Assertion {
	t.Helper()
	as, err := Hierarchy(p, store.NewIRI(vocab.LocationPath+p.ID))
	require.NoError(t, err)
	return as
}

type recordingTx struct {
	added []store.Assertion
}

func (r *recordingTx) Add(_ context.Context, a store.Assertion) error {
	r.added = append(r.added, a)
	return nil
}

func (r *recordingTx) Commit() error   { return nil }
func (r *recordingTx) Rollback() error { return nil }
