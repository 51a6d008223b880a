package persist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teranos/twitgraph/model"
	"github.com/teranos/twitgraph/store"
	"github.com/teranos/twitgraph/vocab"
)

func TestPersistIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	c := NewContext(zap.NewNop().Sugar())
	ctx := context.Background()
	person := model.Account{Handle: "joshsh"}.HeldBy()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	sess := c.Session(tx)
	first, err := sess.Persist(ctx, person)
	require.NoError(t, err)
	second, err := sess.Persist(ctx, person)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	sess.Committed()
	assert.Equal(t, first, second)

	tx, err = s.Begin(ctx)
	require.NoError(t, err)
	third, err := c.Session(tx).Persist(ctx, model.Person{Account: model.Account{Handle: "joshsh"}})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.Equal(t, first, third)

	assert.Equal(t, store.NewIRI(vocab.PersonPath+"joshsh"), first)
	assert.Len(t, about(t, s, first), 2, "type and holdsAccount, written once")
	assert.Len(t, about(t, s, store.NewIRI(vocab.UserPath+"joshsh")), 2, "type and id, written once")
}

func TestRolledBackSessionLeavesContextClean(t *testing.T) {
	s := newTestStore(t)
	c := NewContext(nil)
	ctx := context.Background()
	account := model.Account{Handle: "xixiluo"}

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = c.Session(tx).Persist(ctx, account)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	tx, err = s.Begin(ctx)
	require.NoError(t, err)
	sess := c.Session(tx)
	v, err := sess.Persist(ctx, account)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	sess.Committed()

	assert.Len(t, about(t, s, v), 2, "description written again after rollback")
}

func TestForgetRedescribes(t *testing.T) {
	s := newTestStore(t)
	c := NewContext(nil)
	ctx := context.Background()
	tag := model.NewTag(model.Hashtag, "semweb")

	persist := func() store.Value {
		tx, err := s.Begin(ctx)
		require.NoError(t, err)
		sess := c.Session(tx)
		v, err := sess.Persist(ctx, tag)
		require.NoError(t, err)
		require.NoError(t, tx.Commit())
		sess.Committed()
		return v
	}

	v := persist()
	_, err := s.Clear(ctx)
	require.NoError(t, err)

	persist()
	assert.Empty(t, about(t, s, v), "cached resources are not rewritten")

	c.Forget()
	persist()
	assert.Len(t, about(t, s, v), 1)
}

func TestValueOf(t *testing.T) {
	tests := []struct {
		name string
		r    model.Resource
		want store.Value
	}{
		{"identifier", model.Identifier{IRI: "http://ex/a"}, store.NewIRI("http://ex/a")},
		{"plain literal", model.PlainLiteral{Label: "hi"}, store.NewLiteral("hi", "")},
		{"typed literal", model.TypedLiteral{Label: "3", Datatype: vocab.XSDInteger}, store.NewLiteral("3", vocab.XSDInteger)},
		{"hashtag", model.NewTag(model.Hashtag, "Go"), store.NewIRI(vocab.HashtagPath + "go")},
		{"dollartag", model.NewTag(model.Dollartag, "AAPL"), store.NewIRI(vocab.DollartagPath + "aapl")},
		{"account", model.Account{Handle: "a_b"}, store.NewIRI(vocab.UserPath + "a_b")},
		{"person", model.Account{Handle: "a_b"}.HeldBy(), store.NewIRI(vocab.PersonPath + "a_b")},
		{"message", &model.Message{ID: "42"}, store.NewIRI(vocab.PostPath + "42")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValueOf(tt.r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ValueOf(model.Identifier{})
	assert.Error(t, err)
	_, err = ValueOf(&model.Message{})
	assert.Error(t, err)
	_, err = ValueOf(nil)
	assert.Error(t, err)
}

func TestPointIRIIsDeterministic(t *testing.T) {
	a := PointIRI(model.Point{Lat: 37.8, Long: -122.27})
	b := PointIRI(model.Point{Lat: 37.8, Long: -122.27})
	c := PointIRI(model.Point{Lat: 37.8, Long: -122.28})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
