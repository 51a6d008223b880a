package distribute

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teranos/twitgraph/errors"
	tgtest "github.com/teranos/twitgraph/internal/testing"
	"github.com/teranos/twitgraph/store"
)

func named(name string) store.Assertion {
	return store.Assertion{
		Subject:   store.NewIRI("http://ex/" + name),
		Predicate: store.NewIRI("http://ex/p"),
		Object:    store.NewLiteral(name, ""),
		Context:   store.NewIRI("http://ex/g"),
	}
}

func names(as []store.Assertion) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.Object.Text
	}
	return out
}

func TestOverflowPolicies(t *testing.T) {
	tests := []struct {
		policy Policy
		want   []string
	}{
		{DropOldest, []string{"C", "D"}},
		{DropMostRecent, []string{"A", "B"}},
	}
	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			q, err := NewQueue(2, tt.policy, zap.NewNop().Sugar())
			require.NoError(t, err)
			for _, n := range []string{"A", "B", "C", "D"} {
				q.Offer(named(n))
			}
			assert.Equal(t, tt.want, names(q.Drain()))
		})
	}
}

func TestOfferReportsKept(t *testing.T) {
	q, err := NewQueue(1, DropMostRecent, nil)
	require.NoError(t, err)
	assert.True(t, q.Offer(named("A")))
	assert.False(t, q.Offer(named("B")))
	evicted, dropped := q.Stats()
	assert.Equal(t, int64(0), evicted)
	assert.Equal(t, int64(1), dropped)

	q.SetPolicy(DropOldest)
	assert.True(t, q.Offer(named("C")))
	evicted, _ = q.Stats()
	assert.Equal(t, int64(1), evicted)
	assert.Equal(t, []string{"C"}, names(q.Drain()))
}

func TestNewQueueValidates(t *testing.T) {
	_, err := NewQueue(0, DropOldest, nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
	_, err = NewQueue(1, Policy(7), nil)
	assert.Error(t, err)
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{
		"drop_oldest":       DropOldest,
		"DropOldest":        DropOldest,
		" drop_most_recent": DropMostRecent,
		"DROPMOSTRECENT":    DropMostRecent,
	} {
		got, err := ParsePolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParsePolicy("drop_everything")
	assert.Error(t, err)
}

func TestTakeBlocksUntilOffer(t *testing.T) {
	q, err := NewQueue(4, DropOldest, nil)
	require.NoError(t, err)

	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Offer(named("late"))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a, err := q.Take(ctx)
	require.NoError(t, err)
	assert.Equal(t, "late", a.Object.Text)
}

func TestTakeHonoursContext(t *testing.T) {
	q, err := NewQueue(1, DropOldest, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = q.Take(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDropOldestUnderConcurrentLoad(t *testing.T) {
	q, err := NewQueue(8, DropOldest, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				assert.True(t, q.Offer(named(fmt.Sprintf("%d-%d", p, i))))
			}
		}(p)
	}
	wg.Wait()

	assert.Equal(t, 8, q.Len())
	evicted, dropped := q.Stats()
	assert.Equal(t, int64(4*500-8), evicted)
	assert.Equal(t, int64(0), dropped)
}

func TestQueueListensToStore(t *testing.T) {
	s := store.NewSQLStore(tgtest.CreateTestDB(t), nil)
	q, err := NewQueue(16, DropOldest, nil)
	require.NoError(t, err)
	s.RegisterListener(q)

	ctx := context.Background()
	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Add(ctx, named("A")))
	require.NoError(t, tx.Add(ctx, named("B")))
	require.NoError(t, tx.Commit())

	_, err = s.RemoveContext(ctx, store.NewIRI("http://ex/g"))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, names(q.Drain()), "removals are not distributed")
}

func TestConsume(t *testing.T) {
	q, err := NewQueue(4, DropOldest, nil)
	require.NoError(t, err)
	q.Offer(named("A"))
	q.Offer(named("B"))

	var seen []string
	stop := errors.New("stop")
	err = q.Consume(context.Background(), func(a store.Assertion) error {
		seen = append(seen, a.Object.Text)
		if len(seen) == 2 {
			return stop
		}
		return nil
	})
	assert.True(t, errors.Is(err, stop))
	assert.Equal(t, []string{"A", "B"}, seen)
}
