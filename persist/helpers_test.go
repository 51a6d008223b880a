package persist

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teranos/twitgraph/errors"
	tgtest "github.com/teranos/twitgraph/internal/testing"
	"github.com/teranos/twitgraph/model"
	"github.com/teranos/twitgraph/store"
)

func newTestStore(t *testing.T) *store.SQLStore {
	return store.NewSQLStore(tgtest.CreateTestDB(t), zap.NewNop().Sugar())
}

func readAll(t *testing.T, s store.Store, p store.Pattern) []store.Assertion {
	t.Helper()
	got, err := store.ReadAll(context.Background(), s, p)
	require.NoError(t, err)
	return got
}

func has(t *testing.T, s store.Store, subject, predicate, object, graph store.Value) bool {
	t.Helper()
	return len(readAll(t, s, store.Pattern{Subject: &subject, Predicate: &predicate, Object: &object, Context: &graph})) > 0
}

func about(t *testing.T, s store.Store, subject store.Value) []store.Assertion {
	t.Helper()
	return readAll(t, s, store.Pattern{Subject: &subject})
}

// faultyStore injects failures into an otherwise working store.
type faultyStore struct {
	store.Store
	failAdd    func(store.Assertion) bool
	failCommit func(added []store.Assertion) bool
}

func (f *faultyStore) Begin(ctx context.Context) (store.Tx, error) {
	tx, err := f.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &faultyTx{Tx: tx, f: f}, nil
}

type faultyTx struct {
	store.Tx
	f     *faultyStore
	added []store.Assertion
}

func (t *faultyTx) Add(ctx context.Context, a store.Assertion) error {
	if t.f.failAdd != nil && t.f.failAdd(a) {
		return errors.MarkPersistence(errors.New("injected add failure"), "insert assertion")
	}
	t.added = append(t.added, a)
	return t.Tx.Add(ctx, a)
}

func (t *faultyTx) Commit() error {
	if t.f.failCommit != nil && t.f.failCommit(t.added) {
		_ = t.Tx.Rollback()
		return errors.MarkPersistence(errors.New("injected commit failure"), "commit transaction")
	}
	return t.Tx.Commit()
}

func mentions(added []store.Assertion, subject store.Value) bool {
	for _, a := range added {
		if a.Subject == subject {
			return true
		}
	}
	return false
}

// countingResolver counts flushes and can fail them.
type countingResolver struct {
	mu        sync.Mutex
	submitted []model.Place
	flushes   int
	err       error
}

func (r *countingResolver) Submit(p model.Place, _ store.Value) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitted = append(r.submitted, p)
}

func (r *countingResolver) Flush(context.Context, store.Tx) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushes++
	if r.err != nil {
		return errors.Mark(errors.Wrap(r.err, "resolve place"), errors.ErrResolver)
	}
	return nil
}

type orderListener struct {
	mu    sync.Mutex
	added []store.Assertion
}

func (l *orderListener) AssertionAdded(a store.Assertion) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.added = append(l.added, a)
}

func (l *orderListener) AssertionRemoved(store.Assertion) {}

func (l *orderListener) firstIndex(match func(store.Assertion) bool) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, a := range l.added {
		if match(a) {
			return i
		}
	}
	return -1
}
