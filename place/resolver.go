// Package place builds the containment hierarchy of places attached to
// messages: a city lies in a region, a region in a country.
//
// Resolution runs on its own goroutine. Its writes are queued and only reach
// the store when the persister flushes them into its open transaction.
package place

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/teranos/twitgraph/errors"
	"github.com/teranos/twitgraph/logger"
	"github.com/teranos/twitgraph/model"
	"github.com/teranos/twitgraph/store"
)

// Resolver resolves place hierarchies.
type Resolver interface {
	// Submit queues resolution of p, already stored as handle.
	Submit(p model.Place, handle store.Value)
	// Flush waits for queued work and writes its results into tx.
	Flush(ctx context.Context, tx store.Tx) error
}

// Nop resolves nothing.
type Nop struct{}

func (Nop) Submit(model.Place, store.Value)       {}
func (Nop) Flush(context.Context, store.Tx) error { return nil }

type job struct {
	place  model.Place
	handle store.Value
}

// QueueResolver resolves places on a background goroutine.
type QueueResolver struct {
	jobs   chan job
	done   chan struct{}
	logger *zap.SugaredLogger

	mu       sync.Mutex
	cond     *sync.Cond
	inflight int
	writes   []store.Assertion
	err      error
	closed   bool
}

// NewQueueResolver starts a resolver whose queue holds up to buffer
// submissions before Submit blocks.
func NewQueueResolver(buffer int, log *zap.SugaredLogger) *QueueResolver {
	if buffer < 1 {
		buffer = 1
	}
	r := &QueueResolver{
		jobs:   make(chan job, buffer),
		done:   make(chan struct{}),
		logger: logger.OrNop(log),
	}
	r.cond = sync.NewCond(&r.mu)
	go r.run()
	return r
}

func (r *QueueResolver) run() {
	defer close(r.done)
	for j := range r.jobs {
		writes, err := Hierarchy(j.place, j.handle)

		r.mu.Lock()
		if err != nil {
			if r.err == nil {
				r.err = errors.WithDetailf(err, "Place ID: %s", j.place.ID)
			}
		} else {
			r.writes = append(r.writes, writes...)
		}
		r.inflight--
		r.cond.Broadcast()
		r.mu.Unlock()
	}
}

// Submit queues p. Submissions after Close are dropped.
func (r *QueueResolver) Submit(p model.Place, handle store.Value) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.logger.Warnw("Place submitted after close", "place_id", p.ID)
		return
	}
	r.inflight++
	r.mu.Unlock()

	r.jobs <- job{place: p, handle: handle}
}

// Flush blocks until every submitted place is resolved, then adds the queued
// writes to tx. A failed resolution fails the whole flush and discards the
// queued writes.
func (r *QueueResolver) Flush(ctx context.Context, tx store.Tx) error {
	r.mu.Lock()
	for r.inflight > 0 {
		r.cond.Wait()
	}
	writes, err := r.writes, r.err
	r.writes, r.err = nil, nil
	r.mu.Unlock()

	if err != nil {
		return errors.Mark(errors.Wrap(err, "resolve place"), errors.ErrResolver)
	}
	for _, a := range writes {
		if err := tx.Add(ctx, a); err != nil {
			return errors.Mark(errors.Wrap(err, "flush place hierarchy"), errors.ErrResolver)
		}
	}
	if len(writes) > 0 {
		r.logger.Debugw("Flushed place hierarchy", logger.FieldCount, len(writes))
	}
	return nil
}

// Close stops the background goroutine once queued work is done.
func (r *QueueResolver) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	close(r.jobs)
	<-r.done
}
