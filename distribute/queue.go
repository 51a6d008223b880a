// Package distribute republishes newly committed assertions to consumers
// through a bounded queue.
//
// The queue registers as a store listener. When it is full, its overflow
// policy decides whether the oldest buffered assertion or the arriving one
// is lost. Removals are not distributed.
package distribute

import (
	"context"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/teranos/twitgraph/errors"
	"github.com/teranos/twitgraph/logger"
	"github.com/teranos/twitgraph/store"
)

// Policy is what a full queue does with a new assertion.
type Policy int32

const (
	// DropOldest evicts from the head until the new assertion fits.
	DropOldest Policy = iota
	// DropMostRecent discards the new assertion.
	DropMostRecent
)

func (p Policy) String() string {
	switch p {
	case DropOldest:
		return "drop_oldest"
	case DropMostRecent:
		return "drop_most_recent"
	default:
		return "unknown"
	}
}

// ParsePolicy reads a policy name as written in configuration.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "drop_oldest", "dropoldest":
		return DropOldest, nil
	case "drop_most_recent", "dropmostrecent":
		return DropMostRecent, nil
	}
	return 0, errors.NewInvalidRequestError("unknown overflow policy %q (want drop_oldest or drop_most_recent)", s)
}

// Queue is a bounded FIFO of assertions, safe for concurrent producers and
// consumers.
type Queue struct {
	items   chan store.Assertion
	policy  atomic.Int32
	evicted atomic.Int64
	dropped atomic.Int64
	logger  *zap.SugaredLogger
}

// NewQueue creates a queue holding up to capacity assertions.
func NewQueue(capacity int, policy Policy, log *zap.SugaredLogger) (*Queue, error) {
	if capacity < 1 {
		return nil, errors.NewInvalidRequestError("queue capacity must be positive, got %d", capacity)
	}
	if policy != DropOldest && policy != DropMostRecent {
		return nil, errors.NewInvalidRequestError("unknown overflow policy %d", policy)
	}
	q := &Queue{
		items:  make(chan store.Assertion, capacity),
		logger: logger.OrNop(log),
	}
	q.policy.Store(int32(policy))
	return q, nil
}

// Policy returns the current overflow policy.
func (q *Queue) Policy() Policy {
	return Policy(q.policy.Load())
}

// SetPolicy changes the overflow policy for subsequent offers.
func (q *Queue) SetPolicy(p Policy) {
	if old := Policy(q.policy.Swap(int32(p))); old != p {
		q.logger.Infow("Overflow policy changed", "from", old.String(), logger.FieldPolicy, p.String())
	}
}

// Offer enqueues a and reports whether it was kept.
func (q *Queue) Offer(a store.Assertion) bool {
	if q.Policy() == DropMostRecent {
		select {
		case q.items <- a:
			return true
		default:
			q.dropped.Add(1)
			return false
		}
	}

	for {
		select {
		case q.items <- a:
			return true
		default:
		}
		// Full: evict the head and retry. A consumer may have taken it first,
		// in which case the retry simply succeeds.
		select {
		case <-q.items:
			q.evicted.Add(1)
		default:
		}
	}
}

// Take blocks until an assertion is available or ctx is done.
func (q *Queue) Take(ctx context.Context) (store.Assertion, error) {
	select {
	case a := <-q.items:
		return a, nil
	case <-ctx.Done():
		return store.Assertion{}, ctx.Err()
	}
}

// Poll returns the head without blocking.
func (q *Queue) Poll() (store.Assertion, bool) {
	select {
	case a := <-q.items:
		return a, true
	default:
		return store.Assertion{}, false
	}
}

// Drain removes and returns everything currently buffered, oldest first.
func (q *Queue) Drain() []store.Assertion {
	var out []store.Assertion
	for {
		a, ok := q.Poll()
		if !ok {
			return out
		}
		out = append(out, a)
	}
}

// Len is the number of buffered assertions.
func (q *Queue) Len() int { return len(q.items) }

// Cap is the queue capacity.
func (q *Queue) Cap() int { return cap(q.items) }

// Stats reports how many assertions were evicted under DropOldest and
// discarded under DropMostRecent.
func (q *Queue) Stats() (evicted, dropped int64) {
	return q.evicted.Load(), q.dropped.Load()
}

// AssertionAdded offers a to the queue.
func (q *Queue) AssertionAdded(a store.Assertion) {
	q.Offer(a)
}

// AssertionRemoved is ignored; only additions are distributed.
func (q *Queue) AssertionRemoved(store.Assertion) {}

// Consume passes assertions to fn until ctx is done or fn fails.
func (q *Queue) Consume(ctx context.Context, fn func(store.Assertion) error) error {
	for {
		a, err := q.Take(ctx)
		if err != nil {
			return err
		}
		if err := fn(a); err != nil {
			return errors.Wrap(err, "consume assertion")
		}
	}
}
