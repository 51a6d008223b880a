// Package persist writes messages and the knowledge extracted from them into
// the graph store.
//
// Each message is committed in its own primary transaction together with its
// author, location and entities. Its reply-parent and retweet-source follow
// as independent transactions, and its annotations are committed last in a
// separate transaction of their own.
package persist

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/teranos/twitgraph/errors"
	"github.com/teranos/twitgraph/logger"
	"github.com/teranos/twitgraph/model"
	"github.com/teranos/twitgraph/place"
	"github.com/teranos/twitgraph/store"
	"github.com/teranos/twitgraph/sym"
	"github.com/teranos/twitgraph/vocab"
)

// DefaultMaxAncestryDepth bounds how many reply/retweet hops one Handle call
// follows.
const DefaultMaxAncestryDepth = 64

// Persister is the cascade persister. Handle serialises its callers.
type Persister struct {
	store    store.Store
	pctx     *Context
	resolver place.Resolver
	maxDepth int
	logger   *zap.SugaredLogger

	mu sync.Mutex
}

// Option configures a Persister.
type Option func(*Persister)

// WithResolver sets the place resolver. The default resolves nothing.
func WithResolver(r place.Resolver) Option {
	return func(p *Persister) { p.resolver = r }
}

// WithMaxAncestryDepth bounds ancestry recursion. Values below zero mean the
// default.
func WithMaxAncestryDepth(n int) Option {
	return func(p *Persister) {
		if n >= 0 {
			p.maxDepth = n
		}
	}
}

// WithContext shares a persistence context between persisters.
func WithContext(c *Context) Option {
	return func(p *Persister) { p.pctx = c }
}

// NewPersister creates a persister writing to s.
func NewPersister(s store.Store, log *zap.SugaredLogger, opts ...Option) *Persister {
	p := &Persister{
		store:    s,
		resolver: place.Nop{},
		maxDepth: DefaultMaxAncestryDepth,
		logger:   logger.OrNop(log),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.pctx == nil {
		p.pctx = NewContext(p.logger)
	}
	return p
}

// Context returns the persistence context.
func (p *Persister) Context() *Context {
	return p.pctx
}

// Handle persists msg and its ancestry.
//
// A *HandlingError means msg itself was not persisted. Failures of ancestors
// are logged and do not affect msg. An error marked errors.ErrPersistence but
// not errors.ErrHandling means msg was persisted and its annotations were not.
//
// Ancestry is expected to be acyclic. A message seen twice within one call,
// or an ancestor beyond the depth bound, is logged and not followed.
func (p *Persister) Handle(ctx context.Context, msg *model.Message) error {
	if msg == nil {
		return errors.NewInvalidRequestError("nil message")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handle(ctx, msg, 0, map[string]bool{})
}

func (p *Persister) handle(ctx context.Context, msg *model.Message, depth int, visited map[string]bool) error {
	log := logger.ChildLogger(p.logger, logger.FieldMessageID, msg.ID)

	if visited[msg.ID] {
		log.Warnw("Ancestry revisits a message; not following", logger.FieldDepth, depth)
		return nil
	}
	if depth > p.maxDepth {
		log.Warnw("Ancestry deeper than limit; not following",
			logger.FieldDepth, depth,
			"max_depth", p.maxDepth)
		return nil
	}
	visited[msg.ID] = true

	if err := p.persistPrimary(ctx, msg); err != nil {
		return &HandlingError{MessageID: msg.ID, Cause: err}
	}
	log.Debugw("Message committed", logger.FieldDepth, depth, logger.FieldSymbol, sym.AS)

	for _, ancestor := range msg.Ancestors() {
		if err := p.handle(ctx, ancestor, depth+1, visited); err != nil {
			log.Errorw("Ancestor not persisted",
				"ancestor_id", ancestor.ID,
				logger.FieldError, err)
		}
	}

	if msg.HasAnnotations() {
		if err := p.persistAnnotations(ctx, msg, log); err != nil {
			return errors.WithDetailf(errors.Wrap(err, "annotation pass"), "Message ID: %s", msg.ID)
		}
	}
	return nil
}

// persistPrimary commits the structural description of msg.
func (p *Persister) persistPrimary(ctx context.Context, msg *model.Message) (err error) {
	tx, err := p.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = errors.WithSecondaryError(err, rbErr)
			}
		}
	}()

	sess := p.pctx.Session(tx)
	post, err := sess.PersistMessage(ctx, msg, msg.HasAnnotations())
	if err != nil {
		return err
	}

	if msg.InReplyTo != nil {
		parent, err := ValueOf(msg.InReplyTo)
		if err != nil {
			return errors.MarkPersistence(err, "reply parent")
		}
		if err := sess.Add(ctx, post, store.NewIRI(vocab.SIOCReplyOf), parent); err != nil {
			return err
		}
	}
	if msg.RetweetOf != nil {
		source, err := ValueOf(msg.RetweetOf)
		if err != nil {
			return errors.MarkPersistence(err, "retweet source")
		}
		if err := sess.Add(ctx, post, store.NewIRI(vocab.RetweetOf), source); err != nil {
			return err
		}
	}

	for _, tag := range msg.Topics {
		topic, err := sess.Persist(ctx, tag)
		if err != nil {
			return err
		}
		if err := sess.Add(ctx, post, store.NewIRI(vocab.SIOCTopic), topic); err != nil {
			return err
		}
	}
	for _, link := range msg.Links {
		target, err := sess.Persist(ctx, link)
		if err != nil {
			return err
		}
		if err := sess.Add(ctx, post, store.NewIRI(vocab.SIOCLinksTo), target); err != nil {
			return err
		}
	}

	// A message may carry both a point and a place; both join its location set.
	if msg.Geo != nil {
		point, err := sess.PersistPoint(ctx, *msg.Geo)
		if err != nil {
			return err
		}
		if err := sess.Add(ctx, post, store.NewIRI(vocab.GeoLocation), point); err != nil {
			return err
		}
	}
	if msg.Place != nil {
		pl, err := sess.PersistPlace(ctx, *msg.Place)
		if err != nil {
			return err
		}
		if err := sess.Add(ctx, post, store.NewIRI(vocab.GeoLocation), pl); err != nil {
			return err
		}
		p.resolver.Submit(*msg.Place, pl)
	}

	if err := p.resolver.Flush(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	sess.Committed()
	return nil
}

// persistAnnotations commits the annotations of msg into its knowledge graph
// as a transaction separate from the structural one. Annotations whose
// subject or predicate cannot take that position are skipped.
func (p *Persister) persistAnnotations(ctx context.Context, msg *model.Message, log *zap.SugaredLogger) (err error) {
	graph := GraphIRI(msg)

	tx, err := p.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = errors.WithSecondaryError(err, rbErr)
			}
		}
	}()

	sess := p.pctx.Session(tx)
	written := 0
	for _, a := range msg.Annotations {
		subject, serr := ValueOf(a.Subject)
		predicate, perr := ValueOf(a.Predicate)
		object, oerr := ValueOf(a.Object)
		switch {
		case serr != nil || !subject.IsIRI():
			log.Warnw("Skipping annotation with invalid subject",
				logger.FieldSubject, describe(a.Subject),
				logger.FieldPredicate, describe(a.Predicate))
			continue
		case perr != nil || !predicate.IsIRI():
			log.Warnw("Skipping annotation with invalid predicate",
				logger.FieldSubject, describe(a.Subject),
				logger.FieldPredicate, describe(a.Predicate))
			continue
		case oerr != nil:
			log.Warnw("Skipping annotation with invalid object",
				logger.FieldSubject, describe(a.Subject),
				logger.FieldObject, describe(a.Object))
			continue
		}

		for _, r := range []model.Resource{a.Subject, a.Object} {
			if _, err := sess.Persist(ctx, r); err != nil {
				return err
			}
		}
		err = tx.Add(ctx, store.Assertion{Subject: subject, Predicate: predicate, Object: object, Context: graph})
		if err != nil {
			return err
		}
		written++
		log.Debugw("Annotation stored",
			logger.FieldSubject, subject.Text,
			logger.FieldPredicate, predicate.Text,
			logger.FieldObject, object.String(),
			logger.FieldWeight, a.Weight)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	sess.Committed()
	log.Debugw("Annotations committed",
		logger.FieldContext, graph.Text,
		logger.FieldCount, written,
		logger.FieldSymbol, sym.AX)
	return nil
}

func describe(r model.Resource) string {
	if r == nil {
		return "<nil>"
	}
	return r.String()
}
