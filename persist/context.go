package persist

import (
	"context"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/teranos/twitgraph/errors"
	"github.com/teranos/twitgraph/logger"
	"github.com/teranos/twitgraph/model"
	"github.com/teranos/twitgraph/place"
	"github.com/teranos/twitgraph/store"
	"github.com/teranos/twitgraph/vocab"
)

const (
	// Resources described longer ago than this are described again on next
	// sight. Re-describing is harmless because the store ignores duplicates.
	describedTTL    = 30 * time.Minute
	cleanupInterval = 10 * time.Minute
)

// Context maps resources to stable store values and writes the description
// of each resource the first time it is seen.
//
// A Context is not safe for concurrent use; the persister serialises access.
type Context struct {
	described *gocache.Cache
	logger    *zap.SugaredLogger
}

// NewContext creates a persistence context.
func NewContext(log *zap.SugaredLogger) *Context {
	return &Context{
		described: gocache.New(describedTTL, cleanupInterval),
		logger:    logger.OrNop(log),
	}
}

// Forget drops all knowledge of described resources, for use after the store
// has been cleared.
func (c *Context) Forget() {
	c.described.Flush()
}

// Session binds the context to one transaction. Resources described in the
// session count as described only once Committed is called; abandoning a
// session after a rollback leaves the context as it was.
func (c *Context) Session(tx store.Tx) *Session {
	return &Session{c: c, tx: tx, pending: map[string]store.Value{}}
}

// Session is a Context bound to a transaction.
type Session struct {
	c       *Context
	tx      store.Tx
	pending map[string]store.Value
}

// Committed records the session's resources as described.
func (s *Session) Committed() {
	for k, v := range s.pending {
		s.c.described.Set(k, v, gocache.DefaultExpiration)
	}
	if len(s.pending) > 0 {
		s.c.logger.Debugw("Resources described", logger.FieldCount, len(s.pending))
	}
	s.pending = map[string]store.Value{}
}

func (s *Session) seen(key string) (store.Value, bool) {
	if v, ok := s.pending[key]; ok {
		return v, true
	}
	if v, ok := s.c.described.Get(key); ok {
		return v.(store.Value), true
	}
	return store.Value{}, false
}

// Persist returns the store value of r, writing its description into the
// session's transaction on first sight. Persisting the same resource again
// returns the same value and writes nothing.
func (s *Session) Persist(ctx context.Context, r model.Resource) (store.Value, error) {
	v, err := ValueOf(r)
	if err != nil {
		return store.Value{}, errors.MarkPersistence(err, "convert resource")
	}
	if _, ok := s.seen(r.Key()); ok {
		return v, nil
	}
	if _, err := model.Visit[struct{}](r, describer{ctx: ctx, s: s, self: v}); err != nil {
		return store.Value{}, errors.WithDetailf(err, "Resource: %s", r)
	}
	s.pending[r.Key()] = v
	return v, nil
}

// PersistMessage writes the description of m. With hasAnnotations set it
// also links m to the graph its extracted knowledge will be written to.
// Message descriptions are always written, since the flag may differ from
// an earlier sighting.
func (s *Session) PersistMessage(ctx context.Context, m *model.Message, hasAnnotations bool) (store.Value, error) {
	v, err := ValueOf(m)
	if err != nil {
		return store.Value{}, errors.MarkPersistence(err, "convert message")
	}
	if err := s.describeMessage(ctx, v, m, hasAnnotations); err != nil {
		return store.Value{}, errors.WithDetailf(err, "Message ID: %s", m.ID)
	}
	s.pending[m.Key()] = v
	return v, nil
}

// Add writes one structural assertion.
func (s *Session) Add(ctx context.Context, subject, predicate, object store.Value) error {
	return s.tx.Add(ctx, store.Assertion{
		Subject:   subject,
		Predicate: predicate,
		Object:    object,
		Context:   store.NewIRI(vocab.CoreGraph),
	})
}

func (s *Session) addType(ctx context.Context, subject store.Value, class string) error {
	return s.Add(ctx, subject, store.NewIRI(vocab.RDFType), store.NewIRI(class))
}

func (s *Session) describeMessage(ctx context.Context, post store.Value, m *model.Message, hasAnnotations bool) error {
	if err := s.addType(ctx, post, vocab.SIOCTMicroblogPost); err != nil {
		return err
	}
	if err := s.Add(ctx, post, store.NewIRI(vocab.SIOCID), store.NewLiteral(m.ID, "")); err != nil {
		return err
	}
	if m.Text != "" {
		if err := s.Add(ctx, post, store.NewIRI(vocab.SIOCContent), store.NewLiteral(m.Text, "")); err != nil {
			return err
		}
	}
	if !m.CreatedAt.IsZero() {
		created := store.NewLiteral(m.CreatedAt.UTC().Format(time.RFC3339), vocab.XSDDateTime)
		if err := s.Add(ctx, post, store.NewIRI(vocab.DCTermsCreated), created); err != nil {
			return err
		}
	}
	if m.Author != nil {
		account, err := s.Persist(ctx, *m.Author)
		if err != nil {
			return err
		}
		if _, err := s.Persist(ctx, m.Author.HeldBy()); err != nil {
			return err
		}
		if err := s.Add(ctx, post, store.NewIRI(vocab.SIOCHasCreator), account); err != nil {
			return err
		}
	}
	if hasAnnotations {
		if err := s.Add(ctx, post, store.NewIRI(vocab.SIOCEmbedsKnowledge), GraphIRI(m)); err != nil {
			return err
		}
	}
	return nil
}

// PersistPoint writes a geo point and returns its value.
func (s *Session) PersistPoint(ctx context.Context, p model.Point) (store.Value, error) {
	v := PointIRI(p)
	key := "point|" + v.Text
	if _, ok := s.seen(key); ok {
		return v, nil
	}
	decimal := func(f float64) store.Value {
		return store.NewLiteral(strconv.FormatFloat(f, 'f', -1, 64), vocab.XSDDecimal)
	}
	if err := s.addType(ctx, v, vocab.GeoPoint); err != nil {
		return store.Value{}, err
	}
	if err := s.Add(ctx, v, store.NewIRI(vocab.GeoLat), decimal(p.Lat)); err != nil {
		return store.Value{}, err
	}
	if err := s.Add(ctx, v, store.NewIRI(vocab.GeoLong), decimal(p.Long)); err != nil {
		return store.Value{}, err
	}
	s.pending[key] = v
	return v, nil
}

// PersistPlace writes the place itself; its containment hierarchy is left to
// a place resolver.
func (s *Session) PersistPlace(ctx context.Context, p model.Place) (store.Value, error) {
	if p.ID == "" {
		return store.Value{}, errors.MarkPersistence(errors.NewInvalidRequestError("place without id"), "persist place")
	}
	v := PlaceIRI(p)
	key := "place|" + v.Text
	if _, ok := s.seen(key); ok {
		return v, nil
	}
	if err := s.addType(ctx, v, vocab.GeoNamesFeature); err != nil {
		return store.Value{}, err
	}
	if class := place.Class(p.Type); class != "" {
		if err := s.addType(ctx, v, class); err != nil {
			return store.Value{}, err
		}
	}
	if p.Name != "" {
		if err := s.Add(ctx, v, store.NewIRI(vocab.GeoNamesName), store.NewLiteral(p.Name, "")); err != nil {
			return store.Value{}, err
		}
	}
	s.pending[key] = v
	return v, nil
}

// describer writes the structural description of one resource.
type describer struct {
	ctx  context.Context
	s    *Session
	self store.Value
}

func (describer) VisitIdentifier(model.Identifier) (struct{}, error)     { return struct{}{}, nil }
func (describer) VisitPlainLiteral(model.PlainLiteral) (struct{}, error) { return struct{}{}, nil }
func (describer) VisitTypedLiteral(model.TypedLiteral) (struct{}, error) { return struct{}{}, nil }

func (d describer) VisitTag(t model.Tag) (struct{}, error) {
	label := store.NewLiteral(t.String(), "")
	return struct{}{}, d.s.Add(d.ctx, d.self, store.NewIRI(vocab.RDFSLabel), label)
}

func (d describer) VisitAccount(a model.Account) (struct{}, error) {
	if err := d.s.addType(d.ctx, d.self, vocab.SIOCUserAccount); err != nil {
		return struct{}{}, err
	}
	return struct{}{}, d.s.Add(d.ctx, d.self, store.NewIRI(vocab.SIOCID), store.NewLiteral(a.Handle, ""))
}

func (d describer) VisitPerson(p model.Person) (struct{}, error) {
	account, err := d.s.Persist(d.ctx, p.Account)
	if err != nil {
		return struct{}{}, err
	}
	if err := d.s.addType(d.ctx, d.self, vocab.FOAFPerson); err != nil {
		return struct{}{}, err
	}
	return struct{}{}, d.s.Add(d.ctx, d.self, store.NewIRI(vocab.FOAFHoldsAccount), account)
}

func (d describer) VisitMessage(m *model.Message) (struct{}, error) {
	return struct{}{}, d.s.describeMessage(d.ctx, d.self, m, m.HasAnnotations())
}
