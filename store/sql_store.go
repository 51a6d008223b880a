package store

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"github.com/teranos/vanity-id"
	"go.uber.org/zap"

	"github.com/teranos/twitgraph/db"
	"github.com/teranos/twitgraph/errors"
	"github.com/teranos/twitgraph/logger"
	"github.com/teranos/twitgraph/sym"
)

// Actor recorded in generated assertion ids.
const Actor = "twitgraph"

// Query constants
const (
	quadInsertQuery = `
		INSERT OR IGNORE INTO quads (id, subject, predicate, object, object_kind, object_datatype, context)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	quadSelectQuery = `
		SELECT id, subject, predicate, object, object_kind, object_datatype, context
		FROM quads`

	quadIDExistsQuery = `SELECT EXISTS(SELECT 1 FROM quads WHERE id = ?)`

	quadDeleteByContextQuery = `DELETE FROM quads WHERE context = ?`

	quadDeleteAllQuery = `DELETE FROM quads`

	quadStatsQuery = `
		SELECT COUNT(*), COUNT(DISTINCT subject), COUNT(DISTINCT context)
		FROM quads`
)

// SQLStore implements Store on the quads table.
type SQLStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger

	mu        sync.RWMutex
	listeners []Listener
}

// NewSQLStore creates a store over a migrated database.
func NewSQLStore(db *sql.DB, log *zap.SugaredLogger) *SQLStore {
	return &SQLStore{
		db:     db,
		logger: logger.OrNop(log),
	}
}

// RegisterListener adds l to the listeners notified after commits.
func (s *SQLStore) RegisterListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *SQLStore) snapshotListeners() []Listener {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Listener, len(s.listeners))
	copy(out, s.listeners)
	return out
}

func (s *SQLStore) notifyAdded(added []Assertion) {
	if len(added) == 0 {
		return
	}
	for _, l := range s.snapshotListeners() {
		for _, a := range added {
			l.AssertionAdded(a)
		}
	}
}

func (s *SQLStore) notifyRemoved(removed []Assertion) {
	if len(removed) == 0 {
		return
	}
	for _, l := range s.snapshotListeners() {
		for _, a := range removed {
			l.AssertionRemoved(a)
		}
	}
}

// Begin starts a write transaction.
func (s *SQLStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, persistenceErr(err, "begin transaction")
	}
	return &sqlTx{store: s, tx: tx}, nil
}

// persistenceErr also marks errors.ErrClosed when the database was closed
// underneath the store, which happens when shutdown races an ingest source.
func persistenceErr(err error, msg string) error {
	err = errors.MarkPersistence(err, msg)
	if db.IsDatabaseClosed(err) {
		err = errors.Mark(err, errors.ErrClosed)
	}
	return err
}

// Read returns the assertions matching p in insertion order.
func (s *SQLStore) Read(ctx context.Context, p Pattern) (Cursor, error) {
	query, args := buildSelect(p)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistenceErr(err, "read assertions")
	}
	return &rowCursor{rows: rows}, nil
}

// RemoveContext deletes every assertion in graph and notifies listeners of
// each removal.
func (s *SQLStore) RemoveContext(ctx context.Context, graph Value) (int64, error) {
	if !graph.IsIRI() {
		return 0, errors.NewInvalidRequestError("context must be an IRI, got %s", graph)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.MarkPersistence(err, "begin remove")
	}
	defer tx.Rollback()

	query, args := buildSelect(Pattern{Context: &graph})
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, errors.MarkPersistence(err, "read context before remove")
	}
	removed, err := collect(&rowCursor{rows: rows})
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, quadDeleteByContextQuery, graph.Text)
	if err != nil {
		return 0, errors.MarkPersistence(err, "remove context")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.MarkPersistence(err, "remove context")
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.MarkPersistence(err, "commit remove")
	}

	s.logger.Debugw("Removed context",
		logger.FieldContext, graph.Text,
		logger.FieldCount, n,
		logger.FieldSymbol, sym.DB)
	s.notifyRemoved(removed)
	return n, nil
}

// Stats summarises the store contents.
type Stats struct {
	Assertions int64
	Subjects   int64
	Contexts   int64
}

// Stats counts assertions, distinct subjects and distinct contexts.
func (s *SQLStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, quadStatsQuery).Scan(&st.Assertions, &st.Subjects, &st.Contexts)
	if err != nil {
		return Stats{}, errors.MarkPersistence(err, "count assertions")
	}
	return st, nil
}

// Clear deletes every assertion. Listeners are not notified.
func (s *SQLStore) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, quadDeleteAllQuery)
	if err != nil {
		return 0, errors.MarkPersistence(err, "clear store")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.MarkPersistence(err, "clear store")
	}
	s.logger.Infow("Cleared store", logger.FieldCount, n, logger.FieldSymbol, sym.DB)
	return n, nil
}

func buildSelect(p Pattern) (string, []interface{}) {
	var where []string
	var args []interface{}
	if p.Subject != nil {
		where = append(where, "subject = ?")
		args = append(args, p.Subject.Text)
	}
	if p.Predicate != nil {
		where = append(where, "predicate = ?")
		args = append(args, p.Predicate.Text)
	}
	if p.Object != nil {
		where = append(where, "object = ?", "object_kind = ?", "object_datatype = ?")
		args = append(args, p.Object.Text, int(p.Object.Kind), p.Object.Datatype)
	}
	if p.Context != nil {
		where = append(where, "context = ?")
		args = append(args, p.Context.Text)
	}
	query := quadSelectQuery
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	return query + " ORDER BY rowid", args
}

func validate(a Assertion) error {
	switch {
	case !a.Subject.IsIRI():
		return errors.NewInvalidRequestError("subject must be an IRI, got %s", a.Subject)
	case !a.Predicate.IsIRI():
		return errors.NewInvalidRequestError("predicate must be an IRI, got %s", a.Predicate)
	case !a.Context.IsIRI():
		return errors.NewInvalidRequestError("context must be an IRI, got %s", a.Context)
	case a.Object.Kind == IRI && a.Object.Text == "":
		return errors.NewInvalidRequestError("object IRI is empty")
	}
	return nil
}

type sqlTx struct {
	store *SQLStore
	tx    *sql.Tx
	added []Assertion
	done  bool
}

func (t *sqlTx) Add(ctx context.Context, a Assertion) error {
	if t.done {
		return errors.Mark(errors.New("transaction already finished"), errors.ErrClosed)
	}
	if err := validate(a); err != nil {
		return errors.MarkPersistence(err, "add assertion")
	}
	if a.ID == "" {
		checkExists := func(candidate string) bool {
			var exists bool
			if err := t.tx.QueryRowContext(ctx, quadIDExistsQuery, candidate).Scan(&exists); err != nil {
				return false
			}
			return exists
		}
		asid, err := id.GenerateASIDWithVanityAndRetry(a.Subject.Text, a.Predicate.Text, a.Context.Text, Actor, checkExists)
		if err != nil {
			return errors.MarkPersistence(err, "generate assertion id")
		}
		a.ID = asid
	}

	res, err := t.tx.ExecContext(ctx, quadInsertQuery,
		a.ID,
		a.Subject.Text,
		a.Predicate.Text,
		a.Object.Text,
		int(a.Object.Kind),
		a.Object.Datatype,
		a.Context.Text,
	)
	if err != nil {
		return errors.WithDetailf(errors.MarkPersistence(err, "insert assertion"), "Assertion: %s", a)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.MarkPersistence(err, "insert assertion")
	}
	if n > 0 {
		t.added = append(t.added, a)
	}
	return nil
}

func (t *sqlTx) Commit() error {
	if t.done {
		return errors.Mark(errors.New("transaction already finished"), errors.ErrClosed)
	}
	t.done = true
	if err := t.tx.Commit(); err != nil {
		return errors.MarkPersistence(err, "commit transaction")
	}
	t.store.notifyAdded(t.added)
	return nil
}

func (t *sqlTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.added = nil
	if err := t.tx.Rollback(); err != nil {
		return errors.MarkPersistence(err, "rollback transaction")
	}
	return nil
}

type rowCursor struct {
	rows *sql.Rows
	cur  Assertion
	err  error
}

func (c *rowCursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}
	var a Assertion
	var kind int
	if err := c.rows.Scan(&a.ID, &a.Subject.Text, &a.Predicate.Text, &a.Object.Text, &kind, &a.Object.Datatype, &a.Context.Text); err != nil {
		c.err = errors.MarkPersistence(err, "scan assertion")
		return false
	}
	a.Object.Kind = Kind(kind)
	c.cur = a
	return true
}

func (c *rowCursor) Assertion() Assertion { return c.cur }

func (c *rowCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return errors.MarkPersistence(c.rows.Err(), "iterate assertions")
}

func (c *rowCursor) Close() error {
	return c.rows.Close()
}

// collect drains and closes a cursor.
func collect(c Cursor) ([]Assertion, error) {
	defer c.Close()
	var out []Assertion
	for c.Next() {
		out = append(out, c.Assertion())
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadAll returns every assertion matching p.
func ReadAll(ctx context.Context, s Store, p Pattern) ([]Assertion, error) {
	c, err := s.Read(ctx, p)
	if err != nil {
		return nil, err
	}
	return collect(c)
}
