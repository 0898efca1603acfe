// Package storage provides a SQLite-backed atom store implementing
// atom.Space. The schema lives in the db package migrations.
package storage

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/teranos/atomspace/atom"
	"github.com/teranos/atomspace/db"
	"github.com/teranos/atomspace/errors"
	"github.com/teranos/atomspace/logger"
)

// Query constants
const (
	AtomSelectQuery = `
		SELECT type, COALESCE(name, '') FROM atoms WHERE handle = ?`

	OutgoingSelectQuery = `
		SELECT member FROM outgoing WHERE link = ? ORDER BY position`

	IncomingSelectQuery = `
		SELECT DISTINCT link FROM outgoing WHERE member = ? ORDER BY link`

	NodeLookupQuery = `
		SELECT handle FROM atoms WHERE type = ? AND name = ?`

	NodeInsertQuery = `
		INSERT OR IGNORE INTO atoms (type, name) VALUES (?, ?)`

	LinkLookupQuery = `
		SELECT handle FROM atoms WHERE link_key = ?`

	LinkInsertQuery = `
		INSERT OR IGNORE INTO atoms (type, link_key) VALUES (?, ?)`

	OutgoingInsertQuery = `
		INSERT INTO outgoing (link, position, member) VALUES (?, ?, ?)`

	AtomExistsQuery = `
		SELECT EXISTS(SELECT 1 FROM atoms WHERE handle = ?)`

	IncomingCountQuery = `
		SELECT COUNT(DISTINCT link) FROM outgoing WHERE member = ?`

	AtomDeleteQuery = `
		DELETE FROM atoms WHERE handle = ?`

	AtomCountQuery = `
		SELECT
			COALESCE(SUM(CASE WHEN link_key IS NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN link_key IS NOT NULL THEN 1 ELSE 0 END), 0)
		FROM atoms`
)

var (
	_ atom.Space   = (*SQLStore)(nil)
	_ atom.Builder = (*SQLStore)(nil)
)

// SQLStore implements atom.Space over SQLite.
//
// Incoming sets are ordered by ascending link handle. Every iteration reads
// its rows completely before invoking callbacks, so a visitor may run
// nested chases even on a single-connection pool.
type SQLStore struct {
	db     *sql.DB
	ctx    context.Context
	logger *zap.SugaredLogger
}

// NewSQLStore creates a store over a migrated database. logger may be nil.
func NewSQLStore(database *sql.DB, log *zap.SugaredLogger) *SQLStore {
	return &SQLStore{
		db:     database,
		ctx:    context.Background(),
		logger: logger.OrNop(log),
	}
}

// WithContext returns a view of the store whose queries use ctx.
// Cancelling ctx makes in-flight iterations fail with ctx's error.
func (s *SQLStore) WithContext(ctx context.Context) *SQLStore {
	view := *s
	view.ctx = ctx
	return &view
}

// AddNode inserts a node, or returns the handle of the identical one.
func (s *SQLStore) AddNode(t atom.Type, name string) (atom.Handle, error) {
	if !t.IsNode() {
		return atom.UndefinedHandle, errors.NewInvalidRequestError("%s is not a node type", t)
	}

	if _, err := s.db.ExecContext(s.ctx, NodeInsertQuery, int(t), name); err != nil {
		return atom.UndefinedHandle, s.wrap(err, "insert node")
	}

	var h int64
	if err := s.db.QueryRowContext(s.ctx, NodeLookupQuery, int(t), name).Scan(&h); err != nil {
		return atom.UndefinedHandle, s.wrap(err, "read back node")
	}

	s.logger.Debugw("Node stored", logger.FieldHandle, h, logger.FieldAtomType, t, "name", name)
	return atom.Handle(h), nil
}

// AddLink inserts a link over existing atoms, or returns the handle of the
// identical one.
func (s *SQLStore) AddLink(t atom.Type, outgoing ...atom.Handle) (atom.Handle, error) {
	if !t.IsLink() {
		return atom.UndefinedHandle, errors.NewInvalidRequestError("%s is not a link type", t)
	}
	if len(outgoing) == 0 {
		return atom.UndefinedHandle, errors.NewInvalidRequestError("%s needs at least one member", t)
	}

	tx, err := s.db.BeginTx(s.ctx, nil)
	if err != nil {
		return atom.UndefinedHandle, s.wrap(err, "begin link insert")
	}
	defer tx.Rollback()

	for i, member := range outgoing {
		var exists bool
		if err := tx.QueryRowContext(s.ctx, AtomExistsQuery, int64(member)).Scan(&exists); err != nil {
			return atom.UndefinedHandle, s.wrap(err, "check member")
		}
		if !exists {
			return atom.UndefinedHandle, errors.NewNotFoundError("member %d of %s: handle %s", i, t, member)
		}
	}

	key := atom.LinkKey(t, outgoing)
	var existing int64
	err = tx.QueryRowContext(s.ctx, LinkLookupQuery, key).Scan(&existing)
	switch {
	case err == nil:
		return atom.Handle(existing), nil
	case !errors.Is(err, sql.ErrNoRows):
		return atom.UndefinedHandle, s.wrap(err, "look up link")
	}

	res, err := tx.ExecContext(s.ctx, LinkInsertQuery, int(t), key)
	if err != nil {
		return atom.UndefinedHandle, s.wrap(err, "insert link")
	}
	// a concurrent writer stored the same link after our lookup
	if n, err := res.RowsAffected(); err != nil {
		return atom.UndefinedHandle, s.wrap(err, "insert link")
	} else if n == 0 {
		if err := tx.QueryRowContext(s.ctx, LinkLookupQuery, key).Scan(&existing); err != nil {
			return atom.UndefinedHandle, s.wrap(err, "read back link")
		}
		return atom.Handle(existing), nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return atom.UndefinedHandle, s.wrap(err, "link handle")
	}

	for pos, member := range outgoing {
		if _, err := tx.ExecContext(s.ctx, OutgoingInsertQuery, id, pos, int64(member)); err != nil {
			return atom.UndefinedHandle, s.wrap(err, "insert outgoing")
		}
	}

	if err := tx.Commit(); err != nil {
		return atom.UndefinedHandle, s.wrap(err, "commit link insert")
	}

	s.logger.Debugw("Link stored", logger.FieldHandle, id, logger.FieldAtomType, t, "arity", len(outgoing))
	return atom.Handle(id), nil
}

// Remove deletes an atom that no link references. Its outgoing rows go with
// it; the handle is never reused.
func (s *SQLStore) Remove(h atom.Handle) error {
	tx, err := s.db.BeginTx(s.ctx, nil)
	if err != nil {
		return s.wrap(err, "begin remove")
	}
	defer tx.Rollback()

	var incoming int
	if err := tx.QueryRowContext(s.ctx, IncomingCountQuery, int64(h)).Scan(&incoming); err != nil {
		return s.wrap(err, "count incoming")
	}
	if incoming > 0 {
		return errors.NewConflictError("%s is referenced by %d links", h, incoming)
	}

	res, err := tx.ExecContext(s.ctx, AtomDeleteQuery, int64(h))
	if err != nil {
		return s.wrap(err, "delete atom")
	}
	if n, err := res.RowsAffected(); err != nil {
		return s.wrap(err, "delete atom")
	} else if n == 0 {
		return errors.NewNotFoundError("handle %s", h)
	}

	return s.wrap(tx.Commit(), "commit remove")
}

// Lookup finds a node by type and name.
func (s *SQLStore) Lookup(t atom.Type, name string) (atom.Handle, error) {
	var h int64
	err := s.db.QueryRowContext(s.ctx, NodeLookupQuery, int(t), name).Scan(&h)
	if errors.Is(err, sql.ErrNoRows) {
		return atom.UndefinedHandle, errors.NewNotFoundError("%s %q", t, name)
	}
	if err != nil {
		return atom.UndefinedHandle, s.wrap(err, "look up node")
	}
	return atom.Handle(h), nil
}

// Count returns the number of stored nodes and links.
func (s *SQLStore) Count() (nodes, links int, err error) {
	err = s.db.QueryRowContext(s.ctx, AtomCountQuery).Scan(&nodes, &links)
	return nodes, links, s.wrap(err, "count atoms")
}

// Resolve implements atom.Resolver.
func (s *SQLStore) Resolve(h atom.Handle) (*atom.Atom, error) {
	var (
		t    int
		name string
	)
	err := s.db.QueryRowContext(s.ctx, AtomSelectQuery, int64(h)).Scan(&t, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("handle %s", h)
	}
	if err != nil {
		return nil, s.wrap(err, "resolve atom")
	}

	a := &atom.Atom{Handle: h, Type: atom.Type(t), Name: name}
	if a.IsLink() {
		a.Outgoing, err = s.handles(OutgoingSelectQuery, h)
		if err != nil {
			return nil, err
		}
	}
	return a, nil
}

// ForEachIncoming implements atom.IncomingIterator. Links are resolved one
// at a time, so stopping early skips the remaining lookups.
func (s *SQLStore) ForEachIncoming(a *atom.Atom, fn func(link *atom.Atom) bool) (bool, error) {
	links, err := s.handles(IncomingSelectQuery, a.Handle)
	if err != nil {
		return false, err
	}

	for _, h := range links {
		link, err := s.Resolve(h)
		if err != nil {
			return false, errors.Wrapf(err, "incoming link of %s", a.Handle)
		}
		if fn(link) {
			return true, nil
		}
	}
	return false, nil
}

// ForEachOutgoing implements atom.OutgoingIterator.
func (s *SQLStore) ForEachOutgoing(link *atom.Atom, fn func(member *atom.Atom) bool) (bool, error) {
	members := link.Outgoing
	if members == nil {
		var err error
		if members, err = s.handles(OutgoingSelectQuery, link.Handle); err != nil {
			return false, err
		}
	}

	for pos, h := range members {
		member, err := s.Resolve(h)
		if err != nil {
			return false, errors.Wrapf(err, "member %d of %s", pos, link.Handle)
		}
		if fn(member) {
			return true, nil
		}
	}
	return false, nil
}

// handles runs a single-column handle query and reads it to completion.
func (s *SQLStore) handles(query string, arg atom.Handle) ([]atom.Handle, error) {
	rows, err := s.db.QueryContext(s.ctx, query, int64(arg))
	if err != nil {
		return nil, s.wrap(err, "query handles")
	}
	defer rows.Close()

	var out []atom.Handle
	for rows.Next() {
		var h int64
		if err := rows.Scan(&h); err != nil {
			return nil, s.wrap(err, "scan handle")
		}
		out = append(out, atom.Handle(h))
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap(err, "iterate handles")
	}
	return out, nil
}

// wrap adds context and maps driver errors onto the db package sentinels.
func (s *SQLStore) wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	if db.IsDatabaseClosed(err) && !errors.Is(err, db.ErrDatabaseClosed) {
		return errors.Wrap(errors.WithSecondaryError(db.ErrDatabaseClosed, err), msg)
	}
	if db.IsMissingSchema(err) {
		return errors.WithHint(errors.Wrap(err, msg), "run 'atomspace db migrate' first")
	}
	return errors.Wrap(err, msg)
}
