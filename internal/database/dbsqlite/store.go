package dbsqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/setavenger/ztransparent/internal/database"
	"github.com/setavenger/ztransparent/internal/logging"
)

// Store implements database.KV on a single sqlite table keyed by blob.
//
// The pool holds one connection, so Store methods wait while a Txn is open.
type Store struct {
	DB *sql.DB
}

var _ database.KV = (*Store)(nil)

// Open opens or creates the sqlite database in dir.
func Open(dir string, o Options) (*Store, error) {
	db, err := OpenDB(dir, o)
	if err != nil {
		logging.L.Err(err).Str("path", dir).Msg("failed to open sqlite db")
		return nil, err
	}
	return &Store{DB: db}, nil
}

// OpenInMemory opens a private in-memory database. Used by tests and tools.
func OpenInMemory() (*Store, error) {
	db, err := open(":memory:")
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// querier is the part of *sql.DB and *sql.Tx the reads need.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const (
	getSQL    = `SELECT v FROM kv WHERE k = ?`
	setSQL    = `INSERT INTO kv (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`
	deleteSQL = `DELETE FROM kv WHERE k = ?`
)

func get(q querier, key []byte) ([]byte, error) {
	var val []byte
	err := q.QueryRowContext(context.Background(), getSQL, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if val == nil {
		val = []byte{}
	}
	return val, nil
}

func set(q querier, key, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := q.ExecContext(context.Background(), setSQL, key, value)
	return err
}

// newIter reads the whole range up front. Rows must not stay open on the
// single connection while the caller keeps writing through the same Txn.
func newIter(q querier, lowerBound, upperBound []byte) (database.Iterator, error) {
	query := `SELECT k, v FROM kv`
	var args []any
	switch {
	case lowerBound != nil && upperBound != nil:
		query += ` WHERE k >= ? AND k < ?`
		args = append(args, lowerBound, upperBound)
	case lowerBound != nil:
		query += ` WHERE k >= ?`
		args = append(args, lowerBound)
	case upperBound != nil:
		query += ` WHERE k < ?`
		args = append(args, upperBound)
	}
	query += ` ORDER BY k`

	rows, err := q.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	it := &iter{pos: -1}
	for rows.Next() {
		var kv pair
		if err = rows.Scan(&kv.key, &kv.value); err != nil {
			return nil, err
		}
		it.pairs = append(it.pairs, kv)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *Store) Get(key []byte) ([]byte, error) {
	return get(s.DB, key)
}

func (s *Store) Set(key, value []byte) error {
	return set(s.DB, key, value)
}

func (s *Store) NewIterator(lowerBound, upperBound []byte) (database.Iterator, error) {
	return newIter(s.DB, lowerBound, upperBound)
}

// Begin starts an immediate transaction, taking the write lock up front.
func (s *Store) Begin() (database.Txn, error) {
	tx, err := s.DB.BeginTx(context.Background(), nil)
	if err != nil {
		logging.L.Err(err).Msg("error opening transaction")
		return nil, err
	}
	return &txn{tx: tx}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

type txn struct {
	tx   *sql.Tx
	done bool
}

func (t *txn) Get(key []byte) ([]byte, error) {
	return get(t.tx, key)
}

func (t *txn) NewIterator(lowerBound, upperBound []byte) (database.Iterator, error) {
	return newIter(t.tx, lowerBound, upperBound)
}

func (t *txn) Set(key, value []byte) error {
	return set(t.tx, key, value)
}

func (t *txn) Delete(key []byte) error {
	_, err := t.tx.ExecContext(context.Background(), deleteSQL, key)
	return err
}

func (t *txn) Commit() error {
	if t.done {
		return errors.New("transaction already finished")
	}
	t.done = true
	if err := t.tx.Commit(); err != nil {
		logging.L.Err(err).Msg("error committing transaction")
		_ = t.tx.Rollback()
		return err
	}
	return nil
}

func (t *txn) Discard() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.tx.Rollback()
}

type pair struct {
	key, value []byte
}

type iter struct {
	pairs []pair
	pos   int
}

func (i *iter) First() bool {
	i.pos = 0
	return i.valid()
}

func (i *iter) Next() bool {
	i.pos++
	return i.valid()
}

func (i *iter) valid() bool { return i.pos >= 0 && i.pos < len(i.pairs) }

func (i *iter) Key() []byte   { return i.pairs[i.pos].key }
func (i *iter) Value() []byte { return i.pairs[i.pos].value }
func (i *iter) Error() error  { return nil }

func (i *iter) Close() error {
	i.pairs = nil
	return nil
}
