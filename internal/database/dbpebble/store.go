package dbpebble

import (
	"errors"

	"github.com/cockroachdb/pebble"

	"github.com/setavenger/ztransparent/internal/database"
	"github.com/setavenger/ztransparent/internal/logging"
)

// Store implements database.KV on top of pebble.
type Store struct {
	DB        *pebble.DB
	writeOpts *pebble.WriteOptions
}

var _ database.KV = (*Store)(nil)

func NewStore(db *pebble.DB, o Options) *Store {
	wopts := pebble.Sync
	if o.NoSync {
		wopts = pebble.NoSync
	}
	return &Store{DB: db, writeOpts: wopts}
}

// Open opens or creates the pebble database at dbPath.
func Open(dbPath string, o Options) (*Store, error) {
	db, err := OpenDB(dbPath, o)
	if err != nil {
		logging.L.Err(err).Str("path", dbPath).Msg("failed to open pebble db")
		return nil, err
	}
	return NewStore(db, o), nil
}

func (s *Store) Get(key []byte) ([]byte, error) {
	return get(s.DB, key)
}

func (s *Store) Set(key, value []byte) error {
	return s.DB.Set(key, value, s.writeOpts)
}

func (s *Store) NewIterator(lowerBound, upperBound []byte) (database.Iterator, error) {
	return newIter(s.DB, lowerBound, upperBound)
}

// Begin starts an indexed batch, so reads see the batch's own writes.
func (s *Store) Begin() (database.Txn, error) {
	return &txn{batch: s.DB.NewIndexedBatch(), writeOpts: s.writeOpts}, nil
}

func (s *Store) Metrics() *pebble.Metrics {
	return s.DB.Metrics()
}

func (s *Store) Close() error {
	return s.DB.Close()
}

type txn struct {
	batch     *pebble.Batch
	writeOpts *pebble.WriteOptions
	done      bool
}

func (t *txn) Get(key []byte) ([]byte, error) {
	return get(t.batch, key)
}

func (t *txn) NewIterator(lowerBound, upperBound []byte) (database.Iterator, error) {
	return newIter(t.batch, lowerBound, upperBound)
}

func (t *txn) Set(key, value []byte) error {
	return t.batch.Set(key, value, nil)
}

func (t *txn) Delete(key []byte) error {
	return t.batch.Delete(key, nil)
}

func (t *txn) Commit() error {
	if t.done {
		return errors.New("transaction already finished")
	}
	t.done = true
	if err := t.batch.Commit(t.writeOpts); err != nil {
		logging.L.Err(err).Msg("failed to commit batch")
		_ = t.batch.Close()
		return err
	}
	return t.batch.Close()
}

func (t *txn) Discard() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.batch.Close()
}
