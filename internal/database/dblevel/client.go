package dblevel

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/setavenger/ztransparent/internal/database"
	"github.com/setavenger/ztransparent/internal/logging"
)

// Store implements database.KV on top of goleveldb.
type Store struct {
	DB *leveldb.DB
}

var _ database.KV = (*Store)(nil)

// OpenDBConnection opens the leveldb instance at path.
func OpenDBConnection(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		// keys are fixed width and share long prefixes
		BlockRestartInterval: 16,
	})
	if err != nil {
		logging.L.Err(err).Str("path", path).Msg("error opening db connection")
		return nil, err
	}
	return &Store{DB: db}, nil
}

// OpenInMemory opens a leveldb instance backed by memory. Used by tests and tools.
func OpenInMemory() (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

func (s *Store) Get(key []byte) ([]byte, error) {
	val, err := s.DB.Get(key, nil)
	return val, mapNotFound(err)
}

func (s *Store) Set(key, value []byte) error {
	return s.DB.Put(key, value, &opt.WriteOptions{Sync: true})
}

func (s *Store) NewIterator(lowerBound, upperBound []byte) (database.Iterator, error) {
	return &iter{it: s.DB.NewIterator(&util.Range{Start: lowerBound, Limit: upperBound}, nil)}, nil
}

// Begin opens a leveldb transaction. Other writes to the DB block until it
// is committed or discarded.
func (s *Store) Begin() (database.Txn, error) {
	tr, err := s.DB.OpenTransaction()
	if err != nil {
		logging.L.Err(err).Msg("error opening transaction")
		return nil, err
	}
	return &txn{tr: tr}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func mapNotFound(err error) error {
	if errors.Is(err, leveldb.ErrNotFound) {
		return database.ErrNotFound
	}
	return err
}

type txn struct {
	tr   *leveldb.Transaction
	done bool
}

func (t *txn) Get(key []byte) ([]byte, error) {
	val, err := t.tr.Get(key, nil)
	return val, mapNotFound(err)
}

func (t *txn) NewIterator(lowerBound, upperBound []byte) (database.Iterator, error) {
	return &iter{it: t.tr.NewIterator(&util.Range{Start: lowerBound, Limit: upperBound}, nil)}, nil
}

func (t *txn) Set(key, value []byte) error {
	return t.tr.Put(key, value, nil)
}

func (t *txn) Delete(key []byte) error {
	return t.tr.Delete(key, nil)
}

func (t *txn) Commit() error {
	if t.done {
		return errors.New("transaction already finished")
	}
	t.done = true
	if err := t.tr.Commit(); err != nil {
		logging.L.Err(err).Msg("error committing transaction")
		t.tr.Discard()
		return err
	}
	return nil
}

func (t *txn) Discard() error {
	if t.done {
		return nil
	}
	t.done = true
	t.tr.Discard()
	return nil
}

// iter adapts a leveldb iterator, which is released instead of closed.
type iter struct {
	it iterator.Iterator
}

func (i *iter) First() bool   { return i.it.First() }
func (i *iter) Next() bool    { return i.it.Next() }
func (i *iter) Key() []byte   { return i.it.Key() }
func (i *iter) Value() []byte { return i.it.Value() }
func (i *iter) Error() error  { return i.it.Error() }

func (i *iter) Close() error {
	i.it.Release()
	return nil
}
