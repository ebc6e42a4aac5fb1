// database defines the interfaces for the ordered key/value stores the
// finalized state is written to
package database

import "github.com/pkg/errors"

var ErrNotFound = errors.New("[no entry found]")

// Reader is the read side shared by stores and transactions.
type Reader interface {
	// Get returns a copy of the value stored under key, or ErrNotFound.
	Get(key []byte) ([]byte, error)

	// NewIterator iterates keys in [lowerBound, upperBound) in byte order.
	// A nil bound is unbounded.
	NewIterator(lowerBound, upperBound []byte) (Iterator, error)
}

// Iterator walks keys in ascending byte order. Key and Value are only valid
// until the next call to First or Next.
type Iterator interface {
	First() bool
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Close() error
}

// Txn is an atomic set of writes. Reads through a Txn see its own writes.
// Either Commit or Discard must be called.
type Txn interface {
	Reader
	Set(key, value []byte) error
	Delete(key []byte) error
	Commit() error
	Discard() error
}

// KV is an ordered key/value store.
type KV interface {
	Reader
	Set(key, value []byte) error
	Begin() (Txn, error)
	Close() error
}
