package dbpebble

import (
	"errors"

	"github.com/cockroachdb/pebble"

	"github.com/setavenger/ztransparent/internal/database"
)

// get copies the value out of pebble's buffer before closing it.
func get(r pebble.Reader, key []byte) ([]byte, error) {
	val, closer, err := r.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}
	defer closer.Close()
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func newIter(r pebble.Reader, lowerBound, upperBound []byte) (database.Iterator, error) {
	it, err := r.NewIter(&pebble.IterOptions{LowerBound: lowerBound, UpperBound: upperBound})
	if err != nil {
		return nil, err
	}
	return it, nil
}
