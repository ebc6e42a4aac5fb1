// dbtest checks that a database.KV engine behaves the way the state
// layer expects. Engines run it from their own tests.
package dbtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setavenger/ztransparent/internal/database"
)

// Opener returns a fresh, empty store. The store is closed by the caller.
type Opener func(t *testing.T) database.KV

func RunKVTests(t *testing.T, open Opener) {
	t.Run("GetSet", func(t *testing.T) { testGetSet(t, open(t)) })
	t.Run("IteratorBounds", func(t *testing.T) { testIteratorBounds(t, open(t)) })
	t.Run("TxnReadsOwnWrites", func(t *testing.T) { testTxnReadsOwnWrites(t, open(t)) })
	t.Run("TxnDiscard", func(t *testing.T) { testTxnDiscard(t, open(t)) })
	t.Run("Version", func(t *testing.T) { testVersion(t, open(t)) })
}

func collect(t *testing.T, r database.Reader, lb, ub []byte) []string {
	it, err := r.NewIterator(lb, ub)
	require.NoError(t, err)
	defer it.Close()

	var keys []string
	for ok := it.First(); ok; ok = it.Next() {
		keys = append(keys, string(it.Key()))
	}
	require.NoError(t, it.Error())
	return keys
}

func testGetSet(t *testing.T, db database.KV) {
	defer db.Close()

	_, err := db.Get([]byte("missing"))
	assert.ErrorIs(t, err, database.ErrNotFound)

	require.NoError(t, db.Set([]byte("k"), []byte("v1")))
	val, err := db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), val)

	// returned values must not alias engine buffers
	val[0] = 'x'
	val, err = db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), val)

	require.NoError(t, db.Set([]byte("empty"), nil))
	val, err = db.Get([]byte("empty"))
	require.NoError(t, err)
	assert.Empty(t, val)
}

func testIteratorBounds(t *testing.T, db database.KV) {
	defer db.Close()

	for _, k := range []string{"\x01c", "\x01a", "\x02a", "\x01b", "\x00z"} {
		require.NoError(t, db.Set([]byte(k), []byte{1}))
	}

	assert.Equal(t, []string{"\x01a", "\x01b", "\x01c"}, collect(t, db, []byte{0x01}, []byte{0x02}))
	assert.Equal(t, []string{"\x01b"}, collect(t, db, []byte("\x01b"), []byte("\x01c")))
	assert.Equal(t, []string{"\x00z", "\x01a", "\x01b", "\x01c", "\x02a"}, collect(t, db, nil, nil))
	assert.Empty(t, collect(t, db, []byte{0x03}, []byte{0x04}))
}

func testTxnReadsOwnWrites(t *testing.T, db database.KV) {
	defer db.Close()

	require.NoError(t, db.Set([]byte("\x01old"), []byte("1")))

	txn, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, txn.Set([]byte("\x01new"), []byte("2")))
	require.NoError(t, txn.Delete([]byte("\x01old")))

	val, err := txn.Get([]byte("\x01new"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), val)
	_, err = txn.Get([]byte("\x01old"))
	assert.ErrorIs(t, err, database.ErrNotFound)
	assert.Equal(t, []string{"\x01new"}, collect(t, txn, []byte{0x01}, []byte{0x02}))

	require.NoError(t, txn.Commit())
	assert.Error(t, txn.Commit())
	require.NoError(t, txn.Discard())

	assert.Equal(t, []string{"\x01new"}, collect(t, db, []byte{0x01}, []byte{0x02}))
}

func testTxnDiscard(t *testing.T, db database.KV) {
	defer db.Close()

	txn, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, txn.Set([]byte("k"), []byte("v")))
	require.NoError(t, txn.Discard())

	_, err = db.Get([]byte("k"))
	assert.ErrorIs(t, err, database.ErrNotFound)

	// the store is usable after a discard
	txn, err = db.Begin()
	require.NoError(t, err)
	require.NoError(t, txn.Set([]byte("k"), []byte("v")))
	require.NoError(t, txn.Commit())
	_, err = db.Get([]byte("k"))
	assert.NoError(t, err)
}

func testVersion(t *testing.T, db database.KV) {
	defer db.Close()

	require.NoError(t, database.CheckVersion(db, 1))
	val, err := db.Get(database.DBVersionKey())
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, val)

	require.NoError(t, database.CheckVersion(db, 1))
	assert.Error(t, database.CheckVersion(db, 2))
}
