package dbpebble

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/setavenger/ztransparent/internal/database"
	"github.com/setavenger/ztransparent/internal/database/dbtest"
)

func TestStore(t *testing.T) {
	dbtest.RunKVTests(t, func(t *testing.T) database.KV {
		o := DefaultOptions()
		o.CacheSize = 1 << 20
		o.InMemory = true
		s, err := Open("", o)
		require.NoError(t, err)
		return s
	})
}

func TestStoreOnDisk(t *testing.T) {
	dir := t.TempDir()
	o := DefaultOptions()
	o.CacheSize = 1 << 20

	s, err := Open(dir, o)
	require.NoError(t, err)
	require.NoError(t, s.Set([]byte("k"), []byte("v")))
	require.NoError(t, s.Close())

	s, err = Open(dir, o)
	require.NoError(t, err)
	defer s.Close()
	val, err := s.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), val)
	require.NotNil(t, s.Metrics())
}
