package dbpebble

import (
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

type Options struct {
	// CacheSize is the block cache size in bytes.
	CacheSize int64

	// BytesPerSync paces background SST syncs.
	BytesPerSync int

	// NoSync commits without waiting for the WAL to be synced.
	// A crash can lose the last commits, which then have to be re-synced.
	NoSync bool

	// InMemory keeps everything in memory. Used by tests and tools.
	InMemory bool
}

func DefaultOptions() Options {
	return Options{
		CacheSize:    512 << 20,
		BytesPerSync: 1 << 20,
	}
}

func OpenDB(dbPath string, o Options) (*pebble.DB, error) {
	opts := (&pebble.Options{}).EnsureDefaults()

	cache := pebble.NewCache(o.CacheSize)
	defer cache.Unref()
	opts.Cache = cache

	if o.BytesPerSync > 0 {
		opts.BytesPerSync = o.BytesPerSync // smoother background flushes (SST sync pacing)
	}
	if o.InMemory {
		opts.FS = vfs.NewMem()
	}

	opts.MaxConcurrentCompactions = func() int { return 4 }

	return pebble.Open(dbPath, opts)
}
