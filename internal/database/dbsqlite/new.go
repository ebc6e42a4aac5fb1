package dbsqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // driver

	"github.com/setavenger/ztransparent/internal/logging"
)

// FileName is the database file created inside the engine directory.
const FileName = "state.db"

type Options struct {
	// NoSync turns off fsync on commit.
	NoSync bool
	// BusyTimeout is how long a writer waits for a lock held by another process.
	BusyTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{BusyTimeout: 5 * time.Second}
}

func dsn(path string, o Options) string {
	sync := "NORMAL"
	if o.NoSync {
		sync = "OFF"
	}
	return "file:" + path +
		"?_txlock=immediate" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(" + sync + ")" +
		"&_pragma=busy_timeout(" + strconv.FormatInt(o.BusyTimeout.Milliseconds(), 10) + ")"
}

// OpenDB opens the sqlite file in dir, creating dir and the schema if needed.
func OpenDB(dir string, o Options) (*sql.DB, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	return open(dsn(filepath.Join(dir, FileName), o))
}

func open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// a single connection serializes writers and keeps :memory: databases alive
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		logging.L.Err(err).Msg("failed to create schema")
		db.Close()
		return nil, err
	}
	return db, nil
}

// Keys sort by memcmp, which matches the byte order of the other engines.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv (
  k BLOB PRIMARY KEY,
  v BLOB NOT NULL
) STRICT, WITHOUT ROWID;
`
