package database

import (
	"github.com/pkg/errors"

	"github.com/setavenger/ztransparent/internal/database/diskformat"
)

// MetaPrefix is the key prefix for database metadata. It sorts after every
// column prefix.
const MetaPrefix = 0xFF

var dbVersionKey = append([]byte{MetaPrefix}, []byte("db_version")...)

// DBVersionKey returns the key the format version is stored under.
func DBVersionKey() []byte {
	return append([]byte(nil), dbVersionKey...)
}

// CheckVersion checks whether the database was written with version.
// An empty database gets version written to it.
//
// A mismatch wraps diskformat.ErrFormatVersionMismatch. It is fatal, the
// database has to be re-synced.
func CheckVersion(db KV, version byte) error {
	entry, err := db.Get(dbVersionKey)
	if errors.Is(err, ErrNotFound) {
		// set the version in an empty DB
		return db.Set(dbVersionKey, []byte{version})
	}
	if err != nil {
		return err
	}
	if len(entry) != 1 {
		return errors.Wrapf(
			diskformat.ErrFormatVersionMismatch,
			"stored version has %d bytes", len(entry),
		)
	}
	if entry[0] != version {
		return errors.Wrapf(
			diskformat.ErrFormatVersionMismatch,
			"supported version: %d, version of database: %d", version, entry[0],
		)
	}
	return nil
}
