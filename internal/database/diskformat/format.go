// Package diskformat defines the on-disk serialization of the finalized
// transparent state.
//
// Keys are built from fixed-width big-endian fields, so that the byte order of
// encoded keys in the key/value store is the same as chain order: block
// height, then transaction index, then output index.
//
// FormatVersion must be incremented each time the format of any key or value
// in this package changes. Databases written with another version have to be
// re-synced, they are never migrated.
package diskformat

import (
	"fmt"

	"github.com/pkg/errors"
)

// FormatVersion is stored once per database under the meta version key.
const FormatVersion byte = 1

var (
	// ErrCorruptRecord is returned when stored bytes violate a width, range,
	// or tag constraint. The record, and usually the database, is corrupt.
	ErrCorruptRecord = errors.New("corrupt database record")

	// ErrFormatVersionMismatch is returned when a database was written with
	// a format version this package can't read.
	ErrFormatVersionMismatch = errors.New("database format version mismatch")
)

// IntoDisk is implemented by values that have an on-disk byte form.
type IntoDisk interface {
	AsBytes() []byte
}

// FromDisk is implemented by pointers to values that can be parsed from their
// on-disk byte form. FromBytes doesn't retain b.
type FromDisk interface {
	FromBytes(b []byte) error
}

func corrupt(format string, args ...any) error {
	return errors.Wrapf(ErrCorruptRecord, format, args...)
}

func checkWidth(name string, b []byte, width int) error {
	if len(b) != width {
		return corrupt("%s: got %d bytes, want %d", name, len(b), width)
	}
	return nil
}

// TruncateZeroBEBytes drops leading bytes from the big-endian integer memBytes
// until it is diskWidth long.
//
// Panics if any dropped byte is non-zero, because the truncation would lose
// data, or if memBytes is shorter than diskWidth.
func TruncateZeroBEBytes(memBytes []byte, diskWidth int) []byte {
	truncated := len(memBytes) - diskWidth
	if truncated < 0 {
		panic(fmt.Sprintf("can't truncate %d bytes to %d bytes", len(memBytes), diskWidth))
	}
	for i, b := range memBytes[:truncated] {
		if b != 0 {
			panic(fmt.Sprintf(
				"truncating %x to %d bytes loses non-zero byte %d", memBytes, diskWidth, i,
			))
		}
	}
	return memBytes[truncated:]
}

// ExpandZeroBEBytes left-pads the big-endian integer diskBytes with zeroes
// until it is memWidth long.
//
// Panics if diskBytes is longer than memWidth.
func ExpandZeroBEBytes(diskBytes []byte, memWidth int) []byte {
	pad := memWidth - len(diskBytes)
	if pad < 0 {
		panic(fmt.Sprintf("can't expand %d bytes to %d bytes", len(diskBytes), memWidth))
	}
	out := make([]byte, memWidth)
	copy(out[pad:], diskBytes)
	return out
}
