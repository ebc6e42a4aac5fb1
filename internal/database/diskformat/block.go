package diskformat

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"

	"github.com/setavenger/ztransparent/internal/zcash"
)

const (
	// HeightDiskBytes is the on-disk width of a block height.
	HeightDiskBytes = 3

	// TxIndexDiskBytes is the on-disk width of a transaction index.
	TxIndexDiskBytes = 2

	// TransactionLocationDiskBytes is height || transaction index.
	TransactionLocationDiskBytes = HeightDiskBytes + TxIndexDiskBytes

	// TransactionHashDiskBytes is the width of a stored transaction hash.
	TransactionHashDiskBytes = chainhash.HashSize

	// MaxDiskHeight is the largest height that fits in HeightDiskBytes.
	MaxDiskHeight zcash.Height = 1<<(8*HeightDiskBytes) - 1
)

var ErrIndexOutOfRange = errors.New("index out of range")

// HeightAsBytes returns the 3 byte big-endian form of h.
// Panics if h is greater than MaxDiskHeight.
func HeightAsBytes(h zcash.Height) []byte {
	var mem [4]byte
	binary.BigEndian.PutUint32(mem[:], uint32(h))
	return TruncateZeroBEBytes(mem[:], HeightDiskBytes)
}

func HeightFromBytes(b []byte) (zcash.Height, error) {
	if err := checkWidth("height", b, HeightDiskBytes); err != nil {
		return 0, err
	}
	return zcash.Height(binary.BigEndian.Uint32(ExpandZeroBEBytes(b, 4))), nil
}

// TransactionIndex is the index of a transaction in its block.
type TransactionIndex uint16

// TransactionIndexFromInt fails if i doesn't fit in a TransactionIndex.
func TransactionIndexFromInt(i int) (TransactionIndex, error) {
	if i < 0 || i > math.MaxUint16 {
		return 0, errors.Wrapf(ErrIndexOutOfRange, "transaction index %d", i)
	}
	return TransactionIndex(i), nil
}

func (i TransactionIndex) AsBytes() []byte {
	b := make([]byte, TxIndexDiskBytes)
	binary.BigEndian.PutUint16(b, uint16(i))
	return b
}

func (i *TransactionIndex) FromBytes(b []byte) error {
	if err := checkWidth("transaction index", b, TxIndexDiskBytes); err != nil {
		return err
	}
	*i = TransactionIndex(binary.BigEndian.Uint16(b))
	return nil
}

// TransactionLocation is the position of a transaction in the chain.
//
// Locations sort by height, then by index.
type TransactionLocation struct {
	Height zcash.Height
	Index  TransactionIndex
}

func NewTransactionLocation(height zcash.Height, index TransactionIndex) TransactionLocation {
	return TransactionLocation{Height: height, Index: index}
}

// TransactionLocationFromInt fails if index doesn't fit in a TransactionIndex.
func TransactionLocationFromInt(height zcash.Height, index int) (TransactionLocation, error) {
	i, err := TransactionIndexFromInt(index)
	if err != nil {
		return TransactionLocation{}, err
	}
	return NewTransactionLocation(height, i), nil
}

// Compare returns -1, 0 or +1 in chain order.
func (l TransactionLocation) Compare(o TransactionLocation) int {
	switch {
	case l.Height < o.Height:
		return -1
	case l.Height > o.Height:
		return 1
	case l.Index < o.Index:
		return -1
	case l.Index > o.Index:
		return 1
	}
	return 0
}

func (l TransactionLocation) Less(o TransactionLocation) bool { return l.Compare(o) < 0 }

func (l TransactionLocation) String() string {
	return fmt.Sprintf("%d:%d", l.Height, l.Index)
}

func (l TransactionLocation) AsBytes() []byte {
	b := make([]byte, 0, TransactionLocationDiskBytes)
	b = append(b, HeightAsBytes(l.Height)...)
	return append(b, l.Index.AsBytes()...)
}

func (l *TransactionLocation) FromBytes(b []byte) error {
	if err := checkWidth("transaction location", b, TransactionLocationDiskBytes); err != nil {
		return err
	}
	height, err := HeightFromBytes(b[:HeightDiskBytes])
	if err != nil {
		return err
	}
	var index TransactionIndex
	if err := index.FromBytes(b[HeightDiskBytes:]); err != nil {
		return err
	}
	*l = TransactionLocation{Height: height, Index: index}
	return nil
}

// TransactionHashFromBytes copies a stored transaction hash.
func TransactionHashFromBytes(b []byte) (chainhash.Hash, error) {
	var h chainhash.Hash
	if err := checkWidth("transaction hash", b, TransactionHashDiskBytes); err != nil {
		return h, err
	}
	copy(h[:], b)
	return h, nil
}
