package diskformat

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setavenger/ztransparent/internal/zcash"
)

func TestTransactionLocationBytes(t *testing.T) {
	loc := NewTransactionLocation(0x010203, 0x0405)
	encoded := loc.AsBytes()
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04, 0x05}, encoded)

	var decoded TransactionLocation
	require.NoError(t, decoded.FromBytes(encoded))
	assert.Equal(t, loc, decoded)

	assert.ErrorIs(t, decoded.FromBytes(encoded[:4]), ErrCorruptRecord)
}

func TestTransactionLocationOrder(t *testing.T) {
	locs := []TransactionLocation{
		NewTransactionLocation(0, 0),
		NewTransactionLocation(0, 1),
		NewTransactionLocation(0, 0xffff),
		NewTransactionLocation(1, 0),
		NewTransactionLocation(0x0100, 0),
		NewTransactionLocation(MaxDiskHeight, 0xffff),
	}
	for i := 0; i+1 < len(locs); i++ {
		assert.True(t, locs[i].Less(locs[i+1]))
		assert.Equal(t, -1, bytes.Compare(locs[i].AsBytes(), locs[i+1].AsBytes()))
	}
}

func TestHeightTruncation(t *testing.T) {
	assert.Equal(t, []byte{0xff, 0xff, 0xff}, HeightAsBytes(MaxDiskHeight))
	assert.Panics(t, func() { HeightAsBytes(MaxDiskHeight + 1) })

	h, err := HeightFromBytes([]byte{0x00, 0x01, 0x00})
	require.NoError(t, err)
	assert.Equal(t, zcash.Height(256), h)
}

func TestTransactionIndexFromInt(t *testing.T) {
	i, err := TransactionIndexFromInt(0xffff)
	require.NoError(t, err)
	assert.Equal(t, TransactionIndex(0xffff), i)

	_, err = TransactionIndexFromInt(0x10000)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = TransactionIndexFromInt(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestByteWidthHelpers(t *testing.T) {
	assert.Equal(t, []byte{0x01, 0x02}, TruncateZeroBEBytes([]byte{0x00, 0x00, 0x01, 0x02}, 2))
	assert.Panics(t, func() { TruncateZeroBEBytes([]byte{0x00, 0x01, 0x01, 0x02}, 2) })
	assert.Panics(t, func() { TruncateZeroBEBytes([]byte{0x01}, 2) })

	assert.Equal(t, []byte{0x00, 0x00, 0x01, 0x02}, ExpandZeroBEBytes([]byte{0x01, 0x02}, 4))
	assert.Panics(t, func() { ExpandZeroBEBytes([]byte{0x01, 0x02, 0x03}, 2) })
}

func TestTransactionHashFromBytes(t *testing.T) {
	b := bytes.Repeat([]byte{0xab}, TransactionHashDiskBytes)
	h, err := TransactionHashFromBytes(b)
	require.NoError(t, err)
	assert.Equal(t, b, h[:])

	_, err = TransactionHashFromBytes(b[1:])
	assert.ErrorIs(t, err, ErrCorruptRecord)
}

func TestAddressIndexKeys(t *testing.T) {
	addrLoc := NewOutputLocation(NewTransactionLocation(5, 1), 0)
	utxoKey := NewAddressUnspentOutput(addrLoc, NewOutputLocation(NewTransactionLocation(9, 3), 2))

	encoded := utxoKey.AsBytes()
	require.Len(t, encoded, AddressUnspentOutputDiskBytes)
	var decodedUtxo AddressUnspentOutput
	require.NoError(t, decodedUtxo.FromBytes(encoded))
	assert.Equal(t, utxoKey, decodedUtxo)
	assert.Equal(t, -1, bytes.Compare(AddressUnspentOutputMin(addrLoc).AsBytes(), encoded))

	txKey := NewAddressTransaction(addrLoc, NewTransactionLocation(9, 3))
	encoded = txKey.AsBytes()
	require.Len(t, encoded, AddressTransactionDiskBytes)
	var decodedTx AddressTransaction
	require.NoError(t, decodedTx.FromBytes(encoded))
	assert.Equal(t, txKey, decodedTx)

	later := NewAddressTransaction(addrLoc, NewTransactionLocation(10, 0))
	assert.Equal(t, -1, bytes.Compare(encoded, later.AsBytes()))

	assert.ErrorIs(t, decodedTx.FromBytes(encoded[1:]), ErrCorruptRecord)
}
