package zcash

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
)

// MaxLockScriptBytes bounds the lock script length accepted by Deserialize.
// A script can't be larger than a block.
const MaxLockScriptBytes = 2_000_000

// Output is a transparent output: a value and the script that locks it.
type Output struct {
	Value      Amount
	LockScript []byte
}

// Serialize writes the consensus encoding of o:
// value (int64 little-endian) || CompactSize(len(script)) || script.
//
// The layout is identical to a bitcoin TxOut.
func (o *Output) Serialize(w io.Writer) error {
	return wire.WriteTxOut(w, 0, 0, &wire.TxOut{
		Value:    int64(o.Value),
		PkScript: o.LockScript,
	})
}

// Bytes returns the consensus encoding of o.
func (o *Output) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(AmountBytes + wire.VarIntSerializeSize(uint64(len(o.LockScript))) + len(o.LockScript))
	if err := o.Serialize(&buf); err != nil {
		// writes to a bytes.Buffer don't fail
		panic(err)
	}
	return buf.Bytes()
}

// Deserialize reads exactly one consensus encoded output from r and leaves
// any following bytes unread.
func (o *Output) Deserialize(r io.Reader) error {
	var valueBytes [AmountBytes]byte
	if _, err := io.ReadFull(r, valueBytes[:]); err != nil {
		return errors.Wrap(err, "reading output value")
	}
	value, err := NewAmount(int64(binary.LittleEndian.Uint64(valueBytes[:])))
	if err != nil {
		return err
	}
	script, err := wire.ReadVarBytes(r, 0, MaxLockScriptBytes, "lock script")
	if err != nil {
		return errors.Wrap(err, "reading output lock script")
	}
	o.Value = value
	o.LockScript = script
	return nil
}

// Address returns the address o pays to, if its lock script is standard.
func (o *Output) Address(network Network) (Address, bool) {
	return AddressFromLockScript(network, o.LockScript)
}

func (o *Output) Equal(other *Output) bool {
	return o.Value == other.Value && bytes.Equal(o.LockScript, other.LockScript)
}
