package zcash

import (
	"bytes"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHash(b byte) [AddressHashBytes]byte {
	var h [AddressHashBytes]byte
	for i := range h {
		h[i] = b + byte(i)
	}
	return h
}

func TestAddressStringPrefixes(t *testing.T) {
	tests := []struct {
		addr   Address
		prefix string
	}{
		{NewPubKeyHashAddress(Mainnet, testHash(0x00)), "t1"},
		{NewScriptHashAddress(Mainnet, testHash(0x10)), "t3"},
		{NewPubKeyHashAddress(Testnet, testHash(0x20)), "tm"},
		{NewScriptHashAddress(Testnet, testHash(0x30)), "t2"},
	}
	for _, tt := range tests {
		s := tt.addr.String()
		assert.True(t, strings.HasPrefix(s, tt.prefix), "%s should start with %s", s, tt.prefix)

		decoded, err := DecodeAddress(s)
		require.NoError(t, err)
		assert.Equal(t, tt.addr, decoded)
	}
}

func TestDecodeAddressErrors(t *testing.T) {
	s := NewPubKeyHashAddress(Mainnet, testHash(1)).String()

	// flip the last character to break the checksum
	last := s[len(s)-1]
	replacement := byte('2')
	if last == replacement {
		replacement = '3'
	}
	_, err := DecodeAddress(s[:len(s)-1] + string(replacement))
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = DecodeAddress("t1")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = DecodeAddress("")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestAddressFromLockScript(t *testing.T) {
	for _, addr := range []Address{
		NewPubKeyHashAddress(Mainnet, testHash(3)),
		NewScriptHashAddress(Mainnet, testHash(4)),
		NewPubKeyHashAddress(Testnet, testHash(5)),
		NewScriptHashAddress(Testnet, testHash(6)),
	} {
		script := addr.LockScript()
		got, ok := AddressFromLockScript(addr.Network(), script)
		require.True(t, ok)
		assert.Equal(t, addr, got)
	}

	hash := testHash(7)
	p2pkh := []byte{txscript.OP_DUP, txscript.OP_HASH160, txscript.OP_DATA_20}
	p2pkh = append(p2pkh, hash[:]...)
	p2pkh = append(p2pkh, txscript.OP_EQUALVERIFY, txscript.OP_CHECKSIG)
	assert.Equal(t, NewPubKeyHashAddress(Mainnet, testHash(7)).LockScript(), p2pkh)

	for _, script := range [][]byte{
		nil,
		{txscript.OP_TRUE},
		{txscript.OP_RETURN, 0x01, 0x02},
		p2pkh[:len(p2pkh)-1],
	} {
		_, ok := AddressFromLockScript(Mainnet, script)
		assert.False(t, ok, "script %x", script)
	}
}

func TestAmountRange(t *testing.T) {
	_, err := NewAmount(-1)
	assert.ErrorIs(t, err, ErrAmountOutOfRange)
	_, err = NewAmount(MaxMoney + 1)
	assert.ErrorIs(t, err, ErrAmountOutOfRange)

	a := MustAmount(MaxMoney)
	_, err = a.Add(1)
	assert.ErrorIs(t, err, ErrAmountOutOfRange)
	_, err = Amount(0).Sub(1)
	assert.ErrorIs(t, err, ErrAmountOutOfRange)

	d, err := Amount(5).Delta().Sub(Amount(7).Delta())
	require.NoError(t, err)
	assert.Equal(t, AmountDelta(-2), d)
	_, err = d.Amount()
	assert.ErrorIs(t, err, ErrAmountOutOfRange)

	_, err = AmountDelta(-MaxMoney).Sub(1)
	assert.ErrorIs(t, err, ErrAmountOutOfRange)

	assert.Equal(t, "1.50000000 ZEC", Amount(150_000_000).String())
	assert.Equal(t, "-0.00000002 ZEC", d.String())
}

func TestAmountBytes(t *testing.T) {
	b := MustAmount(0x0102).Bytes()
	assert.Equal(t, [AmountBytes]byte{0x02, 0x01, 0, 0, 0, 0, 0, 0}, b)

	a, err := AmountFromBytes(b)
	require.NoError(t, err)
	assert.Equal(t, Amount(0x0102), a)

	_, err = AmountFromBytes([AmountBytes]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff})
	assert.ErrorIs(t, err, ErrAmountOutOfRange)
}

func TestOutputSerialize(t *testing.T) {
	o := Output{Value: 1, LockScript: []byte{txscript.OP_TRUE}}
	assert.Equal(t, []byte{0x01, 0, 0, 0, 0, 0, 0, 0, 0x01, 0x51}, o.Bytes())

	long := Output{Value: MustAmount(COIN), LockScript: bytes.Repeat([]byte{0xac}, 300)}
	encoded := long.Bytes()
	// 0xfd prefix and a 2 byte little-endian length
	assert.Equal(t, []byte{0xfd, 0x2c, 0x01}, encoded[8:11])

	r := bytes.NewReader(append(encoded, 0xaa, 0xbb))
	var decoded Output
	require.NoError(t, decoded.Deserialize(r))
	assert.True(t, long.Equal(&decoded))
	assert.Equal(t, 2, r.Len())

	var bad Output
	negative := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x00}
	assert.ErrorIs(t, bad.Deserialize(bytes.NewReader(negative)), ErrAmountOutOfRange)
	assert.Error(t, bad.Deserialize(bytes.NewReader(encoded[:20])))
}

func TestParseNetwork(t *testing.T) {
	n, err := ParseNetwork("mainnet")
	require.NoError(t, err)
	assert.Equal(t, Mainnet, n)

	n, err = ParseNetwork("test")
	require.NoError(t, err)
	assert.Equal(t, Testnet, n)
	assert.Equal(t, "test", n.String())

	_, err = ParseNetwork("signet")
	assert.EqualError(t, err, `unknown network "signet"`)
}

func TestHeightRange(t *testing.T) {
	r := HeightRange{Start: 5, End: 10}
	assert.True(t, r.Contains(5))
	assert.True(t, r.Contains(10))
	assert.False(t, r.Contains(11))
	assert.True(t, FullHeightRange().Contains(MaxHeight))
}
