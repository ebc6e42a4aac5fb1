package zcash

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/pkg/errors"
)

const (
	// AddressHashBytes is the width of a pubkey hash or script hash.
	AddressHashBytes = 20

	checksumBytes = 4
	prefixBytes   = 2
)

var ErrInvalidAddress = errors.New("invalid transparent address")

// Base58Check version prefixes. Zcash uses two prefix bytes where bitcoin uses one.
var (
	mainnetPubKeyHashPrefix = [prefixBytes]byte{0x1c, 0xb8} // t1
	mainnetScriptHashPrefix = [prefixBytes]byte{0x1c, 0xbd} // t3
	testnetPubKeyHashPrefix = [prefixBytes]byte{0x1d, 0x25} // tm
	testnetScriptHashPrefix = [prefixBytes]byte{0x1c, 0xba} // t2
)

// Address is a transparent address: pay-to-public-key-hash or
// pay-to-script-hash, on mainnet or testnet.
//
// Address is comparable and can be used as a map key.
type Address struct {
	network    Network
	scriptHash bool
	hash       [AddressHashBytes]byte
}

func NewPubKeyHashAddress(network Network, hash [AddressHashBytes]byte) Address {
	return Address{network: network, hash: hash}
}

func NewScriptHashAddress(network Network, hash [AddressHashBytes]byte) Address {
	return Address{network: network, scriptHash: true, hash: hash}
}

func (a Address) Network() Network { return a.network }

// IsScriptHash reports whether a is pay-to-script-hash.
// Otherwise it is pay-to-public-key-hash.
func (a Address) IsScriptHash() bool { return a.scriptHash }

func (a Address) HashBytes() [AddressHashBytes]byte { return a.hash }

func (a Address) prefix() [prefixBytes]byte {
	switch {
	case a.network == Mainnet && !a.scriptHash:
		return mainnetPubKeyHashPrefix
	case a.network == Mainnet:
		return mainnetScriptHashPrefix
	case !a.scriptHash:
		return testnetPubKeyHashPrefix
	default:
		return testnetScriptHashPrefix
	}
}

// String returns the Base58Check encoding of the address.
func (a Address) String() string {
	p := a.prefix()
	payload := make([]byte, 0, prefixBytes+AddressHashBytes+checksumBytes)
	payload = append(payload, p[:]...)
	payload = append(payload, a.hash[:]...)
	payload = append(payload, chainhash.DoubleHashB(payload)[:checksumBytes]...)
	return base58.Encode(payload)
}

// DecodeAddress parses a Base58Check transparent address.
func DecodeAddress(s string) (Address, error) {
	raw := base58.Decode(s)
	if len(raw) != prefixBytes+AddressHashBytes+checksumBytes {
		return Address{}, errors.Wrapf(ErrInvalidAddress, "%q has length %d", s, len(raw))
	}
	body, sum := raw[:prefixBytes+AddressHashBytes], raw[prefixBytes+AddressHashBytes:]
	if !bytes.Equal(chainhash.DoubleHashB(body)[:checksumBytes], sum) {
		return Address{}, errors.Wrapf(ErrInvalidAddress, "%q has a bad checksum", s)
	}

	var hash [AddressHashBytes]byte
	copy(hash[:], body[prefixBytes:])

	var prefix [prefixBytes]byte
	copy(prefix[:], body[:prefixBytes])
	switch prefix {
	case mainnetPubKeyHashPrefix:
		return NewPubKeyHashAddress(Mainnet, hash), nil
	case mainnetScriptHashPrefix:
		return NewScriptHashAddress(Mainnet, hash), nil
	case testnetPubKeyHashPrefix:
		return NewPubKeyHashAddress(Testnet, hash), nil
	case testnetScriptHashPrefix:
		return NewScriptHashAddress(Testnet, hash), nil
	default:
		return Address{}, errors.Wrapf(ErrInvalidAddress, "%q has unknown prefix %x", s, prefix)
	}
}

// AddressFromLockScript recognises the standard P2PKH and P2SH lock scripts.
// Any other script has no address.
func AddressFromLockScript(network Network, script []byte) (Address, bool) {
	var hash [AddressHashBytes]byte
	switch txscript.GetScriptClass(script) {
	case txscript.PubKeyHashTy:
		// OP_DUP OP_HASH160 OP_DATA_20 <hash> OP_EQUALVERIFY OP_CHECKSIG
		copy(hash[:], script[3:3+AddressHashBytes])
		return NewPubKeyHashAddress(network, hash), true
	case txscript.ScriptHashTy:
		// OP_HASH160 OP_DATA_20 <hash> OP_EQUAL
		copy(hash[:], script[2:2+AddressHashBytes])
		return NewScriptHashAddress(network, hash), true
	default:
		return Address{}, false
	}
}

// LockScript returns the standard lock script paying to a.
func (a Address) LockScript() []byte {
	b := txscript.NewScriptBuilder()
	if a.scriptHash {
		b.AddOp(txscript.OP_HASH160).AddData(a.hash[:]).AddOp(txscript.OP_EQUAL)
	} else {
		b.AddOp(txscript.OP_DUP).AddOp(txscript.OP_HASH160).AddData(a.hash[:]).
			AddOp(txscript.OP_EQUALVERIFY).AddOp(txscript.OP_CHECKSIG)
	}
	script, err := b.Script()
	if err != nil {
		// a 20 byte push can't exceed the builder limits
		panic(fmt.Sprintf("building lock script: %v", err))
	}
	return script
}
