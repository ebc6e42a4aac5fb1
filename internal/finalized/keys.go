package finalized

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/setavenger/ztransparent/internal/database/diskformat"
	"github.com/setavenger/ztransparent/internal/zcash"
)

// ---------------- Keys ----------------

func withPrefix(prefix byte, parts ...[]byte) []byte {
	n := 1
	for _, p := range parts {
		n += len(p)
	}
	k := make([]byte, 1, n)
	k[0] = prefix
	for _, p := range parts {
		k = append(k, p...)
	}
	return k
}

func KeyBalance(addr zcash.Address) []byte {
	return withPrefix(KBalance, diskformat.AddressAsBytes(addr))
}

func KeyUtxo(loc diskformat.OutputLocation) []byte {
	return withPrefix(KUtxo, loc.AsBytes())
}

func KeyAddrUtxo(k diskformat.AddressUnspentOutput) []byte {
	return withPrefix(KAddrUtxo, k.AsBytes())
}

func KeyAddrTx(k diskformat.AddressTransaction) []byte {
	return withPrefix(KAddrTx, k.AsBytes())
}

func KeyTxLoc(hash chainhash.Hash) []byte {
	return withPrefix(KTxLoc, hash[:])
}

func KeyTxHash(loc diskformat.TransactionLocation) []byte {
	return withPrefix(KTxHash, loc.AsBytes())
}

func KeyTip() []byte {
	return []byte{KTip}
}

// ---------------- Bounds ----------------

// upperBound returns the smallest key greater than every key starting with
// prefix, or nil if there is none.
func upperBound(prefix []byte) []byte {
	ub := append([]byte(nil), prefix...)
	for i := len(ub) - 1; i >= 0; i-- {
		ub[i]++
		if ub[i] != 0 {
			return ub[:i+1]
		}
	}
	return nil
}

// BoundsPrefix covers every key of one column.
func BoundsPrefix(prefix byte) (lb, ub []byte) {
	return []byte{prefix}, upperBound([]byte{prefix})
}

// BoundsAddrUtxo covers the unspent outputs of the address at addrLoc.
func BoundsAddrUtxo(addrLoc diskformat.AddressLocation) (lb, ub []byte) {
	lb = KeyAddrUtxo(diskformat.AddressUnspentOutputMin(addrLoc))
	return lb, upperBound(withPrefix(KAddrUtxo, addrLoc.AsBytes()))
}

// BoundsAddrTx covers the transactions of the address at addrLoc with a
// height in r. ok is false if no height in r can be stored.
func BoundsAddrTx(addrLoc diskformat.AddressLocation, r zcash.HeightRange) (lb, ub []byte, ok bool) {
	if r.Start > r.End || r.Start > diskformat.MaxDiskHeight {
		return nil, nil, false
	}
	start := diskformat.NewTransactionLocation(r.Start, 0)
	lb = KeyAddrTx(diskformat.NewAddressTransaction(addrLoc, start))

	if r.End >= diskformat.MaxDiskHeight {
		return lb, upperBound(withPrefix(KAddrTx, addrLoc.AsBytes())), true
	}
	end := diskformat.NewTransactionLocation(r.End+1, 0)
	ub = KeyAddrTx(diskformat.NewAddressTransaction(addrLoc, end))
	return lb, ub, true
}
