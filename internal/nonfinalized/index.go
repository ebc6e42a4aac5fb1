package nonfinalized

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"

	"github.com/setavenger/ztransparent/internal/database/diskformat"
	"github.com/setavenger/ztransparent/internal/zcash"
)

// AddressIndex holds the transfers of every address touched by one fork.
// It is not safe for concurrent use.
type AddressIndex struct {
	network zcash.Network
	byAddr  map[zcash.Address]*TransparentTransfers
}

func NewAddressIndex(network zcash.Network) *AddressIndex {
	return &AddressIndex{
		network: network,
		byAddr:  make(map[zcash.Address]*TransparentTransfers),
	}
}

func (ix *AddressIndex) transfers(addr zcash.Address) *TransparentTransfers {
	t, ok := ix.byAddr[addr]
	if !ok {
		t = NewTransparentTransfers()
		ix.byAddr[addr] = t
	}
	return t
}

// Transfers returns the transfers of addr in this fork, if there are any.
func (ix *AddressIndex) Transfers(addr zcash.Address) (*TransparentTransfers, bool) {
	t, ok := ix.byAddr[addr]
	return t, ok
}

// ReceiveOutput credits the output at loc to its address and notes the
// creating transaction. Outputs without an address are ignored.
func (ix *AddressIndex) ReceiveOutput(txHash chainhash.Hash, loc diskformat.OutputLocation, utxo zcash.Utxo) error {
	addr, ok := utxo.Output.Address(ix.network)
	if !ok {
		return nil
	}
	t := ix.transfers(addr)
	if err := t.Credit(loc, utxo); err != nil {
		return errors.Wrapf(err, "address %s", addr)
	}
	return t.NoteTx(loc.TransactionLocation, txHash)
}

// SpendOutput debits the spent output at loc from its address and notes the
// spending transaction.
func (ix *AddressIndex) SpendOutput(
	spendingLoc diskformat.TransactionLocation,
	spendingHash chainhash.Hash,
	loc diskformat.OutputLocation,
	utxo zcash.Utxo,
) error {
	addr, ok := utxo.Output.Address(ix.network)
	if !ok {
		return nil
	}
	t := ix.transfers(addr)
	if err := t.Debit(loc, utxo); err != nil {
		return errors.Wrapf(err, "address %s", addr)
	}
	return t.NoteTx(spendingLoc, spendingHash)
}

// Balance adds the change in this fork to finalized, the balance of addr in
// the finalized state. It fails if the result would be negative.
func (ix *AddressIndex) Balance(addr zcash.Address, finalized zcash.Amount) (zcash.Amount, error) {
	t, ok := ix.byAddr[addr]
	if !ok {
		return finalized, nil
	}
	total, err := finalized.Delta().Add(t.Balance())
	if err != nil {
		return 0, errors.Wrapf(err, "address %s", addr)
	}
	bal, err := total.Amount()
	if err != nil {
		return 0, errors.Wrapf(err, "address %s", addr)
	}
	return bal, nil
}

// Len is the number of addresses with transfers.
func (ix *AddressIndex) Len() int { return len(ix.byAddr) }

// Clone copies the index for a new fork that branches off this one.
func (ix *AddressIndex) Clone() *AddressIndex {
	c := &AddressIndex{
		network: ix.network,
		byAddr:  make(map[zcash.Address]*TransparentTransfers, len(ix.byAddr)),
	}
	for addr, t := range ix.byAddr {
		c.byAddr[addr] = t.Clone()
	}
	return c
}

// Discard drops every transfer, for when the fork is rolled back.
func (ix *AddressIndex) Discard() {
	clear(ix.byAddr)
}
