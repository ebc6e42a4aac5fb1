package finalized

import (
	"context"

	"github.com/pkg/errors"

	"github.com/setavenger/ztransparent/internal/database"
	"github.com/setavenger/ztransparent/internal/database/diskformat"
	"github.com/setavenger/ztransparent/internal/logging"
	"github.com/setavenger/ztransparent/internal/zcash"
)

// WriteBlock adds the transparent data of block to the state in one
// transaction. block must be the child of the current tip; the first block
// written can have any height.
//
// Spent outputs must be in the state, either from an earlier block or from an
// earlier transaction in block.
func (s *State) WriteBlock(ctx context.Context, block *zcash.Block) (err error) {
	if block.Height > diskformat.MaxDiskHeight {
		return errors.Wrapf(diskformat.ErrIndexOutOfRange, "block height %d", block.Height)
	}

	txn, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = txn.Discard()
		}
	}()

	tip, err := readTip(txn)
	switch {
	case errors.Is(err, database.ErrNotFound):
	case err != nil:
		return err
	case block.Height != tip.Height+1:
		return errors.Wrapf(ErrNonSequentialHeight, "tip %d, block %d", tip.Height, block.Height)
	}

	w := blockWriter{txn: txn, network: s.network}
	for i, tx := range block.Transactions {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		txLoc, err := diskformat.TransactionLocationFromInt(block.Height, i)
		if err != nil {
			return err
		}
		if err = w.writeTransaction(txLoc, tx); err != nil {
			return errors.Wrapf(err, "transaction %s at %s", tx.Hash, txLoc)
		}
	}

	if err = txn.Set(KeyTip(), tipBytes(Tip{Height: block.Height, Hash: block.Hash})); err != nil {
		return err
	}

	if err = txn.Commit(); err != nil {
		logging.L.Err(err).Stringer("blockhash", block.Hash).Uint32("height", uint32(block.Height)).
			Msg("failed to commit block")
		return err
	}
	logging.L.Debug().Stringer("blockhash", block.Hash).Uint32("height", uint32(block.Height)).
		Int("txs", len(block.Transactions)).Int("spent", w.spent).Int("created", w.created).
		Msg("finalized block")
	return nil
}

type blockWriter struct {
	txn     database.Txn
	network zcash.Network

	spent   int
	created int
}

func (w *blockWriter) writeTransaction(txLoc diskformat.TransactionLocation, tx *zcash.Transaction) error {
	if err := w.txn.Set(KeyTxLoc(tx.Hash), txLoc.AsBytes()); err != nil {
		return err
	}
	if err := w.txn.Set(KeyTxHash(txLoc), tx.Hash[:]); err != nil {
		return err
	}

	inputs := tx.Inputs
	if tx.IsCoinbase() {
		inputs = nil
	}
	for i, in := range inputs {
		if in.IsCoinbase() {
			return errors.Errorf("input %d has no previous output", i)
		}
		if err := w.spend(txLoc, *in.PrevOut); err != nil {
			return errors.Wrapf(err, "spending %s", in.PrevOut)
		}
	}

	for i := range tx.Outputs {
		outIndex, err := diskformat.OutputIndexFromInt(i)
		if err != nil {
			return err
		}
		loc := diskformat.NewOutputLocation(txLoc, outIndex)
		if err := w.create(loc, tx.Outputs[i]); err != nil {
			return errors.Wrapf(err, "creating output %s", loc)
		}
	}
	return nil
}

func (w *blockWriter) spend(spendingTx diskformat.TransactionLocation, op zcash.OutPoint) error {
	loc, err := outputLocation(w.txn, op)
	if errors.Is(err, database.ErrNotFound) {
		return errors.Wrap(ErrMissingUtxo, "unknown transaction")
	}
	if err != nil {
		return err
	}
	u, err := getUtxo(w.txn, loc)
	if errors.Is(err, database.ErrNotFound) {
		return ErrMissingUtxo
	}
	if err != nil {
		return err
	}
	if err := w.txn.Delete(KeyUtxo(loc)); err != nil {
		return err
	}
	w.spent++

	addrLoc, ok := u.AddressLocation()
	if !ok {
		return nil
	}
	output := u.Output()
	addr, ok := output.Address(w.network)
	if !ok {
		return errors.Wrapf(diskformat.ErrCorruptRecord, "utxo %s has an address location but no address", loc)
	}

	abl, err := getBalance(w.txn, addr)
	if err != nil {
		return errors.Wrapf(err, "balance of %s", addr)
	}
	if err := abl.SpendValue(output.Value); err != nil {
		return err
	}
	if err := w.txn.Set(KeyBalance(addr), abl.AsBytes()); err != nil {
		return err
	}
	if err := w.txn.Delete(KeyAddrUtxo(diskformat.NewAddressUnspentOutput(addrLoc, loc))); err != nil {
		return err
	}
	return w.txn.Set(KeyAddrTx(diskformat.NewAddressTransaction(addrLoc, spendingTx)), nil)
}

func (w *blockWriter) create(loc diskformat.OutputLocation, output zcash.Output) error {
	w.created++

	addr, ok := output.Address(w.network)
	if !ok {
		u := diskformat.NewUnspentOutputAddressLocation(output, nil)
		return w.txn.Set(KeyUtxo(loc), u.AsBytes())
	}

	abl, err := getBalance(w.txn, addr)
	if errors.Is(err, database.ErrNotFound) {
		// first output ever sent to addr
		abl = diskformat.NewAddressBalanceLocation(loc)
	} else if err != nil {
		return err
	}
	if err := abl.ReceiveValue(output.Value); err != nil {
		return err
	}
	if err := w.txn.Set(KeyBalance(addr), abl.AsBytes()); err != nil {
		return err
	}

	addrLoc := abl.AddressLocation()
	u := diskformat.NewUnspentOutputAddressLocation(output, &addrLoc)
	if err := w.txn.Set(KeyUtxo(loc), u.AsBytes()); err != nil {
		return err
	}
	if err := w.txn.Set(KeyAddrUtxo(diskformat.NewAddressUnspentOutput(addrLoc, loc)), nil); err != nil {
		return err
	}
	return w.txn.Set(KeyAddrTx(diskformat.NewAddressTransaction(addrLoc, loc.TransactionLocation)), nil)
}
