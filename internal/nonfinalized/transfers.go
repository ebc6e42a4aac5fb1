// nonfinalized tracks the transparent transfers of each address in a
// non-finalized fork. Nothing here is persisted; a fork that is rolled back
// takes its transfers with it.
package nonfinalized

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
	"github.com/zyedidia/generic/btree"

	"github.com/setavenger/ztransparent/internal/database/diskformat"
	"github.com/setavenger/ztransparent/internal/zcash"
)

var (
	ErrDuplicateOutput = errors.New("output already created in this fork")
	ErrAlreadySpent    = errors.New("output already spent in this fork")
	ErrConflictingTx   = errors.New("transaction location already holds another transaction")
)

// TransparentTransfers is the aggregate of one address's transfers in a fork.
//
// Outputs created in the fork and outputs spent in the fork are disjoint: an
// output created and then spent in the same fork only shows up as spent.
type TransparentTransfers struct {
	balance zcash.AmountDelta

	txIDs   *btree.Tree[diskformat.TransactionLocation, chainhash.Hash]
	created *btree.Tree[diskformat.OutputLocation, zcash.Utxo]
	spent   *btree.Tree[diskformat.OutputLocation, struct{}]
}

func lessTxLoc(a, b diskformat.TransactionLocation) bool { return a.Less(b) }
func lessOutLoc(a, b diskformat.OutputLocation) bool     { return a.Less(b) }

func NewTransparentTransfers() *TransparentTransfers {
	return &TransparentTransfers{
		txIDs:   btree.New[diskformat.TransactionLocation, chainhash.Hash](lessTxLoc),
		created: btree.New[diskformat.OutputLocation, zcash.Utxo](lessOutLoc),
		spent:   btree.New[diskformat.OutputLocation, struct{}](lessOutLoc),
	}
}

// Credit adds an output created at loc.
func (t *TransparentTransfers) Credit(loc diskformat.OutputLocation, utxo zcash.Utxo) error {
	if _, ok := t.spent.Get(loc); ok {
		return errors.Wrapf(ErrAlreadySpent, "crediting %s", loc)
	}
	if _, ok := t.created.Get(loc); ok {
		return errors.Wrapf(ErrDuplicateOutput, "crediting %s", loc)
	}
	balance, err := t.balance.Add(utxo.Output.Value.Delta())
	if err != nil {
		return errors.Wrapf(err, "crediting %s", loc)
	}
	t.balance = balance
	t.created.Put(loc, utxo)
	return nil
}

// Debit spends the output at loc. utxo is the spent output, which may have
// been created in this fork or in the finalized state.
func (t *TransparentTransfers) Debit(loc diskformat.OutputLocation, utxo zcash.Utxo) error {
	if _, ok := t.spent.Get(loc); ok {
		return errors.Wrapf(ErrAlreadySpent, "debiting %s", loc)
	}
	balance, err := t.balance.Sub(utxo.Output.Value.Delta())
	if err != nil {
		return errors.Wrapf(err, "debiting %s", loc)
	}
	t.balance = balance
	t.created.Remove(loc)
	t.spent.Put(loc, struct{}{})
	return nil
}

// NoteTx records that the transaction at loc sent to or spent from the
// address. Noting the same transaction twice is a no-op.
func (t *TransparentTransfers) NoteTx(loc diskformat.TransactionLocation, hash chainhash.Hash) error {
	if prev, ok := t.txIDs.Get(loc); ok && prev != hash {
		return errors.Wrapf(ErrConflictingTx, "%s: have %s, got %s", loc, prev, hash)
	}
	t.txIDs.Put(loc, hash)
	return nil
}

// Balance is the change of the address balance in this fork. It can be
// negative when the fork spends finalized outputs.
func (t *TransparentTransfers) Balance() zcash.AmountDelta { return t.balance }

// TxID is a transaction hash with its location.
type TxID struct {
	Location diskformat.TransactionLocation
	Hash     chainhash.Hash
}

// TxIDs returns the noted transactions with a height in r, in chain order.
func (t *TransparentTransfers) TxIDs(r zcash.HeightRange) []TxID {
	var out []TxID
	t.txIDs.Each(func(loc diskformat.TransactionLocation, hash chainhash.Hash) {
		if r.Contains(loc.Height) {
			out = append(out, TxID{Location: loc, Hash: hash})
		}
	})
	return out
}

// CreatedUtxo is an output created in the fork and not spent in it.
type CreatedUtxo struct {
	Location diskformat.OutputLocation
	Utxo     zcash.Utxo
}

// CreatedUtxos returns the unspent outputs created in the fork, in chain order.
func (t *TransparentTransfers) CreatedUtxos() []CreatedUtxo {
	out := make([]CreatedUtxo, 0, t.created.Size())
	t.created.Each(func(loc diskformat.OutputLocation, utxo zcash.Utxo) {
		out = append(out, CreatedUtxo{Location: loc, Utxo: utxo})
	})
	return out
}

// SpentUtxos returns the locations of outputs spent in the fork, in chain order.
func (t *TransparentTransfers) SpentUtxos() []diskformat.OutputLocation {
	out := make([]diskformat.OutputLocation, 0, t.spent.Size())
	t.spent.Each(func(loc diskformat.OutputLocation, _ struct{}) {
		out = append(out, loc)
	})
	return out
}

// IsSpent reports whether the output at loc was spent in the fork.
func (t *TransparentTransfers) IsSpent(loc diskformat.OutputLocation) bool {
	_, ok := t.spent.Get(loc)
	return ok
}

func (t *TransparentTransfers) IsEmpty() bool {
	return t.balance == 0 && t.txIDs.Size() == 0 && t.created.Size() == 0 && t.spent.Size() == 0
}

// Clone returns a deep copy. Utxo lock scripts are shared, they are never
// modified.
func (t *TransparentTransfers) Clone() *TransparentTransfers {
	c := NewTransparentTransfers()
	c.balance = t.balance
	t.txIDs.Each(func(k diskformat.TransactionLocation, v chainhash.Hash) { c.txIDs.Put(k, v) })
	t.created.Each(func(k diskformat.OutputLocation, v zcash.Utxo) { c.created.Put(k, v) })
	t.spent.Each(func(k diskformat.OutputLocation, v struct{}) { c.spent.Put(k, v) })
	return c
}
