package zcash

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// OutPoint references a transparent output by transaction hash and index.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.Hash, o.Index)
}

// Utxo is an unspent transparent output together with the block data
// needed to validate spends of it.
type Utxo struct {
	Output       Output
	Height       Height
	FromCoinbase bool
}

// Input is a transparent input. PrevOut is nil for coinbase inputs.
type Input struct {
	PrevOut *OutPoint
}

func (in Input) IsCoinbase() bool { return in.PrevOut == nil }

// Transaction holds the transparent parts of a transaction. Shielded data is
// not needed by the transparent indexes.
type Transaction struct {
	Hash    chainhash.Hash
	Inputs  []Input
	Outputs []Output
}

func (tx *Transaction) IsCoinbase() bool {
	return len(tx.Inputs) == 1 && tx.Inputs[0].IsCoinbase()
}

type Block struct {
	Height       Height
	Hash         chainhash.Hash
	Transactions []*Transaction
}
