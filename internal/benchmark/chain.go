package benchmark

import (
	"encoding/binary"
	"math/rand"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/setavenger/ztransparent/internal/zcash"
)

// ChainParams shapes a generated chain.
type ChainParams struct {
	Network     zcash.Network
	Blocks      int
	TxsPerBlock int
	Addresses   int
	Seed        int64
}

func DefaultChainParams() ChainParams {
	return ChainParams{
		Network:     zcash.Mainnet,
		Blocks:      200,
		TxsPerBlock: 20,
		Addresses:   500,
		Seed:        1,
	}
}

func hashFor(kind byte, height, index int) chainhash.Hash {
	var b [9]byte
	b[0] = kind
	binary.BigEndian.PutUint32(b[1:], uint32(height))
	binary.BigEndian.PutUint32(b[5:], uint32(index))
	return chainhash.DoubleHashH(b[:])
}

// GenerateChain builds a deterministic chain starting at height 1. Every
// non-coinbase transaction spends one earlier unspent output and splits it
// between two random addresses.
func GenerateChain(p ChainParams) []*zcash.Block {
	rng := rand.New(rand.NewSource(p.Seed))

	addrs := make([]zcash.Address, p.Addresses)
	for i := range addrs {
		var h [zcash.AddressHashBytes]byte
		rng.Read(h[:])
		if i%5 == 0 {
			addrs[i] = zcash.NewScriptHashAddress(p.Network, h)
		} else {
			addrs[i] = zcash.NewPubKeyHashAddress(p.Network, h)
		}
	}
	pay := func(zats int64) zcash.Output {
		return zcash.Output{Value: zcash.MustAmount(zats), LockScript: addrs[rng.Intn(len(addrs))].LockScript()}
	}

	type unspent struct {
		op    zcash.OutPoint
		value int64
	}
	var pool []unspent

	blocks := make([]*zcash.Block, 0, p.Blocks)
	for height := 1; height <= p.Blocks; height++ {
		block := &zcash.Block{Height: zcash.Height(height), Hash: hashFor('b', height, 0)}

		cb := &zcash.Transaction{
			Hash:    hashFor('t', height, 0),
			Inputs:  []zcash.Input{{}},
			Outputs: []zcash.Output{pay(zcash.COIN), {Value: 0, LockScript: []byte{0x6a}}},
		}
		block.Transactions = append(block.Transactions, cb)
		var created []unspent
		created = append(created, unspent{zcash.OutPoint{Hash: cb.Hash, Index: 0}, zcash.COIN})

		for i := 1; i < p.TxsPerBlock && len(pool) > 0; i++ {
			j := rng.Intn(len(pool))
			in := pool[j]
			pool[j] = pool[len(pool)-1]
			pool = pool[:len(pool)-1]

			first := in.value / 2
			tx := &zcash.Transaction{
				Hash:    hashFor('t', height, i),
				Inputs:  []zcash.Input{{PrevOut: &in.op}},
				Outputs: []zcash.Output{pay(first), pay(in.value - first)},
			}
			block.Transactions = append(block.Transactions, tx)
			created = append(created,
				unspent{zcash.OutPoint{Hash: tx.Hash, Index: 0}, first},
				unspent{zcash.OutPoint{Hash: tx.Hash, Index: 1}, in.value - first},
			)
		}
		pool = append(pool, created...)
		blocks = append(blocks, block)
	}
	return blocks
}
