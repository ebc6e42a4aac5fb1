package finalized

import (
	"context"
	"fmt"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setavenger/ztransparent/internal/database"
	"github.com/setavenger/ztransparent/internal/database/dblevel"
	"github.com/setavenger/ztransparent/internal/database/dbpebble"
	"github.com/setavenger/ztransparent/internal/database/dbsqlite"
	"github.com/setavenger/ztransparent/internal/database/diskformat"
	"github.com/setavenger/ztransparent/internal/zcash"
)

var engines = map[string]func(t *testing.T) database.KV{
	"pebble": func(t *testing.T) database.KV {
		o := dbpebble.DefaultOptions()
		o.CacheSize = 1 << 20
		o.InMemory = true
		s, err := dbpebble.Open("", o)
		require.NoError(t, err)
		return s
	},
	"leveldb": func(t *testing.T) database.KV {
		s, err := dblevel.OpenInMemory()
		require.NoError(t, err)
		return s
	},
	"sqlite": func(t *testing.T) database.KV {
		s, err := dbsqlite.OpenInMemory()
		require.NoError(t, err)
		return s
	},
}

func forEachEngine(t *testing.T, fn func(t *testing.T, s *State)) {
	for name, open := range engines {
		t.Run(name, func(t *testing.T) {
			db := open(t)
			defer db.Close()
			s, err := Open(db, zcash.Mainnet)
			require.NoError(t, err)
			fn(t, s)
		})
	}
}

func addr(b byte) zcash.Address {
	var h [zcash.AddressHashBytes]byte
	h[0] = b
	return zcash.NewPubKeyHashAddress(zcash.Mainnet, h)
}

func hashOf(s string) chainhash.Hash {
	return chainhash.DoubleHashH([]byte(s))
}

func payTo(a zcash.Address, zats int64) zcash.Output {
	return zcash.Output{Value: zcash.MustAmount(zats), LockScript: a.LockScript()}
}

func coinbase(name string, outs ...zcash.Output) *zcash.Transaction {
	return &zcash.Transaction{
		Hash:    hashOf(name),
		Inputs:  []zcash.Input{{}},
		Outputs: outs,
	}
}

func spendTx(name string, prev []zcash.OutPoint, outs ...zcash.Output) *zcash.Transaction {
	tx := &zcash.Transaction{Hash: hashOf(name), Outputs: outs}
	for i := range prev {
		tx.Inputs = append(tx.Inputs, zcash.Input{PrevOut: &prev[i]})
	}
	return tx
}

func block(height zcash.Height, txs ...*zcash.Transaction) *zcash.Block {
	return &zcash.Block{Height: height, Hash: hashOf(fmt.Sprintf("block%d", height)), Transactions: txs}
}

func TestWriteBlockBalancesAndUtxos(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *State) {
		ctx := context.Background()
		alice, bob := addr(1), addr(2)

		_, err := s.Tip()
		assert.ErrorIs(t, err, database.ErrNotFound)

		cb1 := coinbase("cb1", payTo(alice, 50), payTo(alice, 25))
		require.NoError(t, s.WriteBlock(ctx, block(1, cb1)))

		tip, err := s.Tip()
		require.NoError(t, err)
		assert.Equal(t, zcash.Height(1), tip.Height)

		bal, err := s.AddressBalance(alice)
		require.NoError(t, err)
		assert.Equal(t, zcash.Amount(75), bal)

		loc, err := s.AddressLocation(alice)
		require.NoError(t, err)
		assert.Equal(t, "1:0:0", loc.String())

		// alice pays 30 to bob, 20 back to herself, 0.00000000 fee
		cb2 := coinbase("cb2", payTo(bob, 1))
		pay := spendTx("pay", []zcash.OutPoint{{Hash: cb1.Hash, Index: 0}}, payTo(bob, 30), payTo(alice, 20))
		require.NoError(t, s.WriteBlock(ctx, block(2, cb2, pay)))

		bal, err = s.AddressBalance(alice)
		require.NoError(t, err)
		assert.Equal(t, zcash.Amount(45), bal)
		bal, err = s.AddressBalance(bob)
		require.NoError(t, err)
		assert.Equal(t, zcash.Amount(31), bal)

		// bob's location is his first output, the coinbase of block 2
		loc, err = s.AddressLocation(bob)
		require.NoError(t, err)
		assert.Equal(t, "2:0:0", loc.String())

		utxos, err := s.AddressUtxos(alice)
		require.NoError(t, err)
		require.Len(t, utxos, 2)
		assert.Equal(t, zcash.OutPoint{Hash: cb1.Hash, Index: 1}, utxos[0].OutPoint)
		assert.True(t, utxos[0].Utxo.FromCoinbase)
		assert.Equal(t, zcash.OutPoint{Hash: pay.Hash, Index: 1}, utxos[1].OutPoint)
		assert.False(t, utxos[1].Utxo.FromCoinbase)
		assert.Equal(t, zcash.Height(2), utxos[1].Utxo.Height)
		assert.Equal(t, zcash.Amount(20), utxos[1].Utxo.Output.Value)

		_, _, err = s.UtxoByOutPoint(zcash.OutPoint{Hash: cb1.Hash, Index: 0})
		assert.ErrorIs(t, err, database.ErrNotFound)

		utxo, loc, err := s.UtxoByOutPoint(zcash.OutPoint{Hash: pay.Hash, Index: 0})
		require.NoError(t, err)
		assert.Equal(t, "2:1:0", loc.String())
		assert.Equal(t, zcash.Amount(30), utxo.Output.Value)

		txLoc, err := s.TransactionLocation(pay.Hash)
		require.NoError(t, err)
		assert.Equal(t, diskformat.NewTransactionLocation(2, 1), txLoc)
		hash, err := s.TransactionHash(txLoc)
		require.NoError(t, err)
		assert.Equal(t, pay.Hash, hash)
	})
}

func TestAddressTxIDs(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *State) {
		ctx := context.Background()
		alice, bob := addr(1), addr(2)

		cb1 := coinbase("cb1", payTo(alice, 100))
		require.NoError(t, s.WriteBlock(ctx, block(1, cb1)))

		// spends from and sends to alice in one transaction
		self := spendTx("self", []zcash.OutPoint{{Hash: cb1.Hash}}, payTo(alice, 60), payTo(bob, 40))
		require.NoError(t, s.WriteBlock(ctx, block(2, coinbase("cb2"), self)))

		toBob := spendTx("toBob", []zcash.OutPoint{{Hash: self.Hash}}, payTo(bob, 60))
		require.NoError(t, s.WriteBlock(ctx, block(3, coinbase("cb3"), toBob)))

		txs, err := s.AddressTxIDs(alice, zcash.FullHeightRange())
		require.NoError(t, err)
		require.Len(t, txs, 3)
		assert.Equal(t, cb1.Hash, txs[0].Hash)
		assert.Equal(t, self.Hash, txs[1].Hash)
		assert.Equal(t, toBob.Hash, txs[2].Hash)

		txs, err = s.AddressTxIDs(alice, zcash.HeightRange{Start: 2, End: 2})
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, self.Hash, txs[0].Hash)

		txs, err = s.AddressTxIDs(alice, zcash.HeightRange{Start: 3, End: 2})
		require.NoError(t, err)
		assert.Empty(t, txs)

		txs, err = s.AddressTxIDs(bob, zcash.HeightRange{Start: 0, End: 3})
		require.NoError(t, err)
		require.Len(t, txs, 2)

		bal, err := s.AddressBalance(alice)
		require.NoError(t, err)
		assert.Zero(t, bal)
		utxos, err := s.AddressUtxos(alice)
		require.NoError(t, err)
		assert.Empty(t, utxos)

		txs, err = s.AddressTxIDs(addr(9), zcash.FullHeightRange())
		require.NoError(t, err)
		assert.Empty(t, txs)
	})
}

func TestSpendWithinBlock(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *State) {
		alice := addr(1)
		cb := coinbase("cb", payTo(alice, 10))
		spend := spendTx("spend", []zcash.OutPoint{{Hash: cb.Hash}}, payTo(alice, 10))
		require.NoError(t, s.WriteBlock(context.Background(), block(7, cb, spend)))

		utxos, err := s.AddressUtxos(alice)
		require.NoError(t, err)
		require.Len(t, utxos, 1)
		assert.Equal(t, spend.Hash, utxos[0].OutPoint.Hash)

		loc, err := s.AddressLocation(alice)
		require.NoError(t, err)
		assert.Equal(t, "7:0:0", loc.String())
	})
}

func TestOutputsWithoutAddress(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *State) {
		opReturn := zcash.Output{Value: 0, LockScript: []byte{0x6a, 0x01, 0x02}}
		cb := coinbase("cb", opReturn)
		require.NoError(t, s.WriteBlock(context.Background(), block(1, cb)))

		loc, err := diskformat.OutputLocationFromInts(1, 0, 0)
		require.NoError(t, err)
		utxo, err := s.Utxo(loc)
		require.NoError(t, err)
		assert.True(t, opReturn.Equal(&utxo.Output))

		counts, err := s.CountByPrefix()
		require.NoError(t, err)
		assert.Equal(t, 0, counts[KBalance])
		assert.Equal(t, 1, counts[KUtxo])
		assert.Equal(t, 1, counts[KTxLoc])
		assert.Equal(t, 1, counts[KTip])
		assert.Equal(t, 1, counts[KMeta])
	})
}

func TestWriteBlockRejects(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *State) {
		ctx := context.Background()
		alice := addr(1)
		cb := coinbase("cb", payTo(alice, 10))
		require.NoError(t, s.WriteBlock(ctx, block(1, cb)))

		err := s.WriteBlock(ctx, block(3, coinbase("cb3")))
		assert.ErrorIs(t, err, ErrNonSequentialHeight)

		// the second spend of cb:0 fails and the whole block is discarded
		first := spendTx("first", []zcash.OutPoint{{Hash: cb.Hash}}, payTo(alice, 10))
		second := spendTx("second", []zcash.OutPoint{{Hash: cb.Hash}}, payTo(alice, 10))
		err = s.WriteBlock(ctx, block(2, coinbase("cb2"), first, second))
		assert.ErrorIs(t, err, ErrMissingUtxo)

		tip, err := s.Tip()
		require.NoError(t, err)
		assert.Equal(t, zcash.Height(1), tip.Height)
		_, err = s.TransactionLocation(first.Hash)
		assert.ErrorIs(t, err, database.ErrNotFound)
		bal, err := s.AddressBalance(alice)
		require.NoError(t, err)
		assert.Equal(t, zcash.Amount(10), bal)

		unknown := spendTx("unknown", []zcash.OutPoint{{Hash: hashOf("nope")}})
		err = s.WriteBlock(ctx, block(2, coinbase("cb2"), unknown))
		assert.ErrorIs(t, err, ErrMissingUtxo)

		orphan := &zcash.Transaction{Hash: hashOf("orphan"), Inputs: []zcash.Input{{}, {}}}
		err = s.WriteBlock(ctx, block(2, coinbase("cb2"), orphan))
		assert.ErrorContains(t, err, "input 0 has no previous output")

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, s.WriteBlock(cancelled, block(2, coinbase("cb2"))), context.Canceled)

		require.NoError(t, s.WriteBlock(ctx, block(2, coinbase("cb2"))))
	})
}

func TestOpenVersionMismatch(t *testing.T) {
	db, err := dblevel.OpenInMemory()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Set(database.DBVersionKey(), []byte{diskformat.FormatVersion + 1}))
	_, err = Open(db, zcash.Mainnet)
	assert.ErrorIs(t, err, diskformat.ErrFormatVersionMismatch)
}

func TestBoundsAddrUtxo(t *testing.T) {
	addrLoc := diskformat.NewOutputLocation(diskformat.NewTransactionLocation(7, 2), 1)
	lb, ub := BoundsAddrUtxo(addrLoc)
	assert.Len(t, lb, 1+diskformat.AddressUnspentOutputDiskBytes)

	first := KeyAddrUtxo(diskformat.NewAddressUnspentOutput(addrLoc, diskformat.OutputLocation{}))
	assert.Equal(t, first, lb)
	last := KeyAddrUtxo(diskformat.NewAddressUnspentOutput(addrLoc,
		diskformat.NewOutputLocation(diskformat.NewTransactionLocation(diskformat.MaxDiskHeight, 0xffff), 0xffffff)))
	assert.Less(t, string(last), string(ub))

	next := diskformat.NewOutputLocation(diskformat.NewTransactionLocation(7, 2), 2)
	assert.GreaterOrEqual(t, string(KeyAddrUtxo(diskformat.AddressUnspentOutputMin(next))), string(ub))
}

func TestBoundsAddrTx(t *testing.T) {
	var loc diskformat.AddressLocation
	_, _, ok := BoundsAddrTx(loc, zcash.HeightRange{Start: diskformat.MaxDiskHeight + 1, End: zcash.MaxHeight})
	assert.False(t, ok)

	lb, ub, ok := BoundsAddrTx(loc, zcash.FullHeightRange())
	require.True(t, ok)
	assert.Less(t, string(lb), string(ub))
	assert.Len(t, ub, 1+diskformat.OutputLocationDiskBytes)

	assert.Nil(t, upperBound([]byte{0xff, 0xff}))
	assert.Equal(t, []byte{0x01, 0x03}, upperBound([]byte{0x01, 0x02, 0xff}))
}
