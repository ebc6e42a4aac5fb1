package benchmark

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setavenger/ztransparent/internal/database"
	"github.com/setavenger/ztransparent/internal/database/dblevel"
	"github.com/setavenger/ztransparent/internal/database/dbpebble"
	"github.com/setavenger/ztransparent/internal/database/dbsqlite"
	"github.com/setavenger/ztransparent/internal/database/diskformat"
	"github.com/setavenger/ztransparent/internal/zcash"
)

func openPebble(t testing.TB) database.KV {
	o := dbpebble.DefaultOptions()
	o.CacheSize = 8 << 20
	o.InMemory = true
	o.NoSync = true
	db, err := dbpebble.Open("", o)
	require.NoError(t, err)
	return db
}

func openLevel(t testing.TB) database.KV {
	db, err := dblevel.OpenInMemory()
	require.NoError(t, err)
	return db
}

func openSQLite(t testing.TB) database.KV {
	db, err := dbsqlite.OpenInMemory()
	require.NoError(t, err)
	return db
}

func smallChain() ChainParams {
	p := DefaultChainParams()
	p.Blocks = 40
	p.TxsPerBlock = 8
	p.Addresses = 30
	return p
}

// TestEnginesAgree writes the same chain into every engine and compares the
// resulting states against pebble.
func TestEnginesAgree(t *testing.T) {
	p := smallChain()
	blocks := GenerateChain(p)
	ctx := context.Background()

	pdb := openPebble(t)
	defer pdb.Close()
	ldb := openLevel(t)
	defer ldb.Close()
	sdb := openSQLite(t)
	defer sdb.Close()

	resP, err := WriteChain(ctx, "pebble", pdb, p.Network, blocks)
	require.NoError(t, err)
	resL, err := WriteChain(ctx, "leveldb", ldb, p.Network, blocks)
	require.NoError(t, err)
	resS, err := WriteChain(ctx, "sqlite", sdb, p.Network, blocks)
	require.NoError(t, err)
	assert.Equal(t, p.Blocks, resP.Blocks)
	assert.Equal(t, resP.Txs, resL.Txs)
	assert.Equal(t, resP.Txs, resS.Txs)

	require.NoError(t, CompareStates(resP.State, resL.State))
	require.NoError(t, CompareStates(resP.State, resS.State))
}

// TestChainConservesValue checks that balances add up to the coinbase
// subsidy, since generated transactions pay no fees.
func TestChainConservesValue(t *testing.T) {
	p := smallChain()
	db := openLevel(t)
	defer db.Close()

	res, err := WriteChain(context.Background(), "leveldb", db, p.Network, GenerateChain(p))
	require.NoError(t, err)

	var total int64
	err = res.State.EachBalance(func(addr zcash.Address, abl diskformat.AddressBalanceLocation) error {
		total += abl.Balance().Zatoshis()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(p.Blocks)*zcash.COIN, total)
}

func TestGenerateChainDeterministic(t *testing.T) {
	p := smallChain()
	a, b := GenerateChain(p), GenerateChain(p)
	require.Len(t, a, p.Blocks)
	for i := range a {
		assert.Equal(t, a[i].Hash, b[i].Hash)
		assert.Equal(t, len(a[i].Transactions), len(b[i].Transactions))
	}
	assert.Equal(t, zcash.Height(1), a[0].Height)
}

func BenchmarkWriteChain(b *testing.B) {
	p := DefaultChainParams()
	blocks := GenerateChain(p)
	for name, open := range map[string]func(testing.TB) database.KV{
		"pebble":  openPebble,
		"leveldb": openLevel,
		"sqlite":  openSQLite,
	} {
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				db := open(b)
				if _, err := WriteChain(context.Background(), name, db, p.Network, blocks); err != nil {
					b.Fatal(err)
				}
				db.Close()
			}
		})
	}
}
