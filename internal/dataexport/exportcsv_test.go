package dataexport

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setavenger/ztransparent/internal/database/dblevel"
	"github.com/setavenger/ztransparent/internal/finalized"
	"github.com/setavenger/ztransparent/internal/zcash"
)

func readCSV(t *testing.T, path string) [][]string {
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestExportAll(t *testing.T) {
	db, err := dblevel.OpenInMemory()
	require.NoError(t, err)
	defer db.Close()
	state, err := finalized.Open(db, zcash.Mainnet)
	require.NoError(t, err)

	var h1, h2 [zcash.AddressHashBytes]byte
	h2[0] = 1
	a1 := zcash.NewPubKeyHashAddress(zcash.Mainnet, h1)
	a2 := zcash.NewScriptHashAddress(zcash.Mainnet, h2)
	cb := &zcash.Transaction{
		Hash:   chainhash.DoubleHashH([]byte("cb")),
		Inputs: []zcash.Input{{}},
		Outputs: []zcash.Output{
			{Value: 7, LockScript: a1.LockScript()},
			{Value: 9, LockScript: a2.LockScript()},
			{Value: 3, LockScript: a1.LockScript()},
		},
	}
	require.NoError(t, state.WriteBlock(context.Background(), &zcash.Block{Height: 3, Transactions: []*zcash.Transaction{cb}}))

	dir := filepath.Join(t.TempDir(), "export")
	require.NoError(t, ExportAll(state, dir, &a1))

	balances, err := filepath.Glob(filepath.Join(dir, "balances-*.csv"))
	require.NoError(t, err)
	require.Len(t, balances, 1)
	records := readCSV(t, balances[0])
	require.Len(t, records, 3)
	assert.Equal(t, []string{a1.String(), "10", "3:0:0"}, records[1])
	assert.Equal(t, []string{a2.String(), "9", "3:0:1"}, records[2])

	utxos, err := filepath.Glob(filepath.Join(dir, "utxos-*.csv"))
	require.NoError(t, err)
	require.Len(t, utxos, 1)
	records = readCSV(t, utxos[0])
	require.Len(t, records, 3)
	assert.Equal(t, "2", records[2][1])

	txids, err := filepath.Glob(filepath.Join(dir, "txids-*.csv"))
	require.NoError(t, err)
	require.Len(t, txids, 1)
	assert.Equal(t, [][]string{{"txid", "blockHeight", "index"}, {cb.Hash.String(), "3", "0"}}, readCSV(t, txids[0]))
}
