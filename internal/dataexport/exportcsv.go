package dataexport

import (
	"encoding/csv"
	"encoding/hex"
	"os"
	"path/filepath"
	"strconv"

	"github.com/setavenger/ztransparent/internal/database/diskformat"
	"github.com/setavenger/ztransparent/internal/finalized"
	"github.com/setavenger/ztransparent/internal/logging"
	"github.com/setavenger/ztransparent/internal/zcash"
)

func writeToCSV(path string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	logging.L.Info().Msgf("Writing to %s", path)
	file, err := os.Create(path)
	if err != nil {
		logging.L.Err(err).Str("path", path).Msg("failed creating file")
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(records); err != nil {
		return err
	}
	return file.Sync()
}

/* Balances */

func ExportBalances(state *finalized.State, path string) error {
	records := [][]string{{"address", "balance", "firstOutput"}}
	err := state.EachBalance(func(addr zcash.Address, abl diskformat.AddressBalanceLocation) error {
		records = append(records, []string{
			addr.String(),
			strconv.FormatInt(abl.Balance().Zatoshis(), 10),
			abl.AddressLocation().String(),
		})
		return nil
	})
	if err != nil {
		logging.L.Err(err).Msg("error fetching all balances")
		return err
	}
	return writeToCSV(path, records)
}

/* UTXOs */

func ExportAddressUtxos(state *finalized.State, addr zcash.Address, path string) error {
	utxos, err := state.AddressUtxos(addr)
	if err != nil {
		logging.L.Err(err).Stringer("address", addr).Msg("error fetching address utxos")
		return err
	}
	return writeToCSV(path, convertUtxosToRecords(utxos))
}

func convertUtxosToRecords(utxos []finalized.AddressUtxo) [][]string {
	records := [][]string{{"txid", "vout", "location", "scriptPubKey", "value", "coinbase"}}
	for _, u := range utxos {
		records = append(records, []string{
			u.OutPoint.Hash.String(),
			strconv.FormatUint(uint64(u.OutPoint.Index), 10),
			u.Location.String(),
			hex.EncodeToString(u.Utxo.Output.LockScript),
			strconv.FormatInt(u.Utxo.Output.Value.Zatoshis(), 10),
			strconv.FormatBool(u.Utxo.FromCoinbase),
		})
	}
	return records
}

/* Transactions */

func ExportAddressTxIDs(state *finalized.State, addr zcash.Address, path string) error {
	txs, err := state.AddressTxIDs(addr, zcash.FullHeightRange())
	if err != nil {
		logging.L.Err(err).Stringer("address", addr).Msg("error fetching address txids")
		return err
	}
	records := [][]string{{"txid", "blockHeight", "index"}}
	for _, tx := range txs {
		records = append(records, []string{
			tx.Hash.String(),
			strconv.FormatUint(uint64(tx.Location.Height), 10),
			strconv.FormatUint(uint64(tx.Location.Index), 10),
		})
	}
	return writeToCSV(path, records)
}
