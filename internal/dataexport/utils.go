package dataexport

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/setavenger/ztransparent/internal/finalized"
	"github.com/setavenger/ztransparent/internal/logging"
	"github.com/setavenger/ztransparent/internal/zcash"
)

// ExportAll writes the balance of every address to a timestamped file in dir.
// If addr is set, its utxos and transactions are exported too.
func ExportAll(state *finalized.State, dir string, addr *zcash.Address) error {
	logging.L.Info().Msg("Exporting data")
	ts := time.Now().Unix()

	logging.L.Info().Msg("Exporting balances")
	if err := ExportBalances(state, filepath.Join(dir, fmt.Sprintf("balances-%d.csv", ts))); err != nil {
		return err
	}
	logging.L.Info().Msg("Finished balances")

	if addr == nil {
		return nil
	}

	logging.L.Info().Stringer("address", addr).Msg("Exporting address utxos")
	if err := ExportAddressUtxos(state, *addr, filepath.Join(dir, fmt.Sprintf("utxos-%s-%d.csv", addr, ts))); err != nil {
		return err
	}
	logging.L.Info().Stringer("address", addr).Msg("Exporting address txids")
	if err := ExportAddressTxIDs(state, *addr, filepath.Join(dir, fmt.Sprintf("txids-%s-%d.csv", addr, ts))); err != nil {
		return err
	}

	logging.L.Info().Msg("Export Done")
	return nil
}
