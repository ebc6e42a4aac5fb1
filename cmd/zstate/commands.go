package main

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/setavenger/ztransparent/internal/benchmark"
	"github.com/setavenger/ztransparent/internal/config"
	"github.com/setavenger/ztransparent/internal/database/dblevel"
	"github.com/setavenger/ztransparent/internal/database/dbpebble"
	"github.com/setavenger/ztransparent/internal/database/dbsqlite"
	"github.com/setavenger/ztransparent/internal/dataexport"
	"github.com/setavenger/ztransparent/internal/server"
	"github.com/setavenger/ztransparent/internal/zcash"
)

func withExplorer(fn func(cmd *cobra.Command, de *DatabaseExplorer, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.ErrOrStderr(), "Opening %s database at: %s\n", config.DBEngine, dbPath)
		de, err := NewDatabaseExplorer(config.DBEngine, dbPath, config.Network)
		if err != nil {
			return fmt.Errorf("error opening database: %w", err)
		}
		defer de.Close()
		return fn(cmd, de, args)
	}
}

func addressArg(args []string) (zcash.Address, error) {
	addr, err := zcash.DecodeAddress(args[0])
	if err != nil {
		return addr, err
	}
	if addr.Network() != config.Network {
		return addr, fmt.Errorf("address %s is for network %s, database is %s", addr, addr.Network(), config.Network)
	}
	return addr, nil
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show database information",
	Long: `Show database information including:
- Finalized tip and format version
- Key counts by column
- Engine metrics (pebble only)`,
	RunE: withExplorer(func(cmd *cobra.Command, de *DatabaseExplorer, _ []string) error {
		return de.PrintDatabaseInfo(cmd.OutOrStdout())
	}),
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Count keys in every column",
	RunE: withExplorer(func(cmd *cobra.Command, de *DatabaseExplorer, _ []string) error {
		return de.PrintKeyTypeSummary(cmd.OutOrStdout())
	}),
}

var balanceCmd = &cobra.Command{
	Use:   "balance <address>",
	Short: "Show the finalized balance of a transparent address",
	Args:  cobra.ExactArgs(1),
	RunE: withExplorer(func(cmd *cobra.Command, de *DatabaseExplorer, args []string) error {
		addr, err := addressArg(args)
		if err != nil {
			return err
		}
		return de.PrintBalance(cmd.OutOrStdout(), addr)
	}),
}

var utxosCmd = &cobra.Command{
	Use:   "utxos <address>",
	Short: "List the unspent outputs of a transparent address in chain order",
	Args:  cobra.ExactArgs(1),
	RunE: withExplorer(func(cmd *cobra.Command, de *DatabaseExplorer, args []string) error {
		addr, err := addressArg(args)
		if err != nil {
			return err
		}
		return de.PrintUtxos(cmd.OutOrStdout(), addr)
	}),
}

var txidsCmd = &cobra.Command{
	Use:   "txids <address>",
	Short: "List the transactions of a transparent address in chain order",
	Args:  cobra.ExactArgs(1),
	RunE: withExplorer(func(cmd *cobra.Command, de *DatabaseExplorer, args []string) error {
		if startHeight > endHeight {
			return fmt.Errorf("start-height must be less than or equal to end-height")
		}
		addr, err := addressArg(args)
		if err != nil {
			return err
		}
		r := zcash.HeightRange{Start: zcash.Height(startHeight), End: zcash.Height(endHeight)}
		return de.PrintTxIDs(cmd.OutOrStdout(), addr, r)
	}),
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only HTTP API",
	RunE: withExplorer(func(cmd *cobra.Command, de *DatabaseExplorer, _ []string) error {
		server.RunServer(&server.ApiHandler{State: de.State})
		return nil
	}),
}

var exportCmd = &cobra.Command{
	Use:   "export [address]",
	Short: "Export balances, and optionally one address's utxos and transactions, to CSV",
	Args:  cobra.MaximumNArgs(1),
	RunE: withExplorer(func(cmd *cobra.Command, de *DatabaseExplorer, args []string) error {
		var addr *zcash.Address
		if len(args) == 1 {
			a, err := addressArg(args)
			if err != nil {
				return err
			}
			addr = &a
		}
		dir := exportDir
		if dir == "" {
			dir = filepath.Join(config.BaseDirectory, "data-export")
		}
		return dataexport.ExportAll(de.State, dir, addr)
	}),
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Write a generated chain into every engine and compare the results",
	Long: `bench generates a deterministic chain, writes it into in-memory pebble,
leveldb and sqlite databases, reports the write speed of each and checks
that they all hold the same state. The configured database is not touched.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p := benchmark.DefaultChainParams()
		p.Network = config.Network
		p.Blocks = benchBlocks
		blocks := benchmark.GenerateChain(p)
		ctx := cmd.Context()

		o := dbpebble.DefaultOptions()
		o.CacheSize = config.CacheSize
		o.InMemory = true
		pdb, err := dbpebble.Open("", o)
		if err != nil {
			return err
		}
		defer pdb.Close()
		ldb, err := dblevel.OpenInMemory()
		if err != nil {
			return err
		}
		defer ldb.Close()
		sdb, err := dbsqlite.OpenInMemory()
		if err != nil {
			return err
		}
		defer sdb.Close()

		resP, err := benchmark.WriteChain(ctx, config.EnginePebble, pdb, p.Network, blocks)
		if err != nil {
			return err
		}
		resL, err := benchmark.WriteChain(ctx, config.EngineLevelDB, ldb, p.Network, blocks)
		if err != nil {
			return err
		}
		resS, err := benchmark.WriteChain(ctx, config.EngineSQLite, sdb, p.Network, blocks)
		if err != nil {
			return err
		}
		for _, r := range []benchmark.Result{resP, resL, resS} {
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s %d blocks %d txs in %s (%.1f blocks/s)\n",
				r.Engine, r.Blocks, r.Txs, r.Duration, r.BlocksPerSecond())
		}
		for _, r := range []benchmark.Result{resL, resS} {
			if err := benchmark.CompareStates(resP.State, r.State); err != nil {
				return errors.Wrapf(err, "%s disagrees with pebble", r.Engine)
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), "engines agree")
		return nil
	},
}
