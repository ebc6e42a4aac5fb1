package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"

	"github.com/setavenger/ztransparent/internal/config"
	"github.com/setavenger/ztransparent/internal/database"
	"github.com/setavenger/ztransparent/internal/database/dblevel"
	"github.com/setavenger/ztransparent/internal/database/dbpebble"
	"github.com/setavenger/ztransparent/internal/database/dbsqlite"
	"github.com/setavenger/ztransparent/internal/database/diskformat"
	"github.com/setavenger/ztransparent/internal/finalized"
	"github.com/setavenger/ztransparent/internal/zcash"
)

// DatabaseExplorer wraps the finalized state opened from the configured engine.
type DatabaseExplorer struct {
	db    database.KV
	State *finalized.State
}

func openKV(engine, dbPath string) (database.KV, error) {
	switch engine {
	case config.EnginePebble:
		o := dbpebble.DefaultOptions()
		o.CacheSize = config.CacheSize
		o.NoSync = config.NoSync
		return dbpebble.Open(dbPath, o)
	case config.EngineLevelDB:
		return dblevel.OpenDBConnection(dbPath)
	case config.EngineSQLite:
		o := dbsqlite.DefaultOptions()
		o.NoSync = config.NoSync
		return dbsqlite.Open(dbPath, o)
	default:
		return nil, errors.Errorf("unknown db engine %q", engine)
	}
}

// NewDatabaseExplorer opens the database at dbPath and checks its format version.
func NewDatabaseExplorer(engine, dbPath string, network zcash.Network) (*DatabaseExplorer, error) {
	db, err := openKV(engine, dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	state, err := finalized.Open(db, network)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &DatabaseExplorer{db: db, State: state}, nil
}

func (de *DatabaseExplorer) Close() error {
	return de.db.Close()
}

// PrintKeyTypeSummary prints the key count of every column.
func (de *DatabaseExplorer) PrintKeyTypeSummary(w io.Writer) error {
	counts, err := de.State.CountByPrefix()
	if err != nil {
		return err
	}

	prefixes := make([]int, 0, len(counts))
	for p := range counts {
		prefixes = append(prefixes, int(p))
	}
	sort.Ints(prefixes)

	fmt.Fprintln(w, "Database Key Type Summary:")
	fmt.Fprintln(w, "=========================")

	total := 0
	for _, p := range prefixes {
		name := finalized.ColumnName(byte(p))
		fmt.Fprintf(w, "0x%02X %-34s: %d keys\n", p, name, counts[byte(p)])
		total += counts[byte(p)]
	}
	fmt.Fprintf(w, "%-39s: %d keys\n", "TOTAL", total)
	return nil
}

// PrintDatabaseInfo prints the tip, format version and engine metrics.
func (de *DatabaseExplorer) PrintDatabaseInfo(w io.Writer) error {
	fmt.Fprintf(w, "Network:        %s\n", de.State.Network())
	fmt.Fprintf(w, "Format version: %d\n", diskformat.FormatVersion)

	tip, err := de.State.Tip()
	switch {
	case errors.Is(err, database.ErrNotFound):
		fmt.Fprintln(w, "Tip:            none")
	case err != nil:
		return err
	default:
		fmt.Fprintf(w, "Tip:            %d %s\n", tip.Height, tip.Hash)
	}

	if err := de.PrintKeyTypeSummary(w); err != nil {
		return err
	}

	if s, ok := de.db.(*dbpebble.Store); ok {
		fmt.Fprintln(w, "\nPebble Metrics:")
		fmt.Fprintln(w, "===============")
		fmt.Fprint(w, s.Metrics().String())
	}
	return nil
}

func (de *DatabaseExplorer) PrintBalance(w io.Writer, addr zcash.Address) error {
	balance, err := de.State.AddressBalance(addr)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s\n", addr, balance)
	return nil
}

func (de *DatabaseExplorer) PrintUtxos(w io.Writer, addr zcash.Address) error {
	utxos, err := de.State.AddressUtxos(addr)
	if err != nil {
		return err
	}
	for _, u := range utxos {
		fmt.Fprintf(w, "%s %s height=%d coinbase=%t\n", u.OutPoint, u.Utxo.Output.Value, u.Utxo.Height, u.Utxo.FromCoinbase)
	}
	fmt.Fprintf(w, "%d utxos\n", len(utxos))
	return nil
}

func (de *DatabaseExplorer) PrintTxIDs(w io.Writer, addr zcash.Address, r zcash.HeightRange) error {
	txs, err := de.State.AddressTxIDs(addr, r)
	if err != nil {
		return err
	}
	for _, tx := range txs {
		fmt.Fprintf(w, "%s %s\n", tx.Location, tx.Hash)
	}
	return nil
}
