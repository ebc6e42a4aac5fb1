package benchmark

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/setavenger/ztransparent/internal/database"
	"github.com/setavenger/ztransparent/internal/database/diskformat"
	"github.com/setavenger/ztransparent/internal/finalized"
	"github.com/setavenger/ztransparent/internal/logging"
	"github.com/setavenger/ztransparent/internal/zcash"
)

// Result is the outcome of writing a chain into one engine.
type Result struct {
	Engine   string
	Blocks   int
	Txs      int
	Duration time.Duration
	State    *finalized.State
}

func (r Result) BlocksPerSecond() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Blocks) / r.Duration.Seconds()
}

// WriteChain writes blocks into db and times it.
func WriteChain(ctx context.Context, engine string, db database.KV, network zcash.Network, blocks []*zcash.Block) (Result, error) {
	state, err := finalized.Open(db, network)
	if err != nil {
		return Result{}, err
	}
	res := Result{Engine: engine, State: state}

	start := time.Now()
	for _, b := range blocks {
		if err := state.WriteBlock(ctx, b); err != nil {
			logging.L.Err(err).Str("engine", engine).Uint32("height", uint32(b.Height)).Msg("failed to write block")
			return res, err
		}
		res.Blocks++
		res.Txs += len(b.Transactions)
	}
	res.Duration = time.Since(start)

	logging.L.Info().
		Str("engine", engine).
		Int("blocks", res.Blocks).
		Int("txs", res.Txs).
		Dur("took", res.Duration).
		Float64("blocks_per_sec", res.BlocksPerSecond()).
		Msg("chain written")
	return res, nil
}

// CompareStates checks that a and b hold the same balances, utxos and
// transaction lists for every address.
func CompareStates(a, b *finalized.State) error {
	countsA, err := a.CountByPrefix()
	if err != nil {
		return err
	}
	countsB, err := b.CountByPrefix()
	if err != nil {
		return err
	}
	for _, c := range finalized.Columns {
		if countsA[c.Prefix] != countsB[c.Prefix] {
			return errors.Errorf("%s: %d keys vs %d keys", c.Name, countsA[c.Prefix], countsB[c.Prefix])
		}
	}

	return a.EachBalance(func(addr zcash.Address, abl diskformat.AddressBalanceLocation) error {
		balance, err := b.AddressBalance(addr)
		if err != nil {
			return err
		}
		if balance != abl.Balance() {
			return errors.Errorf("%s: balance %s vs %s", addr, abl.Balance(), balance)
		}

		utxosA, err := a.AddressUtxos(addr)
		if err != nil {
			return err
		}
		utxosB, err := b.AddressUtxos(addr)
		if err != nil {
			return err
		}
		if len(utxosA) != len(utxosB) {
			return errors.Errorf("%s: %d utxos vs %d utxos", addr, len(utxosA), len(utxosB))
		}
		for i := range utxosA {
			if utxosA[i].Location != utxosB[i].Location {
				return errors.Errorf("%s: utxo %d at %s vs %s", addr, i, utxosA[i].Location, utxosB[i].Location)
			}
		}

		txsA, err := a.AddressTxIDs(addr, zcash.FullHeightRange())
		if err != nil {
			return err
		}
		txsB, err := b.AddressTxIDs(addr, zcash.FullHeightRange())
		if err != nil {
			return err
		}
		if fmt.Sprint(txsA) != fmt.Sprint(txsB) {
			return errors.Errorf("%s: transaction lists differ", addr)
		}
		return nil
	})
}
