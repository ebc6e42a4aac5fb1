// finalized writes finalized blocks into the transparent address indexes and
// reads them back in chain order.
package finalized

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"

	"github.com/setavenger/ztransparent/internal/database"
	"github.com/setavenger/ztransparent/internal/database/diskformat"
	"github.com/setavenger/ztransparent/internal/logging"
	"github.com/setavenger/ztransparent/internal/zcash"
)

var (
	ErrNonSequentialHeight = errors.New("block does not extend the finalized tip")
	ErrMissingUtxo         = errors.New("spent output is not in the finalized state")
)

// State is the finalized transparent state of one network.
type State struct {
	db      database.KV
	network zcash.Network
}

// Tip is the last block written to the state.
type Tip struct {
	Height zcash.Height
	Hash   chainhash.Hash
}

// Open checks the format version of db and wraps it.
// db is owned by the caller.
func Open(db database.KV, network zcash.Network) (*State, error) {
	if err := database.CheckVersion(db, diskformat.FormatVersion); err != nil {
		logging.L.Err(err).Msg("failed format version check")
		return nil, err
	}
	return &State{db: db, network: network}, nil
}

func (s *State) Network() zcash.Network { return s.network }

// Tip returns database.ErrNotFound if no block was written yet.
func (s *State) Tip() (Tip, error) {
	return readTip(s.db)
}

func readTip(r database.Reader) (Tip, error) {
	val, err := r.Get(KeyTip())
	if err != nil {
		return Tip{}, err
	}
	if len(val) != diskformat.HeightDiskBytes+chainhash.HashSize {
		return Tip{}, errors.Wrapf(diskformat.ErrCorruptRecord, "tip has %d bytes", len(val))
	}
	height, err := diskformat.HeightFromBytes(val[:diskformat.HeightDiskBytes])
	if err != nil {
		return Tip{}, err
	}
	hash, err := diskformat.TransactionHashFromBytes(val[diskformat.HeightDiskBytes:])
	if err != nil {
		return Tip{}, err
	}
	return Tip{Height: height, Hash: hash}, nil
}

func tipBytes(t Tip) []byte {
	b := make([]byte, 0, diskformat.HeightDiskBytes+chainhash.HashSize)
	b = append(b, diskformat.HeightAsBytes(t.Height)...)
	return append(b, t.Hash[:]...)
}

func getBalance(r database.Reader, addr zcash.Address) (diskformat.AddressBalanceLocation, error) {
	var abl diskformat.AddressBalanceLocation
	val, err := r.Get(KeyBalance(addr))
	if err != nil {
		return abl, err
	}
	if err := abl.FromBytes(val); err != nil {
		return abl, errors.Wrapf(err, "balance of %s", addr)
	}
	return abl, nil
}

// AddressBalance is zero for addresses that never received anything.
func (s *State) AddressBalance(addr zcash.Address) (zcash.Amount, error) {
	abl, err := getBalance(s.db, addr)
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return abl.Balance(), nil
}

// AddressLocation returns the location of the first output sent to addr,
// or database.ErrNotFound.
func (s *State) AddressLocation(addr zcash.Address) (diskformat.AddressLocation, error) {
	abl, err := getBalance(s.db, addr)
	if err != nil {
		return diskformat.AddressLocation{}, err
	}
	return abl.AddressLocation(), nil
}

// AddressUtxo is an unspent output of an address.
type AddressUtxo struct {
	Location diskformat.OutputLocation
	OutPoint zcash.OutPoint
	Utxo     zcash.Utxo
}

// AddressUtxos returns the unspent outputs of addr in chain order.
func (s *State) AddressUtxos(addr zcash.Address) ([]AddressUtxo, error) {
	addrLoc, err := s.AddressLocation(addr)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	lb, ub := BoundsAddrUtxo(addrLoc)
	it, err := s.db.NewIterator(lb, ub)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []AddressUtxo
	for ok := it.First(); ok; ok = it.Next() {
		var k diskformat.AddressUnspentOutput
		if err := k.FromBytes(it.Key()[1:]); err != nil {
			return nil, err
		}
		utxo, err := s.Utxo(k.UnspentOutputLocation)
		if err != nil {
			return nil, errors.Wrapf(err, "utxo %s of %s", k.UnspentOutputLocation, addr)
		}
		hash, err := s.TransactionHash(k.UnspentOutputLocation.TransactionLocation)
		if err != nil {
			return nil, errors.Wrapf(err, "transaction of utxo %s", k.UnspentOutputLocation)
		}
		out = append(out, AddressUtxo{
			Location: k.UnspentOutputLocation,
			OutPoint: zcash.OutPoint{Hash: hash, Index: k.UnspentOutputLocation.OutputIndex.Index()},
			Utxo:     utxo,
		})
	}
	return out, it.Error()
}

// AddressTx is a transaction that sent to or spent from an address.
type AddressTx struct {
	Location diskformat.TransactionLocation
	Hash     chainhash.Hash
}

// AddressTxIDs returns the transactions of addr with a height in r, in chain
// order. A transaction that both spends from and sends to addr is listed once.
func (s *State) AddressTxIDs(addr zcash.Address, r zcash.HeightRange) ([]AddressTx, error) {
	addrLoc, err := s.AddressLocation(addr)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	lb, ub, ok := BoundsAddrTx(addrLoc, r)
	if !ok {
		return nil, nil
	}
	it, err := s.db.NewIterator(lb, ub)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []AddressTx
	for ok := it.First(); ok; ok = it.Next() {
		var k diskformat.AddressTransaction
		if err := k.FromBytes(it.Key()[1:]); err != nil {
			return nil, err
		}
		hash, err := s.TransactionHash(k.TransactionLocation)
		if err != nil {
			return nil, errors.Wrapf(err, "transaction %s of %s", k.TransactionLocation, addr)
		}
		out = append(out, AddressTx{Location: k.TransactionLocation, Hash: hash})
	}
	return out, it.Error()
}

func getUtxo(r database.Reader, loc diskformat.OutputLocation) (diskformat.UnspentOutputAddressLocation, error) {
	var u diskformat.UnspentOutputAddressLocation
	val, err := r.Get(KeyUtxo(loc))
	if err != nil {
		return u, err
	}
	if err := u.FromBytes(val); err != nil {
		return u, errors.Wrapf(err, "utxo %s", loc)
	}
	return u, nil
}

func utxoAt(loc diskformat.OutputLocation, u diskformat.UnspentOutputAddressLocation) zcash.Utxo {
	return zcash.Utxo{
		Output:       u.Output(),
		Height:       loc.Height(),
		FromCoinbase: loc.TransactionIndex() == 0,
	}
}

// Utxo returns the unspent output at loc, or database.ErrNotFound if it was
// spent or never existed.
func (s *State) Utxo(loc diskformat.OutputLocation) (zcash.Utxo, error) {
	u, err := getUtxo(s.db, loc)
	if err != nil {
		return zcash.Utxo{}, err
	}
	return utxoAt(loc, u), nil
}

// UtxoByOutPoint looks up the location of the outpoint's transaction first.
func (s *State) UtxoByOutPoint(op zcash.OutPoint) (zcash.Utxo, diskformat.OutputLocation, error) {
	loc, err := outputLocation(s.db, op)
	if err != nil {
		return zcash.Utxo{}, loc, err
	}
	utxo, err := s.Utxo(loc)
	return utxo, loc, err
}

func outputLocation(r database.Reader, op zcash.OutPoint) (diskformat.OutputLocation, error) {
	txLoc, err := transactionLocation(r, op.Hash)
	if err != nil {
		return diskformat.OutputLocation{}, err
	}
	if op.Index > diskformat.MaxDiskOutputIndex {
		return diskformat.OutputLocation{}, errors.Wrapf(diskformat.ErrIndexOutOfRange, "outpoint %s", op)
	}
	return diskformat.OutputLocationFromOutPoint(txLoc, op), nil
}

func transactionLocation(r database.Reader, hash chainhash.Hash) (diskformat.TransactionLocation, error) {
	var loc diskformat.TransactionLocation
	val, err := r.Get(KeyTxLoc(hash))
	if err != nil {
		return loc, err
	}
	err = loc.FromBytes(val)
	return loc, err
}

func (s *State) TransactionLocation(hash chainhash.Hash) (diskformat.TransactionLocation, error) {
	return transactionLocation(s.db, hash)
}

func (s *State) TransactionHash(loc diskformat.TransactionLocation) (chainhash.Hash, error) {
	val, err := s.db.Get(KeyTxHash(loc))
	if err != nil {
		return chainhash.Hash{}, err
	}
	return diskformat.TransactionHashFromBytes(val)
}

// CountByPrefix counts the keys of every column.
func (s *State) CountByPrefix() (map[byte]int, error) {
	counts := make(map[byte]int, len(Columns))
	for _, c := range Columns {
		lb, ub := BoundsPrefix(c.Prefix)
		it, err := s.db.NewIterator(lb, ub)
		if err != nil {
			return nil, err
		}
		n := 0
		for ok := it.First(); ok; ok = it.Next() {
			n++
		}
		err = it.Error()
		it.Close()
		if err != nil {
			return nil, err
		}
		counts[c.Prefix] = n
	}
	return counts, nil
}

// EachBalance calls fn for every address in the state, in key order, until fn
// returns an error.
func (s *State) EachBalance(fn func(addr zcash.Address, abl diskformat.AddressBalanceLocation) error) error {
	lb, ub := BoundsPrefix(KBalance)
	it, err := s.db.NewIterator(lb, ub)
	if err != nil {
		return err
	}
	defer it.Close()

	for ok := it.First(); ok; ok = it.Next() {
		addr, err := diskformat.AddressFromBytes(it.Key()[1:])
		if err != nil {
			return err
		}
		var abl diskformat.AddressBalanceLocation
		if err := abl.FromBytes(it.Value()); err != nil {
			return errors.Wrapf(err, "balance of %s", addr)
		}
		if err := fn(addr, abl); err != nil {
			return err
		}
	}
	return it.Error()
}
