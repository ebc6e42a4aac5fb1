package diskformat

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/setavenger/ztransparent/internal/zcash"
)

const (
	// BalanceDiskBytes is the width of a stored balance.
	BalanceDiskBytes = zcash.AmountBytes

	// OutputIndexDiskBytes is the width of a stored output index.
	// Three bytes are enough for any output in a valid block.
	OutputIndexDiskBytes = 3

	// OutputLocationDiskBytes is a 3 byte height, 2 byte transaction index
	// and 3 byte output index.
	OutputLocationDiskBytes = TransactionLocationDiskBytes + OutputIndexDiskBytes

	// AddressDiskBytes is a variant tag followed by the address hash.
	AddressDiskBytes = 1 + zcash.AddressHashBytes

	// AddressBalanceLocationDiskBytes is balance || address location.
	AddressBalanceLocationDiskBytes = BalanceDiskBytes + OutputLocationDiskBytes

	// MaxDiskOutputIndex is the largest output index that fits in OutputIndexDiskBytes.
	MaxDiskOutputIndex = 1<<(8*OutputIndexDiskBytes) - 1
)

// OutputIndex is the index of a transparent output in its transaction.
type OutputIndex uint32

// OutputIndexFromIndex converts the consensus u32 output index.
func OutputIndexFromIndex(i uint32) OutputIndex { return OutputIndex(i) }

// OutputIndexFromInt fails if i doesn't fit in 32 bits.
func OutputIndexFromInt(i int) (OutputIndex, error) {
	if i < 0 || uint64(i) > math.MaxUint32 {
		return 0, errors.Wrapf(ErrIndexOutOfRange, "output index %d", i)
	}
	return OutputIndex(i), nil
}

// OutputIndexFromUint64 fails if i doesn't fit in 32 bits.
func OutputIndexFromUint64(i uint64) (OutputIndex, error) {
	if i > math.MaxUint32 {
		return 0, errors.Wrapf(ErrIndexOutOfRange, "output index %d", i)
	}
	return OutputIndex(i), nil
}

// MustOutputIndexFromInt panics where an out of range index is a bug.
func MustOutputIndexFromInt(i int) OutputIndex {
	idx, err := OutputIndexFromInt(i)
	if err != nil {
		panic(err)
	}
	return idx
}

// MustOutputIndexFromUint64 panics where an out of range index is a bug.
func MustOutputIndexFromUint64(i uint64) OutputIndex {
	idx, err := OutputIndexFromUint64(i)
	if err != nil {
		panic(err)
	}
	return idx
}

func (i OutputIndex) Index() uint32 { return uint32(i) }

func (i OutputIndex) AsUint64() uint64 { return uint64(i) }

// AsBytes returns the low 3 bytes of the big-endian index.
// Panics if the index is greater than MaxDiskOutputIndex.
func (i OutputIndex) AsBytes() []byte {
	var mem [4]byte
	binary.BigEndian.PutUint32(mem[:], uint32(i))
	return TruncateZeroBEBytes(mem[:], OutputIndexDiskBytes)
}

func (i *OutputIndex) FromBytes(b []byte) error {
	if err := checkWidth("output index", b, OutputIndexDiskBytes); err != nil {
		return err
	}
	*i = OutputIndex(binary.BigEndian.Uint32(ExpandZeroBEBytes(b, 4)))
	return nil
}

// OutputLocation is the position of a transparent output in the chain.
//
// Locations sort in chain order: height, transaction index, output index.
// The encoded bytes sort the same way.
type OutputLocation struct {
	TransactionLocation TransactionLocation
	OutputIndex         OutputIndex
}

// AddressLocation is the location of the first output ever sent to an
// address. It stays the same after that output is spent, and is used in
// place of the address in the address indexes.
type AddressLocation = OutputLocation

func NewOutputLocation(txLoc TransactionLocation, index OutputIndex) OutputLocation {
	return OutputLocation{TransactionLocation: txLoc, OutputIndex: index}
}

// OutputLocationFromOutputIndex uses the u32 index from the consensus format.
func OutputLocationFromOutputIndex(txLoc TransactionLocation, index uint32) OutputLocation {
	return NewOutputLocation(txLoc, OutputIndexFromIndex(index))
}

// OutputLocationFromOutPoint takes the transaction location separately,
// because looking it up needs the database.
func OutputLocationFromOutPoint(txLoc TransactionLocation, outpoint zcash.OutPoint) OutputLocation {
	return OutputLocationFromOutputIndex(txLoc, outpoint.Index)
}

// OutputLocationFromInts fails if an index doesn't fit its type.
func OutputLocationFromInts(height zcash.Height, txIndex, outputIndex int) (OutputLocation, error) {
	txLoc, err := TransactionLocationFromInt(height, txIndex)
	if err != nil {
		return OutputLocation{}, err
	}
	idx, err := OutputIndexFromInt(outputIndex)
	if err != nil {
		return OutputLocation{}, err
	}
	return NewOutputLocation(txLoc, idx), nil
}

func (l OutputLocation) Height() zcash.Height { return l.TransactionLocation.Height }

func (l OutputLocation) TransactionIndex() TransactionIndex { return l.TransactionLocation.Index }

// Compare returns -1, 0 or +1 in chain order.
func (l OutputLocation) Compare(o OutputLocation) int {
	if c := l.TransactionLocation.Compare(o.TransactionLocation); c != 0 {
		return c
	}
	switch {
	case l.OutputIndex < o.OutputIndex:
		return -1
	case l.OutputIndex > o.OutputIndex:
		return 1
	}
	return 0
}

func (l OutputLocation) Less(o OutputLocation) bool { return l.Compare(o) < 0 }

func (l OutputLocation) String() string {
	return fmt.Sprintf("%s:%d", l.TransactionLocation, l.OutputIndex)
}

// AsBytes is transaction location || output index, no separator.
func (l OutputLocation) AsBytes() []byte {
	b := make([]byte, 0, OutputLocationDiskBytes)
	b = append(b, l.TransactionLocation.AsBytes()...)
	return append(b, l.OutputIndex.AsBytes()...)
}

func (l *OutputLocation) FromBytes(b []byte) error {
	if err := checkWidth("output location", b, OutputLocationDiskBytes); err != nil {
		return err
	}
	var txLoc TransactionLocation
	if err := txLoc.FromBytes(b[:TransactionLocationDiskBytes]); err != nil {
		return err
	}
	var index OutputIndex
	if err := index.FromBytes(b[TransactionLocationDiskBytes:]); err != nil {
		return err
	}
	*l = OutputLocation{TransactionLocation: txLoc, OutputIndex: index}
	return nil
}

// Address variant tags. Smaller tags for more common variants.
// The low bit is set for script hashes, the high bit for testnet.
const (
	tagMainnetPubKeyHash byte = iota
	tagMainnetScriptHash
	tagTestnetPubKeyHash
	tagTestnetScriptHash
)

func addressVariant(a zcash.Address) byte {
	var tag byte
	if a.Network() == zcash.Testnet {
		tag = tagTestnetPubKeyHash
	}
	if a.IsScriptHash() {
		tag |= 1
	}
	return tag
}

// AddressAsBytes returns the variant tag followed by the 20 byte hash.
func AddressAsBytes(a zcash.Address) []byte {
	hash := a.HashBytes()
	b := make([]byte, 0, AddressDiskBytes)
	b = append(b, addressVariant(a))
	return append(b, hash[:]...)
}

// AddressFromBytes fails for any width other than AddressDiskBytes and any
// unknown variant tag.
func AddressFromBytes(b []byte) (zcash.Address, error) {
	if err := checkWidth("address", b, AddressDiskBytes); err != nil {
		return zcash.Address{}, err
	}
	tag := b[0]
	if tag > tagTestnetScriptHash {
		return zcash.Address{}, corrupt("address: unknown variant tag %d", tag)
	}

	var hash [zcash.AddressHashBytes]byte
	copy(hash[:], b[1:])

	network := zcash.Mainnet
	if tag >= tagTestnetPubKeyHash {
		network = zcash.Testnet
	}
	if tag%2 == 0 {
		return zcash.NewPubKeyHashAddress(network, hash), nil
	}
	return zcash.NewScriptHashAddress(network, hash), nil
}

// AmountAsBytes forwards to the amount's canonical byte form.
func AmountAsBytes(a zcash.Amount) []byte {
	b := a.Bytes()
	return b[:]
}

func AmountFromBytes(b []byte) (zcash.Amount, error) {
	if err := checkWidth("balance", b, BalanceDiskBytes); err != nil {
		return 0, err
	}
	var arr [BalanceDiskBytes]byte
	copy(arr[:], b)
	a, err := zcash.AmountFromBytes(arr)
	if err != nil {
		return 0, corrupt("balance: %v", err)
	}
	return a, nil
}

// OutputAsBytes is the consensus serialization of o.
func OutputAsBytes(o *zcash.Output) []byte {
	return o.Bytes()
}

// OutputFromBytes fails unless b is exactly one consensus encoded output.
func OutputFromBytes(b []byte) (zcash.Output, error) {
	r := bytes.NewReader(b)
	var o zcash.Output
	if err := o.Deserialize(r); err != nil {
		return zcash.Output{}, corrupt("output: %v", err)
	}
	if r.Len() != 0 {
		return zcash.Output{}, corrupt("output: %d trailing bytes", r.Len())
	}
	return o, nil
}

// AddressBalanceLocation is the data indexed for each transparent address:
// its balance and the location of the first output sent to it.
type AddressBalanceLocation struct {
	balance  zcash.Amount
	location AddressLocation
}

// NewAddressBalanceLocation starts with a zero balance.
func NewAddressBalanceLocation(firstOutput OutputLocation) AddressBalanceLocation {
	return AddressBalanceLocation{location: firstOutput}
}

func (a AddressBalanceLocation) Balance() zcash.Amount { return a.balance }

func (a AddressBalanceLocation) AddressLocation() AddressLocation { return a.location }

// ReceiveValue adds a received output's value to the balance.
func (a *AddressBalanceLocation) ReceiveValue(v zcash.Amount) error {
	balance, err := a.balance.Add(v)
	if err != nil {
		return errors.Wrapf(err, "receiving %s at address location %s", v, a.location)
	}
	a.balance = balance
	return nil
}

// SpendValue removes a spent output's value from the balance.
func (a *AddressBalanceLocation) SpendValue(v zcash.Amount) error {
	balance, err := a.balance.Sub(v)
	if err != nil {
		return errors.Wrapf(err, "spending %s at address location %s", v, a.location)
	}
	a.balance = balance
	return nil
}

// AsBytes puts the balance first, so it can be read without the location.
func (a AddressBalanceLocation) AsBytes() []byte {
	b := make([]byte, 0, AddressBalanceLocationDiskBytes)
	b = append(b, AmountAsBytes(a.balance)...)
	return append(b, a.location.AsBytes()...)
}

func (a *AddressBalanceLocation) FromBytes(b []byte) error {
	if err := checkWidth("address balance location", b, AddressBalanceLocationDiskBytes); err != nil {
		return err
	}
	balance, err := AmountFromBytes(b[:BalanceDiskBytes])
	if err != nil {
		return err
	}
	var location AddressLocation
	if err := location.FromBytes(b[BalanceDiskBytes:]); err != nil {
		return err
	}
	*a = AddressBalanceLocation{balance: balance, location: location}
	return nil
}

// UnspentOutputAddressLocation is the data indexed for each unspent output:
// the output and, if the output pays to an address, that address's location.
type UnspentOutputAddressLocation struct {
	output          zcash.Output
	addressLocation *AddressLocation
}

// NewUnspentOutputAddressLocation takes a nil addressLocation for outputs
// without a recognised address.
func NewUnspentOutputAddressLocation(output zcash.Output, addressLocation *AddressLocation) UnspentOutputAddressLocation {
	u := UnspentOutputAddressLocation{output: output}
	if addressLocation != nil {
		loc := *addressLocation
		u.addressLocation = &loc
	}
	return u
}

func (u UnspentOutputAddressLocation) Output() zcash.Output { return u.output }

func (u UnspentOutputAddressLocation) AddressLocation() (AddressLocation, bool) {
	if u.addressLocation == nil {
		return AddressLocation{}, false
	}
	return *u.addressLocation, true
}

func (u UnspentOutputAddressLocation) Equal(o UnspentOutputAddressLocation) bool {
	if !u.output.Equal(&o.output) {
		return false
	}
	ul, uok := u.AddressLocation()
	ol, ook := o.AddressLocation()
	return uok == ook && ul == ol
}

// AsBytes writes no location bytes at all when there is no address, so the
// width depends on the output's own self-delimiting encoding.
func (u UnspentOutputAddressLocation) AsBytes() []byte {
	b := OutputAsBytes(&u.output)
	if u.addressLocation != nil {
		b = append(b, u.addressLocation.AsBytes()...)
	}
	return b
}

// FromBytes reads the output, then exactly OutputLocationDiskBytes more.
// No remaining bytes means there is no address location. A partial location
// or extra trailing bytes are corrupt.
func (u *UnspentOutputAddressLocation) FromBytes(b []byte) error {
	r := bytes.NewReader(b)

	var output zcash.Output
	if err := output.Deserialize(r); err != nil {
		return corrupt("unspent output: %v", err)
	}

	if r.Len() == 0 {
		*u = UnspentOutputAddressLocation{output: output}
		return nil
	}

	var locBytes [OutputLocationDiskBytes]byte
	if _, err := io.ReadFull(r, locBytes[:]); err != nil {
		return corrupt("unspent output address location: %v", err)
	}
	if r.Len() != 0 {
		return corrupt("unspent output: %d trailing bytes", r.Len())
	}

	var loc AddressLocation
	if err := loc.FromBytes(locBytes[:]); err != nil {
		return err
	}
	*u = UnspentOutputAddressLocation{output: output, addressLocation: &loc}
	return nil
}
