package diskformat

const (
	// AddressUnspentOutputDiskBytes is address location || output location.
	AddressUnspentOutputDiskBytes = OutputLocationDiskBytes + OutputLocationDiskBytes

	// AddressTransactionDiskBytes is address location || transaction location.
	AddressTransactionDiskBytes = OutputLocationDiskBytes + TransactionLocationDiskBytes
)

// AddressUnspentOutput keys an unspent output under its address.
// Keys for one address are contiguous and in chain order.
type AddressUnspentOutput struct {
	AddressLocation       AddressLocation
	UnspentOutputLocation OutputLocation
}

func NewAddressUnspentOutput(addressLocation AddressLocation, outLoc OutputLocation) AddressUnspentOutput {
	return AddressUnspentOutput{AddressLocation: addressLocation, UnspentOutputLocation: outLoc}
}

// AddressUnspentOutputMin is the smallest key for addressLocation.
func AddressUnspentOutputMin(addressLocation AddressLocation) AddressUnspentOutput {
	return NewAddressUnspentOutput(addressLocation, OutputLocation{})
}

func (k AddressUnspentOutput) AsBytes() []byte {
	b := make([]byte, 0, AddressUnspentOutputDiskBytes)
	b = append(b, k.AddressLocation.AsBytes()...)
	return append(b, k.UnspentOutputLocation.AsBytes()...)
}

func (k *AddressUnspentOutput) FromBytes(b []byte) error {
	if err := checkWidth("address unspent output", b, AddressUnspentOutputDiskBytes); err != nil {
		return err
	}
	var addrLoc, outLoc OutputLocation
	if err := addrLoc.FromBytes(b[:OutputLocationDiskBytes]); err != nil {
		return err
	}
	if err := outLoc.FromBytes(b[OutputLocationDiskBytes:]); err != nil {
		return err
	}
	*k = NewAddressUnspentOutput(addrLoc, outLoc)
	return nil
}

// AddressTransaction keys a transaction that sent to or spent from an
// address. Keys for one address are contiguous and in chain order.
type AddressTransaction struct {
	AddressLocation     AddressLocation
	TransactionLocation TransactionLocation
}

func NewAddressTransaction(addressLocation AddressLocation, txLoc TransactionLocation) AddressTransaction {
	return AddressTransaction{AddressLocation: addressLocation, TransactionLocation: txLoc}
}

func (k AddressTransaction) AsBytes() []byte {
	b := make([]byte, 0, AddressTransactionDiskBytes)
	b = append(b, k.AddressLocation.AsBytes()...)
	return append(b, k.TransactionLocation.AsBytes()...)
}

func (k *AddressTransaction) FromBytes(b []byte) error {
	if err := checkWidth("address transaction", b, AddressTransactionDiskBytes); err != nil {
		return err
	}
	var addrLoc OutputLocation
	if err := addrLoc.FromBytes(b[:OutputLocationDiskBytes]); err != nil {
		return err
	}
	var txLoc TransactionLocation
	if err := txLoc.FromBytes(b[OutputLocationDiskBytes:]); err != nil {
		return err
	}
	*k = NewAddressTransaction(addrLoc, txLoc)
	return nil
}
