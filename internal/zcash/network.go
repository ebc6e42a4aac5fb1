package zcash

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

type Network uint8

const (
	Mainnet Network = iota
	Testnet
)

func (n Network) String() string {
	switch n {
	case Mainnet:
		return "main"
	case Testnet:
		return "test"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(n))
	}
}

// ParseNetwork accepts the names used in config files and on the command line.
func ParseNetwork(s string) (Network, error) {
	switch s {
	case "main", "mainnet":
		return Mainnet, nil
	case "test", "testnet", "regtest":
		return Testnet, nil
	default:
		return 0, errors.Errorf("unknown network %q", s)
	}
}

// Height is a block height. Valid heights fit in 31 bits.
type Height uint32

const MaxHeight Height = math.MaxInt32

// HeightRange is an inclusive range of heights.
type HeightRange struct {
	Start Height
	End   Height
}

// FullHeightRange covers every valid height.
func FullHeightRange() HeightRange {
	return HeightRange{Start: 0, End: MaxHeight}
}

func (r HeightRange) Contains(h Height) bool {
	return h >= r.Start && h <= r.End
}
