package zcash

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/pkg/errors"
)

const (
	// COIN is the number of zatoshis in one ZEC.
	COIN int64 = 100_000_000

	// MaxMoney is the largest amount any single value can hold.
	MaxMoney int64 = 21_000_000 * COIN

	// AmountBytes is the width of the canonical amount byte form.
	AmountBytes = 8
)

var ErrAmountOutOfRange = errors.New("amount out of range")

// Amount is a non-negative number of zatoshis in [0, MaxMoney].
//
// The zero value is a valid amount. Values built through NewAmount, Add or
// Sub always stay in range.
type Amount int64

// AmountDelta is a number of zatoshis in [-MaxMoney, MaxMoney]. It is used
// for running balances that can go negative inside a non-finalized fork.
type AmountDelta int64

func NewAmount(zats int64) (Amount, error) {
	if zats < 0 || zats > MaxMoney {
		return 0, errors.Wrapf(ErrAmountOutOfRange, "non-negative amount %d", zats)
	}
	return Amount(zats), nil
}

// MustAmount panics if zats is out of range. Only use it with constants.
func MustAmount(zats int64) Amount {
	a, err := NewAmount(zats)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) Zatoshis() int64 { return int64(a) }

func (a Amount) Add(b Amount) (Amount, error) {
	return NewAmount(int64(a) + int64(b))
}

func (a Amount) Sub(b Amount) (Amount, error) {
	return NewAmount(int64(a) - int64(b))
}

// Delta converts a into a signed delta. It never fails.
func (a Amount) Delta() AmountDelta { return AmountDelta(a) }

// Bytes returns the canonical amount byte form: int64 little-endian.
func (a Amount) Bytes() [AmountBytes]byte {
	var b [AmountBytes]byte
	binary.LittleEndian.PutUint64(b[:], uint64(a))
	return b
}

// AmountFromBytes parses the canonical amount byte form and checks that the
// value is non-negative and at most MaxMoney.
func AmountFromBytes(b [AmountBytes]byte) (Amount, error) {
	return NewAmount(int64(binary.LittleEndian.Uint64(b[:])))
}

func (a Amount) String() string {
	return formatZats(int64(a))
}

func NewAmountDelta(zats int64) (AmountDelta, error) {
	if zats < -MaxMoney || zats > MaxMoney {
		return 0, errors.Wrapf(ErrAmountOutOfRange, "amount delta %d", zats)
	}
	return AmountDelta(zats), nil
}

func (d AmountDelta) Zatoshis() int64 { return int64(d) }

func (d AmountDelta) Add(e AmountDelta) (AmountDelta, error) {
	return NewAmountDelta(int64(d) + int64(e))
}

func (d AmountDelta) Sub(e AmountDelta) (AmountDelta, error) {
	return NewAmountDelta(int64(d) - int64(e))
}

// Amount returns d as a non-negative amount, or an error if d is negative.
func (d AmountDelta) Amount() (Amount, error) {
	return NewAmount(int64(d))
}

func (d AmountDelta) String() string {
	return formatZats(int64(d))
}

func formatZats(zats int64) string {
	sign := ""
	u := uint64(zats)
	if zats < 0 {
		sign = "-"
		if zats == math.MinInt64 {
			u = uint64(math.MaxInt64) + 1
		} else {
			u = uint64(-zats)
		}
	}
	return fmt.Sprintf("%s%d.%08d ZEC", sign, u/uint64(COIN), u%uint64(COIN))
}
