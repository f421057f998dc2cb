// Package unit converts between whole-token amounts and integer base units
// (sun for TRX, 10^-decimals for TRC20 tokens) without floating point.
package unit

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// TRXDecimals is the number of decimal places of TRX: 1 TRX = 10^6 sun.
	TRXDecimals int32 = 6
	// DisplayPrecision is the number of fractional digits kept when
	// converting base units back to whole tokens.
	DisplayPrecision int32 = 8
)

var ErrInvalidAmount = errors.New("invalid amount")

// ToSmallestUnit shifts amount by places decimal digits and drops any
// remaining fraction, truncating toward zero.
func ToSmallestUnit(amount decimal.Decimal, places int32) *big.Int {
	return amount.Shift(places).Truncate(0).BigInt()
}

// FromSmallestUnit converts base units to whole tokens, truncated to
// DisplayPrecision fractional digits.
func FromSmallestUnit(amount *big.Int, places int32) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -places).Truncate(DisplayPrecision)
}

// ToSun converts TRX to sun.
func ToSun(trx decimal.Decimal) *big.Int {
	return ToSmallestUnit(trx, TRXDecimals)
}

// FromSun converts sun to TRX.
func FromSun(sun *big.Int) decimal.Decimal {
	return FromSmallestUnit(sun, TRXDecimals)
}

// SunInt64 is ToSun for payload fields the node expects as JSON numbers.
func SunInt64(trx decimal.Decimal) (int64, error) {
	sun := ToSun(trx)
	if !sun.IsInt64() {
		return 0, fmt.Errorf("%w: %s TRX does not fit in int64 sun", ErrInvalidAmount, trx)
	}
	return sun.Int64(), nil
}

// ParseAmount parses a decimal amount such as "1.5". Exponent notation and
// surrounding whitespace are accepted.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}
