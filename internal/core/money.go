// Package core holds the domain types shared by the client, the
// aggregation engine and the tool layer.
//
// Money is represented as exact integer milliunits (thousandths of the
// major currency unit, the remote API's native representation). All
// arithmetic happens on the integer form; conversion to decimal display
// values is confined to the boundary.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Milliunits is an exact integer count of thousandths of the major
// currency unit. -12340 is -12.34 in display form.
type Milliunits int64

// milliExp is the decimal exponent between milliunits and display values.
const milliExp = 3

var (
	ErrInexactAmount  = errors.New("amount has more than three decimal places")
	ErrAmountOverflow = errors.New("amount overflows milliunits")

	milliFactor = decimal.New(1, milliExp)
)

// Decimal returns the exact display value. The conversion is lossless:
// FromDecimal(m.Decimal()) == m for every Milliunits value.
func (m Milliunits) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -milliExp)
}

// String renders the display value with the trailing zeros trimmed.
func (m Milliunits) String() string {
	return m.Decimal().String()
}

// DisplayString renders the display value with exactly two decimal
// places, the form used in tool results. Sub-cent precision, when
// present, is preserved by String instead.
func (m Milliunits) DisplayString() string {
	d := m.Decimal()
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return d.String()
	}
	return d.StringFixed(2)
}

// FromDecimal converts a decimal display value to milliunits. It fails
// rather than round: values with more than three decimal places or
// outside the int64 range are rejected.
func FromDecimal(d decimal.Decimal) (Milliunits, error) {
	scaled := d.Mul(milliFactor)
	if !scaled.IsInteger() {
		return 0, ErrInexactAmount
	}
	bi := scaled.BigInt()
	if !bi.IsInt64() {
		return 0, ErrAmountOverflow
	}
	return Milliunits(bi.Int64()), nil
}

// ParseAmount parses a decimal amount string into milliunits. Both dot
// and comma decimal separators are accepted; negative values are valid
// (outflows and refunds carry sign).
func ParseAmount(s string) (Milliunits, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return FromDecimal(d)
}
