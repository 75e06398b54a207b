// Package money centralises the decimal arithmetic policy for cost
// calculations. All monetary, quantity, and rate values are carried as
// shopspring decimals and quantised to four fractional digits half-up;
// rounding to whole yen happens only at display boundaries.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the internal fractional precision for amounts and quantities.
const Scale = 4

var (
	// Zero is the canonical zero amount.
	Zero = decimal.Zero
	// One is the canonical unit value.
	One = decimal.NewFromInt(1)
	// Hundred is used for percentage conversion.
	Hundred = decimal.NewFromInt(100)
)

// Round rounds half away from zero to the internal scale.
func Round(v decimal.Decimal) decimal.Decimal {
	return v.Round(Scale)
}

// Yen rounds a value to whole currency units for display.
func Yen(v decimal.Decimal) decimal.Decimal {
	return v.Round(0)
}

// Parse converts a decimal-formatted string from the API boundary.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("money: parse %q: %w", s, err)
	}
	return d, nil
}

// ParseOr converts a string, returning fallback when empty.
func ParseOr(s string, fallback decimal.Decimal) (decimal.Decimal, error) {
	if s == "" {
		return fallback, nil
	}
	return Parse(s)
}

// Ratio divides part by whole, returning zero when whole is zero.
func Ratio(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return Round(part.Div(whole))
}

// Percent computes part/whole*100 preserving sign, zero when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return Round(part.Div(whole).Mul(Hundred))
}
