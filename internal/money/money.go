// Package money converts between decimal major-unit amounts and the integer
// minor units (cents) used in every provider-facing amount.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MinorScale is the number of fractional digits carried by minor units.
const MinorScale = 2

// ToMinor converts a major-unit amount to minor units, rounding half away from zero.
func ToMinor(d decimal.Decimal) int64 {
	return d.Shift(MinorScale).Round(0).IntPart()
}

// FromMinor converts minor units back to a major-unit amount.
func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -MinorScale)
}

// ParseMajor parses a price such as "12.50" into a decimal amount.
func ParseMajor(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}
