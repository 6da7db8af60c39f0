// Package money converts between stored minor units and the decimal amounts
// used on the wire.
package money

import "math"

// ToCents converts a decimal amount to minor units, rounding half away from zero.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromCents converts minor units to a decimal amount.
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}

// ApplyDiscount takes a flat per-unit discount off a price. The result never drops below zero.
func ApplyDiscount(priceCents, discountCents int64) int64 {
	if discountCents <= 0 {
		return priceCents
	}
	return Max(priceCents-discountCents, 0)
}

// Min returns the smaller of two amounts.
func Min(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two amounts.
func Max(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
