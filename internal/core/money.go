// Package core provides the domain model of the ledger engine: monetary
// amounts, date periods, entities and their validation rules.
//
// Money is held as integer cents. All arithmetic inside the engine is exact
// integer math; decimals only appear at the boundary when parsing request
// amounts and when deriving display percentages.
package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a monetary amount in cents.
type Money struct {
	Cents int64
}

var centsPerUnit = decimal.NewFromInt(100)

// ParseAmount converts a decimal string such as "1234.56" into Money.
// The value is rounded half-up to two decimal places and must be strictly
// positive. Returns ErrValidation for malformed or non-positive input.
func ParseAmount(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: malformed amount %q", ErrValidation, s)
	}
	return MoneyFromDecimal(d)
}

// MoneyFromDecimal converts a decimal amount into Money, rounding half-up
// to two decimal places. Non-positive amounts fail with ErrValidation.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Round(2).Mul(centsPerUnit).IntPart()
	if cents <= 0 {
		return Money{}, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	return Money{Cents: cents}, nil
}

// Validate reports ErrValidation for non-positive amounts.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	return nil
}

// Decimal returns the amount in currency units with two decimal places.
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(m.Cents).Div(centsPerUnit)
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns m - other. The result may be negative.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Percent returns 100*part/whole rounded half-up to two decimal places.
// A zero or negative whole yields 0, never a division error.
func Percent(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	p, _ := decimal.NewFromInt(part).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(whole)).
		Round(2).
		Float64()
	return p
}
