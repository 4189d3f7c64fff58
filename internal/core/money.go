// Package core holds the tracker domain: transactions, budgets, the analytics
// aggregator, the budget evaluator and the search filter.
//
// This file contains money parsing and formatting. Amounts are kept in integer
// cents; decimal rounding goes through shopspring/decimal.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimalToCents converts a positive decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. Only ASCII digits are accepted.
// Returns ErrInvalidAmount for invalid formats, signs, zero amounts or values
// that do not fit in int64 cents.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil (rounds up)
//	ParseDecimalToCents("12.344") -> 1234, nil (rounds down)
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if !isPlainDecimal(s) {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents, ok := toCents(d)
	if !ok || cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// isPlainDecimal reports whether s is ASCII digits with at most one dot and
// at least one digit. Signs and exponents are rejected.
func isPlainDecimal(s string) bool {
	digits, dots := 0, 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

var (
	minCents = decimal.NewFromInt(math.MinInt64)
	maxCents = decimal.NewFromInt(math.MaxInt64)
)

// toCents rounds d half away from zero to cents. ok is false when the result
// does not fit in int64.
func toCents(d decimal.Decimal) (int64, bool) {
	c := d.Shift(2).Round(0)
	if c.LessThan(minCents) || c.GreaterThan(maxCents) {
		return 0, false
	}
	return c.IntPart(), true
}

// parseLenientCents parses any signed decimal into cents. It backs the
// search predicates, where zero and negative bounds are legal input.
// Values outside the int64 cents range count as not supplied.
func parseLenientCents(s string) (int64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if !isPlainDecimal(strings.TrimLeft(s, "+-")) || strings.LastIndexAny(s, "+-") > 0 {
		return 0, false
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return 0, false
	}
	return toCents(d)
}

// Decimal returns the amount as a decimal with two fractional digits.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float returns the amount as a float64 for charting and display.
// Use cents for calculations.
func (m Money) Float() float64 {
	return m.Decimal().InexactFloat64()
}

// String formats the amount with exactly two decimals, e.g. "120.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON emits the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// meanCents averages cent values and rounds the result half away from zero.
func meanCents(values []int64) int64 {
	if len(values) == 0 {
		return 0
	}
	var sum int64
	for _, v := range values {
		sum += v
	}
	return decimal.NewFromInt(sum).
		Div(decimal.NewFromInt(int64(len(values)))).
		Round(0).
		IntPart()
}
