// Package core provides the domain records and the pure aggregation
// engine for the expense ledger.
//
// This file contains helpers for parsing monetary amounts from their
// wire representation. Amounts are exact decimals with two fractional
// digits; binary floating point is never used in the aggregation path.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to an exact amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// rounds half-up to two fractional digits. Returns an error for invalid
// formats, negative values, or zero amounts.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,34")  -> 12.34, nil
//	ParseAmount("12.345") -> 12.35, nil (rounds up)
//	ParseAmount("-1")     -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseNullableAmount is like ParseAmount but maps an empty string to an
// unset amount and allows zero. Used for fields like a savings goal's
// current amount, where absence is not an error.
func ParseNullableAmount(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, ErrInvalidAmount
	}
	d = d.Round(2)
	if d.IsNegative() {
		return decimal.NullDecimal{}, ErrInvalidAmount
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}
