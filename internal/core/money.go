// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents, exact decimals and display strings.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var euroPrinter = message.NewPrinter(language.Italian)

// maxAmount keeps cents inside int64.
var maxAmount = decimal.New((1<<63-1)/100, 0)

// ParseDecimalToCents converts a decimal string to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// exponents (1e3). Amounts are kept to the cent: more than two significant
// decimals are rejected rather than rounded. Returns ErrInvalidAmount for
// invalid formats, signs, zero, or sub-cent precision.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.340") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 0, ErrInvalidAmount
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if !d.IsPositive() || d.GreaterThanOrEqual(maxAmount) || !d.Equal(d.Truncate(2)) {
		return 0, ErrInvalidAmount
	}
	return d.Shift(2).IntPart(), nil
}

// Euros returns the euro value as a float64 for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Euros() float64 {
	return float64(m.Cents) / 100.0
}

// Decimal returns the exact euro amount.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// MoneyFromDecimal rounds d half away from zero to the nearest cent.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Shift(2).Round(0).IntPart()}
}

// String renders the amount as a plain decimal number ("20.5", "1000").
func (m Money) String() string {
	return m.Decimal().String()
}

// MarshalJSON writes the amount as a JSON number in euros.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ErrInvalidAmount
	}
	*m = MoneyFromDecimal(d)
	return nil
}

// FormatEuros renders the amount the Italian way, e.g. "20,50 €".
func FormatEuros(m Money) string {
	return euroPrinter.Sprintf("%.2f €", m.Euros())
}
