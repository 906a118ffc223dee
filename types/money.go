// Package types provides common types used across invoicer.
package types

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xraph/invoicer/currency"
)

// Money is a decimal amount tagged with its currency.
// Arithmetic is exact; rounding to two places happens only through Round.
//
// Examples:
//   - USD("49.00") = $49.00
//   - EUR("1234.5") = €1.234,50
//   - LKR("100") = Rs. 100.00
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency currency.Code   `json:"currency"`
}

// New creates a Money value.
func New(amount decimal.Decimal, c currency.Code) Money {
	return Money{Amount: amount, Currency: c}
}

// USD creates a Money value in US Dollars from a decimal string.
func USD(amount string) Money { return Money{Amount: decimal.RequireFromString(amount), Currency: currency.USD} }

// EUR creates a Money value in Euros from a decimal string.
func EUR(amount string) Money { return Money{Amount: decimal.RequireFromString(amount), Currency: currency.EUR} }

// LKR creates a Money value in Sri Lankan Rupees from a decimal string.
func LKR(amount string) Money { return Money{Amount: decimal.RequireFromString(amount), Currency: currency.LKR} }

// Zero returns a zero Money value in the specified currency.
func Zero(c currency.Code) Money { return Money{Amount: decimal.Zero, Currency: c} }

// Arithmetic operations

// Add adds two Money values. Panics if currencies don't match.
func (m Money) Add(other Money) Money {
	m.assertSameCurrency(other)
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}
}

// Subtract subtracts another Money value. Panics if currencies don't match.
func (m Money) Subtract(other Money) Money {
	m.assertSameCurrency(other)
	return Money{Amount: m.Amount.Sub(other.Amount), Currency: m.Currency}
}

// Multiply multiplies the Money by a quantity.
func (m Money) Multiply(qty decimal.Decimal) Money {
	return Money{Amount: m.Amount.Mul(qty), Currency: m.Currency}
}

// Percent returns rate percent of m, e.g. USD("24.50").Percent(10) = USD("2.45").
func (m Money) Percent(rate decimal.Decimal) Money {
	return Money{Amount: m.Amount.Mul(rate).Div(decimal.NewFromInt(100)), Currency: m.Currency}
}

// Round rounds to two decimal places, halves away from zero.
func (m Money) Round() Money {
	return Money{Amount: currency.Round(m.Amount), Currency: m.Currency}
}

// Negate returns the negative of the Money value.
func (m Money) Negate() Money {
	return Money{Amount: m.Amount.Neg(), Currency: m.Currency}
}

// Comparison methods

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool { return m.Amount.IsZero() }

// IsPositive returns true if the amount is greater than zero.
func (m Money) IsPositive() bool { return m.Amount.IsPositive() }

// IsNegative returns true if the amount is less than zero.
func (m Money) IsNegative() bool { return m.Amount.IsNegative() }

// Equal returns true if both Money values are numerically equal in the same currency.
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

// LessThan returns true if this Money is less than other. Panics if currencies don't match.
func (m Money) LessThan(other Money) bool {
	m.assertSameCurrency(other)
	return m.Amount.LessThan(other.Amount)
}

// GreaterThan returns true if this Money is greater than other. Panics if currencies don't match.
func (m Money) GreaterThan(other Money) bool {
	m.assertSameCurrency(other)
	return m.Amount.GreaterThan(other.Amount)
}

// Formatting methods

// String returns the amount formatted for its currency, e.g. "$1,234.56".
// Unsupported currencies fall back to "CODE 1234.56".
func (m Money) String() string {
	s, err := currency.Format(m.Amount, m.Currency)
	if err != nil {
		return fmt.Sprintf("%s %s", m.Currency, m.Amount.StringFixed(currency.Places))
	}
	return s
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
		Display  string `json:"display"`
	}{
		Amount:   m.Amount.StringFixed(currency.Places),
		Currency: string(m.Currency),
		Display:  m.String(),
	})
}

// assertSameCurrency panics if currencies don't match.
func (m Money) assertSameCurrency(other Money) {
	if m.Currency != other.Currency {
		panic(fmt.Sprintf("money: currency mismatch: %s != %s", m.Currency, other.Currency))
	}
}

// Sum calculates the sum of multiple Money values. All must have the same currency.
func Sum(c currency.Code, values ...Money) Money {
	result := Zero(c)
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}
