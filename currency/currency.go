// Package currency formats and parses monetary amounts for the closed set of
// currencies an invoice can be issued in.
//
// Each currency is described by a row in a rule table (symbol, grouping and
// decimal separators, display name). Callers dispatch through Format and
// Parse; adding a currency means adding a row.
package currency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnsupported is returned for a currency code outside the enumeration.
var ErrUnsupported = errors.New("invoicer: unsupported currency")

// Code is an ISO 4217 currency code.
type Code string

// Supported currencies.
const (
	USD Code = "USD"
	EUR Code = "EUR"
	LKR Code = "LKR"
)

// Places is the number of decimal places every supported currency is shown with.
const Places = 2

type rule struct {
	symbol    string
	thousands string
	decimal   string
	name      string
}

// order fixes the listing order used by Codes.
var order = []Code{USD, EUR, LKR}

var rules = map[Code]rule{
	USD: {symbol: "$", thousands: ",", decimal: ".", name: "US Dollar"},
	EUR: {symbol: "€", thousands: ".", decimal: ",", name: "Euro"},
	LKR: {symbol: "Rs. ", thousands: ",", decimal: ".", name: "Sri Lankan Rupee"},
}

// Codes returns the supported currency codes in display order.
func Codes() []Code {
	out := make([]Code, len(order))
	copy(out, order)
	return out
}

// Valid reports whether c is a supported currency.
func (c Code) Valid() bool {
	_, ok := rules[c]
	return ok
}

func (c Code) String() string { return string(c) }

// ParseCode parses a currency code case-insensitively.
func ParseCode(s string) (Code, error) {
	c := Code(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, s)
	}
	return c, nil
}

// Name returns the display name of a currency, e.g. "US Dollar".
func Name(c Code) (string, error) {
	r, err := lookup(c)
	if err != nil {
		return "", err
	}
	return r.name, nil
}

// Symbol returns the prefix written before the digits, e.g. "Rs. ".
func Symbol(c Code) (string, error) {
	r, err := lookup(c)
	if err != nil {
		return "", err
	}
	return r.symbol, nil
}

// Round rounds an amount to two decimal places, halves away from zero.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(Places)
}

// Format renders amount in the style of the given currency:
//
//	USD  $1,234.56
//	EUR  €1.234,56
//	LKR  Rs. 1,234.56
//
// Negative amounts carry a leading minus sign before the symbol.
func Format(amount decimal.Decimal, c Code) (string, error) {
	r, err := lookup(c)
	if err != nil {
		return "", err
	}
	return r.format(amount), nil
}

// MustFormat is like Format but panics on an unsupported currency.
func MustFormat(amount decimal.Decimal, c Code) string {
	s, err := Format(amount, c)
	if err != nil {
		panic(err)
	}
	return s
}

// Parse reads text written by Format (or typed by a user) back into an
// amount. The currency symbol is optional and grouping separators are ignored.
func Parse(text string, c Code) (decimal.Decimal, error) {
	r, err := lookup(c)
	if err != nil {
		return decimal.Zero, err
	}

	s := strings.TrimSpace(text)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(s[1:])
	}
	s = strings.TrimPrefix(s, r.symbol)
	s = strings.TrimPrefix(s, strings.TrimSpace(r.symbol))
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, r.thousands, "")
	if r.decimal != "." {
		s = strings.Replace(s, r.decimal, ".", 1)
	}

	if s == "" {
		return decimal.Zero, fmt.Errorf("currency: parse %q: empty amount", text)
	}
	for _, ch := range s {
		if (ch < '0' || ch > '9') && ch != '.' {
			return decimal.Zero, fmt.Errorf("currency: parse %q: unexpected character %q", text, ch)
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("currency: parse %q: %w", text, err)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

func lookup(c Code) (rule, error) {
	r, ok := rules[c]
	if !ok {
		return rule{}, fmt.Errorf("%w: %q", ErrUnsupported, string(c))
	}
	return r, nil
}

func (r rule) format(amount decimal.Decimal) string {
	rounded := Round(amount)
	whole, frac, _ := strings.Cut(rounded.Abs().StringFixed(Places), ".")

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(r.symbol)
	b.WriteString(group(whole, r.thousands))
	b.WriteString(r.decimal)
	b.WriteString(frac)
	return b.String()
}

// group inserts sep between every three digits counted from the right.
func group(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
