package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/xraph/invoicer/currency"
)

func TestMoneyConstructors(t *testing.T) {
	tests := []struct {
		name     string
		money    Money
		amount   string
		currency currency.Code
		display  string
	}{
		{"USD", USD("49"), "49", currency.USD, "$49.00"},
		{"EUR", EUR("1234.5"), "1234.5", currency.EUR, "€1.234,50"},
		{"LKR", LKR("100"), "100", currency.LKR, "Rs. 100.00"},
		{"Zero USD", Zero(currency.USD), "0", currency.USD, "$0.00"},
		{"Zero EUR", Zero(currency.EUR), "0", currency.EUR, "€0,00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.money.Amount.Equal(decimal.RequireFromString(tt.amount)) {
				t.Errorf("Amount: got %s, want %s", tt.money.Amount, tt.amount)
			}
			if tt.money.Currency != tt.currency {
				t.Errorf("Currency: got %s, want %s", tt.money.Currency, tt.currency)
			}
			if tt.money.String() != tt.display {
				t.Errorf("Display: got %s, want %s", tt.money.String(), tt.display)
			}
		})
	}
}

func TestMoneyArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Money
		expected Money
	}{
		{"Add", func() Money { return USD("1.00").Add(USD("2.00")) }, USD("3.00")},
		{"Subtract", func() Money { return USD("5.00").Subtract(USD("2.00")) }, USD("3.00")},
		{"Multiply", func() Money { return USD("10.00").Multiply(decimal.NewFromInt(2)) }, USD("20.00")},
		{"Percent", func() Money { return USD("24.50").Percent(decimal.NewFromInt(10)) }, USD("2.45")},
		{"Round half up", func() Money { return USD("2.345").Round() }, USD("2.35")},
		{"Negate", func() Money { return USD("1.00").Negate() }, USD("-1.00")},
		{"Complex", func() Money {
			return USD("25.50").Subtract(USD("1.00")).Percent(decimal.NewFromInt(10)).Round()
		}, USD("2.45")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.op()
			if !result.Equal(tt.expected) {
				t.Errorf("Got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for currency mismatch")
		}
	}()

	// This should panic
	_ = USD("1").Add(EUR("1"))
}

func TestMoneyComparison(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Money
		less    bool
		greater bool
		equal   bool
	}{
		{"Equal", USD("1.00"), USD("1"), false, false, true},
		{"Less", USD("0.50"), USD("1.00"), true, false, false},
		{"Greater", USD("2.00"), USD("1.00"), false, true, false},
		{"Zero equal", USD("0"), Zero(currency.USD), false, false, true},
		{"Negative less", USD("-1"), USD("1"), true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.LessThan(tt.b); got != tt.less {
				t.Errorf("LessThan: got %v, want %v", got, tt.less)
			}
			if got := tt.a.GreaterThan(tt.b); got != tt.greater {
				t.Errorf("GreaterThan: got %v, want %v", got, tt.greater)
			}
			if got := tt.a.Equal(tt.b); got != tt.equal {
				t.Errorf("Equal: got %v, want %v", got, tt.equal)
			}
		})
	}
}

func TestMoneyPredicates(t *testing.T) {
	tests := []struct {
		name       string
		money      Money
		isZero     bool
		isPositive bool
		isNegative bool
	}{
		{"Zero", USD("0"), true, false, false},
		{"Positive", USD("1"), false, true, false},
		{"Negative", USD("-1"), false, false, true},
		{"Large positive", USD("9999999.99"), false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.money.IsZero(); got != tt.isZero {
				t.Errorf("IsZero: got %v, want %v", got, tt.isZero)
			}
			if got := tt.money.IsPositive(); got != tt.isPositive {
				t.Errorf("IsPositive: got %v, want %v", got, tt.isPositive)
			}
			if got := tt.money.IsNegative(); got != tt.isNegative {
				t.Errorf("IsNegative: got %v, want %v", got, tt.isNegative)
			}
		})
	}
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(USD("1234.5"))
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	expected := `{"amount":"1234.50","currency":"USD","display":"$1,234.50"}`
	if string(data) != expected {
		t.Errorf("JSON: got %s, want %s", string(data), expected)
	}
}

func TestSum(t *testing.T) {
	tests := []struct {
		name     string
		values   []Money
		expected Money
	}{
		{"Empty", nil, Zero(currency.USD)},
		{"Single", []Money{USD("1")}, USD("1")},
		{"Multiple", []Money{USD("20.00"), USD("5.50")}, USD("25.50")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Sum(currency.USD, tt.values...)
			if !result.Equal(tt.expected) {
				t.Errorf("Sum: got %v, want %v", result, tt.expected)
			}
		})
	}
}

func BenchmarkMoneyString(b *testing.B) {
	m := USD("1234567.89")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.String()
	}
}
