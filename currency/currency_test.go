package currency

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		code   Code
		want   string
	}{
		{"USD grouping", "1234.56", USD, "$1,234.56"},
		{"EUR grouping", "1234.56", EUR, "€1.234,56"},
		{"LKR grouping", "1234.56", LKR, "Rs. 1,234.56"},
		{"USD zero", "0", USD, "$0.00"},
		{"USD small", "5.5", USD, "$5.50"},
		{"USD millions", "1234567.8", USD, "$1,234,567.80"},
		{"EUR millions", "1234567.8", EUR, "€1.234.567,80"},
		{"exact three digits", "999.99", USD, "$999.99"},
		{"round half up", "2.345", USD, "$2.35"},
		{"round down", "2.344", USD, "$2.34"},
		{"round carries", "999.995", USD, "$1,000.00"},
		{"negative", "-1234.5", USD, "-$1,234.50"},
		{"invoice total", "26.95", USD, "$26.95"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format(decimal.RequireFromString(tt.amount), tt.code)
			if err != nil {
				t.Fatalf("Format: %v", err)
			}
			if got != tt.want {
				t.Errorf("Format(%s, %s) = %q, want %q", tt.amount, tt.code, got, tt.want)
			}
		})
	}
}

func TestFormatUnsupported(t *testing.T) {
	_, err := Format(decimal.NewFromInt(1), Code("GBP"))
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestParseRoundTrip(t *testing.T) {
	amounts := []string{"0", "0.01", "1", "12.3", "999.99", "1000", "1234.56", "98765432.1", "-42.42", "3.14159"}

	for _, code := range Codes() {
		for _, a := range amounts {
			t.Run(string(code)+"/"+a, func(t *testing.T) {
				amount := decimal.RequireFromString(a)
				text, err := Format(amount, code)
				if err != nil {
					t.Fatalf("Format: %v", err)
				}
				back, err := Parse(text, code)
				if err != nil {
					t.Fatalf("Parse(%q): %v", text, err)
				}
				if !back.Equal(Round(amount)) {
					t.Errorf("round trip %s -> %q -> %s", a, text, back)
				}
			})
		}
	}
}

func TestParseUserInput(t *testing.T) {
	tests := []struct {
		text string
		code Code
		want string
	}{
		{"1234.56", USD, "1234.56"},
		{" $ 10 ", USD, "10"},
		{"1.234,5", EUR, "1234.5"},
		{"Rs.500", LKR, "500"},
	}
	for _, tt := range tests {
		got, err := Parse(tt.text, tt.code)
		if err != nil {
			t.Errorf("Parse(%q): %v", tt.text, err)
			continue
		}
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("Parse(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}

	for _, bad := range []string{"", "$", "abc", "1,2x"} {
		if _, err := Parse(bad, USD); err == nil {
			t.Errorf("Parse(%q): expected error", bad)
		}
	}
}

func TestParseCode(t *testing.T) {
	c, err := ParseCode(" eur ")
	if err != nil || c != EUR {
		t.Fatalf("ParseCode(eur) = %q, %v", c, err)
	}
	if _, err := ParseCode("JPY"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestName(t *testing.T) {
	for code, want := range map[Code]string{USD: "US Dollar", EUR: "Euro", LKR: "Sri Lankan Rupee"} {
		got, err := Name(code)
		if err != nil || got != want {
			t.Errorf("Name(%s) = %q, %v", code, got, err)
		}
	}
}
