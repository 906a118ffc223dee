package invoicer_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/xraph/invoicer"
	"github.com/xraph/invoicer/currency"
	"github.com/xraph/invoicer/invoice"
)

func validInput() invoice.Input {
	in := sampleInput()
	in.Currency = currency.USD
	return in
}

func TestValidateInput(t *testing.T) {
	d := decimal.RequireFromString

	tests := []struct {
		name   string
		mutate func(*invoice.Input)
		fields []string
	}{
		{"valid", func(*invoice.Input) {}, nil},
		{"blank name", func(in *invoice.Input) { in.Billing.Name = "  " }, []string{"billing.name"}},
		{"no items", func(in *invoice.Input) { in.Items = nil }, []string{"items"}},
		{"zero quantity", func(in *invoice.Input) { in.Items[0].Quantity = decimal.Zero }, []string{"items[0].quantity"}},
		{"negative price", func(in *invoice.Input) { in.Items[0].UnitPrice = d("-1") }, []string{"items[0].unit_price"}},
		{"free item", func(in *invoice.Input) { in.Items[0].UnitPrice = decimal.Zero }, nil},
		{"missing description", func(in *invoice.Input) { in.Items[0].Description = "" }, []string{"items[0].description"}},
		{"negative tax", func(in *invoice.Input) { in.TaxRate = d("-5") }, []string{"tax_rate"}},
		{"negative discount", func(in *invoice.Input) { in.Discount = d("-0.01") }, []string{"discount"}},
		{"discount equals subtotal", func(in *invoice.Input) { in.Discount = d("20.00") }, nil},
		{"discount above subtotal", func(in *invoice.Input) { in.Discount = d("20.01") }, []string{"discount"}},
		{"unknown currency", func(in *invoice.Input) { in.Currency = "GBP" }, []string{"currency"}},
		{"phone with letters", func(in *invoice.Input) { in.Billing.Phone = "555-CALL-NOW" }, []string{"billing.phone"}},
		{"short phone", func(in *invoice.Input) { in.Billing.Phone = "12-34" }, []string{"billing.phone"}},
		{"formatted phone", func(in *invoice.Input) { in.Billing.Phone = "+94 (11) 234-5678" }, nil},
		{"no phone", func(in *invoice.Input) { in.Billing.Phone = "" }, nil},
		{"no address", func(in *invoice.Input) { in.Billing.Address = "" }, nil},
		{"name only", func(in *invoice.Input) { in.Billing = invoice.Billing{Name: "Jane Customer"} }, nil},
		{
			"several problems",
			func(in *invoice.Input) {
				in.Billing.Name = ""
				in.Items[0].Quantity = d("-1")
				in.TaxRate = d("-1")
			},
			[]string{"billing.name", "items[0].quantity", "tax_rate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			err := invoicer.ValidateInput(in)
			if len(tt.fields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var me invoicer.MultiError
			if !errors.As(err, &me) {
				t.Fatalf("error %v is not a MultiError", err)
			}
			if len(me.Errors) != len(tt.fields) {
				t.Fatalf("got %d violations (%v), want %d", len(me.Errors), err, len(tt.fields))
			}
			for i, e := range me.Errors {
				var ve invoicer.ValidationError
				if !errors.As(e, &ve) {
					t.Fatalf("violation %d is %T", i, e)
				}
				if ve.Field != tt.fields[i] {
					t.Errorf("violation %d field = %q, want %q", i, ve.Field, tt.fields[i])
				}
			}
			if !errors.Is(err, invoicer.ErrInvalidInput) {
				t.Error("expected errors.Is(err, ErrInvalidInput)")
			}
		})
	}
}
