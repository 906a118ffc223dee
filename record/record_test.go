package record

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/invoicer/currency"
	"github.com/xraph/invoicer/invoice"
)

func TestFromInvoice(t *testing.T) {
	in := invoice.Input{
		Billing:  invoice.Billing{Name: "Acme", Address: "1 Main St", Phone: "555-0100"},
		Currency: currency.USD,
		Date:     time.Date(2025, 11, 18, 0, 0, 0, 0, time.UTC),
		TaxRate:  decimal.NewFromInt(10),
		Discount: decimal.RequireFromString("1.00"),
		Items: []invoice.ItemInput{
			{Description: "Widget", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("10.00")},
			{Description: "Gadget", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("5.50")},
		},
	}
	inv := invoice.New(in, "INV-20251118-00001")
	inv.FilePath = "/tmp/INV-20251118-00001.pdf"

	r := FromInvoice(inv)
	if r.ID.IsNil() {
		t.Error("record id not assigned")
	}
	if r.OrderNumber != inv.OrderNumber || r.FilePath != inv.FilePath {
		t.Errorf("identity fields: %+v", r)
	}
	if !r.Subtotal.Equal(decimal.RequireFromString("25.50")) || !r.Total.Equal(decimal.RequireFromString("26.95")) {
		t.Errorf("amounts: subtotal %s total %s", r.Subtotal, r.Total)
	}
	if got := r.TotalMoney().String(); got != "$26.95" {
		t.Errorf("TotalMoney = %q", got)
	}
	if r.CreatedAt.IsZero() {
		t.Error("created_at not stamped")
	}
}

func TestParseSortKey(t *testing.T) {
	tests := map[string]SortKey{
		"":             SortByDate,
		"date":         SortByDate,
		"order":        SortByOrderNumber,
		"order_number": SortByOrderNumber,
		"name":         SortByBillingName,
		"billing_name": SortByBillingName,
	}
	for in, want := range tests {
		got, err := ParseSortKey(in)
		if err != nil || got != want {
			t.Errorf("ParseSortKey(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseSortKey("total"); err == nil {
		t.Error("expected error for unknown key")
	}
}
