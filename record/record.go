// Package record defines the durable summary kept for every issued invoice.
// Records are immutable: there is no update or delete.
package record

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/invoicer/currency"
	"github.com/xraph/invoicer/id"
	"github.com/xraph/invoicer/invoice"
	"github.com/xraph/invoicer/types"
)

// Record is the stored summary of an issued invoice.
type Record struct {
	types.Entity
	ID             id.InvoiceID    `json:"id"`
	OrderNumber    string          `json:"order_number"`
	InvoiceDate    time.Time       `json:"invoice_date"`
	BillingName    string          `json:"billing_name"`
	BillingAddress string          `json:"billing_address"`
	BillingPhone   string          `json:"billing_phone"`
	Currency       currency.Code   `json:"currency"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
	FilePath       string          `json:"file_path"`
}

// FromInvoice summarizes a rendered invoice.
func FromInvoice(inv *invoice.Invoice) *Record {
	return &Record{
		Entity:         types.NewEntity(),
		ID:             id.NewInvoiceID(),
		OrderNumber:    inv.OrderNumber,
		InvoiceDate:    inv.Date,
		BillingName:    inv.Billing.Name,
		BillingAddress: inv.Billing.Address,
		BillingPhone:   inv.Billing.Phone,
		Currency:       inv.Currency,
		Subtotal:       inv.Totals.Subtotal.Amount,
		TaxRate:        inv.Totals.TaxRate,
		TaxAmount:      inv.Totals.Tax.Amount,
		DiscountAmount: inv.Totals.Discount.Amount,
		Total:          inv.Totals.Total.Amount,
		FilePath:       inv.FilePath,
	}
}

// TotalMoney returns the grand total tagged with the record's currency.
func (r *Record) TotalMoney() types.Money {
	return types.New(r.Total, r.Currency)
}

// SortKey selects the ordering of a listing.
type SortKey string

const (
	// SortByDate lists newest invoice date first.
	SortByDate SortKey = "date"
	// SortByOrderNumber lists order numbers ascending.
	SortByOrderNumber SortKey = "order_number"
	// SortByBillingName lists billing names ascending.
	SortByBillingName SortKey = "billing_name"
)

// ParseSortKey accepts the canonical names plus a few short aliases.
func ParseSortKey(s string) (SortKey, error) {
	switch s {
	case "", "date":
		return SortByDate, nil
	case "order_number", "order", "number":
		return SortByOrderNumber, nil
	case "billing_name", "name", "customer":
		return SortByBillingName, nil
	default:
		return "", fmt.Errorf("record: unknown sort key %q", s)
	}
}

// ListOpts filters and pages a listing. Start and End bound the invoice
// date inclusively when non-zero. Equal sort values keep insertion order.
type ListOpts struct {
	Sort   SortKey
	Start  time.Time
	End    time.Time
	Limit  int
	Offset int
}

// Store persists invoice records.
type Store interface {
	InsertRecord(ctx context.Context, r *Record) error
	GetRecord(ctx context.Context, orderNumber string) (*Record, error)
	ListRecords(ctx context.Context, opts ListOpts) ([]*Record, error)
	CountRecords(ctx context.Context, opts ListOpts) (int64, error)
}
