// Package invoice defines the in-memory invoice built for a single creation
// or preview, and the pure arithmetic that derives its totals.
package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/invoicer/currency"
	"github.com/xraph/invoicer/id"
	"github.com/xraph/invoicer/types"
)

// PreviewOrderNumber is the placeholder order number printed on previews.
// It can never collide with an allocated number (INV-YYYYMMDD-NNNNN).
const PreviewOrderNumber = "PREVIEW"

// Billing identifies the customer an invoice is addressed to.
type Billing struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// ItemInput is one caller-supplied billable row.
type ItemInput struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Input is everything a caller supplies to create or preview an invoice.
type Input struct {
	Billing  Billing         `json:"billing"`
	Currency currency.Code   `json:"currency"`
	Date     time.Time       `json:"date"` // issue date; zero means today
	TaxRate  decimal.Decimal `json:"tax_rate"`
	Discount decimal.Decimal `json:"discount"`
	Items    []ItemInput     `json:"items"`
}

// LineItem is an item attached to an invoice. Position is 1-based and keeps
// the caller's ordering.
type LineItem struct {
	ID          id.LineItemID   `json:"id"`
	Position    int             `json:"position"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   types.Money     `json:"unit_price"`
	Amount      types.Money     `json:"amount"`
}

// Totals holds the derived amounts of an invoice.
type Totals struct {
	Subtotal    types.Money     `json:"subtotal"`
	Discount    types.Money     `json:"discount"`
	TaxableBase types.Money     `json:"taxable_base"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Tax         types.Money     `json:"tax"`
	Total       types.Money     `json:"total"`
}

// Invoice is the transient document handed to the renderer.
type Invoice struct {
	OrderNumber string        `json:"order_number"`
	Date        time.Time     `json:"date"`
	Currency    currency.Code `json:"currency"`
	Billing     Billing       `json:"billing"`
	LineItems   []LineItem    `json:"line_items"`
	Totals      Totals        `json:"totals"`
	FilePath    string        `json:"file_path,omitempty"`
}

// IsPreview reports whether the invoice carries the preview placeholder.
func (inv *Invoice) IsPreview() bool {
	return inv.OrderNumber == PreviewOrderNumber
}

// Day truncates t to midnight UTC of its calendar date. Issue dates are
// stored and compared in this form.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
