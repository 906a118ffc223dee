package invoice

import (
	"github.com/shopspring/decimal"

	"github.com/xraph/invoicer/currency"
	"github.com/xraph/invoicer/id"
	"github.com/xraph/invoicer/types"
)

// LineAmount returns quantity × unit price rounded to two places.
func LineAmount(qty, unitPrice decimal.Decimal) decimal.Decimal {
	return currency.Round(qty.Mul(unitPrice))
}

// Subtotal sums the rounded line amounts of the input items.
func (in Input) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range in.Items {
		sum = sum.Add(LineAmount(it.Quantity, it.UnitPrice))
	}
	return sum
}

// ComputeTotals derives subtotal, tax and grand total:
//
//	taxable = subtotal - discount
//	tax     = round2(taxable × rate / 100)
//	total   = taxable + tax
func ComputeTotals(c currency.Code, subtotal, taxRate, discount decimal.Decimal) Totals {
	sub := types.New(currency.Round(subtotal), c)
	disc := types.New(currency.Round(discount), c)
	base := sub.Subtract(disc)
	tax := base.Percent(taxRate).Round()

	return Totals{
		Subtotal:    sub,
		Discount:    disc,
		TaxableBase: base,
		TaxRate:     taxRate,
		Tax:         tax,
		Total:       base.Add(tax),
	}
}

// New builds an invoice from validated input under the given order number.
// Line items keep the input order.
func New(in Input, orderNumber string) *Invoice {
	items := make([]LineItem, 0, len(in.Items))
	for i, it := range in.Items {
		items = append(items, LineItem{
			ID:          id.NewLineItemID(),
			Position:    i + 1,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   types.New(it.UnitPrice, in.Currency),
			Amount:      types.New(LineAmount(it.Quantity, it.UnitPrice), in.Currency),
		})
	}

	return &Invoice{
		OrderNumber: orderNumber,
		Date:        in.Date,
		Currency:    in.Currency,
		Billing:     in.Billing,
		LineItems:   items,
		Totals:      ComputeTotals(in.Currency, in.Subtotal(), in.TaxRate, in.Discount),
	}
}
