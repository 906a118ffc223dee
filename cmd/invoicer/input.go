package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/xraph/invoicer/currency"
	"github.com/xraph/invoicer/invoice"
)

// dateLayout is the form issue dates take on the command line and in
// invoice files.
const dateLayout = "2006-01-02"

// invoiceFile is the YAML form of an invoice:
//
//	billing:
//	  name: Jane Customer
//	  address: |
//	    123 Customer Street
//	    New York, NY 10001
//	  phone: +1-555-9999
//	currency: USD            # optional, defaults to the company currency
//	date: 2025-11-18         # optional, defaults to today
//	tax_rate: 10
//	discount: 5.00
//	items:
//	  - description: Consulting
//	    quantity: 2
//	    unit_price: 1250.50
type invoiceFile struct {
	Billing struct {
		Name    string `yaml:"name"`
		Address string `yaml:"address"`
		Phone   string `yaml:"phone"`
	} `yaml:"billing"`
	Currency string     `yaml:"currency"`
	Date     string     `yaml:"date"`
	TaxRate  amount     `yaml:"tax_rate"`
	Discount amount     `yaml:"discount"`
	Items    []itemFile `yaml:"items"`
}

type itemFile struct {
	Description string `yaml:"description"`
	Quantity    amount `yaml:"quantity"`
	UnitPrice   amount `yaml:"unit_price"`
}

// amount reads a YAML scalar as an exact decimal. Numbers are never routed
// through float64.
type amount struct {
	decimal.Decimal
}

func (a *amount) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number", n.Line)
	}
	s := strings.TrimSpace(n.Value)
	if s == "" {
		a.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("line %d: %q is not a number", n.Line, n.Value)
	}
	a.Decimal = d
	return nil
}

// readInvoiceFile parses the invoice file at path.
func readInvoiceFile(path string) (invoice.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return invoice.Input{}, err
	}
	return parseInvoice(data)
}

func parseInvoice(data []byte) (invoice.Input, error) {
	var f invoiceFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return invoice.Input{}, fmt.Errorf("parse invoice: %w", err)
	}

	in := invoice.Input{
		Billing: invoice.Billing{
			Name:    f.Billing.Name,
			Address: strings.TrimRight(f.Billing.Address, "\n"),
			Phone:   f.Billing.Phone,
		},
		TaxRate:  f.TaxRate.Decimal,
		Discount: f.Discount.Decimal,
	}

	if f.Currency != "" {
		c, err := currency.ParseCode(f.Currency)
		if err != nil {
			return invoice.Input{}, err
		}
		in.Currency = c
	}
	if f.Date != "" {
		d, err := time.Parse(dateLayout, f.Date)
		if err != nil {
			return invoice.Input{}, fmt.Errorf("date %q: want YYYY-MM-DD", f.Date)
		}
		in.Date = d
	}

	for _, it := range f.Items {
		in.Items = append(in.Items, invoice.ItemInput{
			Description: it.Description,
			Quantity:    it.Quantity.Decimal,
			UnitPrice:   it.UnitPrice.Decimal,
		})
	}
	return in, nil
}

// parseDate parses an optional YYYY-MM-DD flag value.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: want YYYY-MM-DD", s)
	}
	return d, nil
}
