package invoicer

import (
	"github.com/xraph/invoicer/currency"
	"github.com/xraph/invoicer/invoice"
	"github.com/xraph/invoicer/record"
	"github.com/xraph/invoicer/settings"
	"github.com/xraph/invoicer/types"
)

// Re-export common types for convenience so callers can build an invoice
// without importing every subpackage.

// Money is re-exported from types package.
type Money = types.Money

// Entity is re-exported from types package.
type Entity = types.Entity

// Currency is re-exported from currency package.
type Currency = currency.Code

// Input is re-exported from invoice package.
type Input = invoice.Input

// Item is re-exported from invoice package.
type Item = invoice.ItemInput

// Billing is re-exported from invoice package.
type Billing = invoice.Billing

// Totals is re-exported from invoice package.
type Totals = invoice.Totals

// Record is re-exported from record package.
type Record = record.Record

// ListOpts is re-exported from record package.
type ListOpts = record.ListOpts

// Company is re-exported from settings package.
type Company = settings.Company

// Supported currencies.
const (
	CurrencyUSD = currency.USD
	CurrencyEUR = currency.EUR
	CurrencyLKR = currency.LKR
)

// Re-export Money constructors
var (
	USD  = types.USD
	EUR  = types.EUR
	LKR  = types.LKR
	Zero = types.Zero
	Sum  = types.Sum
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
