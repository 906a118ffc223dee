// Package invoicer generates numbered PDF invoices and keeps a durable record
// of every invoice it issues.
//
// Invoicer is designed as a library. Import it into your Go application, or
// drive it from the bundled invoicer command. It provides:
//
//   - Sequential order numbers per issue date (INV-YYYYMMDD-NNNNN) that are
//     never reissued, even under concurrent creation
//   - Exact decimal arithmetic for line amounts, discount, tax and totals
//   - Currency formatting for USD, EUR and LKR
//   - A fixed A4 document layout with logo, billing block, item table and
//     totals, overflowing onto further pages as needed
//   - Pluggable storage (memory, SQLite, PostgreSQL, MongoDB via Grove)
//   - Lifecycle plugins for metrics and audit trails
//
// # Quick Start
//
//	import (
//	    "github.com/xraph/invoicer"
//	    "github.com/xraph/invoicer/store/sqlite"
//	)
//
//	st, err := sqlite.Open(ctx, "invoices.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	inv := invoicer.New(st)
//	if err := inv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer inv.Stop()
//
// The company profile must be saved once before the first invoice:
//
//	err = inv.SaveSettings(ctx, &invoicer.Company{
//	    Name:            "Acme Corporation",
//	    DefaultCurrency: invoicer.CurrencyUSD,
//	    OutputDir:       "./invoices",
//	})
//
// Then invoices can be created:
//
//	res, err := inv.CreateInvoice(ctx, invoicer.Input{
//	    Billing: invoicer.Billing{Name: "Jane Customer"},
//	    TaxRate: decimal.NewFromInt(10),
//	    Items: []invoicer.Item{
//	        {Description: "Consulting", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("10.00")},
//	    },
//	})
//	// res.OrderNumber == "INV-20251118-00001", res.FilePath is absolute
//
// # Failure modes
//
// CreateInvoice runs validate, allocate, render and record in that order.
// A ValidationError is returned before anything is written. Once a number
// has been allocated it is spent: a RenderError leaves a gap in the
// sequence, and an UnrecordedFileError reports a document on disk that has
// no record. Use IsValidation and IsUnrecorded to tell them apart.
//
// # Previews
//
// Preview renders the same layout under the order number "PREVIEW" to
// PREVIEW.pdf in the output directory. It allocates nothing and records
// nothing.
//
// # TypeID
//
// Stored entities carry TypeIDs alongside their natural keys:
//
//	inv_01h455vb4pex5vsknk084sn02q  // Invoice record
//	cfg_01h2xcejqtf2nbrexx3vqjhp41  // Company settings
package invoicer
