package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/xraph/invoicer"
	"github.com/xraph/invoicer/currency"
	"github.com/xraph/invoicer/record"
	"github.com/xraph/invoicer/settings"
)

// ──────────────────────────────────────────────────
// Company settings
// ──────────────────────────────────────────────────

func companyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "company name"},
		&cli.StringFlag{Name: "address", Usage: "company address, lines separated by \\n"},
		&cli.StringFlag{Name: "phone", Usage: "company phone number"},
		&cli.StringFlag{Name: "logo", Usage: "path to a PNG or JPEG logo"},
		&cli.StringFlag{Name: "currency", Usage: "default currency (USD, EUR, LKR)"},
		&cli.StringFlag{Name: "output-folder", Usage: "folder the PDFs are written to"},
	}
}

// applyCompanyFlags copies the flags that were set onto c.
func applyCompanyFlags(ctx *cli.Context, c *settings.Company) error {
	if ctx.IsSet("name") {
		c.Name = ctx.String("name")
	}
	if ctx.IsSet("address") {
		c.Address = strings.ReplaceAll(ctx.String("address"), `\n`, "\n")
	}
	if ctx.IsSet("phone") {
		c.Phone = ctx.String("phone")
	}
	if ctx.IsSet("logo") {
		c.LogoPath = ctx.String("logo")
	}
	if ctx.IsSet("currency") {
		code, err := currency.ParseCode(ctx.String("currency"))
		if err != nil {
			return err
		}
		c.DefaultCurrency = code
	}
	if ctx.IsSet("output-folder") {
		c.OutputDir = ctx.String("output-folder")
	}
	return nil
}

func setupCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "save the company profile printed on every invoice",
		Flags: append(companyFlags(),
			&cli.BoolFlag{Name: "force", Usage: "replace an existing profile"},
		),
		Action: func(c *cli.Context) error {
			first, err := e.engine.IsFirstRun(c.Context)
			if err != nil {
				return err
			}
			if !first && !c.Bool("force") {
				return cli.Exit("company settings already exist; use 'settings set' or --force", exitError)
			}

			co := &settings.Company{DefaultCurrency: currency.USD, OutputDir: "invoices"}
			if err := applyCompanyFlags(c, co); err != nil {
				return err
			}
			if err := e.engine.SaveSettings(c.Context, co); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "Saved settings for %s\n", co.Name)
			return nil
		},
	}
}

func settingsCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "show or change the company profile",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "print the stored profile",
				Flags: []cli.Flag{jsonFlag()},
				Action: func(c *cli.Context) error {
					co, err := e.engine.Settings(c.Context)
					if err != nil {
						return notSetUp(err)
					}
					if c.Bool("json") {
						return e.printJSON(co)
					}
					tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
					fmt.Fprintf(tw, "Company:\t%s\n", co.Name)
					fmt.Fprintf(tw, "Address:\t%s\n", strings.ReplaceAll(co.Address, "\n", ", "))
					fmt.Fprintf(tw, "Phone:\t%s\n", co.Phone)
					fmt.Fprintf(tw, "Logo:\t%s\n", co.LogoPath)
					fmt.Fprintf(tw, "Currency:\t%s\n", co.DefaultCurrency)
					fmt.Fprintf(tw, "Output folder:\t%s\n", co.OutputDir)
					return tw.Flush()
				},
			},
			{
				Name:  "set",
				Usage: "update fields of the stored profile",
				Flags: companyFlags(),
				Action: func(c *cli.Context) error {
					co, err := e.engine.Settings(c.Context)
					if err != nil {
						return notSetUp(err)
					}
					if err := applyCompanyFlags(c, co); err != nil {
						return err
					}
					if err := e.engine.SaveSettings(c.Context, co); err != nil {
						return err
					}
					fmt.Fprintln(e.out, "Settings updated")
					return nil
				},
			},
		},
	}
}

func notSetUp(err error) error {
	if errors.Is(err, invoicer.ErrSettingsNotFound) {
		return cli.Exit("no company settings yet; run 'invoicer setup' first", exitError)
	}
	return err
}

// ──────────────────────────────────────────────────
// Invoices
// ──────────────────────────────────────────────────

func fileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "file",
		Aliases:  []string{"f"},
		Usage:    "invoice YAML file",
		Required: true,
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "print JSON"}
}

func createCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "issue an invoice: allocate its order number, write the PDF and record it",
		Flags: []cli.Flag{fileFlag(), jsonFlag()},
		Action: func(c *cli.Context) error {
			in, err := readInvoiceFile(c.String("file"))
			if err != nil {
				return err
			}

			res, err := e.engine.CreateInvoice(c.Context, in)
			if err != nil {
				if errors.Is(err, invoicer.ErrSettingsNotFound) {
					return notSetUp(err)
				}
				var ue *invoicer.UnrecordedFileError
				if errors.As(err, &ue) {
					fmt.Fprintf(e.out, "WARNING: %s was written to %s but could not be recorded.\n", ue.OrderNumber, ue.Path)
				}
				return err
			}

			if c.Bool("json") {
				return e.printJSON(res)
			}
			fmt.Fprintf(e.out, "Invoice %s created\n", res.OrderNumber)
			fmt.Fprintf(e.out, "  File:  %s\n", res.FilePath)
			fmt.Fprintf(e.out, "  Total: %s\n", res.Totals.Total)
			return nil
		},
	}
}

func previewCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "preview",
		Usage: "render an invoice as PREVIEW.pdf without issuing it",
		Flags: []cli.Flag{fileFlag()},
		Action: func(c *cli.Context) error {
			in, err := readInvoiceFile(c.String("file"))
			if err != nil {
				return err
			}
			p, err := e.engine.Preview(c.Context, in)
			if err != nil {
				return notSetUp(err)
			}
			fmt.Fprintf(e.out, "Preview written to %s\n", p.FilePath)
			fmt.Fprintf(e.out, "  Total: %s\n", p.Invoice.Totals.Total)
			return nil
		},
	}
}

func listCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "list issued invoices",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "sort", Usage: "date, order_number or billing_name", Value: "date"},
			&cli.StringFlag{Name: "from", Usage: "first invoice date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "to", Usage: "last invoice date (YYYY-MM-DD)"},
			&cli.IntFlag{Name: "limit", Usage: "maximum number of invoices"},
			&cli.IntFlag{Name: "offset", Usage: "skip this many invoices"},
			jsonFlag(),
		},
		Action: func(c *cli.Context) error {
			sort, err := record.ParseSortKey(c.String("sort"))
			if err != nil {
				return err
			}
			from, err := parseDate(c.String("from"))
			if err != nil {
				return err
			}
			to, err := parseDate(c.String("to"))
			if err != nil {
				return err
			}
			if c.Int("limit") < 0 || c.Int("offset") < 0 {
				return cli.Exit("--limit and --offset must not be negative", exitError)
			}
			opts := record.ListOpts{
				Sort:   sort,
				Start:  from,
				End:    to,
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			}

			var recs []*record.Record
			for r, err := range e.engine.Invoices(c.Context, opts) {
				if err != nil {
					return err
				}
				recs = append(recs, r)
			}

			if c.Bool("json") {
				return e.printJSON(recs)
			}
			if len(recs) == 0 {
				fmt.Fprintln(e.out, "No invoices")
				return nil
			}

			tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ORDER NUMBER\tDATE\tCUSTOMER\tTOTAL\tFILE")
			for _, r := range recs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					r.OrderNumber, r.InvoiceDate.Format(dateLayout), r.BillingName, r.TotalMoney(), r.FilePath)
			}
			return tw.Flush()
		},
	}
}

func showCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "print one invoice record",
		ArgsUsage: "ORDER_NUMBER",
		Flags:     []cli.Flag{jsonFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("show takes exactly one order number", exitError)
			}
			r, err := e.engine.GetInvoice(c.Context, c.Args().First())
			if err != nil {
				if invoicer.IsNotFound(err) {
					return cli.Exit(fmt.Sprintf("invoice %s not found", c.Args().First()), exitError)
				}
				return err
			}
			if c.Bool("json") {
				return e.printJSON(r)
			}

			tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Order number:\t%s\n", r.OrderNumber)
			fmt.Fprintf(tw, "Date:\t%s\n", r.InvoiceDate.Format(dateLayout))
			fmt.Fprintf(tw, "Customer:\t%s\n", r.BillingName)
			fmt.Fprintf(tw, "Address:\t%s\n", strings.ReplaceAll(r.BillingAddress, "\n", ", "))
			fmt.Fprintf(tw, "Phone:\t%s\n", r.BillingPhone)
			fmt.Fprintf(tw, "Currency:\t%s\n", r.Currency)
			fmt.Fprintf(tw, "Subtotal:\t%s\n", currency.MustFormat(r.Subtotal, r.Currency))
			fmt.Fprintf(tw, "Discount:\t%s\n", currency.MustFormat(r.DiscountAmount, r.Currency))
			fmt.Fprintf(tw, "Tax (%s%%):\t%s\n", r.TaxRate.String(), currency.MustFormat(r.TaxAmount, r.Currency))
			fmt.Fprintf(tw, "Total:\t%s\n", r.TotalMoney())
			fmt.Fprintf(tw, "File:\t%s\n", r.FilePath)
			return tw.Flush()
		},
	}
}

func nextCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "next",
		Usage: "print the order number the next invoice will receive",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Usage: "issue date (YYYY-MM-DD), default today"},
		},
		Action: func(c *cli.Context) error {
			day, err := parseDate(c.String("date"))
			if err != nil {
				return err
			}
			n, err := e.engine.PeekOrderNumber(c.Context, day)
			if err != nil {
				return err
			}
			fmt.Fprintln(e.out, n)
			return nil
		},
	}
}

func currenciesCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "currencies",
		Usage: "list the supported currencies",
		Action: func(*cli.Context) error {
			sample := decimal.RequireFromString("1234.56")
			for _, code := range invoicer.Currencies() {
				name, _ := currency.Name(code)
				fmt.Fprintf(e.out, "%s  %s  %s\n", code, name, currency.MustFormat(sample, code))
			}
			return nil
		},
	}
}

func (e *env) printJSON(v any) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
