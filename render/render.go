// Package render lays out an invoice as an A4 PDF document.
//
// Layout, top to bottom: company header with optional logo, invoice title
// block, BILL TO block, the item table, the totals block, and a footer on
// every page. The item table repeats its header row whenever a row would
// cross the bottom margin.
package render

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/xraph/invoicer/invoice"
	"github.com/xraph/invoicer/settings"
)

// DateLayout is how issue dates are printed.
const DateLayout = "January 2, 2006"

// Page geometry in millimetres.
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 25.0
	contentWidth = pageWidth - marginLeft - marginRight

	logoWidth  = 35.0
	lineHeight = 5.0
	rowPadding = 2.0
)

type rgb struct{ r, g, b int }

var (
	colorPrimary   = rgb{0x2C, 0x3E, 0x50}
	colorSecondary = rgb{0x34, 0x98, 0xDB}
	colorLightGray = rgb{0xEC, 0xF0, 0xF1}
	colorDarkGray  = rgb{0x7F, 0x8C, 0x8D}
	colorWhite     = rgb{0xFF, 0xFF, 0xFF}
	colorBlack     = rgb{0x00, 0x00, 0x00}
)

// column is one column of the item table.
type column struct {
	title string
	width float64
	align string
}

var columns = []column{
	{"#", 12, "C"},
	{"Description", 88, "L"},
	{"Qty", 20, "C"},
	{"Unit Price", 30, "R"},
	{"Total", 30, "R"},
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used for non-fatal layout problems.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// Renderer turns invoices into PDF files. It holds no per-document state and
// is safe for concurrent use.
type Renderer struct {
	logger *slog.Logger
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path returns the file an invoice is written to inside dir.
func Path(dir, orderNumber string) string {
	return filepath.Join(dir, orderNumber+".pdf")
}

// Render writes the invoice to <company.OutputDir>/<order number>.pdf and
// returns the absolute path. The file is replaced atomically; on failure no
// partial file is left behind.
func (r *Renderer) Render(ctx context.Context, inv *invoice.Invoice, company settings.Company) (string, error) {
	dir, err := filepath.Abs(company.OutputDir)
	if err != nil {
		return "", fmt.Errorf("invoicer/render: output dir %q: %w", company.OutputDir, err)
	}

	pdf, err := r.build(ctx, inv, company)
	if err != nil {
		return "", err
	}

	path := Path(dir, inv.OrderNumber)
	if err := writeAtomic(path, pdf.Output); err != nil {
		return "", fmt.Errorf("invoicer/render: write %s: %w", path, err)
	}
	return path, nil
}

// RenderTo writes the PDF to w without touching the filesystem.
func (r *Renderer) RenderTo(ctx context.Context, w io.Writer, inv *invoice.Invoice, company settings.Company) error {
	pdf, err := r.build(ctx, inv, company)
	if err != nil {
		return err
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("invoicer/render: output: %w", err)
	}
	return nil
}

func (r *Renderer) build(ctx context.Context, inv *invoice.Invoice, company settings.Company) (*gofpdf.Fpdf, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(inv.Date)
	pdf.SetModificationDate(inv.Date)
	pdf.SetCatalogSort(true)
	pdf.SetTitle("Invoice "+inv.OrderNumber, true)
	pdf.SetAuthor(company.Name, true)
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.AliasNbPages("")

	d := &document{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
	}
	pdf.SetFooterFunc(d.footer)
	pdf.AddPage()

	lg := r.loadLogo(pdf, company.LogoPath)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("invoicer/render: logo %q: %w", company.LogoPath, err)
	}
	d.header(lg, inv, company)
	d.billTo(inv.Billing)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.items(inv)
	d.totals(inv)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("invoicer/render: layout: %w", err)
	}
	return pdf, nil
}

// logo is a registered image ready to be placed.
type logo struct {
	name   string
	height float64
}

// loadLogo registers the logo image. A missing or unreadable file is logged
// and skipped; a file that fails to decode leaves an error on pdf, after
// which pdf draws nothing and the caller must stop.
func (r *Renderer) loadLogo(pdf *gofpdf.Fpdf, path string) *logo {
	if path == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		r.logger.Warn("logo unavailable, rendering without it", "path", path, "error", err)
		return nil
	}
	defer f.Close()

	imgType := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	info := pdf.RegisterImageOptionsReader(path, gofpdf.ImageOptions{ImageType: imgType, ReadDpi: true}, f)
	if !pdf.Ok() || info == nil || info.Width() == 0 {
		return nil
	}
	return &logo{name: path, height: logoWidth * info.Height() / info.Width()}
}
