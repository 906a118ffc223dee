package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/xraph/invoicer/currency"
	"github.com/xraph/invoicer/invoice"
	"github.com/xraph/invoicer/settings"
)

func testInvoice(items int) *invoice.Invoice {
	in := invoice.Input{
		Billing: invoice.Billing{
			Name:    "Jane Customer",
			Address: "123 Customer Street\nApt 4B\nNew York, NY 10001",
			Phone:   "+1-555-9999",
		},
		Currency: currency.EUR,
		Date:     time.Date(2025, 11, 18, 0, 0, 0, 0, time.UTC),
		TaxRate:  decimal.NewFromInt(10),
		Discount: decimal.NewFromInt(5),
	}
	for i := range items {
		in.Items = append(in.Items, invoice.ItemInput{
			Description: fmt.Sprintf("Consulting block %d with a description long enough to wrap onto a second line of the table", i+1),
			Quantity:    decimal.NewFromInt(int64(i%3 + 1)),
			UnitPrice:   decimal.RequireFromString("1250.50"),
		})
	}
	return invoice.New(in, "INV-20251118-00001")
}

func testCompany(dir string) settings.Company {
	return settings.Company{
		Name:            "Acme Corporation",
		Address:         "456 Business Avenue\nSuite 100",
		Phone:           "+1-555-0123",
		DefaultCurrency: currency.EUR,
		OutputDir:       dir,
	}
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := range 40 {
		for y := range 20 {
			img.Set(x, y, color.RGBA{R: 0x34, G: 0x98, B: 0xDB, A: 0xFF})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestRenderWritesFile(t *testing.T) {
	dir := t.TempDir()
	r := New()

	path, err := r.Render(context.Background(), testInvoice(3), testCompany(dir))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if want := filepath.Join(dir, "INV-20251118-00001.pdf"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if !filepath.IsAbs(path) {
		t.Errorf("path %q is not absolute", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("output dir holds %d entries, want only the pdf", len(entries))
	}
}

func TestRenderOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "INV-20251118-00001.pdf")
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := New().Render(context.Background(), testInvoice(1), testCompany(dir)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) == "stale" {
		t.Error("existing file was not replaced")
	}
}

func TestRenderCreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "invoices")
	if _, err := New().Render(context.Background(), testInvoice(1), testCompany(dir)); err != nil {
		t.Fatalf("Render: %v", err)
	}
}

func TestRenderUnwritableDir(t *testing.T) {
	// A regular file where the directory should be.
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := New().Render(context.Background(), testInvoice(1), testCompany(blocker))
	if err == nil {
		t.Fatal("expected an error for an unusable output dir")
	}
}

func TestRenderMissingLogo(t *testing.T) {
	var logs bytes.Buffer
	r := New(WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	co := testCompany(t.TempDir())
	co.LogoPath = filepath.Join(t.TempDir(), "missing.png")

	if _, err := r.Render(context.Background(), testInvoice(1), co); err != nil {
		t.Fatalf("Render with missing logo: %v", err)
	}
	if !strings.Contains(logs.String(), "level=WARN") || !strings.Contains(logs.String(), "missing.png") {
		t.Errorf("expected a warning naming the logo, got %q", logs.String())
	}
}

func TestRenderWithLogo(t *testing.T) {
	dir := t.TempDir()
	co := testCompany(dir)
	co.LogoPath = filepath.Join(t.TempDir(), "logo.png")
	writePNG(t, co.LogoPath)

	if _, err := New().Render(context.Background(), testInvoice(2), co); err != nil {
		t.Fatalf("Render with logo: %v", err)
	}
}

func TestRenderCorruptLogo(t *testing.T) {
	tests := []struct {
		name string
		file string
	}{
		{"undecodable png", "logo.png"},
		{"no extension", "logo"},
		{"unsupported type", "logo.bmp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			co := testCompany(dir)
			co.LogoPath = filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(co.LogoPath, []byte("definitely not an image"), 0o644); err != nil {
				t.Fatal(err)
			}

			_, err := New().Render(context.Background(), testInvoice(3), co)
			if err == nil {
				t.Fatal("expected an error for an undecodable logo")
			}
			if !strings.Contains(err.Error(), tt.file) {
				t.Errorf("error %q does not name the logo", err)
			}
			entries, _ := os.ReadDir(dir)
			if len(entries) != 0 {
				t.Errorf("failed render left %d files behind", len(entries))
			}
		})
	}
}

func TestRenderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New().Render(ctx, testInvoice(1), testCompany(t.TempDir())); err == nil {
		t.Fatal("expected an error for a canceled context")
	}
}

func TestPageOverflow(t *testing.T) {
	tests := []struct {
		items    int
		minPages int
		maxPages int
	}{
		{1, 1, 1},
		{5, 1, 1},
		{60, 3, 10},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d items", tt.items), func(t *testing.T) {
			pdf, err := New().build(context.Background(), testInvoice(tt.items), testCompany(t.TempDir()))
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if n := pdf.PageCount(); n < tt.minPages || n > tt.maxPages {
				t.Errorf("pages = %d, want %d..%d", n, tt.minPages, tt.maxPages)
			}
		})
	}
}

func TestLongDescriptionIsClipped(t *testing.T) {
	inv := testInvoice(1)
	inv.LineItems[0].Description = strings.Repeat("a very long description ", 2000)

	pdf, err := New().build(context.Background(), inv, testCompany(t.TempDir()))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if n := pdf.PageCount(); n > 2 {
		t.Errorf("pages = %d, want the row kept on one page", n)
	}

	p := gofpdf.New("P", "mm", "A4", "")
	p.SetFont("Helvetica", "", 9)
	d := &document{pdf: p, tr: p.UnicodeTranslatorFromDescriptor("")}
	w := columns[1].width

	lines := d.clip(p.SplitLines([]byte(inv.LineItems[0].Description), w), w)
	if len(lines) != maxDescLines {
		t.Fatalf("lines = %d, want %d", len(lines), maxDescLines)
	}
	last := string(lines[len(lines)-1])
	if !strings.HasSuffix(last, "...") {
		t.Errorf("last line %q lacks an ellipsis", last)
	}
	if p.GetStringWidth(last) > w-2 {
		t.Errorf("last line %q is wider than the column", last)
	}

	short := p.SplitLines([]byte("Widget"), w)
	if got := d.clip(short, w); len(got) != 1 || string(got[0]) != "Widget" {
		t.Errorf("short description changed: %q", got)
	}
}

func TestRenderToDeterministic(t *testing.T) {
	inv := testInvoice(4)
	co := testCompany(t.TempDir())

	var a, b bytes.Buffer
	if err := New().RenderTo(context.Background(), &a, inv, co); err != nil {
		t.Fatal(err)
	}
	if err := New().RenderTo(context.Background(), &b, inv, co); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("same invoice rendered to different bytes")
	}
}

func TestTotalRows(t *testing.T) {
	tests := []struct {
		name   string
		rate   string
		disc   string
		labels []string
	}{
		{"plain", "0", "0", []string{"Subtotal:"}},
		{"tax only", "10", "0", []string{"Subtotal:", "Tax (10%):"}},
		{"discount only", "0", "1", []string{"Subtotal:", "Discount:"}},
		{"both", "7.5", "1", []string{"Subtotal:", "Tax (7.5%):", "Discount:"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := invoice.ComputeTotals(currency.USD, decimal.RequireFromString("25.50"),
				decimal.RequireFromString(tt.rate), decimal.RequireFromString(tt.disc))
			rows := totalRows(totals)
			if len(rows) != len(tt.labels) {
				t.Fatalf("got %d rows, want %d", len(rows), len(tt.labels))
			}
			for i, row := range rows {
				if row.label != tt.labels[i] {
					t.Errorf("row %d label = %q, want %q", i, row.label, tt.labels[i])
				}
			}
			if tt.disc != "0" && rows[len(rows)-1].value != "- $1.00" {
				t.Errorf("discount value = %q", rows[len(rows)-1].value)
			}
		})
	}
}
