package invoicer_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/invoicer"
	"github.com/xraph/invoicer/currency"
	"github.com/xraph/invoicer/invoice"
	"github.com/xraph/invoicer/record"
	"github.com/xraph/invoicer/settings"
	"github.com/xraph/invoicer/store"
	"github.com/xraph/invoicer/store/memory"
)

var issueDay = time.Date(2025, 11, 18, 0, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newEngine(t *testing.T, s store.Store, opts ...invoicer.Option) (*invoicer.Invoicer, string) {
	t.Helper()
	dir := t.TempDir()
	opts = append([]invoicer.Option{
		invoicer.WithLogger(quietLogger()),
		invoicer.WithClock(fixedClock(issueDay.Add(10 * time.Hour))),
	}, opts...)
	inv := invoicer.New(s, opts...)

	ctx := context.Background()
	require.NoError(t, inv.Start(ctx))
	require.NoError(t, inv.SaveSettings(ctx, &settings.Company{
		Name:            "Acme Corporation",
		Address:         "456 Business Avenue",
		Phone:           "+1-555-0123",
		DefaultCurrency: currency.USD,
		OutputDir:       dir,
	}))
	return inv, dir
}

func sampleInput() invoice.Input {
	return invoice.Input{
		Billing: invoice.Billing{Name: "Jane Customer", Address: "123 Customer Street", Phone: "+1-555-9999"},
		TaxRate: decimal.NewFromInt(10),
		Items: []invoice.ItemInput{
			{Description: "Widget", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("10.00")},
		},
	}
}

func TestCreateInvoice(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	inv, dir := newEngine(t, st)

	res, err := inv.CreateInvoice(ctx, sampleInput())
	require.NoError(t, err)

	assert.Equal(t, "INV-20251118-00001", res.OrderNumber)
	assert.Equal(t, filepath.Join(dir, "INV-20251118-00001.pdf"), res.FilePath)
	assert.True(t, res.Totals.Subtotal.Amount.Equal(decimal.RequireFromString("20.00")))
	assert.True(t, res.Totals.Tax.Amount.Equal(decimal.RequireFromString("2.00")))
	assert.True(t, res.Totals.Total.Amount.Equal(decimal.RequireFromString("22.00")))
	assert.Equal(t, currency.USD, res.Totals.Total.Currency, "currency defaults to the company's")

	_, err = os.Stat(res.FilePath)
	require.NoError(t, err)

	rec, err := inv.GetInvoice(ctx, res.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, "Jane Customer", rec.BillingName)
	assert.Equal(t, res.FilePath, rec.FilePath)
	assert.True(t, rec.InvoiceDate.Equal(issueDay))
	assert.True(t, rec.Total.Equal(decimal.RequireFromString("22.00")))
}

func TestOrderNumberSequence(t *testing.T) {
	ctx := context.Background()
	inv, _ := newEngine(t, memory.New())

	in := sampleInput()
	for i := 1; i <= 3; i++ {
		res, err := inv.CreateInvoice(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("INV-20251118-%05d", i), res.OrderNumber)
	}

	// A new issue date starts its own sequence.
	in.Date = time.Date(2025, 11, 19, 15, 0, 0, 0, time.UTC)
	res, err := inv.CreateInvoice(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "INV-20251119-00001", res.OrderNumber)

	next, err := inv.PeekOrderNumber(ctx, issueDay)
	require.NoError(t, err)
	assert.Equal(t, "INV-20251118-00004", next)
}

func TestConcurrentCreateIsUnique(t *testing.T) {
	ctx := context.Background()
	inv, _ := newEngine(t, memory.New())

	const n = 40
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = make(map[string]bool)
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := inv.CreateInvoice(ctx, sampleInput())
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			assert.False(t, numbers[res.OrderNumber], "duplicate %s", res.OrderNumber)
			numbers[res.OrderNumber] = true
		}()
	}
	wg.Wait()

	require.Len(t, numbers, n)
	for i := 1; i <= n; i++ {
		assert.True(t, numbers[fmt.Sprintf("INV-20251118-%05d", i)], "missing number %d", i)
	}

	count, err := inv.CountInvoices(ctx, record.ListOpts{})
	require.NoError(t, err)
	assert.Equal(t, int64(n), count)
}

func TestValidationHasNoSideEffects(t *testing.T) {
	ctx := context.Background()
	inv, dir := newEngine(t, memory.New())

	in := sampleInput()
	in.Items = nil

	_, err := inv.CreateInvoice(ctx, in)
	require.Error(t, err)
	assert.True(t, invoicer.IsValidation(err))
	assert.ErrorIs(t, err, invoicer.ErrInvalidInput)

	var ve invoicer.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "items", ve.Field)

	next, err := inv.PeekOrderNumber(ctx, issueDay)
	require.NoError(t, err)
	assert.Equal(t, "INV-20251118-00001", next, "no number consumed")

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestCreateWithoutSettings(t *testing.T) {
	inv := invoicer.New(memory.New(), invoicer.WithLogger(quietLogger()))
	require.NoError(t, inv.Start(context.Background()))

	first, err := inv.IsFirstRun(context.Background())
	require.NoError(t, err)
	assert.True(t, first)

	_, err = inv.CreateInvoice(context.Background(), sampleInput())
	assert.ErrorIs(t, err, invoicer.ErrSettingsNotFound)
}

func TestRenderFailureLeavesGap(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	good, _ := newEngine(t, st)

	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	bad := invoicer.New(st,
		invoicer.WithLogger(quietLogger()),
		invoicer.WithClock(fixedClock(issueDay)),
		invoicer.WithOutputDir(blocker),
	)

	_, err := bad.CreateInvoice(ctx, sampleInput())
	require.Error(t, err)

	var re *invoicer.RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "INV-20251118-00001", re.OrderNumber)

	_, err = good.GetInvoice(ctx, "INV-20251118-00001")
	assert.ErrorIs(t, err, invoicer.ErrInvoiceNotFound)

	res, err := good.CreateInvoice(ctx, sampleInput())
	require.NoError(t, err)
	assert.Equal(t, "INV-20251118-00002", res.OrderNumber, "spent number is not reissued")
}

func TestCorruptLogoIsRenderError(t *testing.T) {
	ctx := context.Background()
	inv, dir := newEngine(t, memory.New())

	co, err := inv.Settings(ctx)
	require.NoError(t, err)
	co.LogoPath = filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(co.LogoPath, []byte("not a png"), 0o644))
	require.NoError(t, inv.SaveSettings(ctx, co))

	_, err = inv.CreateInvoice(ctx, sampleInput())
	var re *invoicer.RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "INV-20251118-00001", re.OrderNumber)

	n, err := inv.CountInvoices(ctx, record.ListOpts{})
	require.NoError(t, err)
	assert.Zero(t, n, "no record for a failed render")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	next, err := inv.PeekOrderNumber(ctx, issueDay)
	require.NoError(t, err)
	assert.Equal(t, "INV-20251118-00002", next)
}

// failingInserts wraps a store and rejects every record insert.
type failingInserts struct {
	store.Store
}

func (failingInserts) InsertRecord(context.Context, *record.Record) error {
	return errors.New("disk full")
}

func TestUnrecordedFile(t *testing.T) {
	ctx := context.Background()
	inv, _ := newEngine(t, failingInserts{memory.New()})

	_, err := inv.CreateInvoice(ctx, sampleInput())
	require.Error(t, err)
	assert.True(t, invoicer.IsUnrecorded(err))

	var ue *invoicer.UnrecordedFileError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "INV-20251118-00001", ue.OrderNumber)

	_, statErr := os.Stat(ue.Path)
	assert.NoError(t, statErr, "rendered file stays on disk")
}

func TestPreviewLeavesNoState(t *testing.T) {
	ctx := context.Background()
	inv, dir := newEngine(t, memory.New())

	p, err := inv.Preview(ctx, sampleInput())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "PREVIEW.pdf"), p.FilePath)
	assert.True(t, p.Invoice.IsPreview())
	assert.True(t, p.Invoice.Totals.Total.Amount.Equal(decimal.RequireFromString("22.00")))

	next, err := inv.PeekOrderNumber(ctx, issueDay)
	require.NoError(t, err)
	assert.Equal(t, "INV-20251118-00001", next)

	count, err := inv.CountInvoices(ctx, record.ListOpts{})
	require.NoError(t, err)
	assert.Zero(t, count)

	var buf writerCounter
	_, err = inv.PreviewTo(ctx, &buf, sampleInput())
	require.NoError(t, err)
	assert.Positive(t, buf.n)
}

type writerCounter struct{ n int }

func (w *writerCounter) Write(p []byte) (int, error) {
	w.n += len(p)
	return len(p), nil
}

func TestInvoicesIterator(t *testing.T) {
	ctx := context.Background()
	inv, _ := newEngine(t, memory.New(), invoicer.WithPageSize(2))

	for range 5 {
		_, err := inv.CreateInvoice(ctx, sampleInput())
		require.NoError(t, err)
	}

	tests := []struct {
		name string
		opts record.ListOpts
		want []string
	}{
		{"all", record.ListOpts{Sort: record.SortByOrderNumber}, []string{"00001", "00002", "00003", "00004", "00005"}},
		{"limit", record.ListOpts{Sort: record.SortByOrderNumber, Limit: 3}, []string{"00001", "00002", "00003"}},
		{"offset and limit", record.ListOpts{Sort: record.SortByOrderNumber, Offset: 1, Limit: 3}, []string{"00002", "00003", "00004"}},
		{"past the end", record.ListOpts{Offset: 9}, nil},
		{"negative paging", record.ListOpts{Sort: record.SortByOrderNumber, Offset: -1, Limit: -1}, []string{"00001", "00002", "00003", "00004", "00005"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for r, err := range inv.Invoices(ctx, tt.opts) {
				require.NoError(t, err)
				got = append(got, r.OrderNumber[len(r.OrderNumber)-5:])
			}
			assert.Equal(t, tt.want, got)
		})
	}

	// Stopping early is allowed.
	for r, err := range inv.Invoices(ctx, record.ListOpts{}) {
		require.NoError(t, err)
		require.NotNil(t, r)
		break
	}
}

func TestSaveSettingsValidation(t *testing.T) {
	inv := invoicer.New(memory.New(), invoicer.WithLogger(quietLogger()))
	ctx := context.Background()

	tests := []struct {
		name  string
		c     settings.Company
		field string
	}{
		{"missing name", settings.Company{DefaultCurrency: currency.USD, OutputDir: "out"}, "company_name"},
		{"missing output dir", settings.Company{Name: "Acme", DefaultCurrency: currency.USD}, "output_folder"},
		{"bad currency", settings.Company{Name: "Acme", DefaultCurrency: "GBP", OutputDir: "out"}, "default_currency"},
		{"bad phone", settings.Company{Name: "Acme", DefaultCurrency: currency.EUR, OutputDir: "out", Phone: "call me"}, "company_phone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := inv.SaveSettings(ctx, &tt.c)
			var ve invoicer.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	c := &settings.Company{Name: " Acme ", DefaultCurrency: currency.LKR, OutputDir: "out"}
	require.NoError(t, inv.SaveSettings(ctx, c))
	got, err := inv.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
	assert.False(t, got.ID.IsNil())
}
