// Package storetest is a conformance suite run against every store backend.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/invoicer"
	"github.com/xraph/invoicer/currency"
	"github.com/xraph/invoicer/id"
	"github.com/xraph/invoicer/record"
	"github.com/xraph/invoicer/sequence"
	"github.com/xraph/invoicer/settings"
	"github.com/xraph/invoicer/store"
	"github.com/xraph/invoicer/types"
)

// Factory returns a fresh, migrated store. The suite closes it.
type Factory func(t *testing.T) store.Store

// Run executes the whole suite.
func Run(t *testing.T, newStore Factory) {
	t.Run("Sequence", func(t *testing.T) { testSequence(t, newStore(t)) })
	t.Run("SequenceNeverDecreases", func(t *testing.T) { testSequenceNeverDecreases(t, newStore(t)) })
	t.Run("SequenceConcurrentWrites", func(t *testing.T) { testSequenceConcurrent(t, newStore(t)) })
	t.Run("RecordInsertGet", func(t *testing.T) { testRecordInsertGet(t, newStore(t)) })
	t.Run("RecordDuplicate", func(t *testing.T) { testRecordDuplicate(t, newStore(t)) })
	t.Run("RecordListOrdering", func(t *testing.T) { testRecordListOrdering(t, newStore(t)) })
	t.Run("RecordListRangeAndPaging", func(t *testing.T) { testRecordListRange(t, newStore(t)) })
	t.Run("RecordListNonPositivePaging", func(t *testing.T) { testRecordListNonPositivePaging(t, newStore(t)) })
	t.Run("Settings", func(t *testing.T) { testSettings(t, newStore(t)) })
}

func testSequence(t *testing.T, s store.Store) {
	defer s.Close()
	ctx := context.Background()

	v, err := s.LastValue(ctx, "20251118")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v, "unknown key starts at zero")

	require.NoError(t, s.SetLastValue(ctx, "20251118", 1))
	require.NoError(t, s.SetLastValue(ctx, "20251118", 2))
	require.NoError(t, s.SetLastValue(ctx, "20251119", 1))

	v, err = s.LastValue(ctx, "20251118")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	v, err = s.LastValue(ctx, "20251119")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func testSequenceNeverDecreases(t *testing.T, s store.Store) {
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.SetLastValue(ctx, "20251118", 7))
	require.NoError(t, s.SetLastValue(ctx, "20251118", 3))

	v, err := s.LastValue(ctx, "20251118")
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)
}

func testSequenceConcurrent(t *testing.T, s store.Store) {
	defer s.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := int64(1); i <= 20; i++ {
		wg.Add(1)
		go func(v int64) {
			defer wg.Done()
			assert.NoError(t, s.SetLastValue(ctx, "20251120", v))
		}(i)
	}
	wg.Wait()

	v, err := s.LastValue(ctx, "20251120")
	require.NoError(t, err)
	assert.Equal(t, int64(20), v, "highest write wins")
}

// NewRecord builds a record for tests.
func NewRecord(orderNumber, name string, day time.Time) *record.Record {
	return &record.Record{
		Entity:         types.NewEntity(),
		ID:             id.NewInvoiceID(),
		OrderNumber:    orderNumber,
		InvoiceDate:    day,
		BillingName:    name,
		BillingAddress: "1 Main St\nSpringfield",
		BillingPhone:   "+1 555 0100",
		Currency:       currency.USD,
		Subtotal:       decimal.RequireFromString("25.50"),
		TaxRate:        decimal.RequireFromString("10"),
		TaxAmount:      decimal.RequireFromString("2.45"),
		DiscountAmount: decimal.RequireFromString("1.00"),
		Total:          decimal.RequireFromString("26.95"),
		FilePath:       "/invoices/" + orderNumber + ".pdf",
	}
}

func day(d int) time.Time { return time.Date(2025, 11, d, 0, 0, 0, 0, time.UTC) }

func testRecordInsertGet(t *testing.T, s store.Store) {
	defer s.Close()
	ctx := context.Background()

	r := NewRecord("INV-20251118-00001", "Acme", day(18))
	require.NoError(t, s.InsertRecord(ctx, r))

	got, err := s.GetRecord(ctx, "INV-20251118-00001")
	require.NoError(t, err)
	assert.Equal(t, r.ID.String(), got.ID.String())
	assert.Equal(t, r.OrderNumber, got.OrderNumber)
	assert.True(t, r.InvoiceDate.Equal(got.InvoiceDate), "invoice date %s != %s", r.InvoiceDate, got.InvoiceDate)
	assert.Equal(t, r.BillingName, got.BillingName)
	assert.Equal(t, r.BillingAddress, got.BillingAddress)
	assert.Equal(t, r.BillingPhone, got.BillingPhone)
	assert.Equal(t, r.Currency, got.Currency)
	assert.True(t, r.Subtotal.Equal(got.Subtotal))
	assert.True(t, r.TaxRate.Equal(got.TaxRate))
	assert.True(t, r.TaxAmount.Equal(got.TaxAmount))
	assert.True(t, r.DiscountAmount.Equal(got.DiscountAmount))
	assert.True(t, r.Total.Equal(got.Total))
	assert.Equal(t, r.FilePath, got.FilePath)

	_, err = s.GetRecord(ctx, "INV-20251118-00099")
	assert.ErrorIs(t, err, invoicer.ErrNotFound)
}

func testRecordDuplicate(t *testing.T, s store.Store) {
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.InsertRecord(ctx, NewRecord("INV-20251118-00001", "Acme", day(18))))
	err := s.InsertRecord(ctx, NewRecord("INV-20251118-00001", "Other", day(18)))
	assert.ErrorIs(t, err, invoicer.ErrDuplicateOrderNumber)

	n, err := s.CountRecords(ctx, record.ListOpts{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func orderNumbers(rs []*record.Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.OrderNumber
	}
	return out
}

func testRecordListOrdering(t *testing.T, s store.Store) {
	defer s.Close()
	ctx := context.Background()

	// Inserted out of order; two share a date and two share a name.
	seed := []*record.Record{
		NewRecord("INV-20251119-00001", "Zeta", day(19)),
		NewRecord("INV-20251118-00002", "Alpha", day(18)),
		NewRecord("INV-20251118-00001", "Mid", day(18)),
		NewRecord("INV-20251120-00001", "Alpha", day(20)),
	}
	for _, r := range seed {
		require.NoError(t, s.InsertRecord(ctx, r))
	}

	tests := []struct {
		sort record.SortKey
		want []string
	}{
		{record.SortByDate, []string{
			"INV-20251120-00001", "INV-20251119-00001", "INV-20251118-00002", "INV-20251118-00001",
		}},
		{record.SortByOrderNumber, []string{
			"INV-20251118-00001", "INV-20251118-00002", "INV-20251119-00001", "INV-20251120-00001",
		}},
		{record.SortByBillingName, []string{
			"INV-20251118-00002", "INV-20251120-00001", "INV-20251118-00001", "INV-20251119-00001",
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			got, err := s.ListRecords(ctx, record.ListOpts{Sort: tt.sort})
			require.NoError(t, err)
			assert.Equal(t, tt.want, orderNumbers(got))
		})
	}
}

func testRecordListRange(t *testing.T, s store.Store) {
	defer s.Close()
	ctx := context.Background()

	for d := 10; d <= 19; d++ {
		on := sequence.FormatOrderNumber(sequence.Key(day(d)), 1)
		require.NoError(t, s.InsertRecord(ctx, NewRecord(on, fmt.Sprintf("Customer %02d", d), day(d))))
	}

	opts := record.ListOpts{Sort: record.SortByOrderNumber, Start: day(12), End: day(15)}
	got, err := s.ListRecords(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"INV-20251112-00001", "INV-20251113-00001", "INV-20251114-00001", "INV-20251115-00001",
	}, orderNumbers(got))

	n, err := s.CountRecords(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	page, err := s.ListRecords(ctx, record.ListOpts{Sort: record.SortByOrderNumber, Limit: 3, Offset: 8})
	require.NoError(t, err)
	assert.Equal(t, []string{"INV-20251118-00001", "INV-20251119-00001"}, orderNumbers(page))
}

func testRecordListNonPositivePaging(t *testing.T, s store.Store) {
	defer s.Close()
	ctx := context.Background()

	for d := 10; d <= 12; d++ {
		on := sequence.FormatOrderNumber(sequence.Key(day(d)), 1)
		require.NoError(t, s.InsertRecord(ctx, NewRecord(on, "Customer", day(d))))
	}

	all := []string{"INV-20251110-00001", "INV-20251111-00001", "INV-20251112-00001"}
	tests := []struct {
		name   string
		limit  int
		offset int
		want   []string
	}{
		{"negative offset", 0, -1, all},
		{"negative limit", -5, 0, all},
		{"both negative", -1, -1, all},
		{"negative limit with offset", -1, 2, all[2:]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListRecords(ctx, record.ListOpts{
				Sort:   record.SortByOrderNumber,
				Limit:  tt.limit,
				Offset: tt.offset,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, orderNumbers(got))
		})
	}
}

func testSettings(t *testing.T, s store.Store) {
	defer s.Close()
	ctx := context.Background()

	_, err := s.GetSettings(ctx)
	assert.ErrorIs(t, err, invoicer.ErrSettingsNotFound)

	c := &settings.Company{
		Entity:          types.NewEntity(),
		ID:              id.NewSettingsID(),
		Name:            "Acme Corp",
		Address:         "1 Main St",
		Phone:           "+1 555 0100",
		DefaultCurrency: currency.LKR,
		OutputDir:       "/tmp/invoices",
	}
	require.NoError(t, s.SaveSettings(ctx, c))

	c2 := *c
	c2.Name = "Acme Holdings"
	c2.LogoPath = "/tmp/logo.png"
	require.NoError(t, s.SaveSettings(ctx, &c2))

	got, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Acme Holdings", got.Name)
	assert.Equal(t, "/tmp/logo.png", got.LogoPath)
	assert.Equal(t, currency.LKR, got.DefaultCurrency)
	assert.Equal(t, "/tmp/invoices", got.OutputDir)
}
