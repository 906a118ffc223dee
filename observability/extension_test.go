package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/xraph/invoicer/invoice"
	"github.com/xraph/invoicer/record"
)

func TestMetricsExtensionCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsExtension(NewPrometheusFactory(reg))
	ctx := context.Background()

	_ = m.OnOrderNumberAllocated(ctx, "INV-20251118-00001")
	_ = m.OnOrderNumberAllocated(ctx, "INV-20251118-00002")
	_ = m.OnInvoiceRendered(ctx, "INV-20251118-00001", "/tmp/a.pdf")
	_ = m.OnInvoiceCreated(ctx, &record.Record{Total: decimal.RequireFromString("22.00")})
	_ = m.OnInvoicePreviewed(ctx, &invoice.Invoice{LineItems: make([]invoice.LineItem, 3)})
	_ = m.OnRenderFailed(ctx, "INV-20251118-00002", errors.New("disk full"))
	_ = m.OnRecordFailed(ctx, "INV-20251118-00001", "/tmp/a.pdf", errors.New("locked"))

	tests := []struct {
		name string
		c    Counter
		want float64
	}{
		{"allocated", m.OrderNumbersAllocated, 2},
		{"rendered", m.InvoicesRendered, 1},
		{"created", m.InvoicesCreated, 1},
		{"previewed", m.InvoicesPreviewed, 1},
		{"render failures", m.RenderFailures, 1},
		{"record failures", m.RecordFailures, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testutil.ToFloat64(tt.c.(prometheus.Counter)); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if n := testutil.CollectAndCount(reg, "invoicer_invoice_total_amount"); n != 1 {
		t.Errorf("total histogram series = %d", n)
	}
}

func TestPrometheusFactoryReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	a := NewPrometheusFactory(reg).Counter("invoicer.invoice.created")
	b := NewPrometheusFactory(reg).Counter("invoicer.invoice.created")
	a.Inc()
	b.Inc()

	if got := testutil.ToFloat64(a.(prometheus.Counter)); got != 2 {
		t.Errorf("shared counter = %v, want 2", got)
	}
}
