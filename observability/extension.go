// Package observability provides a metrics plugin for the invoicer that
// records lifecycle event counts through a MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/invoicer/invoice"
	"github.com/xraph/invoicer/plugin"
	"github.com/xraph/invoicer/record"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                 = (*MetricsExtension)(nil)
	_ plugin.OnInit                 = (*MetricsExtension)(nil)
	_ plugin.OnOrderNumberAllocated = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceRendered      = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceCreated       = (*MetricsExtension)(nil)
	_ plugin.OnInvoicePreviewed     = (*MetricsExtension)(nil)
	_ plugin.OnRenderFailed         = (*MetricsExtension)(nil)
	_ plugin.OnRecordFailed         = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records invoice lifecycle metrics.
// Register it as an invoicer plugin to track issuance automatically.
type MetricsExtension struct {
	factory MetricFactory

	// Sequence metrics
	OrderNumbersAllocated Counter

	// Invoice metrics
	InvoicesRendered  Counter
	InvoicesCreated   Counter
	InvoicesPreviewed Counter
	InvoiceTotal      Histogram
	InvoiceLineItems  Histogram

	// Error metrics
	RenderFailures Counter
	RecordFailures Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions, or NewPrometheusFactory standalone.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		OrderNumbersAllocated: factory.Counter("invoicer.order_number.allocated"),

		InvoicesRendered:  factory.Counter("invoicer.invoice.rendered"),
		InvoicesCreated:   factory.Counter("invoicer.invoice.created"),
		InvoicesPreviewed: factory.Counter("invoicer.invoice.previewed"),
		InvoiceTotal:      factory.Histogram("invoicer.invoice.total_amount"),
		InvoiceLineItems:  factory.Histogram("invoicer.invoice.line_items"),

		RenderFailures: factory.Counter("invoicer.render.failures"),
		RecordFailures: factory.Counter("invoicer.record.failures"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ any) error {
	return nil
}

// ──────────────────────────────────────────────────
// Invoice pipeline hooks
// ──────────────────────────────────────────────────

// OnOrderNumberAllocated implements plugin.OnOrderNumberAllocated.
func (m *MetricsExtension) OnOrderNumberAllocated(_ context.Context, _ string) error {
	m.OrderNumbersAllocated.Inc()
	return nil
}

// OnInvoiceRendered implements plugin.OnInvoiceRendered.
func (m *MetricsExtension) OnInvoiceRendered(_ context.Context, _, _ string) error {
	m.InvoicesRendered.Inc()
	return nil
}

// OnInvoiceCreated implements plugin.OnInvoiceCreated.
func (m *MetricsExtension) OnInvoiceCreated(_ context.Context, rec *record.Record) error {
	m.InvoicesCreated.Inc()
	total, _ := rec.Total.Float64()
	m.InvoiceTotal.Observe(total)
	return nil
}

// OnInvoicePreviewed implements plugin.OnInvoicePreviewed.
func (m *MetricsExtension) OnInvoicePreviewed(_ context.Context, inv *invoice.Invoice) error {
	m.InvoicesPreviewed.Inc()
	m.InvoiceLineItems.Observe(float64(len(inv.LineItems)))
	return nil
}

// ──────────────────────────────────────────────────
// Failure hooks
// ──────────────────────────────────────────────────

// OnRenderFailed implements plugin.OnRenderFailed.
func (m *MetricsExtension) OnRenderFailed(_ context.Context, _ string, _ error) error {
	m.RenderFailures.Inc()
	return nil
}

// OnRecordFailed implements plugin.OnRecordFailed.
func (m *MetricsExtension) OnRecordFailed(_ context.Context, _, _ string, _ error) error {
	m.RecordFailures.Inc()
	return nil
}
