// Package audithook bridges invoicer lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import any
// audit backend directly. Callers inject a RecorderFunc adapter at wiring
// time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/invoicer/invoice"
	"github.com/xraph/invoicer/plugin"
	"github.com/xraph/invoicer/record"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                 = (*Extension)(nil)
	_ plugin.OnOrderNumberAllocated = (*Extension)(nil)
	_ plugin.OnInvoiceRendered      = (*Extension)(nil)
	_ plugin.OnInvoiceCreated       = (*Extension)(nil)
	_ plugin.OnInvoicePreviewed     = (*Extension)(nil)
	_ plugin.OnRenderFailed         = (*Extension)(nil)
	_ plugin.OnRecordFailed         = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a backend-neutral audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges invoicer lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Invoice pipeline hooks
// ──────────────────────────────────────────────────

// OnOrderNumberAllocated implements plugin.OnOrderNumberAllocated.
func (e *Extension) OnOrderNumberAllocated(ctx context.Context, orderNumber string) error {
	return e.record(ctx, ActionOrderNumberAllocated, SeverityInfo, OutcomeSuccess,
		ResourceOrderNumber, orderNumber, CategorySequence, nil,
		"order_number", orderNumber,
	)
}

// OnInvoiceRendered implements plugin.OnInvoiceRendered.
func (e *Extension) OnInvoiceRendered(ctx context.Context, orderNumber, path string) error {
	return e.record(ctx, ActionInvoiceRendered, SeverityInfo, OutcomeSuccess,
		ResourceDocument, orderNumber, CategoryDocument, nil,
		"path", path,
	)
}

// OnInvoiceCreated implements plugin.OnInvoiceCreated.
func (e *Extension) OnInvoiceCreated(ctx context.Context, rec *record.Record) error {
	return e.record(ctx, ActionInvoiceCreated, SeverityInfo, OutcomeSuccess,
		ResourceInvoice, rec.OrderNumber, CategoryBilling, nil,
		"record_id", rec.ID.String(),
		"billing_name", rec.BillingName,
		"currency", string(rec.Currency),
		"total", rec.Total.StringFixed(2),
		"path", rec.FilePath,
	)
}

// OnInvoicePreviewed implements plugin.OnInvoicePreviewed.
func (e *Extension) OnInvoicePreviewed(ctx context.Context, inv *invoice.Invoice) error {
	return e.record(ctx, ActionInvoicePreviewed, SeverityInfo, OutcomeSuccess,
		ResourceDocument, inv.OrderNumber, CategoryDocument, nil,
		"billing_name", inv.Billing.Name,
		"line_items", len(inv.LineItems),
	)
}

// ──────────────────────────────────────────────────
// Failure hooks
// ──────────────────────────────────────────────────

// OnRenderFailed implements plugin.OnRenderFailed. The order number is
// spent, so the gap it leaves is recorded.
func (e *Extension) OnRenderFailed(ctx context.Context, orderNumber string, err error) error {
	return e.record(ctx, ActionRenderFailed, SeverityError, OutcomeFailure,
		ResourceOrderNumber, orderNumber, CategorySequence, err,
		"order_number", orderNumber,
	)
}

// OnRecordFailed implements plugin.OnRecordFailed.
func (e *Extension) OnRecordFailed(ctx context.Context, orderNumber, path string, err error) error {
	return e.record(ctx, ActionRecordFailed, SeverityCritical, OutcomePartial,
		ResourceInvoice, orderNumber, CategoryBilling, err,
		"path", path,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
