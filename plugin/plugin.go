// Package plugin provides an extensible plugin system for the invoicer.
// Plugins hook into invoice lifecycle events; they observe and never veto.
package plugin

import (
	"context"

	"github.com/xraph/invoicer/invoice"
	"github.com/xraph/invoicer/record"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the engine starts. engine is the *invoicer.Invoicer.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine any) error
}

// OnShutdown is called when the engine stops.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Invoice pipeline hooks
// ──────────────────────────────────────────────────

// OnOrderNumberAllocated is called after an order number has been persisted.
type OnOrderNumberAllocated interface {
	Plugin
	OnOrderNumberAllocated(ctx context.Context, orderNumber string) error
}

// OnInvoiceRendered is called once the PDF exists at path.
type OnInvoiceRendered interface {
	Plugin
	OnInvoiceRendered(ctx context.Context, orderNumber, path string) error
}

// OnInvoiceCreated is called after the summary record has been stored.
type OnInvoiceCreated interface {
	Plugin
	OnInvoiceCreated(ctx context.Context, rec *record.Record) error
}

// OnInvoicePreviewed is called after a preview has been rendered.
type OnInvoicePreviewed interface {
	Plugin
	OnInvoicePreviewed(ctx context.Context, inv *invoice.Invoice) error
}

// ──────────────────────────────────────────────────
// Failure hooks
// ──────────────────────────────────────────────────

// OnRenderFailed is called when the document could not be written. The
// order number stays consumed.
type OnRenderFailed interface {
	Plugin
	OnRenderFailed(ctx context.Context, orderNumber string, err error) error
}

// OnRecordFailed is called when the PDF was written but its record was not.
type OnRecordFailed interface {
	Plugin
	OnRecordFailed(ctx context.Context, orderNumber, path string, err error) error
}
