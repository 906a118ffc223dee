package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/xraph/invoicer/invoice"
	"github.com/xraph/invoicer/record"
)

// DefaultTimeout bounds every hook call.
const DefaultTimeout = 5 * time.Second

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	// Type-cached plugin lists for efficient dispatch
	onInit                 []OnInit
	onShutdown             []OnShutdown
	onOrderNumberAllocated []OnOrderNumberAllocated
	onInvoiceRendered      []OnInvoiceRendered
	onInvoiceCreated       []OnInvoiceCreated
	onInvoicePreviewed     []OnInvoicePreviewed
	onRenderFailed         []OnRenderFailed
	onRecordFailed         []OnRecordFailed
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout overrides DefaultTimeout.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	r.timeout = d
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnOrderNumberAllocated); ok {
		r.onOrderNumberAllocated = append(r.onOrderNumberAllocated, v)
	}
	if v, ok := p.(OnInvoiceRendered); ok {
		r.onInvoiceRendered = append(r.onInvoiceRendered, v)
	}
	if v, ok := p.(OnInvoiceCreated); ok {
		r.onInvoiceCreated = append(r.onInvoiceCreated, v)
	}
	if v, ok := p.(OnInvoicePreviewed); ok {
		r.onInvoicePreviewed = append(r.onInvoicePreviewed, v)
	}
	if v, ok := p.(OnRenderFailed); ok {
		r.onRenderFailed = append(r.onRenderFailed, v)
	}
	if v, ok := p.(OnRecordFailed); ok {
		r.onRecordFailed = append(r.onRecordFailed, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", implementedInterfaces(p),
	)

	return nil
}

var hookTypes = []struct {
	iface reflect.Type
	name  string
}{
	{reflect.TypeFor[OnInit](), "OnInit"},
	{reflect.TypeFor[OnShutdown](), "OnShutdown"},
	{reflect.TypeFor[OnOrderNumberAllocated](), "OnOrderNumberAllocated"},
	{reflect.TypeFor[OnInvoiceRendered](), "OnInvoiceRendered"},
	{reflect.TypeFor[OnInvoiceCreated](), "OnInvoiceCreated"},
	{reflect.TypeFor[OnInvoicePreviewed](), "OnInvoicePreviewed"},
	{reflect.TypeFor[OnRenderFailed](), "OnRenderFailed"},
	{reflect.TypeFor[OnRecordFailed](), "OnRecordFailed"},
}

// implementedInterfaces returns the hooks implemented by the plugin.
func implementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)
	for _, h := range hookTypes {
		if v.Implements(h.iface) {
			interfaces = append(interfaces, h.name)
		}
	}
	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// emit runs call for every plugin in list, logging failures.
func emit[T Plugin](ctx context.Context, r *Registry, hook string, list func(*Registry) []T, call func(T) error) {
	r.mu.RLock()
	plugins := list(r)
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return call(p)
		}); err != nil {
			r.logger.Warn("plugin "+hook+" failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine any) {
	emit(ctx, r, "OnInit", func(r *Registry) []OnInit { return r.onInit },
		func(p OnInit) error { return p.OnInit(ctx, engine) })
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	emit(ctx, r, "OnShutdown", func(r *Registry) []OnShutdown { return r.onShutdown },
		func(p OnShutdown) error { return p.OnShutdown(ctx) })
}

// EmitOrderNumberAllocated emits an order number allocated event.
func (r *Registry) EmitOrderNumberAllocated(ctx context.Context, orderNumber string) {
	emit(ctx, r, "OnOrderNumberAllocated",
		func(r *Registry) []OnOrderNumberAllocated { return r.onOrderNumberAllocated },
		func(p OnOrderNumberAllocated) error { return p.OnOrderNumberAllocated(ctx, orderNumber) })
}

// EmitInvoiceRendered emits an invoice rendered event.
func (r *Registry) EmitInvoiceRendered(ctx context.Context, orderNumber, path string) {
	emit(ctx, r, "OnInvoiceRendered",
		func(r *Registry) []OnInvoiceRendered { return r.onInvoiceRendered },
		func(p OnInvoiceRendered) error { return p.OnInvoiceRendered(ctx, orderNumber, path) })
}

// EmitInvoiceCreated emits an invoice created event.
func (r *Registry) EmitInvoiceCreated(ctx context.Context, rec *record.Record) {
	emit(ctx, r, "OnInvoiceCreated",
		func(r *Registry) []OnInvoiceCreated { return r.onInvoiceCreated },
		func(p OnInvoiceCreated) error { return p.OnInvoiceCreated(ctx, rec) })
}

// EmitInvoicePreviewed emits an invoice previewed event.
func (r *Registry) EmitInvoicePreviewed(ctx context.Context, inv *invoice.Invoice) {
	emit(ctx, r, "OnInvoicePreviewed",
		func(r *Registry) []OnInvoicePreviewed { return r.onInvoicePreviewed },
		func(p OnInvoicePreviewed) error { return p.OnInvoicePreviewed(ctx, inv) })
}

// EmitRenderFailed emits a render failed event.
func (r *Registry) EmitRenderFailed(ctx context.Context, orderNumber string, cause error) {
	emit(ctx, r, "OnRenderFailed",
		func(r *Registry) []OnRenderFailed { return r.onRenderFailed },
		func(p OnRenderFailed) error { return p.OnRenderFailed(ctx, orderNumber, cause) })
}

// EmitRecordFailed emits a record failed event.
func (r *Registry) EmitRecordFailed(ctx context.Context, orderNumber, path string, cause error) {
	emit(ctx, r, "OnRecordFailed",
		func(r *Registry) []OnRecordFailed { return r.onRecordFailed },
		func(p OnRecordFailed) error { return p.OnRecordFailed(ctx, orderNumber, path, cause) })
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the invoice pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
