package extension

import (
	"github.com/xraph/invoicer"
	"github.com/xraph/invoicer/plugin"
	"github.com/xraph/invoicer/store"
)

// Option configures the invoicer Forge extension.
type Option func(*Extension)

// WithStore sets the store for the invoicer engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithInvoicerOption passes an invoicer.Option through to the underlying engine.
func WithInvoicerOption(opt invoicer.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithPlugin registers an invoicer plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, invoicer.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithOutputDir overrides the output folder from the company settings.
func WithOutputDir(dir string) Option {
	return func(e *Extension) { e.config.OutputDir = dir }
}

// WithPageSize sets the page size used when iterating invoices.
func WithPageSize(n int) Option {
	return func(e *Extension) { e.config.PageSize = n }
}

// WithMetrics registers the Prometheus-backed metrics plugin.
func WithMetrics() Option {
	return func(e *Extension) { e.config.EnableMetrics = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithGroveDatabase sets the name of the grove.DB to resolve from the DI container.
// The extension will auto-construct the appropriate store backend (postgres/sqlite/mongo)
// based on the grove driver type. Pass an empty string to use the default (unnamed) grove.DB.
func WithGroveDatabase(name string) Option {
	return func(e *Extension) {
		e.config.GroveDatabase = name
		e.useGrove = true
	}
}
