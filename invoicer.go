package invoicer

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/xraph/invoicer/currency"
	"github.com/xraph/invoicer/id"
	"github.com/xraph/invoicer/invoice"
	"github.com/xraph/invoicer/plugin"
	"github.com/xraph/invoicer/record"
	"github.com/xraph/invoicer/render"
	"github.com/xraph/invoicer/settings"
	"github.com/xraph/invoicer/store"
	"github.com/xraph/invoicer/types"
)

// DefaultPageSize is the batch size Invoices reads from the store.
const DefaultPageSize = 100

// Invoicer is the invoice engine. It validates input, allocates order
// numbers, renders documents and records what it issued.
type Invoicer struct {
	store     store.Store
	allocator *Allocator
	renderer  *render.Renderer
	plugins   *plugin.Registry
	logger    *slog.Logger
	clock     func() time.Time

	// Configuration
	outputDir string
	pageSize  int
}

// New creates a new Invoicer over s.
func New(s store.Store, opts ...Option) *Invoicer {
	i := &Invoicer{
		store:     s,
		allocator: NewAllocator(s),
		plugins:   plugin.NewRegistry(),
		logger:    slog.Default(),
		clock:     time.Now,
		pageSize:  DefaultPageSize,
	}

	for _, opt := range opts {
		opt(i)
	}

	if i.renderer == nil {
		i.renderer = render.New(render.WithLogger(i.logger))
	}
	return i
}

// Option configures an Invoicer instance.
type Option func(*Invoicer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Invoicer) {
		i.logger = logger
		i.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(i *Invoicer) {
		_ = i.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithClock replaces time.Now as the source of the default issue date.
func WithClock(clock func() time.Time) Option {
	return func(i *Invoicer) {
		i.clock = clock
	}
}

// WithRenderer replaces the default renderer.
func WithRenderer(r *render.Renderer) Option {
	return func(i *Invoicer) {
		i.renderer = r
	}
}

// WithOutputDir overrides the output directory stored in the company
// settings.
func WithOutputDir(dir string) Option {
	return func(i *Invoicer) {
		i.outputDir = dir
	}
}

// WithPageSize sets how many records Invoices fetches per store call.
func WithPageSize(n int) Option {
	return func(i *Invoicer) {
		if n > 0 {
			i.pageSize = n
		}
	}
}

// Start migrates the store and initializes plugins.
func (i *Invoicer) Start(ctx context.Context) error {
	if err := i.store.Migrate(ctx); err != nil {
		return &PersistenceError{Op: "migrate", Err: err}
	}

	i.plugins.EmitInit(ctx, i)

	i.logger.Info("invoicer started",
		"plugins", i.plugins.Count(),
	)
	return nil
}

// Stop notifies plugins and closes the store.
func (i *Invoicer) Stop() error {
	i.plugins.EmitShutdown(context.Background())
	return i.store.Close()
}

// Store returns the underlying store.
func (i *Invoicer) Store() store.Store { return i.store }

// Plugins returns the plugin registry.
func (i *Invoicer) Plugins() *plugin.Registry { return i.plugins }

// ──────────────────────────────────────────────────
// Invoice creation
// ──────────────────────────────────────────────────

// Result describes an issued invoice.
type Result struct {
	OrderNumber string         `json:"order_number"`
	FilePath    string         `json:"file_path"`
	Totals      invoice.Totals `json:"totals"`
	Record      *record.Record `json:"record"`
}

// CreateInvoice validates in, allocates the next order number for its issue
// date, renders the document and stores its record.
//
// A ValidationError means nothing happened. A RenderError means the order
// number was spent but no file or record exists. An UnrecordedFileError
// means the file exists at its Path without a record.
func (i *Invoicer) CreateInvoice(ctx context.Context, in invoice.Input) (*Result, error) {
	company, err := i.company(ctx)
	if err != nil {
		return nil, err
	}

	in = i.normalize(in, company)
	if err := ValidateInput(in); err != nil {
		return nil, firstViolation(err)
	}

	orderNumber, err := i.allocator.Next(ctx, in.Date)
	if err != nil {
		return nil, err
	}
	i.plugins.EmitOrderNumberAllocated(ctx, orderNumber)

	inv := invoice.New(in, orderNumber)

	path, err := i.renderer.Render(ctx, inv, *company)
	if err != nil {
		i.logger.Error("invoice render failed",
			"order_number", orderNumber,
			"error", err,
		)
		i.plugins.EmitRenderFailed(ctx, orderNumber, err)
		return nil, &RenderError{OrderNumber: orderNumber, Err: err}
	}
	inv.FilePath = path
	i.plugins.EmitInvoiceRendered(ctx, orderNumber, path)

	rec := record.FromInvoice(inv)
	if err := i.store.InsertRecord(ctx, rec); err != nil {
		i.logger.Error("invoice rendered but not recorded",
			"order_number", orderNumber,
			"path", path,
			"error", err,
		)
		i.plugins.EmitRecordFailed(ctx, orderNumber, path, err)
		return nil, &UnrecordedFileError{OrderNumber: orderNumber, Path: path, Err: err}
	}

	i.plugins.EmitInvoiceCreated(ctx, rec)

	i.logger.Info("invoice created",
		"order_number", orderNumber,
		"path", path,
		"total", rec.TotalMoney().String(),
	)

	return &Result{
		OrderNumber: orderNumber,
		FilePath:    path,
		Totals:      inv.Totals,
		Record:      rec,
	}, nil
}

// Preview is a rendered draft. It carries no order number and was not
// recorded.
type Preview struct {
	ID       id.ID            `json:"id"`
	FilePath string           `json:"file_path,omitempty"`
	Invoice  *invoice.Invoice `json:"invoice"`
}

// Preview renders in to <output dir>/PREVIEW.pdf without allocating an
// order number or storing a record. Each call replaces the previous preview.
func (i *Invoicer) Preview(ctx context.Context, in invoice.Input) (*Preview, error) {
	inv, company, err := i.draft(ctx, in)
	if err != nil {
		return nil, err
	}

	path, err := i.renderer.Render(ctx, inv, *company)
	if err != nil {
		return nil, &RenderError{OrderNumber: inv.OrderNumber, Err: err}
	}
	inv.FilePath = path
	i.plugins.EmitInvoicePreviewed(ctx, inv)

	i.logger.Debug("invoice previewed", "path", path)

	return &Preview{ID: id.NewPreviewID(), FilePath: path, Invoice: inv}, nil
}

// PreviewTo is like Preview but writes the document to w.
func (i *Invoicer) PreviewTo(ctx context.Context, w io.Writer, in invoice.Input) (*Preview, error) {
	inv, company, err := i.draft(ctx, in)
	if err != nil {
		return nil, err
	}

	if err := i.renderer.RenderTo(ctx, w, inv, *company); err != nil {
		return nil, &RenderError{OrderNumber: inv.OrderNumber, Err: err}
	}
	i.plugins.EmitInvoicePreviewed(ctx, inv)

	return &Preview{ID: id.NewPreviewID(), Invoice: inv}, nil
}

func (i *Invoicer) draft(ctx context.Context, in invoice.Input) (*invoice.Invoice, *settings.Company, error) {
	company, err := i.company(ctx)
	if err != nil {
		return nil, nil, err
	}

	in = i.normalize(in, company)
	if err := ValidateInput(in); err != nil {
		return nil, nil, firstViolation(err)
	}
	return invoice.New(in, invoice.PreviewOrderNumber), company, nil
}

// normalize fills the defaults an input may leave out.
func (i *Invoicer) normalize(in invoice.Input, company *settings.Company) invoice.Input {
	if in.Date.IsZero() {
		in.Date = i.clock()
	}
	in.Date = invoice.Day(in.Date)

	if in.Currency == "" {
		in.Currency = company.DefaultCurrency
	}
	in.Billing.Name = strings.TrimSpace(in.Billing.Name)
	in.Billing.Address = strings.TrimSpace(in.Billing.Address)
	in.Billing.Phone = strings.TrimSpace(in.Billing.Phone)
	return in
}

// company loads the stored settings, applying the output directory
// override.
func (i *Invoicer) company(ctx context.Context) (*settings.Company, error) {
	c, err := i.store.GetSettings(ctx)
	if err != nil {
		if errors.Is(err, ErrSettingsNotFound) {
			return nil, ErrSettingsNotFound
		}
		return nil, &PersistenceError{Op: "load settings", Err: err}
	}
	if i.outputDir != "" {
		c.OutputDir = i.outputDir
	}
	return c, nil
}

// ──────────────────────────────────────────────────
// Order numbers
// ──────────────────────────────────────────────────

// PeekOrderNumber returns the order number the next invoice issued on day
// would receive. Nothing is consumed.
func (i *Invoicer) PeekOrderNumber(ctx context.Context, day time.Time) (string, error) {
	if day.IsZero() {
		day = i.clock()
	}
	return i.allocator.Peek(ctx, invoice.Day(day))
}

// NextOrderNumber allocates an order number outside of CreateInvoice. The
// number is spent whether or not it is ever used.
func (i *Invoicer) NextOrderNumber(ctx context.Context, day time.Time) (string, error) {
	if day.IsZero() {
		day = i.clock()
	}
	n, err := i.allocator.Next(ctx, invoice.Day(day))
	if err != nil {
		return "", err
	}
	i.plugins.EmitOrderNumberAllocated(ctx, n)
	return n, nil
}

// ──────────────────────────────────────────────────
// Records
// ──────────────────────────────────────────────────

// GetInvoice returns the record stored for orderNumber.
func (i *Invoicer) GetInvoice(ctx context.Context, orderNumber string) (*record.Record, error) {
	return i.store.GetRecord(ctx, strings.TrimSpace(orderNumber))
}

// ListInvoices returns one page of records.
func (i *Invoicer) ListInvoices(ctx context.Context, opts record.ListOpts) ([]*record.Record, error) {
	return i.store.ListRecords(ctx, opts)
}

// CountInvoices counts the records matching the date range of opts.
func (i *Invoicer) CountInvoices(ctx context.Context, opts record.ListOpts) (int64, error) {
	return i.store.CountRecords(ctx, opts)
}

// Invoices iterates over the records matching opts, fetching them from the
// store in pages. opts.Offset and opts.Limit bound the whole iteration.
// Iteration stops at the first store error, which is yielded once.
func (i *Invoicer) Invoices(ctx context.Context, opts record.ListOpts) iter.Seq2[*record.Record, error] {
	return func(yield func(*record.Record, error) bool) {
		remaining := opts.Limit
		page := opts
		page.Offset = max(page.Offset, 0)
		for {
			page.Limit = i.pageSize
			if remaining > 0 && remaining < page.Limit {
				page.Limit = remaining
			}

			recs, err := i.store.ListRecords(ctx, page)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, r := range recs {
				if !yield(r, nil) {
					return
				}
			}

			if remaining > 0 {
				remaining -= len(recs)
				if remaining <= 0 {
					return
				}
			}
			if len(recs) < page.Limit {
				return
			}
			page.Offset += len(recs)
		}
	}
}

// ──────────────────────────────────────────────────
// Settings
// ──────────────────────────────────────────────────

// SaveSettings validates and stores the company profile.
func (i *Invoicer) SaveSettings(ctx context.Context, c *settings.Company) error {
	if err := validateCompany(c); err != nil {
		return err
	}
	if c.ID.IsNil() {
		c.ID = id.NewSettingsID()
	}
	if c.CreatedAt.IsZero() {
		c.Entity = types.NewEntity()
	} else {
		c.Touch()
	}

	if err := i.store.SaveSettings(ctx, c); err != nil {
		return &PersistenceError{Op: "save settings", Err: err}
	}

	i.logger.Info("company settings saved",
		"company", c.Name,
		"default_currency", c.DefaultCurrency,
		"output_dir", c.OutputDir,
	)
	return nil
}

// Settings returns the stored company profile.
func (i *Invoicer) Settings(ctx context.Context) (*settings.Company, error) {
	return i.store.GetSettings(ctx)
}

// IsFirstRun reports whether no company profile has been saved yet.
func (i *Invoicer) IsFirstRun(ctx context.Context) (bool, error) {
	_, err := i.store.GetSettings(ctx)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, ErrSettingsNotFound):
		return true, nil
	default:
		return false, err
	}
}

func validateCompany(c *settings.Company) error {
	c.Name = strings.TrimSpace(c.Name)
	c.OutputDir = strings.TrimSpace(c.OutputDir)

	switch {
	case c.Name == "":
		return ValidationError{Field: "company_name", Reason: "is required"}
	case c.OutputDir == "":
		return ValidationError{Field: "output_folder", Reason: "is required"}
	case !c.DefaultCurrency.Valid():
		return ValidationError{Field: "default_currency", Reason: "unsupported currency " + string(c.DefaultCurrency)}
	}
	if c.Phone != "" {
		if reason := checkPhone(strings.TrimSpace(c.Phone)); reason != "" {
			return ValidationError{Field: "company_phone", Reason: reason}
		}
	}
	return nil
}

// Currencies lists the currencies an invoice can be issued in.
func Currencies() []currency.Code {
	return currency.Codes()
}
