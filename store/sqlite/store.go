// Package sqlite implements store.Store on SQLite through the Grove ORM.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/driver"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/drivers/sqlitedriver/sqlitemigrate"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/invoicer"
	"github.com/xraph/invoicer/record"
	"github.com/xraph/invoicer/settings"
	"github.com/xraph/invoicer/store"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// Open opens the database file at path and wraps it in a Store. SQLite has a
// single writer, so the pool holds one connection and waits on a busy lock.
func Open(ctx context.Context, path string) (*Store, error) {
	sdb := sqlitedriver.New()
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)"
	if err := sdb.Open(ctx, dsn, driver.WithPoolSize(1)); err != nil {
		return nil, fmt.Errorf("invoicer/sqlite: open %s: %w", path, err)
	}
	db, err := grove.Open(sdb)
	if err != nil {
		_ = sdb.Close()
		return nil, fmt.Errorf("invoicer/sqlite: open %s: %w", path, err)
	}
	return New(db), nil
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	orch := migrate.NewOrchestrator(sqlitemigrate.New(s.sdb), Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("invoicer/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Sequence Store ====================

func (s *Store) LastValue(ctx context.Context, key string) (int64, error) {
	m := new(counterModel)
	err := s.sdb.NewSelect(m).
		Where("seq_key = ?", key).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return 0, nil
		}
		return 0, err
	}
	return m.LastValue, nil
}

// SetLastValue upserts the counter. The WHERE on the conflict branch keeps
// a stale writer from moving the value backwards.
func (s *Store) SetLastValue(ctx context.Context, key string, value int64) error {
	_, err := s.sdb.NewRaw(`
INSERT INTO invoicer_sequences (seq_key, last_value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (seq_key) DO UPDATE
SET last_value = excluded.last_value, updated_at = excluded.updated_at
WHERE excluded.last_value > invoicer_sequences.last_value`,
		key, value, now(),
	).Exec(ctx)
	return err
}

// ==================== Record Store ====================

func (s *Store) InsertRecord(ctx context.Context, r *record.Record) error {
	m := toRecordModel(r)
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return invoicer.ErrDuplicateOrderNumber
		}
		return err
	}
	return nil
}

func (s *Store) GetRecord(ctx context.Context, orderNumber string) (*record.Record, error) {
	m := new(recordModel)
	err := s.sdb.NewSelect(m).
		Where("order_number = ?", orderNumber).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, invoicer.ErrInvoiceNotFound
		}
		return nil, err
	}
	return fromRecordModel(m)
}

func (s *Store) ListRecords(ctx context.Context, opts record.ListOpts) ([]*record.Record, error) {
	var models []recordModel
	q := s.sdb.NewSelect(&models)
	q = whereRange(q, opts)
	q = q.OrderExpr(orderBy(opts.Sort))

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		// SQLite rejects OFFSET without LIMIT
		if opts.Limit <= 0 {
			q = q.Limit(math.MaxInt32)
		}
		q = q.Offset(opts.Offset)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*record.Record, 0, len(models))
	for i := range models {
		r, err := fromRecordModel(&models[i])
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, nil
}

func (s *Store) CountRecords(ctx context.Context, opts record.ListOpts) (int64, error) {
	q := s.sdb.NewSelect((*recordModel)(nil))
	return whereRange(q, opts).Count(ctx)
}

func whereRange(q *sqlitedriver.SelectQuery, opts record.ListOpts) *sqlitedriver.SelectQuery {
	if !opts.Start.IsZero() {
		q = q.Where("invoice_date >= ?", opts.Start.UTC())
	}
	if !opts.End.IsZero() {
		q = q.Where("invoice_date <= ?", opts.End.UTC())
	}
	return q
}

func orderBy(key record.SortKey) string {
	switch key {
	case record.SortByOrderNumber:
		return "order_number ASC, seq ASC"
	case record.SortByBillingName:
		return "billing_name ASC, seq ASC"
	default:
		return "invoice_date DESC, seq ASC"
	}
}

// ==================== Settings Store ====================

func (s *Store) SaveSettings(ctx context.Context, c *settings.Company) error {
	m := toSettingsModel(c)
	m.UpdatedAt = now()
	_, err := s.sdb.NewInsert(m).
		OnConflict("(slot) DO UPDATE").
		Set("company_name = EXCLUDED.company_name").
		Set("company_address = EXCLUDED.company_address").
		Set("company_phone = EXCLUDED.company_phone").
		Set("logo_path = EXCLUDED.logo_path").
		Set("default_currency = EXCLUDED.default_currency").
		Set("output_folder = EXCLUDED.output_folder").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) GetSettings(ctx context.Context) (*settings.Company, error) {
	m := new(settingsModel)
	err := s.sdb.NewSelect(m).
		Where("slot = ?", companySlot).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, invoicer.ErrSettingsNotFound
		}
		return nil, err
	}
	return fromSettingsModel(m)
}

// ==================== Helpers ====================

func now() time.Time {
	return time.Now().UTC()
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
