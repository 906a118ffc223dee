// Package postgres implements store.Store on PostgreSQL through the Grove ORM.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/drivers/pgdriver/pgmigrate"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/invoicer"
	"github.com/xraph/invoicer/record"
	"github.com/xraph/invoicer/settings"
	"github.com/xraph/invoicer/store"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

const uniqueViolation = "23505"

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// Open connects to the database named by dsn.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pg := pgdriver.New()
	if err := pg.Open(ctx, dsn); err != nil {
		return nil, fmt.Errorf("invoicer/postgres: open: %w", err)
	}
	db, err := grove.Open(pg)
	if err != nil {
		_ = pg.Close()
		return nil, fmt.Errorf("invoicer/postgres: open: %w", err)
	}
	return New(db), nil
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	orch := migrate.NewOrchestrator(pgmigrate.New(s.pg), Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("invoicer/postgres: migration failed: %w", err)
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
	err := s.pg.NewSelect(m).
		Where("seq_key = $1", key).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return 0, nil
		}
		return 0, err
	}
	return m.LastValue, nil
}

func (s *Store) SetLastValue(ctx context.Context, key string, value int64) error {
	_, err := s.pg.NewRaw(`
INSERT INTO invoicer_sequences (seq_key, last_value, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (seq_key) DO UPDATE
SET last_value = EXCLUDED.last_value, updated_at = EXCLUDED.updated_at
WHERE EXCLUDED.last_value > invoicer_sequences.last_value`,
		key, value, now(),
	).Exec(ctx)
	return err
}

// ==================== Record Store ====================

func (s *Store) InsertRecord(ctx context.Context, r *record.Record) error {
	m := toRecordModel(r)
	if _, err := s.pg.NewInsert(m).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return invoicer.ErrDuplicateOrderNumber
		}
		return err
	}
	return nil
}

func (s *Store) GetRecord(ctx context.Context, orderNumber string) (*record.Record, error) {
	m := new(recordModel)
	err := s.pg.NewSelect(m).
		Where("order_number = $1", orderNumber).
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
	q := whereRange(s.pg.NewSelect(&models), opts)
	q = q.OrderExpr(orderBy(opts.Sort))

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
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
	return whereRange(s.pg.NewSelect((*recordModel)(nil)), opts).Count(ctx)
}

func whereRange(q *pgdriver.SelectQuery, opts record.ListOpts) *pgdriver.SelectQuery {
	argIdx := 0
	if !opts.Start.IsZero() {
		argIdx++
		q = q.Where(fmt.Sprintf("invoice_date >= $%d", argIdx), opts.Start.UTC())
	}
	if !opts.End.IsZero() {
		argIdx++
		q = q.Where(fmt.Sprintf("invoice_date <= $%d", argIdx), opts.End.UTC())
	}
	return q
}

// orderBy compares names bytewise so results match the other backends
// regardless of the database locale.
func orderBy(key record.SortKey) string {
	switch key {
	case record.SortByOrderNumber:
		return `order_number COLLATE "C" ASC, seq ASC`
	case record.SortByBillingName:
		return `billing_name COLLATE "C" ASC, seq ASC`
	default:
		return "invoice_date DESC, seq ASC"
	}
}

// ==================== Settings Store ====================

func (s *Store) SaveSettings(ctx context.Context, c *settings.Company) error {
	m := toSettingsModel(c)
	m.UpdatedAt = now()
	_, err := s.pg.NewInsert(m).
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
	err := s.pg.NewSelect(m).
		Where("slot = $1", companySlot).
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
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
