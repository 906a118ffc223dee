// Package mongo implements store.Store on MongoDB through the Grove ORM.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/invoicer"
	"github.com/xraph/invoicer/record"
	"github.com/xraph/invoicer/settings"
	"github.com/xraph/invoicer/store"
)

// Collection name constants.
const (
	colSequences = "invoicer_sequences"
	colRecords   = "invoicer_records"
	colSettings  = "invoicer_settings"
	colCounters  = "invoicer_counters"
)

const (
	companySlot   = "company"
	recordCounter = "records"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// Open connects to uri. The database name comes from the URI path.
func Open(ctx context.Context, uri string) (*Store, error) {
	mdb := mongodriver.New()
	if err := mdb.Open(ctx, uri); err != nil {
		return nil, fmt.Errorf("invoicer/mongo: open: %w", err)
	}
	db, err := grove.Open(mdb)
	if err != nil {
		_ = mdb.Close()
		return nil, fmt.Errorf("invoicer/mongo: open: %w", err)
	}
	return New(db), nil
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all invoicer collections.
func (s *Store) Migrate(ctx context.Context) error {
	for col, models := range migrationIndexes() {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("invoicer/mongo: migrate %s indexes: %w", col, err)
		}
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
	var m counterModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": key}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("invoicer/mongo: last value: %w", err)
	}
	return m.LastValue, nil
}

// SetLastValue relies on $max so a stale value never lowers the counter.
// Two first writers can race on the upsert; the loser retries once as an
// update.
func (s *Store) SetLastValue(ctx context.Context, key string, value int64) error {
	update := bson.M{
		"$max": bson.M{"last_value": value},
		"$set": bson.M{"updated_at": now()},
	}

	var err error
	for range 2 {
		_, err = s.mdb.NewUpdate((*counterModel)(nil)).
			Filter(bson.M{"_id": key}).
			SetUpdate(update).
			Upsert().
			Exec(ctx)
		if !mongo.IsDuplicateKeyError(err) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("invoicer/mongo: set last value: %w", err)
	}
	return nil
}

// ==================== Record Store ====================

func (s *Store) InsertRecord(ctx context.Context, r *record.Record) error {
	seq, err := s.nextRow(ctx)
	if err != nil {
		return err
	}

	m := toRecordModel(r, seq)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return invoicer.ErrDuplicateOrderNumber
		}
		return fmt.Errorf("invoicer/mongo: insert record: %w", err)
	}
	return nil
}

// nextRow bumps the insertion counter kept in colCounters.
func (s *Store) nextRow(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var c rowCounter
	err := s.mdb.Collection(colCounters).
		FindOneAndUpdate(ctx, bson.M{"_id": recordCounter}, bson.M{"$inc": bson.M{"value": int64(1)}}, opts).
		Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("invoicer/mongo: next row: %w", err)
	}
	return c.Value, nil
}

func (s *Store) GetRecord(ctx context.Context, orderNumber string) (*record.Record, error) {
	var m recordModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"order_number": orderNumber}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, invoicer.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoicer/mongo: get record: %w", err)
	}
	return fromRecordModel(&m)
}

func (s *Store) ListRecords(ctx context.Context, opts record.ListOpts) ([]*record.Record, error) {
	var models []recordModel

	q := s.mdb.NewFind(&models).
		Filter(rangeFilter(opts)).
		Sort(sortBy(opts.Sort))

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("invoicer/mongo: list records: %w", err)
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
	n, err := s.mdb.NewFind(new(recordModel)).
		Filter(rangeFilter(opts)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("invoicer/mongo: count records: %w", err)
	}
	return n, nil
}

func rangeFilter(opts record.ListOpts) bson.M {
	filter := bson.M{}
	dateFilter := bson.M{}
	if !opts.Start.IsZero() {
		dateFilter["$gte"] = opts.Start.UTC()
	}
	if !opts.End.IsZero() {
		dateFilter["$lte"] = opts.End.UTC()
	}
	if len(dateFilter) > 0 {
		filter["invoice_date"] = dateFilter
	}
	return filter
}

func sortBy(key record.SortKey) bson.D {
	switch key {
	case record.SortByOrderNumber:
		return bson.D{{Key: "order_number", Value: 1}, {Key: "seq", Value: 1}}
	case record.SortByBillingName:
		return bson.D{{Key: "billing_name", Value: 1}, {Key: "seq", Value: 1}}
	default:
		return bson.D{{Key: "invoice_date", Value: -1}, {Key: "seq", Value: 1}}
	}
}

// ==================== Settings Store ====================

func (s *Store) SaveSettings(ctx context.Context, c *settings.Company) error {
	update := bson.M{
		"$set": bson.M{
			"company_name":     c.Name,
			"company_address":  c.Address,
			"company_phone":    c.Phone,
			"logo_path":        c.LogoPath,
			"default_currency": string(c.DefaultCurrency),
			"output_folder":    c.OutputDir,
			"updated_at":       now(),
		},
		"$setOnInsert": bson.M{
			"settings_id": c.ID.String(),
			"created_at":  c.CreatedAt.UTC(),
		},
	}

	_, err := s.mdb.NewUpdate((*settingsModel)(nil)).
		Filter(bson.M{"_id": companySlot}).
		SetUpdate(update).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("invoicer/mongo: save settings: %w", err)
	}
	return nil
}

func (s *Store) GetSettings(ctx context.Context) (*settings.Company, error) {
	var m settingsModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": companySlot}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, invoicer.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("invoicer/mongo: get settings: %w", err)
	}
	return fromSettingsModel(&m)
}

// ==================== Helpers ====================

func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all invoicer collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colSequences: {},
		colRecords: {
			{
				Keys:    bson.D{{Key: "order_number", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "invoice_date", Value: -1}, {Key: "seq", Value: 1}}},
			{Keys: bson.D{{Key: "billing_name", Value: 1}, {Key: "seq", Value: 1}}},
		},
		colSettings: {},
		colCounters: {},
	}
}
