// Package memory provides an in-process store. It is safe for concurrent use
// and loses everything on exit.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/xraph/invoicer"
	"github.com/xraph/invoicer/record"
	"github.com/xraph/invoicer/settings"
	"github.com/xraph/invoicer/store"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

type Store struct {
	mu     sync.RWMutex
	closed bool

	// Sequence counters keyed by YYYYMMDD
	counters map[string]int64

	// Records in insertion order, indexed by order number
	records []*record.Record
	byOrder map[string]*record.Record

	company *settings.Company
}

func New() *Store {
	return &Store{
		counters: make(map[string]int64),
		byOrder:  make(map[string]*record.Record),
	}
}

// ==================== Sequence Store ====================

func (s *Store) LastValue(_ context.Context, key string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, invoicer.ErrStoreClosed
	}
	return s.counters[key], nil
}

func (s *Store) SetLastValue(_ context.Context, key string, value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return invoicer.ErrStoreClosed
	}
	if value > s.counters[key] {
		s.counters[key] = value
	}
	return nil
}

// ==================== Record Store ====================

func (s *Store) InsertRecord(_ context.Context, r *record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return invoicer.ErrStoreClosed
	}
	if _, exists := s.byOrder[r.OrderNumber]; exists {
		return invoicer.ErrDuplicateOrderNumber
	}
	cp := *r
	s.records = append(s.records, &cp)
	s.byOrder[r.OrderNumber] = &cp
	return nil
}

func (s *Store) GetRecord(_ context.Context, orderNumber string) (*record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, invoicer.ErrStoreClosed
	}
	r, ok := s.byOrder[orderNumber]
	if !ok {
		return nil, invoicer.ErrInvoiceNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *Store) ListRecords(_ context.Context, opts record.ListOpts) ([]*record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, invoicer.ErrStoreClosed
	}

	result := s.filter(opts)
	slices.SortStableFunc(result, compareBy(opts.Sort))

	// Apply limit/offset; values <= 0 mean unset.
	start := min(max(opts.Offset, 0), len(result))
	end := len(result)
	if opts.Limit > 0 {
		end = min(start+opts.Limit, len(result))
	}
	return result[start:end], nil
}

func (s *Store) CountRecords(_ context.Context, opts record.ListOpts) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, invoicer.ErrStoreClosed
	}
	return int64(len(s.filter(opts))), nil
}

// filter copies the records matching the date range, in insertion order.
// The caller holds s.mu.
func (s *Store) filter(opts record.ListOpts) []*record.Record {
	result := make([]*record.Record, 0, len(s.records))
	for _, r := range s.records {
		if !opts.Start.IsZero() && r.InvoiceDate.Before(opts.Start) {
			continue
		}
		if !opts.End.IsZero() && r.InvoiceDate.After(opts.End) {
			continue
		}
		cp := *r
		result = append(result, &cp)
	}
	return result
}

func compareBy(key record.SortKey) func(a, b *record.Record) int {
	switch key {
	case record.SortByOrderNumber:
		return func(a, b *record.Record) int { return strings.Compare(a.OrderNumber, b.OrderNumber) }
	case record.SortByBillingName:
		return func(a, b *record.Record) int { return strings.Compare(a.BillingName, b.BillingName) }
	default:
		return func(a, b *record.Record) int { return b.InvoiceDate.Compare(a.InvoiceDate) }
	}
}

// ==================== Settings Store ====================

func (s *Store) SaveSettings(_ context.Context, c *settings.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return invoicer.ErrStoreClosed
	}
	cp := *c
	if s.company != nil {
		cp.ID = s.company.ID
		cp.CreatedAt = s.company.CreatedAt
	}
	cp.UpdatedAt = time.Now().UTC()
	s.company = &cp
	return nil
}

func (s *Store) GetSettings(_ context.Context) (*settings.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, invoicer.ErrStoreClosed
	}
	if s.company == nil {
		return nil, invoicer.ErrSettingsNotFound
	}
	cp := *s.company
	return &cp, nil
}

// ==================== Lifecycle ====================

func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return invoicer.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
