package invoicer

import (
	"context"
	"sync"
	"time"

	"github.com/xraph/invoicer/sequence"
)

// Allocator issues order numbers of the form INV-YYYYMMDD-NNNNN. Numbers for
// one date are strictly increasing and never reissued, even when the
// invoice they were issued for is never completed.
type Allocator struct {
	store sequence.Store
	locks sync.Map // sequence key -> *sync.Mutex
}

// NewAllocator creates an Allocator over s.
func NewAllocator(s sequence.Store) *Allocator {
	return &Allocator{store: s}
}

func (a *Allocator) lock(key string) *sync.Mutex {
	mu, _ := a.locks.LoadOrStore(key, new(sync.Mutex))
	return mu.(*sync.Mutex)
}

// Next persists and returns the next order number for day. The counter is
// written before the number is returned, so a crash afterwards leaves a gap
// rather than a duplicate.
func (a *Allocator) Next(ctx context.Context, day time.Time) (string, error) {
	key := sequence.Key(day)

	mu := a.lock(key)
	mu.Lock()
	defer mu.Unlock()

	last, err := a.store.LastValue(ctx, key)
	if err != nil {
		return "", &PersistenceError{Op: "read sequence " + key, Err: err}
	}
	if last >= sequence.Max {
		return "", &PersistenceError{Op: "allocate " + key, Err: sequence.ErrExhausted}
	}

	next := last + 1
	if err := a.store.SetLastValue(ctx, key, next); err != nil {
		return "", &PersistenceError{Op: "write sequence " + key, Err: err}
	}
	return sequence.FormatOrderNumber(key, next), nil
}

// Peek returns the number Next would issue for day without consuming it.
func (a *Allocator) Peek(ctx context.Context, day time.Time) (string, error) {
	key := sequence.Key(day)
	last, err := a.store.LastValue(ctx, key)
	if err != nil {
		return "", &PersistenceError{Op: "read sequence " + key, Err: err}
	}
	if last >= sequence.Max {
		return "", &PersistenceError{Op: "allocate " + key, Err: sequence.ErrExhausted}
	}
	return sequence.FormatOrderNumber(key, last+1), nil
}
