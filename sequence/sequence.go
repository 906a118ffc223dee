// Package sequence defines per-day order-number counters and the order
// number format INV-YYYYMMDD-NNNNN.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// Prefix starts every order number.
	Prefix = "INV"

	// KeyLayout is the time layout of a sequence key.
	KeyLayout = "20060102"

	// Width is the zero-padded width of the numeric suffix.
	Width = 5

	// Max is the largest value a single day can issue.
	Max = 99999
)

// ErrExhausted is returned when a day's counter has reached Max.
var ErrExhausted = errors.New("sequence: daily sequence exhausted")

// Store persists counters. LastValue returns 0 for an unknown key.
// SetLastValue must be durable when it returns and must never lower a
// stored value.
type Store interface {
	LastValue(ctx context.Context, key string) (int64, error)
	SetLastValue(ctx context.Context, key string, value int64) error
}

// Key returns the sequence key of a calendar day, e.g. "20251118".
func Key(day time.Time) string {
	return day.Format(KeyLayout)
}

// FormatOrderNumber builds the order number for a key and value.
func FormatOrderNumber(key string, value int64) string {
	return fmt.Sprintf("%s-%s-%0*d", Prefix, key, Width, value)
}

// ParseOrderNumber splits an order number into its key and value.
func ParseOrderNumber(s string) (key string, value int64, err error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || parts[0] != Prefix {
		return "", 0, fmt.Errorf("sequence: malformed order number %q", s)
	}
	if _, err := time.Parse(KeyLayout, parts[1]); err != nil {
		return "", 0, fmt.Errorf("sequence: malformed date in %q: %w", s, err)
	}
	if len(parts[2]) != Width {
		return "", 0, fmt.Errorf("sequence: malformed suffix in %q", s)
	}
	value, err = strconv.ParseInt(parts[2], 10, 64)
	if err != nil || value < 1 {
		return "", 0, fmt.Errorf("sequence: malformed suffix in %q", s)
	}
	return parts[1], value, nil
}

// Valid reports whether s is a well-formed order number.
func Valid(s string) bool {
	_, _, err := ParseOrderNumber(s)
	return err == nil
}
