// Package store defines the unified persistence interface of invoicer.
// Implementations live in the memory, sqlite, postgres and mongo subpackages.
package store

import (
	"context"

	"github.com/xraph/invoicer/record"
	"github.com/xraph/invoicer/sequence"
	"github.com/xraph/invoicer/settings"
)

// Store is the unified storage interface for all invoicer entities.
type Store interface {
	sequence.Store
	record.Store
	settings.Store

	// Migrate creates or upgrades the schema.
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
