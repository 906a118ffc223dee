package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xraph/invoicer/store"
	"github.com/xraph/invoicer/store/postgres"
	"github.com/xraph/invoicer/store/storetest"
)

// INVOICER_TEST_POSTGRES_DSN points at a scratch database. Its invoicer
// tables are emptied before every subtest.
func TestConformance(t *testing.T) {
	dsn := os.Getenv("INVOICER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("INVOICER_TEST_POSTGRES_DSN not set")
	}

	storetest.Run(t, func(t *testing.T) store.Store {
		ctx := context.Background()
		s, err := postgres.Open(ctx, dsn)
		require.NoError(t, err)

		require.NoError(t, s.Migrate(ctx))
		require.NoError(t, postgres.Truncate(ctx, s))
		return s
	})
}
