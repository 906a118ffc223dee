package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the invoicer store.
var Migrations = migrate.NewGroup("invoicer")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_invoicer_sequences",
			Version: "20251118000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS invoicer_sequences (
    seq_key    TEXT PRIMARY KEY,
    last_value BIGINT NOT NULL DEFAULT 0 CHECK (last_value >= 0),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS invoicer_sequences`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_invoicer_records",
			Version: "20251118000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS invoicer_records (
    seq             BIGSERIAL PRIMARY KEY,
    id              TEXT NOT NULL UNIQUE,
    order_number    TEXT NOT NULL UNIQUE,
    invoice_date    TIMESTAMPTZ NOT NULL,
    billing_name    TEXT NOT NULL DEFAULT '',
    billing_address TEXT NOT NULL DEFAULT '',
    billing_phone   TEXT NOT NULL DEFAULT '',
    currency        TEXT NOT NULL DEFAULT 'USD',
    subtotal        TEXT NOT NULL DEFAULT '0',
    tax_rate        TEXT NOT NULL DEFAULT '0',
    tax_amount      TEXT NOT NULL DEFAULT '0',
    discount_amount TEXT NOT NULL DEFAULT '0',
    total           TEXT NOT NULL DEFAULT '0',
    file_path       TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_invoicer_records_date ON invoicer_records (invoice_date DESC);
CREATE INDEX IF NOT EXISTS idx_invoicer_records_name ON invoicer_records (billing_name COLLATE "C");
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS invoicer_records`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_invoicer_settings",
			Version: "20251118000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS invoicer_settings (
    slot             TEXT PRIMARY KEY CHECK (slot = 'company'),
    id               TEXT NOT NULL,
    company_name     TEXT NOT NULL DEFAULT '',
    company_address  TEXT NOT NULL DEFAULT '',
    company_phone    TEXT NOT NULL DEFAULT '',
    logo_path        TEXT NOT NULL DEFAULT '',
    default_currency TEXT NOT NULL DEFAULT 'USD',
    output_folder    TEXT NOT NULL DEFAULT '',
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS invoicer_settings`)
				return err
			},
		},
	)
}
