package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations are executed in order on startup. Statements must be
// idempotent so repeated startups are safe.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS tip_stats (
		account        TEXT PRIMARY KEY,
		total_sent     BIGINT NOT NULL DEFAULT 0,
		total_received BIGINT NOT NULL DEFAULT 0,
		reward_points  BIGINT NOT NULL DEFAULT 0,
		updated_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS identities (
		account    TEXT PRIMARY KEY,
		username   TEXT NOT NULL,
		verified   BOOLEAN NOT NULL DEFAULT TRUE,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_identities_username ON identities (username)`,
	`CREATE TABLE IF NOT EXISTS tip_receipts (
		id         TEXT PRIMARY KEY,
		sender     TEXT NOT NULL,
		recipient  TEXT NOT NULL,
		asset      TEXT NOT NULL,
		gross      BIGINT NOT NULL,
		fee        BIGINT NOT NULL,
		net        BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tip_receipts_sender ON tip_receipts (sender, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_tip_receipts_recipient ON tip_receipts (recipient, created_at DESC)`,
}

// Apply runs all schema migrations against the database.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
	}
	return nil
}
