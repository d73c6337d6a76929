package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// migrations are idempotent and run in order on every startup
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS protocols (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		symbol TEXT NOT NULL UNIQUE,
		category TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		market_cap DOUBLE PRECISION,
		annual_revenue DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS revenue_observations (
		protocol_id BIGINT NOT NULL REFERENCES protocols(id) ON DELETE CASCADE,
		month DATE NOT NULL,
		source TEXT NOT NULL,
		total_fees DOUBLE PRECISION NOT NULL,
		mom_change DOUBLE PRECISION,
		PRIMARY KEY (protocol_id, month, source)
	)`,

	`CREATE TABLE IF NOT EXISTS user_observations (
		protocol_id BIGINT NOT NULL REFERENCES protocols(id) ON DELETE CASCADE,
		month DATE NOT NULL,
		active_addresses BIGINT NOT NULL DEFAULT 0,
		transaction_count BIGINT NOT NULL DEFAULT 0,
		transaction_volume DOUBLE PRECISION NOT NULL DEFAULT 0,
		address_growth DOUBLE PRECISION,
		tx_count_growth DOUBLE PRECISION,
		tx_volume_growth DOUBLE PRECISION,
		address_percentile DOUBLE PRECISION,
		tx_count_percentile DOUBLE PRECISION,
		tx_volume_percentile DOUBLE PRECISION,
		PRIMARY KEY (protocol_id, month)
	)`,

	`CREATE TABLE IF NOT EXISTS protocol_scores (
		id BIGSERIAL PRIMARY KEY,
		protocol_id BIGINT NOT NULL REFERENCES protocols(id) ON DELETE CASCADE,
		computed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		eqs DOUBLE PRECISION,
		ugs DOUBLE PRECISION,
		fvs DOUBLE PRECISION,
		ss DOUBLE PRECISION,
		how3 DOUBLE PRECISION
	)`,

	`CREATE INDEX IF NOT EXISTS idx_protocol_scores_latest
		ON protocol_scores (protocol_id, computed_at DESC)`,

	`CREATE INDEX IF NOT EXISTS idx_protocols_category
		ON protocols (category)`,

	`CREATE INDEX IF NOT EXISTS idx_revenue_observations_month
		ON revenue_observations (month)`,
}

// Migrate creates the schema if it does not exist
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
