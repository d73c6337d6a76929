package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/how3io/how3-backend/internal/contracts"
)

// UserRepository stores monthly user activity observations per
// (protocol, month). Implements the cohort and percentile interfaces the
// ranking pass depends on.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new user metrics repository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `
	protocol_id, month,
	active_addresses, transaction_count, transaction_volume,
	address_growth, tx_count_growth, tx_volume_growth,
	address_percentile, tx_count_percentile, tx_volume_percentile`

// Save upserts one user observation, preserving percentile ranks already
// computed for the row.
func (r *UserRepository) Save(ctx context.Context, obs *contracts.UserObservation) error {
	query := `
		INSERT INTO user_observations (
			protocol_id, month,
			active_addresses, transaction_count, transaction_volume,
			address_growth, tx_count_growth, tx_volume_growth
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (protocol_id, month) DO UPDATE SET
			active_addresses = EXCLUDED.active_addresses,
			transaction_count = EXCLUDED.transaction_count,
			transaction_volume = EXCLUDED.transaction_volume,
			address_growth = EXCLUDED.address_growth,
			tx_count_growth = EXCLUDED.tx_count_growth,
			tx_volume_growth = EXCLUDED.tx_volume_growth
	`

	_, err := r.pool.Exec(ctx, query,
		obs.ProtocolID, obs.Month,
		obs.ActiveAddresses, obs.TransactionCount, obs.TransactionVolume,
		obs.AddressGrowth, obs.TxCountGrowth, obs.TxVolumeGrowth,
	)
	return err
}

// SavePercentiles stores the percentile ranks for one observation
func (r *UserRepository) SavePercentiles(ctx context.Context, obs *contracts.UserObservation) error {
	query := `
		UPDATE user_observations
		SET address_percentile = $3,
			tx_count_percentile = $4,
			tx_volume_percentile = $5
		WHERE protocol_id = $1 AND month = $2
	`

	_, err := r.pool.Exec(ctx, query,
		obs.ProtocolID, obs.Month,
		obs.AddressPercentile, obs.TxCountPercentile, obs.TxVolumePercentile,
	)
	return err
}

// UserTable returns the trailing window of observations for one protocol,
// oldest month first.
func (r *UserRepository) UserTable(ctx context.Context, protocolID int64, windowMonths int) ([]contracts.UserObservation, error) {
	query := `
		SELECT ` + userColumns + `
		FROM user_observations
		WHERE protocol_id = $1
		  AND month >= date_trunc('month', NOW()) - make_interval(months => $2)
		ORDER BY month ASC
	`

	rows, err := r.pool.Query(ctx, query, protocolID, windowMonths)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var table []contracts.UserObservation
	for rows.Next() {
		var o contracts.UserObservation
		if err := rows.Scan(
			&o.ProtocolID, &o.Month,
			&o.ActiveAddresses, &o.TransactionCount, &o.TransactionVolume,
			&o.AddressGrowth, &o.TxCountGrowth, &o.TxVolumeGrowth,
			&o.AddressPercentile, &o.TxCountPercentile, &o.TxVolumePercentile,
		); err != nil {
			return nil, err
		}
		table = append(table, o)
	}
	return table, rows.Err()
}

// UserCohort returns one month of observations for every protocol in a
// category that reported data for that month.
func (r *UserRepository) UserCohort(ctx context.Context, category string, month time.Time) ([]contracts.UserObservation, error) {
	query := `
		SELECT ` + userColumns + `
		FROM user_observations u
		JOIN protocols p ON p.id = u.protocol_id
		WHERE p.category = $1 AND u.month = $2
		ORDER BY u.protocol_id ASC
	`

	rows, err := r.pool.Query(ctx, query, category, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cohort []contracts.UserObservation
	for rows.Next() {
		var o contracts.UserObservation
		if err := rows.Scan(
			&o.ProtocolID, &o.Month,
			&o.ActiveAddresses, &o.TransactionCount, &o.TransactionVolume,
			&o.AddressGrowth, &o.TxCountGrowth, &o.TxVolumeGrowth,
			&o.AddressPercentile, &o.TxCountPercentile, &o.TxVolumePercentile,
		); err != nil {
			return nil, err
		}
		cohort = append(cohort, o)
	}
	return cohort, rows.Err()
}
