package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/how3io/how3-backend/internal/contracts"
)

// RevenueRepository stores monthly revenue observations per (protocol,
// month, source). Rows are append-only except for the mom_change backfill
// that runs when a prior month becomes available.
type RevenueRepository struct {
	pool *pgxpool.Pool
}

// NewRevenueRepository creates a new revenue repository
func NewRevenueRepository(pool *pgxpool.Pool) *RevenueRepository {
	return &RevenueRepository{pool: pool}
}

// Save upserts one revenue observation
func (r *RevenueRepository) Save(ctx context.Context, obs *contracts.RevenueObservation) error {
	query := `
		INSERT INTO revenue_observations (protocol_id, month, source, total_fees, mom_change)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (protocol_id, month, source) DO UPDATE SET
			total_fees = EXCLUDED.total_fees,
			mom_change = EXCLUDED.mom_change
	`

	_, err := r.pool.Exec(ctx, query,
		obs.ProtocolID, obs.Month, obs.Source, obs.TotalFees, obs.MoMChange,
	)
	return err
}

// SaveBatch upserts multiple revenue observations
func (r *RevenueRepository) SaveBatch(ctx context.Context, obs []*contracts.RevenueObservation) error {
	for _, o := range obs {
		if err := r.Save(ctx, o); err != nil {
			return err
		}
	}
	return nil
}

// RevenueTable returns the trailing window of observations for one protocol
// across all sources, oldest month first.
func (r *RevenueRepository) RevenueTable(ctx context.Context, protocolID int64, windowMonths int) ([]contracts.RevenueObservation, error) {
	query := `
		SELECT protocol_id, month, source, total_fees, mom_change
		FROM revenue_observations
		WHERE protocol_id = $1
		  AND month >= date_trunc('month', NOW()) - make_interval(months => $2)
		ORDER BY month ASC, source ASC
	`

	rows, err := r.pool.Query(ctx, query, protocolID, windowMonths)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var table []contracts.RevenueObservation
	for rows.Next() {
		var o contracts.RevenueObservation
		if err := rows.Scan(&o.ProtocolID, &o.Month, &o.Source, &o.TotalFees, &o.MoMChange); err != nil {
			return nil, err
		}
		table = append(table, o)
	}
	return table, rows.Err()
}

// BackfillMoMChanges recomputes mom_change for every observation of a
// protocol that has a prior-month observation from the same source.
func (r *RevenueRepository) BackfillMoMChanges(ctx context.Context, protocolID int64) error {
	query := `
		UPDATE revenue_observations cur
		SET mom_change = CASE
			WHEN prev.total_fees > 0 THEN (cur.total_fees - prev.total_fees) / prev.total_fees
			ELSE NULL
		END
		FROM revenue_observations prev
		WHERE cur.protocol_id = $1
		  AND prev.protocol_id = cur.protocol_id
		  AND prev.source = cur.source
		  AND prev.month = cur.month - INTERVAL '1 month'
	`

	_, err := r.pool.Exec(ctx, query, protocolID)
	return err
}

// LatestMonth returns the most recent observed month for a protocol,
// nil when no observations exist.
func (r *RevenueRepository) LatestMonth(ctx context.Context, protocolID int64) (*contracts.RevenueObservation, error) {
	query := `
		SELECT protocol_id, month, source, total_fees, mom_change
		FROM revenue_observations
		WHERE protocol_id = $1
		ORDER BY month DESC, total_fees DESC
		LIMIT 1
	`

	var o contracts.RevenueObservation
	err := r.pool.QueryRow(ctx, query, protocolID).Scan(
		&o.ProtocolID, &o.Month, &o.Source, &o.TotalFees, &o.MoMChange,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
