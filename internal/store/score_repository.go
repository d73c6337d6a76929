package store

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/how3io/how3-backend/internal/contracts"
)

// ScoreRepository implements contracts.ScoreSink. Scores are append-only;
// every scoring pass inserts fresh rows and history stays queryable.
type ScoreRepository struct {
	pool *pgxpool.Pool
}

// NewScoreRepository creates a new score repository
func NewScoreRepository(pool *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{pool: pool}
}

// SaveScore inserts one score record. The generated id is written back.
func (r *ScoreRepository) SaveScore(ctx context.Context, record *contracts.ScoreRecord) error {
	query := `
		INSERT INTO protocol_scores (protocol_id, computed_at, eqs, ugs, fvs, ss, how3)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	return r.pool.QueryRow(ctx, query,
		record.ProtocolID, record.ComputedAt,
		record.EQS, record.UGS, record.FVS, record.SS, record.How3,
	).Scan(&record.ID)
}

const scoreColumns = `id, protocol_id, computed_at, eqs, ugs, fvs, ss, how3`

// GetLatest returns the most recent score record for a protocol
func (r *ScoreRepository) GetLatest(ctx context.Context, protocolID int64) (*contracts.ScoreRecord, error) {
	query := `
		SELECT ` + scoreColumns + `
		FROM protocol_scores
		WHERE protocol_id = $1
		ORDER BY computed_at DESC
		LIMIT 1
	`

	var rec contracts.ScoreRecord
	err := r.pool.QueryRow(ctx, query, protocolID).Scan(
		&rec.ID, &rec.ProtocolID, &rec.ComputedAt,
		&rec.EQS, &rec.UGS, &rec.FVS, &rec.SS, &rec.How3,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetHistory returns score records for a protocol, newest first
func (r *ScoreRepository) GetHistory(ctx context.Context, protocolID int64, limit int) ([]*contracts.ScoreRecord, error) {
	query := `
		SELECT ` + scoreColumns + `
		FROM protocol_scores
		WHERE protocol_id = $1
		ORDER BY computed_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, protocolID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanScores(rows)
}

// ListLatest returns the most recent score record per protocol, ranked by
// composite score descending with unscored protocols last.
func (r *ScoreRepository) ListLatest(ctx context.Context) ([]*contracts.ScoreRecord, error) {
	query := `
		SELECT DISTINCT ON (protocol_id) ` + scoreColumns + `
		FROM protocol_scores
		ORDER BY protocol_id, computed_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records, err := scanScores(rows)
	if err != nil {
		return nil, err
	}

	// Rank by composite descending, unscored protocols last
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].How3, records[j].How3
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
	return records, nil
}

func scanScores(rows pgx.Rows) ([]*contracts.ScoreRecord, error) {
	var records []*contracts.ScoreRecord
	for rows.Next() {
		var rec contracts.ScoreRecord
		if err := rows.Scan(
			&rec.ID, &rec.ProtocolID, &rec.ComputedAt,
			&rec.EQS, &rec.UGS, &rec.FVS, &rec.SS, &rec.How3,
		); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}
