package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/how3io/how3-backend/internal/contracts"
)

// ProtocolRepository implements contracts.ProtocolCatalog
type ProtocolRepository struct {
	pool *pgxpool.Pool
}

// NewProtocolRepository creates a new protocol repository
func NewProtocolRepository(pool *pgxpool.Pool) *ProtocolRepository {
	return &ProtocolRepository{pool: pool}
}

const protocolColumns = `id, name, symbol, category, description, market_cap, annual_revenue, created_at, updated_at`

// ListProtocols retrieves all tracked protocols ordered by name
func (r *ProtocolRepository) ListProtocols(ctx context.Context) ([]*contracts.Protocol, error) {
	query := `
		SELECT ` + protocolColumns + `
		FROM protocols
		ORDER BY name ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProtocols(rows)
}

// ListByCategory retrieves all protocols in one category
func (r *ProtocolRepository) ListByCategory(ctx context.Context, category string) ([]*contracts.Protocol, error) {
	query := `
		SELECT ` + protocolColumns + `
		FROM protocols
		WHERE category = $1
		ORDER BY name ASC
	`

	rows, err := r.pool.Query(ctx, query, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProtocols(rows)
}

// GetProtocol retrieves one protocol by id
func (r *ProtocolRepository) GetProtocol(ctx context.Context, id int64) (*contracts.Protocol, error) {
	query := `
		SELECT ` + protocolColumns + `
		FROM protocols
		WHERE id = $1
	`

	var p contracts.Protocol
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Symbol, &p.Category, &p.Description,
		&p.MarketCap, &p.AnnualRevenue, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetBySymbol retrieves one protocol by ticker symbol
func (r *ProtocolRepository) GetBySymbol(ctx context.Context, symbol string) (*contracts.Protocol, error) {
	query := `
		SELECT ` + protocolColumns + `
		FROM protocols
		WHERE symbol = $1
	`

	var p contracts.Protocol
	err := r.pool.QueryRow(ctx, query, symbol).Scan(
		&p.ID, &p.Name, &p.Symbol, &p.Category, &p.Description,
		&p.MarketCap, &p.AnnualRevenue, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert inserts a protocol or updates its mutable fields, keyed by symbol.
// The generated id is written back to p.
func (r *ProtocolRepository) Upsert(ctx context.Context, p *contracts.Protocol) error {
	query := `
		INSERT INTO protocols (name, symbol, category, description)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			description = EXCLUDED.description,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	return r.pool.QueryRow(ctx, query, p.Name, p.Symbol, p.Category, p.Description).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// UpdateMarketCap stores the latest market cap for a protocol
func (r *ProtocolRepository) UpdateMarketCap(ctx context.Context, id int64, marketCap *float64) error {
	query := `
		UPDATE protocols
		SET market_cap = $2, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, id, marketCap)
	return err
}

// RefreshAnnualRevenue recomputes the trailing-12-month revenue sum from the
// revenue observations and stores it on the protocol row.
func (r *ProtocolRepository) RefreshAnnualRevenue(ctx context.Context, id int64) error {
	query := `
		UPDATE protocols
		SET annual_revenue = COALESCE((
			SELECT SUM(total_fees)
			FROM revenue_observations
			WHERE protocol_id = $1
			  AND month >= date_trunc('month', NOW()) - INTERVAL '12 months'
		), 0),
		updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func scanProtocols(rows pgx.Rows) ([]*contracts.Protocol, error) {
	var protocols []*contracts.Protocol
	for rows.Next() {
		var p contracts.Protocol
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Symbol, &p.Category, &p.Description,
			&p.MarketCap, &p.AnnualRevenue, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		protocols = append(protocols, &p)
	}
	return protocols, rows.Err()
}
