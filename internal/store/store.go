// Package store implements PostgreSQL persistence for protocols, metric
// observations, and score history. Repositories take a shared pgx pool and
// expose the interfaces declared in internal/contracts.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/how3io/how3-backend/internal/contracts"
)

// Store bundles the repositories behind the contracts the pipeline consumes
type Store struct {
	Protocols *ProtocolRepository
	Revenue   *RevenueRepository
	Users     *UserRepository
	Scores    *ScoreRepository
}

// New creates a store over one connection pool
func New(pool *pgxpool.Pool) *Store {
	return &Store{
		Protocols: NewProtocolRepository(pool),
		Revenue:   NewRevenueRepository(pool),
		Users:     NewUserRepository(pool),
		Scores:    NewScoreRepository(pool),
	}
}

// RevenueTable implements contracts.MetricSource
func (s *Store) RevenueTable(ctx context.Context, protocolID int64, windowMonths int) ([]contracts.RevenueObservation, error) {
	return s.Revenue.RevenueTable(ctx, protocolID, windowMonths)
}

// UserTable implements contracts.MetricSource
func (s *Store) UserTable(ctx context.Context, protocolID int64, windowMonths int) ([]contracts.UserObservation, error) {
	return s.Users.UserTable(ctx, protocolID, windowMonths)
}

// Valuation implements contracts.MetricSource. Market cap comes from the
// protocol row; annual revenue is the trailing-12-month sum maintained by
// RefreshAnnualRevenue.
func (s *Store) Valuation(ctx context.Context, protocolID int64) (*contracts.ValuationSnapshot, error) {
	p, err := s.Protocols.GetProtocol(ctx, protocolID)
	if err != nil {
		return nil, err
	}
	return &contracts.ValuationSnapshot{
		ProtocolID:    p.ID,
		MarketCap:     p.MarketCap,
		AnnualRevenue: p.AnnualRevenue,
	}, nil
}

// SaveScore implements contracts.ScoreSink
func (s *Store) SaveScore(ctx context.Context, record *contracts.ScoreRecord) error {
	return s.Scores.SaveScore(ctx, record)
}

// SavePercentiles implements contracts.PercentileSink
func (s *Store) SavePercentiles(ctx context.Context, obs *contracts.UserObservation) error {
	return s.Users.SavePercentiles(ctx, obs)
}

// UserCohort implements contracts.UserCohortSource
func (s *Store) UserCohort(ctx context.Context, category string, month time.Time) ([]contracts.UserObservation, error) {
	return s.Users.UserCohort(ctx, category, month)
}

// ListProtocols implements contracts.ProtocolCatalog
func (s *Store) ListProtocols(ctx context.Context) ([]*contracts.Protocol, error) {
	return s.Protocols.ListProtocols(ctx)
}

// GetProtocol implements contracts.ProtocolCatalog
func (s *Store) GetProtocol(ctx context.Context, id int64) (*contracts.Protocol, error) {
	return s.Protocols.GetProtocol(ctx, id)
}
