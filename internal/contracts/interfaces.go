package contracts

import (
	"context"
	"time"
)

// MetricSource hands the scoring engine already-shaped metric tables.
// Implementations guarantee observations sorted by month ascending and
// deduplicated per the uniqueness invariants.
type MetricSource interface {
	// RevenueTable returns the trailing windowMonths of revenue
	// observations across all sources for one protocol.
	RevenueTable(ctx context.Context, protocolID int64, windowMonths int) ([]RevenueObservation, error)

	// UserTable returns the trailing windowMonths of user observations
	// for one protocol.
	UserTable(ctx context.Context, protocolID int64, windowMonths int) ([]UserObservation, error)

	// Valuation returns the current market cap and trailing annual revenue.
	Valuation(ctx context.Context, protocolID int64) (*ValuationSnapshot, error)
}

// ScoreSink persists scoring output. Append-only: a save never updates a
// prior record.
type ScoreSink interface {
	SaveScore(ctx context.Context, record *ScoreRecord) error
}

// SafetyScoreProvider supplies the externally computed safety score.
// A nil score means "not available" and the pipeline substitutes its
// neutral default; it is never an error that aborts a pass.
type SafetyScoreProvider interface {
	SafetyScore(ctx context.Context, protocolName string) (*float64, error)
}

// PercentileSink persists percentile ranks computed for a cohort month
type PercentileSink interface {
	SavePercentiles(ctx context.Context, obs *UserObservation) error
}

// ProtocolCatalog lists the protocols known to the system
type ProtocolCatalog interface {
	ListProtocols(ctx context.Context) ([]*Protocol, error)
	GetProtocol(ctx context.Context, id int64) (*Protocol, error)
}

// UserCohortSource returns one month of user observations for every
// protocol in a category that has data for that month. Used by the
// percentile ranker, which must see the whole peer set at once.
type UserCohortSource interface {
	UserCohort(ctx context.Context, category string, month time.Time) ([]UserObservation, error)
}
