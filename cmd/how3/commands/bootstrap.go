package commands

import (
	"fmt"

	"github.com/how3io/how3-backend/internal/external/certik"
	"github.com/how3io/how3-backend/internal/external/dune"
	"github.com/how3io/how3-backend/internal/external/market"
	"github.com/how3io/how3-backend/internal/ingest"
	"github.com/how3io/how3-backend/internal/pipeline"
	"github.com/how3io/how3-backend/internal/scoring"
	"github.com/how3io/how3-backend/internal/store"
	"github.com/how3io/how3-backend/pkg/config"
	"github.com/how3io/how3-backend/pkg/database"
	"github.com/how3io/how3-backend/pkg/logger"
	"github.com/how3io/how3-backend/pkg/metrics"
	"github.com/how3io/how3-backend/pkg/redis"
)

// app bundles the fully wired service graph. Every command builds the same
// graph and picks the pieces it needs, so wiring lives in one place.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *database.DB
	redis   *redis.Client
	store   *store.Store
	metrics *metrics.Metrics

	dune      *dune.Client
	certik    *certik.Client
	market    *market.Client
	collector *ingest.Collector
	runner    *pipeline.Runner
}

// newApp loads config and wires the service graph
func newApp() (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// 4. Connect to Redis (optional, no-ops when disabled)
	rdb, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(rdb, "how3")

	// 5. Storage
	st := store.New(db.Pool)

	// 6. External API clients
	duneClient := dune.NewClient(cfg, log, cache)
	certikClient := certik.NewClient(cfg, log, cache)
	marketClient := market.NewClient(cfg, log, cache)

	// 7. Metrics
	met := metrics.New()

	// 8. Ingestion collector
	registry := ingest.NewRegistry()
	collector := ingest.NewCollector(st, duneClient, marketClient, registry, log, met)

	// 9. Scoring engine and pipeline runner
	scoreCfg := scoring.DefaultConfig()
	scoreCfg.StabilityWeight = cfg.Scoring.StabilityWeight
	scoreCfg.DiversificationWeight = 1 - cfg.Scoring.StabilityWeight
	scoreCfg.MagnitudeReference = cfg.Scoring.MagnitudeReference

	engine, err := scoring.NewEngine(scoreCfg)
	if err != nil {
		rdb.Close()
		db.Close()
		return nil, fmt.Errorf("scoring engine: %w", err)
	}

	runner := pipeline.NewRunner(pipeline.Deps{
		Catalog:      st,
		Source:       st,
		Cohorts:      st,
		Percentiles:  st,
		Sink:         st,
		Safety:       certikClient,
		Engine:       engine,
		Logger:       log,
		Metrics:      met,
		WindowMonths: cfg.Scoring.WindowMonths,
		Workers:      cfg.Scoring.Workers,
	})

	return &app{
		cfg:       cfg,
		log:       log,
		db:        db,
		redis:     rdb,
		store:     st,
		metrics:   met,
		dune:      duneClient,
		certik:    certikClient,
		market:    marketClient,
		collector: collector,
		runner:    runner,
	}, nil
}

// Close releases database and Redis connections
func (a *app) Close() {
	a.redis.Close()
	a.db.Close()
}
