// Package pipeline orchestrates scoring passes: percentile ranking runs
// first as a cohort-wide barrier, then per-protocol scoring fans out over a
// bounded worker pool. A pass tolerates per-protocol failures; one bad
// upstream never blocks the rest of the catalog.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/google/uuid"

	"github.com/how3io/how3-backend/internal/contracts"
	"github.com/how3io/how3-backend/internal/scoring"
	"github.com/how3io/how3-backend/pkg/logger"
	"github.com/how3io/how3-backend/pkg/metrics"
)

// Publisher receives every freshly persisted score record. Optional; used
// by the API layer to push updates to websocket subscribers.
type Publisher interface {
	PublishScore(record *contracts.ScoreRecord)
}

// Runner executes scoring passes over the protocol catalog
type Runner struct {
	catalog     contracts.ProtocolCatalog
	source      contracts.MetricSource
	cohorts     contracts.UserCohortSource
	percentiles contracts.PercentileSink
	sink        contracts.ScoreSink
	safety      contracts.SafetyScoreProvider
	engine      *scoring.Engine
	logger      *logger.Logger
	metrics     *metrics.Metrics
	publisher   Publisher

	windowMonths int
	workers      int
}

// Deps bundles the runner's collaborators
type Deps struct {
	Catalog     contracts.ProtocolCatalog
	Source      contracts.MetricSource
	Cohorts     contracts.UserCohortSource
	Percentiles contracts.PercentileSink
	Sink        contracts.ScoreSink
	Safety      contracts.SafetyScoreProvider
	Engine      *scoring.Engine
	Logger      *logger.Logger
	Metrics     *metrics.Metrics

	WindowMonths int
	Workers      int
}

// NewRunner creates a scoring pass runner
func NewRunner(d Deps) *Runner {
	return &Runner{
		catalog:      d.Catalog,
		source:       d.Source,
		cohorts:      d.Cohorts,
		percentiles:  d.Percentiles,
		sink:         d.Sink,
		safety:       d.Safety,
		engine:       d.Engine,
		logger:       d.Logger,
		metrics:      d.Metrics,
		windowMonths: d.WindowMonths,
		workers:      d.Workers,
	}
}

// SetPublisher attaches a score publisher. Must be called before RunScoringPass.
func (r *Runner) SetPublisher(p Publisher) {
	r.publisher = p
}

// PassResult summarizes one scoring pass
type PassResult struct {
	RunID    string
	Scored   int
	Failed   int
	Degraded int
	Records  []*contracts.ScoreRecord
	Duration time.Duration
}

// RunScoringPass scores the given protocols, or the whole catalog when ids
// is empty. Percentile ranks are recomputed per (category, month) cohort
// before any protocol is scored, since a protocol's UGS depends on its
// peers' metrics from the same pass.
func (r *Runner) RunScoringPass(ctx context.Context, ids []int64) (*PassResult, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := r.logger.WithField("run_id", runID)

	protocols, err := r.selectProtocols(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(protocols) == 0 {
		return &PassResult{RunID: runID}, nil
	}

	cohortMonth := latestCompleteMonth(time.Now().UTC())
	peerSets := groupByCategory(protocols)

	for _, set := range peerSets {
		if err := r.rankCohort(ctx, set.Category, cohortMonth); err != nil {
			// Scoring still proceeds; affected protocols degrade to
			// absolute-scale UGS.
			log.WithFields(map[string]interface{}{
				"category": set.Category,
				"error":    err.Error(),
			}).Warn("Percentile ranking failed for cohort")
		}
	}

	peerPS := r.peerPSRatios(ctx, peerSets)

	var (
		mu     sync.Mutex
		result = PassResult{RunID: runID}
	)

	pool := pond.NewPool(r.workers)
	for _, p := range protocols {
		pool.Submit(func() {
			record, degraded, err := r.scoreProtocol(ctx, p, cohortMonth, peerPS[p.Category])

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				r.metrics.ScoringRuns.WithLabelValues("error").Inc()
				log.WithFields(map[string]interface{}{
					"protocol": p.Symbol,
					"error":    err.Error(),
				}).Error("Protocol scoring failed")
				return
			}

			result.Scored++
			if degraded {
				result.Degraded++
			}
			result.Records = append(result.Records, record)
			r.metrics.ScoringRuns.WithLabelValues("ok").Inc()
		})
	}
	pool.StopAndWait()

	result.Duration = time.Since(start)
	r.metrics.ScoringDuration.Observe(result.Duration.Seconds())
	r.metrics.ProtocolsScored.Set(float64(result.Scored))

	log.WithFields(map[string]interface{}{
		"scored":   result.Scored,
		"failed":   result.Failed,
		"degraded": result.Degraded,
		"duration": result.Duration,
	}).Info("Scoring pass completed")

	return &result, nil
}

// scoreProtocol computes and persists one protocol's scores
func (r *Runner) scoreProtocol(ctx context.Context, p *contracts.Protocol, cohortMonth time.Time, peerPS []float64) (*contracts.ScoreRecord, bool, error) {
	revenue, err := r.source.RevenueTable(ctx, p.ID, r.windowMonths)
	if err != nil {
		return nil, false, fmt.Errorf("revenue table: %w", err)
	}

	users, err := r.source.UserTable(ctx, p.ID, r.windowMonths)
	if err != nil {
		return nil, false, fmt.Errorf("user table: %w", err)
	}

	valuation, err := r.source.Valuation(ctx, p.ID)
	if err != nil {
		return nil, false, fmt.Errorf("valuation: %w", err)
	}

	ss, err := r.safety.SafetyScore(ctx, p.Name)
	if err != nil {
		// Safety is externally sourced and optional; degrade to neutral
		r.metrics.UpstreamErrors.WithLabelValues("certik").Inc()
		ss = nil
	}

	res := r.engine.Score(scoring.ScoreInput{
		Category:    p.Category,
		Revenue:     revenue,
		Users:       pickObservation(users, cohortMonth),
		Valuation:   *valuation,
		PeerPS:      peerPS,
		SafetyScore: ss,
	})

	if res.UGS.Degraded {
		r.metrics.DegradedUGS.Inc()
	}

	record := &contracts.ScoreRecord{
		ProtocolID: p.ID,
		ComputedAt: time.Now().UTC(),
		EQS:        res.EQS.Score,
		UGS:        res.UGS.Score,
		FVS:        res.FVS.Score,
		SS:         &res.SS,
		How3:       res.How3,
	}

	if err := r.sink.SaveScore(ctx, record); err != nil {
		return nil, false, fmt.Errorf("save score: %w", err)
	}

	if r.publisher != nil {
		r.publisher.PublishScore(record)
	}
	return record, res.UGS.Degraded, nil
}

// rankCohort recomputes percentile ranks for one (category, month) cohort
// and persists them.
func (r *Runner) rankCohort(ctx context.Context, category string, month time.Time) error {
	cohort, err := r.cohorts.UserCohort(ctx, category, month)
	if err != nil {
		return err
	}
	if len(cohort) == 0 {
		return nil
	}

	refs := make([]*contracts.UserObservation, len(cohort))
	for i := range cohort {
		refs[i] = &cohort[i]
	}
	scoring.RankCohort(refs)

	for _, obs := range refs {
		if err := r.percentiles.SavePercentiles(ctx, obs); err != nil {
			return err
		}
	}
	return nil
}

// peerPSRatios collects price-to-sales ratios per category for the FVS
// threshold fallback.
func (r *Runner) peerPSRatios(ctx context.Context, peerSets []contracts.CategoryPeerSet) map[string][]float64 {
	ratios := make(map[string][]float64, len(peerSets))
	for _, set := range peerSets {
		for _, p := range set.Protocols {
			if p.MarketCap == nil || *p.MarketCap <= 0 || p.AnnualRevenue <= 0 {
				continue
			}
			ratios[set.Category] = append(ratios[set.Category], *p.MarketCap/p.AnnualRevenue)
		}
	}
	return ratios
}

func (r *Runner) selectProtocols(ctx context.Context, ids []int64) ([]*contracts.Protocol, error) {
	all, err := r.catalog.ListProtocols(ctx)
	if err != nil {
		return nil, fmt.Errorf("list protocols: %w", err)
	}
	if len(ids) == 0 {
		return all, nil
	}

	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	var selected []*contracts.Protocol
	for _, p := range all {
		if want[p.ID] {
			selected = append(selected, p)
		}
	}
	return selected, nil
}

// groupByCategory assembles runtime peer sets
func groupByCategory(protocols []*contracts.Protocol) []contracts.CategoryPeerSet {
	byCategory := make(map[string][]*contracts.Protocol)
	var order []string
	for _, p := range protocols {
		if _, seen := byCategory[p.Category]; !seen {
			order = append(order, p.Category)
		}
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}

	sets := make([]contracts.CategoryPeerSet, 0, len(order))
	for _, category := range order {
		sets = append(sets, contracts.CategoryPeerSet{
			Category:  category,
			Protocols: byCategory[category],
		})
	}
	return sets
}

// latestCompleteMonth returns the first day of the most recent month whose
// data can be complete, i.e. the month before now.
func latestCompleteMonth(now time.Time) time.Time {
	return contracts.MonthStart(now).AddDate(0, -1, 0)
}

// pickObservation returns the observation for the ranked month, falling
// back to the most recent one.
func pickObservation(obs []contracts.UserObservation, month time.Time) *contracts.UserObservation {
	if len(obs) == 0 {
		return nil
	}

	var latest *contracts.UserObservation
	for i := range obs {
		if obs[i].Month.Equal(month) {
			return &obs[i]
		}
		if latest == nil || obs[i].Month.After(latest.Month) {
			latest = &obs[i]
		}
	}
	return latest
}
