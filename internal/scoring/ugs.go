package scoring

import (
	"math"

	"github.com/how3io/how3-backend/internal/contracts"
)

// UGSResult carries the user growth score with per-metric components.
// Score is nil when no user metric had data. Degraded marks scores computed
// without percentile ranks, falling back to absolute log scaling.
type UGSResult struct {
	Score      *float64
	Degraded   bool
	Components map[contracts.UserMetric]float64
}

// UGS computes the User Growth Score from a protocol's latest user metric
// observation. Each available metric contributes a percentile component and,
// when growth data exists, a growth component; metric weights renormalize
// over the metrics that actually have data.
func (e *Engine) UGS(obs *contracts.UserObservation) UGSResult {
	if obs == nil {
		return UGSResult{}
	}

	components := make(map[contracts.UserMetric]float64)
	degraded := false

	var weighted, totalWeight float64
	for _, metric := range contracts.UserMetrics {
		value := obs.Value(metric)
		if value <= 0 {
			continue
		}

		var ps float64
		if rank := obs.Percentile(metric); rank != nil {
			ps = *rank * 100
		} else {
			// No cohort ranking available; score the raw magnitude
			ps = degradedScore(value)
			degraded = true
		}

		component := ps
		if growth := obs.Growth(metric); growth != nil {
			gs := 50 + clamp(*growth, -1, 1)*50
			component = (ps + gs) / 2
		}

		components[metric] = component
		w := e.cfg.UserMetricWeights[metric]
		weighted += w * component
		totalWeight += w
	}

	if totalWeight == 0 {
		return UGSResult{}
	}

	score := round2(weighted / totalWeight)
	return UGSResult{
		Score:      &score,
		Degraded:   degraded,
		Components: components,
	}
}

// degradedScore maps an absolute metric value to 0-100 on a log10 scale:
// 10 scores 25, 10,000 scores 100.
func degradedScore(value float64) float64 {
	if value <= 0 {
		return 0
	}
	return clamp(25*math.Log10(value), 0, 100)
}
