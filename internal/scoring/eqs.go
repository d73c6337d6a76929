package scoring

import (
	"github.com/how3io/how3-backend/internal/contracts"
)

// EQSResult carries the earnings quality score with its components for
// reporting. Score is nil when the revenue table was empty.
type EQSResult struct {
	Score           *float64
	Stability       float64
	Diversification *float64 // nil with fewer than two revenue sources
	Magnitude       float64
}

// EQS computes the Earnings Quality Score from a protocol's revenue table.
// Stability and diversification blend into a quality score which magnitude
// then dampens multiplicatively, so perfect revenue quality at negligible
// absolute revenue still scores near zero.
func (e *Engine) EQS(obs []contracts.RevenueObservation, category string) EQSResult {
	if len(obs) == 0 {
		return EQSResult{}
	}

	// Month-over-month changes pooled across sources
	changes := make([]*float64, 0, len(obs))
	for i := range obs {
		changes = append(changes, obs[i].MoMChange)
	}
	stability := e.Stability(changes)

	latestFees := latestMonthFeesBySource(obs)

	var diversification *float64
	if len(latestFees) > 1 {
		d := e.Diversification(latestFees)
		diversification = &d
	}

	var totalRevenue float64
	for _, f := range latestFees {
		totalRevenue += f
	}
	magnitude := e.Magnitude(totalRevenue, category)

	quality := e.cfg.StabilityWeight * stability
	if diversification != nil {
		quality += e.cfg.DiversificationWeight * *diversification
	} else {
		// Only stability available; it carries the full weight
		quality = stability
	}

	score := round2(quality * magnitude / 100)

	return EQSResult{
		Score:           &score,
		Stability:       stability,
		Diversification: diversification,
		Magnitude:       magnitude,
	}
}

// latestMonthFeesBySource groups the most recent month's fees by source
func latestMonthFeesBySource(obs []contracts.RevenueObservation) map[string]float64 {
	if len(obs) == 0 {
		return nil
	}

	latest := obs[0].Month
	for i := range obs {
		if obs[i].Month.After(latest) {
			latest = obs[i].Month
		}
	}

	fees := make(map[string]float64)
	for i := range obs {
		if obs[i].Month.Equal(latest) {
			fees[obs[i].Source] += obs[i].TotalFees
		}
	}
	return fees
}
