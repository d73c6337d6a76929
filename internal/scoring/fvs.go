package scoring

import "github.com/how3io/how3-backend/internal/contracts"

// FVSResult carries the fair value score. PSRatio is nil when market cap or
// annual revenue was missing or non-positive; Insufficient marks the neutral
// fallback score that results.
type FVSResult struct {
	Score        *float64
	PSRatio      *float64
	Insufficient bool
}

// fvsNeutral is the score assigned when the P/S ratio cannot be computed.
// A valuation gap should not drag the composite either way.
const fvsNeutral = 50.0

// FVS computes the Fair Value Score from a valuation snapshot by comparing
// the price-to-sales ratio against the category's threshold pair. Ratios at
// or below the undervalued bound score 100, at or above the overvalued
// bound score 0, linear in between. peerPS holds the category cohort's P/S
// ratios and backs threshold derivation for unconfigured categories.
func (e *Engine) FVS(v contracts.ValuationSnapshot, category string, peerPS []float64) FVSResult {
	if v.MarketCap == nil || *v.MarketCap <= 0 || v.AnnualRevenue <= 0 {
		score := fvsNeutral
		return FVSResult{Score: &score, Insufficient: true}
	}

	ps := *v.MarketCap / v.AnnualRevenue
	bounds := e.thresholds(category, peerPS)

	var score float64
	switch {
	case ps <= bounds.Undervalued:
		score = 100
	case ps >= bounds.Overvalued:
		score = 0
	default:
		score = 100 * (bounds.Overvalued - ps) / (bounds.Overvalued - bounds.Undervalued)
	}

	score = round2(score)
	return FVSResult{Score: &score, PSRatio: &ps}
}

// thresholds resolves the P/S threshold pair for a category: configured
// pair first, then a band around the peer median, then the default pair.
func (e *Engine) thresholds(category string, peerPS []float64) PSRange {
	if r, ok := e.cfg.FVSThresholds[category]; ok {
		return r
	}
	if len(peerPS) >= 2 {
		if med := median(peerPS); med > 0 {
			return PSRange{Undervalued: 0.5 * med, Overvalued: 2 * med}
		}
	}
	return e.cfg.DefaultFVSThresholds
}
