package scoring

import (
	"fmt"
	"math"

	"github.com/how3io/how3-backend/internal/contracts"
)

// PSRange is a price-to-sales threshold pair for fair value scoring.
// Ratios at or below Undervalued score 100, at or above Overvalued score 0.
type PSRange struct {
	Undervalued float64
	Overvalued  float64
}

// Valid reports whether the range is usable
func (r PSRange) Valid() bool {
	return r.Undervalued > 0 && r.Overvalued > r.Undervalued
}

// CompositeWeights are the How3 composite blend weights
type CompositeWeights struct {
	EQS float64
	UGS float64
	FVS float64
	SS  float64
}

// Sum returns the total weight
func (w CompositeWeights) Sum() float64 {
	return w.EQS + w.UGS + w.FVS + w.SS
}

// Config holds every weight and threshold the engine uses. It is passed
// explicitly so the same process can score under different weight regimes
// without cross-talk; nothing in the engine reads ambient state.
type Config struct {
	// EQS quality blend (must sum to 1)
	StabilityWeight       float64
	DiversificationWeight float64

	// Reference monthly revenue for magnitude scaling, with optional
	// per-category overrides.
	MagnitudeReference          float64
	CategoryMagnitudeReferences map[string]float64

	// UGS metric weights (must sum to 1)
	UserMetricWeights map[contracts.UserMetric]float64

	// FVS thresholds per category. Unconfigured categories fall back to a
	// band around the peer median P/S ratio, then to the default pair.
	FVSThresholds        map[string]PSRange
	DefaultFVSThresholds PSRange

	// Composite blend
	Composite CompositeWeights

	// NeutralSafetyScore substitutes a missing safety score
	NeutralSafetyScore float64
}

// DefaultConfig returns the canonical production weights
func DefaultConfig() Config {
	return Config{
		StabilityWeight:       0.7,
		DiversificationWeight: 0.3,

		MagnitudeReference: 5_000_000, // $5M monthly revenue reference
		CategoryMagnitudeReferences: map[string]float64{
			"L1":       20_000_000,
			"Exchange": 10_000_000,
		},

		UserMetricWeights: map[contracts.UserMetric]float64{
			contracts.MetricActiveAddresses:   0.4,
			contracts.MetricTransactionCount:  0.3,
			contracts.MetricTransactionVolume: 0.3,
		},

		FVSThresholds: map[string]PSRange{
			"DEX":      {Undervalued: 12.5, Overvalued: 50},
			"Lending":  {Undervalued: 15, Overvalued: 60},
			"Oracle":   {Undervalued: 20, Overvalued: 80},
			"L1":       {Undervalued: 25, Overvalued: 100},
			"L2":       {Undervalued: 22.5, Overvalued: 90},
			"Staking":  {Undervalued: 17.5, Overvalued: 70},
			"Currency": {Undervalued: 30, Overvalued: 120},
			"Exchange": {Undervalued: 10, Overvalued: 40},
			"Yield":    {Undervalued: 14, Overvalued: 56},
		},
		DefaultFVSThresholds: PSRange{Undervalued: 5, Overvalued: 50},

		Composite: CompositeWeights{EQS: 0.25, UGS: 0.25, FVS: 0.25, SS: 0.25},

		NeutralSafetyScore: 50,
	}
}

// Validate checks weight invariants
func (c Config) Validate() error {
	if math.Abs(c.StabilityWeight+c.DiversificationWeight-1) > 1e-9 {
		return fmt.Errorf("stability and diversification weights must sum to 1, got %.4f",
			c.StabilityWeight+c.DiversificationWeight)
	}

	var userSum float64
	for _, m := range contracts.UserMetrics {
		w, ok := c.UserMetricWeights[m]
		if !ok {
			return fmt.Errorf("missing user metric weight for %s", m)
		}
		if w < 0 {
			return fmt.Errorf("negative user metric weight for %s", m)
		}
		userSum += w
	}
	if math.Abs(userSum-1) > 1e-9 {
		return fmt.Errorf("user metric weights must sum to 1, got %.4f", userSum)
	}

	if c.MagnitudeReference <= 0 {
		return fmt.Errorf("magnitude reference must be positive")
	}

	if c.Composite.Sum() <= 0 {
		return fmt.Errorf("composite weights must have a positive sum")
	}

	return nil
}

// magnitudeReference resolves the reference revenue for a category
func (c Config) magnitudeReference(category string) float64 {
	if ref, ok := c.CategoryMagnitudeReferences[category]; ok && ref > 0 {
		return ref
	}
	return c.MagnitudeReference
}
