package scoring

import "github.com/how3io/how3-backend/internal/contracts"

// Composite combines the four sub-scores into the overall How3 score as a
// weighted average over the sub-scores that are present; the weights of
// missing sub-scores redistribute proportionally. Returns nil when every
// sub-score is nil.
func (e *Engine) Composite(eqs, ugs, fvs, ss *float64) *float64 {
	w := e.cfg.Composite

	var sum, totalWeight float64
	for _, part := range []struct {
		score  *float64
		weight float64
	}{
		{eqs, w.EQS},
		{ugs, w.UGS},
		{fvs, w.FVS},
		{ss, w.SS},
	} {
		if part.score == nil {
			continue
		}
		sum += part.weight * *part.score
		totalWeight += part.weight
	}

	if totalWeight == 0 {
		return nil
	}

	score := round1(sum / totalWeight)
	return &score
}

// ScoreInput bundles everything the engine needs to score one protocol.
type ScoreInput struct {
	Category    string
	Revenue     []contracts.RevenueObservation
	Users       *contracts.UserObservation
	Valuation   contracts.ValuationSnapshot
	PeerPS      []float64
	SafetyScore *float64 // externally sourced; nil falls back to neutral
}

// ScoreResult is the engine's full output for one protocol.
type ScoreResult struct {
	EQS  EQSResult
	UGS  UGSResult
	FVS  FVSResult
	SS   float64
	How3 *float64
}

// Score evaluates a protocol end to end from its metric tables. The
// percentile ranks on in.Users must already be set by RankCohort; the
// engine has no cohort visibility of its own.
func (e *Engine) Score(in ScoreInput) ScoreResult {
	eqs := e.EQS(in.Revenue, in.Category)
	ugs := e.UGS(in.Users)
	fvs := e.FVS(in.Valuation, in.Category, in.PeerPS)

	ss := e.cfg.NeutralSafetyScore
	if in.SafetyScore != nil {
		ss = *in.SafetyScore
	}

	how3 := e.Composite(eqs.Score, ugs.Score, fvs.Score, &ss)

	return ScoreResult{
		EQS:  eqs,
		UGS:  ugs,
		FVS:  fvs,
		SS:   ss,
		How3: how3,
	}
}
