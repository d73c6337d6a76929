package scoring

// Diversification scores the spread of the most recent month's revenue
// across sources on a 0-100 scale, as 50 times the coefficient of
// variation of per-source fees (sample standard deviation over mean),
// capped at 100.
//
// Note: a higher coefficient of variation means the sources are *unevenly*
// sized, yet the metric is named "diversification" and scaled this way in
// the production formula. Preserved verbatim pending product review; see
// DESIGN.md.
func (e *Engine) Diversification(feesBySource map[string]float64) float64 {
	if len(feesBySource) <= 1 {
		return 0
	}

	fees := make([]float64, 0, len(feesBySource))
	for _, f := range feesBySource {
		fees = append(fees, f)
	}

	m := mean(fees)
	if m <= 0 {
		// All sources reporting zero revenue; avoid dividing by zero
		return 0
	}

	cv := stdDev(fees) / m
	return clamp(50*cv, 0, 100)
}
