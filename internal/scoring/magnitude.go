package scoring

import "math"

// magnitudeFloor is returned for non-positive revenue. A small floor
// rather than zero, so a momentary ingestion gap does not wipe out the
// composite through the multiplicative EQS dampener.
const magnitudeFloor = 10.0

// Magnitude scores absolute monthly revenue on a 0-100 scale via
// logarithmic scaling against the category's reference revenue.
// Revenue equal to the reference scores exactly 100.
func (e *Engine) Magnitude(revenue float64, category string) float64 {
	if revenue <= 0 {
		return magnitudeFloor
	}

	ref := e.cfg.magnitudeReference(category)
	score := 100 * math.Log(revenue+1) / math.Log(ref+1)
	return clamp(score, 0, 100)
}
