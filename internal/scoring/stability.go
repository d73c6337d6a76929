package scoring

import "math"

// stabilityDefault is returned when no month-over-month history exists.
// Absence of data must not read as "unstable".
const stabilityDefault = 50.0

// Stability scores month-over-month revenue volatility on a 0-100 scale.
// Input is the trailing window of mom_change values, nil entries marking
// months without a prior observation. Zero volatility scores 100; an
// average absolute swing of 100% or more scores 0.
func (e *Engine) Stability(changes []*float64) float64 {
	abs := make([]float64, 0, len(changes))
	for _, c := range changes {
		if c == nil {
			continue
		}
		abs = append(abs, math.Abs(*c))
	}

	if len(abs) == 0 {
		return stabilityDefault
	}

	volatility := mean(abs)
	return clamp(100-100*volatility, 0, 100)
}
