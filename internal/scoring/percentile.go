package scoring

import "github.com/how3io/how3-backend/internal/contracts"

// PercentileRank returns x's rank within peers on a (0, 1] scale using the
// mid-rank convention: values strictly below count fully, ties count half.
// peers must include x's own value. A cohort of one ranks 1.0.
func PercentileRank(peers []float64, x float64) float64 {
	if len(peers) == 0 {
		return 0
	}
	if len(peers) == 1 {
		return 1.0
	}

	below, equal := 0, 0
	for _, p := range peers {
		switch {
		case p < x:
			below++
		case p == x:
			equal++
		}
	}
	return (float64(below) + 0.5*float64(equal)) / float64(len(peers))
}

// RankCohort computes percentile ranks for every user metric across a
// category cohort and stores them on the observations in place. Protocols
// missing a metric neither rank nor count toward peers for that metric.
func RankCohort(cohort []*contracts.UserObservation) {
	for _, metric := range contracts.UserMetrics {
		peers := make([]float64, 0, len(cohort))
		for _, obs := range cohort {
			if v := obs.Value(metric); v > 0 {
				peers = append(peers, v)
			}
		}
		if len(peers) == 0 {
			continue
		}
		for _, obs := range cohort {
			if v := obs.Value(metric); v > 0 {
				obs.SetPercentile(metric, PercentileRank(peers, v))
			}
		}
	}
}
