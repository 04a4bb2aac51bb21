package stats

import (
	"math"
	"sort"

	"prmetrics/domain/metrics"
)

// Magnitude thresholds for |delta|, after Romano et al.
const (
	deltaNegligible = 0.147
	deltaSmall      = 0.33
	deltaMedium     = 0.474
)

// Below this combined size the direct pairwise count is used; the merge-based
// path takes over for anything larger. Both paths are verified equivalent in
// tests.
const directCountThreshold = 64

// CliffsDelta computes Cliff's delta between two independent samples:
// delta = (#(a>b) - #(a<b)) / (nA*nB), ties contributing zero.
// Returns ok=false when either sample is empty: an undefined effect must not
// be read as "no effect".
func CliffsDelta(a, b []float64) (float64, bool) {
	nA, nB := len(a), len(b)
	if nA == 0 || nB == 0 {
		return 0, false
	}
	if nA+nB <= directCountThreshold {
		return cliffsDeltaDirect(a, b), true
	}
	return cliffsDeltaMerge(a, b), true
}

// cliffsDeltaDirect counts all nA*nB pairs. Only tractable for small samples.
func cliffsDeltaDirect(a, b []float64) float64 {
	dominance := 0
	for _, x := range a {
		for _, y := range b {
			switch {
			case x > y:
				dominance++
			case x < y:
				dominance--
			}
		}
	}
	return float64(dominance) / float64(len(a)*len(b))
}

// cliffsDeltaMerge computes the same dominance count in O(n log n) by walking
// sorted copies of both samples instead of materializing the pairs.
func cliffsDeltaMerge(a, b []float64) float64 {
	sa := make([]float64, len(a))
	copy(sa, a)
	sort.Float64s(sa)
	sb := make([]float64, len(b))
	copy(sb, b)
	sort.Float64s(sb)

	// For each x in sa (ascending): lt = #(b < x), le = #(b <= x).
	// x dominates lt pairs and is dominated by len(b)-le pairs.
	dominance := int64(0)
	lt, le := 0, 0
	for _, x := range sa {
		for lt < len(sb) && sb[lt] < x {
			lt++
		}
		if le < lt {
			le = lt
		}
		for le < len(sb) && sb[le] <= x {
			le++
		}
		dominance += int64(lt) - int64(len(sb)-le)
	}
	return float64(dominance) / (float64(len(a)) * float64(len(b)))
}

// DeltaMagnitude classifies |delta| by the fixed thresholds.
func DeltaMagnitude(delta float64) metrics.Magnitude {
	abs := math.Abs(delta)
	switch {
	case abs < deltaNegligible:
		return metrics.MagnitudeNegligible
	case abs < deltaSmall:
		return metrics.MagnitudeSmall
	case abs < deltaMedium:
		return metrics.MagnitudeMedium
	default:
		return metrics.MagnitudeLarge
	}
}
