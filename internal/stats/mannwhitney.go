package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// Exact null distribution is enumerated up to this per-group size when no
// ties are present; beyond it (or with ties) the tie-corrected normal
// approximation is used.
const exactGroupLimit = 8

// MannWhitneyResult holds the two-sample rank test outcome.
type MannWhitneyResult struct {
	U      float64 // U statistic of the first sample
	P      float64 // two-sided p-value
	Method string  // "exact" or "normal"
}

// MannWhitneyU runs the two-sided Mann-Whitney U test between two independent
// samples, handling tied values via midranks. Returns ok=false when either
// sample has fewer than 2 observations: the pair is not testable.
// The p-value depends only on sample membership, never on observation order.
func MannWhitneyU(a, b []float64) (MannWhitneyResult, bool) {
	n1, n2 := len(a), len(b)
	if n1 < 2 || n2 < 2 {
		return MannWhitneyResult{}, false
	}

	ranks, tieTerm, hasTies := midranks(a, b)

	// Rank sum of the first sample; ranks holds a's ranks first.
	r1 := 0.0
	for i := 0; i < n1; i++ {
		r1 += ranks[i]
	}
	u1 := r1 - float64(n1)*float64(n1+1)/2

	if !hasTies && n1 <= exactGroupLimit && n2 <= exactGroupLimit {
		return MannWhitneyResult{U: u1, P: exactTwoSidedP(u1, n1, n2), Method: "exact"}, true
	}

	mu := float64(n1) * float64(n2) / 2
	nTot := float64(n1 + n2)
	variance := float64(n1) * float64(n2) / 12 * ((nTot + 1) - tieTerm/(nTot*(nTot-1)))
	if variance <= 0 {
		// Every observation tied: no evidence of difference.
		return MannWhitneyResult{U: u1, P: 1.0, Method: "normal"}, true
	}

	// Continuity-corrected z against the standard normal.
	z := (math.Abs(u1-mu) - 0.5) / math.Sqrt(variance)
	if z < 0 {
		z = 0
	}
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	p := 2 * (1 - norm.CDF(z))
	if p > 1 {
		p = 1
	}
	return MannWhitneyResult{U: u1, P: p, Method: "normal"}, true
}

// midranks ranks the pooled samples with tied values receiving the average of
// their rank positions. Returns the ranks (a's observations first, in input
// order), the tie correction term sum(t^3 - t), and whether ties occurred.
func midranks(a, b []float64) (ranks []float64, tieTerm float64, hasTies bool) {
	n := len(a) + len(b)
	type obs struct {
		value float64
		index int
	}
	pooled := make([]obs, 0, n)
	for i, v := range a {
		pooled = append(pooled, obs{value: v, index: i})
	}
	for i, v := range b {
		pooled = append(pooled, obs{value: v, index: len(a) + i})
	}
	sort.Slice(pooled, func(i, j int) bool { return pooled[i].value < pooled[j].value })

	ranks = make([]float64, n)
	i := 0
	for i < n {
		j := i + 1
		for j < n && pooled[j].value == pooled[i].value {
			j++
		}
		t := j - i
		if t > 1 {
			hasTies = true
			tf := float64(t)
			tieTerm += tf*tf*tf - tf
		}
		avgRank := float64(i+1+j) / 2 // average of ranks i+1 .. j
		for k := i; k < j; k++ {
			ranks[pooled[k].index] = avgRank
		}
		i = j
	}
	return ranks, tieTerm, hasTies
}

// exactTwoSidedP computes the exact two-sided p-value of U for tie-free
// samples by enumerating the null distribution.
func exactTwoSidedP(u1 float64, n1, n2 int) float64 {
	maxU := n1 * n2
	u2 := float64(maxU) - u1
	uMin := int(math.Min(u1, u2))

	counts := uCountTable(n1, n2)
	total := 0.0
	for _, c := range counts {
		total += c
	}
	cum := 0.0
	for u := 0; u <= uMin && u < len(counts); u++ {
		cum += counts[u]
	}
	p := 2 * cum / total
	if p > 1 {
		p = 1
	}
	return p
}

// uCountTable returns the number of rank arrangements yielding each U value,
// via the standard recurrence f(m,n,u) = f(m-1,n,u-n) + f(m,n-1,u).
func uCountTable(n1, n2 int) []float64 {
	maxU := n1 * n2
	// prev[n][u] for m fixed; roll over m.
	cur := make([][]float64, n2+1)
	for n := 0; n <= n2; n++ {
		cur[n] = make([]float64, maxU+1)
		cur[n][0] = 1 // m = 0
	}
	for m := 1; m <= n1; m++ {
		next := make([][]float64, n2+1)
		for n := 0; n <= n2; n++ {
			next[n] = make([]float64, maxU+1)
			for u := 0; u <= maxU; u++ {
				v := 0.0
				if u-n >= 0 {
					v += cur[n][u-n]
				}
				if n > 0 {
					v += next[n-1][u]
				}
				next[n][u] = v
			}
		}
		cur = next
	}
	return cur[n2]
}
