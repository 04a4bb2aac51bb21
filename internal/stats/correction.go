package stats

import (
	"sort"

	"prmetrics/domain/metrics"
)

// AdjustPValues applies a multiple-comparison correction across one family of
// raw p-values and returns corrected values in the input order. Both methods
// are monotone: every corrected value is >= its raw value and capped at 1.
func AdjustPValues(method metrics.CorrectionMethod, raw []float64) []float64 {
	switch method {
	case metrics.CorrectionBonferroni:
		return bonferroni(raw)
	default:
		return benjaminiHochberg(raw)
	}
}

func bonferroni(raw []float64) []float64 {
	m := float64(len(raw))
	out := make([]float64, len(raw))
	for i, p := range raw {
		q := p * m
		if q > 1 {
			q = 1
		}
		out[i] = q
	}
	return out
}

// benjaminiHochberg computes BH step-up adjusted p-values:
// q_(i) = min over j>=i of p_(j) * m/j, capped at 1.
func benjaminiHochberg(raw []float64) []float64 {
	m := len(raw)
	out := make([]float64, m)
	if m == 0 {
		return out
	}

	order := make([]int, m)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return raw[order[i]] < raw[order[j]] })

	running := 1.0
	for i := m - 1; i >= 0; i-- {
		idx := order[i]
		rank := i + 1
		q := raw[idx] * float64(m) / float64(rank)
		if q < running {
			running = q
		}
		out[idx] = running
	}
	return out
}
