package compare

import (
	"sort"

	"prmetrics/domain/metrics"
	"prmetrics/internal/stats"
)

// Comparator orchestrates descriptive statistics, effect size estimation and
// significance testing across all pairwise group comparisons for one metric.
// It is stateless and never mutates input samples.
type Comparator struct {
	Alpha      float64
	Correction metrics.CorrectionMethod
}

// New creates a comparator with the given significance threshold and
// correction method.
func New(alpha float64, correction metrics.CorrectionMethod) *Comparator {
	return &Comparator{Alpha: alpha, Correction: correction}
}

// Compare enumerates all unordered pairs of group labels in fixed lexical
// order and assembles one result row per pair. Pairs where a group has no
// valid observations are recorded as insufficient, never silently dropped.
// The multiple-comparison correction is applied across the family of
// testable pairs of this one metric.
func (c *Comparator) Compare(metric, dimension string, samples map[string][]float64) []metrics.ComparisonResult {
	groups := make([]string, 0, len(samples))
	for g := range samples {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	rows := make([]metrics.ComparisonResult, 0, len(groups)*(len(groups)-1)/2)
	for i := 0; i < len(groups); i++ {
		for j := i + 1; j < len(groups); j++ {
			rows = append(rows, c.comparePair(metric, dimension, groups[i], groups[j], samples[groups[i]], samples[groups[j]]))
		}
	}

	c.applyCorrection(rows)
	return rows
}

// comparePair builds one comparison row. Degraded pairs (fewer than 2
// observations on either side) are flagged insufficient, never dropped.
func (c *Comparator) comparePair(metric, dimension, groupA, groupB string, a, b []float64) metrics.ComparisonResult {
	row := metrics.ComparisonResult{
		Metric:    metric,
		Dimension: dimension,
		GroupA:    groupA,
		GroupB:    groupB,
		NA:        len(a),
		NB:        len(b),
		Magnitude: metrics.MagnitudeUndefined,
		Test:      metrics.TestNone,
		Status:    metrics.StatusOK,
	}

	if statsA, ok := stats.Describe(a); ok {
		row.StatsA = &statsA
	}
	if statsB, ok := stats.Describe(b); ok {
		row.StatsB = &statsB
	}

	if delta, ok := stats.CliffsDelta(a, b); ok {
		row.EffectSize = delta
		row.EffectDefined = true
		row.Magnitude = stats.DeltaMagnitude(delta)
	}

	mw, ok := stats.MannWhitneyU(a, b)
	if !ok {
		row.Status = metrics.StatusInsufficient
		return row
	}
	row.Test = metrics.TestMannWhitney
	row.Statistic = mw.U
	row.PValue = mw.P
	row.Testable = true
	return row
}

// applyCorrection adjusts p-values across the testable rows of one family
// and sets the significance flag against the configured alpha.
func (c *Comparator) applyCorrection(rows []metrics.ComparisonResult) {
	idx := make([]int, 0, len(rows))
	raw := make([]float64, 0, len(rows))
	for i := range rows {
		if rows[i].Testable {
			idx = append(idx, i)
			raw = append(raw, rows[i].PValue)
		}
	}
	if len(raw) == 0 {
		return
	}
	corrected := stats.AdjustPValues(c.Correction, raw)
	for k, i := range idx {
		rows[i].PCorrected = corrected[k]
		rows[i].Significant = corrected[k] < c.Alpha
	}
}

// CompareProportions emits a single comparison row for a binary outcome
// across two groups, tested with the chi-square test of independence. The
// samples hold 0/1 outcomes; descriptive means double as group rates.
func (c *Comparator) CompareProportions(metric, dimension, groupA, groupB string, a, b []float64) metrics.ComparisonResult {
	row := metrics.ComparisonResult{
		Metric:    metric,
		Dimension: dimension,
		GroupA:    groupA,
		GroupB:    groupB,
		NA:        len(a),
		NB:        len(b),
		Magnitude: metrics.MagnitudeUndefined,
		Test:      metrics.TestNone,
		Status:    metrics.StatusOK,
	}

	if statsA, ok := stats.Describe(a); ok {
		row.StatsA = &statsA
	}
	if statsB, ok := stats.Describe(b); ok {
		row.StatsB = &statsB
	}
	if len(a) < 2 || len(b) < 2 {
		row.Status = metrics.StatusInsufficient
		return row
	}

	observed := [][]float64{
		{countEq(a, 0), countEq(a, 1)},
		{countEq(b, 0), countEq(b, 1)},
	}
	cs, ok := stats.ChiSquareIndependence(observed)
	if !ok {
		// One outcome level absent entirely, e.g. every record merged.
		row.Status = metrics.StatusInsufficient
		return row
	}
	row.Test = metrics.TestChiSquare
	row.Statistic = cs.Chi2
	row.PValue = cs.P
	// Single-test family: the correction leaves the p-value unchanged.
	row.PCorrected = stats.AdjustPValues(c.Correction, []float64{cs.P})[0]
	row.Testable = true
	row.Significant = row.PCorrected < c.Alpha
	return row
}

func countEq(values []float64, target float64) float64 {
	n := 0.0
	for _, v := range values {
		if v == target {
			n++
		}
	}
	return n
}
