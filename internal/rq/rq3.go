package rq

import (
	"fmt"
	"strconv"

	"prmetrics/domain/metrics"
	"prmetrics/domain/record"
	"prmetrics/internal/compare"
)

const (
	closedLoop = "closed-loop"
	openLoop   = "open-loop"
)

// RQ3 looks for a closed-loop bias on AI-authored pull requests: whether
// outcomes differ when the coding agent and the review bot come from the same
// provider. The grouping dimension is the loop type; the merge rate is
// compared as a proportion via chi-square, the continuous metrics via the
// rank-based test.
type RQ3 struct {
	cmp *compare.Comparator
}

// NewRQ3 creates the RQ3 driver.
func NewRQ3(cmp *compare.Comparator) *RQ3 {
	return &RQ3{cmp: cmp}
}

func (d *RQ3) Name() string      { return "rq3" }
func (d *RQ3) TableName() string { return "rq3_data" }

func (d *RQ3) Schema() record.Schema {
	return record.Schema{
		LabelColumns: []string{"loop_type"},
		ValueColumns: []string{"review_duration_hours", "n_comments", "merged"},
	}
}

func (d *RQ3) specs() []metrics.MetricSpec {
	return []metrics.MetricSpec{
		{Name: "review_duration_hours", SourceColumn: "review_duration_hours", Derivation: metrics.DeriveIdentity},
		{Name: "n_comments", SourceColumn: "n_comments", Derivation: metrics.DeriveIdentity},
	}
}

// Run computes the closed-loop vs open-loop comparisons.
func (d *RQ3) Run(tbl *record.Table) (*Output, error) {
	if err := requireColumns(tbl, []string{"loop_type"}, []string{"review_duration_hours", "n_comments", "merged"}); err != nil {
		return nil, err
	}

	table := &metrics.ResultTable{
		RQ:         d.Name(),
		Alpha:      d.cmp.Alpha,
		Correction: d.cmp.Correction,
	}

	for _, spec := range d.specs() {
		samples := buildSamples(tbl, spec, "loop_type")
		table.Rows = append(table.Rows, d.cmp.Compare(spec.Name, "loop_type", samples)...)
	}

	mergedSpec := metrics.MetricSpec{Name: "merge_rate", SourceColumn: "merged", Derivation: metrics.DeriveIdentity}
	merged := buildSamples(tbl, mergedSpec, "loop_type")
	table.Rows = append(table.Rows, d.cmp.CompareProportions("merge_rate", "loop_type", closedLoop, openLoop, merged[closedLoop], merged[openLoop]))
	table.Sort()

	return &Output{
		Table:  table,
		Extras: []metrics.SupplementaryTable{d.summary(tbl, table)},
	}, nil
}

// summary condenses the loop comparison into the per-metric overview the
// report quotes: group medians, p-value and effect size side by side, plus
// the closed-loop share of all AI PRs.
func (d *RQ3) summary(tbl *record.Table, table *metrics.ResultTable) metrics.SupplementaryTable {
	t := metrics.SupplementaryTable{
		Name:   "rq3_summary",
		Header: []string{"metric", "closed_loop", "open_loop", "p_value", "effect_size"},
	}

	nClosed, nOpen := 0, 0
	for _, rec := range tbl.Records {
		switch rec.Label("loop_type") {
		case closedLoop:
			nClosed++
		case openLoop:
			nOpen++
		}
	}
	total := nClosed + nOpen
	proportion := 0.0
	if total > 0 {
		proportion = float64(nClosed) / float64(total)
	}
	t.Rows = append(t.Rows, []string{
		"closed_loop_proportion",
		fmt.Sprintf("%.4f", proportion), "", "", "",
	})
	t.Rows = append(t.Rows, []string{
		"group_counts",
		strconv.Itoa(nClosed), strconv.Itoa(nOpen), "", "",
	})

	for _, row := range table.Rows {
		if row.GroupA != closedLoop || row.GroupB != openLoop {
			continue
		}
		medA, medB := "", ""
		if row.StatsA != nil {
			if row.Metric == "merge_rate" {
				medA = fmt.Sprintf("%.4f", row.StatsA.Mean)
			} else {
				medA = fmt.Sprintf("%.4f", row.StatsA.Median)
			}
		}
		if row.StatsB != nil {
			if row.Metric == "merge_rate" {
				medB = fmt.Sprintf("%.4f", row.StatsB.Mean)
			} else {
				medB = fmt.Sprintf("%.4f", row.StatsB.Median)
			}
		}
		pv, effect := "", ""
		if row.Testable {
			pv = fmt.Sprintf("%.4f", row.PValue)
		}
		if row.EffectDefined {
			effect = fmt.Sprintf("%.4f (%s)", row.EffectSize, row.Magnitude)
		}
		t.Rows = append(t.Rows, []string{row.Metric, medA, medB, pv, effect})
	}
	return t
}
