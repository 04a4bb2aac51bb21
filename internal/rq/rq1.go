package rq

import (
	"sort"
	"strconv"

	"prmetrics/domain/metrics"
	"prmetrics/domain/record"
	"prmetrics/internal/compare"
)

// RQ1 compares review outcomes between AI-authored and human-authored pull
// requests: how long review takes, how much discussion it generates, and how
// dense that discussion is over the review window. The primary grouping
// dimension is contribution origin; reviewer type is a secondary split.
type RQ1 struct {
	cmp *compare.Comparator
}

// NewRQ1 creates the RQ1 driver.
func NewRQ1(cmp *compare.Comparator) *RQ1 {
	return &RQ1{cmp: cmp}
}

func (d *RQ1) Name() string      { return "rq1" }
func (d *RQ1) TableName() string { return "rq1_data" }

func (d *RQ1) Schema() record.Schema {
	return record.Schema{
		LabelColumns: []string{"author_type", "reviewer_type"},
		ValueColumns: []string{"review_duration_hours", "n_comments"},
	}
}

func (d *RQ1) specs() []metrics.MetricSpec {
	return []metrics.MetricSpec{
		{Name: "review_duration_hours", SourceColumn: "review_duration_hours", Derivation: metrics.DeriveIdentity},
		{Name: "n_comments", SourceColumn: "n_comments", Derivation: metrics.DeriveIdentity},
		{Name: "comments_per_hour", SourceColumn: "n_comments", Derivation: metrics.DeriveRate, DenomColumn: "review_duration_hours"},
	}
}

// Run computes all RQ1 comparisons. The rate metric is only compared across
// contribution origin; the raw metrics are additionally split by reviewer
// type.
func (d *RQ1) Run(tbl *record.Table) (*Output, error) {
	if err := requireColumns(tbl, []string{"author_type"}, []string{"review_duration_hours", "n_comments"}); err != nil {
		return nil, err
	}

	table := &metrics.ResultTable{
		RQ:         d.Name(),
		Alpha:      d.cmp.Alpha,
		Correction: d.cmp.Correction,
	}

	for _, spec := range d.specs() {
		samples := buildSamples(tbl, spec, "author_type")
		table.Rows = append(table.Rows, d.cmp.Compare(spec.Name, "author_type", samples)...)

		if spec.Derivation == metrics.DeriveIdentity && tbl.HasLabelColumn("reviewer_type") {
			samples = buildSamples(tbl, spec, "reviewer_type")
			table.Rows = append(table.Rows, d.cmp.Compare(spec.Name, "reviewer_type", samples)...)
		}
	}
	table.Sort()

	return &Output{
		Table:  table,
		Extras: []metrics.SupplementaryTable{d.groupSizes(tbl)},
	}, nil
}

// groupSizes reports how many records each grouping label holds, per
// dimension, so the report can show cohort composition next to the tests.
func (d *RQ1) groupSizes(tbl *record.Table) metrics.SupplementaryTable {
	type key struct{ dim, group string }
	counts := make(map[key]int)
	for _, rec := range tbl.Records {
		for _, dim := range []string{"author_type", "reviewer_type"} {
			if g := rec.Label(dim); g != "" {
				counts[key{dim, g}]++
			}
		}
	}

	keys := make([]key, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].dim != keys[j].dim {
			return keys[i].dim < keys[j].dim
		}
		return keys[i].group < keys[j].group
	})

	t := metrics.SupplementaryTable{
		Name:   "rq1_group_sizes",
		Header: []string{"dimension", "group", "count"},
	}
	for _, k := range keys {
		t.Rows = append(t.Rows, []string{k.dim, k.group, strconv.Itoa(counts[k])})
	}
	return t
}
