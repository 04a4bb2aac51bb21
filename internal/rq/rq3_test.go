package rq

import (
	"fmt"
	"testing"

	"prmetrics/domain/metrics"
	"prmetrics/domain/record"
	"prmetrics/internal/compare"
	"prmetrics/internal/errors"
)

func TestRQ3_Run(t *testing.T) {
	d := NewRQ3(compare.New(0.05, metrics.CorrectionBH))

	var records []record.Record
	// Closed-loop PRs: faster reviews, mostly merged.
	for i := 0; i < 10; i++ {
		records = append(records, loopRow(fmt.Sprintf("c%d", i), closedLoop, float64(5+i), float64(i%4), boolVal(i < 8)))
	}
	// Open-loop PRs: slower, merged less often.
	for i := 0; i < 10; i++ {
		records = append(records, loopRow(fmt.Sprintf("o%d", i), openLoop, float64(30+i), float64(i%5), boolVal(i < 3)))
	}
	tbl := rq3Table(records...)

	out, err := d.Run(tbl)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// Two rank comparisons plus the merge-rate proportion row.
	if len(out.Table.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(out.Table.Rows))
	}

	byMetric := map[string]metrics.ComparisonResult{}
	for _, row := range out.Table.Rows {
		byMetric[row.Metric] = row
	}

	duration := byMetric["review_duration_hours"]
	if duration.Test != metrics.TestMannWhitney {
		t.Errorf("duration test = %s, want mann_whitney", duration.Test)
	}
	if !duration.Significant {
		t.Errorf("fully separated durations should be significant, p=%v", duration.PCorrected)
	}
	if duration.EffectSize != -1 {
		t.Errorf("duration delta = %v, want -1", duration.EffectSize)
	}

	merge := byMetric["merge_rate"]
	if merge.Test != metrics.TestChiSquare {
		t.Errorf("merge rate test = %s, want chi_square", merge.Test)
	}
	if merge.GroupA != closedLoop || merge.GroupB != openLoop {
		t.Errorf("merge rate groups = %s vs %s", merge.GroupA, merge.GroupB)
	}
	if merge.StatsA == nil || merge.StatsA.Mean != 0.8 {
		t.Errorf("closed-loop merge rate should be 0.8")
	}

	if len(out.Extras) != 1 || out.Extras[0].Name != "rq3_summary" {
		t.Fatalf("expected the rq3_summary extra, got %+v", out.Extras)
	}
	summary := out.Extras[0]
	if summary.Rows[0][0] != "closed_loop_proportion" || summary.Rows[0][1] != "0.5000" {
		t.Errorf("closed-loop proportion row = %v", summary.Rows[0])
	}
	if summary.Rows[1][0] != "group_counts" || summary.Rows[1][1] != "10" || summary.Rows[1][2] != "10" {
		t.Errorf("group counts row = %v", summary.Rows[1])
	}
}

func TestRQ3_MissingColumnIsConfigurationError(t *testing.T) {
	d := NewRQ3(compare.New(0.05, metrics.CorrectionBH))
	tbl := &record.Table{
		Name: "rq3_data",
		Schema: record.Schema{
			LabelColumns: []string{"loop_type"},
			ValueColumns: []string{"review_duration_hours", "n_comments"}, // merged absent
		},
	}

	_, err := d.Run(tbl)
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if errors.GetCode(err) != errors.CodeConfiguration {
		t.Errorf("code = %s, want %s", errors.GetCode(err), errors.CodeConfiguration)
	}
}

func TestRQ3_OneLoopTypeAbsent(t *testing.T) {
	d := NewRQ3(compare.New(0.05, metrics.CorrectionBH))
	tbl := rq3Table(
		loopRow("1", closedLoop, 5, 2, 1),
		loopRow("2", closedLoop, 7, 3, 1),
		loopRow("3", closedLoop, 6, 1, 0),
	)

	out, err := d.Run(tbl)
	if err != nil {
		t.Fatalf("an absent group is degraded data, not an error: %v", err)
	}
	for _, row := range out.Table.Rows {
		if row.Metric == "merge_rate" && row.Status != metrics.StatusInsufficient {
			t.Errorf("merge rate without an open-loop group should be insufficient, got %s", row.Status)
		}
	}
}

// Helper functions

func rq3Table(records ...record.Record) *record.Table {
	return &record.Table{
		Name: "rq3_data",
		Schema: record.Schema{
			LabelColumns: []string{"loop_type"},
			ValueColumns: []string{"review_duration_hours", "n_comments", "merged"},
		},
		Records: records,
	}
}

func loopRow(id, loop string, hours, comments, merged float64) record.Record {
	return record.Record{
		ID:     id,
		Labels: map[string]string{"loop_type": loop},
		Values: map[string]record.Value{
			"review_duration_hours": record.Some(hours),
			"n_comments":            record.Some(comments),
			"merged":                record.Some(merged),
		},
	}
}

func boolVal(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
