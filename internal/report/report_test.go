package report

import (
	"strings"
	"testing"
	"time"

	"prmetrics/domain/metrics"
)

func TestBuild(t *testing.T) {
	tables := []*metrics.ResultTable{
		{
			RQ: "rq3", Alpha: 0.05, Correction: metrics.CorrectionBH,
			Rows: []metrics.ComparisonResult{
				{
					Metric: "merge_rate", Dimension: "loop_type",
					GroupA: "closed-loop", GroupB: "open-loop",
					NA: 10, NB: 10,
					EffectDefined: false, Magnitude: metrics.MagnitudeUndefined,
					Test: metrics.TestChiSquare, PValue: 0.021, PCorrected: 0.021,
					Testable: true, Significant: true, Status: metrics.StatusOK,
				},
			},
		},
		{
			RQ: "rq1", Alpha: 0.05, Correction: metrics.CorrectionBH,
			Rows: []metrics.ComparisonResult{
				{
					Metric: "n_comments", Dimension: "author_type",
					GroupA: "ai", GroupB: "human",
					NA: 2, NB: 0,
					Magnitude: metrics.MagnitudeUndefined,
					Test:      metrics.TestNone, Status: metrics.StatusInsufficient,
				},
			},
		},
	}
	statuses := map[string]string{"rq1": "ok", "rq2": "failed: table not found", "rq3": "ok"}
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	md := Build(tables, statuses, at)

	if !strings.Contains(md, "2025-06-01T12:00:00Z") {
		t.Error("generated-at stamp missing")
	}
	if !strings.Contains(md, "| rq2 | failed: table not found |") {
		t.Error("failed RQ status missing from the status table")
	}
	// Tables render in RQ order regardless of input order.
	if strings.Index(md, "## RQ1") > strings.Index(md, "## RQ3") {
		t.Error("tables not ordered by RQ")
	}
	if !strings.Contains(md, "undefined") {
		t.Error("undefined effect must be labeled, not rendered as a number")
	}
	if !strings.Contains(md, "insufficient data") {
		t.Error("insufficient rows must be called out")
	}
	if !strings.Contains(md, "**Significant findings:**") {
		t.Error("significant findings section missing")
	}

	// Deterministic for the same inputs.
	if md != Build(tables, statuses, at) {
		t.Error("report must be deterministic")
	}
}

func TestBuild_NoRows(t *testing.T) {
	md := Build([]*metrics.ResultTable{{RQ: "rq1", Alpha: 0.05, Correction: metrics.CorrectionBH}},
		map[string]string{"rq1": "ok"}, time.Unix(0, 0))
	if !strings.Contains(md, "No comparisons produced.") {
		t.Error("empty table placeholder missing")
	}
}
