package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"prmetrics/domain/metrics"
)

// Build renders the markdown run report from the per-RQ result tables.
// Output is deterministic for identical inputs: tables are rendered in RQ
// order and rows in their canonical sort order, and the generated-at stamp
// is taken from the caller rather than the clock.
func Build(tables []*metrics.ResultTable, statuses map[string]string, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("# PR Metrics Analysis Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", generatedAt.UTC().Format(time.RFC3339))

	b.WriteString("## Run Status\n\n")
	b.WriteString("| RQ | Status |\n|---|---|\n")
	rqs := make([]string, 0, len(statuses))
	for rq := range statuses {
		rqs = append(rqs, rq)
	}
	sort.Strings(rqs)
	for _, rq := range rqs {
		fmt.Fprintf(&b, "| %s | %s |\n", rq, statuses[rq])
	}
	b.WriteString("\n")

	sorted := make([]*metrics.ResultTable, len(tables))
	copy(sorted, tables)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RQ < sorted[j].RQ })

	for _, t := range sorted {
		writeTable(&b, t)
	}

	return b.String()
}

func writeTable(b *strings.Builder, t *metrics.ResultTable) {
	fmt.Fprintf(b, "## %s (alpha=%s, correction=%s)\n\n",
		strings.ToUpper(t.RQ), formatFloat(t.Alpha), t.Correction)

	if len(t.Rows) == 0 {
		b.WriteString("No comparisons produced.\n\n")
		return
	}

	b.WriteString("| Metric | Dimension | Groups | n | Effect (magnitude) | p | p (corrected) | Significant |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|\n")
	for _, row := range t.Rows {
		fmt.Fprintf(b, "| %s | %s | %s vs %s | %d/%d | %s | %s | %s | %s |\n",
			row.Metric, row.Dimension, row.GroupA, row.GroupB, row.NA, row.NB,
			effectCell(row), pCell(row.Testable, row.PValue), pCell(row.Testable, row.PCorrected),
			significanceCell(row))
	}
	b.WriteString("\n")

	sig := significantFindings(t)
	if len(sig) > 0 {
		b.WriteString("**Significant findings:**\n\n")
		for _, s := range sig {
			fmt.Fprintf(b, "- %s\n", s)
		}
		b.WriteString("\n")
	}
}

func effectCell(row metrics.ComparisonResult) string {
	if !row.EffectDefined {
		return "undefined"
	}
	return fmt.Sprintf("%s (%s)", formatFloat(row.EffectSize), row.Magnitude)
}

func pCell(testable bool, p float64) string {
	if !testable {
		return "—"
	}
	return formatFloat(p)
}

func significanceCell(row metrics.ComparisonResult) string {
	if row.Status == metrics.StatusInsufficient {
		return "insufficient data"
	}
	if !row.Testable {
		return "not tested"
	}
	if row.Significant {
		return "yes"
	}
	return "no"
}

func significantFindings(t *metrics.ResultTable) []string {
	var out []string
	for _, row := range t.Rows {
		if !row.Significant {
			continue
		}
		out = append(out, fmt.Sprintf("%s (%s): %s vs %s, effect %s, corrected p=%s",
			row.Metric, row.Dimension, row.GroupA, row.GroupB,
			effectCell(row), formatFloat(row.PCorrected)))
	}
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}
