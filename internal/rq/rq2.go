package rq

import (
	"fmt"
	"strconv"
	"strings"

	"prmetrics/domain/metrics"
	"prmetrics/domain/record"
	"prmetrics/internal/compare"
)

// Review comment categorization keywords. A comment can match several
// categories; one that matches none is classified "other".
var (
	correctiveKeywords = []string{
		"bug", "error", "fix", "wrong", "incorrect", "mistake", "issue", "problem",
		"broken", "fails", "exception", "crash", "null", "undefined",
	}
	styleKeywords = []string{
		"style", "format", "indent", "spacing", "naming", "convention", "lint",
		"pep8", "pylint", "formatting", "whitespace", "semicolon", "brace",
	}
	securityKeywords = []string{
		"security", "vulnerability", "xss", "sql injection", "csrf", "auth",
		"authentication", "authorization", "password", "token", "secret", "key",
		"encrypt", "hash", "sanitize", "escape", "injection",
	}
	testingKeywords = []string{
		"test", "testing", "coverage", "unit test", "integration", "mock",
		"assert", "should test", "missing test", "test case", "scenario",
	}

	positiveWords = []string{
		"good", "great", "nice", "excellent", "perfect", "thanks", "thank you",
		"approved", "looks good", "well done", "lgtm",
	}
	negativeWords = []string{
		"bad", "wrong", "incorrect", "should not", "don't", "cannot", "error",
		"issue", "problem", "concern", "worried", "disappointed",
	}
)

// rq2Categories is the fixed category order for deterministic output.
var rq2Categories = []string{"corrective", "other", "security", "style", "testing"}

// RQ2 analyzes automated review comments on AI-authored pull requests: which
// categories of feedback the bots produce and what tone they carry. Each
// comment is categorized and sentiment-scored before the samples are formed;
// the grouping dimension is the derived comment category.
type RQ2 struct {
	cmp *compare.Comparator
}

// NewRQ2 creates the RQ2 driver.
func NewRQ2(cmp *compare.Comparator) *RQ2 {
	return &RQ2{cmp: cmp}
}

func (d *RQ2) Name() string      { return "rq2" }
func (d *RQ2) TableName() string { return "rq2_data" }

func (d *RQ2) Schema() record.Schema {
	return record.Schema{
		LabelColumns: []string{"pr_id", "body"},
		ValueColumns: nil,
	}
}

// CategorizeComment returns the categories a comment text belongs to,
// "other" when nothing matches.
func CategorizeComment(text string) []string {
	lower := strings.ToLower(text)
	var categories []string
	if containsAny(lower, correctiveKeywords) {
		categories = append(categories, "corrective")
	}
	if containsAny(lower, styleKeywords) {
		categories = append(categories, "style")
	}
	if containsAny(lower, securityKeywords) {
		categories = append(categories, "security")
	}
	if containsAny(lower, testingKeywords) {
		categories = append(categories, "testing")
	}
	if len(categories) == 0 {
		categories = append(categories, "other")
	}
	return categories
}

// SentimentScore classifies a comment's tone by keyword counts:
// +1 positive, -1 negative, 0 neutral.
func SentimentScore(text string) float64 {
	lower := strings.ToLower(text)
	pos, neg := 0, 0
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			pos++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			neg++
		}
	}
	switch {
	case pos > neg:
		return 1
	case neg > pos:
		return -1
	default:
		return 0
	}
}

func sentimentLabel(score float64) string {
	switch {
	case score > 0:
		return "positive"
	case score < 0:
		return "negative"
	default:
		return "neutral"
	}
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// Run categorizes every comment, then compares sentiment and comment length
// across categories pairwise. A multi-category comment contributes to each of
// its categories, matching the expanded-row convention of the distribution
// tables.
func (d *RQ2) Run(tbl *record.Table) (*Output, error) {
	if err := requireColumns(tbl, []string{"pr_id", "body"}, nil); err != nil {
		return nil, err
	}

	sentimentByCat := make(map[string][]float64)
	lengthByCat := make(map[string][]float64)
	for _, c := range rq2Categories {
		sentimentByCat[c] = []float64{}
		lengthByCat[c] = []float64{}
	}

	// category -> sentiment label -> count, for the distribution tables
	catCounts := make(map[string]int)
	catSentCounts := make(map[string]map[string]int)
	commentsPerPR := make(map[string]int)
	totalComments := 0

	for _, rec := range tbl.Records {
		body := rec.Label("body")
		prID := rec.Label("pr_id")
		totalComments++
		if prID != "" {
			commentsPerPR[prID]++
		}

		score := SentimentScore(body)
		label := sentimentLabel(score)
		length := float64(len(body))

		for _, cat := range CategorizeComment(body) {
			sentimentByCat[cat] = append(sentimentByCat[cat], score)
			lengthByCat[cat] = append(lengthByCat[cat], length)
			catCounts[cat]++
			if catSentCounts[cat] == nil {
				catSentCounts[cat] = make(map[string]int)
			}
			catSentCounts[cat][label]++
		}
	}

	table := &metrics.ResultTable{
		RQ:         d.Name(),
		Alpha:      d.cmp.Alpha,
		Correction: d.cmp.Correction,
	}
	table.Rows = append(table.Rows, d.cmp.Compare("sentiment_score", "category", sentimentByCat)...)
	table.Rows = append(table.Rows, d.cmp.Compare("comment_length", "category", lengthByCat)...)
	table.Sort()

	return &Output{
		Table: table,
		Extras: []metrics.SupplementaryTable{
			d.categoryStats(catCounts, totalComments),
			d.sentimentByCategory(catSentCounts),
			d.commentSummary(totalComments, commentsPerPR),
		},
	}, nil
}

// categoryStats reports the comment count and share of each category.
// Percentages are of total comments, so multi-category comments can push the
// column sum past 100.
func (d *RQ2) categoryStats(counts map[string]int, total int) metrics.SupplementaryTable {
	t := metrics.SupplementaryTable{
		Name:   "rq2_category_stats",
		Header: []string{"category", "count", "percentage"},
	}
	for _, cat := range rq2Categories {
		n := counts[cat]
		pct := 0.0
		if total > 0 {
			pct = float64(n) / float64(total) * 100
		}
		t.Rows = append(t.Rows, []string{cat, strconv.Itoa(n), fmt.Sprintf("%.2f", pct)})
	}
	return t
}

func (d *RQ2) sentimentByCategory(counts map[string]map[string]int) metrics.SupplementaryTable {
	t := metrics.SupplementaryTable{
		Name:   "rq2_sentiment_by_category",
		Header: []string{"category", "sentiment", "count", "percentage"},
	}
	sentiments := []string{"negative", "neutral", "positive"}
	for _, cat := range rq2Categories {
		catTotal := 0
		for _, s := range sentiments {
			catTotal += counts[cat][s]
		}
		for _, s := range sentiments {
			n := counts[cat][s]
			if catTotal == 0 && n == 0 {
				continue
			}
			pct := float64(n) / float64(catTotal) * 100
			t.Rows = append(t.Rows, []string{cat, s, strconv.Itoa(n), fmt.Sprintf("%.2f", pct)})
		}
	}
	return t
}

func (d *RQ2) commentSummary(total int, perPR map[string]int) metrics.SupplementaryTable {
	uniquePRs := len(perPR)
	avg := 0.0
	if uniquePRs > 0 {
		avg = float64(total) / float64(uniquePRs)
	}

	return metrics.SupplementaryTable{
		Name:   "rq2_summary",
		Header: []string{"metric", "value"},
		Rows: [][]string{
			{"total_comments", strconv.Itoa(total)},
			{"unique_prs_with_comments", strconv.Itoa(uniquePRs)},
			{"avg_comments_per_pr", fmt.Sprintf("%.4f", avg)},
		},
	}
}
