package ports

import (
	"context"
	"time"

	"prmetrics/domain/metrics"
)

// RunSummary records one completed analysis run for the audit trail.
type RunSummary struct {
	ID         string    `db:"id" json:"id"`
	Alpha      float64   `db:"alpha" json:"alpha"`
	Correction string    `db:"correction" json:"correction"`
	StartedAt  time.Time `db:"started_at" json:"started_at"`
	FinishedAt time.Time `db:"finished_at" json:"finished_at"`
	RQStatuses string    `db:"rq_statuses" json:"rq_statuses"` // JSON per-RQ status blob
}

// ResultRepository stores comparison rows per run. Persistence is optional:
// the pipeline runs file-only when no repository is configured.
type ResultRepository interface {
	EnsureSchema(ctx context.Context) error
	SaveRun(ctx context.Context, run RunSummary) error
	SaveComparisons(ctx context.Context, runID string, table *metrics.ResultTable) error
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
}
