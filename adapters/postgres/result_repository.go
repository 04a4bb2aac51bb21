package postgres

import (
	"context"

	"prmetrics/domain/metrics"
	"prmetrics/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// ResultRepositoryImpl implements ResultRepository for PostgreSQL
type ResultRepositoryImpl struct {
	db *sqlx.DB
}

// NewResultRepository creates a new PostgreSQL result repository
func NewResultRepository(db *sqlx.DB) ports.ResultRepository {
	return &ResultRepositoryImpl{db: db}
}

// Connect opens and pings a Postgres connection.
func Connect(url string) (*sqlx.DB, error) {
	return sqlx.Connect("postgres", url)
}

// EnsureSchema creates the run and comparison tables when absent.
func (r *ResultRepositoryImpl) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS analysis_runs (
			id TEXT PRIMARY KEY,
			alpha DOUBLE PRECISION NOT NULL,
			correction TEXT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL,
			rq_statuses JSONB NOT NULL DEFAULT '{}'::jsonb
		);
		CREATE TABLE IF NOT EXISTS comparison_results (
			run_id TEXT NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
			rq TEXT NOT NULL,
			metric TEXT NOT NULL,
			dimension TEXT NOT NULL,
			group_a TEXT NOT NULL,
			group_b TEXT NOT NULL,
			n_a INTEGER NOT NULL,
			n_b INTEGER NOT NULL,
			effect_size DOUBLE PRECISION,
			magnitude TEXT NOT NULL,
			test TEXT NOT NULL,
			statistic DOUBLE PRECISION,
			p_value DOUBLE PRECISION,
			p_corrected DOUBLE PRECISION,
			significant BOOLEAN NOT NULL DEFAULT FALSE,
			status TEXT NOT NULL,
			PRIMARY KEY (run_id, rq, metric, dimension, group_a, group_b)
		);
	`)
	return err
}

// SaveRun records one completed analysis run
func (r *ResultRepositoryImpl) SaveRun(ctx context.Context, run ports.RunSummary) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO analysis_runs (id, alpha, correction, started_at, finished_at, rq_statuses)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb)
	`, run.ID, run.Alpha, run.Correction, run.StartedAt, run.FinishedAt, run.RQStatuses)
	return err
}

// SaveComparisons stores all comparison rows of one RQ's result table
func (r *ResultRepositoryImpl) SaveComparisons(ctx context.Context, runID string, table *metrics.ResultTable) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, row := range table.Rows {
		var effect, statistic, pValue, pCorrected interface{}
		if row.EffectDefined {
			effect = row.EffectSize
		}
		if row.Testable {
			statistic = row.Statistic
			pValue = row.PValue
			pCorrected = row.PCorrected
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO comparison_results
				(run_id, rq, metric, dimension, group_a, group_b, n_a, n_b,
				 effect_size, magnitude, test, statistic, p_value, p_corrected, significant, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		`, runID, table.RQ, row.Metric, row.Dimension, row.GroupA, row.GroupB, row.NA, row.NB,
			effect, string(row.Magnitude), string(row.Test), statistic, pValue, pCorrected, row.Significant, string(row.Status))
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListRuns returns recent runs, newest first
func (r *ResultRepositoryImpl) ListRuns(ctx context.Context, limit int) ([]ports.RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	runs := []ports.RunSummary{}
	err := r.db.SelectContext(ctx, &runs, `
		SELECT id, alpha, correction, started_at, finished_at, rq_statuses::text AS rq_statuses
		FROM analysis_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return runs, nil
}
