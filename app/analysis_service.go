package app

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"prmetrics/domain/metrics"
	"prmetrics/internal"
	"prmetrics/internal/compare"
	"prmetrics/internal/config"
	apperrors "prmetrics/internal/errors"
	"prmetrics/internal/report"
	"prmetrics/internal/rq"
	"prmetrics/ports"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// AnalysisService orchestrates the research-question drivers over the
// prepared data tables and fans the results out to the configured sinks.
type AnalysisService struct {
	reader   ports.TableReader
	sink     ports.ResultSink
	workbook ports.WorkbookWriter
	repo     ports.ResultRepository
	cfg      *config.Config
	logger   *internal.Logger
}

// RunResult summarizes one analysis run
type RunResult struct {
	RunID      string
	Tables     []*metrics.ResultTable
	Extras     []metrics.SupplementaryTable
	RQStatuses map[string]string
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewAnalysisService creates an analysis service. The repository is
// optional: pass nil to run file-only.
func NewAnalysisService(reader ports.TableReader, sink ports.ResultSink, workbook ports.WorkbookWriter, repo ports.ResultRepository, cfg *config.Config, logger *internal.Logger) *AnalysisService {
	return &AnalysisService{
		reader:   reader,
		sink:     sink,
		workbook: workbook,
		repo:     repo,
		cfg:      cfg,
		logger:   logger,
	}
}

// Drivers returns the research-question drivers in canonical order.
func (s *AnalysisService) Drivers() []rq.Driver {
	cmp := compare.New(s.cfg.Analysis.Alpha, s.cfg.Analysis.Correction)
	return []rq.Driver{
		rq.NewRQ1(cmp),
		rq.NewRQ2(cmp),
		rq.NewRQ3(cmp),
	}
}

type driverOutcome struct {
	name   string
	output *rq.Output
	err    error
}

// Run executes every driver, writes the result tables, workbook, and report,
// and records the run when a repository is configured. A failing driver is
// isolated: its status is recorded and the remaining drivers still run.
func (s *AnalysisService) Run(ctx context.Context) (*RunResult, error) {
	started := time.Now()
	drivers := s.Drivers()

	outcomes := make([]driverOutcome, len(drivers))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Analysis.Workers)
	for i, d := range drivers {
		i, d := i, d
		g.Go(func() error {
			out, err := s.runDriver(gctx, d)
			mu.Lock()
			outcomes[i] = driverOutcome{name: d.Name(), output: out, err: err}
			mu.Unlock()
			// Driver failures are per-RQ status, not run failures.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &RunResult{
		RunID:      uuid.New().String(),
		RQStatuses: make(map[string]string),
		StartedAt:  started,
	}
	for _, oc := range outcomes {
		if oc.err != nil {
			s.logger.Error("driver %s failed: %v", oc.name, oc.err)
			result.RQStatuses[oc.name] = "failed: " + oc.err.Error()
			continue
		}
		result.RQStatuses[oc.name] = "ok"
		result.Tables = append(result.Tables, oc.output.Table)
		result.Extras = append(result.Extras, oc.output.Extras...)
	}
	sort.Slice(result.Tables, func(i, j int) bool { return result.Tables[i].RQ < result.Tables[j].RQ })
	sort.Slice(result.Extras, func(i, j int) bool { return result.Extras[i].Name < result.Extras[j].Name })

	if err := s.writeOutputs(result); err != nil {
		return nil, err
	}
	result.FinishedAt = time.Now()

	if s.repo != nil {
		if err := s.persist(ctx, result); err != nil {
			// Persistence is an audit trail, not the deliverable.
			s.logger.Warn("failed to persist run %s: %v", result.RunID, err)
		}
	}

	s.logger.Info("run %s complete: %d tables, %d supplementary", result.RunID, len(result.Tables), len(result.Extras))
	return result, nil
}

func (s *AnalysisService) runDriver(ctx context.Context, d rq.Driver) (*rq.Output, error) {
	s.logger.Info("running %s on table %s", d.Name(), d.TableName())
	tbl, err := s.reader.ReadTable(ctx, d.TableName(), d.Schema())
	if err != nil {
		return nil, apperrors.Configuration("failed to read table " + d.TableName() + ": " + err.Error())
	}
	out, err := d.Run(tbl)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("%s produced %d comparison rows", d.Name(), len(out.Table.Rows))
	return out, nil
}

func (s *AnalysisService) writeOutputs(result *RunResult) error {
	for _, t := range result.Tables {
		if err := s.sink.WriteResultTable(t); err != nil {
			return err
		}
	}
	for _, extra := range result.Extras {
		if err := s.sink.WriteSupplementary(extra); err != nil {
			return err
		}
	}
	if err := s.workbook.WriteWorkbook(result.Tables, result.Extras); err != nil {
		return err
	}
	md := report.Build(result.Tables, result.RQStatuses, result.StartedAt)
	return s.sink.WriteReport(md)
}

func (s *AnalysisService) persist(ctx context.Context, result *RunResult) error {
	if err := s.repo.EnsureSchema(ctx); err != nil {
		return err
	}
	statuses, err := json.Marshal(result.RQStatuses)
	if err != nil {
		return err
	}
	run := ports.RunSummary{
		ID:         result.RunID,
		Alpha:      s.cfg.Analysis.Alpha,
		Correction: string(s.cfg.Analysis.Correction),
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		RQStatuses: string(statuses),
	}
	if err := s.repo.SaveRun(ctx, run); err != nil {
		return err
	}
	for _, t := range result.Tables {
		if err := s.repo.SaveComparisons(ctx, result.RunID, t); err != nil {
			return err
		}
	}
	return nil
}
