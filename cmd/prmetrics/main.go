package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"prmetrics/adapters/api"
	"prmetrics/adapters/postgres"
	"prmetrics/adapters/tabular"
	"prmetrics/app"
	"prmetrics/internal"
	"prmetrics/internal/config"
	"prmetrics/internal/testkit"
	"prmetrics/ports"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "prmetrics",
		Short: "Comparative PR review metrics: effect sizes and significance tests over prepared review data",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newServeCmd(),
		newSynthCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var alpha float64
	var correction string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run all research questions and write result tables",
		Long: `Run the RQ1/RQ2/RQ3 comparisons over the tables in DATA_DIR and write
CSV result tables, a summary workbook, and a markdown report to RESULTS_DIR.

Example: prmetrics analyze --alpha 0.05 --correction bh`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if alpha > 0 {
				os.Setenv("ALPHA", fmt.Sprintf("%g", alpha))
			}
			if correction != "" {
				os.Setenv("CORRECTION", correction)
			}
			return runAnalyze(cmd.Context())
		},
	}

	cmd.Flags().Float64Var(&alpha, "alpha", 0, "Significance level (overrides ALPHA)")
	cmd.Flags().StringVar(&correction, "correction", "", "Multiple-comparison correction: bh or bonferroni (overrides CORRECTION)")

	return cmd
}

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve result tables, run history, and the HTML report over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				os.Setenv("PORT", port)
			}
			return runServe()
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port (overrides PORT)")

	return cmd
}

func newSynthCmd() *cobra.Command {
	var seed int64
	var prCount int

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Generate a deterministic synthetic dataset into DATA_DIR",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSynth(seed, prCount)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	cmd.Flags().IntVar(&prCount, "pr-count", 200, "Number of synthetic pull requests")

	return cmd
}

func runAnalyze(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := internal.NewDefaultLogger()

	reader := tabular.NewReader(cfg.Paths.DataDir)
	sink := tabular.NewCSVWriter(cfg.Paths.ResultsDir)
	workbook := tabular.NewWorkbookWriter(cfg.Paths.ResultsDir)

	repo, cleanup, err := openRepository(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	svc := app.NewAnalysisService(reader, sink, workbook, repo, cfg, logger)
	result, err := svc.Run(ctx)
	if err != nil {
		return err
	}

	for _, rq := range sortedKeys(result.RQStatuses) {
		fmt.Printf("%s: %s\n", rq, result.RQStatuses[rq])
	}
	fmt.Printf("results written to %s\n", cfg.Paths.ResultsDir)
	return nil
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := internal.NewDefaultLogger()

	repo, cleanup, err := openRepository(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	server := api.NewServer(cfg.Paths.ResultsDir, repo, logger)
	return server.Start(cfg.Server.Port)
}

func runSynth(seed int64, prCount int) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	genCfg := testkit.DefaultGeneratorConfig()
	genCfg.Seed = seed
	genCfg.PRCount = prCount
	gen := testkit.NewGenerator(genCfg)

	tables := []func() error{
		func() error { return tabular.WriteDataTable(cfg.Paths.DataDir, gen.ReviewTable()) },
		func() error { return tabular.WriteDataTable(cfg.Paths.DataDir, gen.CommentTable()) },
		func() error { return tabular.WriteDataTable(cfg.Paths.DataDir, gen.LoopTable()) },
	}
	for _, write := range tables {
		if err := write(); err != nil {
			return err
		}
	}
	fmt.Printf("synthetic tables written to %s (seed %d, %d PRs)\n", cfg.Paths.DataDir, seed, prCount)
	return nil
}

// openRepository connects to Postgres when configured, otherwise returns nil
// so the pipeline runs file-only.
func openRepository(cfg *config.Config, logger *internal.Logger) (ports.ResultRepository, func(), error) {
	if !cfg.Database.Enabled {
		return nil, func() {}, nil
	}
	db, err := postgres.Connect(cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}
	logger.Info("result persistence enabled")
	return postgres.NewResultRepository(db), func() { db.Close() }, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
