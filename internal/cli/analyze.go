package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mkravets/datalift/internal/analyze"
	"github.com/mkravets/datalift/internal/store"
)

var analyzeOutFlag string

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute the KPI summary table from the persisted data",
	Long: `Analyze reads the remote table back and computes the profile's KPI
metrics, written as a metric-name → value CSV.

Example:
  datalift analyze
  datalift analyze --profile air --table air_quality_data --out data/processed/summary_metrics.csv`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addPipelineFlags(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeOutFlag, "out", filepath.Join("data", "processed", "summary_metrics.csv"), "summary CSV path")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := buildConfig()
	applyCommonFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	analyzer, err := analyze.NewAnalyzer(cfg.Transform.Profile)
	if err != nil {
		return err
	}

	client, err := store.NewClient(cfg.Store)
	if err != nil {
		return err
	}
	records, err := newReader(cfg, client).SelectAll(ctx, cfg.Store.Table)
	if err != nil {
		return fmt.Errorf("read back table: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("table %s is empty", cfg.Store.Table)
	}

	report := analyzer.Analyze(records)

	if err := os.MkdirAll(filepath.Dir(analyzeOutFlag), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := analyze.WriteCSV(report, analyzeOutFlag); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "✓ %d rows analyzed, %d metrics → %s\n", report.Rows, len(report.Metrics), analyzeOutFlag)
	for _, m := range report.Metrics {
		fmt.Fprintf(os.Stderr, "  %-40s %s\n", m.Name, m.Value)
	}
	return nil
}
