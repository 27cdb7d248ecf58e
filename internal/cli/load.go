package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mkravets/datalift/internal/extract"
	"github.com/mkravets/datalift/internal/load"
	"github.com/mkravets/datalift/internal/store"
)

// loadCmd represents the load command
var loadCmd = &cobra.Command{
	Use:   "load <staged.csv>",
	Short: "Bulk-load a staged CSV into the remote store",
	Long: `Load sends a previously staged CSV to the remote table in fixed-size
chunks with bounded retry and a constant backoff between attempts. Chunks
that fail after retries are skipped and accounted for; the run always
finishes and always emits a report.

Example:
  datalift load data/staged/churn_transformed.csv
  datalift load staged.csv --table air_quality_data --batch-size 200 --max-retries 2`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
	addPipelineFlags(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := buildConfig()
	applyCommonFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	records, err := extract.ReadCSV(args[0])
	if err != nil {
		return fmt.Errorf("read staged csv: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "⚙  Loading %d rows into %s...\n", len(records), cfg.Store.Table)
	}

	client, err := store.NewClient(cfg.Store)
	if err != nil {
		return err
	}
	loader := load.NewLoader(client, cfg.Store.Table, cfg.Load.MaxRetries, cfg.Load.Backoff)

	report, runErr := load.Run(ctx, records, cfg.Load.BatchSize, loader, cfg.Store.Table, chunkProgress)
	if report != nil {
		printLoadReport(report)
	}
	if runErr != nil {
		return runErr
	}
	if report.FailedRows() > 0 {
		return fmt.Errorf("%d rows failed to load (chunks %v)", report.FailedRows(), report.FailedChunks())
	}
	return nil
}
