package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mkravets/datalift/internal/extract"
	"github.com/mkravets/datalift/internal/store"
	"github.com/mkravets/datalift/internal/transform"
	"github.com/mkravets/datalift/internal/validate"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <staged.csv>",
	Short: "Diff the staged reference rows against the persisted table",
	Long: `Validate reads the whole remote table back and structurally diffs it
against the staged reference CSV: row counts, null counts on required
columns, band-label membership, and integer-code legality. Findings are
reported, never corrected.

Example:
  datalift validate data/staged/churn_transformed.csv
  datalift validate staged.csv --profile air --table air_quality_data`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	addPipelineFlags(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := buildConfig()
	applyCommonFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	tr, err := transform.ForProfile(cfg.Transform.Profile)
	if err != nil {
		return err
	}

	reference, err := extract.ReadCSV(args[0])
	if err != nil {
		return fmt.Errorf("read staged csv: %w", err)
	}

	client, err := store.NewClient(cfg.Store)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "⚙  Reading back table %s...\n", cfg.Store.Table)
	}
	persisted, err := newReader(cfg, client).SelectAll(ctx, cfg.Store.Table)
	if err != nil {
		return fmt.Errorf("read back table: %w", err)
	}

	report := validate.NewValidator(cfg.Store.Table).Validate(reference, persisted, tr.Schema())
	printValidation(report)

	if !report.Clean() {
		return fmt.Errorf("validation found %d mismatches", len(report.Mismatches))
	}
	return nil
}
