package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mkravets/datalift/internal/extract"
)

var transformOutFlag string

// transformCmd represents the transform command
var transformCmd = &cobra.Command{
	Use:   "transform <input>",
	Short: "Apply the profile transform and write the staged CSV",
	Long: `Transform reads raw data, applies the profile's feature engineering
(missing-value policy, banding, category codes, derived scores) and writes
the enriched rows to a staged CSV without touching the remote store.

Example:
  datalift transform data/raw/churn.csv
  datalift transform data/raw/ --profile air --out data/staged/air.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runTransform,
}

func init() {
	rootCmd.AddCommand(transformCmd)

	transformCmd.Flags().StringVar(&profileFlag, "profile", "", "dataset profile: churn or air")
	transformCmd.Flags().IntVar(&parseWorkersFlag, "concurrency", 0, "raw-document parse workers (default 4)")
	transformCmd.Flags().StringVar(&transformOutFlag, "out", "", "staged CSV path (default: data/staged/<profile>_transformed.csv)")
}

func runTransform(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := buildConfig()
	if profileFlag != "" {
		cfg.Transform.Profile = profileFlag
	}
	if parseWorkersFlag != 0 {
		cfg.Concurrency.ParseWorkers = parseWorkersFlag
	}

	enriched, _, err := transformInput(ctx, cfg, args[0])
	if err != nil {
		return fmt.Errorf("transform failed: %w", err)
	}

	out := transformOutFlag
	if out == "" {
		out = defaultStagedPath(cfg.Transform.Profile)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("create staged dir: %w", err)
	}
	if err := extract.WriteCSV(out, enriched); err != nil {
		return fmt.Errorf("write staged csv: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Transformed %d rows → %s\n", len(enriched), out)
	return nil
}
