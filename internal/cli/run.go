package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkravets/datalift/internal/extract"
	"github.com/mkravets/datalift/internal/llm"
	"github.com/mkravets/datalift/internal/load"
	"github.com/mkravets/datalift/internal/model"
	"github.com/mkravets/datalift/internal/store"
	"github.com/mkravets/datalift/internal/validate"
)

var (
	profileFlag      string
	tableFlag        string
	batchSizeFlag    int
	maxRetriesFlag   int
	backoffFlag      time.Duration
	timeoutFlag      time.Duration
	parseWorkersFlag int
	noCacheFlag      bool
	stagedFlag       string
	reportJSONFlag   string
	validateFlag     bool
	llmEnabled       bool
	llmProvider      string
	llmModel         string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <input>",
	Short: "Transform raw data and bulk-load it into the remote store",
	Long: `Run executes the full pipeline over a raw input:
- Apply the profile's feature-engineering transform
- Write the enriched rows to a staged CSV
- Load the rows in fixed-size chunks with bounded retry
- Emit a load report accounting for every chunk
- Optionally diff the staged rows against the persisted table

A chunk that fails after retries never aborts the run; its row range is
recorded in the report so a partial reload can target it.

Example:
  datalift run data/raw/churn.csv
  datalift run data/raw/ --profile air --table air_quality_data
  datalift run data/raw/churn.csv --validate --json run-report.json`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addPipelineFlags(runCmd)

	runCmd.Flags().StringVar(&stagedFlag, "staged", "", "staged CSV path (default: data/staged/<profile>_transformed.csv)")
	runCmd.Flags().StringVar(&reportJSONFlag, "json", "", "write the run report as JSON to this path")
	runCmd.Flags().BoolVar(&validateFlag, "validate", false, "diff staged rows against the persisted table after loading")

	runCmd.Flags().BoolVar(&llmEnabled, "llm", false, "generate an LLM narrative of the run report")
	runCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	runCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

// addPipelineFlags registers the flags shared by every pipeline command.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&profileFlag, "profile", "", "dataset profile: churn or air")
	cmd.Flags().StringVar(&tableFlag, "table", "", "target table name")
	cmd.Flags().IntVar(&batchSizeFlag, "batch-size", 0, "rows per insert chunk (default 200)")
	cmd.Flags().IntVar(&maxRetriesFlag, "max-retries", -1, "retries per chunk after the first attempt (default 2)")
	cmd.Flags().DurationVar(&backoffFlag, "backoff", 0, "constant wait between retry attempts (default 2s)")
	cmd.Flags().DurationVar(&timeoutFlag, "timeout", 0, "per-call store timeout (default 30s)")
	cmd.Flags().IntVar(&parseWorkersFlag, "concurrency", 0, "raw-document parse workers (default 4)")
	cmd.Flags().BoolVar(&noCacheFlag, "no-cache", false, "disable read-back caching")
}

func runRun(cmd *cobra.Command, args []string) error {
	input := args[0]
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := buildConfig()
	applyCommonFlags(cfg)
	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel
		if llmProvider == "openai" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		}
		if llmProvider == "ollama" && cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// 1. Transform
	if verbose {
		fmt.Fprintf(os.Stderr, "⚙  Transforming %s (profile %s)...\n", input, cfg.Transform.Profile)
	}
	enriched, tr, err := transformInput(ctx, cfg, input)
	if err != nil {
		return fmt.Errorf("transform failed: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ %d enriched rows\n", len(enriched))
	}

	// 2. Stage
	stagedPath := stagedFlag
	if stagedPath == "" {
		stagedPath = defaultStagedPath(cfg.Transform.Profile)
	}
	if err := os.MkdirAll(filepath.Dir(stagedPath), 0o755); err != nil {
		return fmt.Errorf("create staged dir: %w", err)
	}
	if err := extract.WriteCSV(stagedPath, enriched); err != nil {
		return fmt.Errorf("write staged csv: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Wrote staged CSV: %s\n", stagedPath)
	}

	// 3. Load
	client, err := store.NewClient(cfg.Store)
	if err != nil {
		return err
	}
	loader := load.NewLoader(client, cfg.Store.Table, cfg.Load.MaxRetries, cfg.Load.Backoff)

	report, runErr := load.Run(ctx, enriched, cfg.Load.BatchSize, loader, cfg.Store.Table, chunkProgress)
	if report != nil {
		printLoadReport(report)
	}
	if runErr != nil {
		// Cancellation between chunks: the partial report above is still
		// the authoritative accounting of what was attempted.
		return runErr
	}

	runReport := model.RunReport{
		Profile: cfg.Transform.Profile,
		Input:   input,
		Load:    report,
	}

	// 4. Validate
	if validateFlag {
		reader := newReader(cfg, client)
		if cached, ok := reader.(*store.CachedReader); ok {
			cached.Invalidate(cfg.Store.Table)
		}
		persisted, err := reader.SelectAll(ctx, cfg.Store.Table)
		if err != nil {
			return fmt.Errorf("read back table: %w", err)
		}
		vreport := validate.NewValidator(cfg.Store.Table).Validate(enriched, persisted, tr.Schema())
		printValidation(vreport)
		runReport.Validation = vreport
	}

	// 5. Optional narrative (after all accounting, never affects it)
	if llmEnabled {
		summarizer, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: LLM summarizer unavailable: %v\n", err)
		} else if summary, err := summarizer.GenerateSummary(ctx, runReport); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: LLM summary failed: %v\n", err)
		} else {
			runReport.LLM = summary
			fmt.Fprintf(os.Stderr, "%s\n", summary.SummaryMD)
		}
	}

	if reportJSONFlag != "" {
		data, err := json.MarshalIndent(runReport, "", "  ")
		if err != nil {
			return fmt.Errorf("encode run report: %w", err)
		}
		if err := os.WriteFile(reportJSONFlag, data, 0o644); err != nil {
			return fmt.Errorf("write run report: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote run report: %s\n", reportJSONFlag)
		}
	}

	if report.FailedRows() > 0 {
		return fmt.Errorf("%d rows failed to load (chunks %v)", report.FailedRows(), report.FailedChunks())
	}
	return nil
}

// chunkProgress prints one line per completed chunk.
func chunkProgress(outcome model.ChunkOutcome, total int) {
	switch outcome.Status {
	case model.ChunkSucceeded:
		fmt.Fprintf(os.Stderr, "✓ Chunk %d/%d: %d rows in %d attempt(s)\n",
			outcome.Index+1, total, outcome.Rows, outcome.Attempts)
	default:
		fmt.Fprintf(os.Stderr, "✗ Chunk %d/%d: %d rows failed after %d attempts: %s\n",
			outcome.Index+1, total, outcome.Rows, outcome.Attempts, outcome.Err)
	}
}

