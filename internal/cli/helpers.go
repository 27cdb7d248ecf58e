package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mkravets/datalift/internal/cache"
	"github.com/mkravets/datalift/internal/extract"
	"github.com/mkravets/datalift/internal/model"
	"github.com/mkravets/datalift/internal/store"
	"github.com/mkravets/datalift/internal/transform"
	"github.com/mkravets/datalift/internal/worker"
)

// buildConfig assembles the run configuration: defaults, then config file and
// environment via viper, then command flags where set.
func buildConfig() *model.Config {
	cfg := model.DefaultConfig()

	if v := viper.GetString("store.url"); v != "" {
		cfg.Store.URL = v
	}
	if v := viper.GetString("store.key"); v != "" {
		cfg.Store.Key = v
	}
	if v := viper.GetString("store.table"); v != "" {
		cfg.Store.Table = v
	}
	if v := viper.GetString("transform.profile"); v != "" {
		cfg.Transform.Profile = v
	}
	if viper.IsSet("load.batch_size") {
		cfg.Load.BatchSize = viper.GetInt("load.batch_size")
	}
	if viper.IsSet("load.max_retries") {
		cfg.Load.MaxRetries = viper.GetInt("load.max_retries")
	}
	if viper.IsSet("load.backoff") {
		cfg.Load.Backoff = viper.GetDuration("load.backoff")
	}
	if viper.IsSet("cache.dir") {
		cfg.Cache.Dir = viper.GetString("cache.dir")
	}
	cfg.Output.Verbose = verbose
	return cfg
}

// applyCommonFlags overlays flags shared by the pipeline commands.
func applyCommonFlags(cfg *model.Config) {
	if profileFlag != "" {
		cfg.Transform.Profile = profileFlag
	}
	if tableFlag != "" {
		cfg.Store.Table = tableFlag
	}
	if batchSizeFlag != 0 {
		cfg.Load.BatchSize = batchSizeFlag
	}
	if maxRetriesFlag >= 0 {
		cfg.Load.MaxRetries = maxRetriesFlag
	}
	if backoffFlag != 0 {
		cfg.Load.Backoff = backoffFlag
	}
	if timeoutFlag != 0 {
		cfg.Store.Timeout = timeoutFlag
	}
	if parseWorkersFlag != 0 {
		cfg.Concurrency.ParseWorkers = parseWorkersFlag
	}
	if noCacheFlag {
		cfg.Cache.Enabled = false
	}
}

// newReader builds the table reader, cached unless caching is disabled.
func newReader(cfg *model.Config, client *store.Client) store.TableReader {
	if !cfg.Cache.Enabled {
		return client
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return store.NewCachedReader(client, cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.TTL), cfg.Store.URL, cfg.Cache.TTL)
		}
		dir = filepath.Join(home, ".datalift", "cache")
	}
	layered := cache.NewLayeredCache(cfg.Cache.TTL, dir, cfg.Cache.TTL)
	return store.NewCachedReader(client, layered, cfg.Store.URL, cfg.Cache.TTL)
}

// readRawInput reads the profile's raw input: a delimited file for churn, a
// JSON document or directory of documents for air. Shape errors are logged
// and skipped; remaining documents still contribute rows.
func readRawInput(ctx context.Context, cfg *model.Config, input string) ([]model.Record, error) {
	switch cfg.Transform.Profile {
	case "air":
		processor := worker.NewDocumentProcessor(cfg.Concurrency.ParseWorkers)

		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("stat input: %w", err)
		}

		var records []model.Record
		var errs []error
		if info.IsDir() {
			records, errs = processor.ProcessDir(ctx, input)
		} else {
			records, errs = processor.ProcessFiles(ctx, []string{input})
		}
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "⚠ skipped document: %v\n", err)
		}
		if len(records) == 0 && len(errs) > 0 {
			return nil, fmt.Errorf("no readable documents in %s", input)
		}
		return records, nil
	default:
		return extract.ReadCSV(input)
	}
}

// transformInput runs the profile transform over the raw input.
func transformInput(ctx context.Context, cfg *model.Config, input string) ([]model.Record, transform.Transformer, error) {
	tr, err := transform.ForProfile(cfg.Transform.Profile)
	if err != nil {
		return nil, nil, err
	}

	raw, err := readRawInput(ctx, cfg, input)
	if err != nil {
		return nil, nil, err
	}

	enriched, err := tr.Transform(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("transform: %w", err)
	}
	return enriched, tr, nil
}

// printLoadReport renders the run summary to stderr.
func printLoadReport(report *model.LoadReport) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Load Summary — table %s\n", report.Table)
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Chunks:    %d\n", len(report.Outcomes))
	fmt.Fprintf(os.Stderr, "  Rows:      %d attempted, %d succeeded, %d failed\n",
		report.TotalRows(), report.SucceededRows(), report.FailedRows())
	if failed := report.FailedChunks(); len(failed) > 0 {
		fmt.Fprintf(os.Stderr, "  Failed chunks: %v\n", failed)
		for _, r := range report.FailedRanges() {
			fmt.Fprintf(os.Stderr, "    rows %d-%d lost\n", r.Start+1, r.End)
		}
	}
	fmt.Fprintf(os.Stderr, "\n")
}

// printValidation renders the validation findings to stderr.
func printValidation(report *model.ValidationReport) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Validation — table %s\n", report.Table)
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Rows: reference %d, persisted %d\n", report.ReferenceRows, report.PersistedRows)
	if report.Clean() {
		fmt.Fprintf(os.Stderr, "  ✓ no mismatches\n\n")
		return
	}
	for _, m := range report.Mismatches {
		col := ""
		if m.Column != "" {
			col = " [" + m.Column + "]"
		}
		fmt.Fprintf(os.Stderr, "  ✗ %s%s: %s\n", m.Check, col, m.Message)
	}
	fmt.Fprintf(os.Stderr, "\n")
}

// defaultStagedPath derives a staged CSV path from the profile.
func defaultStagedPath(profile string) string {
	return filepath.Join("data", "staged", strings.ToLower(profile)+"_transformed.csv")
}
