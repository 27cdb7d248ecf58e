package analyze

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/mkravets/datalift/internal/model"
)

// Analyzer computes the KPI summary table from a persisted-table read-back.
// It is a thin consumer of the load pipeline's output; plotting stays out of
// scope.
type Analyzer struct {
	profile string
}

// NewAnalyzer creates an analyzer for a dataset profile.
func NewAnalyzer(profile string) (*Analyzer, error) {
	switch profile {
	case "churn", "air":
		return &Analyzer{profile: profile}, nil
	default:
		return nil, fmt.Errorf("unknown profile %q (want churn or air)", profile)
	}
}

// Analyze computes the profile's metrics over the records.
func (a *Analyzer) Analyze(records []model.Record) *model.AnalysisReport {
	report := &model.AnalysisReport{Profile: a.profile, Rows: len(records)}
	if len(records) == 0 {
		return report
	}
	switch a.profile {
	case "churn":
		report.Metrics = churnMetrics(records)
	case "air":
		report.Metrics = airMetrics(records)
	}
	return report
}

// WriteCSV writes the summary as metric-name -> value rows.
func WriteCSV(report *model.AnalysisReport, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"metric", "value"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, m := range report.Metrics {
		if err := w.Write([]string{m.Name, m.Value}); err != nil {
			return fmt.Errorf("write metric: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush summary: %w", err)
	}
	return nil
}

// groupMeans returns the mean of a numeric column per value of a grouping
// column, skipping rows where either is missing.
func groupMeans(records []model.Record, groupCol, valueCol string) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, rec := range records {
		group, ok := rec.String(groupCol)
		if !ok {
			continue
		}
		v, ok := rec.Float(valueCol)
		if !ok {
			continue
		}
		sums[group] += v
		counts[group]++
	}
	means := make(map[string]float64, len(sums))
	for g, sum := range sums {
		means[g] = sum / float64(counts[g])
	}
	return means
}

// groupCounts returns occurrence counts per value of a string column.
func groupCounts(records []model.Record, col string) map[string]int {
	counts := make(map[string]int)
	for _, rec := range records {
		if s, ok := rec.String(col); ok {
			counts[s]++
		}
	}
	return counts
}

// argmax returns the key with the highest value, ties broken alphabetically
// for determinism.
func argmax(m map[string]float64) (string, float64) {
	var bestKey string
	var bestVal float64
	first := true
	for _, k := range sortedKeys(m) {
		if first || m[k] > bestVal {
			bestKey, bestVal = k, m[k]
			first = false
		}
	}
	return bestKey, bestVal
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func percent(part, whole int) string {
	if whole == 0 {
		return "0.00"
	}
	return formatFloat(100 * float64(part) / float64(whole))
}
