package validate

import (
	"fmt"
	"sort"

	"github.com/mkravets/datalift/internal/model"
	"github.com/mkravets/datalift/internal/transform"
)

// Validator compares the reference enriched record set against a full
// read-back of the persisted table. It is a pure comparison: findings are
// reported, never corrected, and nothing here performs I/O.
type Validator struct {
	table string
}

// NewValidator creates a validator for the named table.
func NewValidator(table string) *Validator {
	return &Validator{table: table}
}

// Validate diffs reference against persisted under the profile's schema:
// row counts, null counts on required columns, band-label membership, and
// integer-code legality.
func (v *Validator) Validate(reference, persisted []model.Record, schema transform.Schema) *model.ValidationReport {
	report := &model.ValidationReport{
		Table:         v.table,
		ReferenceRows: len(reference),
		PersistedRows: len(persisted),
	}

	if len(reference) != len(persisted) {
		report.Mismatches = append(report.Mismatches, model.Mismatch{
			Check:   "row_count",
			Message: fmt.Sprintf("reference has %d rows, table has %d", len(reference), len(persisted)),
		})
	}

	v.checkNullCounts(report, reference, persisted, schema.Required)
	v.checkBandMembership(report, persisted, schema.Bands)
	v.checkCodeSets(report, persisted, schema.Codes)
	return report
}

// checkNullCounts flags required columns whose persisted null count differs
// from the reference. After median fill the reference count is zero, so any
// persisted null on a required column is loss or corruption.
func (v *Validator) checkNullCounts(report *model.ValidationReport, reference, persisted []model.Record, required []string) {
	for _, col := range required {
		refNulls := countNulls(reference, col)
		gotNulls := countNulls(persisted, col)
		if refNulls != gotNulls {
			report.Mismatches = append(report.Mismatches, model.Mismatch{
				Check:   "null_count",
				Column:  col,
				Message: fmt.Sprintf("reference has %d nulls, table has %d", refNulls, gotNulls),
			})
		}
	}
}

// checkBandMembership flags expected band values that never appear in the
// persisted table.
func (v *Validator) checkBandMembership(report *model.ValidationReport, persisted []model.Record, bands map[string][]string) {
	for _, col := range sortedKeys(bands) {
		present := make(map[string]bool)
		for _, rec := range persisted {
			if s, ok := rec.String(col); ok {
				present[s] = true
			}
		}
		for _, label := range bands[col] {
			if !present[label] {
				report.Mismatches = append(report.Mismatches, model.Mismatch{
					Check:   "band_membership",
					Column:  col,
					Message: fmt.Sprintf("band %q never appears", label),
				})
			}
		}
	}
}

// checkCodeSets flags observed integer codes outside the declared legal set.
// Nulls are legal: unknown categories map to null.
func (v *Validator) checkCodeSets(report *model.ValidationReport, persisted []model.Record, codes map[string][]int) {
	for _, col := range sortedIntKeys(codes) {
		legal := make(map[int]bool, len(codes[col]))
		for _, c := range codes[col] {
			legal[c] = true
		}

		invalid := make(map[int]bool)
		for _, rec := range persisted {
			if rec.Missing(col) {
				continue
			}
			if code, ok := rec.Int(col); ok && !legal[code] {
				invalid[code] = true
			}
		}
		if len(invalid) > 0 {
			var vals []int
			for c := range invalid {
				vals = append(vals, c)
			}
			sort.Ints(vals)
			report.Mismatches = append(report.Mismatches, model.Mismatch{
				Check:   "code_set",
				Column:  col,
				Message: fmt.Sprintf("observed codes outside legal set: %v", vals),
			})
		}
	}
}

func countNulls(records []model.Record, col string) int {
	n := 0
	for _, rec := range records {
		if rec.Missing(col) {
			n++
		}
	}
	return n
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedIntKeys(m map[string][]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
