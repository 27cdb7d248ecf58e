package transform

import (
	"fmt"
	"sort"

	"github.com/mkravets/datalift/internal/model"
)

// Transformer maps raw records to enriched records for one dataset profile.
// Transform is total over its input: every record that survives the profile's
// record-level validity filter produces exactly one enriched record. Derived
// fields are pure deterministic functions of the declared input fields, so
// transforming an already-enriched record yields the same derived values.
// Transformers perform no I/O.
type Transformer interface {
	Name() string
	Transform(records []model.Record) ([]model.Record, error)
	Schema() Schema
}

// Schema declares what the validator may assume about enriched records.
type Schema struct {
	// Required columns must carry no nulls after the transform's
	// missing-value policy has been applied.
	Required []string
	// Bands maps a derived band column to the full set of labels the
	// binning can produce.
	Bands map[string][]string
	// Codes maps an integer-coded column to its legal value set.
	Codes map[string][]int
}

// ForProfile returns the transformer for a named dataset profile.
func ForProfile(name string) (Transformer, error) {
	switch name {
	case "churn":
		return NewChurnTransformer(), nil
	case "air":
		return NewAirTransformer(), nil
	default:
		return nil, fmt.Errorf("unknown profile %q (want churn or air)", name)
	}
}

// Binning converts a numeric column into ordinal bands over a monotonic set
// of half-open intervals: inclusive on the lower edge, exclusive on the
// upper, with the final band unbounded above.
type Binning struct {
	Column string    // input column
	Target string    // derived column
	Bounds []float64 // ascending interior boundaries; len(Labels) == len(Bounds)+1
	Labels []string
}

// Label returns the band for v.
func (b Binning) Label(v float64) string {
	for i, bound := range b.Bounds {
		if v < bound {
			return b.Labels[i]
		}
	}
	return b.Labels[len(b.Bounds)]
}

// Apply derives the band column on every record. Records where the input is
// missing get an explicit null.
func (b Binning) Apply(records []model.Record) {
	for _, rec := range records {
		if v, ok := rec.Float(b.Column); ok {
			rec[b.Target] = b.Label(v)
		} else {
			rec[b.Target] = nil
		}
	}
}

// coerceNumeric replaces string-typed values of the given columns with their
// parsed float64. Values that do not parse become missing, so the
// missing-value policy can deal with them.
func coerceNumeric(records []model.Record, cols ...string) {
	for _, rec := range records {
		for _, col := range cols {
			if _, isStr := rec.String(col); !isStr {
				continue
			}
			if f, ok := rec.Float(col); ok {
				rec[col] = f
			} else {
				delete(rec, col)
			}
		}
	}
}

// median returns the median of the column's non-missing values over the whole
// batch, and false when the column has no values at all.
func median(records []model.Record, col string) (float64, bool) {
	var vals []float64
	for _, rec := range records {
		if v, ok := rec.Float(col); ok {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return 0, false
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid], true
	}
	return (vals[mid-1] + vals[mid]) / 2, true
}

// medianFill substitutes each required numeric column's batch median for its
// missing values. The median is computed over the entire pre-fill batch, so
// this is a two-pass operation by construction.
func medianFill(records []model.Record, cols ...string) {
	for _, col := range cols {
		m, ok := median(records, col)
		if !ok {
			continue
		}
		for _, rec := range records {
			if rec.Missing(col) {
				rec[col] = m
			}
		}
	}
}

// unknownSentinel is the fill value for missing categorical fields.
const unknownSentinel = "Unknown"

// fillUnknown replaces missing values of every categorical column with the
// sentinel. A column is categorical when any observed value in the batch is a
// string; the column universe is the union of keys across the batch.
func fillUnknown(records []model.Record) {
	categorical := make(map[string]bool)
	for _, rec := range records {
		for k, v := range rec {
			if _, ok := v.(string); ok {
				categorical[k] = true
			}
		}
	}
	for _, rec := range records {
		for col := range categorical {
			if rec.Missing(col) {
				rec[col] = unknownSentinel
			}
		}
	}
}

// codeMap derives an integer-coded column from a fixed finite mapping of
// known category values. Values outside the known set produce an explicit
// null, never a panic.
type codeMap struct {
	Column string
	Target string
	Codes  map[string]int
}

func (c codeMap) Apply(records []model.Record) {
	for _, rec := range records {
		s, ok := rec.String(c.Column)
		if !ok {
			rec[c.Target] = nil
			continue
		}
		if code, known := c.Codes[s]; known {
			rec[c.Target] = code
		} else {
			rec[c.Target] = nil
		}
	}
}

// dropColumns removes identifying and non-predictive columns in place.
func dropColumns(records []model.Record, cols ...string) {
	for _, rec := range records {
		for _, col := range cols {
			delete(rec, col)
		}
	}
}

// cloneAll copies the input so the transform never mutates caller-owned
// records.
func cloneAll(records []model.Record) []model.Record {
	out := make([]model.Record, len(records))
	for i, rec := range records {
		out[i] = rec.Clone()
	}
	return out
}
