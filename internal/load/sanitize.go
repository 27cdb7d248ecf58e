package load

import (
	"math"
	"time"

	"github.com/mkravets/datalift/internal/model"
)

// sanitizeRecords coerces records into the store's wire representation:
// NaN floats become explicit nulls and timestamps become canonical RFC 3339
// text. This is the only per-record transformation the loader performs. It
// works on copies, never mutating or reordering the caller's records, and is
// idempotent: sanitizing an already-sanitized record is a no-op.
func sanitizeRecords(records []model.Record) []model.Record {
	out := make([]model.Record, len(records))
	for i, rec := range records {
		out[i] = sanitizeRecord(rec)
	}
	return out
}

func sanitizeRecord(rec model.Record) model.Record {
	clean := make(model.Record, len(rec))
	for k, v := range rec {
		switch x := v.(type) {
		case float64:
			if math.IsNaN(x) || math.IsInf(x, 0) {
				clean[k] = nil
			} else {
				clean[k] = x
			}
		case time.Time:
			clean[k] = x.Format(time.RFC3339)
		default:
			clean[k] = v
		}
	}
	return clean
}
