package load

import (
	"context"
	"time"

	"github.com/mkravets/datalift/internal/model"
)

// Progress is called after each chunk completes. Used by the CLI for
// operator-facing output; may be nil.
type Progress func(outcome model.ChunkOutcome, total int)

// Run batches the records and loads every chunk strictly in order, collecting
// one outcome per chunk into the report. Chunks load sequentially: a chunk's
// retries finish before the next chunk starts, which keeps failed row ranges
// exact. Cancellation is honored between chunks; the partial report is
// returned alongside the context error so the rows already attempted stay
// accounted for.
func Run(ctx context.Context, records []model.Record, size int, loader *Loader, table string, progress Progress) (*model.LoadReport, error) {
	chunks, err := Split(records, size)
	if err != nil {
		return nil, err
	}

	report := &model.LoadReport{
		Table:     table,
		StartedAt: time.Now().UTC(),
		Outcomes:  make([]model.ChunkOutcome, 0, len(chunks)),
	}

	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = time.Now().UTC()
			return report, err
		}

		outcome := loader.Load(ctx, chunk)
		report.Outcomes = append(report.Outcomes, outcome)
		if progress != nil {
			progress(outcome, len(chunks))
		}
	}

	report.FinishedAt = time.Now().UTC()
	return report, nil
}
