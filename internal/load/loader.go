package load

import (
	"context"
	"errors"
	"time"

	"github.com/mkravets/datalift/internal/model"
	"github.com/mkravets/datalift/internal/store"
)

// sleepFunc is the wait between retry attempts (injectable for tests).
var sleepFunc = time.Sleep

// Inserter sends one chunk of records to the remote store in a single insert
// call. *store.Client implements it; tests substitute their own.
type Inserter interface {
	Insert(ctx context.Context, table string, records []model.Record) error
}

// Loader sends chunks to the remote store with bounded retry. It exclusively
// owns ChunkOutcome creation. A failed chunk never aborts the run: the caller
// proceeds to the next chunk and the loss is accounted for in the report.
type Loader struct {
	store      Inserter
	table      string
	maxRetries int
	backoff    time.Duration
}

// NewLoader creates a loader. maxRetries is the number of retries after the
// first attempt; backoff is the constant wait between attempts.
func NewLoader(st Inserter, table string, maxRetries int, backoff time.Duration) *Loader {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Loader{store: st, table: table, maxRetries: maxRetries, backoff: backoff}
}

// Load attempts the chunk up to maxRetries+1 times and returns its outcome.
// Retries re-send the identical chunk, so delivery is at-least-once; a
// uniqueness-violation response from the store means the rows were already
// committed by an earlier attempt and counts as success.
func (l *Loader) Load(ctx context.Context, chunk Chunk) model.ChunkOutcome {
	outcome := model.ChunkOutcome{
		Index: chunk.Index,
		Start: chunk.Start,
		Rows:  len(chunk.Records),
	}

	records := sanitizeRecords(chunk.Records)

	var lastErr error
	for attempt := 0; attempt <= l.maxRetries; attempt++ {
		if attempt > 0 {
			sleepFunc(l.backoff)
		}
		outcome.Attempts = attempt + 1

		err := l.store.Insert(ctx, l.table, records)
		if err == nil || isAlreadyLoaded(err) {
			outcome.Status = model.ChunkSucceeded
			return outcome
		}
		lastErr = err
	}

	outcome.Status = model.ChunkFailedAfterRetries
	outcome.Err = lastErr.Error()
	return outcome
}

// isAlreadyLoaded reports whether the insert failed only because the rows are
// already present, which happens when a retry re-sends a chunk the store
// committed before the previous response was lost.
func isAlreadyLoaded(err error) bool {
	var semErr *store.SemanticError
	return errors.As(err, &semErr) && semErr.IsUniqueViolation()
}
