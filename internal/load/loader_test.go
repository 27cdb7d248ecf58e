package load

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/mkravets/datalift/internal/model"
	"github.com/mkravets/datalift/internal/store"
)

// flakyInserter fails the first failures calls, then succeeds.
type flakyInserter struct {
	failures int
	calls    int
	err      error
	got      [][]model.Record
}

func (f *flakyInserter) Insert(_ context.Context, _ string, records []model.Record) error {
	f.calls++
	f.got = append(f.got, records)
	if f.calls <= f.failures {
		if f.err != nil {
			return f.err
		}
		return &store.TransportError{Op: "insert", URL: "http://store", Err: errors.New("connection reset")}
	}
	return nil
}

func silenceSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var slept []time.Duration
	orig := sleepFunc
	sleepFunc = func(d time.Duration) { slept = append(slept, d) }
	t.Cleanup(func() { sleepFunc = orig })
	return &slept
}

func TestLoadSucceedsFirstAttempt(t *testing.T) {
	silenceSleep(t)
	ins := &flakyInserter{}
	loader := NewLoader(ins, "telco_customer_data", 2, time.Second)

	outcome := loader.Load(context.Background(), Chunk{Index: 0, Start: 0, Records: makeRecords(3)})

	if outcome.Status != model.ChunkSucceeded {
		t.Fatalf("Status = %q, want succeeded", outcome.Status)
	}
	if outcome.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", outcome.Attempts)
	}
	if ins.calls != 1 {
		t.Errorf("inserter called %d times, want 1", ins.calls)
	}
}

func TestLoadRetriesThenSucceeds(t *testing.T) {
	slept := silenceSleep(t)
	ins := &flakyInserter{failures: 2}
	loader := NewLoader(ins, "telco_customer_data", 2, 2*time.Second)

	outcome := loader.Load(context.Background(), Chunk{Index: 1, Start: 200, Records: makeRecords(5)})

	if outcome.Status != model.ChunkSucceeded {
		t.Fatalf("Status = %q, want succeeded after retries", outcome.Status)
	}
	if outcome.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", outcome.Attempts)
	}
	if len(*slept) != 2 {
		t.Errorf("slept %d times, want 2", len(*slept))
	}
	for _, d := range *slept {
		if d != 2*time.Second {
			t.Errorf("backoff = %v, want constant 2s", d)
		}
	}
}

func TestLoadExhaustsRetries(t *testing.T) {
	silenceSleep(t)
	ins := &flakyInserter{failures: 100}
	loader := NewLoader(ins, "telco_customer_data", 2, time.Second)

	outcome := loader.Load(context.Background(), Chunk{Index: 0, Start: 0, Records: makeRecords(4)})

	if outcome.Status != model.ChunkFailedAfterRetries {
		t.Fatalf("Status = %q, want failed_after_retries", outcome.Status)
	}
	if outcome.Attempts != 3 {
		t.Errorf("Attempts = %d, want maxRetries+1 = 3", outcome.Attempts)
	}
	if outcome.Err == "" {
		t.Error("failed outcome carries no error message")
	}
	if outcome.Rows != 4 {
		t.Errorf("Rows = %d, want 4", outcome.Rows)
	}
}

func TestLoadUniqueViolationCountsAsSuccess(t *testing.T) {
	silenceSleep(t)
	ins := &flakyInserter{
		failures: 100,
		err:      &store.SemanticError{StatusCode: 409, Code: "23505", Message: "duplicate key value violates unique constraint"},
	}
	loader := NewLoader(ins, "telco_customer_data", 2, time.Second)

	outcome := loader.Load(context.Background(), Chunk{Records: makeRecords(2)})

	if outcome.Status != model.ChunkSucceeded {
		t.Fatalf("Status = %q, want succeeded on unique violation", outcome.Status)
	}
	if ins.calls != 1 {
		t.Errorf("inserter called %d times, want 1 (no retry on already-loaded)", ins.calls)
	}
}

func TestLoadSanitizesOncePerChunk(t *testing.T) {
	silenceSleep(t)
	when := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	original := model.Record{
		"pm2_5": math.NaN(),
		"time":  when,
		"city":  "delhi",
	}
	ins := &flakyInserter{failures: 1}
	loader := NewLoader(ins, "air_quality_data", 2, time.Second)

	loader.Load(context.Background(), Chunk{Records: []model.Record{original}})

	if ins.calls != 2 {
		t.Fatalf("inserter called %d times, want 2", ins.calls)
	}
	for attempt, batch := range ins.got {
		sent := batch[0]
		if sent["pm2_5"] != nil {
			t.Errorf("attempt %d: pm2_5 = %v, want nil", attempt, sent["pm2_5"])
		}
		if sent["time"] != when.Format(time.RFC3339) {
			t.Errorf("attempt %d: time = %v, want RFC 3339 text", attempt, sent["time"])
		}
	}
	// the caller's record is untouched
	if f, ok := original["pm2_5"].(float64); !ok || !math.IsNaN(f) {
		t.Error("sanitize mutated the caller's record")
	}
}

func TestSanitizeRecordIdempotent(t *testing.T) {
	rec := model.Record{
		"pm10": math.Inf(1),
		"time": time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		"aqi":  72.0,
	}
	once := sanitizeRecord(rec)
	twice := sanitizeRecord(once)

	if twice["pm10"] != nil || once["pm10"] != nil {
		t.Error("infinity should sanitize to nil")
	}
	if once["time"] != twice["time"] {
		t.Errorf("double sanitize changed time: %v vs %v", once["time"], twice["time"])
	}
	if twice["aqi"] != 72.0 {
		t.Errorf("aqi = %v, want 72", twice["aqi"])
	}
}
