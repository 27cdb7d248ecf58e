package model

import "time"

// ChunkStatus is the final status of one chunk's load attempts.
type ChunkStatus string

const (
	ChunkSucceeded          ChunkStatus = "succeeded"
	ChunkFailedAfterRetries ChunkStatus = "failed_after_retries"
)

// ChunkOutcome records the result of loading one chunk. Created by the loader
// once the chunk's retry budget is exhausted or it succeeds; immutable after.
type ChunkOutcome struct {
	Index    int         `json:"index"`    // position in the chunk sequence (0-based)
	Start    int         `json:"start"`    // offset of the chunk's first row in the input
	Rows     int         `json:"rows"`     // number of rows in the chunk
	Attempts int         `json:"attempts"` // insert attempts made
	Status   ChunkStatus `json:"status"`
	Err      string      `json:"error,omitempty"` // last observed error, for failed chunks
}

// RowRange is a half-open [Start, End) range of input row offsets.
type RowRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// LoadReport aggregates the chunk outcomes of one load run, in chunk order.
// Assembled incrementally as chunks complete; never mutated afterwards.
type LoadReport struct {
	Table      string         `json:"table"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Outcomes   []ChunkOutcome `json:"outcomes"`
}

// TotalRows returns the number of rows attempted across all chunks.
func (r *LoadReport) TotalRows() int {
	n := 0
	for _, o := range r.Outcomes {
		n += o.Rows
	}
	return n
}

// SucceededRows returns the number of rows in succeeded chunks.
func (r *LoadReport) SucceededRows() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == ChunkSucceeded {
			n += o.Rows
		}
	}
	return n
}

// FailedRows returns the number of rows in chunks that failed after retries.
func (r *LoadReport) FailedRows() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == ChunkFailedAfterRetries {
			n += o.Rows
		}
	}
	return n
}

// FailedChunks returns the indices of chunks that failed after retries.
func (r *LoadReport) FailedChunks() []int {
	var idx []int
	for _, o := range r.Outcomes {
		if o.Status == ChunkFailedAfterRetries {
			idx = append(idx, o.Index)
		}
	}
	return idx
}

// FailedRanges returns the input row ranges of failed chunks, so a partial
// reload can target exactly the rows that were lost.
func (r *LoadReport) FailedRanges() []RowRange {
	var ranges []RowRange
	for _, o := range r.Outcomes {
		if o.Status == ChunkFailedAfterRetries {
			ranges = append(ranges, RowRange{Start: o.Start, End: o.Start + o.Rows})
		}
	}
	return ranges
}

// Mismatch is a single validation finding. Findings are data surfaced to the
// operator, never errors, and are never auto-corrected.
type Mismatch struct {
	Check   string `json:"check"`            // row_count, null_count, band_membership, code_set
	Column  string `json:"column,omitempty"` // affected column, when applicable
	Message string `json:"message"`
}

// ValidationReport is the structural diff between the reference enriched set
// and the persisted table.
type ValidationReport struct {
	Table         string     `json:"table"`
	ReferenceRows int        `json:"reference_rows"`
	PersistedRows int        `json:"persisted_rows"`
	Mismatches    []Mismatch `json:"mismatches,omitempty"`
}

// Clean reports whether validation produced no findings.
func (r *ValidationReport) Clean() bool {
	return len(r.Mismatches) == 0
}

// Metric is one row of the analysis summary table.
type Metric struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// AnalysisReport is the KPI summary computed from the persisted table.
type AnalysisReport struct {
	Profile string   `json:"profile"`
	Rows    int      `json:"rows"`
	Metrics []Metric `json:"metrics"`
}

// Summary contains the optional LLM-generated narrative. Strictly additive:
// it never affects load, validation, or analysis results.
type Summary struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	SummaryMD string `json:"summary_md"`
}

// RunReport ties together the artifacts of one pipeline run.
type RunReport struct {
	Profile    string            `json:"profile"`
	Input      string            `json:"input"`
	Load       *LoadReport       `json:"load,omitempty"`
	Validation *ValidationReport `json:"validation,omitempty"`
	LLM        *Summary          `json:"llm,omitempty"`
}
