package load

import (
	"github.com/mkravets/datalift/internal/model"
)

// Chunk is a bounded, ordered slice of the enriched record sequence. Chunks
// partition the input exactly once: no record is reordered, dropped, or
// duplicated.
type Chunk struct {
	Index   int // position in the chunk sequence (0-based)
	Start   int // offset of the first record in the input
	Records []model.Record
}

// Split partitions records into chunks of at most size records, in input
// order. The last chunk may be smaller. A non-positive size is a
// configuration error.
func Split(records []model.Record, size int) ([]Chunk, error) {
	if size <= 0 {
		return nil, &model.ConfigError{Field: "load.batch_size", Reason: "must be a positive integer"}
	}

	chunks := make([]Chunk, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		chunks = append(chunks, Chunk{
			Index:   len(chunks),
			Start:   start,
			Records: records[start:end],
		})
	}
	return chunks, nil
}
