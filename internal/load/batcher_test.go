package load

import (
	"errors"
	"testing"

	"github.com/mkravets/datalift/internal/model"
)

func makeRecords(n int) []model.Record {
	records := make([]model.Record, n)
	for i := range records {
		records[i] = model.Record{"id": float64(i)}
	}
	return records
}

func TestSplitSizes(t *testing.T) {
	tests := []struct {
		name      string
		rows      int
		size      int
		wantSizes []int
	}{
		{"empty input", 0, 200, nil},
		{"exact multiple", 400, 200, []int{200, 200}},
		{"trailing partial", 450, 200, []int{200, 200, 50}},
		{"single undersized chunk", 7, 200, []int{7}},
		{"size one", 3, 1, []int{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := Split(makeRecords(tt.rows), tt.size)
			if err != nil {
				t.Fatalf("Split() error = %v", err)
			}
			if len(chunks) != len(tt.wantSizes) {
				t.Fatalf("got %d chunks, want %d", len(chunks), len(tt.wantSizes))
			}
			for i, chunk := range chunks {
				if chunk.Index != i {
					t.Errorf("chunk %d: Index = %d", i, chunk.Index)
				}
				if chunk.Start != i*tt.size {
					t.Errorf("chunk %d: Start = %d, want %d", i, chunk.Start, i*tt.size)
				}
				if len(chunk.Records) != tt.wantSizes[i] {
					t.Errorf("chunk %d: %d records, want %d", i, len(chunk.Records), tt.wantSizes[i])
				}
			}
		})
	}
}

func TestSplitPreservesOrder(t *testing.T) {
	records := makeRecords(450)
	chunks, err := Split(records, 200)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	pos := 0
	for _, chunk := range chunks {
		for _, rec := range chunk.Records {
			id, ok := rec.Float("id")
			if !ok {
				t.Fatalf("record at position %d lost its id", pos)
			}
			if int(id) != pos {
				t.Fatalf("position %d holds record %d", pos, int(id))
			}
			pos++
		}
	}
	if pos != len(records) {
		t.Fatalf("chunks cover %d records, want %d", pos, len(records))
	}
}

func TestSplitInvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := Split(makeRecords(10), size)
		var cfgErr *model.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("Split(size=%d) error = %v, want ConfigError", size, err)
		}
	}
}
