package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mkravets/datalift/internal/extract"
	"github.com/mkravets/datalift/internal/model"
)

// ParseJob parses one raw sensor document.
type ParseJob struct {
	Path string
}

// Execute implements Job.
func (j *ParseJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &ParseResult{Path: j.Path, Error: err}
	}
	records, err := extract.ReadSensorFile(j.Path)
	return &ParseResult{Path: j.Path, Records: records, Error: err}
}

// ParseResult is the outcome of parsing one document.
type ParseResult struct {
	Path    string
	Records []model.Record
	Error   error
}

// Err implements Result.
func (r *ParseResult) Err() error { return r.Error }

// DocumentProcessor parses raw sensor documents concurrently. Per-document
// results are independent and the pool preserves order, so the flattened
// record sequence is deterministic for a given file list.
type DocumentProcessor struct {
	pool *Pool
}

// NewDocumentProcessor creates a processor with the given parse concurrency.
func NewDocumentProcessor(workers int) *DocumentProcessor {
	return &DocumentProcessor{pool: NewPool(workers)}
}

// ProcessFiles parses the given documents and flattens their records in file
// order. A document with an unrecognized shape contributes an error and no
// records; the remaining documents still process.
func (d *DocumentProcessor) ProcessFiles(ctx context.Context, paths []string) ([]model.Record, []error) {
	jobs := make([]Job, len(paths))
	for i, path := range paths {
		jobs[i] = &ParseJob{Path: path}
	}

	results := d.pool.Map(ctx, jobs)

	var records []model.Record
	var errs []error
	for _, res := range results {
		pr, ok := res.(*ParseResult)
		if !ok {
			if res.Err() != nil {
				errs = append(errs, res.Err())
			}
			continue
		}
		if pr.Error != nil {
			errs = append(errs, pr.Error)
			continue
		}
		records = append(records, pr.Records...)
	}
	return records, errs
}

// ProcessDir parses every .json document under dir, in sorted filename order.
func (d *DocumentProcessor) ProcessDir(ctx context.Context, dir string) ([]model.Record, []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("read raw dir: %w", err)}
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	return d.ProcessFiles(ctx, paths)
}
