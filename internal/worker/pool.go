package worker

import (
	"context"
	"sync"
)

// Job is a unit of work executed by the pool.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of a job execution.
type Result interface {
	Err() error
}

// Pool runs jobs with bounded concurrency. Map preserves job order in its
// results, which keeps downstream batching deterministic regardless of
// scheduling.
type Pool struct {
	workers int
}

// NewPool creates a pool with the given worker bound.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Map executes all jobs and returns one result per job, in job order. Each
// job writes exactly one result slot, so aggregation is race-free. Jobs
// observe ctx and may return early results when it is cancelled.
func (p *Pool) Map(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	semaphore := make(chan struct{}, p.workers)
	var wg sync.WaitGroup

	for i, job := range jobs {
		wg.Add(1)
		go func(idx int, j Job) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				results[idx] = errResult{ctx.Err()}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			results[idx] = j.Execute(ctx)
		}(i, job)
	}

	wg.Wait()
	return results
}

type errResult struct{ err error }

func (r errResult) Err() error { return r.err }
