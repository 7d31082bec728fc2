// Package worker validates batches of profiles concurrently. The CLI
// uses it to fan out over file sets; results come back in submission
// order regardless of which worker finished first.
package worker

import (
	"context"
	"runtime"
	"sync"

	fhirprofiler "github.com/gofhir/profiler"
)

// Job is one profile to validate: a display name and the raw
// StructureDefinition bytes.
type Job struct {
	Name string
	Data []byte
}

// Item is the outcome for one job. Err is non-nil when the profile
// could not be loaded at all; Result is non-nil otherwise.
type Item struct {
	Name   string
	Result *fhirprofiler.ValidationResult
	Err    error
}

// BatchResult aggregates the outcomes of a batch, in submission order.
type BatchResult struct {
	Items     []Item
	Completed int
	Failed    int
}

// HasErrors reports whether any job failed to load or produced error
// diagnostics.
func (b *BatchResult) HasErrors() bool {
	for _, it := range b.Items {
		if it.Err != nil {
			return true
		}
		if it.Result != nil && it.Result.HasErrors() {
			return true
		}
	}
	return false
}

// ErrorCount returns the total error diagnostics across all results.
// Jobs that failed to load count as one error each.
func (b *BatchResult) ErrorCount() int {
	n := 0
	for _, it := range b.Items {
		if it.Err != nil {
			n++
			continue
		}
		if it.Result != nil {
			n += it.Result.ErrorCount()
		}
	}
	return n
}

// ValidateFunc loads and validates one job.
type ValidateFunc func(ctx context.Context, job Job) (*fhirprofiler.ValidationResult, error)

// Batch runs jobs through a fixed-size worker set.
type Batch struct {
	fn      ValidateFunc
	workers int
}

// NewBatch creates a batch runner. A non-positive worker count defaults
// to the number of CPUs.
func NewBatch(fn ValidateFunc, workers int) *Batch {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Batch{fn: fn, workers: workers}
}

// Run validates every job and returns the outcomes in submission
// order. Small batches run sequentially; parallelism pays off only
// past a couple of profiles.
func (b *Batch) Run(ctx context.Context, jobs []Job) *BatchResult {
	if len(jobs) <= 2 {
		return b.runSequential(ctx, jobs)
	}
	return b.runParallel(ctx, jobs)
}

func (b *Batch) runSequential(ctx context.Context, jobs []Job) *BatchResult {
	out := &BatchResult{Items: make([]Item, 0, len(jobs))}
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return out
		}
		result, err := b.fn(ctx, job)
		out.Items = append(out.Items, Item{Name: job.Name, Result: result, Err: err})
		out.Completed++
		if err != nil {
			out.Failed++
		}
	}
	return out
}

type indexedItem struct {
	index int
	item  Item
}

func (b *Batch) runParallel(ctx context.Context, jobs []Job) *BatchResult {
	workers := b.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	type indexedJob struct {
		index int
		job   Job
	}
	jobCh := make(chan indexedJob, len(jobs))
	itemCh := make(chan indexedItem, len(jobs))

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for ij := range jobCh {
				if ctx.Err() != nil {
					return
				}
				result, err := b.fn(ctx, ij.job)
				itemCh <- indexedItem{
					index: ij.index,
					item:  Item{Name: ij.job.Name, Result: result, Err: err},
				}
			}
		}()
	}

	for i, job := range jobs {
		jobCh <- indexedJob{index: i, job: job}
	}
	close(jobCh)

	go func() {
		wg.Wait()
		close(itemCh)
	}()

	out := &BatchResult{Items: make([]Item, len(jobs))}
	for ii := range itemCh {
		out.Items[ii.index] = ii.item
		out.Completed++
		if ii.item.Err != nil {
			out.Failed++
		}
	}
	return out
}
