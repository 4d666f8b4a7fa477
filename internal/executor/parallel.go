package executor

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Parallel runs each batch's jobs concurrently across a worker pool, with a
// barrier between batches: batch N+1 only starts once every job in batch N
// has finished, matching the layered plan's dependency structure.
//
// Unlike Serial, Parallel never calls SetLog on a job: there is no single
// shared buffer that could safely receive concurrent writes without
// interleaving, so a job's output goes wherever its own log sink defaults
// to. This is a deliberate, documented asymmetry, not an oversight.
//
// A failing job is logged via opts.Log and still counted done; like
// Serial, Parallel does not abort on it, so later batches run even though
// one of their declared inputs may be missing.
//
// ctx is only checked between batches: cancelling it (e.g. on interrupt)
// stops further batches from starting but never interrupts one already in
// flight.
func Parallel(ctx context.Context, batches [][]Job, opts Options) error {
	p := newProgress(workerCount(batches, opts.Jobs))
	defer p.flush()

	total := 0
	for _, b := range batches {
		total += len(b)
	}
	done := 0

	for _, batch := range batches {
		if err := ctx.Err(); err != nil {
			return err
		}

		width := workerCount([][]Job{batch}, opts.Jobs)
		sem := make(chan struct{}, width)
		var eg errgroup.Group
		var mu sync.Mutex
		lines := make([]string, 0, len(batch))

		for _, job := range batch {
			job := job
			sem <- struct{}{}
			eg.Go(func() error {
				defer func() { <-sem }()

				err := job.Run()

				mu.Lock()
				done++
				lines = append(lines, progressLine(done, total, job.Name(), job.Input()))
				mu.Unlock()

				if err != nil {
					logJob(opts, "%s(%s) failed: %v", job.Name(), job.Input(), err)
				}
				// A job failure never fails the group: the build proceeds
				// past it regardless of executor, per the continue-on-
				// failure contract (see the Serial doc comment).
				return nil
			})
		}
		_ = eg.Wait()

		// Printed together after the batch drains, in whatever order its
		// jobs happened to finish — matching the batched progress buffer
		// the parallel build accumulates under lock and flushes once
		// stdout is safe to write to again.
		for _, line := range lines {
			fmt.Println(line)
		}
		p.set(0, summaryLine(done, total))
	}

	return nil
}

// workerCount returns how many jobs of the widest given batch may run at
// once: the configured cap, or the batch width itself when uncapped.
func workerCount(batches [][]Job, cap int) int {
	widest := 0
	for _, b := range batches {
		if len(b) > widest {
			widest = len(b)
		}
	}
	if widest == 0 {
		widest = 1
	}
	if cap > 0 && cap < widest {
		return cap
	}
	return widest
}
