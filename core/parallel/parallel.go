package parallel

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/YuminosukeSato/outcomecv/pkg/errors"
)

// ResolveWorkers turns an n_jobs style value into a worker count:
// values below 1 other than -1 mean 1, -1 means one worker per CPU.
func ResolveWorkers(nJobs int) int {
	if nJobs == -1 {
		return runtime.NumCPU()
	}
	if nJobs < 1 {
		return 1
	}
	return nJobs
}

// Parallelize divides items into contiguous ranges, one per worker, and runs fn
// on each range concurrently. workers is capped at items.
func Parallelize(items, workers int, fn func(start, end int)) {
	if items == 0 {
		return
	}
	if workers < 1 {
		workers = 1
	}
	if workers > items {
		workers = items // No need for more workers than items
	}

	// Calculate the number of items each worker handles (ceiling division)
	chunkSize := (items + workers - 1) / workers

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ForEach calls fn(i) for every i in [0, n) using at most workers goroutines.
// Each call should write only to its own result slot.
//
// A panic in fn is recovered into an error. Once any call fails or ctx is
// cancelled, no further indices are started. The returned error is the one
// with the lowest index, so failures are reported deterministically.
func ForEach(ctx context.Context, n, workers int, fn func(i int) error) error {
	if n == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	errs := make([]error, n)

	if workers == 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return errors.Wrap(err, "parallel: cancelled")
			}
			if err := runOne(i, fn); err != nil {
				return err
			}
		}
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := runOne(i, fn); err != nil {
					errs[i] = err
					cancel()
				}
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "parallel: cancelled")
	}
	return nil
}

func runOne(i int, fn func(int) error) error {
	return errors.SafeExecute(fmt.Sprintf("task %d", i), func() error {
		return fn(i)
	})
}
