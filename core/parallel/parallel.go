package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Parallelize divides items into contiguous [start, end) ranges and runs fn
// on each range, using at most workers goroutines. workers <= 0 means one
// worker per CPU core; workers == 1 runs fn(ctx, 0, items) on the calling
// goroutine.
//
// The first error returned by any range cancels ctx for the remaining ranges
// and is returned once every started range has finished.
func Parallelize(ctx context.Context, items, workers int, fn func(ctx context.Context, start, end int) error) error {
	if items == 0 {
		return nil
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > items {
		workers = items // No need for more workers than items
	}
	if workers == 1 {
		return fn(ctx, 0, items)
	}

	// Ceiling division so every item is covered
	chunkSize := (items + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, start, end)
		})
	}

	return g.Wait()
}
