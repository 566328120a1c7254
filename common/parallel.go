package common

import (
	"golang.org/x/sync/errgroup"
)

// Parallel partitions [0, n) into contiguous chunks and runs fn on each chunk
// using the device's worker bound. Chunks never overlap, so fn may write to
// disjoint output ranges without locking. The first error returned by any
// chunk is returned after all chunks finish.
//
// Arguments:
//   - dev: The device whose worker bound is used.
//   - n: The number of independent work items.
//   - fn: Function executed for each partition [start, end).
//
// Returns:
//   - error: An *UnsupportedConfigError if dev is unusable, otherwise the
//     first error reported by fn, if any.
//
// @example
//
//	err := common.Parallel(dev, height, func(start, end int) error {
//	    for y := start; y < end; y++ {
//	        // Process row y
//	    }
//	    return nil
//	})
func Parallel(dev Device, n int, fn func(start, end int) error) error {
	if err := dev.Validate("common.Parallel"); err != nil {
		return err
	}
	if n <= 0 {
		return nil
	}

	workers := dev.workers()
	// Small jobs are not worth the goroutine overhead.
	if workers <= 1 || n < workers*2 {
		return fn(0, n)
	}

	chunk := chooseChunk(n, workers)
	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			return fn(start, end)
		})
	}
	return g.Wait()
}

// chooseChunk picks a chunk size that gives every worker a few chunks to
// balance uneven rows while keeping cache locality.
func chooseChunk(n, workers int) int {
	chunk := n / (workers * 4)
	switch {
	case chunk < 1:
		return 1
	case chunk > 128:
		return 128
	default:
		return chunk
	}
}
