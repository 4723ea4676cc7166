// Package workpool implements the "parallel map over independent items"
// primitive spec.md §5 requires the copy-move analyzer's block-feature
// extraction to use. Grounded on two corpus idioms: the
// sync.WaitGroup-over-row-slices pattern in the para-convolution reference
// image effects and the NumWorkers configuration field threaded through
// the imaged engine's scanner.Config.
package workpool

import (
	"runtime"
	"sync"
)

// Map applies fn to every element of items concurrently across workers
// goroutines (runtime.NumCPU() if workers <= 0) and returns results in
// input order. Order is restored by index, not completion time, so the
// result is identical regardless of goroutine scheduling — this is what
// lets callers built on top of Map stay deterministic as spec.md §5 and
// §9 require.
func Map[T any, R any](items []T, workers int, fn func(T) R) []R {
	n := len(items)
	results := make([]R, n)
	if n == 0 {
		return results
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i, item := range items {
			results[i] = fn(item)
		}
		return results
	}

	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				results[i] = fn(items[i])
			}
		}(start, end)
	}
	wg.Wait()
	return results
}
