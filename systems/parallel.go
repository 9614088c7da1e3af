package systems

import "sync"

// parallelThreshold is the minimum particle count to split work across goroutines.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 1024

// parallelFor splits [0, n) into contiguous chunks, one per worker, and blocks
// until all chunks are done. fn receives the worker index so callers can keep
// per-worker accumulators without locking.
func parallelFor(n, workers int, fn func(worker, start, end int)) {
	if workers <= 1 || n < parallelThreshold {
		fn(0, 0, n)
		return
	}
	if workers > n {
		workers = n
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		if start >= n {
			break
		}
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(worker, s, e int) {
			defer wg.Done()
			fn(worker, s, e)
		}(w, start, end)
	}
	wg.Wait()
}
