package filter

import (
	"runtime"
	"sync"
)

// Parallel tuning parameters
const (
	// MinParallelPixels is the grid size below which rows are processed on
	// the calling goroutine.
	MinParallelPixels = 128 * 128

	// RowsPerStrip is the number of rows a worker takes from the queue at a time.
	RowsPerStrip = 32
)

// forEachRow calls fn(y) for every row in [0, height). Rows are processed in
// strips by GOMAXPROCS workers when the grid is large enough; fn must only
// write outputs belonging to its own row.
func forEachRow(width, height int, fn func(y int)) {
	if width*height < MinParallelPixels {
		for y := 0; y < height; y++ {
			fn(y)
		}
		return
	}

	numStrips := (height + RowsPerStrip - 1) / RowsPerStrip
	numWorkers := min(runtime.GOMAXPROCS(0), numStrips)

	work := make(chan int, numStrips)
	for strip := 0; strip < numStrips; strip++ {
		work <- strip
	}
	close(work)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for strip := range work {
				rowStart := strip * RowsPerStrip
				rowEnd := min(rowStart+RowsPerStrip, height)
				for y := rowStart; y < rowEnd; y++ {
					fn(y)
				}
			}
		}()
	}
	wg.Wait()
}

// clamp constrains an integer value to the range [lo, hi].
// Used for replicated-border sampling.
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
