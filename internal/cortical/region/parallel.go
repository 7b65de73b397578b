package region

import (
	"runtime"
	"sync"
)

// forEachColumn runs fn(i) for every column index, either sequentially or
// sharded across GOMAXPROCS workers with a full barrier at the end,
// depending on the region's Parallel config. RunOnce never overlaps two
// phases: every call here is itself a barrier, so no phase begins before
// the previous one's writes are visible to all columns.
func (r *Region) forEachColumn(fn func(i int)) {
	n := len(r.columns)
	if !r.config.Parallel || n < 2 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= n {
			break
		}
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}
