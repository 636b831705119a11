package kdrange

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// span is a contiguous range [start, end) of work items.
type span struct {
	start, end int
}

// chunkSpans splits n items into contiguous chunks. A chunkSize of 0 picks
// max(1, n/workers), giving roughly one chunk per worker.
func chunkSpans(n, workers, chunkSize int) []span {
	if n == 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = max(1, n/max(1, workers))
	}
	spans := make([]span, 0, (n+chunkSize-1)/chunkSize)
	for start := 0; start < n; start += chunkSize {
		spans = append(spans, span{start: start, end: min(start+chunkSize, n)})
	}
	return spans
}

// forEachChunk calls fn(chunk, i) for every item of every span, running at
// most workers spans concurrently. Each span is handled by exactly one
// goroutine, so fn may write to per-item or per-chunk slots without
// synchronization. If workers <= 1 or there is a single span, everything runs
// on the calling goroutine.
//
// A panic inside fn is recovered and returned as a *QueryError naming the
// item being processed. Other spans still run to completion; the caller
// discards all output when an error is returned.
func forEachChunk(spans []span, workers int, fn func(chunk, i int)) error {
	if workers <= 1 || len(spans) <= 1 {
		for c, s := range spans {
			if err := runSpan(c, s, fn); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for c, s := range spans {
		g.Go(func() error {
			return runSpan(c, s, fn)
		})
	}
	return g.Wait()
}

func runSpan(chunk int, s span, fn func(chunk, i int)) (err error) {
	i := s.start
	defer func() {
		if r := recover(); r != nil {
			err = &QueryError{Query: i, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	for ; i < s.end; i++ {
		fn(chunk, i)
	}
	return nil
}
