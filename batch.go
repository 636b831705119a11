package kdrange

import "time"

// WithinBatch runs Within for every query in parallel and returns one result
// per query: results[i] answers queries[i]. The contents of each result are
// unordered.
//
// Queries are split into contiguous chunks (see Config.ChunkSize) and
// processed by at most Config.Workers goroutines. The call is all-or-nothing:
// invalid input is rejected before any query runs, and a failure inside any
// query returns a *QueryError and no results.
func (t *Tree[P]) WithinBatch(queries []P, radiusSquared float32) ([][]Neighbor, error) {
	start := time.Now()
	results, matches, err := t.withinBatch(queries, radiusSquared)
	elapsed := time.Since(start)

	t.cfg.Logger.LogBatch(len(queries), matches, elapsed, err)
	t.cfg.Metrics.RecordBatch(len(queries), matches, elapsed, err)
	return results, err
}

func (t *Tree[P]) withinBatch(queries []P, r2 float32) ([][]Neighbor, int, error) {
	if err := checkRadiusSquared(r2); err != nil {
		return nil, 0, err
	}
	if err := checkPoints(queries, true); err != nil {
		return nil, 0, err
	}

	results := make([][]Neighbor, len(queries))
	spans := chunkSpans(len(queries), t.cfg.Workers, t.cfg.ChunkSize)
	err := forEachChunk(spans, t.cfg.Workers, func(_, i int) {
		results[i] = t.appendWithin(nil, queries[i], r2)
	})
	if err != nil {
		return nil, 0, err
	}

	matches := 0
	for _, r := range results {
		matches += len(r)
	}
	return results, matches, nil
}
