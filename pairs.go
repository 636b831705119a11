package kdrange

import (
	"errors"
	"math"
	"time"
)

// Pair is two indexed points within range of each other. I < J always holds.
type Pair struct {
	I, J            int
	SquaredDistance float32
}

// Distance returns the Euclidean distance.
func (p Pair) Distance() float32 {
	return float32(math.Sqrt(float64(p.SquaredDistance)))
}

// Pairs returns every pair of indexed points whose squared distance is
// <= radiusSquared. Each unordered pair is reported once, with I < J.
// Output order is unspecified.
//
// Pairs uses the same parallel chunking as WithinBatch, issuing one range
// query per indexed point.
func (t *Tree[P]) Pairs(radiusSquared float32) ([]Pair, error) {
	start := time.Now()
	pairs, err := t.pairs(radiusSquared)
	elapsed := time.Since(start)

	t.cfg.Logger.LogPairs(t.Len(), len(pairs), elapsed, err)
	t.cfg.Metrics.RecordPairs(t.Len(), len(pairs), elapsed, err)
	return pairs, err
}

func (t *Tree[P]) pairs(r2 float32) ([]Pair, error) {
	if err := checkRadiusSquared(r2); err != nil {
		return nil, err
	}

	// Walk points in tree order; neighbouring queries then touch the same
	// leaves.
	spans := chunkSpans(t.Len(), t.cfg.Workers, t.cfg.ChunkSize)
	local := make([][]Pair, len(spans))
	bufs := make([][]Neighbor, len(spans))
	err := forEachChunk(spans, t.cfg.Workers, func(chunk, k int) {
		i := t.ids[k]
		buf := t.appendWithin(bufs[chunk][:0], t.points[k], r2)
		bufs[chunk] = buf
		for _, nb := range buf {
			if nb.Index > i {
				local[chunk] = append(local[chunk], Pair{I: i, J: nb.Index, SquaredDistance: nb.SquaredDistance})
			}
		}
	})
	if err != nil {
		var qe *QueryError
		if errors.As(err, &qe) {
			qe.Query = t.ids[qe.Query]
		}
		return nil, err
	}

	total := 0
	for _, l := range local {
		total += len(l)
	}
	if total == 0 {
		return nil, nil
	}
	out := make([]Pair, 0, total)
	for _, l := range local {
		out = append(out, l...)
	}
	return out, nil
}
