package kdrange

import (
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinBatch_PositionalCorrespondence(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	points := randPoints[[2]float32](rng, 800, 1)
	allQueries := randPoints[[2]float32](rng, 60, 1)

	for _, workers := range []int{1, 2, 4, 16} {
		for _, chunk := range []int{0, 1, 3, 100} {
			cfg := DefaultConfig()
			cfg.Workers = workers
			cfg.ChunkSize = chunk
			tree, err := Build(points, cfg)
			require.NoError(t, err)

			for n := 0; n <= len(allQueries); n += 7 {
				queries := allQueries[:n]
				results, err := tree.WithinBatch(queries, 0.01)
				require.NoError(t, err)
				require.Len(t, results, n)

				for i, q := range queries {
					requireSameNeighbors(t, BruteWithin(points, q, 0.01), results[i],
						"workers=%d chunk=%d n=%d query=%d", workers, chunk, n, i)
				}
			}
		}
	}
}

func TestWithinBatch_MatchesSequential3D(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	points := randPoints[[3]float32](rng, 5000, 1)
	queries := randPoints[[3]float32](rng, 2000, 1)

	cfg := DefaultConfig()
	cfg.Workers = 8
	tree, err := Build(points, cfg)
	require.NoError(t, err)

	results, err := tree.WithinBatch(queries, 0.0025)
	require.NoError(t, err)
	for i, q := range queries {
		want, err := tree.Within(q, 0.0025)
		require.NoError(t, err)
		requireSameNeighbors(t, want, results[i])
	}
}

func TestWithinBatch_EmptyIndex(t *testing.T) {
	tree, err := Build[[2]float32](nil, DefaultConfig())
	require.NoError(t, err)

	results, err := tree.WithinBatch([][2]float32{{0, 0}, {1, 1}, {2, 2}}, 100)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Empty(t, r)
	}
}

func TestWithinBatch_InvalidQueryFailsWholeBatch(t *testing.T) {
	rng := rand.New(rand.NewSource(14))
	tree, err := Build(randPoints[[2]float32](rng, 100, 1), DefaultConfig())
	require.NoError(t, err)

	queries := randPoints[[2]float32](rng, 40, 1)
	queries[17][1] = float32(math.Inf(-1))

	results, err := tree.WithinBatch(queries, 0.1)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Nil(t, results)

	var ce *CoordinateError
	require.ErrorAs(t, err, &ce)
	assert.True(t, ce.Query)
	assert.Equal(t, 17, ce.Index)
	assert.Equal(t, 1, ce.Dim)
}

func TestWithinBatch_InvalidRadius(t *testing.T) {
	tree, err := Build([][2]float32{{0, 0}}, DefaultConfig())
	require.NoError(t, err)

	for _, r2 := range []float32{-0.5, float32(math.NaN())} {
		results, err := tree.WithinBatch([][2]float32{{0, 0}}, r2)
		require.ErrorIs(t, err, ErrInvalidInput)
		assert.Nil(t, results)

		var re *RadiusError
		assert.ErrorAs(t, err, &re)
	}
}

func TestWithinBatch_ConcurrentCallers(t *testing.T) {
	rng := rand.New(rand.NewSource(15))
	points := randPoints[[2]float32](rng, 2000, 1)
	queries := randPoints[[2]float32](rng, 200, 1)

	cfg := DefaultConfig()
	cfg.Workers = 4
	tree, err := Build(points, cfg)
	require.NoError(t, err)

	want, err := tree.WithinBatch(queries, 0.002)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	got := make([][][]Neighbor, 8)
	for g := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[g], errs[g] = tree.WithinBatch(queries, 0.002)
		}()
	}
	wg.Wait()

	for g := range errs {
		require.NoError(t, errs[g])
		for i := range queries {
			requireSameNeighbors(t, want[i], got[g][i])
		}
	}
}

// --- Work distribution tests ---

func TestChunkSpans(t *testing.T) {
	tests := []struct {
		n, workers, chunk int
		wantSpans         int
	}{
		{0, 4, 0, 0},
		{1, 4, 0, 1},
		{10, 4, 0, 5}, // chunk = 10/4 = 2
		{10, 1, 0, 1},
		{10, 4, 3, 4},
		{10, 4, 100, 1},
		{3, 8, 0, 3}, // chunk floors at 1
	}
	for _, tt := range tests {
		spans := chunkSpans(tt.n, tt.workers, tt.chunk)
		require.Len(t, spans, tt.wantSpans, "n=%d workers=%d chunk=%d", tt.n, tt.workers, tt.chunk)

		// Spans are contiguous and cover [0, n).
		next := 0
		for _, s := range spans {
			require.Equal(t, next, s.start)
			require.Greater(t, s.end, s.start)
			next = s.end
		}
		require.Equal(t, tt.n, next)
	}
}

func TestForEachChunk_VisitsEveryItemOnce(t *testing.T) {
	for _, workers := range []int{1, 3, 8} {
		n := 1000
		seen := make([]int, n)
		spans := chunkSpans(n, workers, 7)
		err := forEachChunk(spans, workers, func(_, i int) {
			seen[i]++
		})
		require.NoError(t, err)
		for i, c := range seen {
			require.Equal(t, 1, c, "workers=%d item=%d", workers, i)
		}
	}
}

func TestForEachChunk_PanicReportsItem(t *testing.T) {
	for _, workers := range []int{1, 4} {
		spans := chunkSpans(100, workers, 10)
		err := forEachChunk(spans, workers, func(_, i int) {
			if i == 42 {
				panic("boom")
			}
		})
		require.Error(t, err)

		var qe *QueryError
		require.ErrorAs(t, err, &qe)
		assert.Equal(t, 42, qe.Query)
		assert.Contains(t, err.Error(), "boom")
	}
}

func TestWithinBatch_PanicFailsWholeBatch(t *testing.T) {
	rng := rand.New(rand.NewSource(16))
	for _, workers := range []int{1, 4} {
		cfg := DefaultConfig()
		cfg.Workers = workers
		cfg.LeafSize = 4
		tree, err := Build(randPoints[[2]float32](rng, 200, 1), cfg)
		require.NoError(t, err)
		corruptRoot(tree)

		results, err := tree.WithinBatch(randPoints[[2]float32](rng, 50, 1), 0.01)
		assert.Nil(t, results, "workers=%d", workers)

		var qe *QueryError
		require.ErrorAs(t, err, &qe)
		assert.GreaterOrEqual(t, qe.Query, 0)
		assert.Less(t, qe.Query, 50)
		if workers == 1 {
			assert.Equal(t, 0, qe.Query)
		}
	}
}
