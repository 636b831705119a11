package kdrange

import (
	"cmp"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func randPoints[P Point](rng *rand.Rand, n int, scale float32) []P {
	out := make([]P, n)
	for i := range out {
		var p P
		for d := 0; d < len(p); d++ {
			p[d] = rng.Float32() * scale
		}
		out[i] = p
	}
	return out
}

// gridPoints returns points on a coarse integer grid so that many share
// coordinates along every axis.
func gridPoints[P Point](rng *rand.Rand, n, cells int) []P {
	out := make([]P, n)
	for i := range out {
		var p P
		for d := 0; d < len(p); d++ {
			p[d] = float32(rng.Intn(cells))
		}
		out[i] = p
	}
	return out
}

func sortedNeighbors(ns []Neighbor) []Neighbor {
	out := slices.Clone(ns)
	slices.SortFunc(out, func(a, b Neighbor) int { return cmp.Compare(a.Index, b.Index) })
	return out
}

func sortedPairs(ps []Pair) []Pair {
	out := slices.Clone(ps)
	slices.SortFunc(out, func(a, b Pair) int {
		if c := cmp.Compare(a.I, b.I); c != 0 {
			return c
		}
		return cmp.Compare(a.J, b.J)
	})
	return out
}

// requireSameNeighbors asserts that got and want hold the same entries,
// ignoring order. nil and empty are equivalent.
func requireSameNeighbors(t *testing.T, want, got []Neighbor, msgAndArgs ...any) {
	t.Helper()
	if len(want) == 0 && len(got) == 0 {
		return
	}
	require.Equal(t, sortedNeighbors(want), sortedNeighbors(got), msgAndArgs...)
}

// checkTreeInvariants walks every internal node and verifies the split
// invariant, then checks that the leaves partition the tree-ordered points.
func checkTreeInvariants[P Point](t *testing.T, tree *Tree[P]) {
	t.Helper()
	if tree.Len() == 0 {
		require.Zero(t, tree.NumNodes())
		return
	}

	covered := make([]int, tree.Len())
	var walk func(id int)
	walk = func(id int) {
		nd := tree.nodes[id]
		if nd.leaf {
			require.LessOrEqual(t, nd.end-nd.start, tree.LeafSize(), "leaf %d too large", id)
			for i := nd.start; i < nd.end; i++ {
				covered[i]++
			}
			return
		}
		left, right := tree.nodes[2*id+1], tree.nodes[2*id+2]
		require.Equal(t, nd.start, left.start)
		require.Equal(t, left.end, right.start)
		require.Equal(t, nd.end, right.end)
		for i := left.start; i < left.end; i++ {
			require.LessOrEqual(t, tree.points[i][nd.dim], nd.split, "node %d left point %d", id, i)
		}
		for i := right.start; i < right.end; i++ {
			require.GreaterOrEqual(t, tree.points[i][nd.dim], nd.split, "node %d right point %d", id, i)
		}
		walk(2*id + 1)
		walk(2*id + 2)
	}
	walk(0)

	for i, c := range covered {
		require.Equal(t, 1, c, "tree position %d covered %d times", i, c)
	}
}
