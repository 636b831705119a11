package kdrange

import (
	"slices"
	"time"
)

// Tree is an immutable KD-tree over points of type P. It is safe for
// concurrent use by any number of goroutines once Build has returned.
//
// The tree is stored as a complete binary tree in array form:
//   - node i has children at 2*i+1 and 2*i+2
//   - internal nodes hold a split dimension and value; every point in the
//     left subtree is <= the value along that dimension, every point in the
//     right subtree is >= it
//   - leaves reference a contiguous bucket of the tree-ordered points
type Tree[P Point] struct {
	points   []P   // points in tree order
	ids      []int // tree-order position → original identifier
	nodes    []node
	numNodes int
	depth    int
	cfg      Config
}

type node struct {
	start, end int // bucket range in points/ids
	dim        int
	split      float32
	leaf       bool
}

// BuildStats summarizes a constructed tree.
type BuildStats struct {
	Points   int
	Nodes    int
	Depth    int
	LeafSize int
	Elapsed  time.Duration
}

// Build constructs a tree from points. Point i is reported as identifier i
// by every query. points is not modified and may be reused by the caller.
//
// Returns an error wrapping ErrInvalidInput if any coordinate is NaN or
// infinite, or a config error if cfg is invalid. An empty input yields a
// valid empty tree.
func Build[P Point](points []P, cfg Config) (*Tree[P], error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	start := time.Now()
	n := len(points)
	logger := cfg.Logger.WithDimension(dimsOf[P]())

	if err := checkPoints(points, false); err != nil {
		logger.LogBuild(BuildStats{Points: n}, err)
		cfg.Metrics.RecordBuild(n, time.Since(start), err)
		return nil, err
	}

	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	t := &Tree[P]{
		points: slices.Clone(points),
		ids:    ids,
		cfg:    cfg,
	}

	if n > 0 {
		t.nodes = make([]node, maxNodes(n, cfg.LeafSize))
		t.buildNode(0, 0, n, 0)
	}

	stats := t.Stats()
	stats.Elapsed = time.Since(start)
	logger.LogBuild(stats, nil)
	cfg.Metrics.RecordBuild(n, stats.Elapsed, nil)
	return t, nil
}

// maxNodes returns an upper bound on the number of nodes needed for a
// tree over n points with the given leaf size. Splitting at count/2 leaves
// at most ceil(count/2) points on either side, so after depth levels no
// subset exceeds ceil(n/2^depth).
func maxNodes(n, leafSize int) int {
	leaves := (n + leafSize - 1) / leafSize
	depth := 0
	for v := 1; v < leaves; v *= 2 {
		depth++
	}
	return (1 << (depth + 1)) - 1
}

// buildNode recursively builds the subtree for points[start:end].
func (t *Tree[P]) buildNode(nodeID, start, end, depth int) {
	t.numNodes++
	t.depth = max(t.depth, depth)

	count := end - start
	if count <= t.cfg.LeafSize {
		t.nodes[nodeID] = node{start: start, end: end, leaf: true}
		return
	}

	dim := t.splitDim(start, end, depth)

	// Exact median; the median point itself goes right.
	half := count / 2
	selectNth(t.points[start:end], t.ids[start:end], half, dim)
	mid := start + half

	t.nodes[nodeID] = node{start: start, end: end, dim: dim, split: t.points[mid][dim]}

	t.buildNode(2*nodeID+1, start, mid, depth+1)
	t.buildNode(2*nodeID+2, mid, end, depth+1)
}

// splitDim picks the splitting dimension for points[start:end].
func (t *Tree[P]) splitDim(start, end, depth int) int {
	dims := dimsOf[P]()
	if t.cfg.Split == SplitCycle {
		return depth % dims
	}

	// Find dimension with greatest spread.
	var lo, hi [3]float32
	first := t.points[start]
	for d := 0; d < dims; d++ {
		lo[d], hi[d] = first[d], first[d]
	}
	for i := start + 1; i < end; i++ {
		p := t.points[i]
		for d := 0; d < dims; d++ {
			v := p[d]
			if v < lo[d] {
				lo[d] = v
			}
			if v > hi[d] {
				hi[d] = v
			}
		}
	}

	splitDim := 0
	maxSpread := float32(-1)
	for d := 0; d < dims; d++ {
		if spread := hi[d] - lo[d]; spread > maxSpread {
			maxSpread = spread
			splitDim = d
		}
	}
	return splitDim
}

// Len returns the number of indexed points.
func (t *Tree[P]) Len() int { return len(t.points) }

// Dims returns the dimensionality of the indexed points.
func (t *Tree[P]) Dims() int { return dimsOf[P]() }

// Depth returns the depth of the deepest leaf; a single-leaf tree has depth 0.
func (t *Tree[P]) Depth() int { return t.depth }

// NumNodes returns the number of internal and leaf nodes.
func (t *Tree[P]) NumNodes() int { return t.numNodes }

// LeafSize returns the configured leaf bucket size.
func (t *Tree[P]) LeafSize() int { return t.cfg.LeafSize }

// Stats returns the shape of the tree. Elapsed is left zero.
func (t *Tree[P]) Stats() BuildStats {
	return BuildStats{
		Points:   t.Len(),
		Nodes:    t.numNodes,
		Depth:    t.depth,
		LeafSize: t.cfg.LeafSize,
	}
}

// Within returns every indexed point whose squared distance to q is
// <= radiusSquared, in unspecified order. An empty tree returns no results.
//
// Returns an error wrapping ErrInvalidInput if q has a non-finite coordinate
// or radiusSquared is NaN or negative.
func (t *Tree[P]) Within(q P, radiusSquared float32) ([]Neighbor, error) {
	if err := checkRadiusSquared(radiusSquared); err != nil {
		return nil, err
	}
	if d, ok := finite(q); !ok {
		return nil, &CoordinateError{Query: true, Index: -1, Dim: d, Value: q[d]}
	}
	return t.appendWithin(nil, q, radiusSquared), nil
}

// appendWithin appends the range query result for q to dst. q and
// radiusSquared must already be validated.
func (t *Tree[P]) appendWithin(dst []Neighbor, q P, radiusSquared float32) []Neighbor {
	if len(t.points) == 0 {
		return dst
	}
	return t.search(0, q, radiusSquared, dst)
}

func (t *Tree[P]) search(nodeID int, q P, r2 float32, dst []Neighbor) []Neighbor {
	nd := &t.nodes[nodeID]
	if nd.leaf {
		for i := nd.start; i < nd.end; i++ {
			if d := squaredDistance(q, t.points[i]); d <= r2 {
				dst = append(dst, Neighbor{Index: t.ids[i], SquaredDistance: d})
			}
		}
		return dst
	}

	// Visit the side containing q first.
	diff := q[nd.dim] - nd.split
	near, far := 2*nodeID+1, 2*nodeID+2
	if diff >= 0 {
		near, far = far, near
	}

	dst = t.search(near, q, r2, dst)

	// The far side cannot hold anything closer than the splitting plane.
	if diff*diff <= r2 {
		dst = t.search(far, q, r2, dst)
	}
	return dst
}
