package kdrange

import (
	"fmt"
	"math"
)

// Index is a KD-tree whose dimensionality (2 or 3) is chosen at runtime.
// Points and queries are exchanged as flat row-major float32 slices or as
// rows. Like Tree, an Index is immutable and safe for concurrent use.
type Index struct {
	dims int
	impl indexImpl
}

// Match is one row of a flattened batch result: indexed point Point lies
// within range of query Query.
type Match struct {
	Query           int
	Point           int
	SquaredDistance float32
}

// Distance returns the Euclidean distance.
func (m Match) Distance() float32 {
	return float32(math.Sqrt(float64(m.SquaredDistance)))
}

type indexImpl interface {
	size() int
	withinBatch(flat []float32, r2 float32) ([][]Neighbor, error)
	pairs(r2 float32) ([]Pair, error)
}

type typedIndex[P Point] struct {
	tree *Tree[P]
}

func (x typedIndex[P]) size() int { return x.tree.Len() }

func (x typedIndex[P]) withinBatch(flat []float32, r2 float32) ([][]Neighbor, error) {
	return x.tree.WithinBatch(unflatten[P](flat), r2)
}

func (x typedIndex[P]) pairs(r2 float32) ([]Pair, error) {
	return x.tree.Pairs(r2)
}

// NewIndex builds an Index over flat row-major coordinates: point i occupies
// coords[i*dims : (i+1)*dims].
//
// Returns an error wrapping ErrDimensionMismatch if dims is not 2 or 3 or
// len(coords) is not a multiple of dims, and ErrInvalidInput if any
// coordinate is non-finite.
func NewIndex(dims int, coords []float32, cfg Config) (*Index, error) {
	if err := checkDims(dims); err != nil {
		return nil, err
	}
	if err := checkFlat(dims, coords); err != nil {
		return nil, err
	}

	var impl indexImpl
	switch dims {
	case 2:
		tree, err := Build(unflatten[[2]float32](coords), cfg)
		if err != nil {
			return nil, err
		}
		impl = typedIndex[[2]float32]{tree: tree}
	case 3:
		tree, err := Build(unflatten[[3]float32](coords), cfg)
		if err != nil {
			return nil, err
		}
		impl = typedIndex[[3]float32]{tree: tree}
	}
	return &Index{dims: dims, impl: impl}, nil
}

// NewIndexFromRows builds an Index from one slice per point. Every row must
// have exactly dims coordinates.
func NewIndexFromRows(dims int, rows [][]float32, cfg Config) (*Index, error) {
	if err := checkDims(dims); err != nil {
		return nil, err
	}
	flat, err := flattenRows(dims, rows)
	if err != nil {
		return nil, err
	}
	return NewIndex(dims, flat, cfg)
}

// Len returns the number of indexed points.
func (x *Index) Len() int { return x.impl.size() }

// Dims returns the dimensionality of the index.
func (x *Index) Dims() int { return x.dims }

// QueryBatch returns, for every query row, the indexed points within radius
// of it. results[i] answers queries[i]; each result is unordered and carries
// squared distances.
//
// Returns an error wrapping ErrDimensionMismatch if any row length differs
// from Dims, or ErrInvalidInput for a non-finite coordinate or a negative or
// NaN radius.
func (x *Index) QueryBatch(queries [][]float32, radius float32) ([][]Neighbor, error) {
	r2, err := squareRadius(radius)
	if err != nil {
		return nil, err
	}
	flat, err := flattenRows(x.dims, queries)
	if err != nil {
		return nil, err
	}
	return x.impl.withinBatch(flat, r2)
}

// WithinUnsorted runs a batch query over flat row-major query coordinates
// and returns the matches as one flat list of (query, point) rows, grouped
// by query in query order. Row order within a query is unspecified.
func (x *Index) WithinUnsorted(queries []float32, radius float32) ([]Match, error) {
	r2, err := squareRadius(radius)
	if err != nil {
		return nil, err
	}
	if err := checkFlat(x.dims, queries); err != nil {
		return nil, err
	}

	results, err := x.impl.withinBatch(queries, r2)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	out := make([]Match, 0, total)
	for q, r := range results {
		for _, nb := range r {
			out = append(out, Match{Query: q, Point: nb.Index, SquaredDistance: nb.SquaredDistance})
		}
	}
	return out, nil
}

// QueryPairs returns every pair of indexed points within radius of each
// other, each pair once with I < J.
func (x *Index) QueryPairs(radius float32) ([]Pair, error) {
	r2, err := squareRadius(radius)
	if err != nil {
		return nil, err
	}
	return x.impl.pairs(r2)
}

func checkDims(dims int) error {
	if dims != 2 && dims != 3 {
		return &DimensionError{Actual: dims}
	}
	return nil
}

func checkFlat(dims int, coords []float32) error {
	if len(coords)%dims != 0 {
		return fmt.Errorf("%w: %d coordinates is not a multiple of %d dimensions", ErrDimensionMismatch, len(coords), dims)
	}
	return nil
}

func squareRadius(radius float32) (float32, error) {
	if math.IsNaN(float64(radius)) || radius < 0 {
		return 0, &RadiusError{Radius: radius}
	}
	return radius * radius, nil
}

func flattenRows(dims int, rows [][]float32) ([]float32, error) {
	flat := make([]float32, 0, len(rows)*dims)
	for _, row := range rows {
		if len(row) != dims {
			return nil, &DimensionError{Expected: dims, Actual: len(row)}
		}
		flat = append(flat, row...)
	}
	return flat, nil
}

// unflatten copies flat row-major coordinates into points of type P.
// len(flat) must be a multiple of the dimensionality of P.
func unflatten[P Point](flat []float32) []P {
	dims := dimsOf[P]()
	out := make([]P, len(flat)/dims)
	for i := range out {
		var p P
		for d := 0; d < dims; d++ {
			p[d] = flat[i*dims+d]
		}
		out[i] = p
	}
	return out
}
