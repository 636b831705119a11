package kdrange

import "math"

// Point is the set of supported point types: 2D and 3D float32 coordinates.
type Point interface {
	~[2]float32 | ~[3]float32
}

// Neighbor is one entry of a range query result: the identifier of an indexed
// point (its position in the input to [Build]) and its squared distance to
// the query point.
type Neighbor struct {
	Index           int
	SquaredDistance float32
}

// Distance returns the Euclidean distance.
func (n Neighbor) Distance() float32 {
	return float32(math.Sqrt(float64(n.SquaredDistance)))
}

// squaredDistance computes the squared Euclidean distance between a and b.
// Terms are accumulated in dimension order; the tree pruning rule relies on
// the sum never being smaller than any single term.
func squaredDistance[P Point](a, b P) float32 {
	var sum float32
	for d := 0; d < len(a); d++ {
		diff := a[d] - b[d]
		sum += diff * diff
	}
	return sum
}

// finite reports the first non-finite coordinate of p, if any.
func finite[P Point](p P) (dim int, ok bool) {
	for d := 0; d < len(p); d++ {
		v := float64(p[d])
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return d, false
		}
	}
	return 0, true
}

// dimsOf returns the dimensionality of P.
func dimsOf[P Point]() int {
	var p P
	return len(p)
}
