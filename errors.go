package kdrange

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidInput is returned when a point, query or radius is not a
	// finite, well-formed value.
	ErrInvalidInput = errors.New("kdrange: invalid input")

	// ErrDimensionMismatch is returned when point or query dimensionality
	// does not match the index.
	ErrDimensionMismatch = errors.New("kdrange: dimension mismatch")
)

// CoordinateError reports a non-finite coordinate in an indexed point or a
// query point.
type CoordinateError struct {
	// Query is true when the bad coordinate belongs to a query point.
	Query bool
	// Index is the position of the offending point in its input sequence,
	// or -1 for the single query point passed to Tree.Within.
	Index int
	Dim   int
	Value float32
}

func (e *CoordinateError) Error() string {
	kind := "point"
	if e.Query {
		kind = "query"
	}
	if e.Index < 0 {
		return fmt.Sprintf("kdrange: %s has non-finite coordinate %v in dimension %d", kind, e.Value, e.Dim)
	}
	return fmt.Sprintf("kdrange: %s %d has non-finite coordinate %v in dimension %d", kind, e.Index, e.Value, e.Dim)
}

func (e *CoordinateError) Is(target error) bool { return target == ErrInvalidInput }

// RadiusError reports a radius that is NaN or negative.
type RadiusError struct {
	Radius float32
}

func (e *RadiusError) Error() string {
	return fmt.Sprintf("kdrange: radius must be a non-negative number, got %v", e.Radius)
}

func (e *RadiusError) Is(target error) bool { return target == ErrInvalidInput }

// DimensionError reports an unsupported or mismatched dimensionality.
type DimensionError struct {
	Expected int
	Actual   int
}

func (e *DimensionError) Error() string {
	if e.Expected == 0 {
		return fmt.Sprintf("kdrange: dimensions must be 2 or 3, got %d", e.Actual)
	}
	return fmt.Sprintf("kdrange: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *DimensionError) Is(target error) bool { return target == ErrDimensionMismatch }

// QueryError reports a failure while answering a single query of a batch.
// The whole batch fails; Query names the first failing query observed.
type QueryError struct {
	Query int
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("kdrange: query %d failed: %v", e.Query, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

func checkPoints[P Point](points []P, query bool) error {
	for i, p := range points {
		if d, ok := finite(p); !ok {
			return &CoordinateError{Query: query, Index: i, Dim: d, Value: p[d]}
		}
	}
	return nil
}

// checkRadiusSquared accepts zero, positive values and +Inf.
func checkRadiusSquared(r2 float32) error {
	if math.IsNaN(float64(r2)) || r2 < 0 {
		return &RadiusError{Radius: r2}
	}
	return nil
}
