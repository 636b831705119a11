// Package kdrange implements an immutable k-d tree over 2D or 3D float32
// points and answers fixed-radius ("within r") queries for large batches of
// query points in parallel.
//
// The tree is built once and never mutated afterwards, so any number of
// goroutines may query it concurrently without locking. Distances are
// squared Euclidean throughout; result order is unspecified.
//
// Basic usage:
//
//	tree, err := kdrange.Build(points, kdrange.DefaultConfig())
//	// points is a [][2]float32 or [][3]float32
//	results, err := tree.WithinBatch(queries, radius*radius)
//	// results[i] holds every (Index, SquaredDistance) within radius of queries[i]
//
// When the dimensionality is only known at runtime, use [NewIndex]:
//
//	idx, err := kdrange.NewIndex(3, flatCoords, kdrange.DefaultConfig())
//	rows, err := idx.WithinUnsorted(flatQueries, radius)
//
// # Failure isolation
//
// Batch calls are all-or-nothing. Invalid query coordinates are rejected
// before any work starts, and a panic inside any single query fails the
// whole batch with a [*QueryError] naming the query index. No partial
// results are ever returned alongside an error.
package kdrange
