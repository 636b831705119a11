package kdrange

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives operation counts and timings.
// Implement it to forward into a monitoring system.
type MetricsCollector interface {
	// RecordBuild is called after each Build. points is the input size.
	RecordBuild(points int, duration time.Duration, err error)

	// RecordBatch is called after each batch query. matches is the total
	// number of neighbors across all results (0 on error).
	RecordBatch(queries, matches int, duration time.Duration, err error)

	// RecordPairs is called after each pair search.
	RecordPairs(points, pairs int, duration time.Duration, err error)
}

// NoopMetricsCollector discards everything.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(int, time.Duration, error)      {}
func (NoopMetricsCollector) RecordBatch(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordPairs(int, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory counters.
// It is safe for concurrent use.
type BasicMetricsCollector struct {
	BuildCount      atomic.Int64
	BuildErrors     atomic.Int64
	BuildPoints     atomic.Int64
	BuildTotalNanos atomic.Int64

	BatchCount      atomic.Int64
	BatchErrors     atomic.Int64
	BatchQueries    atomic.Int64
	BatchMatches    atomic.Int64
	BatchTotalNanos atomic.Int64

	PairsCount      atomic.Int64
	PairsErrors     atomic.Int64
	PairsFound      atomic.Int64
	PairsTotalNanos atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(points int, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
		return
	}
	b.BuildPoints.Add(int64(points))
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(queries, matches int, duration time.Duration, err error) {
	b.BatchCount.Add(1)
	b.BatchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BatchErrors.Add(1)
		return
	}
	b.BatchQueries.Add(int64(queries))
	b.BatchMatches.Add(int64(matches))
}

// RecordPairs implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPairs(points, pairs int, duration time.Duration, err error) {
	b.PairsCount.Add(1)
	b.PairsTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.PairsErrors.Add(1)
		return
	}
	b.PairsFound.Add(int64(pairs))
}

// AverageBatchLatency returns the mean batch query latency.
func (b *BasicMetricsCollector) AverageBatchLatency() time.Duration {
	n := b.BatchCount.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(b.BatchTotalNanos.Load() / n)
}
