// Command kdrange builds a KD-tree over random points and times batch
// fixed-radius queries and pair searches against it.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/TrevorS/kdrange"
)

type options struct {
	dims     int
	n        int
	queries  int
	radius   float32
	seed     int64
	pairs    bool
	verify   int
	cfg      kdrange.Config
	logLevel slog.Level
}

func main() {
	// Load .env file if it exists (for KDRANGE_* defaults)
	_ = godotenv.Load()

	dims := flag.Int("dims", 2, "point dimensionality (2 or 3)")
	n := flag.Int("n", 10000, "number of indexed points")
	queries := flag.Int("queries", 10000, "number of query points")
	radius := flag.Float64("radius", 0.05, "query radius")
	seed := flag.Int64("seed", 0, "random seed")
	workers := flag.Int("workers", envInt("KDRANGE_WORKERS", 0), "worker goroutines (0 = all CPUs)")
	leaf := flag.Int("leaf", kdrange.DefaultLeafSize, "leaf bucket size")
	split := flag.String("split", string(kdrange.SplitSpread), "split policy: spread or cycle")
	pairs := flag.Bool("pairs", false, "also find all point pairs within radius")
	verifyN := flag.Int("verify", 0, "check this many queries against a brute-force scan")
	logLevel := flag.String("log-level", envString("KDRANGE_LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
	flag.Parse()

	if err := checkRadius(*radius); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q\n", *logLevel)
		os.Exit(1)
	}

	cfg := kdrange.DefaultConfig()
	cfg.Workers = *workers
	cfg.LeafSize = *leaf
	cfg.Split = kdrange.SplitPolicy(*split)

	opts := options{
		dims:     *dims,
		n:        *n,
		queries:  *queries,
		radius:   float32(*radius),
		seed:     *seed,
		pairs:    *pairs,
		verify:   *verifyN,
		cfg:      cfg,
		logLevel: level,
	}

	var err error
	switch opts.dims {
	case 2:
		err = run[[2]float32](opts)
	case 3:
		err = run[[3]float32](opts)
	default:
		err = fmt.Errorf("dimensions must be 2 or 3, got %d", opts.dims)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run[P kdrange.Point](opts options) error {
	logger := kdrange.NewTextLogger(opts.logLevel)
	metrics := &kdrange.BasicMetricsCollector{}
	opts.cfg.Logger = logger
	opts.cfg.Metrics = metrics

	rng := rand.New(rand.NewSource(opts.seed))
	points := randomPoints[P](rng, opts.n)
	queries := randomPoints[P](rng, opts.queries)

	start := time.Now()
	tree, err := kdrange.Build(points, opts.cfg)
	if err != nil {
		return err
	}
	stats := tree.Stats()
	fmt.Printf("build @ %.3fs (points=%d nodes=%d depth=%d)\n",
		time.Since(start).Seconds(), stats.Points, stats.Nodes, stats.Depth)

	r2 := opts.radius * opts.radius

	start = time.Now()
	results, err := tree.WithinBatch(queries, r2)
	if err != nil {
		return err
	}
	fmt.Printf("within_unsorted @ %.3fs\n", time.Since(start).Seconds())

	counts := make([]float64, len(results))
	rows := 0
	for i, r := range results {
		counts[i] = float64(len(r))
		rows += len(r)
	}
	fmt.Printf("  rows: %d\n", rows)
	if len(counts) > 0 {
		mean, std := stat.MeanStdDev(counts, nil)
		slices.Sort(counts)
		median := stat.Quantile(0.5, stat.Empirical, counts, nil)
		fmt.Printf("  neighbors per query: mean=%.2f std=%.2f median=%.0f max=%.0f\n",
			mean, std, median, floats.Max(counts))
	}

	if opts.pairs {
		start = time.Now()
		pairs, err := tree.Pairs(r2)
		if err != nil {
			return err
		}
		fmt.Printf("query_pairs @ %.3fs\n", time.Since(start).Seconds())
		fmt.Printf("  rows: %d\n", len(pairs))
	}

	if opts.verify > 0 {
		if err := verify(points, queries, results, r2, opts.verify); err != nil {
			return err
		}
		fmt.Printf("verified %d queries against brute force\n", min(opts.verify, len(queries)))
	}

	logger.Debug("metrics",
		"batches", metrics.BatchCount.Load(),
		"matches", metrics.BatchMatches.Load(),
		"avg_batch_latency", metrics.AverageBatchLatency(),
	)
	return nil
}

func randomPoints[P kdrange.Point](rng *rand.Rand, n int) []P {
	out := make([]P, n)
	for i := range out {
		var p P
		for d := 0; d < len(p); d++ {
			p[d] = rng.Float32()
		}
		out[i] = p
	}
	return out
}

// verify compares the first k results with an exhaustive scan.
func verify[P kdrange.Point](points, queries []P, results [][]kdrange.Neighbor, r2 float32, k int) error {
	for q := 0; q < min(k, len(queries)); q++ {
		want := kdrange.BruteWithin(points, queries[q], r2)
		got := slices.Clone(results[q])
		slices.SortFunc(got, func(a, b kdrange.Neighbor) int { return a.Index - b.Index })
		if !slices.Equal(got, want) {
			return fmt.Errorf("query %d: tree returned %d neighbors, brute force %d", q, len(got), len(want))
		}
	}
	return nil
}

func checkRadius(r float64) error {
	if math.IsNaN(r) || r < 0 {
		return fmt.Errorf("radius must be a non-negative number, got %v", r)
	}
	return nil
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
