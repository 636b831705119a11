package kdrange

import (
	"fmt"
	"runtime"
)

// SplitPolicy selects how the splitting dimension of each tree node is chosen.
type SplitPolicy string

const (
	// SplitSpread splits along the dimension with the greatest coordinate
	// spread in the node's subset. Ties go to the lowest dimension.
	SplitSpread SplitPolicy = "spread"
	// SplitCycle cycles through the dimensions by tree depth.
	SplitCycle SplitPolicy = "cycle"
)

// DefaultLeafSize is the bucket size used when Config.LeafSize is 0.
const DefaultLeafSize = 32

// Config controls tree construction and batch query behavior.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// LeafSize is the maximum number of points stored in a leaf bucket.
	// Larger values make the tree shallower at the cost of longer leaf scans.
	// Must be >= 1. Default: 32.
	LeafSize int

	// Split selects the splitting dimension policy. Default: "spread".
	Split SplitPolicy

	// Workers bounds the number of goroutines used by batch queries and
	// pair searches. 0 means runtime.NumCPU(). 1 runs on the caller's
	// goroutine. Must be >= 0.
	Workers int

	// ChunkSize is the number of consecutive queries handed to a worker at a
	// time. 0 means max(1, n/Workers) for a batch of n queries.
	// Must be >= 0.
	ChunkSize int

	// Logger receives build and query diagnostics. nil disables logging.
	Logger *Logger

	// Metrics receives operation counts and timings. nil disables collection.
	Metrics MetricsCollector
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		LeafSize: DefaultLeafSize,
		Split:    SplitSpread,
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if cfg.LeafSize < 1 {
		return fmt.Errorf("kdrange: LeafSize must be >= 1, got %d", cfg.LeafSize)
	}
	switch cfg.Split {
	case SplitSpread, SplitCycle:
		// valid
	default:
		return fmt.Errorf("kdrange: Split must be %q or %q, got %q", SplitSpread, SplitCycle, cfg.Split)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("kdrange: Workers must be >= 0 (0 means runtime.NumCPU()), got %d", cfg.Workers)
	}
	if cfg.ChunkSize < 0 {
		return fmt.Errorf("kdrange: ChunkSize must be >= 0 (0 means automatic), got %d", cfg.ChunkSize)
	}
	return nil
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.LeafSize == 0 {
		cfg.LeafSize = DefaultLeafSize
	}
	if cfg.Split == "" {
		cfg.Split = SplitSpread
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Logger == nil {
		cfg.Logger = NoopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NoopMetricsCollector{}
	}
}
