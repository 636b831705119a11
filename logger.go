package kdrange

import (
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with kdrange-specific helpers so that build and
// query diagnostics use consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dims int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dims", dims),
	}
}

// LogBuild logs a tree construction.
func (l *Logger) LogBuild(stats BuildStats, err error) {
	if err != nil {
		l.Error("build failed",
			"points", stats.Points,
			"error", err,
		)
		return
	}
	l.Debug("build completed",
		"points", stats.Points,
		"nodes", stats.Nodes,
		"depth", stats.Depth,
		"leaf_size", stats.LeafSize,
		"elapsed", stats.Elapsed,
	)
}

// LogBatch logs a batch range query.
func (l *Logger) LogBatch(queries, matches int, elapsed time.Duration, err error) {
	if err != nil {
		l.Error("batch query failed",
			"queries", queries,
			"error", err,
		)
		return
	}
	l.Debug("batch query completed",
		"queries", queries,
		"matches", matches,
		"elapsed", elapsed,
	)
}

// LogPairs logs a pair search.
func (l *Logger) LogPairs(points, pairs int, elapsed time.Duration, err error) {
	if err != nil {
		l.Error("pair search failed",
			"points", points,
			"error", err,
		)
		return
	}
	l.Debug("pair search completed",
		"points", points,
		"pairs", pairs,
		"elapsed", elapsed,
	)
}
