package kmr

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with pipeline-specific helpers so every stage
// logs the same field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler. If handler is
// nil, a text handler to stderr at info level is used.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// LogStep logs one iteration's outcome.
func (l *Logger) LogStep(step int, prev, current, variation float64) {
	l.Info("iteration completed",
		"step", step,
		"prev_objective", prev,
		"objective", current,
		"variation_pct", variation,
	)
}

// LogConfig logs the run parameters at startup.
func (l *Logger) LogConfig(d, k int, seed int64, threshold float64, maxIterations int) {
	l.Info("configuration loaded",
		"dimensions", d,
		"clusters", k,
		"seed", seed,
		"threshold_pct", threshold,
		"max_iterations", maxIterations,
	)
}
