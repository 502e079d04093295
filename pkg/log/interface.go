// Package log provides the structured logging interface used across outcomecv.
//
// The interface is slog-shaped (message plus key/value pairs) and is backed in
// production by zerolog; tests use TestLogger to capture JSON lines in memory.
//
// Example usage:
//
//	logger := log.GetLogger().With(
//	    log.ModelNameKey, "ElasticNet",
//	    log.RunIDKey, runID,
//	)
//	logger.Info("Performing LOO cross-validation",
//	    log.SamplesKey, 120,
//	    log.FeaturesKey, 14,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are alternating key/value pairs. For Error, an error passed as the
// first field is attached as the error itself (with its stack when available).
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	//
	// Example:
	//   logger.Error("Run failed",
	//       err,
	//       log.OperationKey, log.OperationFit,
	//   )
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4 // Detailed diagnostic information
	LevelInfo  Level = 0  // General operational information
	LevelWarn  Level = 4  // Warning conditions
	LevelError Level = 8  // Error conditions
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// VerbosityToLevel maps the CLI verbosity count onto a Level:
// 0 or less is warnings only, 1 is info, 2 and above is debug.
func VerbosityToLevel(verbosity int) Level {
	switch {
	case verbosity <= 0:
		return LevelWarn
	case verbosity == 1:
		return LevelInfo
	default:
		return LevelDebug
	}
}
