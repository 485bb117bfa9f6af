// Package log provides a structured logging interface for G-SHAP estimation.
//
// The Logger interface is slog-shaped so callers can pass key-value pairs
// exactly as they would to log/slog, while the default implementation is
// backed by zerolog. Explainer operations log their sample counts, feature
// counts and durations through the attribute keys defined in attributes.go.
//
// Example usage:
//
//	logger := log.GetLoggerWithName("explainer").With(
//	    log.ModelNameKey, "Logistic",
//	)
//	logger.Info("Attribution finished",
//	    log.OperationKey, log.OperationValues,
//	    log.NSamplesKey, 2052,
//	    log.FeaturesKey, 2,
//	)
package log

import (
	"context"
	"sync"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// The interface supports method chaining through the With method, allowing
// for creation of contextual loggers with pre-populated fields.
type Logger interface {
	// Debug logs a debug-level message with optional key-value pairs.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional key-value pairs.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional key-value pairs.
	Warn(msg string, fields ...any)

	// Error logs an error-level message. An error value anywhere in fields
	// is logged under ErrAttrKey together with its stack trace.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
	// Use it to skip building expensive fields:
	//
	//	if logger.Enabled(ctx, LevelDebug) {
	//	    logger.Debug("per-feature values", "values", values)
	//	}
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

// LoggerProvider defines an interface for creating and configuring loggers.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for all loggers created by this provider.
	SetLevel(level Level)
}

var (
	providerMu sync.RWMutex
	provider   LoggerProvider = NewZerologProvider(nil, LevelWarn)
)

// SetProvider replaces the process-wide logger provider.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	provider = p
}

// GetLogger returns the default logger of the current provider.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLogger()
}

// GetLoggerWithName returns a component logger of the current provider.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLoggerWithName(name)
}
