/*
Package glog is webgrep's leveled logger: package-level Info/Debug/Fine/Error
functions backed by a single configurable handler, set once at startup.
*/
package glog

import (
	"fmt"
	"log/slog"
	"os"
)

// Level names accepted by SetLevel.
const (
	LevelFine  = "fine"
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelError = "error"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// SetLevel reconfigures the global logger's minimum level. Unrecognized
// levels are treated as "info".
func SetLevel(level string) {
	var lvl slog.Level
	switch level {
	case LevelFine, LevelDebug:
		lvl = slog.LevelDebug
	case LevelError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// Fine logs at the most verbose level (mapped onto Debug; slog has no finer
// level than Debug).
func Fine(format string, args ...any) { logger.Debug(sprintf(format, args...)) }

// Debug logs a debug-level message.
func Debug(format string, args ...any) { logger.Debug(sprintf(format, args...)) }

// Info logs an info-level message.
func Info(format string, args ...any) { logger.Info(sprintf(format, args...)) }

// Error logs an error-level message.
func Error(format string, args ...any) { logger.Error(sprintf(format, args...)) }

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
