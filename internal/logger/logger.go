// Package logger configures the process-wide structured logger.
//
// Unlike a typical daemon, prodlog's stdout is not free real estate: once a
// session starts, stdout is the user's real terminal, interleaved with
// whatever the child shell prints. Writing log records there would corrupt
// the recorded session, so the default sink is stderr, with an optional
// second copy to a file under the storage directory for post-mortem
// debugging.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Log is the process-wide logger. Until Init runs it is slog's default
// logger, so package-level calls made before Init (or in tests) still work.
var Log = slog.Default()

// DefaultLogFile returns the log file path for a storage root dir, kept
// alongside the sqlite database it sits next to in cmd/prodlog.
func DefaultLogFile(dir string) string {
	return filepath.Join(dir, "prodlog.log")
}

// Init initializes the global logger. logFile may be empty to log to
// stderr only.
func Init(level string, logFile string) error {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelDebug
	}

	writers := []io.Writer{os.Stderr}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		writers = append(writers, f)
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level: logLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Shorten time format
			if a.Key == slog.TimeKey {
				return slog.String("time", a.Value.Time().Format("15:04:05"))
			}
			return a
		},
	})

	Log = slog.New(handler)
	slog.SetDefault(Log)

	return nil
}

// Debug logs at debug level
func Debug(msg string, args ...any) {
	Log.Debug(msg, args...)
}

// Info logs at info level
func Info(msg string, args ...any) {
	Log.Info(msg, args...)
}

// Warn logs at warn level
func Warn(msg string, args ...any) {
	Log.Warn(msg, args...)
}

// Error logs at error level
func Error(msg string, args ...any) {
	Log.Error(msg, args...)
}
