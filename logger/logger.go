// Package logger holds the process-wide debug logger. It discards everything
// until the CLI installs a real handler with SetLogger.
package logger

import (
	"io"
	"log/slog"
	"os"
)

var log = slog.New(slog.NewTextHandler(io.Discard, nil))

// SetLogger replaces the package logger. A nil logger restores the discard logger.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log = l
}

// New returns a text logger on stderr; verbose lowers the level to debug.
func New(verbose bool) *slog.Logger {
	return NewWithWriter(os.Stderr, verbose)
}

// NewWithWriter is New writing to w.
func NewWithWriter(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})).With("app", "idm")
}

func Debug(msg string, args ...any) {
	log.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	log.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	log.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	log.Error(msg, args...)
}
