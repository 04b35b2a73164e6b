// Package logger implements a logging adapter using log/slog.
package logger

import (
	"log/slog"
	"os"

	"go.trai.ch/keel/internal/core/ports"
)

// Logger implements ports.Logger using log/slog, writing to stderr as per
// 12-factor app guidelines.
type Logger struct {
	logger *slog.Logger
}

// New creates a new Logger instance.
func New() ports.Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return &Logger{logger: slog.New(handler)}
}

// Info logs an informational message, usually a command's description.
func (l *Logger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Warn logs a warning, e.g. a tool attribute being ignored.
func (l *Logger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// Error logs a command or build-file error.
func (l *Logger) Error(err error) {
	l.logger.Error("operation failed", "error", err)
}
