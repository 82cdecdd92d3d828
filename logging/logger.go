// Package logging configures slog with console and rotating file output.
package logging

import (
	"context"
	"log/slog"
	"os"
	"time"
)

type LoggingService struct {
	Logger *slog.Logger
	writer *RotatingWriter
}

var DefaultLoggingService *LoggingService

// ParseLevel maps a config log level string to a slog level. Unknown values
// fall back to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InitLogger initializes the global logger instance and makes it the slog
// default.
func InitLogger(logDir, level string, retentionWeeks int, maxFileSize int64) {
	logger, writer := Setup(logDir, ParseLevel(level), retentionWeeks, maxFileSize)
	DefaultLoggingService = &LoggingService{Logger: logger, writer: writer}
	slog.SetDefault(logger)
}

// Shutdown closes the rotating file writer if one is active
func Shutdown() {
	if DefaultLoggingService != nil && DefaultLoggingService.writer != nil {
		_ = DefaultLoggingService.writer.Close()
	}
}

// Setup builds a logger writing text to the console and JSON to a rotating
// file in logDir. When the directory cannot be created it degrades to a
// console-only logger.
func Setup(logDir string, level slog.Level, retentionWeeks int, maxFileSize int64) (*slog.Logger, *RotatingWriter) {
	consoleHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})

	if err := os.MkdirAll(logDir, 0755); err != nil {
		logger := slog.New(consoleHandler)
		logger.Error("Failed to create logs directory", "error", err)
		return logger, nil
	}

	writer := NewRotatingWriter(logDir, retentionWeeks, maxFileSize)
	writer.mu.Lock()
	rotateErr := writer.rotate(weekKey(time.Now()))
	writer.mu.Unlock()
	if rotateErr != nil {
		logger := slog.New(consoleHandler)
		logger.Error("Failed to initialize rotating log file", "error", rotateErr)
		return logger, nil
	}

	writer.startCleanup()

	fileHandler := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level})

	return slog.New(&multiHandler{handlers: []slog.Handler{consoleHandler, fileHandler}}), writer
}

// Logger returns the configured logger, or slog's default when logging was
// never initialized.
func Logger() *slog.Logger {
	if DefaultLoggingService != nil && DefaultLoggingService.Logger != nil {
		return DefaultLoggingService.Logger
	}
	return slog.Default()
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	activeLogger(slog.LevelInfo).Info(msg, args...)
}

func Error(msg string, args ...any) {
	activeLogger(slog.LevelError).Error(msg, args...)
}

func Warn(msg string, args ...any) {
	activeLogger(slog.LevelWarn).Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	activeLogger(slog.LevelDebug).Debug(msg, args...)
}

// activeLogger returns the configured logger, or a stderr fallback at the
// given level when logging was never initialized.
func activeLogger(level slog.Level) *slog.Logger {
	if DefaultLoggingService != nil && DefaultLoggingService.Logger != nil {
		return DefaultLoggingService.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// multiHandler fans a record out to every handler that enables its level
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
