// Package logging builds the slog loggers used across the service.
//
// The default "maven" format renders one line per record:
// [LEVEL] [SYSTEM] [HH:MM:SS] message key=value
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/config"
)

// NewLoggerTo creates a structured logger writing to w
func NewLoggerTo(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = NewMavenHandler(w, opts)
	}

	return slog.New(handler)
}

// WithSystem tags logger with a system name such as "parser" or "storage".
// The maven format prints it as the [SYSTEM] prefix.
func WithSystem(logger *slog.Logger, system string) *slog.Logger {
	return logger.With(SystemKey, system)
}

// ParseLevel maps a config level name to a slog level. Unknown names are info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
