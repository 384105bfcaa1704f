// Package log builds the slog loggers used across the framework.
package log

import (
	"io"
	"log/slog"
	"strings"

	"github.com/km-arc/go-wiring/framework/config"
)

// New creates a logger writing to w. It does not set the global logger.
func New(levelStr, formatStr string, w io.Writer) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(levelStr)}

	var handler slog.Handler
	if strings.EqualFold(formatStr, "json") {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler)
}

// FromConfig creates a logger from cfg.Log, tagged with the application name.
func FromConfig(cfg *config.Config, w io.Writer) *slog.Logger {
	return New(cfg.Log.Level, cfg.Log.Format, w).With("app", cfg.App.Name)
}

// ParseLevel maps a level name to a slog.Level. Unknown names are info.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
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

// Discard returns a logger that drops every record.
func Discard() *slog.Logger { return slog.New(slog.DiscardHandler) }
