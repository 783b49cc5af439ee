package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/pterm/pterm"
)

// ParseLevel maps a level name to a pterm level. Unknown names yield info and ok=false.
func ParseLevel(name string) (pterm.LogLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return pterm.LogLevelTrace, true
	case "debug":
		return pterm.LogLevelDebug, true
	case "", "info":
		return pterm.LogLevelInfo, true
	case "warn", "warning":
		return pterm.LogLevelWarn, true
	case "error":
		return pterm.LogLevelError, true
	default:
		return pterm.LogLevelInfo, false
	}
}

// NewLogger builds a slog.Logger that prints through pterm to w.
// An unrecognised level falls back to info and logs a warning about it.
func NewLogger(level string, w io.Writer) *slog.Logger {
	if w == nil {
		w = io.Discard
	}
	lvl, ok := ParseLevel(level)
	pl := pterm.DefaultLogger.
		WithLevel(lvl).
		WithWriter(w).
		WithTime(true).
		WithTimeFormat("2006-01-02 15:04:05")
	logger := slog.New(pterm.NewSlogHandler(pl))
	if !ok {
		logger.Warn("invalid log level argument", "level", level)
	}
	return logger
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
