package app

import (
	"log/slog"
	"os"
)

// LogFormatJSON selects the structured handler; any other LOG_FORMAT value
// gets the text handler for readable local output.
const LogFormatJSON = "json"

// NewLogger builds the process logger. Source locations are always attached.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	if cfg != nil && cfg.LogFormat == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
