package observability

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// NewLogger builds the process logger: a JSON handler for machine-scraped
// environments, or a tint handler for readable local output.
func NewLogger(level, format string) *slog.Logger {
	lvl := parseLevel(level)

	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	}

	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      lvl,
		TimeFormat: time.Kitchen,
	}))
}

func parseLevel(s string) slog.Level {
	switch s {
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
