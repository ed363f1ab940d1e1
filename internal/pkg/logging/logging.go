package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs the global slog logger.
// level is one of "debug", "info", "warn", "error" (default "info");
// format is "json" or "text" (default "json").
func Setup(level, format string) {
	lvl := parseLevel(level)

	opts := &slog.HandlerOptions{
		Level: lvl,
		// Source locations only matter when chasing a bug.
		AddSource: lvl == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
