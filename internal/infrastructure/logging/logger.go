package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/hearthline/hearth-core/internal/infrastructure/config"
)

// Logger is the structured logger used across the daemon. It embeds
// slog.Logger, so the usual Info/Warn/Error with key-value pairs apply.
type Logger struct {
	*slog.Logger
}

// levelNames maps configuration strings to slog levels. Unknown names
// fall back to info.
var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// New builds a logger from the logging configuration: JSON or text
// records, stdout or stderr, filtered by level. Every record carries
// the service name and version.
func New(cfg config.LoggingConfig, version string) *Logger {
	h := newHandler(cfg).WithAttrs([]slog.Attr{
		slog.String("service", "hearth"),
		slog.String("version", version),
	})
	return &Logger{Logger: slog.New(h)}
}

// Default is the startup logger used before configuration is loaded:
// JSON to stdout at info level.
func Default() *Logger {
	return New(config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}, "dev")
}

// With returns a child logger carrying extra default attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

func newHandler(cfg config.LoggingConfig) slog.Handler {
	out := os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	if strings.EqualFold(cfg.Format, "text") {
		return slog.NewTextHandler(out, opts)
	}
	return slog.NewJSONHandler(out, opts)
}

func parseLevel(name string) slog.Level {
	if level, ok := levelNames[strings.ToLower(name)]; ok {
		return level
	}
	return slog.LevelInfo
}
