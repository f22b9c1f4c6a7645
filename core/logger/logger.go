package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

// Init replaces the package logger. format is "json" or "text", level one of
// debug, info, warn, error.
func Init(level string, format string) {
	log = New(os.Stdout, level, format)
	slog.SetDefault(log)
}

func New(w io.Writer, level string, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func Debug(msg string, keyvals ...any) {
	log.Debug(msg, normalize(keyvals)...)
}

func Info(msg string, keyvals ...any) {
	log.Info(msg, normalize(keyvals)...)
}

func Warn(msg string, keyvals ...any) {
	log.Warn(msg, normalize(keyvals)...)
}

func Error(msg string, keyvals ...any) {
	log.Error(msg, normalize(keyvals)...)
}

// normalize lets callers pass a bare error as the only argument,
// e.g. logger.Error("Repo:Create", err).
func normalize(keyvals []any) []any {
	if len(keyvals) == 1 {
		if err, ok := keyvals[0].(error); ok {
			return []any{"error", err}
		}
	}
	return keyvals
}
