package util

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

var Logger *slog.Logger

type ctxKey struct{}

// InitLogger builds the process logger. level is one of debug, info, warn,
// error; format is json or text.
func InitLogger(level, format string) {
	Logger = NewLogger(os.Stdout, level, format)
	slog.SetDefault(Logger)
}

func NewLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	// Default to JSON handler for production
	var handler slog.Handler = slog.NewJSONHandler(w, opts)
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func GetLogger() *slog.Logger {
	if Logger == nil {
		InitLogger("info", "json")
	}
	return Logger
}

// WithLogger stores l in ctx. The request id middleware uses it to attach
// request_id to everything logged while serving a request.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request logger, or the process logger.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return GetLogger()
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
