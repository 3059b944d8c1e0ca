package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"auction-house/internal/config"
)

var (
	singleton *slog.Logger
	once      sync.Once
)

// Init initializes the singleton logger from the provided config.
// It is thread-safe and idempotent - the first successful call wins,
// and subsequent calls return the same logger instance.
func Init(cfg config.Config) (*slog.Logger, error) {
	once.Do(func() {
		singleton = slog.New(NewHandler(os.Stdout, cfg)).With("service", "auction-house")
	})

	return singleton, nil
}

// NewHandler builds the slog handler described by cfg, writing to w.
// Unknown formats fall back to JSON, unknown levels to info.
func NewHandler(w io.Writer, cfg config.Config) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(cfg.LogLevel),
	}

	switch strings.ToLower(cfg.LogFormat) {
	case "text":
		return slog.NewTextHandler(w, opts)
	default:
		return slog.NewJSONHandler(w, opts)
	}
}

// ParseLevel maps a LOG_LEVEL value to a slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// L returns the singleton logger instance.
// Before Init it falls back to slog.Default so packages used from tests
// never log through a nil logger.
func L() *slog.Logger {
	if singleton == nil {
		return slog.Default()
	}
	return singleton
}
