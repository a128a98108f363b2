// Package logging configures zerolog for the product API and hands out
// component loggers. Request handlers carry a request-scoped logger in the
// context (see zerolog/hlog); FromContext picks it up so catalog and
// upstream logs share the request id.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel is a configured minimum level (LOG_LEVEL).
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// ParseLevel validates a LOG_LEVEL value. "warning" is accepted for warn,
// matching is case-insensitive and empty means info.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func (l LogLevel) zerologLevel() zerolog.Level {
	level, err := ParseLevel(string(l))
	if err != nil {
		return zerolog.InfoLevel
	}
	parsed, err := zerolog.ParseLevel(string(level))
	if err != nil {
		return zerolog.InfoLevel
	}
	return parsed
}

// Config holds logger configuration.
type Config struct {
	Level LogLevel

	// Pretty switches from JSON lines to zerolog's console writer.
	Pretty bool

	// Output defaults to os.Stderr.
	Output io.Writer

	// Service is attached to every line when set.
	Service string
}

// DefaultConfig returns JSON logging at info level for the product API.
func DefaultConfig() Config {
	return Config{
		Level:   LevelInfo,
		Output:  os.Stderr,
		Service: "product-api",
	}
}

// Setup installs the global logger and level and returns the logger.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(cfg.Level.zerologLevel())

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	zctx := zerolog.New(out).With().Timestamp()
	if cfg.Service != "" {
		zctx = zctx.Str("service", cfg.Service)
	}
	log.Logger = zctx.Logger()

	return log.Logger
}

// NewLogger returns the global logger tagged with component.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// FromContext returns the request-scoped logger stored in ctx tagged with
// component, or NewLogger(component) when ctx carries none.
func FromContext(ctx context.Context, component string) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l.With().Str("component", component).Logger()
	}
	return NewLogger(component)
}

// Levels used across the service:
//
// Debug: cache hit/miss with key and TTL, provider dispatch, canonical
// request details (never the secret key).
//
// Info: successful upstream calls, startup and shutdown, access log.
//
// Warn: provider failures swallowed by search, degraded cache operations,
// invalid cache entries being recomputed, 4xx responses.
//
// Error: upstream failures surfaced to callers, store unavailable,
// configuration errors.
//
// Common fields: component, request_id, operation, status_code, duration,
// error_class, key, source.
