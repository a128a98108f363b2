package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("Expected default level to be info, got %s", cfg.Level)
	}
	if cfg.Pretty {
		t.Error("Expected JSON output by default")
	}
	if cfg.Service != "product-api" {
		t.Errorf("Expected default service to be product-api, got %s", cfg.Service)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    LogLevel
		wantErr bool
	}{
		{"", LevelInfo, false},
		{"debug", LevelDebug, false},
		{" INFO ", LevelInfo, false},
		{"Warning", LevelWarn, false},
		{"error", LevelError, false},
		{"trace", LevelInfo, true},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestSetup_ServiceAndComponent(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{Level: LevelInfo, Output: buf, Service: "product-api"})

	logger := NewLogger("cache")
	logger.Info().Msg("started")

	output := buf.String()
	for _, want := range []string{`"service":"product-api"`, `"component":"cache"`, `"message":"started"`} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %s in %q", want, output)
		}
	}
}

func TestSetup_PrettyOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := Setup(Config{Level: LevelInfo, Pretty: true, Output: buf})

	logger.Info().Msg("pretty message")

	output := buf.String()
	if !strings.Contains(output, "pretty message") {
		t.Errorf("Expected output to contain message, got %q", output)
	}
	if strings.HasPrefix(strings.TrimSpace(output), "{") {
		t.Errorf("Expected console output, got JSON %q", output)
	}
}

func TestSetup_UnknownLevelFallsBackToInfo(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{Level: "chatty", Output: buf})

	logger := NewLogger("test")
	logger.Debug().Msg("debug message")
	logger.Info().Msg("info message")

	if strings.Contains(buf.String(), "debug message") {
		t.Error("Debug message should be filtered at the fallback level")
	}
	if !strings.Contains(buf.String(), "info message") {
		t.Error("Info message should pass at the fallback level")
	}
}

func TestFromContext(t *testing.T) {
	global := &bytes.Buffer{}
	Setup(Config{Level: LevelInfo, Output: global})

	t.Run("request_logger", func(t *testing.T) {
		scoped := &bytes.Buffer{}
		reqLogger := zerolog.New(scoped).With().Str("request_id", "req-1").Logger()
		ctx := reqLogger.WithContext(context.Background())

		logger := FromContext(ctx, "catalog")
		logger.Warn().Msg("provider failed")

		output := scoped.String()
		if !strings.Contains(output, `"request_id":"req-1"`) || !strings.Contains(output, `"component":"catalog"`) {
			t.Errorf("Expected request id and component, got %q", output)
		}
	})

	t.Run("no_logger_in_context", func(t *testing.T) {
		logger := FromContext(context.Background(), "paapi-client")
		logger.Info().Msg("fallback")

		if !strings.Contains(global.String(), `"component":"paapi-client"`) {
			t.Errorf("Expected fallback to the global logger, got %q", global.String())
		}
	})
}
