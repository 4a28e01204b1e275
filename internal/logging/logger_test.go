package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/i474232898/location-weather/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNew_JSONIncludesDefaultFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter(&buf, config.LoggingConfig{Level: "info", Format: "json"}, "1.2.3")

	logger.Info("location saved", "name", "Paris")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["service"] != "location-weather" {
		t.Errorf("service = %v, want location-weather", entry["service"])
	}
	if entry["version"] != "1.2.3" {
		t.Errorf("version = %v, want 1.2.3", entry["version"])
	}
	if entry["name"] != "Paris" {
		t.Errorf("name = %v, want Paris", entry["name"])
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter(&buf, config.LoggingConfig{Level: "warn", Format: "text"}, "dev")

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn message missing: %q", out)
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter(&buf, config.LoggingConfig{Format: "text"}, "dev").With("component", "store")

	logger.Info("opened")

	if !strings.Contains(buf.String(), "component=store") {
		t.Errorf("expected component attribute, got %q", buf.String())
	}
}

func TestDefault(t *testing.T) {
	logger := Default()
	if logger == nil || logger.Logger == nil {
		t.Fatal("Default() returned nil logger")
	}
	if !logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Default() should log at info")
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Default() should not log at debug")
	}
}
