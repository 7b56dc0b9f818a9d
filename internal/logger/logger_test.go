// ABOUTME: Tests for slog configuration helpers
// ABOUTME: Verifies level parsing, format selection, and the file sink

package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"error", slog.LevelError},
		{"warn", slog.LevelWarn},
		{"", slog.LevelWarn},
		{"bogus", slog.LevelWarn},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := parseLevel(tc.input); got != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestNewHandler_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newHandler(&buf, "info", "json"))
	log.Info("hello", "user", "alice")

	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("expected JSON output, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), `"user":"alice"`) {
		t.Errorf("expected user attribute in output, got %q", buf.String())
	}
}

func TestNewHandler_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newHandler(&buf, "error", "text"))
	log.Warn("should be dropped")

	if buf.Len() != 0 {
		t.Errorf("expected warn to be filtered at error level, got %q", buf.String())
	}
}

func TestInitFile_WritesDebugLog(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	dir := t.TempDir()

	if err := InitFile(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer Close()

	slog.Debug("session check", "state", "anonymous")

	data, err := os.ReadFile(filepath.Join(dir, "debug.log"))
	if err != nil {
		t.Fatalf("expected debug.log to exist: %v", err)
	}
	if !strings.Contains(string(data), "session check") {
		t.Errorf("expected log line in debug.log, got %q", string(data))
	}
}

func TestInitFile_EmptyDirDiscards(t *testing.T) {
	if err := InitFile(""); err != nil {
		t.Errorf("expected no error for empty dir, got %v", err)
	}
}
