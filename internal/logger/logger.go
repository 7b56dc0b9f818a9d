// ABOUTME: Structured logging configuration using log/slog.
// ABOUTME: Stderr handler for commands, debug.log file handler while the TUI owns the terminal.

package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu      sync.Mutex
	logFile *os.File
)

// Init configures the default slog logger based on environment variables.
// LOG_LEVEL: debug, info, warn, error (default: warn)
// LOG_FORMAT: text, json (default: text)
func Init() {
	setDefault(os.Stderr)
}

// InitFile routes the default logger to debug.log inside configDir.
// The TUI draws on stdout, so anything written there would corrupt the screen.
// If configDir is empty, logs are discarded.
func InitFile(configDir string) error {
	if configDir == "" {
		setDefault(io.Discard)
		return nil
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		setDefault(io.Discard)
		return err
	}

	f, err := os.OpenFile(filepath.Join(configDir, "debug.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		setDefault(io.Discard)
		return err
	}

	mu.Lock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	mu.Unlock()

	setDefault(f)
	return nil
}

// Close releases the log file opened by InitFile, if any.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func setDefault(w io.Writer) {
	slog.SetDefault(slog.New(newHandler(w, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))))
}

func newHandler(w io.Writer, level, format string) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	if strings.ToLower(format) == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// parseLevel converts a string log level to slog.Level.
// A CLI stays quiet unless asked, so the fallback is warn rather than info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
