// ABOUTME: Configuration loader for the timesheet client
// ABOUTME: Reads an optional .env file, then environment variables with defaults

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultAPIURL = "http://localhost:5000"

type Config struct {
	// Backend
	APIURL      string        // base URL of the timesheet REST service
	HTTPTimeout time.Duration // zero means requests never time out

	// Local state
	ConfigDir       string // holds the saved session and debug.log
	RememberSession bool   // persist the session cookie between runs (default: true)
}

// Load builds the configuration. Variables already present in the
// environment win over values from envFiles; missing env files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
	}

	cfg := &Config{
		APIURL:          ensureScheme(getEnv("TIMESHEET_API_URL", DefaultAPIURL)),
		HTTPTimeout:     time.Duration(getEnvInt("TIMESHEET_HTTP_TIMEOUT", 0)) * time.Second,
		ConfigDir:       getEnv("TIMESHEET_CONFIG_DIR", DefaultConfigDir()),
		RememberSession: getEnvBool("TIMESHEET_REMEMBER_SESSION", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that would otherwise fail on the first request.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("TIMESHEET_API_URL is not a valid URL: %q", c.APIURL)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("TIMESHEET_HTTP_TIMEOUT must not be negative, got %s", c.HTTPTimeout)
	}
	return nil
}

// DefaultConfigDir returns the default config directory following XDG conventions
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "timesheet")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "timesheet")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// ensureScheme adds http:// prefix if the URL has no scheme
func ensureScheme(raw string) string {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if raw == "" {
		return raw
	}
	if !strings.Contains(raw, "://") {
		return "http://" + raw
	}
	return raw
}
