// ABOUTME: Root command for the timesheet CLI
// ABOUTME: Handles global flags, configuration loading, and client construction

package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/timetrack/timesheet-cli/internal/client"
	"github.com/timetrack/timesheet-cli/internal/client/cookiestore"
	"github.com/timetrack/timesheet-cli/internal/config"
	"github.com/timetrack/timesheet-cli/internal/logger"
)

var (
	apiURL     string
	jsonOutput bool
)

// Exit codes shared by every command
const (
	exitOK       = 0
	exitRejected = 1 // the server refused the operation
	exitError    = 2 // connectivity, configuration, or input error
)

// rootCmd is the base command. Without a subcommand it starts the TUI.
var rootCmd = &cobra.Command{
	Use:   "timesheet",
	Short: "Terminal client for the timesheet service",
	Long: `timesheet is a terminal client for the timesheet and task-management service.

Run without arguments to open the interactive UI, or use a subcommand for scripting.

Exit codes:
  0 - Success
  1 - Rejected by the server (bad credentials, not logged in, admin exists)
  2 - Error (connectivity, configuration, invalid input)

Environment Variables:
  TIMESHEET_API_URL           Backend API URL (default: http://localhost:5000)
  TIMESHEET_HTTP_TIMEOUT      Request timeout in seconds (default: 0, no timeout)
  TIMESHEET_CONFIG_DIR        Directory for the saved session and debug.log
  TIMESHEET_REMEMBER_SESSION  Keep the session between runs (default: true)
  LOG_LEVEL                   debug, info, warn, error (default: warn)
  LOG_FORMAT                  text, json (default: text)`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides TIMESHEET_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// loadConfig reads .env and the environment, then applies flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// newClient builds an API client for cfg. When the session is remembered
// the cookie jar is backed by a file in the config directory.
func newClient(cfg *config.Config) (*client.Client, error) {
	opts := []client.Option{client.WithTimeout(cfg.HTTPTimeout)}
	if cfg.RememberSession {
		jar, err := cookiestore.Open(cfg.ConfigDir, cfg.APIURL)
		if err != nil {
			return nil, err
		}
		opts = append(opts, client.WithJar(jar))
	}
	return client.New(cfg.APIURL, opts...), nil
}

// setup loads configuration and builds the client in one step
func setup() (*config.Config, *client.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	c, err := newClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, c, nil
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}
