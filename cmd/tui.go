// ABOUTME: TUI command for the timesheet CLI
// ABOUTME: Starts the interactive UI with logs redirected to debug.log

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/timetrack/timesheet-cli/internal/logger"
	"github.com/timetrack/timesheet-cli/internal/session"
	"github.com/timetrack/timesheet-cli/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive UI",
	Long:  `Open the interactive terminal UI. This is also what runs when no subcommand is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI() error {
	cfg, c, err := setup()
	if err != nil {
		return err
	}

	if err := logger.InitFile(cfg.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	defer logger.Close()

	slog.Info("Starting TUI", "api", cfg.APIURL, "remember_session", cfg.RememberSession)
	return tui.Run(session.New(c), c)
}
