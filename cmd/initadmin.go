// ABOUTME: init-admin command for the timesheet CLI
// ABOUTME: Creates the first administrator on a fresh backend

package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/timetrack/timesheet-cli/internal/client"
	"github.com/timetrack/timesheet-cli/internal/session"
)

var initAdminCmd = &cobra.Command{
	Use:   "init-admin",
	Short: "Create the first administrator account",
	Long: `Create the first administrator on a backend that has no users yet.

Exits 1 when an administrator already exists.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if err := promptCredentials("Create administrator", &username, &password); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitError)
		}

		exitCode := runInitAdmin(ctx, os.Stdout, username, password)
		if exitCode != exitOK {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(initAdminCmd)
	initAdminCmd.Flags().StringVarP(&username, "username", "u", "", "Administrator username")
	initAdminCmd.Flags().StringVarP(&password, "password", "p", "", "Administrator password (prompted when omitted)")
}

// runInitAdmin bootstraps the administrator and returns exit code
func runInitAdmin(ctx context.Context, w io.Writer, user, pass string) int {
	_, c, err := setup()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	store := session.New(c)
	required, err := store.BootstrapRequired(ctx)
	switch code := client.StatusCode(err); {
	case err == nil:
	case code == http.StatusNotFound || code == http.StatusMethodNotAllowed:
		// Older backends have no status route; let POST /api/init decide.
		required = true
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	if !required {
		fmt.Fprintln(w, "An administrator already exists. Use 'timesheet login' instead.")
		return exitRejected
	}

	result := store.InitializeAdmin(ctx, strings.TrimSpace(user), pass)
	switch {
	case result.Success:
		fmt.Fprintf(w, "%s. Log in with 'timesheet login -u %s'.\n", strings.TrimSuffix(result.Message, "."), strings.TrimSpace(user))
		return exitOK
	case result.AdminExists:
		fmt.Fprintln(w, "An administrator already exists. Use 'timesheet login' instead.")
		return exitRejected
	default:
		fmt.Fprintf(w, "Error: %s\n", result.Message)
		return exitRejected
	}
}
