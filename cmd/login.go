// ABOUTME: Session commands for the timesheet CLI: login, logout, whoami
// ABOUTME: The session cookie is saved in the config dir so later commands reuse it

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/timetrack/timesheet-cli/internal/client"
	"github.com/timetrack/timesheet-cli/internal/session"
)

var (
	username string
	password string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and save the session",
	Long: `Log in to the timesheet backend. Missing credentials are prompted for.

The session cookie is stored in the config directory unless
TIMESHEET_REMEMBER_SESSION=false.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if err := promptCredentials("Log in", &username, &password); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitError)
		}

		exitCode := runLogin(ctx, os.Stdout, username, password)
		if exitCode != exitOK {
			os.Exit(exitCode)
		}
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and forget the saved cookie",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runLogout(ctx, os.Stdout)
		if exitCode != exitOK {
			os.Exit(exitCode)
		}
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runWhoami(ctx, os.Stdout)
		if exitCode != exitOK {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	loginCmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
}

// promptCredentials asks for whichever of username and password is empty
func promptCredentials(title string, user, pass *string) error {
	var fields []huh.Field
	if *user == "" {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Value(user).
			Validate(required("username")))
	}
	if *pass == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(pass).
			Validate(required("password")))
	}
	if len(fields) == 0 {
		return nil
	}
	return huh.NewForm(huh.NewGroup(fields...).Title(title)).
		WithTheme(huh.ThemeBase()).
		Run()
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

// runLogin logs in through the session store and returns exit code
func runLogin(ctx context.Context, w io.Writer, user, pass string) int {
	_, c, err := setup()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	// The store folds transport failures into a generic message, so
	// connectivity is checked first to keep the exit codes distinct.
	if _, err := c.Health(ctx); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	store := session.New(c)
	result := store.Login(ctx, strings.TrimSpace(user), pass)
	if !result.Success {
		fmt.Fprintf(w, "Login failed: %s\n", result.Message)
		return exitRejected
	}

	id, ok := store.Snapshot().User()
	if !ok {
		fmt.Fprintln(w, "Login failed: session was not established")
		return exitRejected
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatIdentityJSON(&id))
	} else {
		fmt.Fprintf(w, "Logged in as %s (%s)\n", id.Username, id.Role)
	}
	return exitOK
}

// runLogout ends the session and returns exit code. The local cookie is
// dropped even when the backend is unreachable.
func runLogout(ctx context.Context, w io.Writer) int {
	_, c, err := setup()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	session.New(c).Logout(ctx)
	fmt.Fprintln(w, "Logged out")
	return exitOK
}

// runWhoami prints the identity behind the saved session and returns exit code
func runWhoami(ctx context.Context, w io.Writer) int {
	_, c, err := setup()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	id, err := c.Profile(ctx)
	if err != nil {
		if client.IsUnauthorized(err) {
			fmt.Fprintln(w, "Not logged in")
			return exitRejected
		}
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatIdentityJSON(id))
	} else {
		fmt.Fprintln(w, formatIdentityHuman(id))
	}
	return exitOK
}

// formatIdentityHuman formats an identity for human readability
func formatIdentityHuman(id *client.Identity) string {
	manager := id.Manager
	if manager == "" {
		manager = "-"
	}
	since := "-"
	if !id.CreatedAt.IsZero() {
		since = id.CreatedAt.Local().Format("2006-01-02")
	}
	return fmt.Sprintf(`Username:  %s
Role:      %s
Manager:   %s
Since:     %s`, id.Username, id.Role, manager, since)
}

// formatIdentityJSON formats an identity as JSON
func formatIdentityJSON(id *client.Identity) string {
	data, _ := json.MarshalIndent(id, "", "  ")
	return string(data)
}
