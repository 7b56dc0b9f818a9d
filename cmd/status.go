// ABOUTME: Status command for the timesheet CLI
// ABOUTME: Shows the logged-in user's attendance and task summary

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

	"github.com/spf13/cobra"
	"github.com/timetrack/timesheet-cli/internal/client"
	"golang.org/x/sync/errgroup"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's attendance and task summary",
	Long:  `Display who is logged in, whether they are checked in today, and their task statistics.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runStatus(ctx, os.Stdout)
		if exitCode != exitOK {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// statusReport is everything the status command prints
type statusReport struct {
	User      *client.Identity         `json:"user"`
	CheckedIn bool                     `json:"checked_in"`
	Sessions  int                      `json:"sessions_today"`
	Stats     *client.DashboardStats   `json:"stats"`
	Records   []client.TimesheetRecord `json:"records"`
}

// runStatus fetches profile, stats, and today's timesheet concurrently and returns exit code
func runStatus(ctx context.Context, w io.Writer) int {
	_, c, err := setup()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	var report statusReport
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		id, err := c.Profile(gctx)
		report.User = id
		return err
	})
	g.Go(func() error {
		stats, err := c.DashboardStats(gctx)
		report.Stats = stats
		return err
	})
	g.Go(func() error {
		records, err := c.TodayTimesheet(gctx)
		report.Records = records
		return err
	})

	if err := g.Wait(); err != nil {
		if client.IsUnauthorized(err) {
			fmt.Fprintln(w, "Not logged in")
			return exitRejected
		}
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	report.Sessions = len(report.Records)
	for _, r := range report.Records {
		if r.Open() {
			report.CheckedIn = true
		}
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatStatusJSON(&report))
	} else {
		fmt.Fprintln(w, formatStatusHuman(&report))
	}
	return exitOK
}

// formatStatusHuman formats the report for human readability
func formatStatusHuman(r *statusReport) string {
	var sb strings.Builder

	attendance := "not checked in"
	if r.CheckedIn {
		attendance = "checked in"
	}
	fmt.Fprintf(&sb, "User:         %s (%s)\n", r.User.Username, r.User.Role)
	fmt.Fprintf(&sb, "Attendance:   %s, %d session(s) today\n", attendance, r.Sessions)

	s := r.Stats
	switch r.User.Role {
	case client.RoleAdmin:
		fmt.Fprintf(&sb, "Users:        %d total, %d active\n", s.TotalUsers, s.ActiveUsers)
		fmt.Fprintf(&sb, "Tasks:        %d total, %d completed", s.TotalTasks, s.CompletedTasks)
	case client.RoleManager:
		fmt.Fprintf(&sb, "Team:         %d member(s)\n", s.TeamMembers)
		fmt.Fprintf(&sb, "Assigned:     %d task(s), %d completed, %d pending", s.AssignedTasks, s.CompletedTasks, s.PendingTasks)
	default:
		fmt.Fprintf(&sb, "Tasks:        %d total, %d completed, %d in progress\n", s.TotalTasks, s.CompletedTasks, s.InProgressTasks)
		fmt.Fprintf(&sb, "Today:        %d completed", s.CompletedToday)
	}
	return sb.String()
}

// formatStatusJSON formats the report as JSON
func formatStatusJSON(r *statusReport) string {
	data, _ := json.MarshalIndent(r, "", "  ")
	return string(data)
}
