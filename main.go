// ABOUTME: Entry point for the timesheet CLI
// ABOUTME: Terminal UI and scripting commands for the timesheet service

package main

import (
	"fmt"
	"os"

	"github.com/timetrack/timesheet-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
