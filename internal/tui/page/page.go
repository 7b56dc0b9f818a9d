// ABOUTME: Contract shared by every top-level TUI screen
// ABOUTME: Page interface, per-resource fetch state, and common rendering helpers

package page

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/timetrack/timesheet-cli/internal/tui/styles"
)

// Page is a screen the app can mount under the shell
type Page interface {
	tea.Model

	// SetSize gives the page the content area left after the frame
	SetSize(width, height int)

	// Capturing is true while a form or text input has focus, so the
	// app must pass every key through instead of treating it as a shortcut
	Capturing() bool

	// Shortcuts lists footer hints as "key label" pairs
	Shortcuts() []string

	// Updated is when the page last received data, zero if never
	Updated() time.Time
}

// Status is the lifecycle of one fetched resource
type Status int

const (
	Idle Status = iota
	Loading
	Failed
	Ready
)

// Resource tracks one independently fetched piece of server state
type Resource[T any] struct {
	Status Status
	Data   T
	Err    error
}

// Start marks the resource as in flight. Existing data is kept so a
// refresh does not blank the screen.
func (r *Resource[T]) Start() {
	r.Status = Loading
	r.Err = nil
}

// Resolve records the outcome of a fetch
func (r *Resource[T]) Resolve(data T, err error) {
	if err != nil {
		r.Status = Failed
		r.Err = err
		return
	}
	r.Status = Ready
	r.Data = data
	r.Err = nil
}

// Loaded reports whether data has arrived at least once
func (r Resource[T]) Loaded() bool {
	return r.Status == Ready
}

// Ctx is the context handed to page fetches. Requests are not cancellable
// from the UI.
func Ctx() context.Context {
	return context.Background()
}

// Banner renders an inline error or success message, or "" when msg is empty
func Banner(msg string, isErr bool) string {
	if msg == "" {
		return ""
	}
	if isErr {
		return styles.ErrorBanner.Render("✗ "+msg) + "\n"
	}
	return styles.SuccessBanner.Render("✓ "+msg) + "\n"
}

// Placeholder renders the loading or empty line for a section
func Placeholder(text string) string {
	return styles.LabelStyle.Render(text)
}

// Field renders a "label: value" row with a fixed label column
func Field(label, value string, labelWidth int) string {
	return styles.LabelStyle.Render(fmt.Sprintf("%-*s", labelWidth, label+":")) + " " + value
}

// Section renders a titled block
func Section(title, body string) string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(title))
	sb.WriteString("\n")
	sb.WriteString(body)
	return sb.String()
}

// FormatTime renders a server timestamp for display, or "-" when unset
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// FormatDate renders only the date part, or "-" when unset
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}

// Required returns a huh validator rejecting blank input
func Required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", strings.ToLower(label))
		}
		return nil
	}
}
