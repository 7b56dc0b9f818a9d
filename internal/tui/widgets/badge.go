// ABOUTME: Inline badge widgets for roles, task status, and priorities
// ABOUTME: Colored labels and icon-prefixed status text

package widgets

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/timetrack/timesheet-cli/internal/tui/icons"
	"github.com/timetrack/timesheet-cli/internal/tui/styles"
)

// StatusLevel represents the tone of an indicator
type StatusLevel int

const (
	StatusOK StatusLevel = iota
	StatusWarning
	StatusCritical
	StatusInfo
	StatusNeutral
)

var (
	badgeLightFg = lipgloss.Color("#FFFFFF")
	badgeDarkFg  = lipgloss.Color("#000000")
)

func levelColor(level StatusLevel) lipgloss.Color {
	switch level {
	case StatusOK:
		return styles.Secondary
	case StatusWarning:
		return styles.Warning
	case StatusCritical:
		return styles.Danger
	case StatusInfo:
		return styles.Info
	default:
		return styles.Muted
	}
}

// Badge renders text on a solid background
func Badge(text string, bg lipgloss.Color) string {
	fg := badgeLightFg
	if bg == styles.Warning {
		fg = badgeDarkFg
	}
	return lipgloss.NewStyle().
		Background(bg).
		Foreground(fg).
		Padding(0, 1).
		Bold(true).
		Render(text)
}

// RoleBadge renders a role name in its role color
func RoleBadge(role string) string {
	if role == "" {
		role = "Unknown"
	}
	return Badge(role, styles.RoleColor(role))
}

// TaskStatusBadge renders a task status in its status color
func TaskStatusBadge(status string) string {
	return Badge(status, styles.StatusColor(status))
}

// PriorityBadge renders a task priority in its priority color
func PriorityBadge(priority string) string {
	return Badge(priority, styles.PriorityColor(priority))
}

// StatusIcon returns the icon for a status level
func StatusIcon(level StatusLevel) string {
	style := lipgloss.NewStyle().Foreground(levelColor(level))
	switch level {
	case StatusOK:
		return style.Render(icons.CheckOK.String())
	case StatusWarning:
		return style.Render(icons.Warning.String())
	case StatusCritical:
		return style.Render(icons.Critical.String())
	case StatusInfo:
		return style.Render(icons.Info.String())
	default:
		return style.Render("•")
	}
}

// StatusText returns styled status text with icon
func StatusText(text string, level StatusLevel) string {
	textStyle := lipgloss.NewStyle().Foreground(levelColor(level))
	return fmt.Sprintf("%s %s", StatusIcon(level), textStyle.Render(text))
}
