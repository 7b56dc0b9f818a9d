// ABOUTME: Shared lipgloss styles for consistent TUI appearance
// ABOUTME: Palette, panels, frame borders, role colors, and status banners

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors - Core palette
	Primary   = lipgloss.Color("#2563EB") // Blue
	Secondary = lipgloss.Color("#10B981") // Green
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Danger    = lipgloss.Color("#EF4444") // Red
	Muted     = lipgloss.Color("#6B7280") // Gray
	Text      = lipgloss.Color("#F9FAFB") // Light
	BgDark    = lipgloss.Color("#1F2937") // Dark gray

	// Colors - Extended palette
	Accent  = lipgloss.Color("#60A5FA") // Lighter blue for highlights
	Surface = lipgloss.Color("#374151") // Elevated surface background
	Info    = lipgloss.Color("#3B82F6") // Blue - informational

	// Role colors
	RoleAdmin    = Danger
	RoleManager  = Info
	RoleEmployee = Secondary

	// Base styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			MarginBottom(1)

	// Status indicators
	StatusOK = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	StatusWarning = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	StatusCritical = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	// Panels
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(1, 2)

	ActivePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	// Inline banners
	ErrorBanner = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true).
			MarginBottom(1)

	SuccessBanner = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true).
			MarginBottom(1)

	// Help text
	Help = lipgloss.NewStyle().
		Foreground(Muted).
		MarginTop(1)

	// Frame styles for header/footer
	HeaderStyle = lipgloss.NewStyle().
			Border(lipgloss.Border{
			Top:   "─",
			Left:  "╭",
			Right: "╮",
		}).
		BorderForeground(Muted).
		Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Border(lipgloss.Border{
			Bottom: "─",
			Left:   "╰",
			Right:  "╯",
		}).
		BorderForeground(Muted).
		Padding(0, 1)

	// Nav entries
	NavItem = lipgloss.NewStyle().
		Foreground(Muted).
		Padding(0, 1)

	NavActive = lipgloss.NewStyle().
			Foreground(Text).
			Background(Primary).
			Bold(true).
			Padding(0, 1)

	// Key style for keyboard shortcuts
	KeyStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	// Value style for emphasized data
	ValueStyle = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true)

	// Label style for field names
	LabelStyle = lipgloss.NewStyle().
			Foreground(Muted)
)

// RoleColor returns the badge color for a role name
func RoleColor(role string) lipgloss.Color {
	switch role {
	case "Admin":
		return RoleAdmin
	case "Manager":
		return RoleManager
	case "Employee":
		return RoleEmployee
	default:
		return Muted
	}
}

// StatusColor returns the color for a task status
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "Completed":
		return Secondary
	case "In Progress":
		return Info
	case "Pending":
		return Warning
	default:
		return Muted
	}
}

// PriorityColor returns the color for a task priority
func PriorityColor(priority string) lipgloss.Color {
	switch priority {
	case "High":
		return Danger
	case "Medium":
		return Warning
	case "Low":
		return Secondary
	default:
		return Muted
	}
}

// ProgressBar returns a styled completion bar. Color deepens as work nears done.
func ProgressBar(percent float64, width int) string {
	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	color := Warning
	if percent >= 50 {
		color = Info
	}
	if percent >= 100 {
		color = Secondary
	}

	return lipgloss.NewStyle().Foreground(color).Render(bar)
}
