// ABOUTME: Compact stat card widget for dashboard displays
// ABOUTME: Titled bordered box holding one number, with an optional bar

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/timetrack/timesheet-cli/internal/tui/icons"
	"github.com/timetrack/timesheet-cli/internal/tui/styles"
)

// StatCardConfig holds configuration for a stat card
type StatCardConfig struct {
	Width       int
	BorderColor lipgloss.Color
	TitleColor  lipgloss.Color
	ValueColor  lipgloss.Color
}

// DefaultStatCardConfig returns sensible defaults
func DefaultStatCardConfig() StatCardConfig {
	return StatCardConfig{
		Width:       22,
		BorderColor: styles.Muted,
		TitleColor:  styles.Primary,
		ValueColor:  styles.Text,
	}
}

// StatCard renders a titled box with a value and a caption
func StatCard(icon icons.Icon, title, value, caption string, config StatCardConfig) string {
	if config.Width <= 0 {
		config.Width = 22
	}
	inner := config.Width - 4

	lines := []string{
		lipgloss.NewStyle().Foreground(config.ValueColor).Bold(true).Render(value),
		lipgloss.NewStyle().Foreground(styles.Muted).Render(truncate(caption, inner)),
	}
	return box(icon, title, lines, config)
}

// CountCard renders a stat card for an integer count
func CountCard(icon icons.Icon, title string, count int, caption string, config StatCardConfig) string {
	return StatCard(icon, title, fmt.Sprintf("%d", count), caption, config)
}

// RatioCard renders part/total as a percentage with a completion bar
func RatioCard(icon icons.Icon, title string, part, total int, config StatCardConfig) string {
	if config.Width <= 0 {
		config.Width = 22
	}
	inner := config.Width - 4

	pct := Percent(part, total)
	lines := []string{
		lipgloss.NewStyle().Foreground(config.ValueColor).Bold(true).Render(fmt.Sprintf("%3.0f%%", pct)),
		CompactProgressBar(pct, inner, styles.Secondary),
		lipgloss.NewStyle().Foreground(styles.Muted).Render(truncate(fmt.Sprintf("%d of %d", part, total), inner)),
	}
	return box(icon, title, lines, config)
}

func box(icon icons.Icon, title string, lines []string, config StatCardConfig) string {
	inner := config.Width - 4
	titleStr := truncate(fmt.Sprintf("%s %s", icon.String(), title), inner)

	border := lipgloss.NewStyle().Foreground(config.BorderColor)
	titleStyle := lipgloss.NewStyle().Foreground(config.TitleColor)

	out := make([]string, 0, len(lines)+2)
	out = append(out, border.Render("┌─ ")+titleStyle.Render(titleStr)+
		border.Render(" "+strings.Repeat("─", max(0, inner-lipgloss.Width(titleStr)-1))+"┐"))
	for _, l := range lines {
		pad := max(0, inner-lipgloss.Width(l))
		out = append(out, border.Render("│  ")+l+strings.Repeat(" ", pad)+border.Render("│"))
	}
	out = append(out, border.Render("└"+strings.Repeat("─", config.Width-2)+"┘"))
	return strings.Join(out, "\n")
}

// Percent returns part as a percentage of total, 0 when total is 0
func Percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// truncate shortens a string to maxLen runes with ellipsis if needed
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:max(0, maxLen)])
	}
	return string(r[:maxLen-3]) + "..."
}
