// ABOUTME: Frame drawn around every page: header with identity, nav bar, and footer
// ABOUTME: Also owns nav key handling so the app only asks which route a key selects

package shell

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/timetrack/timesheet-cli/internal/client"
	"github.com/timetrack/timesheet-cli/internal/tui/icons"
	"github.com/timetrack/timesheet-cli/internal/tui/router"
	"github.com/timetrack/timesheet-cli/internal/tui/styles"
	"github.com/timetrack/timesheet-cli/internal/tui/widgets"
)

// Title is the application name shown in the header
const Title = "Timesheet"

// MinWidth is the narrowest frame drawn, regardless of terminal size
const MinWidth = 80

// Overhead is the number of lines the frame takes from the terminal:
// header, nav, blank line, and footer.
const Overhead = 4

// Frame is everything the shell needs to render one screen
type Frame struct {
	Width  int
	User   *client.Identity
	Routes []router.Route
	Active router.Route

	Shortcuts []string
	Updated   time.Time
	Now       time.Time
}

// Wrap renders content inside the frame
func (f Frame) Wrap(content string) string {
	var sb strings.Builder
	sb.WriteString(f.Header())
	sb.WriteString("\n")
	if nav := f.Nav(); nav != "" {
		sb.WriteString(nav)
		sb.WriteString("\n")
	}
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(f.Footer())
	return sb.String()
}

// width is one less than the terminal to prevent wrapping on some
// terminals, clamped to MinWidth.
func (f Frame) width() int {
	return max(MinWidth, f.Width-1)
}

// Header renders the top border with the app title and, when logged in,
// the username and role badge.
func (f Frame) Header() string {
	width := f.width()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	userStyle := lipgloss.NewStyle().Foreground(styles.Text)

	leftText := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render(Title))

	rightText := ""
	if f.User != nil {
		rightText = " " + userStyle.Render(icons.User.String()+" "+f.User.Username) + " " +
			widgets.RoleBadge(string(f.User.Role)) + " "
	}

	fillWidth := max(0, width-4-lipgloss.Width(leftText)-lipgloss.Width(rightText)) // -4 for ╭─ and ─╮
	fill := borderStyle.Render(strings.Repeat("─", fillWidth))

	return borderStyle.Render("╭─") + leftText + fill + rightText + borderStyle.Render("─╮")
}

// Nav renders the numbered route list with the active route highlighted
func (f Frame) Nav() string {
	if len(f.Routes) == 0 {
		return ""
	}
	items := make([]string, 0, len(f.Routes))
	for i, r := range f.Routes {
		label := fmt.Sprintf("%d %s %s", i+1, routeIcon(r).String(), r.Title())
		if r == f.Active {
			items = append(items, styles.NavActive.Render(label))
		} else {
			items = append(items, styles.NavItem.Render(label))
		}
	}
	return " " + strings.Join(items, " ")
}

func routeIcon(r router.Route) icons.Icon {
	switch r {
	case router.Dashboard:
		return icons.Dashboard
	case router.Tasks:
		return icons.Tasks
	case router.Timesheet:
		return icons.Clock
	case router.Profile:
		return icons.User
	case router.Admin:
		return icons.Shield
	default:
		return icons.Info
	}
}

// Footer renders the bottom border with page shortcuts, the global keys,
// and the time since the page last refreshed.
func (f Frame) Footer() string {
	width := f.width()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	shortcuts := append([]string{}, f.Shortcuts...)
	if len(f.Routes) > 0 {
		shortcuts = append(shortcuts, "L Logout")
	}
	shortcuts = append(shortcuts, "q Quit")

	styled := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styled = append(styled, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styled = append(styled, s)
		}
	}
	leftText := " " + strings.Join(styled, "  ") + " "

	rightText := ""
	if !f.Updated.IsZero() {
		rightText = " " + statusStyle.Render("Updated "+FormatSince(f.Now.Sub(f.Updated))) + " "
	}

	// Shortcuts that do not fit are dropped from the right
	for len(styled) > 1 && lipgloss.Width(leftText)+lipgloss.Width(rightText)+4 > width {
		styled = styled[:len(styled)-1]
		leftText = " " + strings.Join(styled, "  ") + " "
	}

	fillWidth := max(0, width-4-lipgloss.Width(leftText)-lipgloss.Width(rightText)) // -4 for ╰─ and ─╯
	fill := borderStyle.Render(strings.Repeat("─", fillWidth))

	return borderStyle.Render("╰─") + leftText + fill + rightText + borderStyle.Render("─╯")
}

// FormatSince formats an elapsed duration in human-readable form
func FormatSince(d time.Duration) string {
	if d < time.Minute {
		secs := int(d.Seconds())
		if secs < 5 {
			return "just now"
		}
		return fmt.Sprintf("%ds ago", secs)
	}

	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}

	return fmt.Sprintf("%dh ago", int(d.Hours()))
}

// Select maps a nav key to a route: "1".."9" pick by position, tab and
// shift+tab cycle from active. ok is false when the key is not a nav key
// or names no route.
func Select(routes []router.Route, active router.Route, key string) (router.Route, bool) {
	if len(routes) == 0 {
		return active, false
	}

	switch key {
	case "tab", "shift+tab":
		cur := 0
		for i, r := range routes {
			if r == active {
				cur = i
			}
		}
		step := 1
		if key == "shift+tab" {
			step = len(routes) - 1
		}
		return routes[(cur+step)%len(routes)], true
	}

	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		i := int(key[0] - '1')
		if i < len(routes) {
			return routes[i], true
		}
	}
	return active, false
}
