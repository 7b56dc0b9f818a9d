// ABOUTME: Dashboard screen showing role-specific task and team statistics
// ABOUTME: Greets the user by time of day and renders stat cards from /api/dashboard/stats

package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/timetrack/timesheet-cli/internal/client"
	"github.com/timetrack/timesheet-cli/internal/session"
	"github.com/timetrack/timesheet-cli/internal/tui/icons"
	"github.com/timetrack/timesheet-cli/internal/tui/page"
	"github.com/timetrack/timesheet-cli/internal/tui/styles"
	"github.com/timetrack/timesheet-cli/internal/tui/widgets"
)

// StatsSource fetches dashboard statistics
type StatsSource interface {
	DashboardStats(ctx context.Context) (*client.DashboardStats, error)
}

const fetchError = "Failed to fetch dashboard data"

type statsMsg struct {
	stats *client.DashboardStats
	err   error
}

// Dashboard displays statistics for the logged-in user's role
type Dashboard struct {
	api     StatsSource
	session session.Reader
	now     func() time.Time

	stats   page.Resource[*client.DashboardStats]
	updated time.Time

	spinner spinner.Model
	width   int
	height  int
}

var _ page.Page = (*Dashboard)(nil)

// New creates a dashboard. now is injectable for greeting tests; nil means time.Now.
func New(api StatsSource, sess session.Reader, now func() time.Time) *Dashboard {
	if now == nil {
		now = time.Now
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return &Dashboard{
		api:     api,
		session: sess,
		now:     now,
		spinner: s,
		width:   80,
	}
}

// Init implements tea.Model
func (d *Dashboard) Init() tea.Cmd {
	return tea.Batch(d.fetch(), d.spinner.Tick)
}

func (d *Dashboard) fetch() tea.Cmd {
	d.stats.Start()
	api := d.api
	return func() tea.Msg {
		stats, err := api.DashboardStats(page.Ctx())
		return statsMsg{stats: stats, err: err}
	}
}

// Update implements tea.Model
func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statsMsg:
		d.stats.Resolve(msg.stats, msg.err)
		if msg.err == nil {
			d.updated = d.now()
		}
		return d, nil

	case spinner.TickMsg:
		if d.stats.Status != page.Loading {
			return d, nil
		}
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd

	case tea.KeyMsg:
		if msg.String() == "r" {
			return d, tea.Batch(d.fetch(), d.spinner.Tick)
		}
	}
	return d, nil
}

// SetSize implements page.Page
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// Capturing implements page.Page
func (d *Dashboard) Capturing() bool {
	return false
}

// Shortcuts implements page.Page
func (d *Dashboard) Shortcuts() []string {
	return []string{"r Refresh"}
}

// Updated implements page.Page
func (d *Dashboard) Updated() time.Time {
	return d.updated
}

// Greeting returns the salutation for the hour of t
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Good morning"
	case h < 18:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

// View implements tea.Model
func (d *Dashboard) View() string {
	snap := d.session.Snapshot()
	user, _ := snap.User()

	var sb strings.Builder
	sb.WriteString(styles.Title.Render(fmt.Sprintf("%s, %s", Greeting(d.now()), user.Username)))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render(d.now().Format("Monday, January 2, 2006")))
	sb.WriteString("\n")

	switch {
	case d.stats.Status == page.Failed:
		sb.WriteString(page.Banner(fetchError, true))
	case d.stats.Data == nil:
		sb.WriteString(d.spinner.View() + " Loading dashboard...")
		return sb.String()
	}

	if d.stats.Data == nil {
		return sb.String()
	}

	switch user.Role {
	case client.RoleEmployee:
		sb.WriteString(d.employeeView(d.stats.Data))
	case client.RoleManager:
		sb.WriteString(d.managerView(d.stats.Data))
	case client.RoleAdmin:
		sb.WriteString(d.adminView(d.stats.Data))
	default:
		sb.WriteString(styles.StatusWarning.Render("Role not recognized"))
	}

	return lipgloss.NewStyle().Width(d.width).Render(sb.String())
}

func (d *Dashboard) cardConfig() widgets.StatCardConfig {
	cfg := widgets.DefaultStatCardConfig()
	// Four cards per row when there is room, two otherwise
	if w := d.width/4 - 1; w >= 20 {
		cfg.Width = w
	} else if w := d.width/2 - 1; w >= 20 {
		cfg.Width = w
	}
	return cfg
}

func (d *Dashboard) row(cards ...string) string {
	cfg := d.cardConfig()
	perRow := max(1, d.width/(cfg.Width+1))

	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := min(i+perRow, len(cards))
		parts := make([]string, 0, (end-i)*2)
		for j, c := range cards[i:end] {
			if j > 0 {
				parts = append(parts, " ")
			}
			parts = append(parts, c)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, parts...))
	}
	return strings.Join(rows, "\n")
}

func (d *Dashboard) employeeView(s *client.DashboardStats) string {
	cfg := d.cardConfig()
	var sb strings.Builder

	sb.WriteString(d.row(
		widgets.CountCard(icons.Tasks, "Total Tasks", s.TotalTasks, "assigned to you", cfg),
		widgets.CountCard(icons.CheckOK, "Completed", s.CompletedTasks, "all time", cfg),
		widgets.CountCard(icons.Refresh, "In Progress", s.InProgressTasks, "active now", cfg),
		widgets.CountCard(icons.Clock, "Completed Today", s.CompletedToday, "since midnight", cfg),
	))
	sb.WriteString("\n\n")

	status := widgets.StatusText("Not checked in", widgets.StatusWarning)
	if s.IsCheckedIn {
		status = widgets.StatusText("Checked in", widgets.StatusOK)
	}
	sb.WriteString(page.Field("Attendance", status, 12))
	sb.WriteString("\n\n")

	sb.WriteString(styles.LabelStyle.Render("Task distribution"))
	sb.WriteString("\n")
	sb.WriteString(widgets.StackedBar(Distribution(s), max(20, d.width-2)))

	return sb.String()
}

// Distribution splits an employee's tasks by status for the stacked bar
func Distribution(s *client.DashboardStats) []widgets.Segment {
	pending := s.PendingTasks
	if pending == 0 {
		pending = max(0, s.TotalTasks-s.CompletedTasks-s.InProgressTasks)
	}
	return []widgets.Segment{
		{Label: client.StatusCompleted, Count: s.CompletedTasks, Color: styles.StatusColor(client.StatusCompleted)},
		{Label: client.StatusInProgress, Count: s.InProgressTasks, Color: styles.StatusColor(client.StatusInProgress)},
		{Label: client.StatusPending, Count: pending, Color: styles.StatusColor(client.StatusPending)},
	}
}

func (d *Dashboard) managerView(s *client.DashboardStats) string {
	cfg := d.cardConfig()
	return d.row(
		widgets.CountCard(icons.Users, "Team Members", s.TeamMembers, "reporting to you", cfg),
		widgets.CountCard(icons.Tasks, "Assigned Tasks", s.AssignedTasks, "created by you", cfg),
		widgets.RatioCard(icons.CheckOK, "Completed", s.CompletedTasks, s.AssignedTasks, cfg),
		widgets.CountCard(icons.Clock, "Pending", s.PendingTasks, "not started", cfg),
	)
}

func (d *Dashboard) adminView(s *client.DashboardStats) string {
	cfg := d.cardConfig()
	return d.row(
		widgets.CountCard(icons.Users, "Total Users", s.TotalUsers, "registered", cfg),
		widgets.RatioCard(icons.User, "Active Users", s.ActiveUsers, s.TotalUsers, cfg),
		widgets.CountCard(icons.Tasks, "Total Tasks", s.TotalTasks, "across teams", cfg),
		widgets.RatioCard(icons.CheckOK, "Completed Tasks", s.CompletedTasks, s.TotalTasks, cfg),
	)
}
