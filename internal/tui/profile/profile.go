// ABOUTME: Profile screen for the logged-in account
// ABOUTME: Shows identity details, task completion stats, and recent audit activity

package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/timetrack/timesheet-cli/internal/client"
	"github.com/timetrack/timesheet-cli/internal/session"
	"github.com/timetrack/timesheet-cli/internal/tui/icons"
	"github.com/timetrack/timesheet-cli/internal/tui/page"
	"github.com/timetrack/timesheet-cli/internal/tui/styles"
	"github.com/timetrack/timesheet-cli/internal/tui/widgets"
)

// ActivityLimit is how many audit entries the activity list shows
const ActivityLimit = 10

// API is the client slice the profile screen uses
type API interface {
	DashboardStats(ctx context.Context) (*client.DashboardStats, error)
	AuditLogs(ctx context.Context, limit int) ([]client.AuditLog, error)
}

type statsMsg struct {
	stats *client.DashboardStats
	err   error
}

type activityMsg struct {
	logs []client.AuditLog
	err  error
}

// Model is the profile screen
type Model struct {
	api     API
	session session.Reader

	stats    page.Resource[*client.DashboardStats]
	activity page.Resource[[]client.AuditLog]
	updated  time.Time

	width  int
	height int
}

var _ page.Page = (*Model)(nil)

// New creates the profile screen
func New(api API, sess session.Reader) *Model {
	return &Model{api: api, session: sess, width: 80}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchStats(), m.fetchActivity())
}

func (m *Model) fetchStats() tea.Cmd {
	m.stats.Start()
	api := m.api
	return func() tea.Msg {
		stats, err := api.DashboardStats(page.Ctx())
		return statsMsg{stats: stats, err: err}
	}
}

func (m *Model) fetchActivity() tea.Cmd {
	m.activity.Start()
	api := m.api
	return func() tea.Msg {
		logs, err := api.AuditLogs(page.Ctx(), ActivityLimit)
		if len(logs) > ActivityLimit {
			logs = logs[:ActivityLimit]
		}
		return activityMsg{logs: logs, err: err}
	}
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statsMsg:
		m.stats.Resolve(msg.stats, msg.err)
		if msg.err == nil {
			m.updated = time.Now()
		}
	case activityMsg:
		m.activity.Resolve(msg.logs, msg.err)
	case tea.KeyMsg:
		if msg.String() == "r" {
			return m, tea.Batch(m.fetchStats(), m.fetchActivity())
		}
	}
	return m, nil
}

// SetSize implements page.Page
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Capturing implements page.Page
func (m *Model) Capturing() bool {
	return false
}

// Shortcuts implements page.Page
func (m *Model) Shortcuts() []string {
	return []string{"r Refresh"}
}

// Updated implements page.Page
func (m *Model) Updated() time.Time {
	return m.updated
}

// CompletionRate is completed over total as a whole percentage
func CompletionRate(s *client.DashboardStats) int {
	if s == nil || s.TotalTasks == 0 {
		return 0
	}
	return s.CompletedTasks * 100 / s.TotalTasks
}

// View implements tea.Model
func (m *Model) View() string {
	user, _ := m.session.Snapshot().User()

	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.User.String() + " Profile"))
	sb.WriteString("\n\n")

	manager := user.Manager
	if manager == "" {
		manager = "-"
	}
	sb.WriteString(page.Field("Username", styles.ValueStyle.Render(user.Username), 14))
	sb.WriteString("\n")
	sb.WriteString(page.Field("Role", widgets.RoleBadge(string(user.Role)), 14))
	sb.WriteString("\n")
	sb.WriteString(page.Field("Manager", manager, 14))
	sb.WriteString("\n")
	sb.WriteString(page.Field("Member since", page.FormatDate(user.CreatedAt.Time), 14))
	sb.WriteString("\n\n")

	sb.WriteString(page.Section("Quick Stats", m.statsView()))
	sb.WriteString("\n\n")
	sb.WriteString(page.Section("Recent Activity", m.activityView()))

	return sb.String()
}

func (m *Model) statsView() string {
	s := m.stats.Data
	switch {
	case m.stats.Status == page.Failed && s == nil:
		return page.Banner(client.Message(m.stats.Err, "Failed to load stats"), true)
	case s == nil:
		return page.Placeholder("Loading stats...")
	}

	rate := CompletionRate(s)
	var sb strings.Builder
	sb.WriteString(page.Field("Total tasks", fmt.Sprintf("%d", s.TotalTasks), 16))
	sb.WriteString("\n")
	sb.WriteString(page.Field("Completed", fmt.Sprintf("%d", s.CompletedTasks), 16))
	sb.WriteString("\n")
	sb.WriteString(page.Field("In progress", fmt.Sprintf("%d", s.InProgressTasks), 16))
	sb.WriteString("\n")
	sb.WriteString(page.Field("Completion rate", fmt.Sprintf("%d%% %s", rate, widgets.CompletionBar(rate, 20)), 16))
	return sb.String()
}

func (m *Model) activityView() string {
	logs := m.activity.Data
	switch {
	case m.activity.Status == page.Failed && logs == nil:
		return page.Placeholder("Activity unavailable")
	case !m.activity.Loaded() && logs == nil:
		return page.Placeholder("Loading activity...")
	case len(logs) == 0:
		return page.Placeholder("No recent activity")
	}

	lines := make([]string, 0, len(logs))
	for _, l := range logs {
		lines = append(lines, page.AuditLine(l))
	}
	return strings.Join(lines, "\n")
}
