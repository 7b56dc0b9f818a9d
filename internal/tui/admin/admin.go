// ABOUTME: Admin panel with overview, user management, audit trail, and system tabs
// ABOUTME: Only renders for the Admin role; other roles see an access notice and trigger no reads

package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/timetrack/timesheet-cli/internal/client"
	"github.com/timetrack/timesheet-cli/internal/session"
	"github.com/timetrack/timesheet-cli/internal/tui/icons"
	"github.com/timetrack/timesheet-cli/internal/tui/page"
	"github.com/timetrack/timesheet-cli/internal/tui/styles"
	"github.com/timetrack/timesheet-cli/internal/tui/widgets"
)

// AuditLimit is how many audit entries the panel shows
const AuditLimit = 20

// API is the client slice the admin panel uses
type API interface {
	Users(ctx context.Context) ([]client.User, error)
	Managers(ctx context.Context) ([]client.User, error)
	DashboardStats(ctx context.Context) (*client.DashboardStats, error)
	AuditLogs(ctx context.Context, limit int) ([]client.AuditLog, error)
	CreateUser(ctx context.Context, req *client.CreateUserRequest) error
	Health(ctx context.Context) (*client.HealthResponse, error)
	BaseURL() string
}

// Tab is one section of the panel
type Tab int

const (
	TabOverview Tab = iota
	TabUsers
	TabAudit
	TabSystem
)

var tabNames = []string{"Overview", "Users", "Audit Log", "System"}

func (t Tab) String() string {
	if int(t) < len(tabNames) {
		return tabNames[t]
	}
	return "Unknown"
}

// RoleFilters are the role filter choices in cycle order
var RoleFilters = []string{"All", string(client.RoleAdmin), string(client.RoleManager), string(client.RoleEmployee)}

type usersMsg struct {
	users []client.User
	err   error
}

type managersMsg struct {
	managers []client.User
	err      error
}

type statsMsg struct {
	stats *client.DashboardStats
	err   error
}

type auditMsg struct {
	logs []client.AuditLog
	err  error
}

type healthMsg struct {
	health *client.HealthResponse
	err    error
}

type createdMsg struct {
	username string
	err      error
}

// Model is the admin panel
type Model struct {
	api     API
	allowed bool

	users    page.Resource[[]client.User]
	managers page.Resource[[]client.User]
	stats    page.Resource[*client.DashboardStats]
	audit    page.Resource[[]client.AuditLog]
	health   page.Resource[*client.HealthResponse]

	tab        Tab
	roleFilter int
	search     textinput.Model
	searching  bool
	table      table.Model
	rows       []client.User

	form       *huh.Form
	submitting bool

	// form values
	username string
	password string
	role     client.Role
	manager  string

	banner    string
	bannerErr bool
	updated   time.Time

	width  int
	height int
}

var _ page.Page = (*Model)(nil)

// New creates the admin panel. Access is decided once from the session role.
func New(api API, sess session.Reader) *Model {
	search := textinput.New()
	search.Placeholder = "search usernames"
	search.Prompt = icons.Search.String() + " "
	search.CharLimit = 50

	t := table.New(table.WithFocused(true), table.WithHeight(8))
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(styles.Text).
		Background(styles.Primary).
		Bold(false)
	t.SetStyles(s)

	m := &Model{
		api:     api,
		allowed: sess.Snapshot().Role() == client.RoleAdmin,
		search:  search,
		table:   t,
		width:   100,
		height:  24,
	}
	m.layout()
	return m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	if !m.allowed {
		return nil
	}
	return m.refresh()
}

func (m *Model) refresh() tea.Cmd {
	return tea.Batch(m.fetchUsers(), m.fetchManagers(), m.fetchStats(), m.fetchAudit())
}

func (m *Model) fetchUsers() tea.Cmd {
	m.users.Start()
	api := m.api
	return func() tea.Msg {
		users, err := api.Users(page.Ctx())
		return usersMsg{users: users, err: err}
	}
}

func (m *Model) fetchManagers() tea.Cmd {
	m.managers.Start()
	api := m.api
	return func() tea.Msg {
		managers, err := api.Managers(page.Ctx())
		return managersMsg{managers: managers, err: err}
	}
}

func (m *Model) fetchStats() tea.Cmd {
	m.stats.Start()
	api := m.api
	return func() tea.Msg {
		stats, err := api.DashboardStats(page.Ctx())
		return statsMsg{stats: stats, err: err}
	}
}

func (m *Model) fetchAudit() tea.Cmd {
	m.audit.Start()
	api := m.api
	return func() tea.Msg {
		logs, err := api.AuditLogs(page.Ctx(), AuditLimit)
		if len(logs) > AuditLimit {
			logs = logs[:AuditLimit]
		}
		return auditMsg{logs: logs, err: err}
	}
}

func (m *Model) fetchHealth() tea.Cmd {
	m.health.Start()
	api := m.api
	return func() tea.Msg {
		health, err := api.Health(page.Ctx())
		return healthMsg{health: health, err: err}
	}
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !m.allowed {
		return m, nil
	}

	switch msg := msg.(type) {
	case usersMsg:
		logFailure("users", msg.err)
		m.users.Resolve(msg.users, msg.err)
		if msg.err == nil {
			m.updated = time.Now()
		}
		m.rebuildRows()
		return m, nil

	case managersMsg:
		logFailure("managers", msg.err)
		m.managers.Resolve(msg.managers, msg.err)
		return m, nil

	case statsMsg:
		logFailure("stats", msg.err)
		m.stats.Resolve(msg.stats, msg.err)
		return m, nil

	case auditMsg:
		logFailure("audit", msg.err)
		m.audit.Resolve(msg.logs, msg.err)
		return m, nil

	case healthMsg:
		m.health.Resolve(msg.health, msg.err)
		return m, nil

	case createdMsg:
		m.submitting = false
		if msg.err != nil {
			m.setBanner(client.Message(msg.err, "Failed to create user"), true)
			return m, m.openForm()
		}
		m.form = nil
		m.setBanner(fmt.Sprintf("User %s created", msg.username), false)
		return m, tea.Batch(m.fetchUsers(), m.fetchManagers())

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		if m.form != nil {
			if msg.String() == "esc" {
				m.form = nil
				return m, nil
			}
			return m.updateForm(msg)
		}
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.handleKey(msg)
	}

	if m.form != nil && !m.submitting {
		return m.updateForm(msg)
	}
	return m, nil
}

func logFailure(resource string, err error) {
	if err != nil {
		slog.Warn("admin read failed", "resource", resource, "error", err)
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "right", "l":
		return m, m.setTab((m.tab + 1) % Tab(len(tabNames)))
	case "left", "h":
		return m, m.setTab((m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames)))
	case "r":
		m.banner = ""
		if m.tab == TabSystem {
			return m, tea.Batch(m.refresh(), m.fetchHealth())
		}
		return m, m.refresh()
	}

	if m.tab != TabUsers {
		return m, nil
	}

	switch msg.String() {
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "f":
		m.roleFilter = (m.roleFilter + 1) % len(RoleFilters)
		m.rebuildRows()
		return m, nil
	case "esc":
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.rebuildRows()
		}
		return m, nil
	case "n":
		m.username, m.password, m.manager = "", "", ""
		m.role = client.RoleEmployee
		if managers := m.managers.Data; len(managers) > 0 {
			m.manager = managers[0].Username
		}
		m.banner = ""
		return m, m.openForm()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// setTab switches tabs. The system tab fetches health on first visit.
func (m *Model) setTab(t Tab) tea.Cmd {
	m.tab = t
	if t == TabSystem && m.health.Status == page.Idle {
		return m.fetchHealth()
	}
	return nil
}

// CurrentTab returns the selected tab
func (m *Model) CurrentTab() Tab {
	return m.tab
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.rebuildRows()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.rebuildRows()
	return m, cmd
}

func (m *Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m, m.submit()
	case huh.StateAborted:
		m.form = nil
		return m, nil
	}
	return m, cmd
}

func (m *Model) openForm() tea.Cmd {
	m.form = m.createForm()
	return m.form.Init()
}

func (m *Model) createForm() *huh.Form {
	roles := make([]huh.Option[client.Role], 0, len(client.Roles))
	for _, r := range client.Roles {
		roles = append(roles, huh.NewOption(string(r), r))
	}
	managers := make([]huh.Option[string], 0, len(m.managers.Data))
	for _, u := range m.managers.Data {
		managers = append(managers, huh.NewOption(u.Username, u.Username))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&m.username).
				Validate(page.Required("Username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.password).
				Validate(page.Required("Password")),
			huh.NewSelect[client.Role]().
				Title("Role").
				Options(roles...).
				Value(&m.role),
		).Title("Create New User"),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Manager").
				Options(managers...).
				Value(&m.manager).
				Validate(page.Required("Manager")),
		).WithHideFunc(func() bool { return !NeedsManager(m.role) }),
	).WithTheme(styles.FormTheme()).
		WithShowHelp(false).
		WithWidth(min(m.width, 70))
}

// NeedsManager reports whether a new user of role r must name a manager
func NeedsManager(r client.Role) bool {
	return r == client.RoleEmployee
}

// Request builds the create-user payload, dropping the manager for roles
// that do not report to one.
func Request(username, password string, role client.Role, manager string) *client.CreateUserRequest {
	req := &client.CreateUserRequest{
		Username: strings.TrimSpace(username),
		Password: password,
		Role:     role,
	}
	if NeedsManager(role) {
		req.Manager = manager
	}
	return req
}

func (m *Model) submit() tea.Cmd {
	m.submitting = true
	api := m.api
	req := Request(m.username, m.password, m.role, m.manager)
	return func() tea.Msg {
		return createdMsg{username: req.Username, err: api.CreateUser(page.Ctx(), req)}
	}
}

// FilterUsers returns users whose name contains query (case-insensitive)
// and whose role matches role, where "All" matches every role.
func FilterUsers(users []client.User, query, role string) []client.User {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]client.User, 0, len(users))
	for _, u := range users {
		if role != "All" && role != "" && string(u.Role) != role {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(u.Username), query) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// CountByRole tallies users per role
func CountByRole(users []client.User) map[client.Role]int {
	counts := make(map[client.Role]int, len(client.Roles))
	for _, u := range users {
		counts[u.Role]++
	}
	return counts
}

func (m *Model) rebuildRows() {
	m.rows = FilterUsers(m.users.Data, m.search.Value(), RoleFilters[m.roleFilter])
	rows := make([]table.Row, 0, len(m.rows))
	for _, u := range m.rows {
		manager := u.Manager
		if manager == "" {
			manager = "-"
		}
		rows = append(rows, table.Row{u.Username, string(u.Role), manager, page.FormatDate(u.CreatedAt.Time)})
	}
	m.table.SetRows(rows)
	if n := len(m.rows); n == 0 {
		m.table.SetCursor(0)
	} else if m.table.Cursor() >= n {
		m.table.SetCursor(n - 1)
	}
}

func (m *Model) layout() {
	name := max(16, m.width-10-16-12-6)
	m.table.SetColumns([]table.Column{
		{Title: "Username", Width: name},
		{Title: "Role", Width: 10},
		{Title: "Manager", Width: 16},
		{Title: "Created", Width: 12},
	})
	m.table.SetHeight(max(4, m.height-10))
	m.search.Width = max(20, m.width/3)
}

// SetSize implements page.Page
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.layout()
	if m.form != nil {
		m.form = m.form.WithWidth(min(width, 70))
	}
}

// Capturing implements page.Page
func (m *Model) Capturing() bool {
	return m.searching || m.form != nil
}

// Shortcuts implements page.Page
func (m *Model) Shortcuts() []string {
	switch {
	case !m.allowed:
		return nil
	case m.form != nil:
		return []string{"tab Next", "enter Submit", "esc Cancel"}
	case m.searching:
		return []string{"enter Apply", "esc Clear"}
	case m.tab == TabUsers:
		return []string{"←→ Tab", "n New user", "f Role", "/ Search", "r Refresh"}
	default:
		return []string{"←→ Tab", "r Refresh"}
	}
}

// Updated implements page.Page
func (m *Model) Updated() time.Time {
	return m.updated
}

func (m *Model) setBanner(msg string, isErr bool) {
	m.banner = msg
	m.bannerErr = isErr
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.Shield.String() + " Admin Panel"))
	sb.WriteString("\n")

	if !m.allowed {
		sb.WriteString(styles.StatusCritical.Render(icons.Lock.String() + " Access Restricted"))
		sb.WriteString("\n")
		sb.WriteString(page.Placeholder("Only administrators can view this page."))
		return sb.String()
	}

	sb.WriteString(m.tabBar())
	sb.WriteString("\n")
	sb.WriteString(page.Banner(m.banner, m.bannerErr))

	if m.form != nil {
		if m.submitting {
			sb.WriteString(page.Placeholder("Creating user..."))
		} else {
			sb.WriteString(m.form.View())
		}
		return sb.String()
	}

	sb.WriteString("\n")
	switch m.tab {
	case TabOverview:
		sb.WriteString(m.overviewView())
	case TabUsers:
		sb.WriteString(m.usersView())
	case TabAudit:
		sb.WriteString(m.auditView())
	case TabSystem:
		sb.WriteString(m.systemView())
	}
	return sb.String()
}

func (m *Model) tabBar() string {
	parts := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		if Tab(i) == m.tab {
			parts = append(parts, styles.NavActive.Render(name))
		} else {
			parts = append(parts, styles.NavItem.Render(name))
		}
	}
	return strings.Join(parts, "")
}

func (m *Model) overviewView() string {
	var sb strings.Builder

	switch s := m.stats.Data; {
	case s != nil:
		cfg := widgets.DefaultStatCardConfig()
		if w := m.width/4 - 1; w >= 20 {
			cfg.Width = w
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			widgets.CountCard(icons.Users, "Total Users", s.TotalUsers, "registered", cfg), " ",
			widgets.RatioCard(icons.User, "Active Users", s.ActiveUsers, s.TotalUsers, cfg), " ",
			widgets.CountCard(icons.Tasks, "Total Tasks", s.TotalTasks, "across teams", cfg), " ",
			widgets.RatioCard(icons.CheckOK, "Completed Tasks", s.CompletedTasks, s.TotalTasks, cfg),
		))
	case m.stats.Status == page.Failed:
		sb.WriteString(page.Placeholder("Statistics unavailable"))
	default:
		sb.WriteString(page.Placeholder("Loading statistics..."))
	}
	sb.WriteString("\n\n")

	var roles strings.Builder
	switch {
	case m.users.Data != nil:
		counts := CountByRole(m.users.Data)
		for _, r := range client.Roles {
			roles.WriteString(fmt.Sprintf("%s %d\n", widgets.RoleBadge(string(r)), counts[r]))
		}
		roles.WriteString(page.Field("Managers available", fmt.Sprintf("%d", len(m.managers.Data)), 20))
	case m.users.Status == page.Failed:
		roles.WriteString(page.Placeholder("Users unavailable"))
	default:
		roles.WriteString(page.Placeholder("Loading users..."))
	}
	sb.WriteString(page.Section("Users by Role", roles.String()))
	return sb.String()
}

func (m *Model) usersView() string {
	var sb strings.Builder

	filters := make([]string, 0, len(RoleFilters))
	for i, f := range RoleFilters {
		if i == m.roleFilter {
			filters = append(filters, styles.NavActive.Render(f))
		} else {
			filters = append(filters, styles.NavItem.Render(f))
		}
	}
	sb.WriteString(icons.Filter.String() + " " + strings.Join(filters, ""))
	if m.searching || m.search.Value() != "" {
		sb.WriteString("   " + m.search.View())
	}
	sb.WriteString("\n\n")

	switch {
	case m.users.Status == page.Failed && m.users.Data == nil:
		sb.WriteString(page.Banner("Failed to fetch users", true))
	case !m.users.Loaded() && m.users.Data == nil:
		sb.WriteString(page.Placeholder("Loading users..."))
	case len(m.rows) == 0:
		sb.WriteString(page.Placeholder("No users found"))
	default:
		sb.WriteString(styles.LabelStyle.Render(fmt.Sprintf("%d of %d users", len(m.rows), len(m.users.Data))))
		sb.WriteString("\n")
		sb.WriteString(m.table.View())
	}
	return sb.String()
}

func (m *Model) auditView() string {
	logs := m.audit.Data
	switch {
	case m.audit.Status == page.Failed && logs == nil:
		return page.Placeholder("Audit log unavailable")
	case !m.audit.Loaded() && logs == nil:
		return page.Placeholder("Loading audit log...")
	case len(logs) == 0:
		return page.Placeholder("No audit entries")
	}

	lines := make([]string, 0, len(logs))
	for _, l := range logs {
		lines = append(lines, page.AuditLine(l))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) systemView() string {
	var sb strings.Builder
	sb.WriteString(page.Field("API", m.api.BaseURL(), 10))
	sb.WriteString("\n")

	switch h := m.health.Data; {
	case m.health.Status == page.Failed:
		sb.WriteString(page.Field("Status", widgets.StatusText("unreachable", widgets.StatusCritical), 10))
		sb.WriteString("\n")
		sb.WriteString(page.Placeholder(client.Message(m.health.Err, "Health check failed")))
	case h == nil:
		sb.WriteString(page.Placeholder("Checking API health..."))
	default:
		level := widgets.StatusOK
		if h.Status != "healthy" && h.Status != "ok" {
			level = widgets.StatusWarning
		}
		sb.WriteString(page.Field("Status", widgets.StatusText(h.Status, level), 10))
		if h.Database != "" {
			sb.WriteString("\n")
			sb.WriteString(page.Field("Database", h.Database, 10))
		}
	}
	return sb.String()
}
