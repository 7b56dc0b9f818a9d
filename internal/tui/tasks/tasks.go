// ABOUTME: Task list screen with status filter, search, progress updates, and task creation
// ABOUTME: Employees update their own tasks; managers and admins also see and assign tasks

package tasks

import (
	"context"
	"fmt"
	"strconv"
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
)

// API is the client slice the task screen uses
type API interface {
	MyTasks(ctx context.Context) ([]client.Task, error)
	AssignedTasks(ctx context.Context) ([]client.Task, error)
	Users(ctx context.Context) ([]client.User, error)
	CreateTask(ctx context.Context, req *client.CreateTaskRequest) error
	UpdateProgress(ctx context.Context, taskID string, req *client.ProgressUpdate) error
}

// Filters are the status filter choices in cycle order
var Filters = []string{"All", client.StatusPending, client.StatusInProgress, client.StatusCompleted}

type section int

const (
	sectionMine section = iota
	sectionAssigned
)

type formKind int

const (
	formNone formKind = iota
	formCreate
	formProgress
)

type myTasksMsg struct {
	tasks []client.Task
	err   error
}

type assignedTasksMsg struct {
	tasks []client.Task
	err   error
}

type usersMsg struct {
	users []client.User
	err   error
}

type createdMsg struct{ err error }

type progressMsg struct{ err error }

// Model is the task screen
type Model struct {
	api  API
	role client.Role

	mine     page.Resource[[]client.Task]
	assigned page.Resource[[]client.Task]
	users    page.Resource[[]client.User]

	filter    int
	search    textinput.Model
	searching bool

	focus         section
	mineTable     table.Model
	assignedTable table.Model
	mineRows      []client.Task
	assignedRows  []client.Task

	form          *huh.Form
	formKind      formKind
	pendingCreate bool
	submitting    bool
	target        client.Task

	// form values
	percent     string
	note        string
	assignee    string
	description string
	priority    string
	dueDate     string

	banner    string
	bannerErr bool
	updated   time.Time

	width  int
	height int
}

var _ page.Page = (*Model)(nil)

// New creates the task screen for the current session's role
func New(api API, sess session.Reader) *Model {
	search := textinput.New()
	search.Placeholder = "search descriptions"
	search.Prompt = icons.Search.String() + " "
	search.CharLimit = 100

	m := &Model{
		api:    api,
		role:   sess.Snapshot().Role(),
		search: search,
		width:  100,
		height: 24,
	}
	m.mineTable = newTable(true)
	m.assignedTable = newTable(false)
	m.layout()
	return m
}

func newTable(focused bool) table.Model {
	t := table.New(table.WithFocused(focused), table.WithHeight(5))
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
	return t
}

func (m *Model) isEmployee() bool {
	return m.role == client.RoleEmployee
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return m.refresh()
}

func (m *Model) refresh() tea.Cmd {
	cmds := []tea.Cmd{m.fetchMine()}
	if !m.isEmployee() {
		cmds = append(cmds, m.fetchAssigned())
	}
	return tea.Batch(cmds...)
}

func (m *Model) fetchMine() tea.Cmd {
	m.mine.Start()
	api := m.api
	return func() tea.Msg {
		tasks, err := api.MyTasks(page.Ctx())
		return myTasksMsg{tasks: tasks, err: err}
	}
}

func (m *Model) fetchAssigned() tea.Cmd {
	m.assigned.Start()
	api := m.api
	return func() tea.Msg {
		tasks, err := api.AssignedTasks(page.Ctx())
		return assignedTasksMsg{tasks: tasks, err: err}
	}
}

func (m *Model) fetchUsers() tea.Cmd {
	m.users.Start()
	api := m.api
	return func() tea.Msg {
		users, err := api.Users(page.Ctx())
		return usersMsg{users: users, err: err}
	}
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case myTasksMsg:
		m.mine.Resolve(msg.tasks, msg.err)
		if msg.err == nil {
			m.updated = time.Now()
		}
		m.rebuildRows()
		return m, nil

	case assignedTasksMsg:
		m.assigned.Resolve(msg.tasks, msg.err)
		m.rebuildRows()
		return m, nil

	case usersMsg:
		m.users.Resolve(msg.users, msg.err)
		if !m.pendingCreate {
			return m, nil
		}
		m.pendingCreate = false
		if msg.err != nil {
			m.setBanner("Failed to fetch users", true)
			return m, nil
		}
		return m, m.openCreate()

	case createdMsg:
		m.submitting = false
		if msg.err != nil {
			m.setBanner(client.Message(msg.err, "Failed to create task"), true)
			return m, m.openForm(formCreate)
		}
		m.closeForm()
		m.setBanner("Task created", false)
		return m, m.fetchAssigned()

	case progressMsg:
		m.submitting = false
		if msg.err != nil {
			m.setBanner(client.Message(msg.err, "Failed to update progress"), true)
			return m, m.openForm(formProgress)
		}
		m.closeForm()
		m.setBanner("Progress updated", false)
		return m, m.fetchMine()

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		if m.form != nil {
			if msg.String() == "esc" {
				m.closeForm()
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

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		m.banner = ""
		return m, m.refresh()
	case "f":
		m.filter = (m.filter + 1) % len(Filters)
		m.rebuildRows()
		return m, nil
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "esc":
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.rebuildRows()
		}
		return m, nil
	case "s":
		if !m.isEmployee() {
			m.toggleFocus()
		}
		return m, nil
	case "u":
		if !m.isEmployee() {
			return m, nil
		}
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		if task.Status == client.StatusCompleted {
			m.setBanner("Task is already completed", true)
			return m, nil
		}
		m.target = task
		m.percent, m.note = "", ""
		return m, m.openForm(formProgress)
	case "n":
		if m.isEmployee() {
			return m, nil
		}
		m.pendingCreate = true
		m.banner = ""
		return m, m.fetchUsers()
	}

	var cmd tea.Cmd
	if m.focus == sectionAssigned {
		m.assignedTable, cmd = m.assignedTable.Update(msg)
	} else {
		m.mineTable, cmd = m.mineTable.Update(msg)
	}
	return m, cmd
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
		m.closeForm()
		return m, nil
	}
	return m, cmd
}

func (m *Model) toggleFocus() {
	if m.focus == sectionMine {
		m.focus = sectionAssigned
		m.mineTable.Blur()
		m.assignedTable.Focus()
	} else {
		m.focus = sectionMine
		m.assignedTable.Blur()
		m.mineTable.Focus()
	}
}

func (m *Model) selected() (client.Task, bool) {
	rows, t := m.mineRows, m.mineTable
	if m.focus == sectionAssigned {
		rows, t = m.assignedRows, m.assignedTable
	}
	i := t.Cursor()
	if i < 0 || i >= len(rows) {
		return client.Task{}, false
	}
	return rows[i], true
}

// Filter returns tasks matching a status filter ("All" matches everything)
// and a case-insensitive description substring.
func Filter(tasks []client.Task, status, query string) []client.Task {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]client.Task, 0, len(tasks))
	for _, t := range tasks {
		if status != "All" && status != "" && t.Status != status {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(t.Description), query) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Assignees returns the users a given role may assign tasks to: managers
// for an admin, employees for a manager, nobody otherwise.
func Assignees(users []client.User, role client.Role) []client.User {
	var want client.Role
	switch role {
	case client.RoleAdmin:
		want = client.RoleManager
	case client.RoleManager:
		want = client.RoleEmployee
	default:
		return nil
	}
	var out []client.User
	for _, u := range users {
		if u.Role == want {
			out = append(out, u)
		}
	}
	return out
}

func (m *Model) rebuildRows() {
	status := Filters[m.filter]
	m.mineRows = Filter(m.mine.Data, status, m.search.Value())
	m.assignedRows = Filter(m.assigned.Data, status, m.search.Value())
	m.mineTable.SetRows(toRows(m.mineRows, func(t client.Task) string { return t.AssignedBy }))
	m.assignedTable.SetRows(toRows(m.assignedRows, func(t client.Task) string { return t.AssignedTo }))
	clampCursor(&m.mineTable, len(m.mineRows))
	clampCursor(&m.assignedTable, len(m.assignedRows))
}

func clampCursor(t *table.Model, n int) {
	if n == 0 {
		t.SetCursor(0)
		return
	}
	if t.Cursor() >= n {
		t.SetCursor(n - 1)
	}
}

func toRows(tasks []client.Task, person func(client.Task) string) []table.Row {
	rows := make([]table.Row, 0, len(tasks))
	for _, t := range tasks {
		due := "-"
		if t.DueDate != nil {
			due = page.FormatDate(t.DueDate.Time)
		}
		rows = append(rows, table.Row{
			t.Description,
			t.Status,
			t.Priority,
			fmt.Sprintf("%d%%", t.CompletionPercent),
			due,
			person(t),
		})
	}
	return rows
}

func (m *Model) columns(personTitle string) []table.Column {
	const fixed = 12 + 8 + 8 + 10 + 12 + 12
	desc := max(20, m.width-fixed)
	return []table.Column{
		{Title: "Description", Width: desc},
		{Title: "Status", Width: 12},
		{Title: "Priority", Width: 8},
		{Title: "Progress", Width: 8},
		{Title: "Due", Width: 10},
		{Title: personTitle, Width: 12},
	}
}

func (m *Model) layout() {
	m.mineTable.SetColumns(m.columns("Assigned By"))
	m.assignedTable.SetColumns(m.columns("Assigned To"))

	// Header, filter bar, banner, and section titles take roughly ten lines
	avail := max(6, m.height-10)
	if m.isEmployee() {
		m.mineTable.SetHeight(avail)
	} else {
		m.mineTable.SetHeight(max(3, avail/2-2))
		m.assignedTable.SetHeight(max(3, avail/2-2))
	}
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
	case m.form != nil:
		return []string{"tab Next", "enter Submit", "esc Cancel"}
	case m.searching:
		return []string{"enter Apply", "esc Clear"}
	case m.isEmployee():
		return []string{"↑↓ Select", "u Update", "f Filter", "/ Search", "r Refresh"}
	default:
		return []string{"↑↓ Select", "n New", "s Section", "f Filter", "/ Search", "r Refresh"}
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

	subtitle := "Manage and assign tasks to your team"
	if m.isEmployee() {
		subtitle = "View and update your assigned tasks"
	}
	sb.WriteString(styles.Title.Render(icons.Tasks.String() + " Task Management"))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render(subtitle))
	sb.WriteString("\n")
	sb.WriteString(page.Banner(m.banner, m.bannerErr))

	if m.form != nil {
		sb.WriteString(m.formHeader())
		if m.submitting {
			sb.WriteString(page.Placeholder("Saving..."))
		} else {
			sb.WriteString(m.form.View())
		}
		return sb.String()
	}

	sb.WriteString(m.filterBar())
	sb.WriteString("\n\n")

	sb.WriteString(m.sectionView("My Tasks", m.mine, m.mineRows, &m.mineTable, m.focus == sectionMine,
		"No tasks found"))

	if !m.isEmployee() {
		sb.WriteString("\n\n")
		sb.WriteString(m.sectionView("Tasks I've Assigned", m.assigned, m.assignedRows, &m.assignedTable,
			m.focus == sectionAssigned, "No tasks assigned yet"))
	}

	return sb.String()
}

func (m *Model) filterBar() string {
	var parts []string
	for i, f := range Filters {
		if i == m.filter {
			parts = append(parts, styles.NavActive.Render(f))
		} else {
			parts = append(parts, styles.NavItem.Render(f))
		}
	}
	bar := icons.Filter.String() + " " + strings.Join(parts, "")
	if m.searching || m.search.Value() != "" {
		bar += "   " + m.search.View()
	}
	return bar
}

func (m *Model) sectionView(title string, res page.Resource[[]client.Task], rows []client.Task, t *table.Model, focused bool, empty string) string {
	titleStyle := styles.LabelStyle
	if focused {
		titleStyle = styles.ValueStyle
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s (%d)", title, len(rows))))
	sb.WriteString("\n")

	switch {
	case res.Status == page.Failed && res.Data == nil:
		sb.WriteString(page.Banner("Failed to fetch tasks", true))
	case res.Status != page.Ready && res.Data == nil:
		sb.WriteString(page.Placeholder("Loading tasks..."))
	case len(rows) == 0:
		sb.WriteString(page.Placeholder(empty))
	default:
		if res.Status == page.Failed {
			sb.WriteString(page.Banner("Failed to refresh tasks", true))
		}
		sb.WriteString(t.View())
		if focused {
			if task, ok := m.selected(); ok {
				sb.WriteString("\n")
				sb.WriteString(styles.ProgressBar(float64(task.CompletionPercent), 30))
				sb.WriteString(fmt.Sprintf(" %d%% complete", task.CompletionPercent))
			}
		}
	}
	return sb.String()
}

func (m *Model) formHeader() string {
	if m.formKind == formProgress {
		return page.Field("Task", m.target.Description, 10) + "\n" +
			page.Field("Progress", fmt.Sprintf("%d%%", m.target.CompletionPercent), 10) + "\n\n"
	}
	return ""
}

func (m *Model) closeForm() {
	m.form = nil
	m.formKind = formNone
}

func (m *Model) openCreate() tea.Cmd {
	candidates := Assignees(m.users.Data, m.role)
	if len(candidates) == 0 {
		m.setBanner("No users available to assign", true)
		return nil
	}
	m.assignee = candidates[0].Username
	m.description, m.dueDate = "", ""
	m.priority = client.PriorityMedium
	return m.openForm(formCreate)
}

func (m *Model) openForm(kind formKind) tea.Cmd {
	m.formKind = kind
	if kind == formCreate {
		m.form = m.createForm()
	} else {
		m.form = m.progressForm()
	}
	return m.form.Init()
}

func (m *Model) progressForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Progress added today (%)").
				Placeholder("1-100").
				CharLimit(3).
				Value(&m.percent).
				Validate(validatePercent),
			huh.NewText().
				Title("Notes (optional)").
				Lines(3).
				Value(&m.note),
		).Title("Update Task Progress"),
	).WithTheme(styles.FormTheme()).
		WithShowHelp(false).
		WithWidth(min(m.width, 70))
}

func (m *Model) createForm() *huh.Form {
	candidates := Assignees(m.users.Data, m.role)
	opts := make([]huh.Option[string], 0, len(candidates))
	for _, u := range candidates {
		opts = append(opts, huh.NewOption(u.Username, u.Username))
	}

	assignTitle := "Assign to Employee"
	if m.role == client.RoleAdmin {
		assignTitle = "Assign to Manager"
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(assignTitle).
				Options(opts...).
				Value(&m.assignee),
			huh.NewInput().
				Title("Description").
				Value(&m.description).
				Validate(page.Required("Description")),
			huh.NewSelect[string]().
				Title("Priority").
				Options(
					huh.NewOption(client.PriorityLow, client.PriorityLow),
					huh.NewOption(client.PriorityMedium, client.PriorityMedium),
					huh.NewOption(client.PriorityHigh, client.PriorityHigh),
				).
				Value(&m.priority),
			huh.NewInput().
				Title("Due date (optional)").
				Placeholder("YYYY-MM-DD").
				CharLimit(10).
				Value(&m.dueDate).
				Validate(validateDate),
		).Title("Assign New Task"),
	).WithTheme(styles.FormTheme()).
		WithShowHelp(false).
		WithWidth(min(m.width, 70))
}

func (m *Model) submit() tea.Cmd {
	m.submitting = true
	api := m.api

	if m.formKind == formProgress {
		pct, _ := strconv.Atoi(strings.TrimSpace(m.percent))
		id := m.target.ID
		req := &client.ProgressUpdate{PercentAdded: pct, Note: strings.TrimSpace(m.note)}
		return func() tea.Msg {
			return progressMsg{err: api.UpdateProgress(page.Ctx(), id, req)}
		}
	}

	req := &client.CreateTaskRequest{
		AssignedTo:  m.assignee,
		Description: strings.TrimSpace(m.description),
		DueDate:     strings.TrimSpace(m.dueDate),
		Priority:    m.priority,
	}
	return func() tea.Msg {
		return createdMsg{err: api.CreateTask(page.Ctx(), req)}
	}
}

func validatePercent(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 1 || v > 100 {
		return fmt.Errorf("must be a number from 1 to 100")
	}
	return nil
}

func validateDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	return nil
}
