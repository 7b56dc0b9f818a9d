// ABOUTME: Timesheet screen for today's check-ins and check-outs
// ABOUTME: Shows attendance status, session durations, and runs the checkout form

package timesheet

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/timetrack/timesheet-cli/internal/client"
	"github.com/timetrack/timesheet-cli/internal/tui/checkout"
	"github.com/timetrack/timesheet-cli/internal/tui/icons"
	"github.com/timetrack/timesheet-cli/internal/tui/page"
	"github.com/timetrack/timesheet-cli/internal/tui/styles"
	"github.com/timetrack/timesheet-cli/internal/tui/widgets"
)

// API is the client slice the timesheet screen uses
type API interface {
	TodayTimesheet(ctx context.Context) ([]client.TimesheetRecord, error)
	MyTasks(ctx context.Context) ([]client.Task, error)
	CheckIn(ctx context.Context) error
	CheckOut(ctx context.Context, req *client.CheckoutRequest) error
}

type recordsMsg struct {
	records []client.TimesheetRecord
	err     error
}

type openTasksMsg struct {
	tasks []client.Task
	err   error
}

type checkedInMsg struct{ err error }

type checkedOutMsg struct{ err error }

// Model is the timesheet screen
type Model struct {
	api API
	now func() time.Time

	records page.Resource[[]client.TimesheetRecord]
	tasks   page.Resource[[]client.Task]

	checkout   *checkout.Form
	submitting bool

	banner    string
	bannerErr bool
	updated   time.Time

	width  int
	height int
}

var _ page.Page = (*Model)(nil)

// New creates the timesheet screen. now is injectable for duration tests; nil means time.Now.
func New(api API, now func() time.Time) *Model {
	if now == nil {
		now = time.Now
	}
	return &Model{api: api, now: now, width: 80}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchRecords(), m.fetchTasks())
}

func (m *Model) fetchRecords() tea.Cmd {
	m.records.Start()
	api := m.api
	return func() tea.Msg {
		records, err := api.TodayTimesheet(page.Ctx())
		return recordsMsg{records: records, err: err}
	}
}

func (m *Model) fetchTasks() tea.Cmd {
	m.tasks.Start()
	api := m.api
	return func() tea.Msg {
		tasks, err := api.MyTasks(page.Ctx())
		return openTasksMsg{tasks: OpenTasks(tasks), err: err}
	}
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case recordsMsg:
		m.records.Resolve(msg.records, msg.err)
		if msg.err == nil {
			m.updated = m.now()
		}
		return m, nil

	case openTasksMsg:
		m.tasks.Resolve(msg.tasks, msg.err)
		return m, nil

	case checkedInMsg:
		m.submitting = false
		if msg.err != nil {
			m.setBanner(client.Message(msg.err, "Failed to check in"), true)
			return m, nil
		}
		m.setBanner("Checked in", false)
		return m, m.fetchRecords()

	case checkedOutMsg:
		m.submitting = false
		if msg.err != nil {
			m.setBanner(client.Message(msg.err, "Failed to check out"), true)
			if m.checkout != nil {
				return m, m.checkout.Retry()
			}
			return m, nil
		}
		m.checkout = nil
		m.setBanner("Checked out", false)
		return m, tea.Batch(m.fetchRecords(), m.fetchTasks())

	case checkout.CompleteMsg:
		m.submitting = true
		api, req := m.api, msg.Request
		return m, func() tea.Msg {
			return checkedOutMsg{err: api.CheckOut(page.Ctx(), req)}
		}

	case checkout.CancelledMsg:
		m.checkout = nil
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		if m.checkout != nil {
			return m.updateCheckout(msg)
		}
		return m.handleKey(msg)
	}

	if m.checkout != nil && !m.submitting {
		return m.updateCheckout(msg)
	}
	return m, nil
}

func (m *Model) updateCheckout(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.checkout.Update(msg)
	if f, ok := model.(*checkout.Form); ok {
		m.checkout = f
	}
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		m.banner = ""
		return m, tea.Batch(m.fetchRecords(), m.fetchTasks())
	case "i":
		if !m.records.Loaded() || CheckedIn(m.records.Data) {
			return m, nil
		}
		m.submitting = true
		m.banner = ""
		api := m.api
		return m, func() tea.Msg {
			return checkedInMsg{err: api.CheckIn(page.Ctx())}
		}
	case "o":
		if !CheckedIn(m.records.Data) {
			return m, nil
		}
		m.banner = ""
		m.checkout = checkout.New(m.tasks.Data, m.width)
		return m, m.checkout.Init()
	}
	return m, nil
}

// CheckedIn reports whether any of today's records is still open
func CheckedIn(records []client.TimesheetRecord) bool {
	for _, r := range records {
		if r.Open() {
			return true
		}
	}
	return false
}

// CompletedToday sums completed_today across records
func CompletedToday(records []client.TimesheetRecord) int {
	total := 0
	for _, r := range records {
		total += r.CompletedToday
	}
	return total
}

// OpenTasks drops completed tasks
func OpenTasks(tasks []client.Task) []client.Task {
	out := make([]client.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status != client.StatusCompleted {
			out = append(out, t)
		}
	}
	return out
}

// Duration formats the length of a session as "Xh Ym", or "In Progress"
// while the record is open.
func Duration(r client.TimesheetRecord) string {
	if r.Open() {
		return "In Progress"
	}
	d := r.CheckOut.Sub(r.CheckIn.Time)
	if d < 0 {
		d = 0
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

func clock(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("03:04 PM")
}

// SetSize implements page.Page
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.checkout != nil {
		m.checkout.SetWidth(width)
	}
}

// Capturing implements page.Page
func (m *Model) Capturing() bool {
	return m.checkout != nil
}

// Shortcuts implements page.Page
func (m *Model) Shortcuts() []string {
	if m.checkout != nil {
		return []string{"tab Next", "enter Continue", "esc Cancel"}
	}
	if CheckedIn(m.records.Data) {
		return []string{"o Check out", "r Refresh"}
	}
	return []string{"i Check in", "r Refresh"}
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
	sb.WriteString(styles.Title.Render(icons.Clock.String() + " Timesheet"))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render(m.now().Format("Monday, January 2, 2006")))
	sb.WriteString("\n")
	sb.WriteString(page.Banner(m.banner, m.bannerErr))

	if m.checkout != nil {
		if m.submitting {
			sb.WriteString(page.Placeholder("Checking out..."))
		} else {
			sb.WriteString(m.checkout.View())
		}
		return sb.String()
	}

	switch {
	case m.records.Status == page.Failed && m.records.Data == nil:
		sb.WriteString(page.Banner("Failed to fetch timesheet data", true))
		return sb.String()
	case !m.records.Loaded() && m.records.Data == nil:
		sb.WriteString(page.Placeholder("Loading timesheet..."))
		return sb.String()
	}

	records := m.records.Data
	status := widgets.StatusText("Not checked in", widgets.StatusWarning)
	if CheckedIn(records) {
		status = widgets.StatusText("Checked in", widgets.StatusOK)
	}
	if m.submitting {
		status = page.Placeholder("Checking in...")
	}
	sb.WriteString(page.Field("Status", status, 16))
	sb.WriteString("\n")
	sb.WriteString(page.Field("Sessions today", fmt.Sprintf("%d", len(records)), 16))
	sb.WriteString("\n")
	sb.WriteString(page.Field("Completed today", fmt.Sprintf("%d", CompletedToday(records)), 16))
	sb.WriteString("\n")
	sb.WriteString(page.Field("Open tasks", fmt.Sprintf("%d", len(m.tasks.Data)), 16))
	sb.WriteString("\n\n")

	sb.WriteString(styles.ValueStyle.Render("Today's Records"))
	sb.WriteString("\n")
	if len(records) == 0 {
		sb.WriteString(page.Placeholder("No records for today. Press i to check in."))
		return sb.String()
	}
	for _, r := range records {
		sb.WriteString(m.recordView(r))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m *Model) recordView(r client.TimesheetRecord) string {
	out := "-"
	if !r.Open() {
		out = clock(r.CheckOut.Time)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s In %s   Out %s   Duration: %s",
		icons.Clock.String(), clock(r.CheckIn.Time), out, Duration(r)))
	if r.CompletedToday > 0 {
		sb.WriteString(fmt.Sprintf("   Completed: %d", r.CompletedToday))
	}
	if r.Notes != "" {
		sb.WriteString("\n  " + styles.LabelStyle.Render("Notes: ") + r.Notes)
	}
	for _, w := range r.TasksWorked {
		line := fmt.Sprintf("  • %s +%d%%", m.taskName(w.TaskID), w.PercentAdded)
		if w.Note != "" {
			line += " " + styles.LabelStyle.Render(w.Note)
		}
		sb.WriteString("\n" + line)
	}
	return sb.String()
}

func (m *Model) taskName(id string) string {
	for _, t := range m.tasks.Data {
		if t.ID == id {
			return t.Description
		}
	}
	return id
}
