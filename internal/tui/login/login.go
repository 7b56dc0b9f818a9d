// ABOUTME: Login screen with first-admin setup
// ABOUTME: Asks the backend whether bootstrap is needed and swaps between the two forms

package login

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/timetrack/timesheet-cli/internal/session"
	"github.com/timetrack/timesheet-cli/internal/tui/icons"
	"github.com/timetrack/timesheet-cli/internal/tui/page"
	"github.com/timetrack/timesheet-cli/internal/tui/styles"
)

// Authenticator is the session slice the login screen drives
type Authenticator interface {
	Login(ctx context.Context, username, password string) session.Result
	InitializeAdmin(ctx context.Context, username, password string) session.Result
	BootstrapRequired(ctx context.Context) (bool, error)
	Snapshot() session.Snapshot
}

// Mode selects which form is shown
type Mode int

const (
	ModeLogin Mode = iota
	ModeSetup
)

const toggleKey = "ctrl+t"

type bootstrapMsg struct {
	required bool
	err      error
}

type loginDoneMsg struct {
	result session.Result
}

type setupDoneMsg struct {
	result   session.Result
	username string
	password string
}

// Model is the login page
type Model struct {
	auth Authenticator

	mode       Mode
	form       *huh.Form
	username   string
	password   string
	submitting bool
	toggled    bool

	banner    string
	bannerErr bool

	spinner spinner.Model
	width   int
	height  int
}

var _ page.Page = (*Model)(nil)

// New creates the login page in login mode. Init asks the backend whether
// the setup form should be shown instead.
func New(auth Authenticator) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	m := &Model{auth: auth, spinner: s, width: 60}
	m.form = m.buildForm()
	return m
}

// Mode returns which form is active
func (m *Model) Mode() Mode {
	return m.mode
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.form.Init(), m.checkBootstrap())
}

func (m *Model) checkBootstrap() tea.Cmd {
	auth := m.auth
	return func() tea.Msg {
		required, err := auth.BootstrapRequired(page.Ctx())
		return bootstrapMsg{required: required, err: err}
	}
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case bootstrapMsg:
		if msg.err != nil {
			slog.Debug("Bootstrap status unavailable, showing login form", "error", msg.err)
			return m, nil
		}
		// A manual toggle wins over a late answer
		if msg.required && !m.toggled && m.mode == ModeLogin {
			return m, m.switchMode(ModeSetup)
		}
		return m, nil

	case loginDoneMsg:
		m.submitting = false
		if msg.result.Success {
			// The app swaps pages once the session is authenticated. A
			// completed form left mounted would resubmit on the next key.
			if _, ok := m.auth.Snapshot().User(); ok {
				m.setBanner(msg.result.Message, false)
				return m, m.resetForm()
			}
			m.setBanner("Signed in, but no session was established", true)
			m.password = ""
			return m, m.resetForm()
		}
		m.setBanner(msg.result.Message, true)
		m.password = ""
		return m, m.resetForm()

	case setupDoneMsg:
		m.submitting = false
		switch {
		case msg.result.Success:
			m.username = msg.username
			m.password = msg.password
			m.setBanner(bootstrapSuccess(msg.result.Message), false)
			return m, m.switchMode(ModeLogin)
		case msg.result.AdminExists:
			m.setBanner("An administrator already exists. Please log in.", false)
			m.password = ""
			return m, m.switchMode(ModeLogin)
		default:
			m.setBanner(msg.result.Message, true)
			return m, m.resetForm()
		}

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		if msg.String() == toggleKey {
			m.toggled = true
			m.banner = ""
			if m.mode == ModeLogin {
				return m, m.switchMode(ModeSetup)
			}
			return m, m.switchMode(ModeLogin)
		}
	}

	if m.submitting {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.submit()
	}
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	m.submitting = true
	m.banner = ""
	username := strings.TrimSpace(m.username)
	password := m.password
	auth := m.auth

	var call tea.Cmd
	if m.mode == ModeSetup {
		call = func() tea.Msg {
			res := auth.InitializeAdmin(page.Ctx(), username, password)
			return setupDoneMsg{result: res, username: username, password: password}
		}
	} else {
		call = func() tea.Msg {
			return loginDoneMsg{result: auth.Login(page.Ctx(), username, password)}
		}
	}
	return tea.Batch(call, m.spinner.Tick)
}

func (m *Model) switchMode(mode Mode) tea.Cmd {
	if m.mode != mode && mode == ModeSetup {
		m.username, m.password = "", ""
	}
	m.mode = mode
	return m.resetForm()
}

func (m *Model) resetForm() tea.Cmd {
	m.form = m.buildForm()
	return m.form.Init()
}

func (m *Model) buildForm() *huh.Form {
	title := "Sign in"
	desc := "Use your timesheet account"
	if m.mode == ModeSetup {
		title = "Create administrator"
		desc = "No accounts exist yet. Create the first admin to get started."
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
		).Title(title).Description(desc),
	).WithTheme(styles.FormTheme()).
		WithShowHelp(false).
		WithWidth(formWidth(m.width))
}

func (m *Model) setBanner(msg string, isErr bool) {
	m.banner = msg
	m.bannerErr = isErr
}

func bootstrapSuccess(msg string) string {
	if msg == "" {
		msg = "Admin created"
	}
	return msg + ". Log in with the new account."
}

func formWidth(width int) int {
	if width > 60 {
		return 60
	}
	if width < 30 {
		return 30
	}
	return width
}

// SetSize implements page.Page
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.form = m.form.WithWidth(formWidth(width))
}

// Capturing implements page.Page. The login form always owns the keyboard.
func (m *Model) Capturing() bool {
	return true
}

// Shortcuts implements page.Page
func (m *Model) Shortcuts() []string {
	toggle := "ctrl+t Setup"
	if m.mode == ModeSetup {
		toggle = "ctrl+t Login"
	}
	return []string{"tab Next", "enter Submit", toggle, "ctrl+c Quit"}
}

// Updated implements page.Page
func (m *Model) Updated() time.Time {
	return time.Time{}
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	icon := icons.Lock
	if m.mode == ModeSetup {
		icon = icons.Shield
	}
	sb.WriteString(styles.Title.Render(icon.String() + " Timesheet"))
	sb.WriteString("\n")
	sb.WriteString(page.Banner(m.banner, m.bannerErr))

	if m.submitting {
		label := "Signing in..."
		if m.mode == ModeSetup {
			label = "Creating administrator..."
		}
		sb.WriteString(m.spinner.View() + " " + label)
		return sb.String()
	}

	sb.WriteString(m.form.View())
	return sb.String()
}
