// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Follows the session store, gates routes, and hosts the active page inside the shell frame

package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/timetrack/timesheet-cli/internal/session"
	"github.com/timetrack/timesheet-cli/internal/tui/admin"
	"github.com/timetrack/timesheet-cli/internal/tui/dashboard"
	"github.com/timetrack/timesheet-cli/internal/tui/login"
	"github.com/timetrack/timesheet-cli/internal/tui/page"
	"github.com/timetrack/timesheet-cli/internal/tui/profile"
	"github.com/timetrack/timesheet-cli/internal/tui/router"
	"github.com/timetrack/timesheet-cli/internal/tui/shell"
	"github.com/timetrack/timesheet-cli/internal/tui/styles"
	"github.com/timetrack/timesheet-cli/internal/tui/tasks"
	"github.com/timetrack/timesheet-cli/internal/tui/timesheet"
)

// API is every client call a page can make
type API interface {
	dashboard.StatsSource
	tasks.API
	timesheet.API
	profile.API
	admin.API
}

// sessionChangedMsg carries a snapshot published by the store
type sessionChangedMsg struct {
	snap session.Snapshot
}

// loggedOutMsg is sent when a logout request returns
type loggedOutMsg struct{}

// App is the root model for the TUI
type App struct {
	store  *session.Store
	api    API
	events <-chan session.Snapshot
	cancel func()

	path  string
	route router.Route
	page  page.Page

	spinner spinner.Model
	width   int
	height  int
}

// New creates the application. It subscribes to store immediately so no
// session change between construction and Init is missed; call Close when
// the program exits.
func New(store *session.Store, api API) *App {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	events, cancel := store.Subscribe()
	return &App{
		store:   store,
		api:     api,
		events:  events,
		cancel:  cancel,
		path:    router.PathRoot,
		route:   router.Loading,
		spinner: s,
	}
}

// Close releases the store subscription
func (a *App) Close() {
	a.cancel()
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	store := a.store
	return tea.Batch(
		func() tea.Msg {
			store.CheckAuthStatus(context.Background())
			return nil
		},
		a.waitForSession(),
		a.spinner.Tick,
	)
}

// waitForSession blocks until the store publishes the next snapshot
func (a *App) waitForSession() tea.Cmd {
	events := a.events
	return func() tea.Msg {
		snap, ok := <-events
		if !ok {
			return nil
		}
		return sessionChangedMsg{snap: snap}
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.page != nil {
			a.page.SetSize(a.contentWidth(), a.contentHeight())
		}
		return a, nil

	case sessionChangedMsg:
		cmd := a.navigate(a.path)
		return a, tea.Batch(cmd, a.waitForSession())

	case loggedOutMsg:
		return a, nil

	case spinner.TickMsg:
		if a.route == router.Loading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.page == nil || !a.page.Capturing() {
			if model, cmd, handled := a.handleGlobalKey(msg); handled {
				return model, cmd
			}
		}
	}

	return a, a.forward(msg)
}

func (a *App) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	key := msg.String()
	if key == "q" {
		return a, tea.Quit, true
	}

	snap := a.store.Snapshot()
	if snap.State() != session.StateAuthenticated {
		return a, nil, false
	}

	if key == "L" {
		store := a.store
		return a, func() tea.Msg {
			store.Logout(context.Background())
			return loggedOutMsg{}
		}, true
	}

	if r, ok := shell.Select(router.Routes(snap), a.route, key); ok {
		return a, a.navigate(r.Path()), true
	}
	return a, nil, false
}

func (a *App) forward(msg tea.Msg) tea.Cmd {
	if a.page == nil {
		return nil
	}
	model, cmd := a.page.Update(msg)
	if p, ok := model.(page.Page); ok {
		a.page = p
	}
	return cmd
}

// navigate resolves path against the current session and mounts a fresh
// page when the resulting route differs from the one shown.
func (a *App) navigate(path string) tea.Cmd {
	d := router.Resolve(a.store.Snapshot(), path)
	a.path = d.Path
	if d.Route == a.route && (a.page != nil || d.Route == router.Loading) {
		return nil
	}

	a.route = d.Route
	a.page = a.build(d.Route)
	if a.page == nil {
		return a.spinner.Tick
	}
	a.page.SetSize(a.contentWidth(), a.contentHeight())
	return a.page.Init()
}

func (a *App) build(r router.Route) page.Page {
	switch r {
	case router.Login:
		return login.New(a.store)
	case router.Dashboard:
		return dashboard.New(a.api, a.store, nil)
	case router.Tasks:
		return tasks.New(a.api, a.store)
	case router.Timesheet:
		return timesheet.New(a.api, nil)
	case router.Profile:
		return profile.New(a.api, a.store)
	case router.Admin:
		return admin.New(a.api, a.store)
	default:
		return nil
	}
}

// Route returns the screen currently shown
func (a *App) Route() router.Route {
	return a.route
}

// Path returns the current location after any redirect
func (a *App) Path() string {
	return a.path
}

// View implements tea.Model
func (a *App) View() string {
	snap := a.store.Snapshot()
	frame := shell.Frame{
		Width:  a.width,
		Routes: router.Routes(snap),
		Active: a.route,
		Now:    time.Now(),
	}
	if user, ok := snap.User(); ok {
		frame.User = &user
	}

	var content string
	if a.page == nil {
		content = a.spinner.View() + " Checking session..."
	} else {
		frame.Shortcuts = a.page.Shortcuts()
		frame.Updated = a.page.Updated()
		content = a.page.View()
	}

	return frame.Wrap(lipgloss.NewStyle().Padding(0, 1).Render(strings.TrimRight(content, "\n")))
}

func (a *App) contentWidth() int {
	return max(shell.MinWidth, a.width) - 2
}

func (a *App) contentHeight() int {
	return max(10, a.height-shell.Overhead)
}

// Run starts the TUI and blocks until the user quits
func Run(store *session.Store, api API) error {
	app := New(store, api)
	defer app.Close()

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
