// ABOUTME: Route gate deciding which screen the TUI shows for a session and path
// ABOUTME: Pure function over a session snapshot; the nav menu reads the same table

package router

import (
	"github.com/timetrack/timesheet-cli/internal/client"
	"github.com/timetrack/timesheet-cli/internal/session"
)

// Route identifies a top-level screen
type Route int

const (
	Loading Route = iota
	Login
	Dashboard
	Tasks
	Timesheet
	Profile
	Admin
)

// Paths used by the gate
const (
	PathRoot      = "/"
	PathLogin     = "/login"
	PathDashboard = "/dashboard"
	PathTasks     = "/tasks"
	PathTimesheet = "/timesheet"
	PathProfile   = "/profile"
	PathAdmin     = "/admin"
)

// Path returns the canonical path for r, or "" for Loading
func (r Route) Path() string {
	switch r {
	case Login:
		return PathLogin
	case Dashboard:
		return PathDashboard
	case Tasks:
		return PathTasks
	case Timesheet:
		return PathTimesheet
	case Profile:
		return PathProfile
	case Admin:
		return PathAdmin
	default:
		return ""
	}
}

// Title returns the nav label for r
func (r Route) Title() string {
	switch r {
	case Loading:
		return "Loading"
	case Login:
		return "Login"
	case Dashboard:
		return "Dashboard"
	case Tasks:
		return "Tasks"
	case Timesheet:
		return "Timesheet"
	case Profile:
		return "Profile"
	case Admin:
		return "Admin"
	default:
		return "Unknown"
	}
}

func (r Route) String() string {
	return r.Title()
}

// Decision is the outcome of resolving a requested path
type Decision struct {
	Route Route
	// Path is where the user ends up; differs from the request when Redirected
	Path       string
	Redirected bool
}

// protected lists routes available to any authenticated user, in nav order
var protected = []Route{Dashboard, Tasks, Timesheet, Profile}

// Routes returns the screens registered for snap in nav order. Admin is
// only registered for the Admin role.
func Routes(snap session.Snapshot) []Route {
	if snap.State() != session.StateAuthenticated {
		return nil
	}
	routes := make([]Route, 0, len(protected)+1)
	routes = append(routes, protected...)
	if snap.Role() == client.RoleAdmin {
		routes = append(routes, Admin)
	}
	return routes
}

// Resolve maps a requested path to the screen to show. While the session
// is still initializing no route is evaluated at all.
func Resolve(snap session.Snapshot, path string) Decision {
	switch snap.State() {
	case session.StateInitializing:
		return Decision{Route: Loading, Path: path}
	case session.StateAnonymous:
		return Decision{Route: Login, Path: PathLogin, Redirected: path != PathLogin}
	}

	for _, r := range Routes(snap) {
		if r.Path() == path {
			return Decision{Route: r, Path: path}
		}
	}
	return Decision{Route: Dashboard, Path: PathDashboard, Redirected: true}
}
