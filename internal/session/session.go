// ABOUTME: Session store holding who is logged in to the timesheet backend
// ABOUTME: Explicit Initializing/Anonymous/Authenticated state with one writer and many readers

package session

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/timetrack/timesheet-cli/internal/client"
)

// State is the lifecycle phase of a session
type State int

const (
	// Initializing lasts from construction until the first CheckAuthStatus resolves
	StateInitializing State = iota
	StateAnonymous
	StateAuthenticated
)

// String returns the string representation of a State
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the session at one instant
type Snapshot struct {
	state    State
	identity client.Identity
}

// State returns the lifecycle phase
func (s Snapshot) State() State {
	return s.state
}

// Loading is true only while the first session check is in flight
func (s Snapshot) Loading() bool {
	return s.state == StateInitializing
}

// User returns the authenticated identity, if any
func (s Snapshot) User() (client.Identity, bool) {
	if s.state != StateAuthenticated {
		return client.Identity{}, false
	}
	return s.identity, true
}

// Role returns the authenticated user's role, or "" when signed out
func (s Snapshot) Role() client.Role {
	if s.state != StateAuthenticated {
		return ""
	}
	return s.identity.Role
}

// Authenticated builds a snapshot for a signed-in identity. Useful for
// rendering views outside a live Store.
func Authenticated(id client.Identity) Snapshot {
	return Snapshot{state: StateAuthenticated, identity: id}
}

// Anonymous builds a signed-out snapshot
func Anonymous() Snapshot {
	return Snapshot{state: StateAnonymous}
}

// Reader is the read-only side of a Store handed to views
type Reader interface {
	Snapshot() Snapshot
}

// Authenticator is the slice of the API client the store drives
type Authenticator interface {
	Profile(ctx context.Context) (*client.Identity, error)
	Login(ctx context.Context, username, password string) (*client.MessageResponse, error)
	Logout(ctx context.Context) error
	InitAdmin(ctx context.Context, username, password string) (*client.MessageResponse, error)
	InitStatus(ctx context.Context) (*client.InitStatus, error)
}

// Result is what Login and InitializeAdmin report back to a form
type Result struct {
	Success bool
	Message string
	// AdminExists is set when bootstrap was refused because an admin is already present
	AdminExists bool
}

const (
	loginFallback     = "Login failed"
	bootstrapFallback = "Failed to create admin"
	adminExistsText   = "admin already exists"
)

// Store is the single source of truth for the current session. All
// mutations go through its methods; everything else reads snapshots.
type Store struct {
	api Authenticator

	mu   sync.RWMutex
	snap Snapshot
	subs map[chan Snapshot]struct{}
}

// New returns a store in the Initializing state. Call CheckAuthStatus to resolve it.
func New(api Authenticator) *Store {
	return &Store{
		api:  api,
		snap: Snapshot{state: StateInitializing},
		subs: make(map[chan Snapshot]struct{}),
	}
}

// Snapshot implements Reader
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe returns a channel that always holds the latest snapshot after
// each change, plus a function to stop receiving. A slow reader only ever
// misses intermediate states, never the newest one, and never blocks writers.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

// CheckAuthStatus asks the backend who the current session belongs to.
// Any failure, including 401, means "no session" and is not reported.
func (s *Store) CheckAuthStatus(ctx context.Context) {
	id, err := s.api.Profile(ctx)
	if err != nil {
		slog.Debug("Session check found no session", "error", err)
		s.set(Snapshot{state: StateAnonymous})
		return
	}
	s.set(Snapshot{state: StateAuthenticated, identity: *id})
}

// Login submits credentials. On success the identity is re-read from the
// profile endpoint rather than taken from the login response, so the
// session shape always comes from one place. Login never mutates state on
// failure and never returns an error.
func (s *Store) Login(ctx context.Context, username, password string) Result {
	resp, err := s.api.Login(ctx, username, password)
	if err != nil {
		slog.Debug("Login rejected", "username", username, "error", err)
		return Result{Success: false, Message: client.Message(err, loginFallback)}
	}

	s.CheckAuthStatus(ctx)
	return Result{Success: true, Message: resp.Message}
}

// Logout ends the session. The local state is cleared even when the
// backend cannot be reached.
func (s *Store) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		slog.Warn("Logout error", "error", err)
	}
	s.set(Snapshot{state: StateAnonymous})
}

// InitializeAdmin creates the first administrator account. It never
// touches the session; callers follow up with Login.
func (s *Store) InitializeAdmin(ctx context.Context, username, password string) Result {
	resp, err := s.api.InitAdmin(ctx, username, password)
	if err != nil {
		msg := client.Message(err, bootstrapFallback)
		return Result{
			Success:     false,
			Message:     msg,
			AdminExists: isAdminExists(err, msg),
		}
	}
	return Result{Success: true, Message: resp.Message}
}

// BootstrapRequired reports whether the backend still needs its first
// admin. It is a read-only query; errors are returned so the caller can
// fall back to the plain login form.
func (s *Store) BootstrapRequired(ctx context.Context) (bool, error) {
	status, err := s.api.InitStatus(ctx)
	if err != nil {
		return false, err
	}
	return status.BootstrapRequired, nil
}

func isAdminExists(err error, msg string) bool {
	if client.StatusCode(err) == http.StatusConflict {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(msg), adminExistsText)
}

func (s *Store) set(next Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.snap
	s.snap = next
	if prev.state != next.state {
		slog.Info("Session state changed", "from", prev.state, "to", next.state, "user", next.identity.Username)
	}

	for ch := range s.subs {
		// Replace any unread snapshot with the newest one
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- next:
		default:
		}
	}
}
