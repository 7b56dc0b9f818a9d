// ABOUTME: Tests for the login screen
// ABOUTME: Bootstrap detection, form switching, and submit outcomes via a fake authenticator

package login

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/timetrack/timesheet-cli/internal/client"
	"github.com/timetrack/timesheet-cli/internal/session"
)

type fakeAuth struct {
	loginResult session.Result
	setupResult session.Result
	required    bool
	requiredErr error
	snap        session.Snapshot

	gotUser string
	gotPass string
	calls   []string
}

func (f *fakeAuth) Login(ctx context.Context, username, password string) session.Result {
	f.calls = append(f.calls, "login")
	f.gotUser, f.gotPass = username, password
	return f.loginResult
}

func (f *fakeAuth) InitializeAdmin(ctx context.Context, username, password string) session.Result {
	f.calls = append(f.calls, "init")
	f.gotUser, f.gotPass = username, password
	return f.setupResult
}

func (f *fakeAuth) Snapshot() session.Snapshot {
	return f.snap
}

func (f *fakeAuth) BootstrapRequired(ctx context.Context) (bool, error) {
	f.calls = append(f.calls, "status")
	return f.required, f.requiredErr
}

// runBatch executes cmd and any nested batch, returning messages of type T
func collect[T any](cmd tea.Cmd) []T {
	var out []T
	if cmd == nil {
		return out
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, collect[T](c)...)
		}
	case T:
		out = append(out, msg)
	}
	return out
}

func TestInitChecksBootstrap(t *testing.T) {
	auth := &fakeAuth{required: true}
	m := New(auth)

	msgs := collect[bootstrapMsg](m.checkBootstrap())
	if len(msgs) != 1 || !msgs[0].required {
		t.Fatalf("expected bootstrap required message, got %+v", msgs)
	}

	m.Update(msgs[0])
	if m.Mode() != ModeSetup {
		t.Error("expected setup form when bootstrap is required")
	}
}

func TestBootstrapErrorKeepsLoginForm(t *testing.T) {
	m := New(&fakeAuth{})
	m.Update(bootstrapMsg{err: errors.New("404")})

	if m.Mode() != ModeLogin {
		t.Error("expected login form when status endpoint fails")
	}
	if m.banner != "" {
		t.Errorf("expected no banner for a missing status endpoint, got %q", m.banner)
	}
}

func TestBootstrapNotRequired(t *testing.T) {
	m := New(&fakeAuth{})
	m.Update(bootstrapMsg{required: false})

	if m.Mode() != ModeLogin {
		t.Error("expected login form")
	}
}

func TestToggleKey(t *testing.T) {
	m := New(&fakeAuth{})

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	if m.Mode() != ModeSetup {
		t.Fatal("expected ctrl+t to show setup form")
	}

	// A late bootstrap answer must not override the user's choice
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	m.Update(bootstrapMsg{required: true})
	if m.Mode() != ModeLogin {
		t.Error("expected manual toggle to win over bootstrap status")
	}
}

func TestLoginSubmit(t *testing.T) {
	auth := &fakeAuth{
		loginResult: session.Result{Success: true, Message: "Login successful"},
		snap:        session.Authenticated(client.Identity{Username: "alice", Role: client.RoleEmployee}),
	}
	m := New(auth)
	m.username = " alice "
	m.password = "secret"

	msgs := collect[loginDoneMsg](m.submit())
	if len(msgs) != 1 {
		t.Fatalf("expected one login result, got %d", len(msgs))
	}
	if auth.gotUser != "alice" || auth.gotPass != "secret" {
		t.Errorf("expected trimmed username and raw password, got %q/%q", auth.gotUser, auth.gotPass)
	}
	if !m.submitting {
		t.Error("expected submitting while request is in flight")
	}

	m.Update(msgs[0])
	if m.submitting {
		t.Error("expected submitting cleared")
	}
	if m.bannerErr {
		t.Error("expected success banner")
	}
}

func TestLoginWithoutSessionDoesNotResubmit(t *testing.T) {
	auth := &fakeAuth{loginResult: session.Result{Success: true, Message: "Login successful"}, snap: session.Anonymous()}
	m := New(auth)
	m.username = "alice"
	m.password = "secret"

	msgs := collect[loginDoneMsg](m.submit())
	if len(msgs) != 1 {
		t.Fatalf("expected one login result, got %d", len(msgs))
	}
	m.Update(msgs[0])

	if !m.bannerErr || !strings.Contains(m.banner, "no session was established") {
		t.Errorf("expected missing session banner, got %q (err=%v)", m.banner, m.bannerErr)
	}
	if m.password != "" {
		t.Error("expected password cleared")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if m.submitting {
		t.Error("expected a keystroke not to resubmit")
	}
	logins := 0
	for _, c := range auth.calls {
		if c == "login" {
			logins++
		}
	}
	if logins != 1 {
		t.Errorf("expected exactly one login call, got %d", logins)
	}
}

func TestLoginFailureShowsMessage(t *testing.T) {
	m := New(&fakeAuth{})
	m.username = "alice"
	m.password = "wrong"
	m.submitting = true

	m.Update(loginDoneMsg{result: session.Result{Success: false, Message: "Invalid credentials"}})

	if !m.bannerErr || m.banner != "Invalid credentials" {
		t.Errorf("expected error banner, got %q (err=%v)", m.banner, m.bannerErr)
	}
	if m.password != "" {
		t.Error("expected password cleared after failure")
	}
	if m.username != "alice" {
		t.Error("expected username kept after failure")
	}
	if !strings.Contains(m.View(), "Invalid credentials") {
		t.Error("expected view to show the failure")
	}
}

func TestSetupSuccessPrefillsLogin(t *testing.T) {
	auth := &fakeAuth{setupResult: session.Result{Success: true, Message: "Admin created"}}
	m := New(auth)
	m.Update(bootstrapMsg{required: true})
	m.username = "root"
	m.password = "pw"

	msgs := collect[setupDoneMsg](m.submit())
	if len(msgs) != 1 {
		t.Fatalf("expected one setup result, got %d", len(msgs))
	}
	if auth.calls[len(auth.calls)-1] != "init" {
		t.Errorf("expected InitializeAdmin call, got %v", auth.calls)
	}

	m.Update(msgs[0])
	if m.Mode() != ModeLogin {
		t.Error("expected login form after admin created")
	}
	if m.username != "root" || m.password != "pw" {
		t.Errorf("expected credentials prefilled, got %q/%q", m.username, m.password)
	}
	if m.bannerErr {
		t.Error("expected success banner")
	}
}

func TestSetupAdminExistsSwitchesToLogin(t *testing.T) {
	m := New(&fakeAuth{})
	m.Update(bootstrapMsg{required: true})

	m.Update(setupDoneMsg{result: session.Result{Message: "Admin already exists", AdminExists: true}})

	if m.Mode() != ModeLogin {
		t.Error("expected login form when admin already exists")
	}
	if m.bannerErr {
		t.Error("expected informational banner, not an error")
	}
}

func TestSetupFailureStaysOnSetup(t *testing.T) {
	m := New(&fakeAuth{})
	m.Update(bootstrapMsg{required: true})

	m.Update(setupDoneMsg{result: session.Result{Message: "Failed to create admin"}})

	if m.Mode() != ModeSetup {
		t.Error("expected to stay on setup form")
	}
	if !m.bannerErr || m.banner != "Failed to create admin" {
		t.Errorf("expected error banner, got %q", m.banner)
	}
}

func TestKeysIgnoredWhileSubmitting(t *testing.T) {
	m := New(&fakeAuth{})
	m.submitting = true

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	if m.Mode() != ModeLogin {
		t.Error("expected toggle ignored while submitting")
	}
	if !strings.Contains(m.View(), "Signing in") {
		t.Error("expected progress text while submitting")
	}
}

func TestLoginCapturesKeyboard(t *testing.T) {
	if !New(&fakeAuth{}).Capturing() {
		t.Error("expected login page to capture keys")
	}
}
