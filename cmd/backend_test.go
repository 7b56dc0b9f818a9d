// ABOUTME: In-memory timesheet backend served over httptest for command tests
// ABOUTME: Issues a session cookie on login and enforces it on protected endpoints

package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/timetrack/timesheet-cli/internal/client"
)

type account struct {
	password string
	role     client.Role
}

type fakeBackend struct {
	mu       sync.Mutex
	accounts map[string]account
	sessions map[string]string
	next     int
	logouts  int
}

func newBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	b := &fakeBackend{
		accounts: map[string]account{},
		sessions: map[string]string{},
	}
	server := httptest.NewServer(b.routes())
	t.Cleanup(server.Close)
	return b, server
}

func (b *fakeBackend) addUser(name, pass string, role client.Role) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[name] = account{password: pass, role: role}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (b *fakeBackend) current(r *http.Request) (string, bool) {
	cookie, err := r.Cookie("session")
	if err != nil {
		return "", false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	name, ok := b.sessions[cookie.Value]
	return name, ok
}

func (b *fakeBackend) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, client.HealthResponse{Status: "healthy", Database: "connected"})
	})

	mux.HandleFunc("GET /api/init/status", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, client.InitStatus{BootstrapRequired: len(b.accounts) == 0})
	})

	mux.HandleFunc("POST /api/init", func(w http.ResponseWriter, r *http.Request) {
		var creds client.Credentials
		json.NewDecoder(r.Body).Decode(&creds)

		b.mu.Lock()
		defer b.mu.Unlock()
		for _, a := range b.accounts {
			if a.role == client.RoleAdmin {
				writeJSON(w, http.StatusBadRequest, client.ErrorResponse{Error: "Admin already exists"})
				return
			}
		}
		b.accounts[creds.Username] = account{password: creds.Password, role: client.RoleAdmin}
		writeJSON(w, http.StatusCreated, client.MessageResponse{Message: "Admin created successfully"})
	})

	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		var creds client.Credentials
		json.NewDecoder(r.Body).Decode(&creds)

		b.mu.Lock()
		a, ok := b.accounts[creds.Username]
		if !ok || a.password != creds.Password {
			b.mu.Unlock()
			writeJSON(w, http.StatusUnauthorized, client.ErrorResponse{Error: "Invalid credentials"})
			return
		}
		b.next++
		token := fmt.Sprintf("token-%d", b.next)
		b.sessions[token] = creds.Username
		b.mu.Unlock()

		http.SetCookie(w, &http.Cookie{Name: "session", Value: token, Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, client.MessageResponse{Message: "Login successful"})
	})

	mux.HandleFunc("POST /api/logout", func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("session"); err == nil {
			b.mu.Lock()
			delete(b.sessions, cookie.Value)
			b.logouts++
			b.mu.Unlock()
		}
		writeJSON(w, http.StatusOK, client.MessageResponse{Message: "Logged out"})
	})

	mux.HandleFunc("GET /api/profile", b.authed(func(w http.ResponseWriter, r *http.Request, name string, a account) {
		writeJSON(w, http.StatusOK, client.Identity{Username: name, Role: a.role, CreatedAt: client.TS(time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC))})
	}))

	mux.HandleFunc("GET /api/dashboard/stats", b.authed(func(w http.ResponseWriter, r *http.Request, name string, a account) {
		writeJSON(w, http.StatusOK, client.DashboardStats{TotalTasks: 5, CompletedTasks: 2, InProgressTasks: 1, CompletedToday: 1})
	}))

	mux.HandleFunc("GET /api/timesheet/today", b.authed(func(w http.ResponseWriter, r *http.Request, name string, a account) {
		writeJSON(w, http.StatusOK, []client.TimesheetRecord{
			{ID: "t1", Username: name, CheckIn: client.TS(time.Now().Add(-2 * time.Hour))},
		})
	}))

	return mux
}

func (b *fakeBackend) authed(next func(http.ResponseWriter, *http.Request, string, account)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, ok := b.current(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, client.ErrorResponse{Error: "Unauthorized"})
			return
		}
		b.mu.Lock()
		a := b.accounts[name]
		b.mu.Unlock()
		next(w, r, name, a)
	}
}
