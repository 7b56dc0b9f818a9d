// ABOUTME: Tests for the persistent session cookie jar
// ABOUTME: Verifies save/restore across jars, origin isolation, and reset

package cookiestore

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestJar_RestoresAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	base := "http://timesheet.example.com:5000"

	first, err := Open(dir, base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first.SetCookies(mustURL(t, base+"/api/login"), []*http.Cookie{{Name: "session", Value: "abc123", Path: "/"}})

	second, err := Open(dir, base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cookies := second.Cookies(mustURL(t, base+"/api/profile"))
	if len(cookies) != 1 {
		t.Fatalf("expected 1 restored cookie, got %d", len(cookies))
	}
	if cookies[0].Name != "session" || cookies[0].Value != "abc123" {
		t.Errorf("expected session=abc123, got %s=%s", cookies[0].Name, cookies[0].Value)
	}
}

func TestJar_IsolatesOrigins(t *testing.T) {
	dir := t.TempDir()

	a, _ := Open(dir, "http://a.example.com")
	a.SetCookies(mustURL(t, "http://a.example.com/api/login"), []*http.Cookie{{Name: "session", Value: "a", Path: "/"}})

	b, err := Open(dir, "http://b.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := b.Cookies(mustURL(t, "http://b.example.com/api/profile")); len(got) != 0 {
		t.Errorf("expected no cookies for a different origin, got %d", len(got))
	}
}

func TestJar_ResetClearsDisk(t *testing.T) {
	dir := t.TempDir()
	base := "http://localhost:5000"

	j, _ := Open(dir, base)
	j.SetCookies(mustURL(t, base+"/api/login"), []*http.Cookie{{Name: "session", Value: "xyz", Path: "/"}})

	if err := j.Reset(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := j.Cookies(mustURL(t, base+"/api/profile")); len(got) != 0 {
		t.Errorf("expected no cookies after reset, got %d", len(got))
	}

	reopened, _ := Open(dir, base)
	if got := reopened.Cookies(mustURL(t, base+"/api/profile")); len(got) != 0 {
		t.Errorf("expected reset to clear saved cookies, got %d", len(got))
	}
}

func TestJar_CorruptFileStartsFresh(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, fileName), []byte("not json"), 0600); err != nil {
		t.Fatal(err)
	}

	j, err := Open(dir, "http://localhost:5000")
	if err != nil {
		t.Fatalf("expected corrupt file to be ignored, got %v", err)
	}
	if got := j.Cookies(mustURL(t, "http://localhost:5000/")); len(got) != 0 {
		t.Errorf("expected empty jar, got %d cookies", len(got))
	}
}

func TestNewMemory_NeverWrites(t *testing.T) {
	j := NewMemory()
	j.SetCookies(mustURL(t, "http://localhost:5000/"), []*http.Cookie{{Name: "session", Value: "m", Path: "/"}})

	if got := j.Cookies(mustURL(t, "http://localhost:5000/")); len(got) != 1 {
		t.Errorf("expected in-memory cookie, got %d", len(got))
	}
	if err := j.Reset(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestJar_KeepsPathAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	base := "http://localhost:5000"

	first, _ := Open(dir, base)
	first.SetCookies(mustURL(t, base+"/api/login"), []*http.Cookie{{Name: "session", Value: "scoped", Path: "/api"}})

	second, err := Open(dir, base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := second.Cookies(mustURL(t, base+"/api/profile")); len(got) != 1 {
		t.Errorf("expected cookie under /api, got %d", len(got))
	}
	if got := second.Cookies(mustURL(t, base+"/health")); len(got) != 0 {
		t.Errorf("expected cookie not sent outside /api, got %d", len(got))
	}
}

func TestJar_SavesExpiry(t *testing.T) {
	dir := t.TempDir()
	base := "http://localhost:5000"
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	j, _ := Open(dir, base)
	j.SetCookies(mustURL(t, base+"/api/login"), []*http.Cookie{{Name: "session", Value: "v", Path: "/", Expires: expires, HttpOnly: true}})

	data, err := j.read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	saved := data.Sessions[base+"/"]
	if len(saved) != 1 {
		t.Fatalf("expected 1 saved cookie, got %d", len(saved))
	}
	if !saved[0].Expires.Equal(expires) || !saved[0].HttpOnly || saved[0].Path != "/" {
		t.Errorf("expected attributes kept, got %+v", saved[0])
	}
}

func TestJar_DropsExpiredOnLoad(t *testing.T) {
	dir := t.TempDir()
	base := "http://localhost:5000"
	raw := `{"sessions":{"http://localhost:5000/":[{"name":"session","value":"old","path":"/","expires":"2001-01-01T00:00:00Z"}]}}`
	if err := os.WriteFile(filepath.Join(dir, fileName), []byte(raw), 0600); err != nil {
		t.Fatal(err)
	}

	j, err := Open(dir, base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := j.Cookies(mustURL(t, base+"/api/profile")); len(got) != 0 {
		t.Errorf("expected expired cookie dropped, got %d", len(got))
	}
}

func TestJar_MaxAgeDeletes(t *testing.T) {
	dir := t.TempDir()
	base := "http://localhost:5000"

	j, _ := Open(dir, base)
	j.SetCookies(mustURL(t, base+"/api/login"), []*http.Cookie{{Name: "session", Value: "v", Path: "/"}})
	j.SetCookies(mustURL(t, base+"/api/logout"), []*http.Cookie{{Name: "session", Value: "", Path: "/", MaxAge: -1}})

	reopened, _ := Open(dir, base)
	if got := reopened.Cookies(mustURL(t, base+"/")); len(got) != 0 {
		t.Errorf("expected deleted cookie to stay deleted, got %d", len(got))
	}
}

func TestDefaultPath(t *testing.T) {
	tests := []struct {
		in, expected string
	}{
		{"", "/"},
		{"/", "/"},
		{"/login", "/"},
		{"/api/login", "/api"},
	}
	for _, tc := range tests {
		if got := defaultPath(tc.in); got != tc.expected {
			t.Errorf("defaultPath(%q): expected %q, got %q", tc.in, tc.expected, got)
		}
	}
}
