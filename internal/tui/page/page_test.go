// ABOUTME: Tests for shared page helpers
// ABOUTME: Resource transitions and formatting

package page

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/timetrack/timesheet-cli/internal/client"
)

func TestResourceLifecycle(t *testing.T) {
	var r Resource[[]string]

	if r.Status != Idle {
		t.Fatalf("expected idle, got %d", r.Status)
	}

	r.Start()
	if r.Status != Loading {
		t.Errorf("expected loading, got %d", r.Status)
	}

	r.Resolve([]string{"a"}, nil)
	if !r.Loaded() || len(r.Data) != 1 {
		t.Errorf("expected ready with data, got %+v", r)
	}

	// Refresh keeps previous data visible
	r.Start()
	if len(r.Data) != 1 {
		t.Error("expected data kept during refresh")
	}

	r.Resolve(nil, errors.New("boom"))
	if r.Status != Failed || r.Err == nil {
		t.Errorf("expected failed, got %+v", r)
	}
	if len(r.Data) != 1 {
		t.Error("expected failed refresh to keep last data")
	}
}

func TestBanner(t *testing.T) {
	if Banner("", true) != "" {
		t.Error("expected empty banner for empty message")
	}
	if !strings.Contains(Banner("nope", true), "nope") {
		t.Error("expected banner to contain message")
	}
}

func TestFormatTime(t *testing.T) {
	if FormatTime(time.Time{}) != "-" {
		t.Error("expected dash for zero time")
	}
	if FormatDate(time.Time{}) != "-" {
		t.Error("expected dash for zero date")
	}
	d := time.Date(2024, 3, 5, 12, 0, 0, 0, time.Local)
	if FormatDate(d) != "2024-03-05" {
		t.Errorf("expected 2024-03-05, got %s", FormatDate(d))
	}
}

func TestRequired(t *testing.T) {
	v := Required("Username")
	if err := v("  "); err == nil || err.Error() != "username is required" {
		t.Errorf("expected required error, got %v", err)
	}
	if err := v("bob"); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestAuditLine(t *testing.T) {
	l := client.AuditLog{
		Action:   "task_created",
		Username: "mia",
		Extra: map[string]json.RawMessage{
			"task":     json.RawMessage(`"Write docs"`),
			"assignee": json.RawMessage(`"eli"`),
			"percent":  json.RawMessage(`40`),
		},
	}
	line := AuditLine(l)

	for _, expected := range []string{"mia", "Task created", "assignee=eli percent=40 task=Write docs"} {
		if !strings.Contains(line, expected) {
			t.Errorf("expected %q in %q", expected, line)
		}
	}
}

func TestHumanizeAction(t *testing.T) {
	if humanizeAction("") != "-" {
		t.Error("expected dash for empty action")
	}
	if humanizeAction("login") != "Login" {
		t.Errorf("expected Login, got %s", humanizeAction("login"))
	}
}
