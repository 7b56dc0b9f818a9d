// ABOUTME: Tests for the task screen
// ABOUTME: Filtering, assignee rules, role-based fetching, and refetch after mutations

package tasks

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/timetrack/timesheet-cli/internal/client"
	"github.com/timetrack/timesheet-cli/internal/session"
)

type fakeAPI struct {
	mine     []client.Task
	assigned []client.Task
	users    []client.User
	writeErr error

	calls    []string
	progress *client.ProgressUpdate
	progID   string
	created  *client.CreateTaskRequest
}

func (f *fakeAPI) MyTasks(ctx context.Context) ([]client.Task, error) {
	f.calls = append(f.calls, "my")
	return f.mine, nil
}

func (f *fakeAPI) AssignedTasks(ctx context.Context) ([]client.Task, error) {
	f.calls = append(f.calls, "assigned")
	return f.assigned, nil
}

func (f *fakeAPI) Users(ctx context.Context) ([]client.User, error) {
	f.calls = append(f.calls, "users")
	return f.users, nil
}

func (f *fakeAPI) CreateTask(ctx context.Context, req *client.CreateTaskRequest) error {
	f.calls = append(f.calls, "create")
	f.created = req
	return f.writeErr
}

func (f *fakeAPI) UpdateProgress(ctx context.Context, taskID string, req *client.ProgressUpdate) error {
	f.calls = append(f.calls, "progress")
	f.progID, f.progress = taskID, req
	return f.writeErr
}

type staticSession struct{ snap session.Snapshot }

func (s staticSession) Snapshot() session.Snapshot { return s.snap }

func as(role client.Role) staticSession {
	return staticSession{session.Authenticated(client.Identity{Username: "pat", Role: role})}
}

// run executes cmd, feeding page messages back into m. Follow-ups are
// skipped while a form is open so huh's cursor blink timers never run.
func run(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			run(m, c)
		}
		return
	}
	switch msg.(type) {
	case myTasksMsg, assignedTasksMsg, usersMsg, createdMsg, progressMsg:
		_, next := m.Update(msg)
		if m.form == nil {
			run(m, next)
		}
	}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var sample = []client.Task{
	{ID: "1", Description: "Write report", Status: client.StatusPending, Priority: client.PriorityHigh},
	{ID: "2", Description: "Review PR", Status: client.StatusInProgress, Priority: client.PriorityLow, CompletionPercent: 40},
	{ID: "3", Description: "Ship release", Status: client.StatusCompleted, CompletionPercent: 100},
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		query    string
		expected []string
	}{
		{"all", "All", "", []string{"1", "2", "3"}},
		{"pending", client.StatusPending, "", []string{"1"}},
		{"completed", client.StatusCompleted, "", []string{"3"}},
		{"search case-insensitive", "All", "REVIEW", []string{"2"}},
		{"search and status", client.StatusPending, "review", nil},
		{"search partial", "All", "re", []string{"1", "2", "3"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Filter(sample, tc.status, tc.query)
			if len(got) != len(tc.expected) {
				t.Fatalf("expected %v, got %d tasks", tc.expected, len(got))
			}
			for i, id := range tc.expected {
				if got[i].ID != id {
					t.Errorf("expected %s at %d, got %s", id, i, got[i].ID)
				}
			}
		})
	}
}

func TestAssignees(t *testing.T) {
	users := []client.User{
		{Username: "root", Role: client.RoleAdmin},
		{Username: "mia", Role: client.RoleManager},
		{Username: "eli", Role: client.RoleEmployee},
		{Username: "eve", Role: client.RoleEmployee},
	}

	admin := Assignees(users, client.RoleAdmin)
	if len(admin) != 1 || admin[0].Username != "mia" {
		t.Errorf("expected admin to assign to managers, got %v", admin)
	}

	manager := Assignees(users, client.RoleManager)
	if len(manager) != 2 || manager[0].Username != "eli" {
		t.Errorf("expected manager to assign to employees, got %v", manager)
	}

	if got := Assignees(users, client.RoleEmployee); got != nil {
		t.Errorf("expected employees to assign nobody, got %v", got)
	}
}

func TestEmployeeFetchesOnlyOwnTasks(t *testing.T) {
	api := &fakeAPI{mine: sample}
	m := New(api, as(client.RoleEmployee))
	run(m, m.Init())

	if len(api.calls) != 1 || api.calls[0] != "my" {
		t.Errorf("expected only my tasks fetch, got %v", api.calls)
	}
	if strings.Contains(m.View(), "Tasks I've Assigned") {
		t.Error("employee should not see assigned section")
	}
	if !strings.Contains(m.View(), "Write report") {
		t.Error("expected task in view")
	}
}

func TestManagerFetchesBothLists(t *testing.T) {
	api := &fakeAPI{mine: nil, assigned: sample[:1]}
	m := New(api, as(client.RoleManager))
	run(m, m.Init())

	got := strings.Join(api.calls, ",")
	if !strings.Contains(got, "my") || !strings.Contains(got, "assigned") {
		t.Errorf("expected both fetches, got %v", api.calls)
	}
	view := m.View()
	if !strings.Contains(view, "Tasks I've Assigned") {
		t.Error("expected assigned section for manager")
	}
	if !strings.Contains(view, "No tasks found") {
		t.Error("expected empty state for own tasks")
	}
}

func TestFilterKeyCycles(t *testing.T) {
	m := New(&fakeAPI{mine: sample}, as(client.RoleEmployee))
	run(m, m.Init())

	m.Update(key("f"))
	if Filters[m.filter] != client.StatusPending || len(m.mineRows) != 1 {
		t.Errorf("expected pending filter with 1 row, got %s/%d", Filters[m.filter], len(m.mineRows))
	}
	for i := 0; i < len(Filters)-1; i++ {
		m.Update(key("f"))
	}
	if m.filter != 0 {
		t.Error("expected filter to wrap to All")
	}
}

func TestSearchCapturesKeys(t *testing.T) {
	m := New(&fakeAPI{mine: sample}, as(client.RoleEmployee))
	run(m, m.Init())

	m.Update(key("/"))
	if !m.Capturing() {
		t.Fatal("expected search to capture keys")
	}
	m.Update(key("ship"))
	if len(m.mineRows) != 1 || m.mineRows[0].ID != "3" {
		t.Errorf("expected search to narrow rows, got %v", m.mineRows)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.Capturing() || len(m.mineRows) != 3 {
		t.Error("expected esc to clear search and release keys")
	}
}

func TestUpdateProgressRefetchesMine(t *testing.T) {
	api := &fakeAPI{mine: sample}
	m := New(api, as(client.RoleEmployee))
	run(m, m.Init())

	m.Update(key("u"))
	if m.formKind != formProgress || m.target.ID != "1" {
		t.Fatalf("expected progress form for first task, got kind=%d target=%s", m.formKind, m.target.ID)
	}

	m.percent, m.note = "25", " done a bit "
	api.calls = nil
	run(m, m.submit())

	if api.progID != "1" || api.progress.PercentAdded != 25 || api.progress.Note != "done a bit" {
		t.Errorf("unexpected progress payload: %s %+v", api.progID, api.progress)
	}
	if strings.Join(api.calls, ",") != "progress,my" {
		t.Errorf("expected progress then my tasks refetch, got %v", api.calls)
	}
	if m.form != nil {
		t.Error("expected form closed after success")
	}
}

func TestUpdateProgressRejectsCompleted(t *testing.T) {
	m := New(&fakeAPI{mine: sample[2:]}, as(client.RoleEmployee))
	run(m, m.Init())

	m.Update(key("u"))
	if m.form != nil {
		t.Error("expected no form for a completed task")
	}
}

func TestUpdateProgressFailureKeepsForm(t *testing.T) {
	api := &fakeAPI{mine: sample, writeErr: &client.APIError{StatusCode: 400, Message: "Invalid progress"}}
	m := New(api, as(client.RoleEmployee))
	run(m, m.Init())
	m.Update(key("u"))
	m.percent = "10"

	api.calls = nil
	run(m, m.submit())

	if m.form == nil {
		t.Error("expected form reopened after failure")
	}
	if m.banner != "Invalid progress" || !m.bannerErr {
		t.Errorf("expected server message banner, got %q", m.banner)
	}
	if strings.Contains(strings.Join(api.calls, ","), "my") {
		t.Error("expected no refetch after a failed update")
	}
}

func TestCreateTaskFlow(t *testing.T) {
	api := &fakeAPI{
		users: []client.User{
			{Username: "mia", Role: client.RoleManager},
			{Username: "eli", Role: client.RoleEmployee},
		},
	}
	m := New(api, as(client.RoleManager))
	run(m, m.Init())

	_, cmd := m.Update(key("n"))
	run(m, cmd)
	if m.formKind != formCreate {
		t.Fatal("expected create form after users load")
	}
	if m.assignee != "eli" {
		t.Errorf("expected first employee preselected, got %q", m.assignee)
	}

	m.description = "Update docs"
	m.dueDate = "2026-11-01"
	api.calls = nil
	run(m, m.submit())

	if api.created == nil || api.created.AssignedTo != "eli" || api.created.Priority != client.PriorityMedium {
		t.Errorf("unexpected create payload: %+v", api.created)
	}
	if strings.Join(api.calls, ",") != "create,assigned" {
		t.Errorf("expected create then assigned refetch, got %v", api.calls)
	}
}

func TestCreateWithoutCandidates(t *testing.T) {
	api := &fakeAPI{users: []client.User{{Username: "root", Role: client.RoleAdmin}}}
	m := New(api, as(client.RoleAdmin))

	_, cmd := m.Update(key("n"))
	run(m, cmd)

	if m.form != nil {
		t.Error("expected no form without assignable users")
	}
	if !m.bannerErr {
		t.Error("expected error banner")
	}
}

func TestEmployeeCannotCreate(t *testing.T) {
	api := &fakeAPI{}
	m := New(api, as(client.RoleEmployee))
	_, cmd := m.Update(key("n"))
	if cmd != nil {
		t.Error("expected no command for employee create")
	}
}

func TestFetchFailureShowsBanner(t *testing.T) {
	m := New(&fakeAPI{}, as(client.RoleEmployee))
	m.Update(myTasksMsg{err: errors.New("down")})
	if !strings.Contains(m.View(), "Failed to fetch tasks") {
		t.Error("expected failure banner")
	}
}

func TestValidators(t *testing.T) {
	for _, ok := range []string{"1", "100", " 50 "} {
		if err := validatePercent(ok); err != nil {
			t.Errorf("expected %q valid, got %v", ok, err)
		}
	}
	for _, bad := range []string{"0", "101", "abc", ""} {
		if err := validatePercent(bad); err == nil {
			t.Errorf("expected %q invalid", bad)
		}
	}
	if validateDate("") != nil || validateDate("2026-02-28") != nil {
		t.Error("expected empty and valid dates to pass")
	}
	if validateDate("28/02/2026") == nil {
		t.Error("expected bad date to fail")
	}
}
