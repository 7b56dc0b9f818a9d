// ABOUTME: Wire types for the timesheet REST API
// ABOUTME: Identities, tasks, timesheet records, users, audit entries, and request payloads

package client

import "encoding/json"

// Role is a user's authorization level as reported by the server
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleManager  Role = "Manager"
	RoleEmployee Role = "Employee"
)

// Roles lists every known role in display order
var Roles = []Role{RoleAdmin, RoleManager, RoleEmployee}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// Identity is the /api/profile response for the logged-in user
type Identity struct {
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	Manager   string    `json:"manager,omitempty"`
	CreatedAt Timestamp `json:"created_at,omitempty"`
}

// MessageResponse is the generic acknowledgement body
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse represents the /api/health endpoint response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// InitStatus represents the /api/init/status endpoint response
type InitStatus struct {
	BootstrapRequired bool `json:"bootstrap_required"`
}

// Task status values
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

// Task priority values
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// Task represents a unit of assigned work
type Task struct {
	ID                string     `json:"_id"`
	Description       string     `json:"description"`
	AssignedTo        string     `json:"assigned_to"`
	AssignedBy        string     `json:"assigned_by"`
	Status            string     `json:"status"`
	Priority          string     `json:"priority"`
	CompletionPercent int        `json:"completion_percent"`
	DueDate           *Timestamp `json:"due_date,omitempty"`
	AssignedOn        Timestamp  `json:"assigned_on"`
}

// TaskWork records progress made on one task during a shift
type TaskWork struct {
	TaskID       string `json:"task_id" validate:"required"`
	PercentAdded int    `json:"percent_added" validate:"min=1,max=100"`
	Note         string `json:"note,omitempty"`
}

// TimesheetRecord is one check-in/check-out pair
type TimesheetRecord struct {
	ID             string     `json:"_id"`
	Username       string     `json:"username"`
	CheckIn        Timestamp  `json:"check_in"`
	CheckOut       *Timestamp `json:"check_out,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CompletedToday int        `json:"completed_today"`
	TasksWorked    []TaskWork `json:"tasks_worked,omitempty"`
}

// Open reports whether the record has no check-out yet
func (r TimesheetRecord) Open() bool {
	return r.CheckOut == nil || r.CheckOut.IsZero()
}

// User is an account as listed by /api/users and /api/managers
type User struct {
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	Manager   string    `json:"manager,omitempty"`
	CreatedAt Timestamp `json:"created_at,omitempty"`
}

// AuditLog is one entry from /api/audit
type AuditLog struct {
	Action    string                     `json:"action"`
	Username  string                     `json:"username"`
	Timestamp Timestamp                  `json:"timestamp"`
	Extra     map[string]json.RawMessage `json:"extra,omitempty"`
}

// DashboardStats is the /api/dashboard/stats response. The server fills
// only the fields relevant to the caller's role.
type DashboardStats struct {
	// Employee
	TotalTasks      int  `json:"total_tasks"`
	CompletedTasks  int  `json:"completed_tasks"`
	InProgressTasks int  `json:"in_progress_tasks"`
	PendingTasks    int  `json:"pending_tasks"`
	CompletedToday  int  `json:"completed_today"`
	IsCheckedIn     bool `json:"is_checked_in"`

	// Manager
	TeamMembers   int `json:"team_members"`
	AssignedTasks int `json:"assigned_tasks"`

	// Admin
	TotalUsers  int `json:"total_users"`
	ActiveUsers int `json:"active_users"`
}

// Credentials is the body for /api/login and /api/init
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CreateTaskRequest is the body for POST /api/tasks
type CreateTaskRequest struct {
	AssignedTo  string `json:"assigned_to" validate:"required"`
	Description string `json:"description" validate:"required"`
	DueDate     string `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Priority    string `json:"priority" validate:"required,oneof=Low Medium High"`
}

// ProgressUpdate is the body for PUT /api/tasks/{id}/progress
type ProgressUpdate struct {
	PercentAdded int    `json:"percent_added" validate:"min=1,max=100"`
	Note         string `json:"note"`
}

// CheckoutRequest is the body for POST /api/checkout
type CheckoutRequest struct {
	TasksWorked []TaskWork `json:"tasks_worked" validate:"dive"`
	Notes       string     `json:"notes"`
}

// CreateUserRequest is the body for POST /api/users
type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role" validate:"required,oneof=Admin Manager Employee"`
	Manager  string `json:"manager,omitempty" validate:"required_if=Role Employee"`
}
