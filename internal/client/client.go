// ABOUTME: HTTP client for the timesheet REST API
// ABOUTME: Carries the session cookie on every call and maps failures to CLI-friendly errors

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/timetrack/timesheet-cli/internal/client/cookiestore"
)

// Client is the API client for the timesheet backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	jar        *cookiestore.Jar
	validate   *validator.Validate
}

// Option customizes a Client
type Option func(*Client)

// WithTimeout bounds each request. Zero (the default) means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithJar replaces the in-memory cookie jar, typically with one that
// persists the session between runs.
func WithJar(jar *cookiestore.Jar) Option {
	return func(c *Client) {
		c.jar = jar
		c.httpClient.Jar = jar
	}
}

// New creates a new API client with the given base URL
func New(baseURL string, opts ...Option) *Client {
	jar := cookiestore.NewMemory()
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Jar: jar,
		},
		jar:      jar,
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend URL this client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health calls GET /api/health
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// Profile calls GET /api/profile and returns the identity behind the current session
func (c *Client) Profile(ctx context.Context) (*Identity, error) {
	var id Identity
	if err := c.do(ctx, http.MethodGet, "/api/profile", nil, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

// Login calls POST /api/login. On success the backend sets the session cookie.
func (c *Client) Login(ctx context.Context, username, password string) (*MessageResponse, error) {
	creds := Credentials{Username: username, Password: password}
	var resp MessageResponse
	if err := c.do(ctx, http.MethodPost, "/api/login", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout calls POST /api/logout and then forgets the local session
// cookie whether or not the backend answered.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/logout", nil, nil)
	if resetErr := c.jar.Reset(); resetErr != nil {
		slog.Warn("Failed to clear saved session", "error", resetErr)
	}
	return err
}

// InitAdmin calls POST /api/init to create the first administrator
func (c *Client) InitAdmin(ctx context.Context, username, password string) (*MessageResponse, error) {
	creds := Credentials{Username: username, Password: password}
	var resp MessageResponse
	if err := c.do(ctx, http.MethodPost, "/api/init", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// InitStatus calls GET /api/init/status. It has no side effects.
func (c *Client) InitStatus(ctx context.Context) (*InitStatus, error) {
	var status InitStatus
	if err := c.do(ctx, http.MethodGet, "/api/init/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// DashboardStats calls GET /api/dashboard/stats
func (c *Client) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	if err := c.do(ctx, http.MethodGet, "/api/dashboard/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// MyTasks calls GET /api/tasks/my
func (c *Client) MyTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks/my", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// AssignedTasks calls GET /api/tasks/assigned (tasks the caller handed out)
func (c *Client) AssignedTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks/assigned", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask calls POST /api/tasks
func (c *Client) CreateTask(ctx context.Context, req *CreateTaskRequest) error {
	if err := c.Validate(req); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/tasks", req, nil)
}

// UpdateProgress calls PUT /api/tasks/{id}/progress
func (c *Client) UpdateProgress(ctx context.Context, taskID string, req *ProgressUpdate) error {
	if taskID == "" {
		return &ValidationError{Fields: []string{"task is required"}}
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(taskID)+"/progress", req, nil)
}

// TodayTimesheet calls GET /api/timesheet/today
func (c *Client) TodayTimesheet(ctx context.Context) ([]TimesheetRecord, error) {
	var records []TimesheetRecord
	if err := c.do(ctx, http.MethodGet, "/api/timesheet/today", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// CheckIn calls POST /api/checkin
func (c *Client) CheckIn(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/checkin", nil, nil)
}

// CheckOut calls POST /api/checkout
func (c *Client) CheckOut(ctx context.Context, req *CheckoutRequest) error {
	if req.TasksWorked == nil {
		req.TasksWorked = []TaskWork{}
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/checkout", req, nil)
}

// Users calls GET /api/users
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser calls POST /api/users
func (c *Client) CreateUser(ctx context.Context, req *CreateUserRequest) error {
	if req.Role != RoleEmployee {
		req.Manager = ""
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/users", req, nil)
}

// Managers calls GET /api/managers
func (c *Client) Managers(ctx context.Context) ([]User, error) {
	var managers []User
	if err := c.do(ctx, http.MethodGet, "/api/managers", nil, &managers); err != nil {
		return nil, err
	}
	return managers, nil
}

// AuditLogs calls GET /api/audit and keeps at most limit entries (0 keeps all)
func (c *Client) AuditLogs(ctx context.Context, limit int) ([]AuditLog, error) {
	var logs []AuditLog
	if err := c.do(ctx, http.MethodGet, "/api/audit", nil, &logs); err != nil {
		return nil, err
	}
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

// do sends one JSON request and decodes a 2xx body into out (if non-nil)
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal input: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := c.handleErrorResponse(resp)
		slog.Debug("API request failed", "method", method, "path", path, "status", resp.StatusCode, "request_id", req.Header.Get("X-Request-ID"))
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if ctx.Err() == context.Canceled {
		return fmt.Errorf("request canceled")
	}
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("request timed out")
	}
	return fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
}
