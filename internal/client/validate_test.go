// ABOUTME: Tests for client-side payload validation
// ABOUTME: Checks field naming and messages for each request type

package client

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	c := New("http://localhost:5000")

	tests := []struct {
		name    string
		payload any
		wantErr string
	}{
		{"valid credentials", &Credentials{Username: "alice", Password: "secret"}, ""},
		{"missing password", &Credentials{Username: "alice"}, "password is required"},
		{"valid task", &CreateTaskRequest{AssignedTo: "bob", Description: "Fix bug", Priority: PriorityHigh, DueDate: "2026-10-31"}, ""},
		{"bad priority", &CreateTaskRequest{AssignedTo: "bob", Description: "Fix bug", Priority: "Urgent"}, "priority must be one of"},
		{"bad due date", &CreateTaskRequest{AssignedTo: "bob", Description: "Fix bug", Priority: PriorityLow, DueDate: "31/10/2026"}, "due date must be a date"},
		{"zero progress", &ProgressUpdate{PercentAdded: 0}, "percent added must be at least 1"},
		{"employee without manager", &CreateUserRequest{Username: "eve", Password: "pw", Role: RoleEmployee}, "manager is required"},
		{"manager without manager", &CreateUserRequest{Username: "max", Password: "pw", Role: RoleManager}, ""},
		{"unknown role", &CreateUserRequest{Username: "x", Password: "pw", Role: "Guest"}, "role must be one of"},
		{"checkout entry missing task", &CheckoutRequest{TasksWorked: []TaskWork{{PercentAdded: 10}}}, "task id is required"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := c.Validate(tc.payload)
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}

			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !strings.Contains(ve.Error(), tc.wantErr) {
				t.Errorf("expected %q in %q", tc.wantErr, ve.Error())
			}
		})
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range Roles {
		if !r.Valid() {
			t.Errorf("expected %s to be valid", r)
		}
	}
	if Role("Guest").Valid() {
		t.Error("expected Guest to be invalid")
	}
}

func TestMessageReportsValidationFields(t *testing.T) {
	err := &ValidationError{Fields: []string{"percent added must be at least 1"}}
	if got := Message(err, "Failed to update progress"); got != "percent added must be at least 1" {
		t.Errorf("expected field message, got %q", got)
	}
}
