// ABOUTME: Tests for the health command
// ABOUTME: Verifies health check output formatting and exit codes

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/timetrack/timesheet-cli/internal/client"
)

func TestFormatHealthHuman(t *testing.T) {
	resp := &client.HealthResponse{Status: "healthy", Database: "connected"}

	output := formatHealthHuman("http://localhost:5000", resp)

	for _, expected := range []string{"http://localhost:5000", "Status:", "healthy", "connected"} {
		if !strings.Contains(output, expected) {
			t.Errorf("expected output to contain %q", expected)
		}
	}
}

func TestFormatHealthHuman_UnknownDatabase(t *testing.T) {
	output := formatHealthHuman("http://localhost:5000", &client.HealthResponse{Status: "ok"})
	if !strings.Contains(output, "unknown") {
		t.Error("expected unknown database when not reported")
	}
}

func TestFormatHealthJSON(t *testing.T) {
	resp := &client.HealthResponse{Status: "healthy"}

	output := formatHealthJSON("http://localhost:5000", resp)

	var parsed map[string]any
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed["backend"] != "http://localhost:5000" {
		t.Errorf("expected backend URL in JSON, got %v", parsed["backend"])
	}
	if parsed["status"] != "healthy" {
		t.Errorf("expected status in JSON, got %v", parsed["status"])
	}
}

func TestHealthCommand_Success(t *testing.T) {
	isolate(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(client.HealthResponse{Status: "healthy", Database: "connected"})
	}))
	defer server.Close()
	useServer(t, server)

	var buf bytes.Buffer
	exitCode := runHealth(context.Background(), &buf)

	if exitCode != exitOK {
		t.Errorf("expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "healthy") {
		t.Errorf("expected healthy in output, got %q", buf.String())
	}
}

func TestHealthCommand_ConnectionError(t *testing.T) {
	isolate(t)
	apiURL = "http://localhost:99999"
	t.Cleanup(func() { apiURL = "" })

	var buf bytes.Buffer
	exitCode := runHealth(context.Background(), &buf)

	if exitCode != exitError {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "Error:") {
		t.Error("expected error message in output")
	}
}
