// ABOUTME: Shared rendering for audit log entries
// ABOUTME: Used by the profile activity list and the admin audit tab

package page

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/timetrack/timesheet-cli/internal/client"
	"github.com/timetrack/timesheet-cli/internal/tui/styles"
)

// AuditLine renders one audit entry as "time  user  action  key=value..."
func AuditLine(l client.AuditLog) string {
	parts := []string{
		styles.LabelStyle.Render(FormatTime(l.Timestamp.Time)),
		styles.ValueStyle.Render(l.Username),
		humanizeAction(l.Action),
	}
	if extra := formatExtra(l.Extra); extra != "" {
		parts = append(parts, styles.LabelStyle.Render(extra))
	}
	return strings.Join(parts, "  ")
}

// humanizeAction turns "task_created" into "Task created"
func humanizeAction(action string) string {
	s := strings.ReplaceAll(action, "_", " ")
	if s == "" {
		return "-"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatExtra(extra map[string]json.RawMessage) string {
	if len(extra) == 0 {
		return ""
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		var s string
		if err := json.Unmarshal(extra[k], &s); err != nil {
			s = string(extra[k])
		}
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, s))
	}
	return strings.Join(pairs, " ")
}
