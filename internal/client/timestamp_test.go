// ABOUTME: Tests for lenient timestamp decoding
// ABOUTME: One case per accepted layout plus null and garbage

package client

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimestamp_Unmarshal(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{`"2026-10-16T09:30:00Z"`, time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC), false},
		{`"2026-10-16T09:30:00.123456"`, time.Date(2026, 10, 16, 9, 30, 0, 123456000, time.UTC), false},
		{`"2026-10-16 09:30:00"`, time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC), false},
		{`"Fri, 16 Oct 2026 09:30:00 GMT"`, time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC), false},
		{`"2026-10-16"`, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), false},
		{`null`, time.Time{}, false},
		{`""`, time.Time{}, false},
		{`"yesterday"`, time.Time{}, true},
		{`12345`, time.Time{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			var ts Timestamp
			err := json.Unmarshal([]byte(tc.input), &ts)
			if tc.wantErr {
				if err == nil {
					t.Errorf("expected error for %s", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !ts.Equal(tc.want) {
				t.Errorf("expected %v, got %v", tc.want, ts.Time)
			}
		})
	}
}

func TestTimestamp_MarshalZeroIsNull(t *testing.T) {
	data, err := json.Marshal(Timestamp{})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "null" {
		t.Errorf("expected null, got %s", data)
	}
}

func TestTimesheetRecord_Open(t *testing.T) {
	var open TimesheetRecord
	if err := json.Unmarshal([]byte(`{"check_in":"2026-10-16T09:00:00Z","check_out":null}`), &open); err != nil {
		t.Fatal(err)
	}
	if !open.Open() {
		t.Error("expected record with null check_out to be open")
	}

	var closed TimesheetRecord
	if err := json.Unmarshal([]byte(`{"check_in":"2026-10-16T09:00:00Z","check_out":"2026-10-16T17:00:00Z"}`), &closed); err != nil {
		t.Fatal(err)
	}
	if closed.Open() {
		t.Error("expected record with check_out to be closed")
	}
}
