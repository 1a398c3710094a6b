package audit

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFormatTimelineHeaderAndSummary(t *testing.T) {
	path := writeTestLog(t)
	result, err := Replay(path, ReplayFilter{SessionID: "sess-aaa"})
	if err != nil {
		t.Fatal(err)
	}

	out := FormatTimeline(result)

	if !strings.Contains(out, "Session: sess-aaa") {
		t.Error("expected header to contain session ID")
	}
	if !strings.Contains(out, "Summary:") {
		t.Error("expected summary line")
	}
	if !strings.Contains(out, "3 allow") {
		t.Errorf("expected '3 allow' in summary, got:\n%s", out)
	}
	if !strings.Contains(out, "2 deny") {
		t.Errorf("expected '2 deny' in summary, got:\n%s", out)
	}
	if !strings.Contains(out, "Denied gates: G5×2") {
		t.Errorf("expected denied gates in summary, got:\n%s", out)
	}
}

func TestFormatTimelineEntryColumns(t *testing.T) {
	path := writeTestLog(t)
	result, err := Replay(path, ReplayFilter{SessionID: "sess-aaa"})
	if err != nil {
		t.Fatal(err)
	}

	out := FormatTimeline(result)

	// Check that entries contain expected fields
	if !strings.Contains(out, "G2") {
		t.Error("expected G2 gate column")
	}
	if !strings.Contains(out, "G9") {
		t.Error("expected G9 gate column")
	}
	if !strings.Contains(out, "DENY") {
		t.Error("expected DENY decision")
	}
	if !strings.Contains(out, "ALLOW") {
		t.Error("expected ALLOW decision")
	}
	if !strings.Contains(out, "src/app.py") {
		t.Error("expected file resource")
	}
	if !strings.Contains(out, "14:00:06") {
		t.Error("expected entry time")
	}
}

func TestFormatJSONValid(t *testing.T) {
	path := writeTestLog(t)
	result, err := Replay(path, ReplayFilter{SessionID: "sess-aaa"})
	if err != nil {
		t.Fatal(err)
	}

	jsonStr, err := FormatJSON(result)
	if err != nil {
		t.Fatal(err)
	}

	// Should unmarshal back to a ReplayResult
	var parsed ReplayResult
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		t.Fatalf("JSON output not valid: %v", err)
	}
	if parsed.SessionID != "sess-aaa" {
		t.Errorf("expected session ID sess-aaa, got %s", parsed.SessionID)
	}
	if len(parsed.Entries) != 5 {
		t.Errorf("expected 5 entries in JSON, got %d", len(parsed.Entries))
	}
	if parsed.Summary.Total != 5 {
		t.Errorf("expected total 5 in JSON summary, got %d", parsed.Summary.Total)
	}
}

func TestFormatTimelineEmptyEntries(t *testing.T) {
	result := &ReplayResult{
		SessionID: "sess-empty",
	}

	out := FormatTimeline(result)
	if !strings.Contains(out, "No entries found") {
		t.Errorf("expected 'No entries found' message, got:\n%s", out)
	}
}

func TestFormatTimelineAllSessionsLabel(t *testing.T) {
	out := FormatTimeline(&ReplayResult{})
	if !strings.Contains(out, "Session: all sessions") {
		t.Errorf("expected all sessions label, got:\n%s", out)
	}
}
