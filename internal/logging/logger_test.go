package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stderr) })
	return &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("line is not JSON: %q (%v)", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestInfoAndWarn_WriteJSONLines(t *testing.T) {
	buf := capture(t)
	Info("battle started", Fields{"session": "s1", "party": 3})
	Warn("battle aborted", nil)

	lines := decodeLines(t, buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %s", len(lines), buf.String())
	}
	first := lines[0]
	if first["level"] != "info" || first["msg"] != "battle started" {
		t.Fatalf("unexpected entry %v", first)
	}
	if first["session"] != "s1" || first["party"] != float64(3) {
		t.Fatalf("fields missing from %v", first)
	}
	if ts, _ := first["ts"].(string); !strings.Contains(ts, "T") {
		t.Fatalf("expected ISO8601 timestamp, got %v", first["ts"])
	}
	if lines[1]["level"] != "warn" {
		t.Fatalf("expected warn level, got %v", lines[1])
	}
}

func TestError_AddsErrorText(t *testing.T) {
	buf := capture(t)
	Error("write back health", errors.New("disk full"), Fields{"instance": "h1"})

	entry := decodeLines(t, buf)[0]
	if entry["level"] != "error" || entry["error"] != "disk full" || entry["instance"] != "h1" {
		t.Fatalf("unexpected entry %v", entry)
	}
}
