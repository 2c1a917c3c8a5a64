package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestWriteJSONLines(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(&bytes.Buffer{})

	fields := map[string]any{"model": "User"}
	Info("model_loaded", fields)

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "model_loaded" || entry["level"] != "info" || entry["model"] != "User" {
		t.Fatalf("unexpected entry: %#v", entry)
	}
	if _, ok := fields["ts"]; ok {
		t.Fatalf("caller fields must not be mutated: %#v", fields)
	}
}

func TestDebugIsGated(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(&bytes.Buffer{})

	SetDebug(false)
	Debug("sql", nil)
	if buf.Len() != 0 {
		t.Fatalf("debug line written while disabled: %q", buf.String())
	}

	SetDebug(true)
	defer SetDebug(false)
	Debug("sql", map[string]any{"sql": "SELECT 1"})
	if !strings.Contains(buf.String(), `"level":"debug"`) {
		t.Fatalf("expected debug line, got %q", buf.String())
	}
}
