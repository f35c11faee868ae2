package logging

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTraceWritesJSONWhenEnabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "trace.log")
	Configure(path)
	SetTraceEnabled(true)
	t.Cleanup(func() {
		SetTraceEnabled(false)
		Configure("")
	})

	Trace("request.submit", map[string]interface{}{"kind": "solve", "token": 1})

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("expected trace file: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		t.Fatalf("expected one trace line")
	}
	var entry struct {
		Event   string                 `json:"event"`
		Payload map[string]interface{} `json:"payload"`
	}
	if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
		t.Fatalf("trace line is not JSON: %v", err)
	}
	if entry.Event != "request.submit" {
		t.Fatalf("expected event request.submit, got %q", entry.Event)
	}
	if entry.Payload["kind"] != "solve" {
		t.Fatalf("expected kind solve, got %v", entry.Payload["kind"])
	}
}

func TestTraceDisabledWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.log")
	Configure(path)
	SetTraceEnabled(false)
	t.Cleanup(func() { Configure("") })

	Trace("ui.tab", nil)

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no log file, stat err=%v", err)
	}
}

func TestErrorAppendsLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error.log")
	Configure(path)
	t.Cleanup(func() { Configure("") })

	Error(errors.New("connection refused"))
	Error(nil)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !strings.Contains(string(data), "connection refused") {
		t.Fatalf("expected error text in log, got %q", string(data))
	}
	if strings.Count(string(data), "\n") != 1 {
		t.Fatalf("expected exactly one line, got %q", string(data))
	}
}

func TestConfigureSentryEmptyDSN(t *testing.T) {
	if err := ConfigureSentry("", "test", "dev"); err != nil {
		t.Fatalf("expected empty DSN to be accepted, got %v", err)
	}
}

func TestConfigureFallsBackToDefault(t *testing.T) {
	Configure("   ")
	if Path() != defaultLogFile {
		t.Fatalf("expected default log file, got %q", Path())
	}
}
