// Package logging writes mathtutor diagnostics to a log file.
//
// The terminal belongs to the TUI, so nothing is printed to stdout or
// stderr while it runs. Errors are appended as plain lines, trace
// events as JSON lines, and errors are optionally forwarded to Sentry.
package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
)

const defaultLogFile = "mathtutor.log"

var (
	mu            sync.Mutex
	traceEnabled  bool
	sentryEnabled bool
	logPath       = defaultLogFile
)

// Error writes errors to the shared log file and reports them to Sentry
// when a DSN has been configured.
func Error(err error) {
	if err == nil {
		return
	}

	mu.Lock()
	path := logPath
	report := sentryEnabled
	mu.Unlock()

	if report {
		sentry.CaptureException(err)
	}

	f, ferr := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if ferr != nil {
		fmt.Fprintf(os.Stderr, "logging failed: %v\n", ferr)
		return
	}
	defer f.Close()

	logger := log.New(f, "", log.LstdFlags)
	logger.Println(err)
}

// SetTraceEnabled toggles emission of structured trace entries.
func SetTraceEnabled(enabled bool) {
	mu.Lock()
	traceEnabled = enabled
	mu.Unlock()
}

// TraceEnabled reports whether trace entries are being written.
func TraceEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return traceEnabled
}

// Trace appends a structured JSON entry to the shared log when tracing is enabled.
func Trace(event string, payload interface{}) {
	mu.Lock()
	enabled := traceEnabled
	path := logPath
	mu.Unlock()
	if !enabled {
		return
	}

	entry := struct {
		Time    time.Time   `json:"time"`
		Event   string      `json:"event"`
		Payload interface{} `json:"payload,omitempty"`
	}{
		Time:    time.Now().UTC(),
		Event:   event,
		Payload: payload,
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "trace logging failed: %v\n", err)
		return
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	if err := enc.Encode(entry); err != nil {
		fmt.Fprintf(os.Stderr, "trace encoding failed: %v\n", err)
	}
}

// Configure sets the log destination. Empty values fall back to the default
// path. Directories are created automatically when missing.
func Configure(path string) {
	mu.Lock()
	defer mu.Unlock()
	if strings.TrimSpace(path) == "" {
		logPath = defaultLogFile
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "unable to create log directory: %v\n", err)
		logPath = defaultLogFile
		return
	}
	logPath = path
}

// Path returns the current log destination.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

// ConfigureSentry initialises error reporting. An empty DSN leaves
// reporting disabled and is not an error.
func ConfigureSentry(dsn, environment, release string) error {
	if strings.TrimSpace(dsn) == "" {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	})
	if err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	mu.Lock()
	sentryEnabled = true
	mu.Unlock()
	return nil
}

// Flush waits up to timeout for queued Sentry events to be delivered.
func Flush(timeout time.Duration) {
	mu.Lock()
	enabled := sentryEnabled
	mu.Unlock()
	if enabled {
		sentry.Flush(timeout)
	}
}
