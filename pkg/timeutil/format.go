// Package timeutil provides time formatting utilities for mathtutor.
//
// Request latencies are measured with time.Duration and shown in the
// status line next to the wall-clock time the result arrived.
package timeutil

import (
	"fmt"
	"time"
)

// Clock formats a time for the status line. Format: "HH:MM:SS"
func Clock(t time.Time) string {
	return t.Format("15:04:05")
}

// FormatLatency formats a request duration to a human-readable string.
// Examples: "450ms", "1.2s", "2m 15.3s"
func FormatLatency(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	seconds := float64(ms) / 1000.0
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}
	minutes := int(seconds / 60)
	remaining := seconds - float64(minutes*60)
	return fmt.Sprintf("%dm %.1fs", minutes, remaining)
}
