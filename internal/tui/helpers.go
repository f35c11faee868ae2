package tui

import "strings"

// ────────────────────────────────────────────────────────────
// Layout helpers
// ────────────────────────────────────────────────────────────

// allBlocks returns every block index of r in order.
func allBlocks(r *Region) []int {
	idx := make([]int, len(r.Blocks))
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// clipLines keeps at most n lines of s, marking the cut.
func clipLines(s string, n int) string {
	if n <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	lines = lines[:n]
	lines[n-1] = hintDescStyle.Render("…")
	return strings.Join(lines, "\n")
}

// maxInt returns the larger of a and b.
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// minInt returns the smaller of a and b.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
