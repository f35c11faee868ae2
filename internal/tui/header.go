package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// tabSpan is the column range a tab label occupies in the header row.
type tabSpan struct {
	tab        *Tab
	start, end int
}

// headerLayout renders the header pieces and records where each tab
// label lands, so clicks can be mapped back to tabs:
//
//	MATH TUTOR │ Scan  Solve  Ask
func headerLayout(v *View) (string, []tabSpan) {
	brand := headerBrandStyle.Render("MATH TUTOR")
	sep := headerSepStyle.Render(" │ ")

	var sb strings.Builder
	sb.WriteString(brand)
	sb.WriteString(sep)

	// The bar's left padding shifts everything by one column.
	x := headerBarStyle.GetPaddingLeft() + lipgloss.Width(brand) + lipgloss.Width(sep)
	spans := make([]tabSpan, 0, len(v.Tabs))
	for i, t := range v.Tabs {
		if i > 0 {
			sb.WriteString(" ")
			x++
		}
		style := tabStyle
		if t.Active {
			style = tabActiveStyle
		}
		label := style.Render(t.Label)
		w := lipgloss.Width(label)
		spans = append(spans, tabSpan{tab: t, start: x, end: x + w})
		sb.WriteString(label)
		x += w
	}
	return sb.String(), spans
}

// tabAt returns the tab whose header label covers column x.
func (m Model) tabAt(x int) *Tab {
	_, spans := headerLayout(m.view)
	for _, s := range spans {
		if x >= s.start && x < s.end {
			return s.tab
		}
	}
	return nil
}

// renderHeader produces the top bar with the tab strip.
func renderHeader(m *Model) string {
	content, _ := headerLayout(m.view)
	return headerBarStyle.Width(m.width).Render(content)
}

// renderFooter produces the bottom status bar with keyboard hints.
func renderFooter(m *Model) string {
	var left, right string

	switch {
	case m.notice != "":
		right = renderHints([]hint{
			{"enter", "dismiss"},
		})
	case m.filter.active:
		left = filterBarStyle.Render(m.filter.input.View() + cursorStyle.Render(" "))
		right = renderHints([]hint{
			{"enter", "keep"},
			{"esc", "clear"},
		})
	default:
		if m.status != "" {
			left = statusStyle.Render(m.status)
		}
		right = renderHints(panelHints(m))
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return lipgloss.NewStyle().
		Background(colorBgSurface).
		Width(m.width).
		Render(bar)
}

func panelHints(m *Model) []hint {
	hints := []hint{{"tab", "switch"}}
	switch m.view.ActivePanel().ID {
	case PanelOCR:
		hints = append(hints, hint{"enter", "scan"})
		if m.lastLaTeX != "" {
			hints = append(hints, hint{"ctrl+s", "solve it"})
		}
	case PanelSolve:
		hints = append(hints, hint{"enter", "solve"})
		if m.view.MathSteps.Math {
			hints = append(hints, hint{"ctrl+f", "filter steps"})
		}
	case PanelDoubt:
		hints = append(hints, hint{"↑↓", "field"}, hint{"enter", "ask"})
	}
	return append(hints, hint{"ctrl+c", "quit"})
}

type hint struct {
	key  string
	desc string
}

func renderHints(hints []hint) string {
	var parts []string
	for _, h := range hints {
		parts = append(parts,
			hintKeyStyle.Render(h.key)+" "+hintDescStyle.Render(h.desc))
	}
	return strings.Join(parts, hintDescStyle.Render("  "))
}
