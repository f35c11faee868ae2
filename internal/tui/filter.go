package tui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/Mr-Dark-debug/mathtutor/internal/logging/events"
)

// stepFilter narrows the displayed solution steps. It never changes
// region content.
type stepFilter struct {
	active bool
	query  string
	input  textinput.Model
}

func newStepFilter() stepFilter {
	ti := textinput.New()
	ti.Prompt = "filter: "
	ti.Placeholder = "type to match step labels and bodies"
	ti.CharLimit = 64
	return stepFilter{input: ti}
}

func (f stepFilter) open() (stepFilter, tea.Cmd) {
	f.active = true
	f.input.SetValue(f.query)
	f.input.CursorEnd()
	return f, f.input.Focus()
}

// close leaves filter mode. keep retains the query for display.
func (f stepFilter) close(keep bool) stepFilter {
	f.active = false
	f.input.Blur()
	if !keep {
		f.query = ""
		f.input.SetValue("")
	}
	return f
}

// handleFilterKey edits the filter query while filter mode is active.
func (m Model) handleFilterKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filter = m.filter.close(false)
		return m, nil
	case "enter":
		m.filter = m.filter.close(true)
		return m, nil
	}
	var cmd tea.Cmd
	m.filter.input, cmd = m.filter.input.Update(msg)
	if q := m.filter.input.Value(); q != m.filter.query {
		m.filter.query = q
		events.UI.Filter(m.view.MathSteps.ID, q, len(filterBlocks(m.view.MathSteps, q)))
	}
	return m, cmd
}

// filterBlocks returns the indices of the blocks in r that match query,
// in their original order. An empty query matches every block.
func filterBlocks(r *Region, query string) []int {
	query = strings.TrimSpace(query)
	all := make([]int, len(r.Blocks))
	for i := range all {
		all[i] = i
	}
	if query == "" || !r.Math {
		return all
	}

	rendered := r.Rendered()
	targets := make([]string, len(r.Blocks))
	for i, b := range r.Blocks {
		text := b.Body
		if i < len(rendered) {
			text = rendered[i]
		}
		targets[i] = b.Label + " " + text
	}

	ranks := fuzzy.RankFindNormalizedFold(query, targets)
	matched := make([]int, 0, len(ranks))
	for _, rank := range ranks {
		matched = append(matched, rank.OriginalIndex)
	}
	sort.Ints(matched)
	return matched
}
