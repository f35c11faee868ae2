package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Mr-Dark-debug/mathtutor/internal/logging/events"
)

// ActivateTab hides every panel, clears the active marker from every
// tab, then shows panelID and marks control. An unknown panel or a nil
// control leaves the view untouched and returns false.
func (v *View) ActivateTab(control *Tab, panelID string) bool {
	target := v.Panel(panelID)
	if target == nil || control == nil {
		return false
	}
	for _, p := range v.Panels {
		p.Visible = false
	}
	for _, t := range v.Tabs {
		t.Active = false
	}
	target.Visible = true
	control.Active = true
	return true
}

// tabIndex returns the position of the active tab, or 0.
func (v *View) tabIndex() int {
	for i, t := range v.Tabs {
		if t.Active {
			return i
		}
	}
	return 0
}

// activate switches to tab and moves keyboard focus to its panel.
func (m Model) activate(tab *Tab) (Model, tea.Cmd) {
	if tab == nil || !m.view.ActivateTab(tab, tab.PanelID) {
		return m, nil
	}
	events.UI.Tab(tab.ID, tab.PanelID)
	m.filter = m.filter.close(false)
	return m, m.focusInput(0)
}

// cycleTab moves delta tabs forward, wrapping around.
func (m Model) cycleTab(delta int) (Model, tea.Cmd) {
	n := len(m.view.Tabs)
	if n == 0 {
		return m, nil
	}
	next := ((m.view.tabIndex()+delta)%n + n) % n
	return m.activate(m.view.Tabs[next])
}

// jumpTab activates the tab at index i when it exists.
func (m Model) jumpTab(i int) (Model, tea.Cmd) {
	if i < 0 || i >= len(m.view.Tabs) {
		return m, nil
	}
	return m.activate(m.view.Tabs[i])
}

// focusInput focuses input i of the visible panel and blurs the rest.
func (m Model) focusInput(i int) tea.Cmd {
	var cmd tea.Cmd
	for _, p := range m.view.Panels {
		for j, in := range p.Inputs {
			if p.Visible && j == i {
				p.focus = j
				cmd = in.Focus()
				continue
			}
			in.Blur()
		}
	}
	return cmd
}
