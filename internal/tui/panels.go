package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderPanel draws the visible panel: inputs first, then its regions.
func renderPanel(m *Model, width, height int) string {
	p := m.view.ActivePanel()
	if p == nil {
		return ""
	}
	inner := maxInt(width-2, 10)

	var lines []string
	lines = append(lines, panelTitleStyle.Render(p.Title))
	for i, in := range p.Inputs {
		label := inputLabelStyle
		if i == p.focus {
			label = inputLabelFocusStyle
		}
		in.Width = maxInt(inner-lipgloss.Width(label.Render(""))-1, 10)
		lines = append(lines, label.Render(in.Label)+" "+in.View())
	}
	if h := panelNote(m, p); h != "" {
		lines = append(lines, panelHintStyle.Render(h))
	}

	for _, r := range p.Regions {
		if r.Empty() {
			continue
		}
		lines = append(lines, "")
		lines = append(lines, renderRegion(m, r, inner))
	}

	content := strings.Join(lines, "\n")
	content = clipLines(content, height-1)
	return panelStyle.Width(width).Height(height - 1).Render(content)
}

// panelNote is a one-line context hint under a panel's inputs.
func panelNote(m *Model, p *Panel) string {
	switch p.ID {
	case PanelOCR:
		if m.lastLaTeX != "" {
			return "ctrl+s sends the recognized expression to Solve."
		}
	case PanelDoubt:
		if m.stepCount > 0 {
			return fmt.Sprintf("The last solution has %d steps. Leave Step empty for a general question.", m.stepCount)
		}
		return "Leave Step empty for a general question."
	}
	return ""
}

// renderRegion draws a region title and its blocks in the region style.
func renderRegion(m *Model, r *Region, width int) string {
	var lines []string
	lines = append(lines, regionTitleStyle.Render(r.Title)+" "+
		regionDividerStyle.Render(strings.Repeat("─", maxInt(width-lipgloss.Width(r.Title)-1, 0))))

	body := bodyStyle(r.Style).Width(width)
	rendered := r.Rendered()
	shown := allBlocks(r)
	if r == m.view.MathSteps && m.filter.query != "" {
		shown = filterBlocks(r, m.filter.query)
		lines = append(lines, filterMatchStyle.Render(
			fmt.Sprintf("%d of %d steps match %q", len(shown), len(r.Blocks), m.filter.query)))
	}

	for _, i := range shown {
		b := r.Blocks[i]
		text := b.Body
		if i < len(rendered) {
			text = rendered[i]
		}
		if r.Style == StyleLoading {
			text = m.spinner.View() + " " + text
		}
		if b.Label != "" {
			lines = append(lines, blockLabelStyle.Render(b.Label))
		}
		lines = append(lines, body.Render(text))
	}
	return strings.Join(lines, "\n")
}

func bodyStyle(s RegionStyle) lipgloss.Style {
	switch s {
	case StyleLoading:
		return regionLoadingStyle
	case StyleAlert:
		return regionAlertStyle
	case StylePlaceholder:
		return regionPlaceholderStyle
	default:
		return regionTextStyle
	}
}

// renderNotice centers the blocking notice in the body area.
func renderNotice(m *Model, width, height int) string {
	box := noticeBoxStyle.Width(minInt(maxInt(width/2, 30), width-4)).Render(
		noticeTitleStyle.Render("Notice") + "\n\n" + m.notice + "\n\n" +
			hintDescStyle.Render("press enter to continue"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
