package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/mathtutor/internal/logging/events"
)

// ────────────────────────────────────────────────────────────
// Model
// ────────────────────────────────────────────────────────────

// Options tunes a new model.
type Options struct {
	// InitialFile pre-fills the image path on the Scan panel.
	InitialFile string
}

// Model is the root BubbleTea model for the tutor client.
// All view mutation happens in Update; network calls run inside
// commands and come back as result messages.
type Model struct {
	ctx     context.Context
	backend Backend
	view    *View

	tokens  requestTokens
	spinner spinner.Model
	filter  stepFilter

	// UI state
	width  int
	height int
	notice string

	// Results carried between panels
	lastLaTeX string
	stepCount int

	status string
	now    func() time.Time
}

// NewModel builds the view, activates the first tab and focuses its
// input.
func NewModel(ctx context.Context, backend Backend, ts Typesetter, opts Options) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	m := Model{
		ctx:     ctx,
		backend: backend,
		view:    NewView(ts),
		spinner: sp,
		filter:  newStepFilter(),
		status:  "Ready",
		now:     time.Now,
	}
	if opts.InitialFile != "" {
		m.view.OCRFile.SetValue(opts.InitialFile)
	}
	first := m.view.Tabs[0]
	m.view.ActivateTab(first, first.PanelID)
	m.focusInput(0)
	return m
}

// Bindings returns the view binding shared by the handlers.
func (m Model) Bindings() *View {
	return m.view
}

// Notice returns the blocking notice currently shown, if any.
func (m Model) Notice() string {
	return m.notice
}

// Status returns the status line text.
func (m Model) Status() string {
	return m.status
}

func (m Model) showNotice(text string) Model {
	m.notice = text
	events.UI.Notice(text)
	return m
}

// ────────────────────────────────────────────────────────────
// Init / Update
// ────────────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case spinner.TickMsg:
		if !m.view.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ocrResultMsg:
		return m.handleOCRResult(msg), nil

	case ocrRejectedMsg:
		return m.handleOCRRejected(msg), nil

	case solveResultMsg:
		return m.handleSolveResult(msg), nil

	case doubtResultMsg:
		return m.handleDoubtResult(msg), nil
	}

	return m.updateFocused(msg)
}

// handleKey routes keyboard input based on current mode.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		events.App.Stop("interrupt")
		return m, tea.Quit
	}

	// ── Blocking notice ──

	if m.notice != "" {
		switch key {
		case "enter", "esc":
			m.notice = ""
		}
		return m, nil
	}

	// ── Step filter ──

	if m.filter.active {
		return m.handleFilterKey(msg)
	}

	// ── Global ──

	switch key {
	case "tab":
		return m.cycleTab(1)
	case "shift+tab":
		return m.cycleTab(-1)
	case "f1", "alt+1":
		return m.jumpTab(0)
	case "f2", "alt+2":
		return m.jumpTab(1)
	case "f3", "alt+3":
		return m.jumpTab(2)
	case "enter":
		var cmd tea.Cmd
		m, cmd = m.submitActive()
		if cmd == nil {
			return m, nil
		}
		return m, tea.Batch(cmd, m.spinner.Tick)
	}

	// ── Panel-specific ──

	switch m.view.ActivePanel().ID {
	case PanelOCR:
		if key == "ctrl+s" {
			return m.sendToSolver()
		}
	case PanelSolve:
		if key == "ctrl+f" && m.view.MathSteps.Math {
			var cmd tea.Cmd
			m.filter, cmd = m.filter.open()
			return m, cmd
		}
	case PanelDoubt:
		switch key {
		case "up", "down":
			p := m.view.ActivePanel()
			return m, m.focusInput((p.focus + 1) % len(p.Inputs))
		}
	}

	return m.updateFocused(msg)
}

// handleMouse activates a tab when its header label is clicked.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if m.notice != "" || msg.Y != 0 {
		return m, nil
	}
	if tab := m.tabAt(msg.X); tab != nil {
		return m.activate(tab)
	}
	return m, nil
}

// sendToSolver copies the recognized expression into the Solve input
// and switches to the Solve tab.
func (m Model) sendToSolver() (tea.Model, tea.Cmd) {
	if m.lastLaTeX == "" {
		return m, nil
	}
	m.view.MathInput.SetValue(m.lastLaTeX)
	m.view.MathInput.CursorEnd()
	return m.activate(m.view.Tab("tab-solve"))
}

// updateFocused forwards msg to the filter while it is open, otherwise
// to the focused input of the visible panel.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.filter.active {
		var cmd tea.Cmd
		m.filter.input, cmd = m.filter.input.Update(msg)
		return m, cmd
	}
	p := m.view.ActivePanel()
	if p == nil {
		return m, nil
	}
	in := p.Focused()
	if in == nil {
		return m, nil
	}
	var cmd tea.Cmd
	in.Model, cmd = in.Model.Update(msg)
	return m, cmd
}

// ────────────────────────────────────────────────────────────
// View
// ────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	header := renderHeader(&m)
	footer := renderFooter(&m)
	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	var body string
	if m.notice != "" {
		body = renderNotice(&m, m.width, bodyHeight)
	} else {
		body = renderPanel(&m, m.width, bodyHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}
