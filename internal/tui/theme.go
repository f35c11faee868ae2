package tui

import "github.com/charmbracelet/lipgloss"

// ────────────────────────────────────────────────────────────
// Color Palette
// ────────────────────────────────────────────────────────────
//
// All colors are defined here. No ad-hoc color literals anywhere.

var (
	// Base
	colorBg        = lipgloss.Color("#0d1117")
	colorBgPanel   = lipgloss.Color("#161b22")
	colorBgSurface = lipgloss.Color("#1c2128")

	// Text
	colorText      = lipgloss.Color("#e6edf3")
	colorTextDim   = lipgloss.Color("#8b949e")
	colorTextMuted = lipgloss.Color("#484f58")

	// Accents
	colorBlue   = lipgloss.Color("#58a6ff")
	colorGreen  = lipgloss.Color("#3fb950")
	colorRed    = lipgloss.Color("#f85149")
	colorYellow = lipgloss.Color("#d29922")
	colorPurple = lipgloss.Color("#bc8cff")

	// Structural
	colorDivider   = lipgloss.Color("#30363d")
	colorHighlight = lipgloss.Color("#1f6feb")
)

// ────────────────────────────────────────────────────────────
// Component Styles
// ────────────────────────────────────────────────────────────

// Header bar
var (
	headerBarStyle = lipgloss.NewStyle().
			Background(colorBgSurface).
			Foreground(colorText).
			Padding(0, 1)

	headerBrandStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorBlue)

	headerSepStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	tabStyle = lipgloss.NewStyle().
			Foreground(colorTextDim).
			Padding(0, 1)

	tabActiveStyle = lipgloss.NewStyle().
			Background(colorHighlight).
			Foreground(colorText).
			Bold(true).
			Padding(0, 1)
)

// Panel chrome
var (
	panelStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.Border{
			Top:    "─",
			Bottom: "",
			Left:   "",
			Right:  "",
		}).
		BorderForeground(colorBlue)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	inputLabelStyle = lipgloss.NewStyle().
			Foreground(colorTextDim).
			Width(10)

	inputLabelFocusStyle = lipgloss.NewStyle().
				Foreground(colorBlue).
				Bold(true).
				Width(10)

	panelHintStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted).
			Italic(true)
)

// Result regions
var (
	regionTitleStyle = lipgloss.NewStyle().
				Foreground(colorPurple).
				Bold(true)

	blockLabelStyle = lipgloss.NewStyle().
			Foreground(colorBlue)

	regionTextStyle = lipgloss.NewStyle().
			Foreground(colorText)

	regionLoadingStyle = lipgloss.NewStyle().
				Foreground(colorYellow)

	regionAlertStyle = lipgloss.NewStyle().
				Foreground(colorRed).
				Bold(true)

	regionPlaceholderStyle = lipgloss.NewStyle().
				Foreground(colorTextMuted).
				Italic(true)

	regionDividerStyle = lipgloss.NewStyle().
				Foreground(colorDivider)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	filterBarStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorBgSurface).
			Padding(0, 1)

	filterMatchStyle = lipgloss.NewStyle().
				Foreground(colorGreen)
)

// Notice modal
var (
	noticeBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorYellow).
			Background(colorBgPanel).
			Foreground(colorText).
			Padding(1, 3)

	noticeTitleStyle = lipgloss.NewStyle().
				Foreground(colorYellow).
				Bold(true)
)

// Footer / status bar
var (
	statusStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorBgSurface).
			Padding(0, 1)

	hintKeyStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	hintDescStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	cursorStyle = lipgloss.NewStyle().
			Background(colorBlue).
			Foreground(colorBg)
)
