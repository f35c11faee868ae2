package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
)

// Panel ids.
const (
	PanelOCR   = "ocr"
	PanelSolve = "solve"
	PanelDoubt = "doubt"
)

// Region ids.
const (
	RegionOCRResult       = "ocr_result"
	RegionMathAnswer      = "math_answer"
	RegionMathSteps       = "math_steps"
	RegionMathExplanation = "math_explanation"
	RegionDoubtAnswer     = "doubt_answer"
)

// Input ids.
const (
	InputOCRFile       = "ocr_file"
	InputMathInput     = "math_input"
	InputDoubtQuestion = "doubt_question"
	InputDoubtStep     = "doubt_step"
)

// Typesetter renders math markup inside region bodies.
type Typesetter interface {
	Typeset(markup string) string
	Pass()
}

// ────────────────────────────────────────────────────────────
// Regions
// ────────────────────────────────────────────────────────────

// RegionStyle selects how a region's content is drawn.
type RegionStyle int

const (
	StyleNormal RegionStyle = iota
	StyleLoading
	StyleAlert
	StylePlaceholder
)

func (s RegionStyle) String() string {
	switch s {
	case StyleLoading:
		return "loading"
	case StyleAlert:
		return "alert"
	case StylePlaceholder:
		return "placeholder"
	default:
		return "normal"
	}
}

// Block is one labelled piece of region content.
type Block struct {
	Label string
	Body  string
}

// Region is a result container. Only regions flagged as math are
// passed through the typesetter, so error text is always shown as-is.
type Region struct {
	ID    string
	Title string

	Blocks []Block
	Style  RegionStyle
	Math   bool

	rendered []string
}

// Set replaces the region content.
func (r *Region) Set(style RegionStyle, math bool, blocks ...Block) {
	r.Style = style
	r.Math = math
	r.Blocks = append([]Block(nil), blocks...)
	r.rendered = make([]string, len(r.Blocks))
	for i, b := range r.Blocks {
		r.rendered[i] = b.Body
	}
}

// Clear empties the region.
func (r *Region) Clear() {
	r.Style = StyleNormal
	r.Math = false
	r.Blocks = nil
	r.rendered = nil
}

// Empty reports whether the region holds no content.
func (r *Region) Empty() bool {
	return len(r.Blocks) == 0
}

// Content returns the raw markup of every block, one per line.
func (r *Region) Content() string {
	bodies := make([]string, len(r.Blocks))
	for i, b := range r.Blocks {
		bodies[i] = b.Body
	}
	return strings.Join(bodies, "\n")
}

// Rendered returns the display text of each block after the last
// typeset pass.
func (r *Region) Rendered() []string {
	return r.rendered
}

func (r *Region) typeset(ts Typesetter) {
	if !r.Math {
		return
	}
	for i, b := range r.Blocks {
		r.rendered[i] = ts.Typeset(b.Body)
	}
}

// ────────────────────────────────────────────────────────────
// Inputs, tabs and panels
// ────────────────────────────────────────────────────────────

// Input is a named single-line text field.
type Input struct {
	ID    string
	Label string
	textinput.Model
}

func newInput(id, label, placeholder string) *Input {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = 1024
	return &Input{ID: id, Label: label, Model: ti}
}

// Tab is the activation control of one panel.
type Tab struct {
	ID      string
	PanelID string
	Label   string
	Active  bool
}

// Panel is one workflow screen.
type Panel struct {
	ID      string
	Title   string
	Visible bool
	Inputs  []*Input
	Regions []*Region

	focus int
}

// Focused returns the input that receives typing.
func (p *Panel) Focused() *Input {
	if len(p.Inputs) == 0 {
		return nil
	}
	return p.Inputs[p.focus]
}

// ────────────────────────────────────────────────────────────
// View binding
// ────────────────────────────────────────────────────────────

// View binds every tab, panel, input and region by id. It is built
// once and shared by all handlers.
type View struct {
	Tabs   []*Tab
	Panels []*Panel

	OCRFile       *Input
	MathInput     *Input
	DoubtQuestion *Input
	DoubtStep     *Input

	OCRResult       *Region
	MathAnswer      *Region
	MathSteps       *Region
	MathExplanation *Region
	DoubtAnswer     *Region

	typesetter Typesetter
}

// NewView builds the binding with every panel hidden.
func NewView(ts Typesetter) *View {
	v := &View{
		OCRFile:       newInput(InputOCRFile, "Image", "path to a photo of the problem"),
		MathInput:     newInput(InputMathInput, "Problem", "e.g. 2x + 3 = 7"),
		DoubtQuestion: newInput(InputDoubtQuestion, "Question", "what is unclear?"),
		DoubtStep:     newInput(InputDoubtStep, "Step", "optional step number"),

		OCRResult:       &Region{ID: RegionOCRResult, Title: "Recognized"},
		MathAnswer:      &Region{ID: RegionMathAnswer, Title: "Answer"},
		MathSteps:       &Region{ID: RegionMathSteps, Title: "Steps"},
		MathExplanation: &Region{ID: RegionMathExplanation, Title: "Explanation"},
		DoubtAnswer:     &Region{ID: RegionDoubtAnswer, Title: "Answer"},

		typesetter: ts,
	}
	v.DoubtStep.CharLimit = 6

	v.Panels = []*Panel{
		{
			ID:      PanelOCR,
			Title:   "Scan a problem",
			Inputs:  []*Input{v.OCRFile},
			Regions: []*Region{v.OCRResult},
		},
		{
			ID:      PanelSolve,
			Title:   "Solve",
			Inputs:  []*Input{v.MathInput},
			Regions: []*Region{v.MathAnswer, v.MathSteps, v.MathExplanation},
		},
		{
			ID:      PanelDoubt,
			Title:   "Ask a doubt",
			Inputs:  []*Input{v.DoubtQuestion, v.DoubtStep},
			Regions: []*Region{v.DoubtAnswer},
		},
	}
	v.Tabs = []*Tab{
		{ID: "tab-ocr", PanelID: PanelOCR, Label: "Scan"},
		{ID: "tab-solve", PanelID: PanelSolve, Label: "Solve"},
		{ID: "tab-doubt", PanelID: PanelDoubt, Label: "Ask"},
	}
	return v
}

// Panel returns the panel with the given id, or nil.
func (v *View) Panel(id string) *Panel {
	for _, p := range v.Panels {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Tab returns the tab control with the given id, or nil.
func (v *View) Tab(id string) *Tab {
	for _, t := range v.Tabs {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Region returns the region with the given id, or nil.
func (v *View) Region(id string) *Region {
	for _, r := range v.regions() {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// Input returns the input with the given id, or nil.
func (v *View) Input(id string) *Input {
	for _, p := range v.Panels {
		for _, in := range p.Inputs {
			if in.ID == id {
				return in
			}
		}
	}
	return nil
}

// ActivePanel returns the visible panel.
func (v *View) ActivePanel() *Panel {
	for _, p := range v.Panels {
		if p.Visible {
			return p
		}
	}
	return nil
}

// ActiveTab returns the tab carrying the active marker.
func (v *View) ActiveTab() *Tab {
	for _, t := range v.Tabs {
		if t.Active {
			return t
		}
	}
	return nil
}

// Retypeset runs one typeset pass over every math region.
func (v *View) Retypeset() {
	if v.typesetter == nil {
		return
	}
	for _, r := range v.regions() {
		r.typeset(v.typesetter)
	}
	v.typesetter.Pass()
}

func (v *View) regions() []*Region {
	return []*Region{v.OCRResult, v.MathAnswer, v.MathSteps, v.MathExplanation, v.DoubtAnswer}
}

// loading reports whether any region shows a loading indicator.
func (v *View) loading() bool {
	for _, r := range v.regions() {
		if r.Style == StyleLoading {
			return true
		}
	}
	return false
}
