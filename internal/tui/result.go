package tui

import (
	"fmt"
	"time"

	"github.com/Mr-Dark-debug/mathtutor/internal/api"
	"github.com/Mr-Dark-debug/mathtutor/internal/logging"
	"github.com/Mr-Dark-debug/mathtutor/internal/logging/events"
	"github.com/Mr-Dark-debug/mathtutor/internal/typeset"
	"github.com/Mr-Dark-debug/mathtutor/pkg/jsonutil"
	"github.com/Mr-Dark-debug/mathtutor/pkg/timeutil"
)

// Fixed region texts.
const (
	ConnectionFailureText = "Could not reach the server. Check your connection and try again."
	NoStepsText           = "No steps available."
	NoExplanationText     = "No explanation available."
	NoLaTeXText           = "No expression was recognized in the image."
	NoAnswerText          = "No answer was returned."
)

// regionsFor returns the primary region of a submitter and the
// regions that are cleared when it fails.
func (v *View) regionsFor(kind requestKind) (*Region, []*Region) {
	switch kind {
	case kindOCR:
		return v.OCRResult, nil
	case kindSolve:
		return v.MathAnswer, []*Region{v.MathSteps, v.MathExplanation}
	default:
		return v.DoubtAnswer, nil
	}
}

// accept reports whether a result belongs to the newest submission of
// its submitter. Older results are traced and dropped.
func (m Model) accept(kind requestKind, token uint64) bool {
	if m.tokens.current(kind, token) {
		return true
	}
	events.Request.Stale(kind.String(), token, m.tokens.latest[kind])
	return false
}

func (m Model) handleOCRResult(msg ocrResultMsg) Model {
	if !m.accept(kindOCR, msg.token) {
		return m
	}
	if msg.err != nil {
		return m.transportFailure(kindOCR, msg.token, msg.err, msg.elapsed)
	}
	if msg.resp.Failed() {
		return m.applicationFailure(kindOCR, msg.token, msg.resp.Failure, msg.elapsed, msg.resp.Raw)
	}

	latex := msg.resp.LaTeX.String()
	if latex == "" {
		m.view.OCRResult.Set(StylePlaceholder, false, Block{Body: NoLaTeXText})
	} else {
		m.view.OCRResult.Set(StyleNormal, true, Block{Body: typeset.Wrap(latex)})
		m.view.Retypeset()
	}
	m.lastLaTeX = latex
	return m.finish(kindOCR, msg.token, "ok", msg.elapsed, msg.resp.Raw)
}

// handleOCRRejected clears the loading indicator and explains why the
// selection was not sent.
func (m Model) handleOCRRejected(msg ocrRejectedMsg) Model {
	if !m.accept(kindOCR, msg.token) {
		return m
	}
	m.view.OCRResult.Clear()
	events.Request.Result(kindOCR.String(), msg.token, "rejected", 0, msg.err.Error())
	return m.showNotice(selectionNotice(msg.err))
}

func (m Model) handleSolveResult(msg solveResultMsg) Model {
	if !m.accept(kindSolve, msg.token) {
		return m
	}
	if msg.err != nil {
		return m.transportFailure(kindSolve, msg.token, msg.err, msg.elapsed)
	}
	resp := msg.resp
	if resp.Failed() {
		m.stepCount = 0
		return m.applicationFailure(kindSolve, msg.token, resp.Failure, msg.elapsed, resp.Raw)
	}

	answer := Block{Label: resp.ProblemType.String(), Body: typeset.Wrap(resp.FinalAnswer.String())}
	m.view.MathAnswer.Set(StyleNormal, true, answer)

	if len(resp.Steps) > 0 {
		blocks := make([]Block, 0, len(resp.Steps))
		for i, s := range resp.Steps {
			blocks = append(blocks, stepBlock(i, s))
		}
		m.view.MathSteps.Set(StyleNormal, true, blocks...)
	} else {
		m.view.MathSteps.Set(StylePlaceholder, false, Block{Body: NoStepsText})
	}

	if explanation := typeset.Prose(resp.Explanation.String()); explanation != "" {
		m.view.MathExplanation.Set(StyleNormal, true, Block{Body: explanation})
	} else {
		m.view.MathExplanation.Set(StylePlaceholder, false, Block{Body: NoExplanationText})
	}

	m.view.Retypeset()
	m.stepCount = len(resp.Steps)
	m.filter = m.filter.close(false)
	return m.finish(kindSolve, msg.token, "ok", msg.elapsed, resp.Raw)
}

func (m Model) handleDoubtResult(msg doubtResultMsg) Model {
	if !m.accept(kindDoubt, msg.token) {
		return m
	}
	if msg.err != nil {
		return m.transportFailure(kindDoubt, msg.token, msg.err, msg.elapsed)
	}
	if msg.resp.Failed() {
		return m.applicationFailure(kindDoubt, msg.token, msg.resp.Failure, msg.elapsed, msg.resp.Raw)
	}

	if answer := typeset.Prose(msg.resp.Answer.String()); answer != "" {
		m.view.DoubtAnswer.Set(StyleNormal, true, Block{Body: answer})
		m.view.Retypeset()
	} else {
		m.view.DoubtAnswer.Set(StylePlaceholder, false, Block{Body: NoAnswerText})
	}
	return m.finish(kindDoubt, msg.token, "ok", msg.elapsed, msg.resp.Raw)
}

// stepBlock renders one solution step with its output as math.
func stepBlock(i int, s api.Step) Block {
	body := typeset.Wrap(s.Output.String())
	if !s.Hint.Empty() {
		body += "\n" + s.Hint.String()
	}
	return Block{Label: s.Label(i), Body: body}
}

// applicationFailure shows the server's reason in the primary region
// and clears the others. Nothing is typeset.
func (m Model) applicationFailure(kind requestKind, token uint64, f api.Failure, elapsed time.Duration, raw []byte) Model {
	primary, secondary := m.view.regionsFor(kind)
	blocks := []Block{{Body: f.Reason()}}
	if !f.Hint.Empty() {
		blocks = append(blocks, Block{Body: "Hint: " + f.Hint.String()})
	}
	primary.Set(StyleAlert, false, blocks...)
	for _, r := range secondary {
		r.Clear()
	}
	if kind == kindOCR {
		m.lastLaTeX = ""
	}
	return m.finish(kind, token, "error", elapsed, raw)
}

// transportFailure renders the same connection message for every
// submitter and records the underlying error.
func (m Model) transportFailure(kind requestKind, token uint64, err error, elapsed time.Duration) Model {
	logging.Error(fmt.Errorf("%s request failed: %w", kind, err))
	events.Request.Failure(kind.String(), token, err)

	primary, secondary := m.view.regionsFor(kind)
	primary.Set(StyleAlert, false, Block{Body: ConnectionFailureText})
	for _, r := range secondary {
		r.Clear()
	}
	switch kind {
	case kindOCR:
		m.lastLaTeX = ""
	case kindSolve:
		m.stepCount = 0
	}
	m.status = fmt.Sprintf("%s  %s failed after %s", timeutil.Clock(m.now()), kind, timeutil.FormatLatency(elapsed))
	return m
}

func (m Model) finish(kind requestKind, token uint64, outcome string, elapsed time.Duration, raw []byte) Model {
	events.Request.Result(kind.String(), token, outcome, elapsed.Milliseconds(), jsonutil.TruncateString(string(raw), 512))
	m.status = fmt.Sprintf("%s  %s %s in %s", timeutil.Clock(m.now()), kind, outcome, timeutil.FormatLatency(elapsed))
	return m
}
