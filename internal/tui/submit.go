package tui

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Mr-Dark-debug/mathtutor/internal/api"
	"github.com/Mr-Dark-debug/mathtutor/internal/logging/events"
	"github.com/Mr-Dark-debug/mathtutor/internal/upload"
)

// Backend performs the three service round-trips.
type Backend interface {
	UploadOCR(ctx context.Context, req api.UploadRequest) (*api.OCRResponse, error)
	SolveMath(ctx context.Context, req api.MathRequest) (*api.SolveResponse, error)
	AskDoubt(ctx context.Context, req api.DoubtRequest) (*api.DoubtResponse, error)
}

// Notice texts.
const (
	NoticeNoFile     = "Please select an image file first."
	NoticeNoQuestion = "Please enter a question first."
)

// ────────────────────────────────────────────────────────────
// Result messages
// ────────────────────────────────────────────────────────────

type ocrResultMsg struct {
	token   uint64
	resp    *api.OCRResponse
	err     error
	elapsed time.Duration
}

// ocrRejectedMsg reports a selection that could not be uploaded.
type ocrRejectedMsg struct {
	token uint64
	err   error
}

type solveResultMsg struct {
	token   uint64
	resp    *api.SolveResponse
	err     error
	elapsed time.Duration
}

type doubtResultMsg struct {
	token   uint64
	resp    *api.DoubtResponse
	err     error
	elapsed time.Duration
}

// ────────────────────────────────────────────────────────────
// Submitters
// ────────────────────────────────────────────────────────────

// submitOCR starts an upload of the selected image. The file is
// inspected and read inside the returned command, and a selection that
// cannot be sent comes back as ocrRejectedMsg.
func (m Model) submitOCR() (Model, tea.Cmd) {
	path := strings.TrimSpace(m.view.OCRFile.Value())
	if path == "" {
		return m.showNotice(NoticeNoFile), nil
	}

	token := m.tokens.next(kindOCR)
	m.lastLaTeX = ""
	m.view.OCRResult.Set(StyleLoading, false, Block{Body: "Reading " + filepath.Base(path) + "..."})
	events.Request.Submit(kindOCR.String(), token, map[string]interface{}{"file": path})

	backend, ctx := m.backend, m.ctx
	return m, func() tea.Msg {
		sel, err := upload.Inspect(path)
		if err != nil {
			return ocrRejectedMsg{token: token, err: err}
		}
		data, err := sel.ReadAll()
		if err != nil {
			return ocrRejectedMsg{token: token, err: err}
		}
		start := time.Now()
		resp, err := backend.UploadOCR(ctx, api.UploadRequest{
			Filename:    sel.Name,
			ContentType: sel.ContentType(),
			Body:        bytes.NewReader(data),
		})
		return ocrResultMsg{token: token, resp: resp, err: err, elapsed: time.Since(start)}
	}
}

// submitMathSolve sends the problem text. Blank input is ignored
// without any visible change.
func (m Model) submitMathSolve() (Model, tea.Cmd) {
	input := strings.TrimSpace(m.view.MathInput.Value())
	if input == "" {
		return m, nil
	}

	token := m.tokens.next(kindSolve)
	m.filter = m.filter.close(false)
	m.view.MathAnswer.Set(StyleLoading, false, Block{Body: "Solving..."})
	m.view.MathSteps.Set(StyleLoading, false, Block{Body: "Working out the steps..."})
	m.view.MathExplanation.Set(StyleLoading, false, Block{Body: "Preparing an explanation..."})
	events.Request.Submit(kindSolve.String(), token, map[string]interface{}{"input": input})

	backend, ctx := m.backend, m.ctx
	return m, func() tea.Msg {
		start := time.Now()
		resp, err := backend.SolveMath(ctx, api.MathRequest{Input: input})
		return solveResultMsg{token: token, resp: resp, err: err, elapsed: time.Since(start)}
	}
}

// submitDoubt sends a follow-up question. A blank step field is sent
// as api.NoStep.
func (m Model) submitDoubt() (Model, tea.Cmd) {
	question := strings.TrimSpace(m.view.DoubtQuestion.Value())
	if question == "" {
		return m.showNotice(NoticeNoQuestion), nil
	}
	step, err := api.ParseStep(m.view.DoubtStep.Value())
	if err != nil {
		return m.showNotice("Step must be a whole number, or left empty."), nil
	}

	token := m.tokens.next(kindDoubt)
	m.view.DoubtAnswer.Set(StyleLoading, false, Block{Body: "Thinking..."})
	events.Request.Submit(kindDoubt.String(), token, map[string]interface{}{
		"question": question,
		"step":     step,
	})

	backend, ctx := m.backend, m.ctx
	return m, func() tea.Msg {
		start := time.Now()
		resp, err := backend.AskDoubt(ctx, api.DoubtRequest{Question: question, Step: step})
		return doubtResultMsg{token: token, resp: resp, err: err, elapsed: time.Since(start)}
	}
}

// submitActive submits the visible panel.
func (m Model) submitActive() (Model, tea.Cmd) {
	p := m.view.ActivePanel()
	if p == nil {
		return m, nil
	}
	switch p.ID {
	case PanelOCR:
		return m.submitOCR()
	case PanelSolve:
		return m.submitMathSolve()
	case PanelDoubt:
		return m.submitDoubt()
	}
	return m, nil
}

// selectionNotice explains why a path cannot be uploaded.
func selectionNotice(err error) string {
	switch {
	case errors.Is(err, upload.ErrNoFile):
		return NoticeNoFile
	case errors.Is(err, upload.ErrNotRegular):
		return "That path is not a regular file. Please select an image file."
	case errors.Is(err, upload.ErrTooLarge):
		return "That image is larger than 10 MiB. Please select a smaller file."
	case errors.Is(err, upload.ErrNotImage):
		return "That file is not a supported image (PNG, JPEG, GIF, BMP, TIFF or WebP)."
	default:
		return "Could not open that file: " + err.Error()
	}
}
