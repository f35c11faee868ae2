package api

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/Mr-Dark-debug/mathtutor/pkg/jsonutil"
)

// Endpoint paths served by the tutor service.
const (
	PathUploadOCR = "/upload_ocr"
	PathSolveMath = "/solve_math"
	PathAskDoubt  = "/ask_doubt"
)

// Multipart field names.
const (
	FieldImage      = "image"
	FieldMathInput  = "math_input"
	FieldQuestion   = "question"
	FieldStepNumber = "step_number"
)

// NoStep is the step reference sent when a doubt is not tied to a step.
const NoStep = -1

// UploadRequest carries one image for OCR.
type UploadRequest struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// MathRequest carries a free-text expression to solve.
type MathRequest struct {
	Input string
}

// DoubtRequest carries a follow-up question and an optional step reference.
type DoubtRequest struct {
	Question string
	Step     int
}

// Failure holds the error fields every endpoint may return.
type Failure struct {
	Error   json.RawMessage `json:"error,omitempty"`
	Message jsonutil.Text   `json:"message,omitempty"`
	Hint    jsonutil.Text   `json:"hint,omitempty"`
}

// Failed reports whether the payload signals an application error.
func (f Failure) Failed() bool {
	return jsonutil.Truthy(f.Error)
}

// Reason returns what the server said went wrong. A string error
// leads, followed by the message on its own line when both are set.
func (f Failure) Reason() string {
	reason := strings.TrimSpace(jsonutil.StringValue(f.Error))
	if !f.Message.Empty() {
		message := strings.TrimSpace(f.Message.String())
		if reason == "" || reason == message {
			return message
		}
		return reason + "\n" + message
	}
	if reason != "" {
		return reason
	}
	return DefaultFailureText
}

// DefaultFailureText is shown when an error payload carries no message.
const DefaultFailureText = "The server could not process the request."

// OCRResponse is the /upload_ocr payload.
type OCRResponse struct {
	Failure
	LaTeX      jsonutil.Text `json:"latex"`
	Expression jsonutil.Text `json:"expression"`

	Raw json.RawMessage `json:"-"`
}

// Step is one entry of a solution walkthrough.
type Step struct {
	StepNumber jsonutil.Int  `json:"step_number"`
	Type       jsonutil.Text `json:"type"`
	Rule       jsonutil.Text `json:"rule"`
	Input      jsonutil.Text `json:"input"`
	Output     jsonutil.Text `json:"output"`
	Hint       jsonutil.Text `json:"explanation_hint"`
}

// Label names a step as "Step <n> · <type> (<rule>)". index is the
// step's position, used when the server omits step_number.
func (s Step) Label(index int) string {
	n := int(s.StepNumber)
	if n == 0 {
		n = index + 1
	}
	label := "Step " + strconv.Itoa(n)
	if !s.Type.Empty() {
		label += " · " + s.Type.String()
	}
	if !s.Rule.Empty() {
		label += " (" + s.Rule.String() + ")"
	}
	return label
}

// Steps is a solution walkthrough. A value that is not an array
// decodes to no steps, and entries that are not objects are skipped.
type Steps []Step

// UnmarshalJSON implements json.Unmarshaler.
func (s *Steps) UnmarshalJSON(b []byte) error {
	*s = nil
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return nil
	}
	for _, item := range items {
		var step Step
		if err := json.Unmarshal(item, &step); err != nil {
			continue
		}
		*s = append(*s, step)
	}
	return nil
}

// SolveResponse is the /solve_math payload.
type SolveResponse struct {
	Failure
	FinalAnswer jsonutil.Text `json:"final_answer"`
	Steps       Steps         `json:"steps"`
	Explanation jsonutil.Text `json:"explanation"`
	Expression  jsonutil.Text `json:"expression"`
	ProblemType jsonutil.Text `json:"problem_type"`

	Raw json.RawMessage `json:"-"`
}

// DoubtResponse is the /ask_doubt payload.
type DoubtResponse struct {
	Failure
	Answer jsonutil.Text `json:"answer"`

	Raw json.RawMessage `json:"-"`
}
