package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.RateLimit = 0
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestUploadOCRSendsImageField(t *testing.T) {
	var gotPath, gotFilename, gotBody, gotType, gotRequestID string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRequestID = r.Header.Get("X-Request-ID")
		file, header, err := r.FormFile(FieldImage)
		if err != nil {
			t.Errorf("expected image field: %v", err)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		gotFilename = header.Filename
		gotBody = string(data)
		gotType = header.Header.Get("Content-Type")
		w.Write([]byte(`{"expression":"x^2+1","latex":"x^2+1"}`))
	})

	resp, err := client.UploadOCR(context.Background(), UploadRequest{
		Filename:    "photo.png",
		ContentType: "image/png",
		Body:        strings.NewReader("pngbytes"),
	})
	if err != nil {
		t.Fatalf("UploadOCR failed: %v", err)
	}
	if gotPath != PathUploadOCR {
		t.Errorf("expected path %s, got %s", PathUploadOCR, gotPath)
	}
	if gotFilename != "photo.png" {
		t.Errorf("expected filename photo.png, got %q", gotFilename)
	}
	if gotBody != "pngbytes" {
		t.Errorf("expected file body to round-trip, got %q", gotBody)
	}
	if gotType != "image/png" {
		t.Errorf("expected image/png part, got %q", gotType)
	}
	if gotRequestID == "" {
		t.Errorf("expected X-Request-ID header")
	}
	if resp.Failed() {
		t.Fatalf("expected success payload")
	}
	if resp.LaTeX != "x^2+1" {
		t.Errorf("expected latex x^2+1, got %q", resp.LaTeX)
	}
	if !strings.Contains(string(resp.Raw), "expression") {
		t.Errorf("expected raw payload to be kept, got %s", resp.Raw)
	}
}

func TestUploadOCRWithoutBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected")
	})
	_, err := client.UploadOCR(context.Background(), UploadRequest{Filename: "a.png"})
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestSolveMathDecodesSteps(t *testing.T) {
	var gotInput string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotInput = r.FormValue(FieldMathInput)
		w.Write([]byte(`{
			"final_answer": "x = 2",
			"problem_type": "equation",
			"steps": [
				{"step_number": 1, "type": "isolate", "output": "2x = 4"},
				{"step_number": 2, "type": "divide", "rule": "division", "output": 2}
			],
			"explanation": "Divide both sides by **2**."
		}`))
	})

	resp, err := client.SolveMath(context.Background(), MathRequest{Input: "2*x - 3 = 1"})
	if err != nil {
		t.Fatalf("SolveMath failed: %v", err)
	}
	if gotInput != "2*x - 3 = 1" {
		t.Errorf("expected math_input to be sent, got %q", gotInput)
	}
	if len(resp.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(resp.Steps))
	}
	if resp.Steps[1].StepNumber != 2 || resp.Steps[1].Output != "2" || resp.Steps[1].Rule != "division" {
		t.Errorf("unexpected second step: %+v", resp.Steps[1])
	}
	if resp.FinalAnswer != "x = 2" {
		t.Errorf("expected final answer, got %q", resp.FinalAnswer)
	}
	if resp.ProblemType != "equation" {
		t.Errorf("expected problem type, got %q", resp.ProblemType)
	}
}

func TestSolveMathErrorPayloadIsData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"Invalid or unreadable input","message":"Provide a valid math expression.","hint":"Example: 2*x = 4"}`))
	})
	resp, err := client.SolveMath(context.Background(), MathRequest{Input: "??"})
	if err != nil {
		t.Fatalf("expected payload, got error %v", err)
	}
	if !resp.Failed() {
		t.Fatalf("expected failure payload")
	}
	if resp.Reason() != "Invalid or unreadable input\nProvide a valid math expression." {
		t.Errorf("expected error then message, got %q", resp.Reason())
	}
	if resp.Hint != "Example: 2*x = 4" {
		t.Errorf("expected hint, got %q", resp.Hint)
	}
}

func TestSolveMathOddlyTypedFieldsAreData(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantSteps []string
		wantFail  string
	}{
		{
			name:      "quoted step number",
			body:      `{"final_answer":"1","steps":[{"step_number":"1","type":"simplify","output":"1"}]}`,
			wantSteps: []string{"Step 1 · simplify"},
		},
		{
			name:      "float step numbers",
			body:      `{"final_answer":"1","steps":[{"step_number":1.0,"output":"a"},{"step_number":2.0,"output":"b"}]}`,
			wantSteps: []string{"Step 1", "Step 2"},
		},
		{
			name:     "steps is not an array",
			body:     `{"error":"Invalid input","message":"Try again","steps":"none"}`,
			wantFail: "Invalid input\nTry again",
		},
		{
			name:      "non-object step entries are skipped",
			body:      `{"final_answer":"x","steps":["oops",{"type":"expand","output":"x"},7]}`,
			wantSteps: []string{"Step 1 · expand"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			})
			resp, err := client.SolveMath(context.Background(), MathRequest{Input: "x"})
			if err != nil {
				t.Fatalf("expected payload, got error %v (transport=%v)", err, IsTransport(err))
			}
			if tc.wantFail != "" {
				if !resp.Failed() || resp.Reason() != tc.wantFail {
					t.Fatalf("expected failure %q, got failed=%v reason=%q", tc.wantFail, resp.Failed(), resp.Reason())
				}
				if len(resp.Steps) != 0 {
					t.Errorf("expected no steps, got %d", len(resp.Steps))
				}
				return
			}
			if len(resp.Steps) != len(tc.wantSteps) {
				t.Fatalf("expected %d steps, got %d", len(tc.wantSteps), len(resp.Steps))
			}
			for i, s := range resp.Steps {
				if got := s.Label(i); got != tc.wantSteps[i] {
					t.Errorf("step %d: expected %q, got %q", i, tc.wantSteps[i], got)
				}
			}
		})
	}
}

func TestAskDoubtSendsSentinelStep(t *testing.T) {
	var gotQuestion, gotStep string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuestion = r.FormValue(FieldQuestion)
		gotStep = r.FormValue(FieldStepNumber)
		w.Write([]byte(`{"error":"Invalid doubt request"}`))
	})

	step, err := ParseStep("  ")
	if err != nil {
		t.Fatalf("ParseStep failed: %v", err)
	}
	resp, err := client.AskDoubt(context.Background(), DoubtRequest{Question: "why?", Step: step})
	if err != nil {
		t.Fatalf("AskDoubt failed: %v", err)
	}
	if gotQuestion != "why?" {
		t.Errorf("expected question, got %q", gotQuestion)
	}
	if gotStep != "-1" {
		t.Errorf("expected step_number -1, got %q", gotStep)
	}
	if !resp.Failed() || resp.Reason() != "Invalid doubt request" {
		t.Errorf("expected error string as reason, got failed=%v reason=%q", resp.Failed(), resp.Reason())
	}
}

func TestParseStep(t *testing.T) {
	if n, err := ParseStep("3"); err != nil || n != 3 {
		t.Fatalf("expected 3, got %d (%v)", n, err)
	}
	if _, err := ParseStep("two"); err == nil {
		t.Fatalf("expected error for non-numeric step")
	}
}

func TestNonJSONBodyIsTransportError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	})
	_, err := client.SolveMath(context.Background(), MathRequest{Input: "1+1"})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
	if te.Status != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", te.Status)
	}
	if te.Op != PathSolveMath {
		t.Errorf("expected op %s, got %s", PathSolveMath, te.Op)
	}
}

func TestFailingStatusWithoutReasonIsTransportError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{}`))
	})
	_, err := client.AskDoubt(context.Background(), DoubtRequest{Question: "q", Step: 1})
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestUnreachableServerIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = url
	cfg.Timeout = time.Second
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	_, err = client.SolveMath(context.Background(), MathRequest{Input: "1+1"})
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestCancelledContextIsTransportError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer":"late"}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.AskDoubt(ctx, DoubtRequest{Question: "q", Step: NoStep})
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
}

func TestNewClientRejectsBadURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "ftp://example.com"
	if _, err := NewClient(cfg); err == nil {
		t.Fatalf("expected error for non-http scheme")
	}
	cfg.BaseURL = "http://"
	if _, err := NewClient(cfg); err == nil {
		t.Fatalf("expected error for missing host")
	}
}

func TestBaseURLPathPrefixIsKept(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"answer":"ok"}`))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL + "/tutor"
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if _, err := client.AskDoubt(context.Background(), DoubtRequest{Question: "q", Step: 2}); err != nil {
		t.Fatalf("AskDoubt failed: %v", err)
	}
	if gotPath != "/tutor/ask_doubt" {
		t.Fatalf("expected /tutor/ask_doubt, got %s", gotPath)
	}
}
