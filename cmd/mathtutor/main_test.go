package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Mr-Dark-debug/mathtutor/internal/api"
	"github.com/Mr-Dark-debug/mathtutor/internal/app"
	"github.com/Mr-Dark-debug/mathtutor/internal/config"
	"github.com/Mr-Dark-debug/mathtutor/internal/logging"
)

// tutorServer answers the three endpoints and records form values.
func tutorServer(t *testing.T, seen map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		var payload interface{}
		switch r.URL.Path {
		case api.PathUploadOCR:
			_, header, err := r.FormFile(api.FieldImage)
			if err != nil {
				t.Errorf("missing image: %v", err)
				return
			}
			seen["filename"] = header.Filename
			payload = map[string]interface{}{"latex": `\frac{1}{2}`}
		case api.PathSolveMath:
			input := r.FormValue(api.FieldMathInput)
			seen["math_input"] = input
			if input == "bad" {
				payload = map[string]interface{}{"error": true, "message": "Could not parse", "hint": "Try 2x+3=7"}
				break
			}
			payload = map[string]interface{}{
				"final_answer": "x = 2",
				"problem_type": "linear_equation",
				"steps": []map[string]interface{}{
					{"step_number": 1, "type": "subtract", "output": "2x = 4"},
					{"step_number": 2, "type": "divide", "output": "x = 2"},
				},
			}
		case api.PathAskDoubt:
			seen["question"] = r.FormValue(api.FieldQuestion)
			seen["step_number"] = r.FormValue(api.FieldStepNumber)
			payload = map[string]interface{}{"answer": "Divide both sides by $2$."}
		default:
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string, positional ...string) config.Config {
	return config.Config{
		App:        app.Config{API: api.Config{BaseURL: baseURL}},
		Positional: positional,
	}
}

func runCLI(t *testing.T, cfg config.Config) (int, string, string) {
	t.Helper()
	logging.Configure(filepath.Join(t.TempDir(), "mathtutor.log"))
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), cfg, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunWithoutCommandIsUsageError(t *testing.T) {
	code, _, stderr := runCLI(t, testConfig("http://127.0.0.1:1"))
	if code != exitUsage || !strings.Contains(stderr, "Usage:") {
		t.Fatalf("expected usage error, got %d %q", code, stderr)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	code, _, stderr := runCLI(t, testConfig("http://127.0.0.1:1", "integrate"))
	if code != exitUsage || !strings.Contains(stderr, `unknown command "integrate"`) {
		t.Fatalf("expected unknown command error, got %d %q", code, stderr)
	}
}

func TestRunVersion(t *testing.T) {
	code, stdout, _ := runCLI(t, testConfig("http://127.0.0.1:1", "version"))
	if code != exitOK || !strings.HasPrefix(stdout, "mathtutor ") {
		t.Fatalf("unexpected version output %d %q", code, stdout)
	}
}

func TestSolvePrintsTypesetSteps(t *testing.T) {
	seen := map[string]string{}
	srv := tutorServer(t, seen)

	code, stdout, stderr := runCLI(t, testConfig(srv.URL, "solve", "2x", "+", "3", "=", "7"))
	if code != exitOK {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	if seen["math_input"] != "2x + 3 = 7" {
		t.Fatalf("unexpected input %q", seen["math_input"])
	}
	for _, want := range []string{"linear_equation", "Step 1 · subtract", "2x = 4", "Step 2 · divide", "No explanation available."} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
	if strings.Contains(stdout, "$$") {
		t.Errorf("math markup should be typeset:\n%s", stdout)
	}
}

func TestSolveErrorPayloadExitsWithFailure(t *testing.T) {
	srv := tutorServer(t, map[string]string{})

	code, stdout, stderr := runCLI(t, testConfig(srv.URL, "solve", "bad"))
	if code != exitFailure {
		t.Fatalf("expected exit %d, got %d", exitFailure, code)
	}
	if !strings.Contains(stderr, "Could not parse") || !strings.Contains(stderr, "Hint: Try 2x+3=7") {
		t.Fatalf("unexpected stderr %q", stderr)
	}
	if stdout != "" {
		t.Fatalf("expected no stdout, got %q", stdout)
	}
}

func TestSolveRawJSON(t *testing.T) {
	srv := tutorServer(t, map[string]string{})

	code, stdout, _ := runCLI(t, testConfig(srv.URL, "solve", "--json", "1+1"))
	if code != exitOK {
		t.Fatalf("expected success, got %d", code)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(stdout), &decoded); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", stdout, err)
	}
	if decoded["final_answer"] != "x = 2" {
		t.Fatalf("unexpected payload %v", decoded)
	}
}

func TestDoubtSendsSentinelStep(t *testing.T) {
	seen := map[string]string{}
	srv := tutorServer(t, seen)

	code, stdout, stderr := runCLI(t, testConfig(srv.URL, "doubt", "why", "divide?"))
	if code != exitOK {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	if seen["question"] != "why divide?" || seen["step_number"] != "-1" {
		t.Fatalf("unexpected request %v", seen)
	}
	if !strings.Contains(stdout, "Divide both sides by 2.") {
		t.Fatalf("unexpected answer output %q", stdout)
	}

	code, _, _ = runCLI(t, testConfig(srv.URL, "doubt", "--step", "2", "why?"))
	if code != exitOK || seen["step_number"] != "2" {
		t.Fatalf("expected step 2, got %d %v", code, seen)
	}
}

func TestDoubtStepAfterQuestion(t *testing.T) {
	seen := map[string]string{}
	srv := tutorServer(t, seen)

	code, _, stderr := runCLI(t, testConfig(srv.URL, "doubt", "why", "is", "it", "--step", "2"))
	if code != exitOK {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	if seen["question"] != "why is it" || seen["step_number"] != "2" {
		t.Fatalf("unexpected request %v", seen)
	}

	code, _, stderr = runCLI(t, testConfig(srv.URL, "doubt", "--", "what", "does", "--step", "mean?"))
	if code != exitOK {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	if seen["question"] != "what does --step mean?" || seen["step_number"] != "-1" {
		t.Fatalf("words after -- should stay in the question, got %v", seen)
	}
}

func TestParseInterspersed(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	step := fs.String("step", "", "")
	raw := fs.Bool("json", false, "")

	words, err := parseInterspersed(fs, []string{"a", "--json", "b", "--step", "3", "c"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if strings.Join(words, " ") != "a b c" || *step != "3" || !*raw {
		t.Fatalf("unexpected result words=%v step=%q json=%v", words, *step, *raw)
	}
}

func TestDoubtWithoutQuestion(t *testing.T) {
	code, _, stderr := runCLI(t, testConfig("http://127.0.0.1:1", "doubt"))
	if code != exitUsage || !strings.Contains(stderr, "Please enter a question first.") {
		t.Fatalf("unexpected result %d %q", code, stderr)
	}
}

func TestOCRUploadsImage(t *testing.T) {
	seen := map[string]string{}
	srv := tutorServer(t, seen)

	path := filepath.Join(t.TempDir(), "photo.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	f.Close()

	code, stdout, stderr := runCLI(t, testConfig(srv.URL, "ocr", path))
	if code != exitOK {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	if seen["filename"] != "photo.png" {
		t.Fatalf("unexpected filename %q", seen["filename"])
	}
	if !strings.Contains(stdout, "1/2") || !strings.Contains(stdout, `LaTeX: \frac{1}{2}`) {
		t.Fatalf("unexpected output %q", stdout)
	}
}

func TestOCRMissingFileIsUsageError(t *testing.T) {
	code, _, stderr := runCLI(t, testConfig("http://127.0.0.1:1", "ocr", filepath.Join(t.TempDir(), "nope.png")))
	if code != exitUsage || stderr == "" {
		t.Fatalf("expected usage error, got %d %q", code, stderr)
	}
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	code, _, stderr := runCLI(t, testConfig(url, "solve", "1+1"))
	if code != exitFailure || !strings.Contains(stderr, connectionFailureText) {
		t.Fatalf("expected connection failure, got %d %q", code, stderr)
	}
}
