// Package api is the HTTP client for the tutor service.
//
// The service exposes three multipart endpoints (/upload_ocr, /solve_math,
// /ask_doubt) that answer with loosely shaped JSON. Application errors
// come back as JSON payloads with an "error" field and are returned to
// the caller as data. Anything that prevents reading such a payload is
// a *TransportError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// MaxResponseBytes caps how much of a response body is read.
const MaxResponseBytes = 8 << 20

// Config describes how to reach the tutor service.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	Burst     int
	UserAgent string
}

// DefaultConfig returns settings for a service on the local machine.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "http://127.0.0.1:5000",
		Timeout:   60 * time.Second,
		RateLimit: 2,
		Burst:     2,
		UserAgent: "mathtutor",
	}
}

// Client talks to the tutor service.
type Client struct {
	base      *url.URL
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// NewClient validates cfg and builds a client.
func NewClient(cfg Config) (*Client, error) {
	base, err := ParseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	limit := rate.Inf
	burst := cfg.Burst
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "mathtutor"
	}
	return &Client{
		base:      base,
		http:      &http.Client{Timeout: cfg.Timeout},
		limiter:   rate.NewLimiter(limit, burst),
		userAgent: ua,
	}, nil
}

// ParseBaseURL checks that raw is an absolute http(s) URL.
func ParseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q must use http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("server url %q has no host", raw)
	}
	return u, nil
}

// BaseURL returns the service root the client was built with.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// UploadOCR sends an image to /upload_ocr.
func (c *Client) UploadOCR(ctx context.Context, req UploadRequest) (*OCRResponse, error) {
	if req.Body == nil {
		return nil, &TransportError{Op: PathUploadOCR, Err: errors.New("upload has no body")}
	}
	body, contentType, err := buildForm(func(w *multipart.Writer) error {
		part, err := createFilePart(w, FieldImage, req.Filename, req.ContentType)
		if err != nil {
			return err
		}
		_, err = io.Copy(part, req.Body)
		return err
	})
	if err != nil {
		return nil, &TransportError{Op: PathUploadOCR, Err: err}
	}
	var resp OCRResponse
	raw, err := c.post(ctx, PathUploadOCR, body, contentType, &resp)
	if err != nil {
		return nil, err
	}
	resp.Raw = raw
	return &resp, nil
}

// SolveMath sends an expression to /solve_math.
func (c *Client) SolveMath(ctx context.Context, req MathRequest) (*SolveResponse, error) {
	body, contentType, err := buildForm(func(w *multipart.Writer) error {
		return w.WriteField(FieldMathInput, req.Input)
	})
	if err != nil {
		return nil, &TransportError{Op: PathSolveMath, Err: err}
	}
	var resp SolveResponse
	raw, err := c.post(ctx, PathSolveMath, body, contentType, &resp)
	if err != nil {
		return nil, err
	}
	resp.Raw = raw
	return &resp, nil
}

// AskDoubt sends a follow-up question to /ask_doubt.
func (c *Client) AskDoubt(ctx context.Context, req DoubtRequest) (*DoubtResponse, error) {
	body, contentType, err := buildForm(func(w *multipart.Writer) error {
		if err := w.WriteField(FieldQuestion, req.Question); err != nil {
			return err
		}
		return w.WriteField(FieldStepNumber, strconv.Itoa(req.Step))
	})
	if err != nil {
		return nil, &TransportError{Op: PathAskDoubt, Err: err}
	}
	var resp DoubtResponse
	raw, err := c.post(ctx, PathAskDoubt, body, contentType, &resp)
	if err != nil {
		return nil, err
	}
	resp.Raw = raw
	return &resp, nil
}

// ParseStep converts the optional step field into a step reference.
// Blank input means no step.
func ParseStep(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoStep, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("step %q is not a whole number", s)
	}
	return n, nil
}

func (c *Client) post(ctx context.Context, path string, body *bytes.Buffer, contentType string, out interface{}) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Op: path, Err: err}
	}

	endpoint := c.base.JoinPath(path)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), body)
	if err != nil {
		return nil, &TransportError{Op: path, Err: err}
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes+1))
	if err != nil {
		return nil, &TransportError{Op: path, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if len(data) > MaxResponseBytes {
		return nil, &TransportError{Op: path, Status: resp.StatusCode, Err: errors.New("response exceeds size limit")}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return nil, &TransportError{Op: path, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	// A failing status is only trusted as data when the body says why.
	if f, ok := out.(interface{ Failed() bool }); ok && resp.StatusCode >= 400 && !f.Failed() {
		return nil, &TransportError{Op: path, Status: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}
	return json.RawMessage(data), nil
}

func buildForm(fill func(w *multipart.Writer) error) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := fill(w); err != nil {
		return nil, "", fmt.Errorf("build form: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("build form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func createFilePart(w *multipart.Writer, field, filename, contentType string) (io.Writer, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)
	return w.CreatePart(h)
}
