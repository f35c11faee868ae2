// Package events holds the typed trace emitters used across mathtutor.
package events

import "github.com/Mr-Dark-debug/mathtutor/internal/logging"

type AppTracer struct{}

type UITracer struct{}

type RequestTracer struct{}

var (
	App     = AppTracer{}
	UI      = UITracer{}
	Request = RequestTracer{}
)

func (AppTracer) Start(payload map[string]interface{}) {
	logging.Trace("app.start", payload)
}

func (AppTracer) Stop(reason string) {
	logging.Trace("app.stop", map[string]interface{}{"reason": reason})
}

func (UITracer) Tab(controlID, panelID string) {
	logging.Trace("ui.tab", map[string]interface{}{"control": controlID, "panel": panelID})
}

func (UITracer) Notice(text string) {
	logging.Trace("ui.notice", map[string]interface{}{"text": text})
}

func (UITracer) Filter(regionID, query string, shown int) {
	logging.Trace("ui.filter", map[string]interface{}{"region": regionID, "query": query, "shown": shown})
}

func (RequestTracer) Submit(kind string, token uint64, fields map[string]interface{}) {
	payload := map[string]interface{}{"kind": kind, "token": token}
	for k, v := range fields {
		payload[k] = v
	}
	logging.Trace("request.submit", payload)
}

func (RequestTracer) Result(kind string, token uint64, outcome string, elapsedMs int64, body string) {
	logging.Trace("request.result", map[string]interface{}{
		"kind":      kind,
		"token":     token,
		"outcome":   outcome,
		"elapsedMs": elapsedMs,
		"body":      body,
	})
}

func (RequestTracer) Stale(kind string, token, latest uint64) {
	logging.Trace("request.stale", map[string]interface{}{"kind": kind, "token": token, "latest": latest})
}

func (RequestTracer) Failure(kind string, token uint64, err error) {
	if err == nil {
		return
	}
	logging.Trace("request.failure", map[string]interface{}{"kind": kind, "token": token, "error": err.Error()})
}
