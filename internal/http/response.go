package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// Response builds HTMX responses: a status, an optional HTML body and a
// set of HX-Trigger events.
type Response struct {
	triggers map[string]any
	status   int
	body     []byte
	headers  map[string]string
}

func NewResponse() *Response {
	return &Response{
		triggers: make(map[string]any),
		status:   http.StatusOK,
		headers:  make(map[string]string),
	}
}

func (b *Response) Status(code int) *Response {
	b.status = code
	return b
}

// Trigger adds a named client-side event to the HX-Trigger header.
func (b *Response) Trigger(name string, data any) *Response {
	b.triggers[name] = data
	return b
}

// TriggerTransactionCreated tells the page to refresh metrics and the
// recent list.
func (b *Response) TriggerTransactionCreated(txID string) *Response {
	return b.Trigger("transaction:created", map[string]string{"id": txID})
}

func (b *Response) TriggerFormReset() *Response {
	return b.Trigger("form:reset", struct{}{})
}

func (b *Response) TriggerNotification(kind, message string) *Response {
	return b.Trigger("show-notification", map[string]any{
		"type":     kind,
		"message":  message,
		"duration": 3000,
	})
}

func (b *Response) Header(name, value string) *Response {
	b.headers[name] = value
	return b
}

func (b *Response) BodyHTML(html string) *Response {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = []byte(html)
	return b
}

func (b *Response) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if len(b.triggers) > 0 {
		if payload, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(payload))
		}
	}
	w.WriteHeader(b.status)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// errorFragment answers an HTMX request with an inline error. The panel
// the user was typing in stays open so they can correct and retry.
func errorFragment(status int, message string) *Response {
	return NewResponse().
		Status(status).
		BodyHTML(`<div class="error" role="alert">` + template.HTMLEscapeString(message) + `</div>`)
}
