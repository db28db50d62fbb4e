// Package http serves the dashboard: the full page, HTMX partials and the
// mutation endpoints.
//
// This file builds HTMX responses. Notifications, dialog handling and
// confirm/prompt round trips travel in the HX-Trigger header.

package http

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"unicode/utf16"

	"bookings/internal/dashboard"
)

// Client-side events the dashboard script listens for.
const (
	EventNotification    = "show-notification"
	EventModalClose      = "modal:close"
	EventConfirmRequired = "confirm-required"
	EventPromptRequired  = "prompt-required"
	EventOpenURL         = "open-url"
)

// HTMXResponseBuilder provides a fluent API for building HTMX responses.
type HTMXResponseBuilder struct {
	triggers   map[string]interface{}
	statusCode int
	body       []byte
	headers    map[string]string
}

func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]interface{}),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named event to the HX-Trigger header. A second trigger
// with the same name replaces the first.
func (b *HTMXResponseBuilder) Trigger(name string, data interface{}) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// HasTrigger reports whether name was already added.
func (b *HTMXResponseBuilder) HasTrigger(name string) bool {
	_, ok := b.triggers[name]
	return ok
}

// TriggerNotification shows a toast.
func (b *HTMXResponseBuilder) TriggerNotification(n dashboard.Notification) *HTMXResponseBuilder {
	return b.Trigger(EventNotification, n)
}

func (b *HTMXResponseBuilder) TriggerSuccessNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(dashboard.Notification{Severity: dashboard.SeveritySuccess, Title: "نجاح", Message: message})
}

func (b *HTMXResponseBuilder) TriggerErrorNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(dashboard.Notification{Severity: dashboard.SeverityError, Title: "خطأ", Message: message})
}

func (b *HTMXResponseBuilder) TriggerModalClose() *HTMXResponseBuilder {
	return b.Trigger(EventModalClose, struct{}{})
}

// ConfirmRequest asks the browser to confirm and then re-send the request
// to URL with confirmed=true added to Values.
type ConfirmRequest struct {
	dashboard.Confirmation
	URL    string            `json:"url"`
	Method string            `json:"method"`
	Target string            `json:"target,omitempty"`
	Values map[string]string `json:"values,omitempty"`
}

func (b *HTMXResponseBuilder) TriggerConfirm(c ConfirmRequest) *HTMXResponseBuilder {
	return b.Trigger(EventConfirmRequired, c)
}

// PromptRequest asks the browser for a value and posts it back to URL as
// the "value" field.
type PromptRequest struct {
	dashboard.Prompt
	URL string `json:"url"`
}

func (b *HTMXResponseBuilder) TriggerPrompt(p PromptRequest) *HTMXResponseBuilder {
	return b.Trigger(EventPromptRequired, p)
}

func (b *HTMXResponseBuilder) TriggerOpenURL(url string) *HTMXResponseBuilder {
	return b.Trigger(EventOpenURL, map[string]string{"url": url})
}

func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *HTMXResponseBuilder) Body(content []byte) *HTMXResponseBuilder {
	b.body = content
	return b
}

func (b *HTMXResponseBuilder) BodyString(content string) *HTMXResponseBuilder {
	b.body = []byte(content)
	return b
}

// BodyHTML sets trusted markup as the body.
func (b *HTMXResponseBuilder) BodyHTML(html template.HTML) *HTMXResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = []byte(html)
	return b
}

// BodyJSON encodes v as the body. Encoding failures turn the response into
// a 500.
func (b *HTMXResponseBuilder) BodyJSON(v interface{}) *HTMXResponseBuilder {
	data, err := json.Marshal(v)
	if err != nil {
		b.statusCode = http.StatusInternalServerError
		b.body = nil
		return b
	}
	b.headers["Content-Type"] = "application/json"
	b.body = data
	return b
}

// Write sends the built response.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if len(b.triggers) > 0 {
		triggerJSON, err := json.Marshal(b.triggers)
		if err == nil {
			w.Header().Set("HX-Trigger", asciiJSON(triggerJSON))
		}
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// asciiJSON escapes non-ASCII runes as \uXXXX. Browsers read header values
// as latin-1, which would garble Arabic text.
func asciiJSON(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data))
	for _, r := range string(data) {
		switch {
		case r < 0x80:
			sb.WriteRune(r)
		case r > 0xFFFF:
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&sb, "\\u%04x\\u%04x", hi, lo)
		default:
			fmt.Fprintf(&sb, "\\u%04x", r)
		}
	}
	return sb.String()
}

// ErrorResponse creates an error fragment. The message is HTML-escaped.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(statusCode).
		BodyHTML(template.HTML(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`))
}

func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

func NotFoundError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func UnauthorizedError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusUnauthorized, message)
}
