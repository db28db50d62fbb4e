package http

import (
	"context"
	"net/http"
	"strings"

	"bookings/internal/dashboard"
)

// htmxUI is the dashboard.UI for one request. Confirmations and prompts
// cannot block an HTTP request, so the first pass answers with a
// confirm-required or prompt-required event and the browser re-sends the
// request with the answer attached.
type htmxUI struct {
	r    *http.Request
	body *RequestBodyParser
	resp *HTMXResponseBuilder

	// Where a confirmed request is re-sent; defaults to the current one.
	target string
	values map[string]string

	asked bool
}

func newHTMXUI(r *http.Request, body *RequestBodyParser) *htmxUI {
	return &htmxUI{r: r, body: body, resp: NewHTMXResponse()}
}

func (u *htmxUI) requestURL() string {
	return u.r.URL.RequestURI()
}

func (u *htmxUI) Confirm(_ context.Context, c dashboard.Confirmation) bool {
	if u.body.Get("confirmed") == "true" {
		return true
	}
	u.asked = true
	u.resp.TriggerConfirm(ConfirmRequest{
		Confirmation: c,
		URL:          u.requestURL(),
		Method:       u.r.Method,
		Target:       u.target,
		Values:       u.values,
	})
	return false
}

// Prompt takes the answer from the HX-Prompt header (hx-prompt) or from
// the value field sent by the dashboard script.
func (u *htmxUI) Prompt(_ context.Context, p dashboard.Prompt) (string, bool) {
	if v := strings.TrimSpace(u.r.Header.Get("HX-Prompt")); v != "" {
		return v, true
	}
	if u.body.Has("value") {
		return u.body.Get("value"), true
	}
	u.asked = true
	u.resp.TriggerPrompt(PromptRequest{Prompt: p, URL: u.requestURL()})
	return "", false
}

func (u *htmxUI) Notify(_ context.Context, n dashboard.Notification) {
	u.resp.TriggerNotification(n)
}

func (u *htmxUI) CloseModal(context.Context) {
	u.resp.TriggerModalClose()
}

func (u *htmxUI) OpenURL(_ context.Context, url string) {
	u.resp.TriggerOpenURL(url)
}
