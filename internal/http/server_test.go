package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"bookings/internal/core"
	"bookings/internal/dashboard"
	"bookings/internal/remote"
	"bookings/internal/remote/memory"
	"bookings/internal/store"
	"bookings/internal/view"
)

type testStack struct {
	srv    *Server
	client *remote.Client
}

func testSeed() memory.Seed {
	return memory.Seed{
		Bookings: []core.Booking{
			{ID: 1, Date: core.NewDate(2025, 1, 5), CustomerName: "Ali", Phone: "0501111111", TotalAmount: core.Money{Cents: 100000}, Deposit: core.Money{Cents: 100000}, PaymentStatus: core.StatusCompleted},
			{ID: 2, Date: core.NewDate(2025, 1, 12), CustomerName: "Sara", Phone: "0502222222", TotalAmount: core.Money{Cents: 80000}, Deposit: core.Money{Cents: 30000}, Remaining: core.Money{Cents: 50000}, PaymentStatus: core.StatusPending},
		},
		Users:    []core.User{{ID: 4, Username: "admin", Role: "admin"}},
		Settings: core.Settings{core.SettingFacilityName: "استراحة الاختبار"},
	}
}

func newTestStack(t *testing.T, cfg Config) testStack {
	t.Helper()
	tmpl, err := view.ParseTemplates()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	page := view.NewPage(nil)
	charts := view.NewChartBoard(nil)
	cal := view.NewCalendarBoard(nil)
	sections := view.NewSections(view.SectionOverview, cal, nil)
	renderer := view.NewRenderer(tmpl, page, charts, cal, nil)

	client := remote.NewClient(memory.New(testSeed()), time.Second)
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, core.Location)
	dash := dashboard.New(client, store.New(), renderer, sections, dashboard.Options{
		Now: func() time.Time { return now },
	})

	srv := NewServer(cfg, Deps{
		Dashboard: dash,
		Page:      page,
		Charts:    charts,
		Calendar:  cal,
		Sections:  sections,
		Renderer:  renderer,
		Checks: map[string]func(context.Context) error{
			"backend": func(context.Context) error { return nil },
		},
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return testStack{srv: srv, client: client}
}

func (s testStack) do(t *testing.T, method, target string, form url.Values, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	rr := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func (s testStack) start(t *testing.T) {
	t.Helper()
	if rr := s.do(t, http.MethodGet, "/", nil, nil); rr.Code != http.StatusOK {
		t.Fatalf("index status=%d", rr.Code)
	}
}

func triggerPayload(t *testing.T, rr *httptest.ResponseRecorder, event string) map[string]any {
	t.Helper()
	triggers := decodeTriggers(t, rr)
	raw, ok := triggers[event]
	if !ok {
		t.Fatalf("trigger %s missing; got %s", event, rr.Header().Get("HX-Trigger"))
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode %s: %v", event, err)
	}
	return out
}

func TestIndexAndHealth(t *testing.T) {
	s := newTestStack(t, Config{Backend: "memory"})

	rr := s.do(t, http.MethodGet, "/", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("index status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "استراحة الاختبار") {
		t.Fatalf("index body missing facility name")
	}
	if !strings.Contains(body, "Sara") {
		t.Fatalf("index body missing bookings")
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing X-Request-ID")
	}
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Fatalf("missing security headers")
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := s.do(t, http.MethodGet, path, nil, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d body=%s", path, rr.Code, rr.Body.String())
		}
	}
}

func TestReadyReportsFailedCheck(t *testing.T) {
	s := newTestStack(t, Config{})
	s.srv.checks["journal"] = func(context.Context) error { return context.DeadlineExceeded }

	rr := s.do(t, http.MethodGet, "/readyz", nil, nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	var out struct {
		Status string         `json:"status"`
		Checks map[string]any `json:"checks"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Status != "not_ready" || !strings.HasPrefix(out.Checks["journal"].(string), "failed") {
		t.Fatalf("unexpected readiness: %+v", out)
	}
}

func TestTokenGuard(t *testing.T) {
	s := newTestStack(t, Config{Token: "s3cret"})

	if rr := s.do(t, http.MethodGet, "/", nil, nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}
	if rr := s.do(t, http.MethodGet, "/ui/regions/statCards", nil, nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for partial without token, got %d", rr.Code)
	}
	if rr := s.do(t, http.MethodGet, "/healthz", nil, nil); rr.Code != http.StatusOK {
		t.Fatalf("healthz must stay open, got %d", rr.Code)
	}

	rr := s.do(t, http.MethodGet, "/?token=s3cret", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rr.Code)
	}
	var cookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == tokenCookie {
			cookie = c
		}
	}
	if cookie == nil || !cookie.HttpOnly {
		t.Fatalf("token cookie not set: %v", rr.Result().Cookies())
	}

	rr = s.do(t, http.MethodGet, "/ui/regions/statCards", nil, http.Header{"Cookie": {tokenCookie + "=" + cookie.Value}})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with cookie, got %d", rr.Code)
	}
}

func TestDeleteBookingConfirmRoundTrip(t *testing.T) {
	s := newTestStack(t, Config{})
	s.start(t)

	rr := s.do(t, http.MethodPost, "/bookings/2/delete", nil, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("first pass status=%d", rr.Code)
	}
	ask := triggerPayload(t, rr, EventConfirmRequired)
	if ask["url"] != "/bookings/2/delete" || ask["method"] != http.MethodPost {
		t.Fatalf("confirm payload = %v", ask)
	}
	if got, _ := s.client.Bookings(context.Background()); len(got) != 2 {
		t.Fatalf("booking deleted before confirmation")
	}

	rr = s.do(t, http.MethodPost, "/bookings/2/delete", url.Values{"confirmed": {"true"}}, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("confirmed status=%d", rr.Code)
	}
	note := triggerPayload(t, rr, EventNotification)
	if note["type"] != string(dashboard.SeveritySuccess) {
		t.Fatalf("notification = %v", note)
	}
	got, _ := s.client.Bookings(context.Background())
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("remaining bookings = %+v", got)
	}

	rr = s.do(t, http.MethodGet, "/ui/regions/bookingsTable", nil, nil)
	if strings.Contains(rr.Body.String(), "Sara") {
		t.Fatalf("deleted booking still rendered")
	}
}

func TestSaveBookingValidationAndSuccess(t *testing.T) {
	s := newTestStack(t, Config{})
	s.start(t)

	rr := s.do(t, http.MethodPost, "/bookings", url.Values{"date": {"2025-02-01"}, "totalAmount": {"100"}}, nil)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	if note := triggerPayload(t, rr, EventNotification); note["type"] != string(dashboard.SeverityError) {
		t.Fatalf("notification = %v", note)
	}

	form := url.Values{
		"date":          {"2025-02-01"},
		"customerName":  {"Omar"},
		"phone":         {"0503333333"},
		"totalAmount":   {"1200"},
		"deposit":       {"200"},
		"paymentStatus": {string(core.StatusPartial)},
	}
	rr = s.do(t, http.MethodPost, "/bookings", form, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("save status=%d", rr.Code)
	}
	if _, ok := decodeTriggers(t, rr)[EventModalClose]; !ok {
		t.Fatalf("modal not closed: %s", rr.Header().Get("HX-Trigger"))
	}
	got, _ := s.client.Bookings(context.Background())
	if len(got) != 3 || got[2].Remaining.Cents != 100000 {
		t.Fatalf("bookings after save = %+v", got)
	}
}

func TestRecordPaymentPrompt(t *testing.T) {
	s := newTestStack(t, Config{})
	s.start(t)

	rr := s.do(t, http.MethodPost, "/bookings/2/payment", nil, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("first pass status=%d", rr.Code)
	}
	ask := triggerPayload(t, rr, EventPromptRequired)
	if ask["default"] != "500.00" || ask["url"] != "/bookings/2/payment" {
		t.Fatalf("prompt payload = %v", ask)
	}

	rr = s.do(t, http.MethodPost, "/bookings/2/payment", nil, http.Header{"Hx-Prompt": {"200"}})
	if rr.Code != http.StatusNoContent {
		t.Fatalf("payment status=%d", rr.Code)
	}
	got, _ := s.client.Bookings(context.Background())
	if got[1].Remaining.Cents != 30000 {
		t.Fatalf("remaining after payment = %v", got[1].Remaining)
	}
}

func TestRemainingPreviewFragment(t *testing.T) {
	s := newTestStack(t, Config{})
	rr := s.do(t, http.MethodPost, "/ui/bookings/remaining", url.Values{"totalAmount": {"800"}, "deposit": {"300"}}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `value="500.00"`) {
		t.Fatalf("preview body = %s", rr.Body.String())
	}
}

func TestSectionsChartsAndCalendar(t *testing.T) {
	s := newTestStack(t, Config{})
	s.start(t)

	if rr := s.do(t, http.MethodPost, "/ui/sections/bookings", nil, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("section status=%d", rr.Code)
	}
	if s.srv.sections.Current() != view.SectionBookings {
		t.Fatalf("current section = %s", s.srv.sections.Current())
	}
	if rr := s.do(t, http.MethodPost, "/ui/sections/nope", nil, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown section status=%d", rr.Code)
	}
	if rr := s.do(t, http.MethodGet, "/ui/regions/nope", nil, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown region status=%d", rr.Code)
	}

	rr := s.do(t, http.MethodGet, "/ui/charts/"+view.CanvasBookings, nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("chart status=%d", rr.Code)
	}
	var cfg view.ChartConfig
	if err := json.Unmarshal(rr.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("chart json: %v", err)
	}

	rr = s.do(t, http.MethodGet, "/ui/calendar/events", nil, nil)
	var events []view.CalendarEvent
	if err := json.Unmarshal(rr.Body.Bytes(), &events); err != nil {
		t.Fatalf("calendar json: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("calendar events = %d", len(events))
	}
}

func TestRemindOpensWhatsApp(t *testing.T) {
	s := newTestStack(t, Config{})
	s.start(t)

	rr := s.do(t, http.MethodGet, "/bookings/2/remind", nil, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status=%d", rr.Code)
	}
	open := triggerPayload(t, rr, EventOpenURL)
	link, _ := open["url"].(string)
	if !strings.HasPrefix(link, "https://wa.me/966502222222?text=") {
		t.Fatalf("link = %q", link)
	}
}

func TestWritesAreRateLimited(t *testing.T) {
	s := newTestStack(t, Config{WritesPerMinute: 1})
	s.start(t)

	if rr := s.do(t, http.MethodPost, "/ui/sections/users", nil, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("first write status=%d", rr.Code)
	}
	rr := s.do(t, http.MethodPost, "/ui/sections/users", nil, nil)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After")
	}
	if rr := s.do(t, http.MethodGet, "/ui/regions/usersTable", nil, nil); rr.Code != http.StatusOK {
		t.Fatalf("reads must not be limited, got %d", rr.Code)
	}
}

func TestZeroWritesPerMinuteDisablesLimit(t *testing.T) {
	s := newTestStack(t, Config{WritesPerMinute: 0})
	s.start(t)

	for i := 0; i < 5; i++ {
		if rr := s.do(t, http.MethodPost, "/ui/sections/users", nil, nil); rr.Code != http.StatusNoContent {
			t.Fatalf("write %d status=%d", i, rr.Code)
		}
	}
	rr := s.do(t, http.MethodGet, "/readyz", nil, nil)
	if !strings.Contains(rr.Body.String(), `"rate_limiter":"disabled"`) {
		t.Fatalf("readyz should report the limiter as disabled: %s", rr.Body.String())
	}
}
