package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bookings/internal/dashboard"
	applog "bookings/internal/log"
	"bookings/internal/view"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewHTMXResponse().BodyJSON(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports templates, the dashboard start state and every
// registered dependency check.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]any{}
	if s.renderer == nil {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			checks[name] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	checks["dashboard"] = map[string]any{"started": s.dash.Started(), "backend": s.backend}
	if s.limiter != nil {
		checks["rate_limiter"] = s.limiter.GetMetrics()
	} else {
		checks["rate_limiter"] = "disabled"
	}
	checks["requests"] = s.tracer.GetMetrics()
	checks["security"] = s.detector.GetMetrics()

	NewHTMXResponse().Status(code).BodyJSON(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleIndex runs the page guard, initializes the dashboard on the first
// accepted visit and renders the page from the current region markup.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.renderer == nil {
		InternalServerError("templates not loaded").Write(w)
		return
	}
	if err := s.dash.Start(r.Context(), s.guard.pageGuard(r)); err != nil {
		if errors.Is(err, dashboard.ErrPageGuard) {
			UnauthorizedError("غير مصرح بالدخول").Write(w)
			return
		}
		s.logger.ErrorContext(r.Context(), "Dashboard start failed", applog.FieldError, err)
		InternalServerError("تعذر تحميل لوحة التحكم").Write(w)
		return
	}
	s.guard.remember(w, r)

	data := view.NewPageData(s.dash.Title(), s.sections.Current(), s.page.All())
	html, err := s.renderer.Execute("index.html", data)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Index template execution failed", applog.FieldError, err)
		InternalServerError("تعذر عرض الصفحة").Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(html).Write(w)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.dash.LoadAll(r.Context()); err != nil {
		NewHTMXResponse().
			Status(http.StatusBadGateway).
			TriggerErrorNotification("فشل تحديث البيانات").
			Write(w)
		return
	}
	NewHTMXResponse().
		Status(http.StatusNoContent).
		TriggerSuccessNotification("تم تحديث البيانات").
		Write(w)
}

func (s *Server) handleRegion(w http.ResponseWriter, r *http.Request) {
	region := view.Region(r.PathValue("region"))
	if !region.Valid() {
		NotFoundError("unknown region").Write(w)
		return
	}
	markup, _ := s.page.Markup(region)
	NewHTMXResponse().BodyHTML(markup).Write(w)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.charts.Config(r.PathValue("canvas"))
	if !ok {
		NotFoundError("no chart").Write(w)
		return
	}
	NewHTMXResponse().BodyJSON(cfg).Write(w)
}

// handleCalendarEvents is the FullCalendar event feed. The feed's start and
// end query values are ignored; the full list is small.
func (s *Server) handleCalendarEvents(w http.ResponseWriter, r *http.Request) {
	events := s.calendar.Events()
	if events == nil {
		events = []view.CalendarEvent{}
	}
	NewHTMXResponse().BodyJSON(events).Write(w)
}

func (s *Server) handleCalendarDay(w http.ResponseWriter, r *http.Request) {
	ui := newHTMXUI(r, NewRequestBodyParser(r))
	ui.target = "#modal-body"
	form, ok := s.dash.DateClicked(r.Context(), ui, QueryDate(r, "date"))
	if !ok {
		s.writeUI(w, ui, nil)
		return
	}
	s.writeFragment(w, ui.resp, "bookingForm", form)
}

func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	if !s.dash.ShowSection(r.PathValue("name")) {
		NotFoundError("unknown section").Write(w)
		return
	}
	NewHTMXResponse().Status(http.StatusNoContent).Write(w)
}

// writeFragment renders a named template into resp and sends it.
func (s *Server) writeFragment(w http.ResponseWriter, resp *HTMXResponseBuilder, name string, data any) {
	html, err := s.renderer.Execute(name, data)
	if err != nil {
		s.logger.Error("Template execution failed", applog.FieldError, err, "template", name)
		InternalServerError("تعذر عرض النموذج").Write(w)
		return
	}
	resp.BodyHTML(html).Write(w)
}

// writeUI sends the events collected by ui. Validation failures answer 422
// and remote failures 502 so the page sees an unsuccessful request; a
// pending confirmation or prompt answers 204 so nothing is swapped.
func (s *Server) writeUI(w http.ResponseWriter, ui *htmxUI, err error) {
	var verr *dashboard.ValidationError
	switch {
	case ui.asked, err == nil, errors.Is(err, dashboard.ErrCancelled):
		ui.resp.Status(http.StatusNoContent)
	case errors.As(err, &verr):
		ui.resp.Status(http.StatusUnprocessableEntity)
	default:
		ui.resp.Status(http.StatusBadGateway)
	}
	ui.resp.Write(w)
}
