package http

import (
	"context"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"bookings/internal/dashboard"
	applog "bookings/internal/log"
	"bookings/internal/middleware/ratelimit"
	"bookings/internal/middleware/security"
	"bookings/internal/middleware/trace"
	"bookings/internal/view"
	appweb "bookings/web"
)

// Config is the server's own configuration.
type Config struct {
	Addr string
	// Token guards every page and partial; empty disables the guard.
	Token string
	// WritesPerMinute caps POST requests per client IP; 0 disables the limit.
	WritesPerMinute int
	// Backend names the remote transport for /readyz.
	Backend string
}

// Deps are the collaborators the handlers drive.
type Deps struct {
	Dashboard *dashboard.Dashboard
	Page      *view.Page
	Charts    *view.ChartBoard
	Calendar  *view.CalendarBoard
	Sections  *view.Sections
	Renderer  *view.Renderer
	// Live serves /ws; nil disables live updates.
	Live http.Handler
	// Checks are run by /readyz, keyed by name.
	Checks map[string]func(context.Context) error
	Logger *applog.Logger
}

type Server struct {
	http.Server

	dash     *dashboard.Dashboard
	page     *view.Page
	charts   *view.ChartBoard
	calendar *view.CalendarBoard
	sections *view.Sections
	renderer *view.Renderer
	checks   map[string]func(context.Context) error
	backend  string

	guard    tokenGuard
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	logger   *applog.Logger

	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware and returns a ready-to-run server.
func NewServer(cfg Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	var limiter *ratelimit.Limiter
	if cfg.WritesPerMinute > 0 {
		limits := ratelimit.DefaultConfig()
		limits.RequestsPerMinute = cfg.WritesPerMinute
		limiter = ratelimit.NewLimiter(limits)
	}
	detector := security.NewDetector(logger)

	s := &Server{
		dash:      deps.Dashboard,
		page:      deps.Page,
		charts:    deps.Charts,
		calendar:  deps.Calendar,
		sections:  deps.Sections,
		renderer:  deps.Renderer,
		checks:    deps.Checks,
		backend:   cfg.Backend,
		guard:     tokenGuard{token: cfg.Token},
		limiter:   limiter,
		detector:  detector,
		tracer:    trace.NewMiddleware(logger, detector.ExtractClientIP),
		logger:    logger.WithComponent(applog.ComponentHTTP),
		startedAt: time.Now(),
	}

	mux := http.NewServeMux()
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /{$}", s.handleIndex)

	protect := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.guard.require(h))
	}
	if deps.Live != nil {
		mux.Handle("GET /ws", s.guard.require(deps.Live))
	}
	protect("POST /refresh", s.handleRefresh)

	protect("GET /ui/regions/{region}", s.handleRegion)
	protect("GET /ui/charts/{canvas}", s.handleChart)
	protect("GET /ui/calendar/events", s.handleCalendarEvents)
	protect("GET /ui/calendar/day", s.handleCalendarDay)
	protect("POST /ui/sections/{name}", s.handleSection)
	protect("GET /ui/bookings/new", s.handleNewBooking)
	protect("GET /ui/bookings/{id}/edit", s.handleEditBooking)
	protect("POST /ui/bookings/remaining", s.handleRemainingPreview)

	protect("POST /bookings", s.handleSaveBooking)
	protect("POST /bookings/{id}/delete", s.handleDeleteBooking)
	protect("POST /bookings/{id}/payment", s.handleRecordPayment)
	protect("GET /bookings/{id}/remind", s.handleRemind)

	protect("POST /expenses", s.handleAddExpense)
	protect("POST /expenses/{id}/delete", s.handleDeleteExpense)

	protect("POST /users", s.handleAddUser)
	protect("POST /users/{id}/delete", s.handleDeleteUser)
	protect("GET /users/{id}/edit", s.handleEditUser)

	protect("POST /settings/general", s.handleGeneralSettings)
	protect("POST /settings/whatsapp", s.handleWhatsAppSettings)

	var handler http.Handler = mux
	if s.limiter != nil {
		handler = s.limiter.Middleware(detector.ExtractClientIP, s.onRateLimit)(handler)
	}
	handler = detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldPath, r.URL.Path)
	NewHTMXResponse().
		Status(http.StatusTooManyRequests).
		TriggerErrorNotification("طلبات كثيرة، حاول لاحقاً").
		Write(w)
}

// Shutdown stops the limiter's cleanup loop and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		err = s.Server.Shutdown(ctx)
	})
	return err
}
