package view

import (
	"bytes"
	"fmt"
	"html/template"
	"sync"
	"time"

	"bookings/internal/aggregate"
	"bookings/internal/core"
	applog "bookings/internal/log"
)

// Activity is one recent-activity line.
type Activity struct {
	At        time.Time
	Operation string
	Subject   string
	OK        bool
	Message   string
}

type (
	statsData struct {
		Stats     core.Statistics
		Breakdown aggregate.Breakdown
		Currency  string
	}
	bookingRows struct {
		Rows     []core.Booking
		Total    core.Money
		Currency string
	}
	expenseRows struct {
		Rows     []core.Expense
		Total    core.Money
		Currency string
	}
	userRows struct {
		Rows []core.User
	}
	settingsData struct {
		Settings core.Settings
		Currency string
	}
	activityRows struct {
		Rows []Activity
	}
)

// Renderer turns state into region markup, chart configs and calendar
// events. Every call replaces its target in full.
type Renderer struct {
	tmpl     *template.Template
	surface  Surface
	charts   ChartHost
	calendar CalendarWidget
	logger   *applog.Logger

	mu   sync.Mutex
	live map[string]Chart
}

func NewRenderer(tmpl *template.Template, surface Surface, charts ChartHost, calendar CalendarWidget, logger *applog.Logger) *Renderer {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Renderer{
		tmpl:     tmpl,
		surface:  surface,
		charts:   charts,
		calendar: calendar,
		logger:   logger.WithComponent(applog.ComponentView),
		live:     make(map[string]Chart),
	}
}

// Execute renders a named template to markup without touching the surface.
// Used for dialogs and fragments returned directly to a request.
func (r *Renderer) Execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

func (r *Renderer) region(region Region, data any) error {
	markup, err := r.Execute(string(region), data)
	if err != nil {
		r.logger.Error("Region render failed", applog.FieldRegion, region, applog.FieldError, err)
		return err
	}
	r.surface.Replace(region, markup)
	return nil
}

// StatCards shows the server statistics next to a per-status count of the
// loaded bookings, where partial payments get their own bucket.
func (r *Renderer) StatCards(st core.Statistics, bookings []core.Booking, currency string) error {
	return r.region(RegionStatCards, statsData{
		Stats:     st,
		Breakdown: aggregate.StatusBreakdown(bookings),
		Currency:  currency,
	})
}

func (r *Renderer) BookingsTable(bookings []core.Booking, currency string) error {
	return r.region(RegionBookings, bookingRows{Rows: bookings, Currency: currency})
}

// RevenueTable lists completed bookings with their total.
func (r *Renderer) RevenueTable(bookings []core.Booking, currency string) error {
	return r.region(RegionRevenue, bookingRows{
		Rows:     aggregate.CompletedBookings(bookings),
		Total:    aggregate.RevenueTotal(bookings),
		Currency: currency,
	})
}

// PendingTable lists bookings that still owe money.
func (r *Renderer) PendingTable(bookings []core.Booking, currency string) error {
	return r.region(RegionPending, bookingRows{
		Rows:     aggregate.PendingBookings(bookings),
		Total:    aggregate.PendingTotal(bookings),
		Currency: currency,
	})
}

func (r *Renderer) ExpensesTable(expenses []core.Expense, currency string) error {
	return r.region(RegionExpenses, expenseRows{
		Rows:     expenses,
		Total:    aggregate.ExpenseTotal(expenses),
		Currency: currency,
	})
}

func (r *Renderer) UsersTable(users []core.User) error {
	return r.region(RegionUsers, userRows{Rows: users})
}

func (r *Renderer) Upcoming(bookings []core.Booking, now time.Time, currency string) error {
	return r.region(RegionUpcoming, bookingRows{
		Rows:     aggregate.Upcoming(bookings, now, aggregate.UpcomingLimit),
		Currency: currency,
	})
}

func (r *Renderer) SettingsForm(settings core.Settings) error {
	return r.region(RegionSettings, settingsData{Settings: settings, Currency: settings.Currency()})
}

func (r *Renderer) ActivityLog(entries []Activity) error {
	return r.region(RegionActivity, activityRows{Rows: entries})
}

// Charts redraws both charts from bookings.
func (r *Renderer) Charts(bookings []core.Booking) error {
	if err := r.draw(CanvasRevenue, RevenueChartConfig(aggregate.MonthlyRevenue(bookings))); err != nil {
		return err
	}
	completed, pending := aggregate.CompletionSplit(bookings)
	return r.draw(CanvasBookings, BookingsChartConfig(completed, pending))
}

// draw destroys the canvas's previous instance before constructing the next.
func (r *Renderer) draw(canvas string, cfg ChartConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.live[canvas]; ok {
		prev.Destroy()
		delete(r.live, canvas)
	}
	c, err := r.charts.Construct(canvas, cfg)
	if err != nil {
		r.logger.Error("Chart construction failed", "canvas", canvas, applog.FieldError, err)
		return fmt.Errorf("construct %s: %w", canvas, err)
	}
	r.live[canvas] = c
	return nil
}

func (r *Renderer) Calendar(bookings []core.Booking, currency string) {
	if r.calendar == nil {
		return
	}
	r.calendar.ReplaceEvents(ToCalendarEvents(aggregate.CalendarEvents(bookings, currency)))
}

func RevenueChartConfig(s aggregate.Series) ChartConfig {
	return ChartConfig{
		Type: "line",
		Data: ChartData{
			Labels: append([]string{}, s.Labels...),
			Datasets: []Dataset{{
				Label:           "الإيرادات",
				Data:            s.Floats(),
				BorderColor:     aggregate.ColorCompleted,
				BackgroundColor: "rgba(39, 174, 96, 0.1)",
				Tension:         0.4,
				Fill:            true,
			}},
		},
		Options: map[string]any{"responsive": true, "maintainAspectRatio": false},
	}
}

func BookingsChartConfig(completed, pending int) ChartConfig {
	return ChartConfig{
		Type: "doughnut",
		Data: ChartData{
			Labels: []string{"مكتملة", "معلقة"},
			Datasets: []Dataset{{
				Data:            []float64{float64(completed), float64(pending)},
				BackgroundColor: []string{aggregate.ColorCompleted, aggregate.ColorPending},
			}},
		},
		Options: map[string]any{"responsive": true, "maintainAspectRatio": false},
	}
}
