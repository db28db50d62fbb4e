// Package dashboard orchestrates loads, renders and mutations. It is the
// single owner of the refresh cycle: every change goes through Refresh.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bookings/internal/core"
	applog "bookings/internal/log"
	"bookings/internal/store"
	"bookings/internal/view"
)

const activityLimit = 10

type Options struct {
	// ExpenseDelete issues deleteExpense on the remote API. When false the
	// delete flow only reloads expenses, for backends without the endpoint.
	ExpenseDelete bool
	Now           func() time.Time
	Sink          EventSink
	History       History
	Logger        *applog.Logger
}

type Dashboard struct {
	api      API
	state    *store.State
	renderer *view.Renderer
	sections *view.Sections
	sink     EventSink
	history  History
	logger   *applog.Logger
	now      func() time.Time

	expenseDelete bool
	recent        *recentLog

	mu      sync.Mutex
	started bool

	// paint serializes snapshot-and-render so the last painter always
	// reads the newest accepted state.
	paint sync.Mutex
}

func New(api API, state *store.State, renderer *view.Renderer, sections *view.Sections, opts Options) *Dashboard {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = applog.Discard()
	}
	if opts.Sink == nil {
		opts.Sink = Sinks()
	}
	return &Dashboard{
		api:           api,
		state:         state,
		renderer:      renderer,
		sections:      sections,
		sink:          opts.Sink,
		history:       opts.History,
		logger:        opts.Logger.WithComponent(applog.ComponentDashboard),
		now:           opts.Now,
		expenseDelete: opts.ExpenseDelete,
		recent:        newRecentLog(activityLimit),
	}
}

// Start runs the page guard and, on the first accepted visit, the initial
// load. Later visits only re-check the guard.
func (d *Dashboard) Start(ctx context.Context, guard PageGuard) error {
	if guard != nil && !guard.Allow(ctx) {
		return ErrPageGuard
	}
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		return nil
	}
	d.started = true
	d.mu.Unlock()

	d.seedActivity(ctx)
	_ = d.LoadAll(ctx)
	return nil
}

// Started reports whether an accepted visit has initialized the dashboard.
func (d *Dashboard) Started() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.started
}

// Tick is the periodic refresh. It does nothing until Start succeeded.
func (d *Dashboard) Tick(ctx context.Context) {
	if !d.Started() {
		return
	}
	_ = d.LoadAll(ctx)
}

// LoadAll loads every collection in order, one after the other. The first
// failure is logged and ends the cycle; collections not yet reached keep
// their previous contents.
func (d *Dashboard) LoadAll(ctx context.Context) error {
	return d.Refresh(ctx, store.All()...)
}

// Refresh reloads and re-renders the given collections in order.
func (d *Dashboard) Refresh(ctx context.Context, collections ...store.Collection) error {
	for _, c := range collections {
		if err := d.load(ctx, c); err != nil {
			d.logger.ErrorContext(ctx, "Load failed",
				applog.FieldOperation, applog.OpLoad,
				applog.FieldCollection, c,
				applog.FieldError, err)
			return err
		}
	}
	return nil
}

func (d *Dashboard) load(ctx context.Context, c store.Collection) error {
	t := d.state.Begin(c)
	var accepted bool
	switch c {
	case store.Statistics:
		st, err := d.api.Statistics(ctx)
		if err != nil {
			return fmt.Errorf("load %s: %w", c, err)
		}
		accepted = d.state.ReplaceStatistics(t, st)
	case store.Bookings:
		list, err := d.api.Bookings(ctx)
		if err != nil {
			return fmt.Errorf("load %s: %w", c, err)
		}
		accepted = d.state.ReplaceBookings(t, list)
	case store.Expenses:
		list, err := d.api.Expenses(ctx)
		if err != nil {
			return fmt.Errorf("load %s: %w", c, err)
		}
		accepted = d.state.ReplaceExpenses(t, list)
	case store.Users:
		list, err := d.api.Users(ctx)
		if err != nil {
			return fmt.Errorf("load %s: %w", c, err)
		}
		accepted = d.state.ReplaceUsers(t, list)
	case store.Settings:
		st, err := d.api.Settings(ctx)
		if err != nil {
			return fmt.Errorf("load %s: %w", c, err)
		}
		accepted = d.state.ReplaceSettings(t, st)
	default:
		return fmt.Errorf("unknown collection %q", c)
	}
	if !accepted {
		d.logger.DebugContext(ctx, "Dropped stale load",
			applog.FieldCollection, c, applog.FieldGeneration, t.Generation)
		return nil
	}
	d.render(c)
	return nil
}

// render repaints the regions that depend on c.
func (d *Dashboard) render(c store.Collection) {
	d.paint.Lock()
	defer d.paint.Unlock()
	snap := d.state.Snapshot()
	cur := snap.Settings.Currency()
	r := d.renderer
	switch c {
	case store.Statistics:
		_ = r.StatCards(snap.Statistics, snap.Bookings, cur)
		_ = r.Charts(snap.Bookings)
		_ = r.Upcoming(snap.Bookings, d.now(), cur)
	case store.Bookings:
		_ = r.StatCards(snap.Statistics, snap.Bookings, cur)
		_ = r.BookingsTable(snap.Bookings, cur)
		_ = r.RevenueTable(snap.Bookings, cur)
		_ = r.PendingTable(snap.Bookings, cur)
		r.Calendar(snap.Bookings, cur)
	case store.Expenses:
		_ = r.ExpensesTable(snap.Expenses, cur)
	case store.Users:
		_ = r.UsersTable(snap.Users)
	case store.Settings:
		// The currency symbol appears in most regions.
		d.renderAll(snap)
	}
}

// RenderAll repaints every region and widget from the current state.
func (d *Dashboard) RenderAll() {
	d.paint.Lock()
	defer d.paint.Unlock()
	d.renderAll(d.state.Snapshot())
}

func (d *Dashboard) renderAll(snap store.Snapshot) {
	cur := snap.Settings.Currency()
	r := d.renderer
	_ = r.StatCards(snap.Statistics, snap.Bookings, cur)
	_ = r.Charts(snap.Bookings)
	_ = r.Upcoming(snap.Bookings, d.now(), cur)
	_ = r.BookingsTable(snap.Bookings, cur)
	_ = r.RevenueTable(snap.Bookings, cur)
	_ = r.PendingTable(snap.Bookings, cur)
	r.Calendar(snap.Bookings, cur)
	_ = r.ExpensesTable(snap.Expenses, cur)
	_ = r.UsersTable(snap.Users)
	_ = r.SettingsForm(snap.Settings)
	d.paintActivity()
}

// Title is the facility name shown in the page header.
func (d *Dashboard) Title() string {
	return d.state.Settings().Get(core.SettingFacilityName)
}

// ShowSection switches the visible section. Unknown names are ignored.
func (d *Dashboard) ShowSection(name string) bool {
	return d.sections.Show(view.Section(name))
}

func (d *Dashboard) seedActivity(ctx context.Context) {
	if d.history != nil {
		events, err := d.history.Recent(ctx, activityLimit)
		if err != nil {
			d.logger.WarnContext(ctx, "Activity history unavailable", applog.FieldError, err)
		} else {
			d.recent.seed(events)
		}
	}
	d.renderActivity()
}

func (d *Dashboard) renderActivity() {
	d.paint.Lock()
	defer d.paint.Unlock()
	d.paintActivity()
}

func (d *Dashboard) paintActivity() {
	events := d.recent.list()
	rows := make([]view.Activity, 0, len(events))
	for _, e := range events {
		rows = append(rows, view.Activity{At: e.At, Operation: operationLabel(e.Operation), Subject: e.Subject, OK: e.OK, Message: e.Message})
	}
	_ = d.renderer.ActivityLog(rows)
}
