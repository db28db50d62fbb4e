// Package view renders dashboard regions and owns the chart and calendar
// widget handles. The browser only mirrors what this package produces.
package view

import (
	"html/template"
	"sync"
)

// Region identifies a replaceable block of the page.
type Region string

const (
	RegionStatCards Region = "statCards"
	RegionBookings  Region = "bookingsTable"
	RegionRevenue   Region = "revenueTable"
	RegionPending   Region = "pendingTable"
	RegionExpenses  Region = "expensesTable"
	RegionUsers     Region = "usersTable"
	RegionUpcoming  Region = "upcomingBookings"
	RegionSettings  Region = "settingsForm"
	RegionActivity  Region = "activityLog"
)

// Regions lists every region in page order.
func Regions() []Region {
	return []Region{
		RegionStatCards, RegionUpcoming, RegionBookings, RegionRevenue, RegionPending,
		RegionExpenses, RegionUsers, RegionSettings, RegionActivity,
	}
}

// Valid reports whether r names a known region.
func (r Region) Valid() bool {
	for _, known := range Regions() {
		if known == r {
			return true
		}
	}
	return false
}

// Surface receives the full markup of a region each time it is rendered.
type Surface interface {
	Replace(region Region, markup template.HTML)
}

// Update is a change pushed to connected browsers.
type Update struct {
	Kind   string `json:"kind"`
	Target string `json:"target"`
	HTML   string `json:"html,omitempty"`
	Data   any    `json:"data,omitempty"`
}

const (
	UpdateRegion         = "region"
	UpdateChart          = "chart"
	UpdateChartDestroy   = "chart-destroy"
	UpdateCalendar       = "calendar"
	UpdateCalendarResize = "calendar-resize"
	UpdateSection        = "section"
)

// Broadcaster fans updates out to open dashboards.
type Broadcaster interface {
	Broadcast(u Update)
}

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(Update) {}

// Page is the server-side Surface. It keeps the latest markup per region so
// full page loads and region requests show the current state.
type Page struct {
	mu      sync.RWMutex
	regions map[Region]template.HTML
	out     Broadcaster
}

func NewPage(out Broadcaster) *Page {
	if out == nil {
		out = nopBroadcaster{}
	}
	return &Page{regions: make(map[Region]template.HTML), out: out}
}

func (p *Page) Replace(region Region, markup template.HTML) {
	p.mu.Lock()
	p.regions[region] = markup
	p.mu.Unlock()
	p.out.Broadcast(Update{Kind: UpdateRegion, Target: string(region), HTML: string(markup)})
}

// Markup returns the last markup rendered into region.
func (p *Page) Markup(region Region) (template.HTML, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	m, ok := p.regions[region]
	return m, ok
}

// All returns a copy of every rendered region.
func (p *Page) All() map[Region]template.HTML {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[Region]template.HTML, len(p.regions))
	for k, v := range p.regions {
		out[k] = v
	}
	return out
}
