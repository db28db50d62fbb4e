package view

import (
	"sync"

	"bookings/internal/aggregate"
)

// CalendarEvent is the FullCalendar event shape.
type CalendarEvent struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Start           string         `json:"start"`
	BackgroundColor string         `json:"backgroundColor"`
	BorderColor     string         `json:"borderColor"`
	ExtendedProps   map[string]any `json:"extendedProps,omitempty"`
}

// CalendarWidget is the calendar handle. Date and event clicks are routed
// back to the dashboard by the HTTP layer.
type CalendarWidget interface {
	ReplaceEvents(events []CalendarEvent)
	UpdateSize()
}

// ToCalendarEvents converts aggregated events to the widget shape.
func ToCalendarEvents(events []aggregate.Event) []CalendarEvent {
	out := make([]CalendarEvent, 0, len(events))
	for _, e := range events {
		out = append(out, CalendarEvent{
			ID:              e.ID.String(),
			Title:           e.Title,
			Start:           e.Start,
			BackgroundColor: e.Color,
			BorderColor:     e.Color,
			ExtendedProps:   map[string]any{"status": string(e.Status)},
		})
	}
	return out
}

// CalendarBoard is the server-side CalendarWidget.
type CalendarBoard struct {
	mu     sync.RWMutex
	events []CalendarEvent
	epoch  uint64
	out    Broadcaster
}

func NewCalendarBoard(out Broadcaster) *CalendarBoard {
	if out == nil {
		out = nopBroadcaster{}
	}
	return &CalendarBoard{out: out}
}

func (c *CalendarBoard) ReplaceEvents(events []CalendarEvent) {
	c.mu.Lock()
	c.events = append([]CalendarEvent(nil), events...)
	c.mu.Unlock()
	c.out.Broadcast(Update{Kind: UpdateCalendar, Target: "calendar", Data: events})
}

func (c *CalendarBoard) UpdateSize() {
	c.mu.Lock()
	c.epoch++
	epoch := c.epoch
	c.mu.Unlock()
	c.out.Broadcast(Update{Kind: UpdateCalendarResize, Target: "calendar", Data: epoch})
}

// Events returns the current event list.
func (c *CalendarBoard) Events() []CalendarEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]CalendarEvent(nil), c.events...)
}

// ResizeEpoch counts UpdateSize calls.
func (c *CalendarBoard) ResizeEpoch() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch
}
