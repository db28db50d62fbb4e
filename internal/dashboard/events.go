package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Event is the recorded outcome of one mutation.
type Event struct {
	ID        string    `json:"id"`
	At        time.Time `json:"at"`
	Operation string    `json:"operation"`
	Subject   string    `json:"subject"`
	OK        bool      `json:"ok"`
	Message   string    `json:"message,omitempty"`
}

// EventSink receives mutation outcomes.
type EventSink interface {
	Record(ctx context.Context, e Event) error
}

// History supplies previously recorded events, newest first.
type History interface {
	Recent(ctx context.Context, limit int) ([]Event, error)
}

type fanout []EventSink

// Sinks combines sinks; nil entries are skipped.
func Sinks(sinks ...EventSink) EventSink {
	var out fanout
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (f fanout) Record(ctx context.Context, e Event) error {
	var errs []error
	for _, s := range f {
		if err := s.Record(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// recentLog keeps the newest events for the activity region.
type recentLog struct {
	mu     sync.Mutex
	limit  int
	events []Event
}

func newRecentLog(limit int) *recentLog {
	return &recentLog{limit: limit}
}

func (l *recentLog) add(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append([]Event{e}, l.events...)
	if len(l.events) > l.limit {
		l.events = l.events[:l.limit]
	}
}

// seed replaces the log with older history, newest first.
func (l *recentLog) seed(events []Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(events) > l.limit {
		events = events[:l.limit]
	}
	l.events = append([]Event(nil), events...)
}

func (l *recentLog) list() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event(nil), l.events...)
}
