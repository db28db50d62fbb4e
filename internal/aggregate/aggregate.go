// Package aggregate derives chart datasets, calendar events and totals from
// the booking and expense collections. Everything here is pure and is
// recomputed on each render.
package aggregate

import (
	"sort"
	"time"

	"bookings/internal/core"
	"bookings/internal/format"
)

const (
	ColorCompleted = "#27ae60"
	ColorPending   = "#e74c3c"
	ColorOther     = "#f39c12"

	// UpcomingLimit is how many upcoming bookings the overview lists.
	UpcomingLimit = 5
)

// Series is the monthly revenue dataset. The three slices are parallel and
// ordered by ascending month key.
type Series struct {
	Keys   []string
	Labels []string
	Values []core.Money
}

// Floats returns Values as chart numbers.
func (s Series) Floats() []float64 {
	out := make([]float64, len(s.Values))
	for i, v := range s.Values {
		out[i] = v.Float()
	}
	return out
}

// Breakdown counts bookings per payment status.
type Breakdown struct {
	Completed int
	Pending   int
	Partial   int
	Other     int
}

// Event is one calendar entry.
type Event struct {
	ID     core.ID
	Title  string
	Start  string
	Color  string
	Status core.PaymentStatus
}

// MonthlyRevenue sums TotalAmount of completed bookings per month.
func MonthlyRevenue(bookings []core.Booking) Series {
	sums := map[string]int64{}
	for _, b := range bookings {
		if !b.PaymentStatus.IsCompleted() {
			continue
		}
		sums[b.Date.MonthKey()] += b.TotalAmount.Cents
	}
	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := Series{
		Keys:   keys,
		Labels: make([]string, len(keys)),
		Values: make([]core.Money, len(keys)),
	}
	for i, k := range keys {
		s.Labels[i] = format.MonthLabel(k)
		s.Values[i] = core.Money{Cents: sums[k]}
	}
	return s
}

// CompletionSplit counts completed bookings against everything else.
func CompletionSplit(bookings []core.Booking) (completed, pending int) {
	for _, b := range bookings {
		if b.PaymentStatus.IsCompleted() {
			completed++
		} else {
			pending++
		}
	}
	return completed, pending
}

func StatusBreakdown(bookings []core.Booking) Breakdown {
	var out Breakdown
	for _, b := range bookings {
		switch b.PaymentStatus {
		case core.StatusCompleted:
			out.Completed++
		case core.StatusPending:
			out.Pending++
		case core.StatusPartial:
			out.Partial++
		default:
			out.Other++
		}
	}
	return out
}

// StatusColor maps a payment status to its calendar color.
func StatusColor(s core.PaymentStatus) string {
	switch s {
	case core.StatusCompleted:
		return ColorCompleted
	case core.StatusPending:
		return ColorPending
	default:
		return ColorOther
	}
}

// CalendarEvents builds one event per booking titled "name (remaining)".
func CalendarEvents(bookings []core.Booking, currency string) []Event {
	out := make([]Event, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, Event{
			ID:     b.ID,
			Title:  b.CustomerName + " (" + format.Currency(b.Remaining, currency) + ")",
			Start:  b.Date.ISO(),
			Color:  StatusColor(b.PaymentStatus),
			Status: b.PaymentStatus,
		})
	}
	return out
}

// Upcoming returns bookings dated today or later, earliest first, at most
// limit of them. limit <= 0 means UpcomingLimit.
func Upcoming(bookings []core.Booking, now time.Time, limit int) []core.Booking {
	if limit <= 0 {
		limit = UpcomingLimit
	}
	today := core.DateOf(now)
	out := make([]core.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Date.IsZero() || b.Date.Before(today.Time) {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date.Time)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func CompletedBookings(bookings []core.Booking) []core.Booking {
	return filter(bookings, func(b core.Booking) bool { return b.PaymentStatus.IsCompleted() })
}

func PendingBookings(bookings []core.Booking) []core.Booking {
	return filter(bookings, func(b core.Booking) bool { return !b.PaymentStatus.IsCompleted() })
}

// BookingsOn returns the bookings whose calendar date equals day.
func BookingsOn(bookings []core.Booking, day core.Date) []core.Booking {
	key := day.ISO()
	return filter(bookings, func(b core.Booking) bool { return key != "" && b.Date.ISO() == key })
}

// RevenueTotal sums TotalAmount over completed bookings.
func RevenueTotal(bookings []core.Booking) core.Money {
	var m core.Money
	for _, b := range bookings {
		if b.PaymentStatus.IsCompleted() {
			m = m.Add(b.TotalAmount)
		}
	}
	return m
}

// PendingTotal sums Remaining over bookings that are not completed.
func PendingTotal(bookings []core.Booking) core.Money {
	var m core.Money
	for _, b := range bookings {
		if !b.PaymentStatus.IsCompleted() {
			m = m.Add(b.Remaining)
		}
	}
	return m
}

func ExpenseTotal(expenses []core.Expense) core.Money {
	var m core.Money
	for _, e := range expenses {
		m = m.Add(e.Amount)
	}
	return m
}

func filter(bookings []core.Booking, keep func(core.Booking) bool) []core.Booking {
	out := make([]core.Booking, 0, len(bookings))
	for _, b := range bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}
