package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookings/internal/core"
)

func sar(v int64) core.Money { return core.Money{Cents: v * 100} }

func sample() []core.Booking {
	return []core.Booking{
		{ID: 1, Date: core.NewDate(2025, 1, 5), CustomerName: "A", TotalAmount: sar(1000), PaymentStatus: core.StatusCompleted},
		{ID: 2, Date: core.NewDate(2025, 1, 20), CustomerName: "B", TotalAmount: sar(500), PaymentStatus: core.StatusCompleted},
		{ID: 3, Date: core.NewDate(2025, 2, 1), CustomerName: "C", TotalAmount: sar(800), Remaining: sar(500), PaymentStatus: core.StatusPending},
	}
}

func TestMonthlyRevenueAndSplit(t *testing.T) {
	s := MonthlyRevenue(sample())
	assert.Equal(t, []string{"2025-01"}, s.Keys)
	assert.Equal(t, []string{"يناير 2025"}, s.Labels)
	assert.Equal(t, []float64{1500}, s.Floats())

	completed, pending := CompletionSplit(sample())
	assert.Equal(t, 2, completed)
	assert.Equal(t, 1, pending)
}

func TestMonthlyRevenueSortedByKey(t *testing.T) {
	bookings := []core.Booking{
		{Date: core.NewDate(2025, 3, 1), TotalAmount: sar(1), PaymentStatus: core.StatusCompleted},
		{Date: core.NewDate(2024, 11, 1), TotalAmount: sar(2), PaymentStatus: core.StatusCompleted},
		{Date: core.NewDate(2025, 1, 1), TotalAmount: sar(3), PaymentStatus: core.StatusCompleted},
		{Date: core.NewDate(2025, 1, 1), TotalAmount: sar(99), PaymentStatus: core.StatusPartial},
	}
	s := MonthlyRevenue(bookings)
	assert.Equal(t, []string{"2024-11", "2025-01", "2025-03"}, s.Keys)
	assert.Equal(t, []float64{2, 3, 1}, s.Floats())
}

func TestMonthlyRevenueEmpty(t *testing.T) {
	s := MonthlyRevenue(nil)
	assert.Empty(t, s.Keys)
	assert.Empty(t, s.Floats())
}

func TestUnparseableDateGroupsUnderZeroMonth(t *testing.T) {
	s := MonthlyRevenue([]core.Booking{{TotalAmount: sar(10), PaymentStatus: core.StatusCompleted}})
	assert.Equal(t, []string{"0001-01"}, s.Keys)
}

func TestPartialCountsAsPending(t *testing.T) {
	bookings := append(sample(), core.Booking{ID: 4, PaymentStatus: core.StatusPartial, Remaining: sar(100)}, core.Booking{ID: 5, PaymentStatus: "ملغي"})
	completed, pending := CompletionSplit(bookings)
	assert.Equal(t, 2, completed)
	assert.Equal(t, 3, pending)

	assert.Equal(t, Breakdown{Completed: 2, Pending: 1, Partial: 1, Other: 1}, StatusBreakdown(bookings))
	assert.Equal(t, sar(600), PendingTotal(bookings))
	assert.Len(t, PendingBookings(bookings), 3)
	assert.Len(t, CompletedBookings(bookings), 2)
}

func TestCalendarEvents(t *testing.T) {
	bookings := append(sample(), core.Booking{ID: 4, Date: core.NewDate(2025, 2, 2), CustomerName: "D", PaymentStatus: core.StatusPartial})
	events := CalendarEvents(bookings, "")
	require.Len(t, events, 4)

	assert.Equal(t, core.ID(3), events[2].ID)
	assert.Equal(t, "C (500.00 ر.س)", events[2].Title)
	assert.Equal(t, "2025-02-01", events[2].Start)
	assert.Equal(t, ColorCompleted, events[0].Color)
	assert.Equal(t, ColorPending, events[2].Color)
	assert.Equal(t, ColorOther, events[3].Color)
}

func TestUpcoming(t *testing.T) {
	now := time.Date(2025, 1, 10, 18, 30, 0, 0, core.Location)
	var bookings []core.Booking
	for i := 0; i < 8; i++ {
		bookings = append(bookings, core.Booking{ID: core.ID(i + 1), Date: core.NewDate(2025, 1, 20-i)})
	}
	bookings = append(bookings,
		core.Booking{ID: 100, Date: core.NewDate(2025, 1, 9)},
		core.Booking{ID: 101, Date: core.NewDate(2025, 1, 10)},
		core.Booking{ID: 102},
	)

	got := Upcoming(bookings, now, 0)
	require.Len(t, got, UpcomingLimit)
	assert.Equal(t, "2025-01-10", got[0].Date.ISO())
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].Date.Before(got[i-1].Date.Time))
	}
	for _, b := range got {
		assert.NotEqual(t, core.ID(100), b.ID)
		assert.NotEqual(t, core.ID(102), b.ID)
	}
}

func TestUpcomingIsStable(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, core.Location)
	day := core.NewDate(2025, 1, 3)
	got := Upcoming([]core.Booking{{ID: 1, Date: day}, {ID: 2, Date: day}, {ID: 3, Date: day}}, now, 5)
	require.Len(t, got, 3)
	assert.Equal(t, []core.ID{1, 2, 3}, []core.ID{got[0].ID, got[1].ID, got[2].ID})
}

func TestTotalsAndDayLookup(t *testing.T) {
	assert.Equal(t, sar(1500), RevenueTotal(sample()))
	assert.Equal(t, sar(500), PendingTotal(sample()))
	assert.Equal(t, sar(15), ExpenseTotal([]core.Expense{{Amount: sar(10)}, {Amount: sar(5)}}))

	on := BookingsOn(sample(), core.NewDate(2025, 1, 20))
	require.Len(t, on, 1)
	assert.Equal(t, core.ID(2), on[0].ID)
	assert.Empty(t, BookingsOn(sample(), core.Date{}))
}
