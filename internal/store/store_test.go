package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookings/internal/core"
)

func TestLateResultIsDropped(t *testing.T) {
	s := New()
	first := s.Begin(Bookings)
	second := s.Begin(Bookings)

	require.True(t, s.ReplaceBookings(second, []core.Booking{{ID: 2}}))
	assert.False(t, s.ReplaceBookings(first, []core.Booking{{ID: 1}}))

	got := s.Bookings()
	require.Len(t, got, 1)
	assert.Equal(t, core.ID(2), got[0].ID)
	assert.Equal(t, second.Generation, s.Generation(Bookings))
}

func TestTicketIsBoundToCollection(t *testing.T) {
	s := New()
	tk := s.Begin(Expenses)
	assert.False(t, s.ReplaceUsers(tk, []core.User{{ID: 1}}))
	assert.Empty(t, s.Users())
	assert.True(t, s.ReplaceExpenses(tk, nil))
}

func TestTicketAcceptedOnce(t *testing.T) {
	s := New()
	tk := s.Begin(Statistics)
	assert.True(t, s.ReplaceStatistics(tk, core.Statistics{TotalBookings: 3}))
	assert.False(t, s.ReplaceStatistics(tk, core.Statistics{TotalBookings: 9}))
	assert.Equal(t, 3, s.Statistics().TotalBookings)
}

func TestReadersGetCopies(t *testing.T) {
	s := New()
	s.ReplaceBookings(s.Begin(Bookings), []core.Booking{{ID: 1, CustomerName: "Ali"}})
	s.ReplaceSettings(s.Begin(Settings), core.Settings{core.SettingCurrency: "$"})

	b := s.Bookings()
	b[0].CustomerName = "changed"
	st := s.Settings()
	st[core.SettingCurrency] = "€"
	snap := s.Snapshot()
	snap.Bookings[0].Notes = "x"

	got, ok := s.Booking(1)
	require.True(t, ok)
	assert.Equal(t, "Ali", got.CustomerName)
	assert.Empty(t, got.Notes)
	assert.Equal(t, "$", s.Settings().Currency())
}

func TestSourceSliceNotAliased(t *testing.T) {
	s := New()
	src := []core.Expense{{ID: 1, Description: "a"}}
	s.ReplaceExpenses(s.Begin(Expenses), src)
	src[0].Description = "b"
	e, ok := s.Expense(1)
	require.True(t, ok)
	assert.Equal(t, "a", e.Description)
}

func TestLookupsMiss(t *testing.T) {
	s := New()
	_, ok := s.Booking(1)
	assert.False(t, ok)
	_, ok = s.Expense(1)
	assert.False(t, ok)
	_, ok = s.User(1)
	assert.False(t, ok)
}

func TestEditing(t *testing.T) {
	s := New()
	_, ok := s.Editing()
	assert.False(t, ok)

	id := core.ID(5)
	s.SetEditing(&id)
	id = 6
	got, ok := s.Editing()
	require.True(t, ok)
	assert.Equal(t, core.ID(5), got)
	assert.Equal(t, core.ID(5), *s.Snapshot().EditingBooking)

	s.SetEditing(nil)
	_, ok = s.Editing()
	assert.False(t, ok)
}
