// Package store holds the dashboard's application state: the last accepted
// copy of every remote collection plus the booking being edited.
package store

import (
	"sync"

	"bookings/internal/core"
)

// Collection names a wholesale-replaced part of the state.
type Collection string

const (
	Statistics Collection = "statistics"
	Bookings   Collection = "bookings"
	Expenses   Collection = "expenses"
	Users      Collection = "users"
	Settings   Collection = "settings"
)

// All lists collections in load order.
func All() []Collection {
	return []Collection{Statistics, Bookings, Expenses, Users, Settings}
}

// Ticket is issued when a load starts. Its result is accepted only if no
// later-issued load for the same collection has already been accepted.
type Ticket struct {
	Collection Collection
	Generation uint64
}

// Snapshot is an independent copy of the whole state.
type Snapshot struct {
	Statistics     core.Statistics
	Bookings       []core.Booking
	Expenses       []core.Expense
	Users          []core.User
	Settings       core.Settings
	EditingBooking *core.ID
}

type State struct {
	mu       sync.RWMutex
	next     uint64
	accepted map[Collection]uint64

	statistics core.Statistics
	bookings   []core.Booking
	expenses   []core.Expense
	users      []core.User
	settings   core.Settings
	editing    *core.ID
}

func New() *State {
	return &State{accepted: make(map[Collection]uint64), settings: core.Settings{}}
}

// Begin issues a ticket for loading c. Generations increase across all
// collections.
func (s *State) Begin(c Collection) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return Ticket{Collection: c, Generation: s.next}
}

// Generation returns the last accepted generation of c, 0 if none.
func (s *State) Generation(c Collection) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accepted[c]
}

// accept must be called with mu held.
func (s *State) accept(t Ticket, c Collection) bool {
	if t.Collection != c || t.Generation <= s.accepted[c] {
		return false
	}
	s.accepted[c] = t.Generation
	return true
}

func (s *State) ReplaceStatistics(t Ticket, st core.Statistics) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.accept(t, Statistics) {
		return false
	}
	s.statistics = st
	return true
}

func (s *State) ReplaceBookings(t Ticket, list []core.Booking) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.accept(t, Bookings) {
		return false
	}
	s.bookings = append([]core.Booking(nil), list...)
	return true
}

func (s *State) ReplaceExpenses(t Ticket, list []core.Expense) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.accept(t, Expenses) {
		return false
	}
	s.expenses = append([]core.Expense(nil), list...)
	return true
}

func (s *State) ReplaceUsers(t Ticket, list []core.User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.accept(t, Users) {
		return false
	}
	s.users = append([]core.User(nil), list...)
	return true
}

func (s *State) ReplaceSettings(t Ticket, st core.Settings) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.accept(t, Settings) {
		return false
	}
	s.settings = st.Clone()
	return true
}

func (s *State) Statistics() core.Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statistics
}

func (s *State) Bookings() []core.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Booking(nil), s.bookings...)
}

func (s *State) Expenses() []core.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Expense(nil), s.expenses...)
}

func (s *State) Users() []core.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.User(nil), s.users...)
}

func (s *State) Settings() core.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone()
}

func (s *State) Booking(id core.ID) (core.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bookings {
		if b.ID == id {
			return b, true
		}
	}
	return core.Booking{}, false
}

func (s *State) Expense(id core.ID) (core.Expense, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.expenses {
		if e.ID == id {
			return e, true
		}
	}
	return core.Expense{}, false
}

func (s *State) User(id core.ID) (core.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return core.User{}, false
}

// SetEditing records the booking shown in the edit form; nil clears it.
func (s *State) SetEditing(id *core.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == nil {
		s.editing = nil
		return
	}
	v := *id
	s.editing = &v
}

func (s *State) Editing() (core.ID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.editing == nil {
		return 0, false
	}
	return *s.editing, true
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Statistics: s.statistics,
		Bookings:   append([]core.Booking(nil), s.bookings...),
		Expenses:   append([]core.Expense(nil), s.expenses...),
		Users:      append([]core.User(nil), s.users...),
		Settings:   s.settings.Clone(),
	}
	if s.editing != nil {
		v := *s.editing
		snap.EditingBooking = &v
	}
	return snap
}
