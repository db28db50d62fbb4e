package view

import "sync"

// Section is a top-level page view. Exactly one is visible at a time.
type Section string

const (
	SectionOverview Section = "overview"
	SectionBookings Section = "bookings"
	SectionRevenue  Section = "revenue"
	SectionPending  Section = "pending"
	SectionExpenses Section = "expenses"
	SectionUsers    Section = "users"
	SectionSettings Section = "settings"
)

func SectionList() []Section {
	return []Section{
		SectionOverview, SectionBookings, SectionRevenue, SectionPending,
		SectionExpenses, SectionUsers, SectionSettings,
	}
}

func (s Section) Valid() bool {
	for _, known := range SectionList() {
		if known == s {
			return true
		}
	}
	return false
}

// Sections is the visibility state machine. Entering the bookings section
// resizes the calendar, which cannot measure itself while hidden.
type Sections struct {
	mu       sync.RWMutex
	current  Section
	calendar CalendarWidget
	out      Broadcaster
}

// NewSections starts in initial, or overview when initial is unknown.
func NewSections(initial Section, calendar CalendarWidget, out Broadcaster) *Sections {
	if !initial.Valid() {
		initial = SectionOverview
	}
	if out == nil {
		out = nopBroadcaster{}
	}
	return &Sections{current: initial, calendar: calendar, out: out}
}

// Show makes target the visible section. Unknown targets are ignored and
// reported as false.
func (s *Sections) Show(target Section) bool {
	if !target.Valid() {
		return false
	}
	s.mu.Lock()
	s.current = target
	s.mu.Unlock()

	s.out.Broadcast(Update{Kind: UpdateSection, Target: string(target)})
	if target == SectionBookings && s.calendar != nil {
		s.calendar.UpdateSize()
	}
	return true
}

func (s *Sections) Current() Section {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Visible reports whether name is the shown section; it is also what marks
// the matching nav link active.
func (s *Sections) Visible(name Section) bool {
	return s.Current() == name
}
