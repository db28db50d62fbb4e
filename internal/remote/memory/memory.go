// Package memory is an in-process implementation of the booking API used for
// local development and end-to-end tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"bookings/internal/core"
	"bookings/internal/remote"
)

var _ remote.Caller = (*Store)(nil)

type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	nextID   core.ID
	bookings []core.Booking
	expenses []core.Expense
	users    []core.User
	settings core.Settings
}

// Seed is the initial content of a Store. It is also the JSON layout of the
// seed file read by NewFromFile.
type Seed struct {
	Bookings []core.Booking `json:"bookings"`
	Expenses []core.Expense `json:"expenses"`
	Users    []core.User    `json:"users"`
	Settings core.Settings  `json:"settings"`
}

func New(seed Seed) *Store {
	s := &Store{
		now:      time.Now,
		bookings: append([]core.Booking(nil), seed.Bookings...),
		expenses: append([]core.Expense(nil), seed.Expenses...),
		users:    append([]core.User(nil), seed.Users...),
		settings: seed.Settings.Clone(),
	}
	for _, b := range s.bookings {
		s.bump(b.ID)
	}
	for _, e := range s.expenses {
		s.bump(e.ID)
	}
	for _, u := range s.users {
		s.bump(u.ID)
	}
	return s
}

// NewFromFile loads a JSON seed. A missing path yields DefaultSeed.
func NewFromFile(path string) (*Store, error) {
	if path == "" {
		return New(DefaultSeed(time.Now())), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(DefaultSeed(time.Now())), nil
		}
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("decode seed %s: %w", path, err)
	}
	return New(seed), nil
}

// DefaultSeed returns a small data set around now.
func DefaultSeed(now time.Time) Seed {
	today := core.DateOf(now)
	day := func(offset int) core.Date { return core.DateOf(today.AddDate(0, 0, offset)) }
	sar := func(v int64) core.Money { return core.Money{Cents: v * 100} }
	return Seed{
		Bookings: []core.Booking{
			{ID: 1, Date: day(-20), CustomerName: "محمد العتيبي", Phone: "0501234567", TotalAmount: sar(1500), Deposit: sar(1500), PaymentStatus: core.StatusCompleted},
			{ID: 2, Date: day(-3), CustomerName: "سارة القحطاني", Phone: "0559876543", TotalAmount: sar(1200), Deposit: sar(400), Remaining: sar(800), Insurance: sar(200), PaymentStatus: core.StatusPending},
			{ID: 3, Date: day(2), CustomerName: "خالد الشمري", Phone: "0541112233", TotalAmount: sar(2000), Deposit: sar(1000), Remaining: sar(1000), PaymentStatus: core.StatusPartial},
			{ID: 4, Date: day(9), CustomerName: "نورة الدوسري", Phone: "0534445566", TotalAmount: sar(900), Deposit: sar(900), PaymentStatus: core.StatusCompleted},
		},
		Expenses: []core.Expense{
			{ID: 5, Date: day(-10), Description: "صيانة المسبح", Amount: sar(350), Category: "صيانة"},
			{ID: 6, Date: day(-1), Description: "فاتورة كهرباء", Amount: sar(420), Category: "فواتير"},
		},
		Users: []core.User{
			{ID: 7, Username: "admin", Role: "admin"},
		},
		Settings: core.Settings{
			core.SettingFacilityName: "استراحة النخيل",
			core.SettingCurrency:     core.DefaultCurrency,
		},
	}
}

// SetClock overrides the time source used for ThisMonthBookings.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Call(_ context.Context, op remote.Operation, params remote.Params) (remote.Envelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch op {
	case remote.OpGetStatistics:
		return ok(s.statistics())
	case remote.OpGetBookings:
		return ok(s.bookings)
	case remote.OpGetExpenses:
		return ok(s.expenses)
	case remote.OpGetUsers:
		out := make([]core.User, len(s.users))
		for i, u := range s.users {
			out[i] = core.User{ID: u.ID, Username: u.Username, Role: u.Role}
		}
		return ok(out)
	case remote.OpGetSettings:
		return ok(s.settings)
	case remote.OpAddBooking:
		var b core.Booking
		if err := decode(params, &b); err != nil {
			return fail(err.Error())
		}
		if err := b.Validate(); err != nil {
			return fail("بيانات الحجز غير مكتملة")
		}
		b.ID = s.id()
		normalize(&b)
		s.bookings = append(s.bookings, b)
		return ok(map[string]any{"id": b.ID})
	case remote.OpUpdateBooking:
		var b core.Booking
		if err := decode(params, &b); err != nil {
			return fail(err.Error())
		}
		i := s.bookingIndex(b.ID)
		if i < 0 {
			return fail("الحجز غير موجود")
		}
		normalize(&b)
		s.bookings[i] = b
		return ok(nil)
	case remote.OpDeleteBooking:
		i := s.bookingIndex(paramID(params))
		if i < 0 {
			return fail("الحجز غير موجود")
		}
		s.bookings = append(s.bookings[:i], s.bookings[i+1:]...)
		return ok(nil)
	case remote.OpRecordPayment:
		var p struct {
			ID     core.ID    `json:"id"`
			Amount core.Money `json:"amount"`
		}
		if err := decode(params, &p); err != nil {
			return fail(err.Error())
		}
		i := s.bookingIndex(p.ID)
		if i < 0 {
			return fail("الحجز غير موجود")
		}
		if p.Amount.Cents <= 0 {
			return fail("المبلغ غير صحيح")
		}
		b := &s.bookings[i]
		b.Deposit = b.Deposit.Add(p.Amount)
		b.Remaining = core.RemainingBalance(b.TotalAmount, b.Deposit)
		if b.Remaining.Cents == 0 {
			b.PaymentStatus = core.StatusCompleted
		} else {
			b.PaymentStatus = core.StatusPartial
		}
		return ok(nil)
	case remote.OpAddExpense:
		var e core.Expense
		if err := decode(params, &e); err != nil {
			return fail(err.Error())
		}
		if err := e.Validate(); err != nil {
			return fail("بيانات المصروف غير مكتملة")
		}
		e.ID = s.id()
		s.expenses = append(s.expenses, e)
		return ok(map[string]any{"id": e.ID})
	case remote.OpDeleteExpense:
		id := paramID(params)
		for i, e := range s.expenses {
			if e.ID == id {
				s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
				return ok(nil)
			}
		}
		return fail("المصروف غير موجود")
	case remote.OpAddUser:
		var u core.User
		if err := decode(params, &u); err != nil {
			return fail(err.Error())
		}
		for _, existing := range s.users {
			if existing.Username == u.Username {
				return fail("اسم المستخدم موجود مسبقاً")
			}
		}
		u.ID = s.id()
		s.users = append(s.users, u)
		return ok(map[string]any{"id": u.ID})
	case remote.OpDeleteUser:
		id := paramID(params)
		for i, u := range s.users {
			if u.ID == id {
				s.users = append(s.users[:i], s.users[i+1:]...)
				return ok(nil)
			}
		}
		return fail("المستخدم غير موجود")
	case remote.OpUpdateSettings:
		var p struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		}
		if err := decode(params, &p); err != nil || p.Key == "" {
			return fail("مفتاح الإعداد مفقود")
		}
		if s.settings == nil {
			s.settings = core.Settings{}
		}
		s.settings[p.Key] = p.Value
		return ok(nil)
	}
	return remote.Envelope{}, fmt.Errorf("%w: %q", remote.ErrUnknownOperation, op)
}

// statistics follows the server's definitions: revenue is money collected,
// pending is what unfinished bookings still owe.
func (s *Store) statistics() core.Statistics {
	var st core.Statistics
	month := core.DateOf(s.now()).MonthKey()
	for _, b := range s.bookings {
		st.TotalBookings++
		if b.Date.MonthKey() == month {
			st.ThisMonthBookings++
		}
		paid := b.TotalAmount.Cents - b.Remaining.Cents
		if paid > 0 {
			st.TotalRevenue.Cents += paid
		}
		if !b.PaymentStatus.IsCompleted() {
			st.PendingAmount = st.PendingAmount.Add(b.Remaining)
		}
	}
	for _, e := range s.expenses {
		st.TotalExpenses = st.TotalExpenses.Add(e.Amount)
	}
	st.NetProfit = core.Money{Cents: st.TotalRevenue.Cents - st.TotalExpenses.Cents}
	return st
}

func (s *Store) bookingIndex(id core.ID) int {
	for i, b := range s.bookings {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) id() core.ID {
	s.nextID++
	return s.nextID
}

func (s *Store) bump(id core.ID) {
	if id > s.nextID {
		s.nextID = id
	}
}

func normalize(b *core.Booking) {
	if b.PaymentStatus == "" {
		if b.Remaining.Cents == 0 {
			b.PaymentStatus = core.StatusCompleted
		} else {
			b.PaymentStatus = core.StatusPending
		}
	}
}

// decode round-trips params through JSON so that both typed client values
// and already-decoded wire values land in the domain types the same way.
func decode(params remote.Params, dst any) error {
	b, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}

func paramID(params remote.Params) core.ID {
	var p struct {
		ID core.ID `json:"id"`
	}
	_ = decode(params, &p)
	return p.ID
}

func ok(data any) (remote.Envelope, error) {
	if data == nil {
		return remote.Envelope{Success: true}, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return remote.Envelope{}, fmt.Errorf("encode data: %w", err)
	}
	return remote.Envelope{Success: true, Data: b}, nil
}

func fail(msg string) (remote.Envelope, error) {
	return remote.Envelope{Success: false, Message: msg}, nil
}
