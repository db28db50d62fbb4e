package core

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	StatusCompleted PaymentStatus = "مكتمل"
	StatusPending   PaymentStatus = "معلق"
	StatusPartial   PaymentStatus = "جزئي"
)

type (
	// PaymentStatus is the booking payment state. The set may grow on the
	// server side, so unknown values are kept as-is.
	PaymentStatus string

	// ID is a server-assigned identifier. Apps Script backends return ids
	// either as numbers or as numeric strings.
	ID int64

	Booking struct {
		ID            ID            `json:"id"`
		Date          Date          `json:"date"`
		CustomerName  string        `json:"customerName"`
		Phone         string        `json:"phone"`
		TotalAmount   Money         `json:"totalAmount"`
		Deposit       Money         `json:"deposit"`
		Remaining     Money         `json:"remaining"`
		Insurance     Money         `json:"insurance"`
		PaymentStatus PaymentStatus `json:"paymentStatus"`
		Notes         string        `json:"notes"`
	}

	Expense struct {
		ID          ID     `json:"id"`
		Date        Date   `json:"date"`
		Description string `json:"description"`
		Amount      Money  `json:"amount"`
		Category    string `json:"category"`
		Notes       string `json:"notes"`
	}

	// User is an operator account. PIN, FullName and Email are only sent on
	// creation and are usually absent from reads.
	User struct {
		ID       ID     `json:"id"`
		Username string `json:"username"`
		Role     string `json:"role"`
		PIN      string `json:"pin,omitempty"`
		FullName string `json:"fullName,omitempty"`
		Email    string `json:"email,omitempty"`
	}
)

var (
	ErrEmptyCustomer    = errors.New("empty customer name")
	ErrEmptyPhone       = errors.New("empty phone")
	ErrEmptyDate        = errors.New("empty date")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyUsername    = errors.New("empty username")
	ErrEmptyPIN         = errors.New("empty pin")
	ErrEmptyFullName    = errors.New("empty full name")
	ErrEmptyEmail       = errors.New("empty email")
	ErrInvalidID        = errors.New("invalid id")
)

// IsCompleted reports whether the status counts towards revenue.
func (s PaymentStatus) IsCompleted() bool {
	return s == StatusCompleted
}

func (s PaymentStatus) String() string {
	return string(s)
}

// Known reports whether the status is one of the statuses this dashboard
// knows how to colour.
func (s PaymentStatus) Known() bool {
	switch s {
	case StatusCompleted, StatusPending, StatusPartial:
		return true
	}
	return false
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseID parses a path or form id.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || v <= 0 {
		return 0, ErrInvalidID
	}
	return ID(v), nil
}

func (id *ID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*id = ID(int64(f))
		return nil
	}
	return ErrInvalidID
}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(id))
}

// Validate performs the presence checks of the booking form.
func (b Booking) Validate() error {
	if b.Date.IsZero() {
		return ErrEmptyDate
	}
	if strings.TrimSpace(b.CustomerName) == "" {
		return ErrEmptyCustomer
	}
	if strings.TrimSpace(b.Phone) == "" {
		return ErrEmptyPhone
	}
	return nil
}

// Validate performs the presence checks of the expense form.
func (e Expense) Validate() error {
	if e.Date.IsZero() {
		return ErrEmptyDate
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate performs the presence checks of the user form.
func (u User) Validate() error {
	switch {
	case strings.TrimSpace(u.Username) == "":
		return ErrEmptyUsername
	case strings.TrimSpace(u.PIN) == "":
		return ErrEmptyPIN
	case strings.TrimSpace(u.FullName) == "":
		return ErrEmptyFullName
	case strings.TrimSpace(u.Email) == "":
		return ErrEmptyEmail
	}
	return nil
}

// RemainingBalance returns max(0, total - deposit).
func RemainingBalance(total, deposit Money) Money {
	if deposit.Cents >= total.Cents {
		return Money{}
	}
	return Money{Cents: total.Cents - deposit.Cents}
}

// Statistics is the server-computed summary shown on the overview cards.
type Statistics struct {
	TotalRevenue      Money `json:"totalRevenue"`
	TotalExpenses     Money `json:"totalExpenses"`
	NetProfit         Money `json:"netProfit"`
	TotalBookings     int   `json:"totalBookings"`
	ThisMonthBookings int   `json:"thisMonthBookings"`
	PendingAmount     Money `json:"pendingAmount"`
}

// dateLayouts lists the date encodings seen from Apps Script backends.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
}

// Location is the zone stored dates are interpreted in. Timestamps are
// converted to it before taking the calendar date.
var Location = time.Local

// Date is a calendar date at local midnight.
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, Location)}
}

// DateOf truncates t to its calendar date in Location.
func DateOf(t time.Time) Date {
	t = t.In(Location)
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate accepts ISO dates and RFC 3339 timestamps. Anything else yields
// the zero date.
func ParseDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, Location); err == nil {
			return DateOf(t), true
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return DateOf(t), true
	}
	return Date{}, false
}

// ISO returns the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// MonthKey returns the zero-padded YYYY-MM group key.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// Non-string dates fall back to zero rather than failing the whole
		// collection.
		*d = Date{}
		return nil
	}
	*d, _ = ParseDate(s)
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.ISO())
}
