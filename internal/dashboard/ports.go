package dashboard

import (
	"context"
	"errors"

	"bookings/internal/core"
)

var (
	// ErrPageGuard is returned by Start when the page guard rejects the visit.
	ErrPageGuard = errors.New("page guard rejected")
	// ErrCancelled reports a declined confirmation or prompt.
	ErrCancelled = errors.New("cancelled by operator")
)

// ValidationError is a local input rejection. No remote call was made.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Severity of a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

type Notification struct {
	Severity Severity `json:"type"`
	Title    string   `json:"title,omitempty"`
	Message  string   `json:"message"`
}

type Confirmation struct {
	Title       string `json:"title"`
	Text        string `json:"text,omitempty"`
	ConfirmText string `json:"confirmText,omitempty"`
}

type Prompt struct {
	Title   string `json:"title"`
	Default string `json:"default,omitempty"`
}

// UI is the operator-facing side of one interaction.
type UI interface {
	Confirm(ctx context.Context, c Confirmation) bool
	Prompt(ctx context.Context, p Prompt) (string, bool)
	Notify(ctx context.Context, n Notification)
	CloseModal(ctx context.Context)
	OpenURL(ctx context.Context, url string)
}

// PageGuard decides whether a page visit may initialize the dashboard.
type PageGuard interface {
	Allow(ctx context.Context) bool
}

// PageGuardFunc adapts a function to PageGuard.
type PageGuardFunc func(ctx context.Context) bool

func (f PageGuardFunc) Allow(ctx context.Context) bool { return f(ctx) }

// API is the remote booking API as the dashboard uses it.
type API interface {
	Statistics(ctx context.Context) (core.Statistics, error)
	Bookings(ctx context.Context) ([]core.Booking, error)
	Expenses(ctx context.Context) ([]core.Expense, error)
	Users(ctx context.Context) ([]core.User, error)
	Settings(ctx context.Context) (core.Settings, error)

	AddBooking(ctx context.Context, b core.Booking) error
	UpdateBooking(ctx context.Context, b core.Booking) error
	DeleteBooking(ctx context.Context, id core.ID) error
	RecordPayment(ctx context.Context, id core.ID, amount core.Money) error
	AddExpense(ctx context.Context, e core.Expense) error
	DeleteExpense(ctx context.Context, id core.ID) error
	AddUser(ctx context.Context, u core.User) error
	DeleteUser(ctx context.Context, id core.ID) error
	UpdateSetting(ctx context.Context, key, value string) error
}
