// Package remote talks to the booking API. The API is a single
// operation-dispatch endpoint (an Apps Script deployment in production);
// Client turns its envelopes into domain types.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"bookings/internal/core"
)

// Client wraps a Caller with operation validation, a per-call timeout and
// typed decoding.
type Client struct {
	caller  Caller
	timeout time.Duration
}

func NewClient(caller Caller, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{caller: caller, timeout: timeout}
}

// Do issues exactly one call. A success=false envelope is returned as a
// *Failure error.
func (c *Client) Do(ctx context.Context, op Operation, params Params) (Envelope, error) {
	if !op.Valid() {
		return Envelope{}, fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	env, err := c.caller.Call(cctx, op, params)
	if err != nil {
		return Envelope{}, fmt.Errorf("call %s: %w", op, err)
	}
	if !env.Success {
		return env, &Failure{Op: op, Message: env.Message}
	}
	return env, nil
}

func (c *Client) Statistics(ctx context.Context) (core.Statistics, error) {
	var stats core.Statistics
	err := c.fetch(ctx, OpGetStatistics, &stats)
	return stats, err
}

func (c *Client) Bookings(ctx context.Context) ([]core.Booking, error) {
	var out []core.Booking
	err := c.fetch(ctx, OpGetBookings, &out)
	return out, err
}

func (c *Client) Expenses(ctx context.Context) ([]core.Expense, error) {
	var out []core.Expense
	err := c.fetch(ctx, OpGetExpenses, &out)
	return out, err
}

func (c *Client) Users(ctx context.Context) ([]core.User, error) {
	var out []core.User
	err := c.fetch(ctx, OpGetUsers, &out)
	return out, err
}

// Settings decodes the settings object. Non-string values are stringified,
// since spreadsheet cells may come back as numbers.
func (c *Client) Settings(ctx context.Context) (core.Settings, error) {
	var raw map[string]any
	if err := c.fetch(ctx, OpGetSettings, &raw); err != nil {
		return nil, err
	}
	out := make(core.Settings, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out, nil
}

func (c *Client) AddBooking(ctx context.Context, b core.Booking) error {
	_, err := c.Do(ctx, OpAddBooking, bookingParams(b))
	return err
}

func (c *Client) UpdateBooking(ctx context.Context, b core.Booking) error {
	p := bookingParams(b)
	p["id"] = int64(b.ID)
	_, err := c.Do(ctx, OpUpdateBooking, p)
	return err
}

func (c *Client) DeleteBooking(ctx context.Context, id core.ID) error {
	_, err := c.Do(ctx, OpDeleteBooking, Params{"id": int64(id)})
	return err
}

func (c *Client) RecordPayment(ctx context.Context, id core.ID, amount core.Money) error {
	_, err := c.Do(ctx, OpRecordPayment, Params{"id": int64(id), "amount": amount.Float()})
	return err
}

func (c *Client) AddExpense(ctx context.Context, e core.Expense) error {
	_, err := c.Do(ctx, OpAddExpense, Params{
		"date":        e.Date.ISO(),
		"description": e.Description,
		"amount":      e.Amount.Float(),
		"category":    e.Category,
		"notes":       e.Notes,
	})
	return err
}

func (c *Client) DeleteExpense(ctx context.Context, id core.ID) error {
	_, err := c.Do(ctx, OpDeleteExpense, Params{"id": int64(id)})
	return err
}

func (c *Client) AddUser(ctx context.Context, u core.User) error {
	_, err := c.Do(ctx, OpAddUser, Params{
		"username": u.Username,
		"pin":      u.PIN,
		"fullName": u.FullName,
		"email":    u.Email,
		"role":     u.Role,
	})
	return err
}

func (c *Client) DeleteUser(ctx context.Context, id core.ID) error {
	_, err := c.Do(ctx, OpDeleteUser, Params{"id": int64(id)})
	return err
}

// UpdateSetting writes one key; the API has no batch form.
func (c *Client) UpdateSetting(ctx context.Context, key, value string) error {
	_, err := c.Do(ctx, OpUpdateSettings, Params{"key": key, "value": value})
	return err
}

func (c *Client) fetch(ctx context.Context, op Operation, dst any) error {
	env, err := c.Do(ctx, op, nil)
	if err != nil {
		return err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return fmt.Errorf("decode %s payload: %w", op, err)
	}
	return nil
}

func bookingParams(b core.Booking) Params {
	return Params{
		"date":          b.Date.ISO(),
		"customerName":  b.CustomerName,
		"phone":         b.Phone,
		"totalAmount":   b.TotalAmount.Float(),
		"deposit":       b.Deposit.Float(),
		"remaining":     b.Remaining.Float(),
		"insurance":     b.Insurance.Float(),
		"paymentStatus": string(b.PaymentStatus),
		"notes":         b.Notes,
	}
}
