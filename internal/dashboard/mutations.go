package dashboard

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"bookings/internal/core"
	applog "bookings/internal/log"
	"bookings/internal/remote"
	"bookings/internal/store"
)

const (
	msgRequired    = "يرجى ملء الحقول المطلوبة"
	msgRequiredAll = "يرجى ملء جميع الحقول المطلوبة"
	msgBadAmount   = "يرجى إدخال مبلغ صحيح"
)

var operationLabels = map[string]string{
	string(remote.OpAddBooking):     "إضافة حجز",
	string(remote.OpUpdateBooking):  "تعديل حجز",
	string(remote.OpDeleteBooking):  "حذف حجز",
	string(remote.OpRecordPayment):  "تسجيل دفعة",
	string(remote.OpAddExpense):     "إضافة مصروف",
	string(remote.OpDeleteExpense):  "حذف مصروف",
	string(remote.OpAddUser):        "إضافة مستخدم",
	string(remote.OpDeleteUser):     "حذف مستخدم",
	string(remote.OpUpdateSettings): "تحديث الإعدادات",
}

func operationLabel(op string) string {
	if l, ok := operationLabels[op]; ok {
		return l
	}
	return op
}

// BookingInput is the raw booking form. ID is empty when adding.
type BookingInput struct {
	ID            string
	Date          string
	CustomerName  string
	Phone         string
	TotalAmount   string
	Deposit       string
	Insurance     string
	PaymentStatus string
	Notes         string
}

type ExpenseInput struct {
	Date        string
	Description string
	Amount      string
	Category    string
	Notes       string
}

type UserInput struct {
	Username string
	PIN      string
	FullName string
	Email    string
	Role     string
}

// mutation describes one remote write and what follows it.
type mutation struct {
	op      remote.Operation
	subject string
	call    func(ctx context.Context) error
	success string
	failure string
	modal   bool
	refresh []store.Collection
	// local marks a flow that writes nothing remotely; no event is recorded.
	local   bool
}

// run issues exactly one call. Success notifies, closes the dialog when
// asked and refreshes; failure notifies and leaves the state alone.
func (d *Dashboard) run(ctx context.Context, ui UI, m mutation) error {
	err := m.call(ctx)
	if !m.local {
		d.record(ctx, m.op, m.subject, err)
	}
	if err != nil {
		msg := remote.ServerMessage(err)
		if msg == "" {
			msg = m.failure
		}
		ui.Notify(ctx, Notification{Severity: SeverityError, Title: "خطأ", Message: msg})
		return err
	}
	ui.Notify(ctx, Notification{Severity: SeveritySuccess, Title: "نجاح", Message: m.success})
	if m.modal {
		ui.CloseModal(ctx)
	}
	_ = d.Refresh(ctx, m.refresh...)
	return nil
}

func (d *Dashboard) record(ctx context.Context, op remote.Operation, subject string, err error) {
	e := Event{
		ID:        uuid.NewString(),
		At:        d.now(),
		Operation: string(op),
		Subject:   subject,
		OK:        err == nil,
	}
	if err != nil {
		e.Message = remote.ServerMessage(err)
		if e.Message == "" {
			e.Message = err.Error()
		}
	}
	d.recent.add(e)
	d.renderActivity()

	logger := d.logger.With(applog.FieldOperation, string(op), applog.FieldRecordID, subject)
	if err != nil {
		logger.WarnContext(ctx, "Mutation failed", applog.FieldError, err)
	} else {
		logger.InfoContext(ctx, "Mutation completed")
	}
	if serr := d.sink.Record(ctx, e); serr != nil {
		logger.WarnContext(ctx, "Event sink failed", applog.FieldError, serr)
	}
}

func (d *Dashboard) reject(ctx context.Context, ui UI, msg string, err error) error {
	ui.Notify(ctx, Notification{Severity: SeverityError, Title: "خطأ", Message: msg})
	return &ValidationError{Message: msg, Err: err}
}

// SaveBooking adds a booking, or updates it when in.ID is set. Remaining is
// always recomputed from total and deposit.
func (d *Dashboard) SaveBooking(ctx context.Context, ui UI, in BookingInput) error {
	date, _ := core.ParseDate(in.Date)
	total, err := core.ParseAmount(in.TotalAmount)
	if err != nil {
		return d.reject(ctx, ui, msgRequired, err)
	}
	deposit := core.ParseAmountOrZero(in.Deposit)
	b := core.Booking{
		Date:          date,
		CustomerName:  strings.TrimSpace(in.CustomerName),
		Phone:         strings.TrimSpace(in.Phone),
		TotalAmount:   total,
		Deposit:       deposit,
		Remaining:     core.RemainingBalance(total, deposit),
		Insurance:     core.ParseAmountOrZero(in.Insurance),
		PaymentStatus: core.PaymentStatus(strings.TrimSpace(in.PaymentStatus)),
		Notes:         strings.TrimSpace(in.Notes),
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = core.StatusPending
	}
	if err := b.Validate(); err != nil {
		return d.reject(ctx, ui, msgRequired, err)
	}

	m := mutation{
		op:      remote.OpAddBooking,
		success: "تم الحفظ بنجاح",
		failure: "فشل الحفظ",
		modal:   true,
		refresh: []store.Collection{store.Bookings, store.Statistics},
	}
	if strings.TrimSpace(in.ID) != "" {
		id, err := core.ParseID(in.ID)
		if err != nil {
			return d.reject(ctx, ui, msgRequired, err)
		}
		b.ID = id
		m.op = remote.OpUpdateBooking
		m.subject = id.String()
		m.call = func(ctx context.Context) error { return d.api.UpdateBooking(ctx, b) }
	} else {
		m.subject = b.CustomerName
		m.call = func(ctx context.Context) error { return d.api.AddBooking(ctx, b) }
	}
	err = d.run(ctx, ui, m)
	if err == nil {
		d.state.SetEditing(nil)
	}
	return err
}

func (d *Dashboard) DeleteBooking(ctx context.Context, ui UI, id core.ID) error {
	b, ok := d.state.Booking(id)
	if !ok {
		return nil
	}
	if !ui.Confirm(ctx, Confirmation{
		Title:       "تأكيد الحذف؟",
		Text:        "سيتم حذف حجز " + b.CustomerName,
		ConfirmText: "نعم",
	}) {
		return ErrCancelled
	}
	return d.run(ctx, ui, mutation{
		op:      remote.OpDeleteBooking,
		subject: id.String(),
		call:    func(ctx context.Context) error { return d.api.DeleteBooking(ctx, id) },
		success: "تم الحذف",
		failure: "فشل الحذف",
		refresh: []store.Collection{store.Bookings, store.Statistics},
	})
}

// RecordPayment prompts for the amount, defaulting to the remaining balance.
func (d *Dashboard) RecordPayment(ctx context.Context, ui UI, id core.ID) error {
	b, ok := d.state.Booking(id)
	if !ok {
		return nil
	}
	value, ok := ui.Prompt(ctx, Prompt{Title: "تسجيل دفعة", Default: b.Remaining.String()})
	if !ok || strings.TrimSpace(value) == "" {
		return ErrCancelled
	}
	amount, err := core.ParseAmount(value)
	if err == nil {
		err = amount.Validate()
	}
	if err != nil {
		return d.reject(ctx, ui, msgBadAmount, err)
	}
	return d.run(ctx, ui, mutation{
		op:      remote.OpRecordPayment,
		subject: id.String(),
		call:    func(ctx context.Context) error { return d.api.RecordPayment(ctx, id, amount) },
		success: "تم التسجيل",
		failure: "فشل تسجيل الدفعة",
		refresh: []store.Collection{store.Bookings, store.Statistics},
	})
}

func (d *Dashboard) AddExpense(ctx context.Context, ui UI, in ExpenseInput) error {
	date, _ := core.ParseDate(in.Date)
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return d.reject(ctx, ui, msgRequiredAll, err)
	}
	e := core.Expense{
		Date:        date,
		Description: strings.TrimSpace(in.Description),
		Amount:      amount,
		Category:    strings.TrimSpace(in.Category),
		Notes:       strings.TrimSpace(in.Notes),
	}
	if err := e.Validate(); err != nil {
		return d.reject(ctx, ui, msgRequiredAll, err)
	}
	return d.run(ctx, ui, mutation{
		op:      remote.OpAddExpense,
		subject: e.Description,
		call:    func(ctx context.Context) error { return d.api.AddExpense(ctx, e) },
		success: "تم إضافة المصروف بنجاح",
		failure: "فشل إضافة المصروف",
		modal:   true,
		refresh: []store.Collection{store.Expenses, store.Statistics},
	})
}

// DeleteExpense removes an expense. Without remote support the flow keeps
// the reload-only behavior: nothing is deleted server-side.
func (d *Dashboard) DeleteExpense(ctx context.Context, ui UI, id core.ID) error {
	e, ok := d.state.Expense(id)
	if !ok {
		return nil
	}
	if !ui.Confirm(ctx, Confirmation{
		Title:       "تأكيد الحذف",
		Text:        "هل أنت متأكد من حذف المصروف: " + e.Description + "؟",
		ConfirmText: "نعم، احذف",
	}) {
		return ErrCancelled
	}
	m := mutation{
		op:      remote.OpDeleteExpense,
		subject: id.String(),
		call:    func(ctx context.Context) error { return d.api.DeleteExpense(ctx, id) },
		success: "تم حذف المصروف بنجاح",
		failure: "فشل حذف المصروف",
		refresh: []store.Collection{store.Expenses, store.Statistics},
	}
	if !d.expenseDelete {
		m.call = func(context.Context) error { return nil }
		m.local = true
	}
	return d.run(ctx, ui, m)
}

func (d *Dashboard) AddUser(ctx context.Context, ui UI, in UserInput) error {
	u := core.User{
		Username: strings.TrimSpace(in.Username),
		PIN:      strings.TrimSpace(in.PIN),
		FullName: strings.TrimSpace(in.FullName),
		Email:    strings.TrimSpace(in.Email),
		Role:     strings.TrimSpace(in.Role),
	}
	if u.Role == "" {
		u.Role = "user"
	}
	if err := u.Validate(); err != nil {
		return d.reject(ctx, ui, msgRequiredAll, err)
	}
	return d.run(ctx, ui, mutation{
		op:      remote.OpAddUser,
		subject: u.Username,
		call:    func(ctx context.Context) error { return d.api.AddUser(ctx, u) },
		success: "تم إضافة المستخدم بنجاح",
		failure: "فشل إضافة المستخدم",
		modal:   true,
		refresh: []store.Collection{store.Users, store.Statistics},
	})
}

func (d *Dashboard) DeleteUser(ctx context.Context, ui UI, id core.ID) error {
	u, ok := d.state.User(id)
	if !ok {
		return nil
	}
	if !ui.Confirm(ctx, Confirmation{
		Title:       "تأكيد الحذف",
		Text:        "هل أنت متأكد من حذف المستخدم: " + u.Username + "؟",
		ConfirmText: "نعم، احذف",
	}) {
		return ErrCancelled
	}
	return d.run(ctx, ui, mutation{
		op:      remote.OpDeleteUser,
		subject: id.String(),
		call:    func(ctx context.Context) error { return d.api.DeleteUser(ctx, id) },
		success: "تم حذف المستخدم بنجاح",
		failure: "فشل حذف المستخدم",
		refresh: []store.Collection{store.Users, store.Statistics},
	})
}

// Setting is one key/value pair of a settings form, written in order.
type Setting struct {
	Key   string
	Value string
}

// UpdateSettings writes each key with its own call. The first failure stops
// the sequence; keys written before it stay written.
func (d *Dashboard) UpdateSettings(ctx context.Context, ui UI, settings ...Setting) error {
	if len(settings) == 0 {
		return nil
	}
	keys := make([]string, len(settings))
	for i, s := range settings {
		keys[i] = s.Key
	}
	return d.run(ctx, ui, mutation{
		op:      remote.OpUpdateSettings,
		subject: strings.Join(keys, ","),
		call: func(ctx context.Context) error {
			for _, s := range settings {
				if err := d.api.UpdateSetting(ctx, s.Key, strings.TrimSpace(s.Value)); err != nil {
					return err
				}
			}
			return nil
		},
		success: "تم حفظ الإعدادات بنجاح",
		failure: "فشل حفظ الإعدادات",
		refresh: []store.Collection{store.Settings, store.Statistics},
	})
}
