package dashboard

import (
	"context"
	"fmt"
	"strings"

	"bookings/internal/aggregate"
	"bookings/internal/core"
	"bookings/internal/format"
	"bookings/internal/view"
)

// ShowAddBookingForm clears the editing booking and returns an add form
// dated date, or today when date is zero.
func (d *Dashboard) ShowAddBookingForm(date core.Date) view.BookingForm {
	d.state.SetEditing(nil)
	if date.IsZero() {
		date = core.DateOf(d.now())
	}
	return view.NewBookingForm(date)
}

// EditBooking marks id as being edited and returns its form. Unknown ids
// report false and change nothing.
func (d *Dashboard) EditBooking(id core.ID) (view.BookingForm, bool) {
	b, ok := d.state.Booking(id)
	if !ok {
		return view.BookingForm{}, false
	}
	d.state.SetEditing(&id)
	return view.EditBookingForm(b), true
}

// EditUser has no in-dashboard form; users are edited in the spreadsheet.
func (d *Dashboard) EditUser(ctx context.Context, ui UI, id core.ID) {
	if _, ok := d.state.User(id); !ok {
		return
	}
	ui.Notify(ctx, Notification{
		Severity: SeverityInfo,
		Title:    "معلومة",
		Message:  "يمكنك تعديل بيانات المستخدم من خلال Google Sheets",
	})
}

// DateClicked handles a calendar day click. Days that already have
// bookings ask before opening the add form.
func (d *Dashboard) DateClicked(ctx context.Context, ui UI, date core.Date) (view.BookingForm, bool) {
	if date.IsZero() {
		return view.BookingForm{}, false
	}
	if n := len(aggregate.BookingsOn(d.state.Bookings(), date)); n > 0 {
		if !ui.Confirm(ctx, Confirmation{
			Title:       "حجوزات يوم " + date.ISO(),
			Text:        fmt.Sprintf("يوجد %d حجز. ماذا تريد أن تفعل؟", n),
			ConfirmText: "إضافة حجز جديد",
		}) {
			return view.BookingForm{}, false
		}
	}
	return d.ShowAddBookingForm(date), true
}

// Remind opens a WhatsApp link reminding the customer of the remaining
// balance and returns it. The whatsappTemplate setting may use {name} and
// {remaining}.
func (d *Dashboard) Remind(ctx context.Context, ui UI, id core.ID) (string, bool) {
	b, ok := d.state.Booking(id)
	if !ok {
		return "", false
	}
	settings := d.state.Settings()
	remaining := format.Currency(b.Remaining, settings.Currency())

	msg := fmt.Sprintf("مرحباً %s، نود تذكيرك بالمبلغ المتبقي: %s", b.CustomerName, remaining)
	if tpl := settings.Get(core.SettingWhatsAppTemplate); tpl != "" {
		msg = strings.NewReplacer("{name}", b.CustomerName, "{remaining}", remaining).Replace(tpl)
	}
	phone := b.Phone
	if strings.TrimSpace(phone) == "" {
		phone = settings.Get(core.SettingDefaultPhone)
	}
	link := format.WhatsAppLink(phone, msg)
	ui.OpenURL(ctx, link)
	return link, true
}

// RemainingPreview is the live remaining field of the booking form:
// max(0, total - deposit) with two decimals. Unparseable input counts as 0.
func RemainingPreview(total, deposit string) string {
	return core.RemainingBalance(core.ParseAmountOrZero(total), core.ParseAmountOrZero(deposit)).String()
}
