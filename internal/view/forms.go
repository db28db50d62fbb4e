package view

import (
	"html/template"

	"bookings/internal/core"
)

// BookingForm is the data behind the add/edit booking dialog. Amounts are
// plain decimals so they round-trip through number inputs.
type BookingForm struct {
	Title        string
	ID           string
	Date         string
	CustomerName string
	Phone        string
	TotalAmount  string
	Deposit      string
	Remaining    string
	Insurance    string
	Status       core.PaymentStatus
	Statuses     []core.PaymentStatus
	Notes        string
}

func statuses() []core.PaymentStatus {
	return []core.PaymentStatus{core.StatusPending, core.StatusPartial, core.StatusCompleted}
}

// NewBookingForm returns an empty add form, optionally pre-dated.
func NewBookingForm(date core.Date) BookingForm {
	return BookingForm{
		Title:     "حجز جديد",
		Date:      date.ISO(),
		Remaining: core.Money{}.String(),
		Status:    core.StatusPending,
		Statuses:  statuses(),
	}
}

// EditBookingForm fills the form from b.
func EditBookingForm(b core.Booking) BookingForm {
	f := BookingForm{
		Title:        "تعديل الحجز",
		ID:           b.ID.String(),
		Date:         b.Date.ISO(),
		CustomerName: b.CustomerName,
		Phone:        b.Phone,
		TotalAmount:  b.TotalAmount.String(),
		Deposit:      b.Deposit.String(),
		Remaining:    b.Remaining.String(),
		Insurance:    b.Insurance.String(),
		Status:       b.PaymentStatus,
		Statuses:     statuses(),
		Notes:        b.Notes,
	}
	if !b.PaymentStatus.Known() && b.PaymentStatus != "" {
		f.Statuses = append(f.Statuses, b.PaymentStatus)
	}
	return f
}

// NavItem is one sidebar link.
type NavItem struct {
	Name   string
	Label  string
	Active bool
}

var sectionLabels = map[Section]string{
	SectionOverview: "نظرة عامة",
	SectionBookings: "الحجوزات",
	SectionRevenue:  "الإيرادات",
	SectionPending:  "المعلقة",
	SectionExpenses: "المصروفات",
	SectionUsers:    "المستخدمين",
	SectionSettings: "الإعدادات",
}

// PageData is what index.html renders.
type PageData struct {
	Title   string
	Current string
	Nav     []NavItem
	Regions map[string]template.HTML
}

// NewPageData assembles the full page from the current region markup.
func NewPageData(title string, current Section, regions map[Region]template.HTML) PageData {
	if title == "" {
		title = "لوحة التحكم"
	}
	d := PageData{Title: title, Current: string(current), Regions: make(map[string]template.HTML, len(regions))}
	for _, s := range SectionList() {
		d.Nav = append(d.Nav, NavItem{Name: string(s), Label: sectionLabels[s], Active: s == current})
	}
	for r, m := range regions {
		d.Regions[string(r)] = m
	}
	return d
}
