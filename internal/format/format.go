// Package format renders amounts, dates and links for the dashboard views.
package format

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"bookings/internal/core"
)

// Amounts are shown with Latin digits and grouping (the views mark them
// with the num-en class), followed by the currency symbol.
var printer = message.NewPrinter(language.English)

var arabicMonths = [...]string{
	"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو",
	"يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر",
}

// Currency formats m as "1,500.00 ر.س".
func Currency(m core.Money, symbol string) string {
	if symbol == "" {
		symbol = core.DefaultCurrency
	}
	return printer.Sprintf("%.2f", m.Float()) + " " + symbol
}

// Date formats d as DD/MM/YYYY; the zero date renders as "-".
func Date(d core.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.Format("02/01/2006")
}

// ISO returns the YYYY-MM-DD form used by date inputs and the calendar.
func ISO(d core.Date) string {
	return d.ISO()
}

// MonthLabel turns a YYYY-MM key into "يناير 2025". Malformed keys are
// returned unchanged.
func MonthLabel(key string) string {
	year, month, ok := strings.Cut(key, "-")
	if !ok || len(month) != 2 {
		return key
	}
	m := int(month[0]-'0')*10 + int(month[1]-'0')
	if m < 1 || m > 12 {
		return key
	}
	return arabicMonths[m-1] + " " + year
}

// WhatsAppLink builds a wa.me deep link. Local Saudi numbers starting with 0
// are rewritten to the 966 country code.
func WhatsAppLink(phone, msg string) string {
	digits := strings.Map(func(r rune) rune {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	if strings.HasPrefix(digits, "00") {
		digits = digits[2:]
	} else if strings.HasPrefix(digits, "0") {
		digits = "966" + digits[1:]
	}
	text := strings.ReplaceAll(url.QueryEscape(msg), "+", "%20")
	return "https://wa.me/" + digits + "?text=" + text
}
