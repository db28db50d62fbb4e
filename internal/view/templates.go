package view

import (
	"fmt"
	"html/template"
	"io/fs"

	"bookings/internal/core"
	"bookings/internal/format"
	appweb "bookings/web"
)

// Funcs are the helpers available to every dashboard template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"money": func(m core.Money, symbol string) string { return format.Currency(m, symbol) },
		"date":  format.Date,
		"iso":   format.ISO,
		"badge": BadgeClass,
	}
}

// ParseTemplates parses the embedded page, region and form templates.
func ParseTemplates() (*template.Template, error) {
	return ParseTemplatesFS(appweb.TemplatesFS, "templates/*.html")
}

func ParseTemplatesFS(fsys fs.FS, pattern string) (*template.Template, error) {
	t, err := template.New("dashboard").Funcs(Funcs()).ParseFS(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

// BadgeClass maps a payment status to its badge CSS class.
func BadgeClass(s core.PaymentStatus) string {
	switch s {
	case core.StatusCompleted:
		return "badge badge-success"
	case core.StatusPending:
		return "badge badge-danger"
	case core.StatusPartial:
		return "badge badge-warning"
	default:
		return "badge"
	}
}
