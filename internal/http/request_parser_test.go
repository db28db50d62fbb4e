package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		body        string
		contentType string
		key         string
		want        string
		wantHas     bool
	}{
		{"form value", "/bookings", "customerName=+Ali+&phone=050", "application/x-www-form-urlencoded", "customerName", "Ali", true},
		{"json string", "/bookings", `{"customerName":"Sara"}`, "application/json", "customerName", "Sara", true},
		{"json number", "/bookings", `{"totalAmount":800.5}`, "application/json", "totalAmount", "800.5", true},
		{"query fallback", "/ui/calendar/day?confirmed=true", "", "", "confirmed", "true", true},
		{"body wins over query", "/x?value=1", "value=2", "application/x-www-form-urlencoded", "value", "2", true},
		{"control chars dropped", "/x", "notes=a%00b%0Ac", "application/x-www-form-urlencoded", "notes", "ab\nc", true},
		{"missing key", "/x", "a=1", "application/x-www-form-urlencoded", "b", "", false},
		{"empty value present", "/x", "value=", "application/x-www-form-urlencoded", "value", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body))
			if tt.contentType != "" {
				r.Header.Set("Content-Type", tt.contentType)
			}
			p := NewRequestBodyParser(r)
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got := p.Get(tt.key); got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
			if got := p.Has(tt.key); got != tt.wantHas {
				t.Errorf("Has(%q) = %v, want %v", tt.key, got, tt.wantHas)
			}
		})
	}
}

func TestRequestBodyParserRejectsBadJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{"broken`))
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err == nil {
		t.Fatal("expected error")
	}
	if p.IsJSON() && p.Get("broken") != "" {
		t.Error("unexpected value from broken JSON")
	}
}

func TestRequestBodyParserLimit(t *testing.T) {
	big := strings.Repeat("a", maxBodyBytes+10)
	r := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("notes="+big))
	if err := NewRequestBodyParser(r).Parse(); err != errBodyTooLarge {
		t.Fatalf("Parse error = %v, want %v", err, errBodyTooLarge)
	}
}

func TestPathIDAndQueryDate(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ui/calendar/day?date=2025-03-01", nil)
	if got := QueryDate(r, "date").ISO(); got != "2025-03-01" {
		t.Errorf("QueryDate = %q", got)
	}
	if !QueryDate(r, "missing").IsZero() {
		t.Error("missing date should be zero")
	}

	r.SetPathValue("id", "42")
	id, err := PathID(r)
	if err != nil || id != 42 {
		t.Errorf("PathID = %v, %v", id, err)
	}
	r.SetPathValue("id", "x")
	if _, err := PathID(r); err == nil {
		t.Error("expected error for non-numeric id")
	}
}
