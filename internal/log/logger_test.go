package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Format: "json", Output: &buf})
	l.WithComponent(ComponentStore).Info("replaced", FieldCollection, "bookings")

	out := buf.String()
	if !strings.Contains(out, `"component":"store"`) {
		t.Errorf("missing component in %s", out)
	}
	if !strings.Contains(out, `"collection":"bookings"`) {
		t.Errorf("missing collection in %s", out)
	}
}

func TestStructuredLoggerMutation(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Output: &buf}))
	sl.LogMutation(context.Background(), OpDelete, "7", errors.New("boom"))

	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "record_id=7") {
		t.Errorf("unexpected log line: %s", out)
	}
	if !strings.Contains(out, "component=dashboard") {
		t.Errorf("missing component: %s", out)
	}
}
