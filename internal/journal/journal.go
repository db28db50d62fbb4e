// Package journal keeps the activity log of mutation outcomes in SQLite.
// It is both an event sink and the history the dashboard seeds its recent
// activity region from.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"bookings/internal/dashboard"
	applog "bookings/internal/log"
)

var (
	_ dashboard.EventSink = (*Journal)(nil)
	_ dashboard.History   = (*Journal)(nil)
)

// Timestamps are stored as fixed-width UTC text so they sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type Journal struct {
	db      *sql.DB
	queries queries
	logger  *applog.Logger
}

// Open creates the database directory if needed, runs migrations and
// returns a ready journal.
func Open(dbPath string, logger *applog.Logger) (*Journal, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{
		db:      db,
		queries: queries{db: db},
		logger:  logger.WithComponent(applog.ComponentJournal),
	}, nil
}

func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Ping is the readiness check.
func (j *Journal) Ping(ctx context.Context) error {
	return j.db.PingContext(ctx)
}

func (j *Journal) Record(ctx context.Context, e dashboard.Event) error {
	err := j.queries.insertEvent(ctx, eventRow{
		ID:         e.ID,
		OccurredAt: e.At.UTC().Format(timeLayout),
		Operation:  e.Operation,
		Subject:    e.Subject,
		OK:         e.OK,
		Message:    e.Message,
	})
	if err != nil {
		return fmt.Errorf("insert event %s: %w", e.ID, err)
	}
	j.logger.DebugContext(ctx, "Event journaled",
		applog.FieldOperation, e.Operation,
		applog.FieldSuccess, e.OK)
	return nil
}

// Recent returns up to limit events, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]dashboard.Event, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := j.queries.listRecentEvents(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	out := make([]dashboard.Event, 0, len(rows))
	for _, r := range rows {
		at, err := time.Parse(timeLayout, r.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("event %s: bad timestamp %q: %w", r.ID, r.OccurredAt, err)
		}
		out = append(out, dashboard.Event{
			ID:        r.ID,
			At:        at,
			Operation: r.Operation,
			Subject:   r.Subject,
			OK:        r.OK,
			Message:   r.Message,
		})
	}
	return out, nil
}

// Prune deletes events older than cutoff and reports how many went.
func (j *Journal) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := j.queries.deleteEventsBefore(ctx, cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}
	if n > 0 {
		j.logger.InfoContext(ctx, "Journal pruned", applog.FieldCount, n)
	}
	return n, nil
}

// Count returns the number of journaled events.
func (j *Journal) Count(ctx context.Context) (int64, error) {
	return j.queries.countEvents(ctx)
}
