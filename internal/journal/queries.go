package journal

import (
	"context"
	"database/sql"
)

type eventRow struct {
	ID         string
	OccurredAt string
	Operation  string
	Subject    string
	OK         bool
	Message    string
}

// queries holds the journal's SQL. It runs against a *sql.DB or a *sql.Tx.
type queries struct {
	db interface {
		ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
		QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	}
}

const insertEvent = `INSERT INTO events (id, occurred_at, operation, subject, ok, message)
VALUES (?, ?, ?, ?, ?, ?)`

func (q queries) insertEvent(ctx context.Context, r eventRow) error {
	_, err := q.db.ExecContext(ctx, insertEvent, r.ID, r.OccurredAt, r.Operation, r.Subject, r.OK, r.Message)
	return err
}

const listRecentEvents = `SELECT id, occurred_at, operation, subject, ok, message
FROM events
ORDER BY occurred_at DESC, rowid DESC
LIMIT ?`

func (q queries) listRecentEvents(ctx context.Context, limit int) ([]eventRow, error) {
	rows, err := q.db.QueryContext(ctx, listRecentEvents, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []eventRow
	for rows.Next() {
		var r eventRow
		if err := rows.Scan(&r.ID, &r.OccurredAt, &r.Operation, &r.Subject, &r.OK, &r.Message); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const deleteEventsBefore = `DELETE FROM events WHERE occurred_at < ?`

func (q queries) deleteEventsBefore(ctx context.Context, cutoff string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteEventsBefore, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countEvents = `SELECT COUNT(*) FROM events`

func (q queries) countEvents(ctx context.Context) (int64, error) {
	rows, err := q.db.QueryContext(ctx, countEvents)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, err
		}
	}
	return n, rows.Err()
}
