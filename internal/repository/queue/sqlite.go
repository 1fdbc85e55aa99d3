package queue

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Registers the "sqlite" driver.

	"github.com/oshokin/activity-monitor/internal/config"
	domain "github.com/oshokin/activity-monitor/internal/domain/activity"
	"github.com/oshokin/activity-monitor/internal/repository/fsutil"
)

const createEventsSQL = `
CREATE TABLE IF NOT EXISTS events (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	label TEXT NOT NULL,
	type TEXT NOT NULL,
	description TEXT NOT NULL,
	timestamp_full REAL NOT NULL
);
`

// SQLiteQueue keeps the queue in a SQLite table ordered by insertion sequence.
type SQLiteQueue struct {
	db        *sql.DB
	maxLength int
}

// NewSQLiteQueue opens or creates the queue database at path (WAL mode).
func NewSQLiteQueue(path string, maxLength int) (*SQLiteQueue, error) {
	path = filepath.Clean(path)

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open queue db: %w", err)
	}

	// A single connection keeps the loop strictly sequential.
	db.SetMaxOpenConns(1)

	if _, err = db.Exec(createEventsSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init queue schema: %w", err)
	}

	if err = os.Chmod(path, config.DefaultFilePermissions); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("restrict queue db permissions: %w", err)
	}

	return &SQLiteQueue{
		db:        db,
		maxLength: maxLength,
	}, nil
}

// Append inserts event and trims the oldest rows past the cap.
func (q *SQLiteQueue) Append(ctx context.Context, event *domain.Event) error {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO events (id, label, type, description, timestamp_full) VALUES (?, ?, ?, ?, ?)`,
		event.ID, event.Label, string(event.Type), event.Description, fsutil.ToEpoch(event.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	if q.maxLength > 0 {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM events WHERE seq NOT IN (SELECT seq FROM events ORDER BY seq DESC LIMIT ?)`,
			q.maxLength,
		)
		if err != nil {
			return fmt.Errorf("evict events: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}

	return nil
}

// List returns the queued events in arrival order.
func (q *SQLiteQueue) List(ctx context.Context) ([]*domain.Event, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, label, type, description, timestamp_full FROM events ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	var events []*domain.Event

	for rows.Next() {
		var (
			event     domain.Event
			eventType string
			timestamp float64
		)

		if err = rows.Scan(&event.ID, &event.Label, &eventType, &event.Description, &timestamp); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}

		event.Type = domain.EventType(eventType)
		event.Timestamp = fsutil.FromEpoch(timestamp)
		events = append(events, &event)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}

// Len returns the number of queued events.
func (q *SQLiteQueue) Len(ctx context.Context) (int, error) {
	var count int
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}

	return count, nil
}

// Clear deletes every queued event.
func (q *SQLiteQueue) Clear(ctx context.Context) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM events`); err != nil {
		return fmt.Errorf("clear events: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (q *SQLiteQueue) Close() error {
	return q.db.Close()
}
