// Package history journals container lifecycle events in a local SQLite
// database so the operator can see when a container was created, recreated,
// attached to or stopped.
package history

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// Event is one journaled lifecycle action.
type Event struct {
	ID        int64     `json:"id" yaml:"id"`
	Container string    `json:"container" yaml:"container"`
	Action    string    `json:"action" yaml:"action"`
	Detail    string    `json:"detail,omitempty" yaml:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// Store implements the lifecycle journal using modernc.org/sqlite (pure Go).
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates a SQLite database at the given path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Several invocations may journal at once.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA busy_timeout=2000"); err != nil {
		db.Close()
		return nil, err
	}
	s := &Store{db: db, now: time.Now}
	if err := s.Init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Init creates the schema tables.
func (s *Store) Init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS lifecycle_events (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		container  TEXT NOT NULL,
		action     TEXT NOT NULL,
		detail     TEXT NOT NULL DEFAULT '',
		timestamp  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_lifecycle_container ON lifecycle_events(container);
	CREATE INDEX IF NOT EXISTS idx_lifecycle_timestamp ON lifecycle_events(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record journals an action taken on a container.
func (s *Store) Record(ctx context.Context, container, action, detail string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lifecycle_events (container, action, detail, timestamp) VALUES (?, ?, ?, ?)`,
		container, action, detail, s.now().UTC(),
	)
	return err
}

// List returns the most recent events, newest first. An empty container
// matches every container; a limit of zero or less returns everything.
func (s *Store) List(ctx context.Context, container string, limit int) ([]Event, error) {
	query := `SELECT id, container, action, detail, timestamp FROM lifecycle_events`
	var args []any
	if container != "" {
		query += ` WHERE container = ?`
		args = append(args, container)
	}
	query += ` ORDER BY timestamp DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Container, &e.Action, &e.Detail, &e.Timestamp); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Count returns the number of journaled events.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lifecycle_events`).Scan(&n)
	return n, err
}
