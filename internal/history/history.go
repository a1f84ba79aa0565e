// Package history keeps an append-only SQLite log of every delivery
// attempt, so a demo session can show what it actually sent and when.
package history

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Action says what kind of delivery an attempt was.
type Action string

const (
	ActionOpen      Action = "open"
	ActionResolve   Action = "resolve"
	ActionConfigure Action = "configure"
)

// Outcome says whether the API accepted the delivery.
type Outcome string

const (
	OutcomeSent   Outcome = "sent"
	OutcomeFailed Outcome = "failed"
)

// Attempt is one delivery attempt, successful or not. Detail carries the
// error text for failures.
type Attempt struct {
	ID        string
	Timestamp time.Time
	Action    Action
	Outcome   Outcome
	Host      string
	Check     string
	BasedOn   string
	Detail    string
}

// DB wraps an SQLite connection for attempt storage.
type DB struct {
	db *sql.DB
}

// Open opens or creates an SQLite database at the given path.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Single writer connection to avoid SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Record appends one attempt. A missing ID or timestamp is filled in.
func (d *DB) Record(a Attempt) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	ts := a.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := d.db.Exec(`
		INSERT INTO attempts (id, timestamp, action, outcome, host, check_name, based_on, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		ts.UTC().Format(time.RFC3339Nano),
		string(a.Action),
		string(a.Outcome),
		a.Host,
		a.Check,
		a.BasedOn,
		a.Detail,
	)
	if err != nil {
		return fmt.Errorf("recording attempt: %w", err)
	}
	return nil
}

// QueryFilter controls which attempts are returned by Query.
type QueryFilter struct {
	Since   time.Time
	Action  Action
	Outcome Outcome
	Limit   int
}

// Query returns attempts matching the filter, newest first.
func (d *DB) Query(f QueryFilter) ([]Attempt, error) {
	query := `SELECT id, timestamp, action, outcome, host, check_name, based_on, detail
		FROM attempts WHERE 1=1`
	var args []interface{}

	if !f.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, f.Since.UTC().Format(time.RFC3339Nano))
	}
	if f.Action != "" {
		query += " AND action = ?"
		args = append(args, string(f.Action))
	}
	if f.Outcome != "" {
		query += " AND outcome = ?"
		args = append(args, string(f.Outcome))
	}

	query += " ORDER BY timestamp DESC"

	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// Count returns the total number of recorded attempts.
func (d *DB) Count() (int, error) {
	var n int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM attempts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting attempts: %w", err)
	}
	return n, nil
}

// Summary aggregates delivery attempts over a time range.
type Summary struct {
	Total    int
	Sent     int
	Failed   int
	Opens    int
	Resolves int
	LastAt   time.Time
}

// Summarize aggregates attempts recorded at or after since.
func (d *DB) Summarize(since time.Time) (Summary, error) {
	var s Summary
	var lastAt string
	err := d.db.QueryRow(`
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN outcome = 'sent' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome = 'failed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN action = 'open' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN action = 'resolve' THEN 1 ELSE 0 END), 0),
			COALESCE(MAX(timestamp), '')
		FROM attempts WHERE timestamp >= ?`,
		since.UTC().Format(time.RFC3339Nano),
	).Scan(&s.Total, &s.Sent, &s.Failed, &s.Opens, &s.Resolves, &lastAt)
	if err != nil {
		return Summary{}, fmt.Errorf("summarizing attempts: %w", err)
	}
	if lastAt != "" {
		s.LastAt, _ = time.Parse(time.RFC3339Nano, lastAt)
	}
	return s, nil
}

// Purge deletes attempts older than the given retention duration.
func (d *DB) Purge(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UTC().Format(time.RFC3339Nano)
	result, err := d.db.Exec(`DELETE FROM attempts WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging old attempts: %w", err)
	}
	return result.RowsAffected()
}

func scanAttempt(rows *sql.Rows) (Attempt, error) {
	var a Attempt
	var tsStr string
	var host, check, basedOn, detail sql.NullString

	err := rows.Scan(
		&a.ID,
		&tsStr,
		&a.Action,
		&a.Outcome,
		&host,
		&check,
		&basedOn,
		&detail,
	)
	if err != nil {
		return Attempt{}, fmt.Errorf("scanning attempt row: %w", err)
	}

	a.Timestamp, _ = time.Parse(time.RFC3339Nano, tsStr)
	a.Host = host.String
	a.Check = check.String
	a.BasedOn = basedOn.String
	a.Detail = detail.String

	return a, nil
}

func migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS attempts (
			id         TEXT PRIMARY KEY,
			timestamp  TEXT NOT NULL,
			action     TEXT NOT NULL,
			outcome    TEXT NOT NULL,
			host       TEXT,
			check_name TEXT,
			based_on   TEXT,
			detail     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_ts ON attempts(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_action ON attempts(action, timestamp)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	slog.Debug("history schema up to date")
	return nil
}
