// Package store provides SQLite-backed report storage with a
// (timestamp, raw_text) uniqueness invariant.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/setevik/flightdesk/internal/report"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned by GetByID for an unknown report id.
var ErrNotFound = errors.New("report not found")

// DB wraps an SQLite connection for report storage.
type DB struct {
	db *sql.DB
}

// Open opens or creates an SQLite database at the given path. Schema
// creation is idempotent and runs here, once per instance; there is no
// lazy initialization afterwards.
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

// CategoryCount is one row of the per-category aggregate.
type CategoryCount struct {
	Category string
	Count    int
}

// StatsByCategory returns the number of reports per category, ordered by
// category name.
func (d *DB) StatsByCategory() ([]CategoryCount, error) {
	rows, err := d.db.Query(`SELECT category, COUNT(*) FROM flight_reports GROUP BY category ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("querying category stats: %w", err)
	}
	defer rows.Close()

	var stats []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning category stats: %w", err)
		}
		stats = append(stats, c)
	}
	return stats, rows.Err()
}

// Summary is the condensed listing row returned by ListBySeverity.
type Summary struct {
	ID             string
	Timestamp      string
	Category       string
	Summary        string
	Recommendation string
}

// ListBySeverity returns report summaries for the given severity, ordered
// by timestamp.
func (d *DB) ListBySeverity(severity report.Severity) ([]Summary, error) {
	rows, err := d.db.Query(`
		SELECT id, timestamp, category, summary, recommendation
		FROM flight_reports WHERE severity = ? ORDER BY timestamp`,
		string(severity),
	)
	if err != nil {
		return nil, fmt.Errorf("querying by severity: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Timestamp, &s.Category, &s.Summary, &s.Recommendation); err != nil {
			return nil, fmt.Errorf("scanning summary row: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// GetByID returns the full report with the given id, or ErrNotFound.
func (d *DB) GetByID(id string) (*report.Report, error) {
	var r report.Report
	err := d.db.QueryRow(`
		SELECT id, timestamp, source, raw_text, summary, category, severity, recommendation, model_meta
		FROM flight_reports WHERE id = ?`, id).
		Scan(&r.ID, &r.Timestamp, &r.Source, &r.RawText,
			&r.Summary, &r.Category, &r.Severity, &r.Recommendation, &r.ModelMeta)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying report %s: %w", id, err)
	}
	return &r, nil
}

// Count returns the total number of stored reports.
func (d *DB) Count() (int, error) {
	var n int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM flight_reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting reports: %w", err)
	}
	return n, nil
}

func migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS flight_reports (
			id             TEXT PRIMARY KEY,
			timestamp      TEXT NOT NULL,
			source         TEXT NOT NULL,
			raw_text       TEXT NOT NULL,
			summary        TEXT,
			category       TEXT,
			severity       TEXT,
			recommendation TEXT,
			model_meta     TEXT,
			UNIQUE(timestamp, raw_text)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_severity ON flight_reports(severity, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_category ON flight_reports(category)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	slog.Debug("database schema up to date")
	return nil
}
