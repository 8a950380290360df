package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/setevik/flightdesk/internal/report"
	"github.com/mattn/go-sqlite3"
)

// InsertResult tells the caller whether an insert created a new row or
// hit the (timestamp, raw_text) uniqueness constraint.
type InsertResult int

const (
	Inserted InsertResult = iota
	AlreadyExists
)

// Exists reports whether a report with the given dedup key is already
// stored. The orchestrator calls this before paying for enrichment.
func (d *DB) Exists(timestamp, rawText string) (bool, error) {
	var one int
	err := d.db.QueryRow(
		`SELECT 1 FROM flight_reports WHERE timestamp = ? AND raw_text = ?`,
		timestamp, rawText,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking for existing report: %w", err)
	}
	return true, nil
}

// Insert stores a report. A conflicting (timestamp, raw_text) pair is not
// an error: the constraint violation maps to AlreadyExists so callers can
// assert on the outcome. The pre-check in the orchestrator makes this a
// benign race, not a fault.
func (d *DB) Insert(r *report.Report) (InsertResult, error) {
	_, err := d.db.Exec(`
		INSERT INTO flight_reports (id, timestamp, source, raw_text, summary, category, severity, recommendation, model_meta)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.Timestamp,
		r.Source,
		r.RawText,
		r.Summary,
		r.Category,
		string(r.Severity),
		r.Recommendation,
		r.ModelMeta,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			slog.Debug("duplicate report absorbed by constraint",
				"timestamp", r.Timestamp,
				"source", r.Source,
			)
			return AlreadyExists, nil
		}
		return 0, fmt.Errorf("inserting report: %w", err)
	}
	return Inserted, nil
}
