// Package report defines the core data model for flightdesk reports.
package report

import (
	"github.com/google/uuid"
)

// Severity indicates the urgency of a flight event.
type Severity string

const (
	SevLow      Severity = "low"
	SevMedium   Severity = "medium"
	SevHigh     Severity = "high"
	SevCritical Severity = "critical"
)

// Known returns true if s is one of the conventional severity levels.
// Severity is an open label set; unknown values are stored as-is.
func (s Severity) Known() bool {
	switch s {
	case SevLow, SevMedium, SevHigh, SevCritical:
		return true
	}
	return false
}

// Raw is an unenriched record extracted from a source file. The timestamp
// keeps its source-native format; it is compared as an opaque string.
type Raw struct {
	Timestamp string
	RawText   string
}

// Result holds the output of one enrichment call. Category is an open
// vocabulary; backends may define their own label sets. ModelMeta is an
// opaque diagnostic string and must not be parsed structurally.
type Result struct {
	Summary        string
	Category       string
	Severity       Severity
	Recommendation string
	ModelMeta      string
}

// Report is a persisted, enriched flight event. The pair
// (Timestamp, RawText) is the deduplication key; ID is a surrogate.
type Report struct {
	ID        string
	Timestamp string
	Source    string
	RawText   string
	Result
}

// New composes a Report from a raw record, its provenance, and an
// enrichment result, assigning a fresh surrogate id.
func New(raw Raw, source string, res Result) *Report {
	return &Report{
		ID:        uuid.NewString(),
		Timestamp: raw.Timestamp,
		Source:    source,
		RawText:   raw.RawText,
		Result:    res,
	}
}
