// Package parser maps source files to record-extraction functions and
// normalizes heterogeneous JSON schemas into (timestamp, raw_text) pairs.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/setevik/flightdesk/internal/report"
)

var (
	// ErrUnrecognizedFormat means no registered format matched the file,
	// neither by filename tag nor by content sniffing.
	ErrUnrecognizedFormat = errors.New("unrecognized input format")

	// ErrMalformedInput means the file is not valid JSON or is not a
	// top-level array of objects.
	ErrMalformedInput = errors.New("malformed input file")
)

// Format describes one recognized source shape: a filename tag and the
// field names carrying the timestamp and the narrative text.
type Format struct {
	// Tag is matched as a substring of the file's base name.
	Tag string
	// TimestampField and TextField name the JSON keys of each item.
	TimestampField string
	TextField      string
}

// Parse extracts normalized records from the file. Items missing a field
// yield an empty string for it; empty raw_text is filtered downstream.
func (f Format) Parse(path string) ([]report.Raw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedInput, filepath.Base(path), err)
	}

	records := make([]report.Raw, 0, len(items))
	for _, item := range items {
		records = append(records, report.Raw{
			Timestamp: stringField(item, f.TimestampField),
			RawText:   stringField(item, f.TextField),
		})
	}
	return records, nil
}

// stringField decodes a string value from the item, defaulting to "" for
// missing or non-string fields.
func stringField(item map[string]json.RawMessage, key string) string {
	raw, ok := item[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Registry holds the recognized source formats in registration order.
type Registry struct {
	formats []Format
}

// NewRegistry returns a registry with the two built-in formats: "ops"
// operational-event files and "tech" technical-log files.
func NewRegistry() *Registry {
	return &Registry{
		formats: []Format{
			{Tag: "ops", TimestampField: "flight_date", TextField: "observation"},
			{Tag: "tech", TimestampField: "log_date", TextField: "entry"},
		},
	}
}

// Register adds a new source format. Adding a format is the extension
// point for new input shapes.
func (r *Registry) Register(f Format) {
	r.formats = append(r.formats, f)
}

// Select resolves a format for the file, first by filename tag, then by
// sniffing the JSON keys of the first array element. Filename tags alone
// misclassify files that don't follow naming convention, so the content
// check is authoritative when no tag matches.
func (r *Registry) Select(path string) (Format, error) {
	base := filepath.Base(path)
	for _, f := range r.formats {
		if strings.Contains(base, f.Tag) {
			return f, nil
		}
	}

	if f, ok := r.sniff(path); ok {
		return f, nil
	}
	return Format{}, fmt.Errorf("%w: %s", ErrUnrecognizedFormat, base)
}

// sniff decodes the first array element and picks the format whose
// timestamp and text fields are both present.
func (r *Registry) sniff(path string) (Format, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Format{}, false
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil || len(items) == 0 {
		return Format{}, false
	}

	first := items[0]
	for _, f := range r.formats {
		_, hasTS := first[f.TimestampField]
		_, hasText := first[f.TextField]
		if hasTS && hasText {
			return f, true
		}
	}
	return Format{}, false
}
