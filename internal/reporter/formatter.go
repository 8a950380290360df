// Package reporter formats stored reports and aggregates for display.
package reporter

import (
	"fmt"
	"strings"

	"github.com/setevik/flightdesk/internal/report"
	"github.com/setevik/flightdesk/internal/store"
)

// FormatStats renders the per-category count table.
func FormatStats(stats []store.CategoryCount) string {
	var b strings.Builder
	b.WriteString("--- Events per Category ---\n")
	for _, s := range stats {
		fmt.Fprintf(&b, "%-20s | %d\n", s.Category, s.Count)
	}
	return b.String()
}

// FormatList renders report summaries for one severity level.
func FormatList(severity report.Severity, summaries []store.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n--- Reports with Severity: %s ---\n", strings.ToUpper(string(severity)))
	for _, s := range summaries {
		fmt.Fprintf(&b, "ID: %s\n", s.ID)
		fmt.Fprintf(&b, "  Timestamp: %s\n", s.Timestamp)
		fmt.Fprintf(&b, "  Category:  %s\n", s.Category)
		fmt.Fprintf(&b, "  Summary:   %s\n", s.Summary)
		fmt.Fprintf(&b, "  Action:    %s\n", s.Recommendation)
		b.WriteString(strings.Repeat("-", 20) + "\n")
	}
	return b.String()
}

// FormatReport renders the full detail view of one report.
func FormatReport(r *report.Report) string {
	var b strings.Builder
	b.WriteString("\n--- Full Report Details ---\n")
	fields := []struct {
		name  string
		value string
	}{
		{"Id", r.ID},
		{"Timestamp", r.Timestamp},
		{"Source", r.Source},
		{"Raw_text", r.RawText},
		{"Summary", r.Summary},
		{"Category", r.Category},
		{"Severity", string(r.Severity)},
		{"Recommendation", r.Recommendation},
		{"Model_meta", r.ModelMeta},
	}
	for _, f := range fields {
		fmt.Fprintf(&b, "%-15s: %s\n", f.name, f.value)
	}
	b.WriteString(strings.Repeat("-", 27) + "\n")
	return b.String()
}
