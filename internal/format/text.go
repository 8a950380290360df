// Package format provides shared formatting utilities.
package format

import "fmt"

const (
	KB = 1024
	MB = KB * 1024
	GB = MB * 1024
)

// Bytes formats a byte count as a human-readable string (e.g., "3.0 GB", "512.0 MB").
func Bytes(b int64) string {
	switch {
	case b >= GB:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// Truncate shortens s to at most n characters, appending "..." when
// anything was cut. Used for log lines and generated summaries.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Prefix returns the first n characters of s with "..." always appended,
// whether or not s was longer. Matches the narrative-summary convention.
func Prefix(s string, n int) string {
	if len(s) > n {
		s = s[:n]
	}
	return s + "..."
}
