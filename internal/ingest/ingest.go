// Package ingest drives the parse → dedup-check → enrich → persist
// pipeline across a batch of input files.
package ingest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/setevik/flightdesk/internal/enrich"
	"github.com/setevik/flightdesk/internal/format"
	"github.com/setevik/flightdesk/internal/parser"
	"github.com/setevik/flightdesk/internal/report"
	"github.com/setevik/flightdesk/internal/store"
)

// logPrefixLen limits raw text quoted in log lines.
const logPrefixLen = 50

// Ingestor runs ingestion batches. Files are processed in the order
// given, records in parse order; one bad file never aborts the batch.
type Ingestor struct {
	registry *parser.Registry
	enricher enrich.Service
	db       *store.DB
}

// New creates an Ingestor over the given parser registry, enrichment
// service, and report store.
func New(registry *parser.Registry, enricher enrich.Service, db *store.DB) *Ingestor {
	return &Ingestor{registry: registry, enricher: enricher, db: db}
}

// Summary reports the outcome of one batch.
type Summary struct {
	// Added is the number of newly persisted reports.
	Added int
	// Duplicates is the number of records skipped by the dedup pre-check
	// or absorbed by the storage constraint.
	Duplicates int
	// SkippedFiles is the number of files dropped for parse errors.
	SkippedFiles int
}

// Run ingests the batch. Enrichment is only invoked for records that
// pass the empty-text filter and the dedup pre-check, so duplicate
// detection avoids enrichment cost rather than merely preserving
// correctness.
func (in *Ingestor) Run(ctx context.Context, files []string) Summary {
	var sum Summary

	slog.Info("starting ingestion", "files", len(files))

	for _, path := range files {
		if err := in.ingestFile(ctx, path, &sum); err != nil {
			slog.Warn("skipping file", "file", path, "error", err)
			sum.SkippedFiles++
		}
	}

	slog.Info("ingestion complete",
		"added", sum.Added,
		"duplicates", sum.Duplicates,
		"skipped_files", sum.SkippedFiles,
	)
	return sum
}

func (in *Ingestor) ingestFile(ctx context.Context, path string, sum *Summary) error {
	f, err := in.registry.Select(path)
	if err != nil {
		return err
	}

	records, err := f.Parse(path)
	if err != nil {
		return err
	}

	if info, err := os.Stat(path); err == nil {
		slog.Debug("parsed file",
			"file", path,
			"format", f.Tag,
			"records", len(records),
			"size", format.Bytes(info.Size()),
		)
	}

	source := filepath.Base(path)
	for _, raw := range records {
		if raw.RawText == "" {
			continue
		}

		exists, err := in.db.Exists(raw.Timestamp, raw.RawText)
		if err != nil {
			return err
		}
		if exists {
			slog.Info("skipping existing record",
				"source", source,
				"text", format.Truncate(raw.RawText, logPrefixLen),
			)
			sum.Duplicates++
			continue
		}

		res := in.enricher.ProcessText(ctx, raw.RawText)

		r := report.New(raw, source, res)
		inserted, err := in.db.Insert(r)
		if err != nil {
			return err
		}
		if inserted == store.AlreadyExists {
			// Raced with another writer between pre-check and insert.
			sum.Duplicates++
			continue
		}
		sum.Added++
	}

	slog.Info("processed file", "file", path, "records", len(records))
	return nil
}
