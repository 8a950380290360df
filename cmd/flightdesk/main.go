// flightdesk ingests heterogeneous flight-event files, enriches each
// record with a classification and summary, and stores deduplicated
// reports in SQLite for later query.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/setevik/flightdesk/internal/config"
	"github.com/setevik/flightdesk/internal/enrich"
	"github.com/setevik/flightdesk/internal/ingest"
	"github.com/setevik/flightdesk/internal/parser"
	"github.com/setevik/flightdesk/internal/report"
	"github.com/setevik/flightdesk/internal/reporter"
	"github.com/setevik/flightdesk/internal/store"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		runInit(os.Args[2:])
	case "ingest":
		runIngest(os.Args[2:])
	case "stats":
		runStats(os.Args[2:])
	case "list":
		runList(os.Args[2:])
	case "show":
		runShow(os.Args[2:])
	case "version":
		fmt.Println("flightdesk", version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: flightdesk <command> [flags]

commands:
  init     create the report database if absent
  ingest   ingest flight-event files: flightdesk ingest [-config path] <files...>
  stats    show aggregates: flightdesk stats [-config path] category
  list     list reports: flightdesk list [-config path] -severity <level>
  show     show one report: flightdesk show [-config path] -id <id>
  version  print version`)
}

// loadConfig loads configuration and sets up logging for a subcommand.
// Query subcommands pass quiet=true to keep stdout clean.
func loadConfig(path string, quiet bool) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	level := cfg.Log.Level
	if quiet {
		level = "error"
	}
	setupLogging(level)
	return cfg
}

func openStore(cfg *config.Config) *store.DB {
	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	return db
}

func runInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	cfg := loadConfig(*configPath, false)

	_, statErr := os.Stat(cfg.Database.Path)
	existed := statErr == nil

	db := openStore(cfg)
	defer db.Close()

	if existed {
		fmt.Println("Database already exists.")
		return
	}
	fmt.Println("Database initialized successfully.")
}

func runIngest(args []string) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "error: please provide at least one file path")
		os.Exit(1)
	}

	cfg := loadConfig(*configPath, false)

	svc, err := enrich.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error configuring enrichment: %v\n", err)
		os.Exit(1)
	}

	db := openStore(cfg)
	defer db.Close()

	in := ingest.New(parser.NewRegistry(), svc, db)
	sum := in.Run(context.Background(), files)

	fmt.Printf("\nIngestion complete. Added %d new records.\n", sum.Added)
	if sum.Duplicates > 0 {
		fmt.Printf("Skipped %d duplicate record(s).\n", sum.Duplicates)
	}
	if sum.SkippedFiles > 0 {
		fmt.Printf("Skipped %d unreadable file(s).\n", sum.SkippedFiles)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: flightdesk stats [-config path] category")
		os.Exit(1)
	}
	statType := fs.Arg(0)
	if statType != "category" {
		fmt.Fprintf(os.Stderr, "unknown stat type: %s\n", statType)
		os.Exit(1)
	}

	cfg := loadConfig(*configPath, true)
	db := openStore(cfg)
	defer db.Close()

	stats, err := db.StatsByCategory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "query error: %v\n", err)
		os.Exit(1)
	}
	if len(stats) == 0 {
		fmt.Println("No data found. Ingest some files first.")
		return
	}
	fmt.Print(reporter.FormatStats(stats))
}

func runList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	severity := fs.String("severity", "", "severity level (low, medium, high, critical)")
	fs.Parse(args)

	sev := report.Severity(*severity)
	if !sev.Known() {
		fmt.Fprintf(os.Stderr, "invalid severity %q (want low, medium, high, or critical)\n", *severity)
		os.Exit(1)
	}

	cfg := loadConfig(*configPath, true)
	db := openStore(cfg)
	defer db.Close()

	summaries, err := db.ListBySeverity(sev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "query error: %v\n", err)
		os.Exit(1)
	}
	if len(summaries) == 0 {
		fmt.Printf("No reports found with severity '%s'.\n", sev)
		return
	}
	fmt.Print(reporter.FormatList(sev, summaries))
}

func runShow(args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	id := fs.String("id", "", "report id")
	fs.Parse(args)

	if *id == "" {
		fmt.Fprintln(os.Stderr, "error: -id is required")
		os.Exit(1)
	}

	cfg := loadConfig(*configPath, true)
	db := openStore(cfg)
	defer db.Close()

	r, err := db.GetByID(*id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(reporter.FormatReport(r))
}

func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
