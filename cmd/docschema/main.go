// Command docschema converts a Word document into a spreadsheet and infers a
// relational schema from the document's tables.
//
// For every table in the input it writes one CREATE TABLE statement per SQL
// dialect (PostgreSQL, MySQL, SQLite, SQL Server) plus a JSON analysis report
// with the statistics each type decision was based on:
//
//	output/WordToExcel.xlsx
//	output/<table>.postgres.sql
//	output/<table>.mysql.sql
//	output/<table>.sqlite.sql
//	output/<table>.mssql.sql
//	output/<table>.analysis.json
//
// Usage:
//
//	docschema [flags] <input.docx|.html|.xlsx>
//
// Configuration is layered: flags override DOCSCHEMA_* environment
// variables, which override docschema.yaml, which overrides defaults.
//
// Stdout receives the list of written files, one per line. Logs and the
// optional --summary table go to stderr.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"docschema/internal/config"
	"docschema/internal/dialect"
	"docschema/internal/logging"
	"docschema/internal/metrics"
	"docschema/internal/metrics/datadog"
	"docschema/internal/pipeline"
	"docschema/internal/schema"
)

// Exit codes.
const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

// deps are external seams for tests.
type deps struct {
	Stdout io.Writer
	Stderr io.Writer

	BackendFactory func(ctx context.Context, tags []string, flushEvery time.Duration) (metrics.Backend, error)
	NewRunID       func() string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], deps{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		BackendFactory: func(ctx context.Context, tags []string, flushEvery time.Duration) (metrics.Backend, error) {
			return datadog.NewBackend(ctx, datadog.Options{
				Tags:       tags,
				FlushEvery: flushEvery,
			})
		},
		NewRunID: uuid.NewString,
	})
	stop()
	os.Exit(code)
}

// run executes the command and returns an exit code:
//   - 0: success
//   - 1: the run failed (unreadable input, unwritable output)
//   - 2: usage or configuration error
func run(ctx context.Context, args []string, d deps) int {
	if d.Stdout == nil {
		d.Stdout = io.Discard
	}
	if d.Stderr == nil {
		d.Stderr = io.Discard
	}
	if d.NewRunID == nil {
		d.NewRunID = uuid.NewString
	}

	fs := pflag.NewFlagSet("docschema", pflag.ContinueOnError)
	fs.SetOutput(d.Stderr)
	config.RegisterFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(d.Stderr, "usage: docschema [flags] <input.docx|.html|.xlsx>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	switch fs.NArg() {
	case 0:
	case 1:
		if fs.Changed("input") {
			fmt.Fprintln(d.Stderr, "give the input either as --input or as an argument, not both")
			return exitUsage
		}
		_ = fs.Set("input", fs.Arg(0))
	default:
		fs.Usage()
		return exitUsage
	}

	cfgFile, _ := fs.GetString("config")
	cfg, err := config.Load(cfgFile, fs)
	if err != nil {
		fmt.Fprintf(d.Stderr, "config: %v\n", err)
		return exitUsage
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(d.Stderr, "config: %v\n", err)
		if errors.Is(err, config.ErrMissingInput) {
			fs.Usage()
		}
		return exitUsage
	}
	dialects, err := dialect.ParseList(cfg.Dialects)
	if err != nil {
		fmt.Fprintf(d.Stderr, "config: %v\n", err)
		return exitUsage
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(d.Stderr, "config: %v\n", err)
		return exitUsage
	}
	runID := d.NewRunID()
	logger = logger.With(zap.String("run_id", runID))
	defer func() { _ = logger.Sync() }()

	if cfg.FileUsed != "" {
		logger.Debug("config file loaded", zap.String("path", cfg.FileUsed))
	}

	if cfg.Metrics.Backend == "datadog" {
		if d.BackendFactory == nil {
			fmt.Fprintln(d.Stderr, "internal error: BackendFactory is nil")
			return exitUsage
		}
		tags := append([]string{"run_id:" + runID}, cfg.Metrics.Tags...)
		b, err := d.BackendFactory(ctx, tags, cfg.Metrics.FlushEvery)
		if err != nil {
			fmt.Fprintf(d.Stderr, "metrics: %v\n", err)
			return exitUsage
		}
		metrics.SetBackend(b)
		defer func() {
			if err := metrics.Close(); err != nil {
				logger.Warn("metrics flush failed", zap.Error(err))
			}
			metrics.SetBackend(nil)
		}()
		logger.Info("metrics enabled", zap.String("backend", cfg.Metrics.Backend), zap.Strings("tags", tags))
	}

	opts := pipeline.Options{
		Input:     cfg.Input,
		OutputDir: cfg.OutputDir,
		TableName: cfg.TableName,
		Dialects:  dialects,
		Naming: schema.NamingOptions{
			MaxLength:        cfg.Naming.MaxLength,
			SingularTable:    cfg.Naming.SingularTable,
			QuoteIdentifiers: cfg.Naming.QuoteIdentifiers,
		},
		Workers:       cfg.Profile.Workers,
		WriteWorkbook: cfg.Workbook.Enabled,
		WorkbookFile:  cfg.Workbook.FileName,
		SheetName:     cfg.Workbook.SheetName,
	}
	if cfg.Summary {
		opts.SummaryOut = d.Stderr
	}

	start := time.Now()
	sum, err := pipeline.New(opts, logger).Run(ctx)
	if err != nil {
		logger.Error("run failed", zap.Error(err))
		return exitFatal
	}

	for _, f := range sum.Files() {
		fmt.Fprintln(d.Stdout, f)
	}
	logger.Info("done",
		zap.Int("tables", len(sum.Tables)),
		zap.Int("skipped", sum.Skipped),
		zap.Int("files", len(sum.Files())),
		zap.Duration("elapsed", time.Since(start)))
	return exitOK
}
