// Package pipeline runs one document through the whole conversion:
// read, write the spreadsheet, profile every table, resolve types, and write
// DDL plus the analysis report for each table.
//
// Everything happens in one pass over one document. Parallelism, when
// enabled, is limited to profiling the columns of a single table.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"docschema/internal/dialect"
	"docschema/internal/document"
	"docschema/internal/infer"
	"docschema/internal/logging"
	"docschema/internal/metrics"
	"docschema/internal/schema"
	"docschema/internal/workbook"
)

// Options configures a run.
type Options struct {
	Input     string
	OutputDir string

	// TableName overrides the table name derived from the input file name.
	TableName string
	Dialects  []dialect.Dialect
	Naming    schema.NamingOptions

	// Workers > 1 profiles columns concurrently.
	Workers int

	WriteWorkbook bool
	WorkbookFile  string
	SheetName     string

	// SummaryOut receives a column table per schema'd table when non-nil.
	SummaryOut io.Writer
}

// TableOutput describes one schema'd table.
type TableOutput struct {
	Table   string
	Rows    int
	Columns int
	Files   []string
}

// Summary describes a completed run.
type Summary struct {
	Workbook string
	Tables   []TableOutput
	Skipped  int
}

// Files returns every file the run wrote, in write order.
func (s Summary) Files() []string {
	var out []string
	if s.Workbook != "" {
		out = append(out, s.Workbook)
	}
	for _, t := range s.Tables {
		out = append(out, t.Files...)
	}
	return out
}

// Runner executes the pipeline.
type Runner struct {
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

// New returns a Runner. A nil logger discards logs.
func New(opts Options, logger *zap.Logger) *Runner {
	if len(opts.Dialects) == 0 {
		opts.Dialects = dialect.All
	}
	if opts.WorkbookFile == "" {
		opts.WorkbookFile = "WordToExcel.xlsx"
	}
	return &Runner{
		opts:   opts,
		logger: logging.OrNop(logger).Named("pipeline"),
		now:    time.Now,
	}
}

// step times fn and records it under name.
func (r *Runner) step(name string, fn func() error) error {
	start := r.now()
	err := fn()
	metrics.RecordStep(name, r.now().Sub(start), err)
	return err
}

// Run executes the whole conversion. Errors are fatal I/O problems; data
// problems (ragged rows, unparseable cells) are logged and absorbed.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	var doc *document.Document
	if err := r.step("read", func() error {
		var err error
		doc, err = document.Open(r.opts.Input)
		return err
	}); err != nil {
		return sum, err
	}
	r.logger.Info("document read",
		zap.String("input", r.opts.Input),
		zap.String("size", fileSize(r.opts.Input)),
		zap.Int("blocks", len(doc.Blocks)),
		zap.Int("tables", len(doc.Tables())))

	if err := os.MkdirAll(r.opts.OutputDir, 0o755); err != nil {
		return sum, fmt.Errorf("create output dir: %w", err)
	}

	if r.opts.WriteWorkbook {
		path := filepath.Join(r.opts.OutputDir, r.opts.WorkbookFile)
		var st workbook.Stats
		if err := r.step("workbook", func() error {
			var err error
			st, err = workbook.Write(doc, path, workbook.Options{SheetName: r.opts.SheetName})
			return err
		}); err != nil {
			return sum, err
		}
		sum.Workbook = path
		r.logger.Info("workbook written",
			zap.String("path", path),
			zap.String("size", fileSize(path)),
			zap.Int("rows", st.Rows),
			zap.Int("paragraphs", st.Paragraphs),
			zap.Int("tables", st.Tables))
	}

	tables := doc.Tables()
	if len(tables) == 0 {
		r.logger.Warn("document has no tables; nothing to schema", zap.String("input", r.opts.Input))
	}

	base := r.baseTableName()
	for i, t := range tables {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		name := base
		if len(tables) > 1 {
			name = base + "_" + strconv.Itoa(i+1)
		}
		if len(t.Header()) == 0 {
			r.logger.Warn("table has no header row; skipped", zap.Int("table", i+1))
			sum.Skipped++
			continue
		}

		out, err := r.table(ctx, name, t)
		if err != nil {
			return sum, fmt.Errorf("table %d (%s): %w", i+1, name, err)
		}
		sum.Tables = append(sum.Tables, out)
	}
	return sum, nil
}

func (r *Runner) baseTableName() string {
	if strings.TrimSpace(r.opts.TableName) != "" {
		return r.opts.TableName
	}
	b := filepath.Base(r.opts.Input)
	return strings.TrimSuffix(b, filepath.Ext(b))
}

func (r *Runner) table(ctx context.Context, name string, t document.Table) (TableOutput, error) {
	log := r.logger.With(zap.String("table", name))

	cols, shape := infer.ColumnsFromRows(t.Header(), t.Body())
	if shape.ShortRows > 0 || shape.LongRows > 0 {
		log.Warn("ragged rows",
			zap.Int("rows", shape.Rows),
			zap.Int("short_rows", shape.ShortRows),
			zap.Int("long_rows", shape.LongRows))
	}

	var stats []infer.ColumnStats
	if err := r.step("profile", func() error {
		var err error
		stats, err = infer.ProfileColumns(ctx, cols, r.opts.Workers)
		return err
	}); err != nil {
		return TableOutput{}, err
	}

	schemas := make([]schema.ColumnSchema, len(cols))
	for i, c := range cols {
		schemas[i] = schema.Derive(c, stats[i])
		recordColumn(schemas[i])
	}

	var res schema.Result
	if err := r.step("assemble", func() error {
		var err error
		res, err = schema.Assembler{Naming: r.opts.Naming}.Assemble(name, schemas, r.opts.Dialects)
		return err
	}); err != nil {
		return TableOutput{}, err
	}

	for _, c := range res.Report {
		log.Debug("column resolved",
			zap.String("column", c.Name),
			zap.String("type", c.Type),
			zap.Bool("nullable", c.Nullable),
			zap.Int("nulls", c.Stats.NullCount))
	}

	var files []string
	if err := r.step("write", func() error {
		var err error
		files, err = r.writeOutputs(res)
		return err
	}); err != nil {
		return TableOutput{}, err
	}

	metrics.IncCounter(metrics.TablesTotal, 1, nil)
	log.Info("schema written",
		zap.String("name", res.Table),
		zap.Int("columns", len(res.Columns)),
		zap.Int("rows", shape.Rows),
		zap.Strings("files", files))

	if r.opts.SummaryOut != nil {
		schema.WriteSummary(r.opts.SummaryOut, res)
	}

	return TableOutput{
		Table:   res.Table,
		Rows:    shape.Rows,
		Columns: len(res.Columns),
		Files:   files,
	}, nil
}

func recordColumn(c schema.ColumnSchema) {
	metrics.IncCounter(metrics.ColumnsTotal, 1, metrics.Labels{"type": c.Type.Tag.String()})

	k := c.Stats.Kinds
	for kind, n := range map[string]int{
		"null":     k.Null,
		"integer":  k.Integer,
		"decimal":  k.Decimal,
		"datetime": k.DateTime,
		"text":     k.Text,
	} {
		metrics.IncCounter(metrics.CellsTotal, float64(n), metrics.Labels{"kind": kind})
	}
}

// writeOutputs writes <table>.<dialect>.sql per dialect and
// <table>.analysis.json, returning the paths written.
func (r *Runner) writeOutputs(res schema.Result) ([]string, error) {
	files := make([]string, 0, len(r.opts.Dialects)+1)
	for _, d := range r.opts.Dialects {
		path := filepath.Join(r.opts.OutputDir, res.Table+"."+d.String()+".sql")
		if err := os.WriteFile(path, []byte(res.DDL[d]), 0o644); err != nil {
			return files, fmt.Errorf("write %s: %w", path, err)
		}
		files = append(files, path)
	}

	path := filepath.Join(r.opts.OutputDir, res.Table+".analysis.json")
	f, err := os.Create(path)
	if err != nil {
		return files, fmt.Errorf("create %s: %w", path, err)
	}
	if err := res.Report.WriteJSON(f); err != nil {
		_ = f.Close()
		return files, fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return files, fmt.Errorf("close %s: %w", path, err)
	}
	return append(files, path), nil
}

func fileSize(path string) string {
	st, err := os.Stat(path)
	if err != nil {
		return "unknown"
	}
	return humanize.Bytes(uint64(st.Size()))
}
