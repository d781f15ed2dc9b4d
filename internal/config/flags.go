package config

import (
	"github.com/spf13/pflag"

	"docschema/internal/schema"
	"docschema/internal/workbook"
)

// flagKeys maps flag names to config keys. Flags missing here (such as
// --config) are read directly by the caller.
var flagKeys = map[string]string{
	"input":             "input",
	"output-dir":        "output_dir",
	"table-name":        "table_name",
	"dialect":           "dialects",
	"summary":           "summary",
	"no-workbook":       "workbook.enabled",
	"workbook-file":     "workbook.file_name",
	"sheet-name":        "workbook.sheet_name",
	"max-ident-length":  "naming.max_length",
	"singular-table":    "naming.singular_table",
	"quote-identifiers": "naming.quote_identifiers",
	"workers":           "profile.workers",
	"log-level":         "log.level",
	"log-format":        "log.format",
	"metrics":           "metrics.backend",
	"metrics-tag":       "metrics.tags",
	"metrics-flush":     "metrics.flush_every",
}

// RegisterFlags declares every command-line flag Load understands. The
// defaults shown in help text mirror the built-in defaults; they only apply
// when a flag is explicitly set.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "path to a YAML config file (default: ./docschema.yaml if present)")
	fs.StringP("input", "i", "", "input document (.docx, .htm/.html, .xlsx)")
	fs.StringP("output-dir", "o", DefaultOutputDir, "directory for the workbook, DDL and analysis files")
	fs.StringP("table-name", "t", "", "table name (default: input file name)")
	fs.StringSliceP("dialect", "d", nil, "SQL dialects to emit: postgres, mysql, sqlite, mssql (default: all)")
	fs.Bool("summary", false, "print a column summary table to stderr")
	fs.Bool("no-workbook", false, "skip writing the intermediate spreadsheet")
	fs.String("workbook-file", DefaultWorkbookFile, "spreadsheet file name inside the output directory")
	fs.String("sheet-name", workbook.DefaultSheetName, "spreadsheet sheet name")
	fs.Int("max-ident-length", schema.DefaultMaxIdentLength, "maximum identifier length")
	fs.Bool("singular-table", false, "singularize the last word of table names")
	fs.Bool("quote-identifiers", false, "quote every identifier in DDL (reserved words are always quoted)")
	fs.Int("workers", 1, "concurrent column profilers (1 = sequential)")
	fs.String("log-level", DefaultLogLevel, "log level: debug, info, warn, error")
	fs.String("log-format", DefaultLogFormat, "log format: console or json")
	fs.String("metrics", "none", "metrics backend: none or datadog")
	fs.StringSlice("metrics-tag", nil, "extra metrics tags (key:value)")
	fs.Duration("metrics-flush", DefaultFlushInterval, "metrics flush interval")
}
