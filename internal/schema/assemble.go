// Package schema assembles resolved columns into CREATE TABLE statements for
// each requested dialect plus the JSON analysis report.
//
// Name normalization happens exactly once, in Assemble, and the same
// normalized names feed both the DDL and the report.
package schema

import (
	"errors"
	"fmt"
	"strings"

	"docschema/internal/dialect"
	"docschema/internal/infer"
)

// ErrNoColumns is returned when a table has nothing to declare.
var ErrNoColumns = errors.New("table has no columns")

// ColumnSchema is one resolved column: its header as extracted, position,
// logical type, nullability, and the statistics the decision was based on.
type ColumnSchema struct {
	Name     string
	Position int
	Type     infer.LogicalType
	Nullable bool
	Stats    infer.ColumnStats
}

// Derive resolves a profiled column into a ColumnSchema.
func Derive(col infer.Column, stats infer.ColumnStats) ColumnSchema {
	t, nullable := infer.Resolve(stats)
	return ColumnSchema{
		Name:     col.Name,
		Position: col.Position,
		Type:     t,
		Nullable: nullable,
		Stats:    stats,
	}
}

// Result is the assembled output for one table. Nothing aliases it after
// Assemble returns.
type Result struct {
	Table   string
	Columns []string // normalized, in document order
	DDL     map[dialect.Dialect]string
	Report  AnalysisReport
}

// Assembler turns resolved columns into DDL and a report.
type Assembler struct {
	Naming NamingOptions
}

// Assemble emits one CREATE TABLE statement per dialect, with columns in
// document order, and the analysis report for the same normalized names.
func (a Assembler) Assemble(tableName string, cols []ColumnSchema, dialects []dialect.Dialect) (Result, error) {
	if len(cols) == 0 {
		return Result{}, fmt.Errorf("assemble %q: %w", tableName, ErrNoColumns)
	}

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Name
	}
	names := ColumnNames(headers, a.Naming)
	table := TableName(tableName, a.Naming)

	res := Result{
		Table:   table,
		Columns: names,
		DDL:     make(map[dialect.Dialect]string, len(dialects)),
		Report:  make(AnalysisReport, 0, len(cols)),
	}

	for _, d := range dialects {
		res.DDL[d] = a.createTable(d, table, names, cols)
	}

	for i, c := range cols {
		res.Report = append(res.Report, ColumnReport{
			Name:         names[i],
			OriginalName: c.Name,
			Position:     c.Position,
			Type:         c.Type.String(),
			Nullable:     c.Nullable,
			SQLTypes:     renderAll(c.Type, dialects),
			Stats:        c.Stats,
		})
	}
	return res, nil
}

func (a Assembler) createTable(d dialect.Dialect, table string, names []string, cols []ColumnSchema) string {
	ident := func(s string) string {
		return dialect.Ident(d, s, a.Naming.QuoteIdentifiers)
	}

	lines := make([]string, len(cols))
	for i, c := range cols {
		null := "NOT NULL"
		if c.Nullable {
			null = "NULL"
		}
		lines[i] = fmt.Sprintf("  %s %s %s", ident(names[i]), dialect.Render(c.Type, d), null)
	}
	return fmt.Sprintf("CREATE TABLE %s (\n%s\n);\n", ident(table), strings.Join(lines, ",\n"))
}

func renderAll(t infer.LogicalType, dialects []dialect.Dialect) map[string]string {
	out := make(map[string]string, len(dialects))
	for _, d := range dialects {
		out[d.String()] = dialect.Render(t, d)
	}
	return out
}
