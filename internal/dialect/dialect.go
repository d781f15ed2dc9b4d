// Package dialect renders logical column types as dialect-specific DDL type
// literals for PostgreSQL, MySQL, SQLite and SQL Server.
//
// The mapping is a lookup table keyed by (logical type tag, dialect) so the
// whole policy can be read in one place and tested exhaustively.
package dialect

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"docschema/internal/infer"
)

// ErrUnknownDialect is returned by Parse for names outside the supported set.
var ErrUnknownDialect = errors.New("unknown dialect")

// Dialect identifies one SQL syntax variant.
type Dialect int

const (
	Postgres Dialect = iota + 1
	MySQL
	SQLite
	MSSQL
)

// All lists every supported dialect in output order.
var All = []Dialect{Postgres, MySQL, SQLite, MSSQL}

// String returns the canonical lowercase name, also used in output file names.
func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case MySQL:
		return "mysql"
	case SQLite:
		return "sqlite"
	case MSSQL:
		return "mssql"
	default:
		return "dialect(" + strconv.Itoa(int(d)) + ")"
	}
}

// Parse maps a user-supplied name (case-insensitive, common aliases accepted)
// to a Dialect.
func Parse(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	case "mysql", "mariadb":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "mssql", "sqlserver":
		return MSSQL, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDialect, s)
	}
}

// ParseList parses names in order, dropping duplicates. An empty list
// selects All.
func ParseList(names []string) ([]Dialect, error) {
	out := make([]Dialect, 0, len(names))
	seen := make(map[Dialect]bool, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		d, err := Parse(n)
		if err != nil {
			return nil, err
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	if len(out) == 0 {
		return append([]Dialect(nil), All...), nil
	}
	return out, nil
}

type typeKey struct {
	tag     infer.Tag
	dialect Dialect
}

// typeTable holds one literal per (tag, dialect). {p}, {s} and {n} are
// replaced with precision, scale and length.
var typeTable = map[typeKey]string{
	{infer.TagSmallInt, Postgres}: "SMALLINT",
	{infer.TagSmallInt, MySQL}:    "SMALLINT",
	{infer.TagSmallInt, SQLite}:   "INTEGER",
	{infer.TagSmallInt, MSSQL}:    "SMALLINT",

	{infer.TagInt, Postgres}: "INTEGER",
	{infer.TagInt, MySQL}:    "INT",
	{infer.TagInt, SQLite}:   "INTEGER",
	{infer.TagInt, MSSQL}:    "INT",

	{infer.TagBigInt, Postgres}: "BIGINT",
	{infer.TagBigInt, MySQL}:    "BIGINT",
	{infer.TagBigInt, SQLite}:   "INTEGER",
	{infer.TagBigInt, MSSQL}:    "BIGINT",

	{infer.TagDecimal, Postgres}: "NUMERIC({p},{s})",
	{infer.TagDecimal, MySQL}:    "DECIMAL({p},{s})",
	{infer.TagDecimal, SQLite}:   "NUMERIC({p},{s})",
	{infer.TagDecimal, MSSQL}:    "DECIMAL({p},{s})",

	{infer.TagTimestamp, Postgres}: "TIMESTAMP",
	{infer.TagTimestamp, MySQL}:    "DATETIME",
	{infer.TagTimestamp, SQLite}:   "TEXT",
	{infer.TagTimestamp, MSSQL}:    "DATETIME2",

	{infer.TagShortText, Postgres}: "VARCHAR({n})",
	{infer.TagShortText, MySQL}:    "VARCHAR({n})",
	{infer.TagShortText, SQLite}:   "TEXT",
	{infer.TagShortText, MSSQL}:    "VARCHAR({n})",

	{infer.TagLongText, Postgres}: "TEXT",
	{infer.TagLongText, MySQL}:    "LONGTEXT",
	{infer.TagLongText, SQLite}:   "TEXT",
	{infer.TagLongText, MSSQL}:    "NVARCHAR(MAX)",
}

// MySQL MEDIUMTEXT bounds, in characters.
const (
	mysqlTextMax   = 65535
	mysqlMediumMax = 16777215
)

// Render returns the DDL type literal for t in dialect d. Unknown renders as
// ShortText(1). For MySQL LongText the observed length carried in t picks
// MEDIUMTEXT over LONGTEXT.
func Render(t infer.LogicalType, d Dialect) string {
	if t.Tag == infer.TagUnknown {
		t = infer.ShortText(1)
	}
	if t.Tag == infer.TagLongText && d == MySQL && t.Length > mysqlTextMax && t.Length <= mysqlMediumMax {
		return "MEDIUMTEXT"
	}

	lit, ok := typeTable[typeKey{t.Tag, d}]
	if !ok {
		// Unsupported dialect value: fall back to the most portable literal.
		return "TEXT"
	}
	return strings.NewReplacer(
		"{p}", strconv.Itoa(t.Precision),
		"{s}", strconv.Itoa(t.Scale),
		"{n}", strconv.Itoa(t.Length),
	).Replace(lit)
}

// QuoteIdent quotes an identifier the way d expects:
// "x" for PostgreSQL and SQLite, `x` for MySQL, [x] for SQL Server.
func QuoteIdent(d Dialect, id string) string {
	switch d {
	case MySQL:
		return "`" + strings.ReplaceAll(id, "`", "``") + "`"
	case MSSQL:
		return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
	default:
		return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
	}
}
