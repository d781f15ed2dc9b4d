package schema

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"docschema/internal/dialect"
	"docschema/internal/infer"
)

func derive(t *testing.T, header []string, rows [][]string) []ColumnSchema {
	t.Helper()
	cols, _ := infer.ColumnsFromRows(header, rows)
	out := make([]ColumnSchema, len(cols))
	for i, c := range cols {
		out[i] = Derive(c, infer.Profile(c))
	}
	return out
}

var budgetHeader = []string{"Item No", "Description", "Amount (KES)", "Approved On"}

var budgetRows = [][]string{
	{"1", "Roads", "1500000.50", "2023-07-01"},
	{"2", "Health", "820000.25", "2023-07-15"},
	{"3", "Water", "", "2023-08-01"},
}

// TestAssemble_DDL verifies statement shape, column order and null markers.
func TestAssemble_DDL(t *testing.T) {
	t.Parallel()

	cols := derive(t, budgetHeader, budgetRows)
	res, err := Assembler{}.Assemble("County Budget", cols, dialect.All)
	require.NoError(t, err)

	assert.Equal(t, "county_budget", res.Table)
	assert.Equal(t, []string{"item_no", "description", "amount_kes", "approved_on"}, res.Columns)

	want := "CREATE TABLE county_budget (\n" +
		"  item_no SMALLINT NOT NULL,\n" +
		"  description VARCHAR(6) NOT NULL,\n" +
		"  amount_kes NUMERIC(9,2) NULL,\n" +
		"  approved_on TIMESTAMP NOT NULL\n" +
		");\n"
	assert.Equal(t, want, res.DDL[dialect.Postgres])

	assert.Contains(t, res.DDL[dialect.MySQL], "amount_kes DECIMAL(9,2) NULL")
	assert.Contains(t, res.DDL[dialect.MySQL], "approved_on DATETIME NOT NULL")
	assert.Contains(t, res.DDL[dialect.SQLite], "description TEXT NOT NULL")
	assert.Contains(t, res.DDL[dialect.MSSQL], "approved_on DATETIME2 NOT NULL")
	assert.Len(t, res.DDL, 4)
}

// TestAssemble_OnlyRequestedDialects verifies the dialect set is honored.
func TestAssemble_OnlyRequestedDialects(t *testing.T) {
	t.Parallel()

	res, err := Assembler{}.Assemble("t", derive(t, []string{"a"}, [][]string{{"1"}}), []dialect.Dialect{dialect.SQLite})
	require.NoError(t, err)
	assert.Len(t, res.DDL, 1)
	assert.Contains(t, res.DDL, dialect.SQLite)
	assert.Equal(t, map[string]string{"sqlite": "INTEGER"}, res.Report[0].SQLTypes)
}

// TestAssemble_NoColumns verifies an empty column list is rejected.
func TestAssemble_NoColumns(t *testing.T) {
	t.Parallel()

	_, err := Assembler{}.Assemble("t", nil, dialect.All)
	assert.ErrorIs(t, err, ErrNoColumns)
}

// TestAssemble_ReportMatchesDDL verifies the report uses the same normalized
// names as the DDL and carries original names and full stats.
func TestAssemble_ReportMatchesDDL(t *testing.T) {
	t.Parallel()

	cols := derive(t, budgetHeader, budgetRows)
	res, err := Assembler{}.Assemble("budget", cols, dialect.All)
	require.NoError(t, err)
	require.Len(t, res.Report, len(cols))

	for i, c := range res.Report {
		assert.Equal(t, res.Columns[i], c.Name)
		assert.Equal(t, budgetHeader[i], c.OriginalName)
		assert.Equal(t, i, c.Position)
		for _, d := range dialect.All {
			assert.Contains(t, res.DDL[d], "  "+c.Name+" ")
		}
	}

	amount := res.Report[2]
	assert.Equal(t, "Decimal(9,2)", amount.Type)
	assert.True(t, amount.Nullable)
	assert.Equal(t, 1, amount.Stats.NullCount)
	assert.Equal(t, 3, amount.Stats.TotalCount)

	var buf bytes.Buffer
	require.NoError(t, res.Report.WriteJSON(&buf))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 4)
	assert.Equal(t, "amount_kes", decoded[2]["name"])
	assert.Equal(t, "Decimal(9,2)", decoded[2]["type"])
	assert.Equal(t, true, decoded[2]["nullable"])
	stats := decoded[2]["stats"].(map[string]any)
	for _, k := range []string{"nullCount", "totalCount", "min", "max", "maxLength"} {
		assert.Contains(t, stats, k)
	}
	assert.NotContains(t, decoded[1]["stats"].(map[string]any), "min", "text column has no numeric min")
}

// TestAssemble_EmptyTable verifies a header-only table still yields DDL with
// nullable ShortText(1) columns.
func TestAssemble_EmptyTable(t *testing.T) {
	t.Parallel()

	res, err := Assembler{}.Assemble("t", derive(t, []string{"a", "b"}, nil), []dialect.Dialect{dialect.Postgres})
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE t (\n  a VARCHAR(1) NULL,\n  b VARCHAR(1) NULL\n);\n", res.DDL[dialect.Postgres])
}

// TestAssemble_Quoted verifies identifier quoting per dialect.
func TestAssemble_Quoted(t *testing.T) {
	t.Parallel()

	cols := derive(t, []string{"Order", "Select"}, [][]string{{"1", "x"}})
	res, err := Assembler{Naming: NamingOptions{QuoteIdentifiers: true}}.Assemble("Group", cols, dialect.All)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.DDL[dialect.Postgres], `CREATE TABLE "group" (`))
	assert.Contains(t, res.DDL[dialect.MySQL], "`order` SMALLINT NOT NULL")
	assert.Contains(t, res.DDL[dialect.MSSQL], "[select] VARCHAR(1) NOT NULL")
}

// TestAssemble_SQLiteExecutes runs the generated SQLite DDL, quoted and
// unquoted, against an in-memory database.
func TestAssemble_SQLiteExecutes(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cols := derive(t, budgetHeader, budgetRows)

	res, err := Assembler{}.Assemble("budget", cols, []dialect.Dialect{dialect.SQLite})
	require.NoError(t, err)
	_, err = db.Exec(res.DDL[dialect.SQLite])
	require.NoError(t, err)

	quoted, err := Assembler{Naming: NamingOptions{QuoteIdentifiers: true}}.Assemble("order", cols, []dialect.Dialect{dialect.SQLite})
	require.NoError(t, err)
	_, err = db.Exec(quoted.DDL[dialect.SQLite])
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO budget (item_no, description, amount_kes, approved_on) VALUES (1, 'Roads', NULL, '2023-07-01')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO budget (item_no, description, amount_kes, approved_on) VALUES (NULL, 'x', 1, '2023-07-01')`)
	assert.Error(t, err, "NOT NULL column must reject NULL")
}

// TestAssemble_ReservedWords verifies headers that normalize to keywords are
// quoted even when identifier quoting is off, and the DDL executes.
func TestAssemble_ReservedWords(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cols := derive(t, []string{"Order", "Group", "Amount"}, [][]string{
		{"1", "Roads", "10.5"},
		{"2", "Health", "7.25"},
	})

	res, err := Assembler{}.Assemble("finance", cols, dialect.All)
	require.NoError(t, err)

	assert.Equal(t, []string{"order", "group", "amount"}, res.Columns)
	assert.Equal(t, "CREATE TABLE finance (\n"+
		"  \"order\" SMALLINT NOT NULL,\n"+
		"  \"group\" VARCHAR(6) NOT NULL,\n"+
		"  amount NUMERIC(4,2) NOT NULL\n"+
		");\n", res.DDL[dialect.Postgres])
	assert.Contains(t, res.DDL[dialect.MySQL], "`order` SMALLINT")
	assert.Contains(t, res.DDL[dialect.MSSQL], "[group] VARCHAR(6)")

	_, err = db.Exec(res.DDL[dialect.SQLite])
	require.NoError(t, err, res.DDL[dialect.SQLite])
	_, err = db.Exec(`INSERT INTO finance ("order", "group", amount) VALUES (3, 'Water', 1.5)`)
	require.NoError(t, err)

	table, err := Assembler{}.Assemble("Table", cols, []dialect.Dialect{dialect.SQLite})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(table.DDL[dialect.SQLite], `CREATE TABLE "table" (`), table.DDL[dialect.SQLite])
	_, err = db.Exec(table.DDL[dialect.SQLite])
	require.NoError(t, err)
}

// TestWriteSummary verifies the summary table lists every column.
func TestWriteSummary(t *testing.T) {
	t.Parallel()

	res, err := Assembler{}.Assemble("budget", derive(t, budgetHeader, budgetRows), dialect.All)
	require.NoError(t, err)

	var buf bytes.Buffer
	WriteSummary(&buf, res)
	out := buf.String()
	for _, n := range res.Columns {
		assert.Contains(t, out, n)
	}
	assert.Contains(t, out, "Decimal(9,2)")
	assert.Contains(t, out, "1/3")
}
