package schema

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// WriteSummary renders a human-readable column table for one Result.
func WriteSummary(w io.Writer, r Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(r.Table)
	t.AppendHeader(table.Row{"#", "column", "header", "type", "nullable", "nulls", "distinct"})

	for _, c := range r.Report {
		t.AppendRow(table.Row{
			c.Position + 1,
			c.Name,
			c.OriginalName,
			c.Type,
			c.Nullable,
			fmt.Sprintf("%d/%d", c.Stats.NullCount, c.Stats.TotalCount),
			c.Stats.Distinct,
		})
	}
	t.Render()
}
