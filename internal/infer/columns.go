package infer

// Shape records how far a table's rows deviated from the header width.
type Shape struct {
	Rows      int
	ShortRows int // rows with fewer cells than the header; padded with nulls
	LongRows  int // rows with more cells than the header; extra cells dropped
}

// ColumnsFromRows splits a rectangular-ish table (header row + data rows) into
// columns. Missing trailing cells become null cells instead of failing the
// table; cells beyond the header width have no column and are dropped.
func ColumnsFromRows(header []string, rows [][]string) ([]Column, Shape) {
	shape := Shape{Rows: len(rows)}
	cols := make([]Column, len(header))
	for i, h := range header {
		cols[i] = Column{
			Name:     h,
			Position: i,
			Cells:    make([]Cell, 0, len(rows)),
		}
	}

	for _, r := range rows {
		switch {
		case len(r) < len(header):
			shape.ShortRows++
		case len(r) > len(header):
			shape.LongRows++
		}
		for i := range cols {
			if i < len(r) {
				cols[i].Cells = append(cols[i].Cells, TextCell(r[i]))
			} else {
				cols[i].Cells = append(cols[i].Cells, NullCell())
			}
		}
	}
	return cols, shape
}
