// Package workbook writes a document's paragraphs and tables into a single
// spreadsheet sheet.
//
// Layout follows the document: each non-blank paragraph takes one row in
// column A, and each table is copied cell by cell starting at the next free
// row. Every value is written as a string so that downstream profiling sees
// exactly what the document contained.
package workbook

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"docschema/internal/document"
)

// DefaultSheetName is the name of the only sheet in the written workbook.
const DefaultSheetName = "WordToExcel"

const (
	paragraphFont     = "Calibri"
	paragraphFontSize = 11
)

// Options controls the written workbook.
type Options struct {
	SheetName string
}

// Stats describes what Write put into the sheet.
type Stats struct {
	Rows       int
	Paragraphs int
	Tables     int
}

// Write renders doc into a new workbook at path, creating parent directories.
func Write(doc *document.Document, path string, opts Options) (Stats, error) {
	sheet := opts.SheetName
	if sheet == "" {
		sheet = DefaultSheetName
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return Stats{}, fmt.Errorf("name sheet %q: %w", sheet, err)
	}

	w := &sheetWriter{f: f, sheet: sheet, row: 1, styles: map[styleKey]int{}}
	var st Stats
	for _, b := range doc.Blocks {
		switch {
		case b.Paragraph != nil:
			if strings.TrimSpace(b.Paragraph.Text) == "" {
				continue
			}
			if err := w.paragraph(*b.Paragraph); err != nil {
				return Stats{}, err
			}
			st.Paragraphs++
		case b.Table != nil:
			if err := w.table(*b.Table); err != nil {
				return Stats{}, err
			}
			st.Tables++
		}
	}
	st.Rows = w.row - 1

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Stats{}, fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return Stats{}, fmt.Errorf("save workbook %s: %w", path, err)
	}
	return st, nil
}

type styleKey struct {
	paragraph    bool
	bold, italic bool
}

type sheetWriter struct {
	f      *excelize.File
	sheet  string
	row    int
	styles map[styleKey]int
}

func (w *sheetWriter) style(k styleKey) (int, error) {
	if id, ok := w.styles[k]; ok {
		return id, nil
	}
	s := &excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left", WrapText: true},
	}
	if k.paragraph {
		s.Font = &excelize.Font{
			Family: paragraphFont,
			Size:   paragraphFontSize,
			Bold:   k.bold,
			Italic: k.italic,
		}
	}
	id, err := w.f.NewStyle(s)
	if err != nil {
		return 0, fmt.Errorf("new style: %w", err)
	}
	w.styles[k] = id
	return id, nil
}

func (w *sheetWriter) set(col int, value string, k styleKey) error {
	cell, err := excelize.CoordinatesToCellName(col, w.row)
	if err != nil {
		return err
	}
	if err := w.f.SetCellStr(w.sheet, cell, value); err != nil {
		return fmt.Errorf("set %s: %w", cell, err)
	}
	id, err := w.style(k)
	if err != nil {
		return err
	}
	if err := w.f.SetCellStyle(w.sheet, cell, cell, id); err != nil {
		return fmt.Errorf("style %s: %w", cell, err)
	}
	return nil
}

func (w *sheetWriter) paragraph(p document.Paragraph) error {
	if err := w.set(1, p.Text, styleKey{paragraph: true, bold: p.Bold, italic: p.Italic}); err != nil {
		return err
	}
	w.row++
	return nil
}

func (w *sheetWriter) table(t document.Table) error {
	for _, r := range t.Rows {
		for i, v := range r {
			if err := w.set(i+1, v, styleKey{}); err != nil {
				return err
			}
		}
		w.row++
	}
	return nil
}
