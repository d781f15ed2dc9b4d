// Package document reads paragraphs and tables out of an input document.
//
// Three formats are supported:
//   - .docx (Office Open XML word processing)
//   - .htm / .html (including Word's "Save as Web Page" output)
//   - .xlsx (first sheet, read as a single table)
//
// The result is a flat, ordered list of blocks. Table cells are raw strings
// exactly as they appear in the document; classification happens downstream.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned by Open for an unknown file extension.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrNoBody is returned when a document has no readable body part.
	ErrNoBody = errors.New("document has no body")
)

// Paragraph is one block of running text.
type Paragraph struct {
	Text   string
	Style  string
	Bold   bool
	Italic bool
}

// Table is a grid of raw cell strings. Rows may have different lengths.
type Table struct {
	Rows [][]string
}

// Header returns the first row, or nil for an empty table.
func (t Table) Header() []string {
	if len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

// Body returns every row after the header.
func (t Table) Body() [][]string {
	if len(t.Rows) < 2 {
		return nil
	}
	return t.Rows[1:]
}

// Block holds exactly one of Paragraph or Table.
type Block struct {
	Paragraph *Paragraph
	Table     *Table
}

// Document is the ordered content of one input file.
type Document struct {
	Path   string
	Blocks []Block
}

// Tables returns the document's tables in document order.
func (d *Document) Tables() []Table {
	var out []Table
	for _, b := range d.Blocks {
		if b.Table != nil {
			out = append(out, *b.Table)
		}
	}
	return out
}

// Paragraphs returns the document's paragraphs in document order.
func (d *Document) Paragraphs() []Paragraph {
	var out []Paragraph
	for _, b := range d.Blocks {
		if b.Paragraph != nil {
			out = append(out, *b.Paragraph)
		}
	}
	return out
}

func (d *Document) addParagraph(p Paragraph) {
	d.Blocks = append(d.Blocks, Block{Paragraph: &p})
}

func (d *Document) addTable(t Table) {
	d.Blocks = append(d.Blocks, Block{Table: &t})
}

// Open reads the document at path, choosing a reader by file extension.
func Open(path string) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".docx", ".htm", ".html", ".xlsx":
	default:
		return nil, fmt.Errorf("open %s: %w (%q)", path, ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var doc *Document
	switch ext {
	case ".docx":
		st, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		doc, err = ReadDocx(f, st.Size())
		if err != nil {
			return nil, fmt.Errorf("read docx %s: %w", path, err)
		}
	case ".htm", ".html":
		doc, err = ReadHTML(f)
		if err != nil {
			return nil, fmt.Errorf("read html %s: %w", path, err)
		}
	case ".xlsx":
		doc, err = ReadXLSX(f)
		if err != nil {
			return nil, fmt.Errorf("read xlsx %s: %w", path, err)
		}
	}
	doc.Path = path
	return doc, nil
}
