package document

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const htmlBlockSelector = "p, h1, h2, h3, h4, h5, h6, table"

// ReadHTML reads paragraphs and top-level tables from an HTML document.
//
// Headings become bold paragraphs. A paragraph is bold (italic) when all of
// its text sits inside b/strong (i/em) elements. Whitespace inside blocks is
// collapsed the way a browser would render it.
func ReadHTML(r io.Reader) (*Document, error) {
	page, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := &Document{}
	page.Find(htmlBlockSelector).Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered("table").Length() > 0 {
			return
		}

		tag := goquery.NodeName(s)
		if tag == "table" {
			doc.addTable(readHTMLTable(s))
			return
		}
		if s.ParentsFiltered("p, h1, h2, h3, h4, h5, h6").Length() > 0 {
			return
		}

		text := collapseSpace(s.Text())
		p := Paragraph{Text: text, Style: tag}
		if class, ok := s.Attr("class"); ok && class != "" {
			p.Style = class
		}
		if tag != "p" {
			p.Bold = true
		} else {
			p.Bold = coveredBy(s, "b, strong", text)
		}
		p.Italic = coveredBy(s, "i, em", text)
		doc.addParagraph(p)
	})
	return doc, nil
}

func readHTMLTable(tbl *goquery.Selection) Table {
	var t Table
	tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if !tr.Closest("table").IsSelection(tbl) {
			return
		}
		var row []string
		tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
			row = append(row, collapseSpace(cell.Text()))
			if v, ok := cell.Attr("colspan"); ok {
				if span, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
					for i := 1; i < span; i++ {
						row = append(row, "")
					}
				}
			}
		})
		t.Rows = append(t.Rows, row)
	})
	return t
}

// coveredBy reports whether the text of the elements matching sel inside s
// accounts for all of s's (non-empty) text.
func coveredBy(s *goquery.Selection, sel, text string) bool {
	if text == "" {
		return false
	}
	var sb strings.Builder
	s.Find(sel).Each(func(_ int, m *goquery.Selection) {
		if m.ParentsUntilSelection(s).Filter(sel).Length() > 0 {
			// nested emphasis is already counted by its ancestor
			return
		}
		sb.WriteString(m.Text())
	})
	return strings.ReplaceAll(collapseSpace(sb.String()), " ", "") == strings.ReplaceAll(text, " ", "")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
