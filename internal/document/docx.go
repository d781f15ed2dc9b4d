package document

import (
	"archive/zip"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
)

const (
	docxBodyPart   = "word/document.xml"
	docxStylesPart = "word/styles.xml"

	// maxStyleDepth bounds w:basedOn chains; Word never nests this deep and a
	// cycle would otherwise loop forever.
	maxStyleDepth = 32
)

// ReadDocx reads a .docx package from r.
func ReadDocx(r io.ReaderAt, size int64) (*Document, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}

	parts := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		parts[f.Name] = f
	}

	bodyPart, ok := parts[docxBodyPart]
	if !ok {
		return nil, fmt.Errorf("%s: %w", docxBodyPart, ErrNoBody)
	}

	styles := styleSheet{}
	if sp, ok := parts[docxStylesPart]; ok {
		root, err := parsePart(sp)
		if err != nil {
			return nil, err
		}
		styles = readStyles(root)
	}

	root, err := parsePart(bodyPart)
	if err != nil {
		return nil, err
	}
	body := xmlquery.FindOne(root, "//*[local-name()='body']")
	if body == nil {
		return nil, fmt.Errorf("%s: %w", docxBodyPart, ErrNoBody)
	}

	doc := &Document{}
	readBlocks(doc, body, styles)
	return doc, nil
}

func parsePart(f *zip.File) (*xmlquery.Node, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	n, err := xmlquery.Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.Name, err)
	}
	return n, nil
}

// readBlocks walks the body's direct children. Content controls (w:sdt) are
// transparent.
func readBlocks(doc *Document, parent *xmlquery.Node, styles styleSheet) {
	for n := parent.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != xmlquery.ElementNode {
			continue
		}
		switch n.Data {
		case "p":
			doc.addParagraph(readParagraph(n, styles))
		case "tbl":
			doc.addTable(readTable(n, styles))
		case "sdt":
			if c := child(n, "sdtContent"); c != nil {
				readBlocks(doc, c, styles)
			}
		}
	}
}

func readParagraph(p *xmlquery.Node, styles styleSheet) Paragraph {
	out := Paragraph{}
	if ppr := child(p, "pPr"); ppr != nil {
		out.Style = attrVal(child(ppr, "pStyle"))
	}
	base := styles.resolve(out.Style)

	var sb strings.Builder
	textRuns, boldRuns, italicRuns := 0, 0, 0

	var walk func(n *xmlquery.Node)
	walk = func(n *xmlquery.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != xmlquery.ElementNode {
				continue
			}
			switch c.Data {
			case "pPr", "rPr":
				// formatting only; w:tabs here are tab stops, not text
			case "r":
				text := runText(c)
				sb.WriteString(text)
				if strings.TrimSpace(text) == "" {
					continue
				}
				textRuns++
				fmtBold, fmtItalic := base.bold, base.italic
				if rpr := child(c, "rPr"); rpr != nil {
					fmtBold = toggle(child(rpr, "b"), fmtBold)
					fmtItalic = toggle(child(rpr, "i"), fmtItalic)
				}
				if fmtBold {
					boldRuns++
				}
				if fmtItalic {
					italicRuns++
				}
			default:
				// hyperlinks, smart tags, insertions
				walk(c)
			}
		}
	}
	walk(p)

	out.Text = sb.String()
	if textRuns == 0 {
		out.Bold, out.Italic = base.bold, base.italic
	} else {
		out.Bold = boldRuns == textRuns
		out.Italic = italicRuns == textRuns
	}
	return out
}

func runText(r *xmlquery.Node) string {
	var sb strings.Builder
	for c := r.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		switch c.Data {
		case "t":
			sb.WriteString(c.InnerText())
		case "tab":
			sb.WriteByte('\t')
		case "br", "cr":
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func readTable(tbl *xmlquery.Node, styles styleSheet) Table {
	var t Table
	for _, tr := range children(tbl, "tr") {
		var row []string
		for _, tc := range children(tr, "tc") {
			var paras []string
			for _, p := range children(tc, "p") {
				paras = append(paras, readParagraph(p, styles).Text)
			}
			row = append(row, strings.Join(paras, "\n"))

			if pr := child(tc, "tcPr"); pr != nil {
				if span, err := strconv.Atoi(attrVal(child(pr, "gridSpan"))); err == nil {
					for i := 1; i < span; i++ {
						row = append(row, "")
					}
				}
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

type runFormat struct {
	bold, italic bool
}

type styleDef struct {
	basedOn        string
	bold, italic   *bool
	defaultForType bool
}

// styleSheet maps paragraph style ids to their definitions.
type styleSheet map[string]styleDef

func readStyles(root *xmlquery.Node) styleSheet {
	out := styleSheet{}
	for _, s := range xmlquery.Find(root, "//*[local-name()='style']") {
		if attr(s, "type") != "paragraph" {
			continue
		}
		id := attr(s, "styleId")
		if id == "" {
			continue
		}
		def := styleDef{
			basedOn:        attrVal(child(s, "basedOn")),
			defaultForType: onOff(attr(s, "default")),
		}
		if rpr := child(s, "rPr"); rpr != nil {
			def.bold = tristate(child(rpr, "b"))
			def.italic = tristate(child(rpr, "i"))
		}
		out[id] = def
	}
	return out
}

// resolve returns the effective run formatting for a paragraph style,
// following basedOn. An empty id uses the default paragraph style.
func (s styleSheet) resolve(id string) runFormat {
	if id == "" {
		for k, d := range s {
			if d.defaultForType {
				id = k
				break
			}
		}
	}

	var f runFormat
	var boldSet, italicSet bool
	for depth := 0; id != "" && depth < maxStyleDepth; depth++ {
		d, ok := s[id]
		if !ok {
			break
		}
		if !boldSet && d.bold != nil {
			f.bold, boldSet = *d.bold, true
		}
		if !italicSet && d.italic != nil {
			f.italic, italicSet = *d.italic, true
		}
		id = d.basedOn
	}
	return f
}

func child(n *xmlquery.Node, local string) *xmlquery.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == local {
			return c
		}
	}
	return nil
}

func children(n *xmlquery.Node, local string) []*xmlquery.Node {
	var out []*xmlquery.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == local {
			out = append(out, c)
		}
	}
	return out
}

// attr returns the value of the attribute with the given local name,
// regardless of its namespace prefix.
func attr(n *xmlquery.Node, local string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func attrVal(n *xmlquery.Node) string { return attr(n, "val") }

func onOff(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on":
		return true
	}
	return false
}

// toggle applies an on/off property element (w:b, w:i) to a current value.
// A bare element means on.
func toggle(n *xmlquery.Node, cur bool) bool {
	if v := tristate(n); v != nil {
		return *v
	}
	return cur
}

func tristate(n *xmlquery.Node) *bool {
	if n == nil {
		return nil
	}
	v := true
	switch strings.ToLower(attrVal(n)) {
	case "0", "false", "off", "none":
		v = false
	}
	return &v
}
