package schema

import (
	"encoding/json"
	"io"

	"docschema/internal/infer"
)

// ColumnReport is one entry of the analysis document.
type ColumnReport struct {
	Name         string            `json:"name"`
	OriginalName string            `json:"originalName"`
	Position     int               `json:"position"`
	Type         string            `json:"type"`
	Nullable     bool              `json:"nullable"`
	SQLTypes     map[string]string `json:"sqlTypes,omitempty"`
	Stats        infer.ColumnStats `json:"stats"`
}

// AnalysisReport is the JSON analysis document: one object per column, in
// document order.
type AnalysisReport []ColumnReport

// WriteJSON writes the report as indented JSON followed by a newline.
func (r AnalysisReport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if r == nil {
		r = AnalysisReport{}
	}
	return enc.Encode(r)
}
