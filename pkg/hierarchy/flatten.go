package hierarchy

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// FlatRow is one row of the CCP-style tabular projection: a section node
// with its position path, ancestor headers, labels, and body text.
type FlatRow struct {
	Path      string   `json:"path"`
	Depth     int      `json:"depth"`
	Ancestors []string `json:"ancestors,omitempty"`
	Header    string   `json:"header"`
	Labels    []string `json:"labels,omitempty"`
	Body      string   `json:"body,omitempty"`
}

// Flatten produces one FlatRow per section node in document order. The
// projection is purely derived; it carries no state of its own.
func (t *Tree) Flatten() []FlatRow {
	var rows []FlatRow
	t.Walk(func(n *Node) bool {
		if !n.IsSection() {
			return true
		}
		var ancestors []string
		for p := t.Node(n.Parent); p != nil && p.Type != TypeRoot; p = t.Node(p.Parent) {
			if p.IsSection() {
				ancestors = append([]string{p.HeaderText}, ancestors...)
			}
		}
		rows = append(rows, FlatRow{
			Path:      t.Path(n.ID),
			Depth:     n.Depth,
			Ancestors: ancestors,
			Header:    n.HeaderText,
			Labels:    append([]string(nil), n.Labels...),
			Body:      strings.Join(n.Body, "\n"),
		})
		return true
	})
	return rows
}

// WriteFlatCSV writes the flattened projection as CSV with a header row.
func WriteFlatCSV(w io.Writer, rows []FlatRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"path", "depth", "ancestors", "header", "labels", "body"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Path,
			strconv.Itoa(r.Depth),
			strings.Join(r.Ancestors, " > "),
			r.Header,
			strings.Join(r.Labels, ";"),
			r.Body,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
