package hierarchy

import (
	"encoding/json"
	"io"
	"strconv"
)

// ExportNode is the serializable form of a node: a nested structure whose
// children are keyed by position token in insertion order. A JSON object
// would lose child ordering, so children are emitted as an ordered list
// of (position, node) pairs.
type ExportNode struct {
	Type         TextType      `json:"type"`
	Depth        int           `json:"depth"`
	HeaderText   string        `json:"header_text,omitempty"`
	DisplayTitle string        `json:"display_title,omitempty"`
	Body         []string      `json:"body,omitempty"`
	Labels       []string      `json:"labels,omitempty"`
	Synthetic    bool          `json:"synthetic,omitempty"`
	Children     []ExportChild `json:"children,omitempty"`
}

// ExportChild pairs a child with its position token: the sequential
// ordinal for sections, "list_k" for lists, "preamble" for preambles.
type ExportChild struct {
	Position string      `json:"position"`
	Node     *ExportNode `json:"node"`
}

// Export converts the tree into its serializable form, rooted at the
// synthetic root.
func (t *Tree) Export() *ExportNode {
	return t.export(0)
}

func (t *Tree) export(id NodeID) *ExportNode {
	n := t.nodes[id]
	out := &ExportNode{
		Type:         n.Type,
		Depth:        n.Depth,
		HeaderText:   n.HeaderText,
		DisplayTitle: n.DisplayTitle,
		Body:         n.Body,
		Labels:       n.Labels,
		Synthetic:    n.Synthetic,
	}
	for _, c := range n.children {
		out.Children = append(out.Children, ExportChild{
			Position: t.positionToken(t.nodes[c]),
			Node:     t.export(c),
		})
	}
	return out
}

func (t *Tree) positionToken(n *Node) string {
	switch n.Type {
	case TypeSection:
		return strconv.Itoa(n.Ordinal)
	case TypeList:
		return "list_" + n.ListIndex
	case TypePreamble:
		return "preamble"
	default:
		return ""
	}
}

// WriteJSON writes the exported tree as indented JSON.
func (t *Tree) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t.Export())
}
