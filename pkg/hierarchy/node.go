// Package hierarchy provides the tree model shared by the segmenter and the
// tag resolver: an arena of nodes addressed by stable integer identifiers,
// with ordered children and 1-based sequential sibling positions.
package hierarchy

import (
	"strconv"
	"strings"
)

// NodeID is a stable identifier into a Tree's node arena.
type NodeID int

// InvalidID marks the absence of a node (e.g. the root's parent).
const InvalidID NodeID = -1

// TextType classifies the content a node carries.
type TextType string

const (
	TypeRoot     TextType = "root"
	TypePreamble TextType = "preamble"
	TypeSection  TextType = "section"
	TypeTitle    TextType = "title"
	TypeList     TextType = "list"
)

// Node is a single entry in the hierarchy. Nodes are created by the
// segmenter and never destroyed; the tag resolver only mutates Labels.
type Node struct {
	ID     NodeID   `json:"id"`
	Parent NodeID   `json:"parent"`
	Depth  int      `json:"depth"`
	Type   TextType `json:"type"`

	// HeaderText is the raw matched header line, empty for non-header
	// containers (preamble, list segments, synthetic gap fillers).
	HeaderText string `json:"header_text,omitempty"`

	// DisplayTitle is the text captured by <title> markup.
	DisplayTitle string `json:"display_title,omitempty"`

	// Body is the ordered sequence of raw lines belonging to this node
	// before any child or closing markup.
	Body []string `json:"body,omitempty"`

	// Labels is the set of tag names attached by the resolver,
	// in attachment order.
	Labels []string `json:"labels,omitempty"`

	// Ordinal is the 1-based sequential position among section siblings,
	// assigned in insertion order, independent of the numeral or letter
	// printed in the header text. Zero for non-section nodes.
	Ordinal int `json:"ordinal,omitempty"`

	// AltOrdinal is the 1-based position among section siblings that
	// matched the same header pattern alternative. When a level mixes
	// header alternatives (numeric and lettered headers side by side)
	// this diverges from Ordinal, which is what makes positional
	// references ambiguous.
	AltOrdinal int `json:"alt_ordinal,omitempty"`

	// AltKey identifies the pattern alternative that matched this
	// section's header, as "depth:alternative". Empty for synthetic nodes.
	AltKey string `json:"-"`

	// ListIndex is the literal index k from <list_k> markup.
	ListIndex string `json:"list_index,omitempty"`

	// Synthetic marks gap-filler ancestors inserted when a header match
	// skipped one or more intermediate depths.
	Synthetic bool `json:"synthetic,omitempty"`

	children []NodeID
}

// IsSection reports whether the node is a real or synthetic section.
func (n *Node) IsSection() bool { return n.Type == TypeSection }

// PositionMatches reports whether a positional reference token equals
// either of this section's sibling ordinals.
func (n *Node) PositionMatches(tok int) bool {
	if n.Type != TypeSection {
		return false
	}
	return tok == n.Ordinal || tok == n.AltOrdinal
}

// Tree owns the node arena. The root is a synthetic node at depth -1;
// its children are the depth-0 sections of the document.
type Tree struct {
	nodes []*Node
}

// New creates a tree holding only the synthetic root.
func New() *Tree {
	t := &Tree{}
	t.nodes = append(t.nodes, &Node{
		ID:     0,
		Parent: InvalidID,
		Depth:  -1,
		Type:   TypeRoot,
	})
	return t
}

// Root returns the synthetic root node.
func (t *Tree) Root() *Node { return t.nodes[0] }

// Node returns the node for id, or nil if id is out of range.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

// Len returns the number of nodes in the arena, root included.
func (t *Tree) Len() int { return len(t.nodes) }

// Children returns a node's children in insertion order.
func (t *Tree) Children(id NodeID) []*Node {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, t.nodes[c])
	}
	return out
}

func (t *Tree) attach(parent NodeID, n *Node) *Node {
	n.ID = NodeID(len(t.nodes))
	n.Parent = parent
	t.nodes = append(t.nodes, n)
	p := t.nodes[parent]
	p.children = append(p.children, n.ID)
	return n
}

// AddSection appends a section child under parent at the given depth and
// assigns its sequential ordinals. altKey names the pattern alternative
// that matched the header ("depth:alt"); synthetic gap fillers pass "".
func (t *Tree) AddSection(parent NodeID, depth, alt int, header string, synthetic bool) *Node {
	altKey := ""
	if !synthetic {
		altKey = strconv.Itoa(depth) + ":" + strconv.Itoa(alt)
	}
	ordinal := 0
	altOrdinal := 0
	for _, c := range t.nodes[parent].children {
		sib := t.nodes[c]
		if !sib.IsSection() {
			continue
		}
		ordinal++
		if sib.AltKey == altKey {
			altOrdinal++
		}
	}
	return t.attach(parent, &Node{
		Depth:      depth,
		Type:       TypeSection,
		HeaderText: header,
		Ordinal:    ordinal + 1,
		AltOrdinal: altOrdinal + 1,
		AltKey:     altKey,
		Synthetic:  synthetic,
	})
}

// AddPreamble appends a preamble child under parent.
func (t *Tree) AddPreamble(parent NodeID) *Node {
	p := t.nodes[parent]
	return t.attach(parent, &Node{
		Depth: p.Depth + 1,
		Type:  TypePreamble,
	})
}

// AddList appends a list child under parent, indexed by the literal
// markup index rather than a sequential position. List nodes keep their
// enclosing node's depth.
func (t *Tree) AddList(parent NodeID, index string) *Node {
	depth := t.nodes[parent].Depth
	if depth < 0 {
		depth = 0
	}
	return t.attach(parent, &Node{
		Depth:     depth,
		Type:      TypeList,
		ListIndex: index,
	})
}

// AppendBody appends a raw line to a node's body text.
func (t *Tree) AppendBody(id NodeID, line string) {
	n := t.nodes[id]
	n.Body = append(n.Body, line)
}

// AddLabel attaches a tag label to a node, with set semantics.
func (t *Tree) AddLabel(id NodeID, label string) {
	n := t.nodes[id]
	for _, l := range n.Labels {
		if l == label {
			return
		}
	}
	n.Labels = append(n.Labels, label)
}

// Walk visits nodes in pre-order, starting at the root. Returning false
// from fn stops the walk.
func (t *Tree) Walk(fn func(*Node) bool) {
	t.walk(0, fn)
}

func (t *Tree) walk(id NodeID, fn func(*Node) bool) bool {
	n := t.nodes[id]
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !t.walk(c, fn) {
			return false
		}
	}
	return true
}

// Path renders the root-to-node position path in dotted reference form:
// section ordinals joined by dots, a list node contributing its literal
// index, e.g. "75.1.a".
func (t *Tree) Path(id NodeID) string {
	var toks []string
	for n := t.Node(id); n != nil && n.Type != TypeRoot; n = t.Node(n.Parent) {
		switch n.Type {
		case TypeSection:
			toks = append(toks, strconv.Itoa(n.Ordinal))
		case TypeList:
			toks = append(toks, n.ListIndex)
		case TypePreamble:
			toks = append(toks, "preamble")
		}
	}
	for i, j := 0, len(toks)-1; i < j; i, j = i+1, j-1 {
		toks[i], toks[j] = toks[j], toks[i]
	}
	return strings.Join(toks, ".")
}
