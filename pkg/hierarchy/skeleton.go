package hierarchy

// SkeletonEntry is one captured header with its depth.
type SkeletonEntry struct {
	Depth      int    `json:"depth"`
	HeaderText string `json:"header_text"`
}

// Skeleton projects the tree onto the ordered list of section headers in
// document order, one entry per section node. It is derived on demand and
// never mutated directly; re-traversal of an unchanged tree yields an
// identical skeleton.
func (t *Tree) Skeleton() []SkeletonEntry {
	var out []SkeletonEntry
	t.Walk(func(n *Node) bool {
		if n.IsSection() {
			out = append(out, SkeletonEntry{Depth: n.Depth, HeaderText: n.HeaderText})
		}
		return true
	})
	return out
}
