package tag

import (
	"strconv"

	"github.com/coolbeans/strata/pkg/hierarchy"
)

// Index precomputes, per parent node, which children each position token can
// reach. Resolution against an index is a frontier walk instead of a full
// tree scan per request, with identical outcomes.
type Index struct {
	tree *hierarchy.Tree

	// sections maps parent -> ordinal text -> section children answering to
	// that position. A child appears under both its sequential ordinal and
	// its per-alternative ordinal when the two differ.
	sections map[hierarchy.NodeID]map[string][]hierarchy.NodeID

	// lists maps parent -> literal list index -> list children.
	lists map[hierarchy.NodeID]map[string][]hierarchy.NodeID
}

// NewIndex builds a position index over the tree. The tree must not gain
// nodes while the index is in use; label attachment is fine.
func NewIndex(tree *hierarchy.Tree) *Index {
	ix := &Index{
		tree:     tree,
		sections: make(map[hierarchy.NodeID]map[string][]hierarchy.NodeID),
		lists:    make(map[hierarchy.NodeID]map[string][]hierarchy.NodeID),
	}
	tree.Walk(func(n *hierarchy.Node) bool {
		for _, child := range tree.Children(n.ID) {
			switch child.Type {
			case hierarchy.TypeSection:
				ix.addSection(n.ID, strconv.Itoa(child.Ordinal), child.ID)
				if child.AltOrdinal != child.Ordinal {
					ix.addSection(n.ID, strconv.Itoa(child.AltOrdinal), child.ID)
				}
			case hierarchy.TypeList:
				ix.addList(n.ID, child.ListIndex, child.ID)
			}
		}
		return true
	})
	return ix
}

func (ix *Index) addSection(parent hierarchy.NodeID, key string, id hierarchy.NodeID) {
	m, ok := ix.sections[parent]
	if !ok {
		m = make(map[string][]hierarchy.NodeID)
		ix.sections[parent] = m
	}
	m[key] = append(m[key], id)
}

func (ix *Index) addList(parent hierarchy.NodeID, key string, id hierarchy.NodeID) {
	m, ok := ix.lists[parent]
	if !ok {
		m = make(map[string][]hierarchy.NodeID)
		ix.lists[parent] = m
	}
	m[key] = append(m[key], id)
}

// Lookup returns every node the reference identifies, in tree order.
func (ix *Index) Lookup(ref []Token) []hierarchy.NodeID {
	if len(ref) == 0 {
		return nil
	}
	frontier := []hierarchy.NodeID{ix.tree.Root().ID}
	for i, tok := range ref {
		last := i == len(ref)-1
		var next []hierarchy.NodeID
		for _, id := range frontier {
			if !tok.IsLetter() {
				next = append(next, ix.sections[id][strconv.Itoa(tok.Ordinal)]...)
			}
			if last {
				next = append(next, ix.lists[id][tok.Raw]...)
			}
		}
		frontier = next
		if len(frontier) == 0 {
			return nil
		}
	}
	return frontier
}

// Resolve behaves exactly like the package-level Resolve but answers each
// request from the precomputed index.
func (ix *Index) Resolve(reqs []Request) *Report {
	report := &Report{}
	for _, req := range reqs {
		candidates := ix.Lookup(req.Reference)
		switch len(candidates) {
		case 1:
			ix.tree.AddLabel(candidates[0], req.Label)
			report.Resolved++
		case 0:
			report.Failures = append(report.Failures, Failure{
				Label:     req.Label,
				Reference: req.RefString(),
				Reason:    ReasonNoMatch,
			})
		default:
			paths := make([]string, len(candidates))
			for i, id := range candidates {
				paths[i] = ix.tree.Path(id)
			}
			report.Failures = append(report.Failures, Failure{
				Label:      req.Label,
				Reference:  req.RefString(),
				Reason:     ReasonAmbiguous,
				Candidates: paths,
			})
		}
	}
	return report
}
