package tag

import (
	"fmt"

	"github.com/coolbeans/strata/pkg/hierarchy"
)

// Reason classifies why a request failed to resolve.
type Reason string

const (
	ReasonNoMatch   Reason = "no_match"
	ReasonAmbiguous Reason = "ambiguous_match"
)

// Failure records one request that could not be attached.
type Failure struct {
	Label      string   `json:"label"`
	Reference  string   `json:"reference"`
	Reason     Reason   `json:"reason"`
	Candidates []string `json:"candidates,omitempty"`
}

func (f Failure) String() string {
	if f.Reason == ReasonAmbiguous {
		return fmt.Sprintf("%s: reference %s is ambiguous between %v", f.Label, f.Reference, f.Candidates)
	}
	return fmt.Sprintf("%s: reference %s matched no node", f.Label, f.Reference)
}

// Report accumulates the outcome of a resolution pass. Attaching a label is
// the only tree mutation; every request that does not attach appears here.
type Report struct {
	Resolved int       `json:"resolved"`
	Failures []Failure `json:"failures,omitempty"`
}

// OK reports whether every request attached.
func (r *Report) OK() bool { return len(r.Failures) == 0 }

// Resolve processes requests in order against the tree, attaching each label
// to the unique node its reference identifies. References that match zero or
// several nodes are reported and leave the tree untouched. Requests are
// independent: no request changes which nodes exist, so outcome does not
// depend on order.
func Resolve(tree *hierarchy.Tree, reqs []Request) *Report {
	report := &Report{}
	for _, req := range reqs {
		candidates := match(tree, tree.Root().ID, req.Reference)
		switch len(candidates) {
		case 1:
			tree.AddLabel(candidates[0], req.Label)
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
				paths[i] = tree.Path(id)
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

// match collects every node reachable from id whose root-to-node sequence of
// sibling positions equals ref. The path runs through section nodes only; a
// list node may appear as the final step when the last token equals its
// literal index.
func match(tree *hierarchy.Tree, id hierarchy.NodeID, ref []Token) []hierarchy.NodeID {
	if len(ref) == 0 {
		return []hierarchy.NodeID{id}
	}
	tok := ref[0]
	var out []hierarchy.NodeID
	for _, child := range tree.Children(id) {
		switch child.Type {
		case hierarchy.TypeSection:
			if !tok.IsLetter() && child.PositionMatches(tok.Ordinal) {
				out = append(out, match(tree, child.ID, ref[1:])...)
			}
		case hierarchy.TypeList:
			if len(ref) == 1 && child.ListIndex == tok.Raw {
				out = append(out, child.ID)
			}
		}
	}
	return out
}
