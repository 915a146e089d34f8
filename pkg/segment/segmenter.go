package segment

import (
	"fmt"

	"github.com/coolbeans/strata/pkg/hierarchy"
)

// Segmenter consumes an ordered sequence of text lines and produces the
// document hierarchy plus segmentation diagnostics. A Segmenter is
// stateless between calls and safe to reuse across documents; concurrent
// calls each build an independent tree.
type Segmenter struct {
	levels *LevelSpec
}

// New creates a Segmenter for a compiled level spec.
func New(levels *LevelSpec) *Segmenter {
	return &Segmenter{levels: levels}
}

// Segment runs a single forward pass over lines and returns the hierarchy
// rooted at a synthetic depth -1 node, together with any diagnostics.
// Recoverable conditions (structural gaps, unclosed markup) are recorded
// and never abort the pass; at end of input all open nodes close
// implicitly and trailing content stays with whichever node was open.
func Segment(lines []string, levels *LevelSpec) (*hierarchy.Tree, []Diagnostic) {
	return New(levels).Segment(lines)
}

type stackEntry struct {
	id       hierarchy.NodeID
	openedAt int // 1-based line where the node opened
}

// Segment implements the single-pass stack algorithm.
func (s *Segmenter) Segment(lines []string) (*hierarchy.Tree, []Diagnostic) {
	tree := hierarchy.New()
	var diags []Diagnostic

	stack := []stackEntry{{id: tree.Root().ID}}
	preambles := 0 // open preamble count; header matching is suppressed inside

	top := func() *hierarchy.Node { return tree.Node(stack[len(stack)-1].id) }
	pop := func() stackEntry {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if tree.Node(e.id).Type == hierarchy.TypePreamble {
			preambles--
		}
		return e
	}

	for i, line := range lines {
		lineNo := i + 1
		title, parts := extractMarkup(line)
		clean := cleanText(parts)

		// Header boundary. Suppressed while a preamble is open: a preamble
		// collects lines until its closing tag.
		if preambles == 0 && clean != "" {
			if depth, alt, ok := s.levels.Match(clean); ok {
				s.openSection(tree, &stack, &diags, depth, alt, clean, title, lineNo)
				s.applyTokens(tree, &stack, &preambles, &diags, parts, lineNo, true)
				continue
			}
		}

		s.applyTokens(tree, &stack, &preambles, &diags, parts, lineNo, false)
		if title != "" {
			n := top()
			if n.DisplayTitle == "" {
				n.DisplayTitle = title
			} else {
				n.DisplayTitle += " " + title
			}
		}
	}

	// Implicit close of everything still open; only markup-opened nodes
	// are worth a diagnostic.
	for len(stack) > 1 {
		e := pop()
		n := tree.Node(e.id)
		switch n.Type {
		case hierarchy.TypeList:
			diags = append(diags, Diagnostic{
				Kind:    DiagUnclosedMarkup,
				Line:    e.openedAt,
				Message: fmt.Sprintf("<list_%s> never closed; closed implicitly at end of input", n.ListIndex),
			})
		case hierarchy.TypePreamble:
			diags = append(diags, Diagnostic{
				Kind:    DiagUnclosedMarkup,
				Line:    e.openedAt,
				Message: "<preamble> never closed; closed implicitly at end of input",
			})
		}
	}

	return tree, diags
}

// openSection pops the stack to the header's parent depth, inserting
// synthetic ancestors across structural gaps, and pushes the new section.
func (s *Segmenter) openSection(tree *hierarchy.Tree, stack *[]stackEntry, diags *[]Diagnostic, depth, alt int, header, title string, lineNo int) {
	// Pop until the top is a section (or the root) shallower than the
	// new header. List and preamble nodes crossed on the way were opened
	// by markup that never closed.
	for len(*stack) > 1 {
		e := (*stack)[len(*stack)-1]
		n := tree.Node(e.id)
		if n.Type == hierarchy.TypeList || n.Type == hierarchy.TypePreamble {
			*diags = append(*diags, Diagnostic{
				Kind:    DiagUnclosedMarkup,
				Line:    e.openedAt,
				Message: fmt.Sprintf("markup opened here was closed implicitly by a header boundary at line %d", lineNo),
			})
			*stack = (*stack)[:len(*stack)-1]
			continue
		}
		if n.Depth >= depth {
			*stack = (*stack)[:len(*stack)-1]
			continue
		}
		break
	}

	parent := tree.Node((*stack)[len(*stack)-1].id)
	if parent.Depth < depth-1 {
		*diags = append(*diags, Diagnostic{
			Kind:    DiagStructuralGap,
			Line:    lineNo,
			Message: fmt.Sprintf("header at depth %d under open depth %d; inserted %d synthetic ancestor(s)", depth, parent.Depth, depth-1-parent.Depth),
		})
		for d := parent.Depth + 1; d < depth; d++ {
			syn := tree.AddSection(parent.ID, d, 0, "", true)
			*stack = append(*stack, stackEntry{id: syn.ID, openedAt: lineNo})
			parent = syn
		}
	}

	node := tree.AddSection(parent.ID, depth, alt, header, false)
	node.DisplayTitle = title
	*stack = append(*stack, stackEntry{id: node.ID, openedAt: lineNo})
}

// applyTokens processes a line's parts in order of appearance: text
// segments accumulate on whichever node is open at that point, markup
// tokens open and close preamble and list nodes. When the line was a
// header boundary its text already became the header, so text segments
// are skipped.
func (s *Segmenter) applyTokens(tree *hierarchy.Tree, stack *[]stackEntry, preambles *int, diags *[]Diagnostic, parts []linePart, lineNo int, headerLine bool) {
	for _, p := range parts {
		if p.tok == nil {
			if !headerLine && p.text != "" {
				tree.AppendBody((*stack)[len(*stack)-1].id, p.text)
			}
			continue
		}
		switch p.tok.kind {
		case tokPreambleOpen:
			n := tree.AddPreamble((*stack)[len(*stack)-1].id)
			*stack = append(*stack, stackEntry{id: n.ID, openedAt: lineNo})
			*preambles++

		case tokPreambleClose:
			if *preambles == 0 {
				// A closing tag with no open preamble claims everything
				// collected on the current node since it opened: the
				// common case is a document-start preamble whose opening
				// tag was never written.
				cur := tree.Node((*stack)[len(*stack)-1].id)
				if len(cur.Body) > 0 {
					pre := tree.AddPreamble(cur.ID)
					pre.Body = cur.Body
					cur.Body = nil
					*diags = append(*diags, Diagnostic{
						Kind:    DiagUnclosedMarkup,
						Line:    lineNo,
						Message: "</preamble> with no opening tag; adopted content from the start of the open node",
					})
					continue
				}
			}
			s.closeKind(tree, stack, preambles, diags, hierarchy.TypePreamble, "", lineNo)

		case tokListOpen:
			n := tree.AddList((*stack)[len(*stack)-1].id, p.tok.index)
			*stack = append(*stack, stackEntry{id: n.ID, openedAt: lineNo})

		case tokListClose:
			s.closeKind(tree, stack, preambles, diags, hierarchy.TypeList, p.tok.index, lineNo)
		}
	}
}

// closeKind pops the stack down to and including the nearest open node of
// the given type (and, for lists, the same literal index): closing matches
// LIFO against nodes with the same index, not the most recently opened
// markup overall. Nodes popped on the way were left open by their markup.
func (s *Segmenter) closeKind(tree *hierarchy.Tree, stack *[]stackEntry, preambles *int, diags *[]Diagnostic, want hierarchy.TextType, index string, lineNo int) {
	target := -1
	for i := len(*stack) - 1; i > 0; i-- {
		n := tree.Node((*stack)[i].id)
		if n.Type != hierarchy.TypeList && n.Type != hierarchy.TypePreamble {
			break // a section boundary ends the markup scope
		}
		if n.Type == want && (want != hierarchy.TypeList || n.ListIndex == index) {
			target = i
			break
		}
	}
	if target < 0 {
		name := "</preamble>"
		if want == hierarchy.TypeList {
			name = fmt.Sprintf("</list_%s>", index)
		}
		*diags = append(*diags, Diagnostic{
			Kind:    DiagStrayMarkup,
			Line:    lineNo,
			Message: fmt.Sprintf("%s has no matching open tag", name),
		})
		return
	}
	for i := len(*stack) - 1; i >= target; i-- {
		e := (*stack)[i]
		n := tree.Node(e.id)
		if i > target {
			*diags = append(*diags, Diagnostic{
				Kind:    DiagUnclosedMarkup,
				Line:    e.openedAt,
				Message: fmt.Sprintf("markup opened here was closed implicitly by a closing tag at line %d", lineNo),
			})
		}
		if n.Type == hierarchy.TypePreamble {
			*preambles--
		}
	}
	*stack = (*stack)[:target]
}
