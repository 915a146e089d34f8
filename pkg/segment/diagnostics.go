package segment

import "fmt"

// DiagKind classifies a non-fatal condition recorded during segmentation.
type DiagKind string

const (
	// DiagStructuralGap records a header match that skipped one or more
	// intermediate depths; synthetic empty ancestors were inserted.
	DiagStructuralGap DiagKind = "structural_gap"

	// DiagUnclosedMarkup records a <list_k> or <preamble> opened but never
	// explicitly closed; the node was closed implicitly.
	DiagUnclosedMarkup DiagKind = "unclosed_markup"

	// DiagStrayMarkup records a closing tag with no matching open node.
	DiagStrayMarkup DiagKind = "stray_markup"
)

// Diagnostic is one recorded condition. Segmentation accumulates
// diagnostics and continues; it never aborts mid-pass on a recoverable
// condition.
type Diagnostic struct {
	Kind    DiagKind `json:"kind"`
	Line    int      `json:"line"` // 1-based input line, 0 when not tied to a line
	Message string   `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", d.Kind, d.Line, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}
