// Package segment builds the document hierarchy from raw lines plus inline
// markup, driven by an ordered list of header-level patterns.
package segment

import (
	"fmt"
	"regexp"
	"strings"
)

// LevelSpec is the compiled form of an ordered header-level pattern list:
// one entry per hierarchy depth (depth 0 = the root's children), each entry
// a set of alternative patterns considered equally ranked at that depth.
// Immutable once compiled.
type LevelSpec struct {
	levels [][]*regexp.Regexp
}

// Compile validates and compiles a header-level pattern list. Patterns are
// anchored to the start of the markup-stripped line; a leading ^ is added
// when missing. Any pattern that fails to compile is fatal: no segmentation
// may begin with a malformed spec.
func Compile(levels [][]string) (*LevelSpec, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("level spec is empty")
	}
	spec := &LevelSpec{levels: make([][]*regexp.Regexp, len(levels))}
	for depth, alts := range levels {
		if len(alts) == 0 {
			return nil, fmt.Errorf("level %d has no patterns", depth)
		}
		for alt, pat := range alts {
			if !strings.HasPrefix(pat, "^") {
				pat = "^" + pat
			}
			re, err := regexp.Compile(pat)
			if err != nil {
				return nil, fmt.Errorf("compiling level %d pattern %d %q: %w", depth, alt, pat, err)
			}
			spec.levels[depth] = append(spec.levels[depth], re)
		}
	}
	return spec, nil
}

// MustCompile is Compile for statically known specs; it panics on error.
func MustCompile(levels [][]string) *LevelSpec {
	spec, err := Compile(levels)
	if err != nil {
		panic(err)
	}
	return spec
}

// Depths returns the number of hierarchy depths the spec defines.
func (s *LevelSpec) Depths() int { return len(s.levels) }

// Match scans levels from shallowest to deepest and, within a level,
// alternatives in listed order, returning the first match. A line matching
// alternatives at more than one depth therefore opens a boundary only at
// the shallowest depth, and within a depth the first-listed alternative
// wins.
func (s *LevelSpec) Match(line string) (depth, alt int, ok bool) {
	for d, alts := range s.levels {
		for a, re := range alts {
			if re.MatchString(line) {
				return d, a, true
			}
		}
	}
	return 0, 0, false
}
