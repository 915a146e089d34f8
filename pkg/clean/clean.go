// Package clean normalizes raw document text before segmentation: it strips
// pagination noise left behind by PDF and OCR extraction and rejoins words
// split across line breaks, leaving the header and markup structure intact.
package clean

import (
	"regexp"
	"strings"
)

var (
	// pageNumberPattern matches lines containing only a page number,
	// optionally bracketed or dashed ("42", "[42]", "- 42 -").
	pageNumberPattern = regexp.MustCompile(`^[-\[\s]*\d+[-\]\s]*$`)

	// decorativeRulePattern matches separator lines of repeated punctuation.
	decorativeRulePattern = regexp.MustCompile(`^[-_=*.\s]{4,}$`)

	// hyphenBreakPattern matches lines ending mid-word with a hyphen.
	hyphenBreakPattern = regexp.MustCompile(`[a-zA-Z]-$`)
)

// Clean runs the full normalization pipeline over raw document lines:
// pagination noise removal, blank-run collapsing, and hyphen rejoining.
// Inline markup tokens and header lines pass through untouched.
func Clean(lines []string) []string {
	out := StripNoise(lines)
	out = CollapseBlanks(out)
	return RejoinHyphenated(out)
}

// StripNoise drops pagination artifacts: form feeds, byte order marks,
// standalone page numbers, and decorative separator rules. Trailing
// whitespace is trimmed from every surviving line.
func StripNoise(lines []string) []string {
	var out []string
	for i, line := range lines {
		if i == 0 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		line = strings.ReplaceAll(line, "\f", "")
		line = strings.TrimRight(line, " \t")

		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			if pageNumberPattern.MatchString(trimmed) {
				continue
			}
			if decorativeRulePattern.MatchString(trimmed) {
				continue
			}
		}
		out = append(out, line)
	}
	return out
}

// CollapseBlanks squeezes runs of blank lines down to a single blank line
// and drops leading and trailing blanks entirely.
func CollapseBlanks(lines []string) []string {
	var out []string
	blank := true // swallow leading blanks
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

// RejoinHyphenated merges lines where a word is split across a line break
// with a hyphen. The merge only happens when the next line starts with a
// lowercase letter, so hyphens before headings or subsection markers stay.
func RejoinHyphenated(lines []string) []string {
	var out []string
	for i := 0; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], " \t")
		for i+1 < len(lines) && hyphenBreakPattern.MatchString(line) {
			next := strings.TrimSpace(lines[i+1])
			if len(next) == 0 || next[0] < 'a' || next[0] > 'z' {
				break
			}
			line = line[:len(line)-1] + next
			i++
		}
		out = append(out, line)
	}
	return out
}
