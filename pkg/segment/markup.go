package segment

import (
	"regexp"
	"strings"
)

// Inline markup recognized by the segmenter. Tokens are extracted without
// altering the ordering of the surrounding text.
type tokenKind int

const (
	tokPreambleOpen tokenKind = iota
	tokPreambleClose
	tokListOpen
	tokListClose
)

type markupToken struct {
	kind  tokenKind
	index string // literal list index k for tokListOpen/tokListClose
}

// linePart is one piece of a line after markup extraction: either a text
// segment or a markup token, in order of appearance.
type linePart struct {
	text string
	tok  *markupToken
}

var markupPattern = regexp.MustCompile(`<(/?)(preamble|list_([0-9A-Za-z]+))>`)

// extractMarkup splits a raw line into ordered parts (text segments and
// markup tokens) plus the title text captured by <title> markup.
//
// <title> captures everything from the tag to the end of the line, or to
// an explicit </title> when present. The captured span is removed, since
// it is the display title rather than body or header content.
func extractMarkup(line string) (title string, parts []linePart) {
	if open := strings.Index(line, "<title>"); open >= 0 {
		rest := line[open+len("<title>"):]
		if end := strings.Index(rest, "</title>"); end >= 0 {
			title = rest[:end]
			line = line[:open] + rest[end+len("</title>"):]
		} else {
			title = rest
			line = line[:open]
		}
		title = strings.TrimSpace(title)
	}

	matches := markupPattern.FindAllStringSubmatchIndex(line, -1)
	last := 0
	for _, m := range matches {
		if seg := line[last:m[0]]; strings.TrimSpace(seg) != "" {
			parts = append(parts, linePart{text: strings.TrimSpace(seg)})
		}
		last = m[1]

		closing := line[m[2]:m[3]] == "/"
		name := line[m[4]:m[5]]
		tok := markupToken{}
		switch {
		case name == "preamble" && !closing:
			tok.kind = tokPreambleOpen
		case name == "preamble" && closing:
			tok.kind = tokPreambleClose
		case !closing:
			tok.kind = tokListOpen
			tok.index = line[m[6]:m[7]]
		default:
			tok.kind = tokListClose
			tok.index = line[m[6]:m[7]]
		}
		t := tok
		parts = append(parts, linePart{tok: &t})
	}
	if seg := line[last:]; strings.TrimSpace(seg) != "" {
		parts = append(parts, linePart{text: strings.TrimSpace(seg)})
	}
	return title, parts
}

// cleanText joins the text segments of a line, i.e. the line minus all
// markup, for header matching.
func cleanText(parts []linePart) string {
	var segs []string
	for _, p := range parts {
		if p.tok == nil {
			segs = append(segs, p.text)
		}
	}
	return strings.Join(segs, " ")
}
