// Package input materializes documents into the ordered line sequences the
// segmenter consumes. Plain text is read line by line; Markdown is parsed
// and re-emitted with canonical hash-prefixed headings so header patterns
// can match on heading depth.
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// maxLineSize bounds a single input line; constitutional texts occasionally
// carry very long unwrapped paragraphs.
const maxLineSize = 1024 * 1024

// ReadLines reads a plain-text document into its ordered line sequence.
func ReadLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading lines: %w", err)
	}
	return lines, nil
}

// ReadFile reads a document from disk, choosing the reader by extension:
// .md and .markdown go through the Markdown parser, everything else is
// treated as plain text.
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return MarkdownLines(f)
	default:
		return ReadLines(f)
	}
}
