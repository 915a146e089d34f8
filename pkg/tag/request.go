// Package tag resolves positional references against a segmented document
// tree, attaching labels to uniquely identified nodes and reporting every
// reference that fails to resolve.
package tag

import (
	"fmt"
	"strconv"
	"strings"
)

// Token is one step of a positional reference. An ordinal token denotes a
// 1-based sequential sibling position among section nodes; a letter token is
// reserved for list indexes and never matches a section.
type Token struct {
	// Ordinal is the 1-based sequential position, 0 for letter tokens.
	Ordinal int

	// Raw is the literal token text, compared against list indexes.
	Raw string
}

// IsLetter reports whether the token is a letter, valid only against the
// literal index of a list node.
func (t Token) IsLetter() bool { return t.Ordinal == 0 }

func (t Token) String() string { return t.Raw }

// Request pairs a label with the positional reference it should be
// attached at.
type Request struct {
	Label     string
	Reference []Token
}

// RefString renders the reference back in dotted form for reporting.
func (r Request) RefString() string {
	toks := make([]string, len(r.Reference))
	for i, t := range r.Reference {
		toks[i] = t.Raw
	}
	return strings.Join(toks, ".")
}

// ParseReference parses a dot-separated positional reference such as
// "75.1.a". Each token is either a positive integer (a sequential sibling
// position) or a single letter (a literal list index).
func ParseReference(s string) ([]Token, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty reference")
	}
	parts := strings.Split(strings.TrimSpace(s), ".")
	toks := make([]Token, 0, len(parts))
	for i, p := range parts {
		tok, err := parseToken(p)
		if err != nil {
			return nil, fmt.Errorf("token %d of %q: %w", i+1, s, err)
		}
		toks = append(toks, tok)
	}
	return toks, nil
}

func parseToken(p string) (Token, error) {
	if p == "" {
		return Token{}, fmt.Errorf("empty token")
	}
	if isDigits(p) {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			return Token{}, fmt.Errorf("position must be a positive integer, got %q", p)
		}
		return Token{Ordinal: n, Raw: p}, nil
	}
	if len(p) == 1 && isLetter(p[0]) {
		return Token{Raw: p}, nil
	}
	return Token{}, fmt.Errorf("must be a positive integer or a single letter, got %q", p)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
