package tag

import (
	"strings"
	"testing"
)

func FuzzParseReference(f *testing.F) {
	seeds := []string{
		"1",
		"75.1.a",
		"2.1",
		"a",
		"1..2",
		"0",
		"-3",
		"1.",
		".1",
		"ab.cd",
		strings.Repeat("1.", 50) + "1",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, s string) {
		toks, err := ParseReference(s)
		if err != nil {
			return
		}
		if len(toks) == 0 {
			t.Fatalf("ParseReference(%q) returned no tokens without error", s)
		}
		for i, tok := range toks {
			if tok.Raw == "" {
				t.Fatalf("token %d of %q has empty raw text", i, s)
			}
			if tok.IsLetter() {
				if len(tok.Raw) != 1 || !isLetter(tok.Raw[0]) {
					t.Fatalf("letter token %d of %q is %q", i, s, tok.Raw)
				}
			} else if tok.Ordinal < 1 {
				t.Fatalf("ordinal token %d of %q is %d", i, s, tok.Ordinal)
			}
		}
		// A successful parse must render back to the trimmed input.
		rendered := Request{Reference: toks}.RefString()
		if rendered != strings.TrimSpace(s) {
			t.Fatalf("round trip of %q gave %q", s, rendered)
		}
	})
}
