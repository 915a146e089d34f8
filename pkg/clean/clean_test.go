package clean

import (
	"reflect"
	"testing"
)

func TestStripNoise(t *testing.T) {
	lines := []string{
		"\ufeffCONSTITUTION",
		"Article 1   ",
		"42",
		"[ 17 ]",
		"- 3 -",
		"----------",
		"**** ****",
		"\fArticle 2",
	}
	want := []string{
		"CONSTITUTION",
		"Article 1",
		"Article 2",
	}
	if got := StripNoise(lines); !reflect.DeepEqual(got, want) {
		t.Errorf("StripNoise() = %q, want %q", got, want)
	}
}

func TestStripNoise_KeepsNumberedHeaders(t *testing.T) {
	lines := []string{"1. General provisions", "42. Another section"}
	if got := StripNoise(lines); !reflect.DeepEqual(got, lines) {
		t.Errorf("numbered headers must survive, got %q", got)
	}
}

func TestCollapseBlanks(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "squeezes runs",
			input: []string{"a", "", "", "", "b"},
			want:  []string{"a", "", "b"},
		},
		{
			name:  "drops leading and trailing",
			input: []string{"", "", "a", "b", "", ""},
			want:  []string{"a", "b"},
		},
		{
			name:  "all blank",
			input: []string{"", "  ", "\t"},
			want:  nil,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CollapseBlanks(tc.input)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("CollapseBlanks(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestRejoinHyphenated(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "simple rejoin",
			input: []string{"the legisla-", "tive power"},
			want:  []string{"the legislative power"},
		},
		{
			name:  "chained rejoin",
			input: []string{"con-", "stitu-", "tional"},
			want:  []string{"constitutional"},
		},
		{
			name:  "no rejoin before uppercase",
			input: []string{"some text-", "Article 2"},
			want:  []string{"some text-", "Article 2"},
		},
		{
			name:  "no rejoin before subsection marker",
			input: []string{"shall-", "(a) do something"},
			want:  []string{"shall-", "(a) do something"},
		},
		{
			name:  "trailing hyphen at end of input",
			input: []string{"ends mid-"},
			want:  []string{"ends mid-"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := RejoinHyphenated(tc.input)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("RejoinHyphenated(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestClean_Pipeline(t *testing.T) {
	lines := []string{
		"",
		"Article 1 <title>The Republic",
		"",
		"",
		"17",
		"sovereignty belongs to the peo-",
		"ple and is exercised",
		"",
	}
	want := []string{
		"Article 1 <title>The Republic",
		"",
		"sovereignty belongs to the people and is exercised",
	}
	if got := Clean(lines); !reflect.DeepEqual(got, want) {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
}
