package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/coolbeans/strata/pkg/segment"
)

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func TestRun_SegmentsDirectory(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	writeDoc(t, inDir, "alpha.txt", "Article 1\nbody\nArticle 2\nmore\n")
	writeDoc(t, inDir, "beta.txt", "Article 1\nonly one\n")
	writeDoc(t, inDir, "notes.json", "{}") // not a document, skipped

	levels := segment.MustCompile([][]string{{`Article [0-9]+`}})
	runner := NewRunner(levels, Options{SpecName: "articles", WriteCSV: true})

	manifest, err := runner.Run(inDir, outDir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(manifest.Documents) != 2 {
		t.Fatalf("got %d documents, want 2", len(manifest.Documents))
	}
	if manifest.Succeeded() != 2 || manifest.Failed() != 0 {
		t.Errorf("succeeded=%d failed=%d", manifest.Succeeded(), manifest.Failed())
	}
	if manifest.RunID == "" {
		t.Error("manifest should carry a run ID")
	}
	if manifest.SpecName != "articles" {
		t.Errorf("spec name = %q", manifest.SpecName)
	}

	// Documents are processed in name order.
	if manifest.Documents[0].Source != filepath.Join(inDir, "alpha.txt") {
		t.Errorf("first document = %s", manifest.Documents[0].Source)
	}
	if manifest.Documents[0].Sections != 2 {
		t.Errorf("alpha sections = %d, want 2", manifest.Documents[0].Sections)
	}

	for _, artifact := range []string{"tree.json", "diagnostics.json", "sections.csv"} {
		path := filepath.Join(outDir, "alpha", artifact)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing artifact %s: %v", artifact, err)
		}
	}

	loaded, err := LoadManifest(filepath.Join(outDir, "manifest.json"))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if loaded.RunID != manifest.RunID {
		t.Errorf("round-tripped run ID %q != %q", loaded.RunID, manifest.RunID)
	}
}

func TestRun_ResolvesSidecarTags(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	writeDoc(t, inDir, "doc.txt", "Article 1\nbody\nArticle 2\n")
	writeDoc(t, inDir, "doc.tags.csv", "label,reference\nfirst,1\ngone,9\n")

	levels := segment.MustCompile([][]string{{`Article [0-9]+`}})
	manifest, err := NewRunner(levels, Options{}).Run(inDir, outDir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(manifest.Documents) != 1 {
		t.Fatalf("got %d documents, want 1", len(manifest.Documents))
	}
	doc := manifest.Documents[0]
	if doc.Resolved != 1 || doc.TagFailures != 1 {
		t.Errorf("resolved=%d failures=%d, want 1 and 1", doc.Resolved, doc.TagFailures)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "doc", "tag_report.json"))
	if err != nil {
		t.Fatalf("reading tag report: %v", err)
	}
	var report struct {
		Failures []struct {
			Label  string `json:"label"`
			Reason string `json:"reason"`
		} `json:"failures"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("parsing tag report: %v", err)
	}
	if len(report.Failures) != 1 || report.Failures[0].Label != "gone" || report.Failures[0].Reason != "no_match" {
		t.Errorf("tag report failures = %+v", report.Failures)
	}
}

func TestRun_BadDocumentDoesNotFailBatch(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	writeDoc(t, inDir, "good.txt", "Article 1\nbody\n")
	writeDoc(t, inDir, "bad.txt", "Article 1\n")
	// Malformed sidecar tags make the bad document fail.
	writeDoc(t, inDir, "bad.tags.csv", "x,1\ny,not-a-ref\n")

	levels := segment.MustCompile([][]string{{`Article [0-9]+`}})
	manifest, err := NewRunner(levels, Options{}).Run(inDir, outDir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if manifest.Succeeded() != 1 || manifest.Failed() != 1 {
		t.Fatalf("succeeded=%d failed=%d, want 1 and 1", manifest.Succeeded(), manifest.Failed())
	}
	for _, doc := range manifest.Documents {
		if doc.Status == StatusFailed && doc.Error == "" {
			t.Error("failed document must carry an error message")
		}
	}
}

func TestRun_MissingInputDir(t *testing.T) {
	levels := segment.MustCompile([][]string{{`Article [0-9]+`}})
	if _, err := NewRunner(levels, Options{}).Run(filepath.Join(t.TempDir(), "nope"), t.TempDir()); err == nil {
		t.Error("expected error for missing input directory")
	}
}
