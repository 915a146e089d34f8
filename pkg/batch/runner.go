package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coolbeans/strata/pkg/clean"
	"github.com/coolbeans/strata/pkg/hierarchy"
	"github.com/coolbeans/strata/pkg/input"
	"github.com/coolbeans/strata/pkg/segment"
	"github.com/coolbeans/strata/pkg/tag"
)

// Options controls a batch run.
type Options struct {
	// SpecName is recorded in the manifest for auditing.
	SpecName string

	// Clean runs text normalization before segmentation.
	Clean bool

	// WriteCSV additionally writes the flattened section table per document.
	WriteCSV bool
}

// Runner segments every document under an input directory with one shared
// header-level spec.
type Runner struct {
	levels *segment.LevelSpec
	opts   Options
}

// NewRunner creates a batch runner over a compiled header-level spec.
func NewRunner(levels *segment.LevelSpec, opts Options) *Runner {
	return &Runner{levels: levels, opts: opts}
}

// Run processes every .txt and .md document directly under inputDir, writing
// per-document artifacts under outputDir/<stem>/ and a manifest.json at the
// output root. Per-document failures are recorded, never propagated.
func (r *Runner) Run(inputDir, outputDir string) (*Manifest, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}

	manifest := &Manifest{
		RunID:     uuid.NewString(),
		Version:   manifestVersion,
		SpecName:  r.opts.SpecName,
		StartedAt: time.Now().UTC(),
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".txt", ".md", ".markdown":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		record := r.processDocument(filepath.Join(inputDir, name), outputDir)
		manifest.Documents = append(manifest.Documents, record)
	}

	manifest.FinishedAt = time.Now().UTC()
	if err := manifest.Save(filepath.Join(outputDir, "manifest.json")); err != nil {
		return nil, err
	}
	return manifest, nil
}

// processDocument runs the full pipeline for one document: read, clean,
// segment, resolve tags when a sidecar tag file exists, and write artifacts.
func (r *Runner) processDocument(path, outputDir string) *DocumentRecord {
	record := &DocumentRecord{Source: path}

	lines, err := input.ReadFile(path)
	if err != nil {
		record.Status = StatusFailed
		record.Error = err.Error()
		return record
	}
	if r.opts.Clean {
		lines = clean.Clean(lines)
	}

	tree, diags := segment.Segment(lines, r.levels)
	record.Diagnostics = len(diags)
	record.Sections = len(tree.Skeleton())

	docDir := filepath.Join(outputDir, docStem(path))
	if err := os.MkdirAll(docDir, 0755); err != nil {
		record.Status = StatusFailed
		record.Error = err.Error()
		return record
	}
	record.OutputDir = docDir

	if err := writeTree(filepath.Join(docDir, "tree.json"), tree); err != nil {
		record.Status = StatusFailed
		record.Error = err.Error()
		return record
	}
	if err := writeDiagnostics(filepath.Join(docDir, "diagnostics.json"), diags); err != nil {
		record.Status = StatusFailed
		record.Error = err.Error()
		return record
	}

	// A sidecar <stem>.tags.csv next to the document carries its tag set.
	tagPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".tags.csv"
	if _, err := os.Stat(tagPath); err == nil {
		reqs, err := tag.LoadCSVFile(tagPath)
		if err != nil {
			record.Status = StatusFailed
			record.Error = err.Error()
			return record
		}
		report := tag.Resolve(tree, reqs)
		record.Resolved = report.Resolved
		record.TagFailures = len(report.Failures)

		// Rewrite the tree so attached labels land in tree.json, and keep
		// the failure report alongside it.
		if err := writeTree(filepath.Join(docDir, "tree.json"), tree); err != nil {
			record.Status = StatusFailed
			record.Error = err.Error()
			return record
		}
		if err := writeJSON(filepath.Join(docDir, "tag_report.json"), report); err != nil {
			record.Status = StatusFailed
			record.Error = err.Error()
			return record
		}
	}

	if r.opts.WriteCSV {
		if err := writeFlatCSV(filepath.Join(docDir, "sections.csv"), tree); err != nil {
			record.Status = StatusFailed
			record.Error = err.Error()
			return record
		}
	}

	record.Status = StatusSegmented
	return record
}

func docStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func writeTree(path string, tree *hierarchy.Tree) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return tree.WriteJSON(f)
}

func writeFlatCSV(path string, tree *hierarchy.Tree) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return hierarchy.WriteFlatCSV(f, tree.Flatten())
}

func writeDiagnostics(path string, diags []segment.Diagnostic) error {
	msgs := make([]string, len(diags))
	for i, d := range diags {
		msgs[i] = d.String()
	}
	return writeJSON(path, msgs)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
