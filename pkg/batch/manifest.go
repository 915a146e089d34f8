// Package batch sequences the segmentation pipeline over a directory of
// documents, writing per-document artifacts and a run manifest. One bad
// document never fails the run; its failure is recorded and the rest of the
// batch proceeds.
package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Manifest records one batch run for auditing and resumability.
type Manifest struct {
	RunID      string            `json:"run_id"`
	Version    string            `json:"version"`
	SpecName   string            `json:"spec_name,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Documents  []*DocumentRecord `json:"documents"`
}

// DocumentRecord tracks the outcome for a single document in a run.
type DocumentRecord struct {
	Source      string `json:"source"`
	OutputDir   string `json:"output_dir,omitempty"`
	Status      string `json:"status"`
	Sections    int    `json:"sections,omitempty"`
	Diagnostics int    `json:"diagnostics,omitempty"`
	Resolved    int    `json:"tags_resolved,omitempty"`
	TagFailures int    `json:"tag_failures,omitempty"`
	Error       string `json:"error,omitempty"`
}

const manifestVersion = "1.0.0"

// Document statuses recorded in the manifest.
const (
	StatusSegmented = "segmented"
	StatusFailed    = "failed"
)

// LoadManifest reads a run manifest from disk.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	manifest := &Manifest{}
	if err := json.Unmarshal(data, manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return manifest, nil
}

// Save writes the manifest to disk, creating the directory if needed.
func (m *Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// Succeeded counts documents that segmented cleanly.
func (m *Manifest) Succeeded() int {
	n := 0
	for _, d := range m.Documents {
		if d.Status == StatusSegmented {
			n++
		}
	}
	return n
}

// Failed counts documents that could not be processed.
func (m *Manifest) Failed() int {
	n := 0
	for _, d := range m.Documents {
		if d.Status == StatusFailed {
			n++
		}
	}
	return n
}
