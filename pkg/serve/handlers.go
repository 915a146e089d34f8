package serve

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/coolbeans/strata/pkg/clean"
	"github.com/coolbeans/strata/pkg/hierarchy"
	"github.com/coolbeans/strata/pkg/segment"
	"github.com/coolbeans/strata/pkg/tag"
)

// maxBodyBytes bounds request bodies; documents are text, not uploads.
const maxBodyBytes = 16 << 20

type segmentRequest struct {
	// Spec names a registered header-level spec; Levels supplies patterns
	// inline. Exactly one of the two must be set.
	Spec   string     `json:"spec,omitempty"`
	Levels [][]string `json:"levels,omitempty"`

	// Lines carries the document pre-split; Text as one string.
	Lines []string `json:"lines,omitempty"`
	Text  string   `json:"text,omitempty"`

	// Clean runs text normalization before segmenting.
	Clean bool `json:"clean,omitempty"`
}

type segmentResponse struct {
	Tree        *hierarchy.ExportNode     `json:"tree"`
	Skeleton    []hierarchy.SkeletonEntry `json:"skeleton"`
	Diagnostics []string                  `json:"diagnostics,omitempty"`
}

type resolveRequest struct {
	segmentRequest
	Tags []tagPair `json:"tags"`
}

type tagPair struct {
	Label     string `json:"label"`
	Reference string `json:"reference"`
}

type resolveResponse struct {
	Tree        *hierarchy.ExportNode `json:"tree"`
	Report      *tag.Report           `json:"report"`
	Diagnostics []string              `json:"diagnostics,omitempty"`
}

type specInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Levels  int    `json:"levels"`
}

func (s *Server) handleListSpecs(w http.ResponseWriter, r *http.Request) {
	specs := s.registry.List()
	out := make([]specInfo, 0, len(specs))
	for _, spec := range specs {
		out = append(out, specInfo{
			Name:    spec.Name,
			Version: spec.Version,
			Levels:  len(spec.Levels),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSegment(w http.ResponseWriter, r *http.Request) {
	var req segmentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tree, diags, ok := s.segmentFrom(w, req)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, segmentResponse{
		Tree:        tree.Export(),
		Skeleton:    tree.Skeleton(),
		Diagnostics: diagStrings(diags),
	})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Tags) == 0 {
		jsonError(w, "tags are required", http.StatusBadRequest)
		return
	}

	reqs := make([]tag.Request, 0, len(req.Tags))
	for _, pair := range req.Tags {
		ref, err := tag.ParseReference(pair.Reference)
		if err != nil {
			jsonError(w, fmt.Sprintf("tag %q: %v", pair.Label, err), http.StatusBadRequest)
			return
		}
		reqs = append(reqs, tag.Request{Label: pair.Label, Reference: ref})
	}

	tree, diags, ok := s.segmentFrom(w, req.segmentRequest)
	if !ok {
		return
	}
	report := tag.Resolve(tree, reqs)
	writeJSON(w, http.StatusOK, resolveResponse{
		Tree:        tree.Export(),
		Report:      report,
		Diagnostics: diagStrings(diags),
	})
}

// segmentFrom compiles the requested levels and segments the document,
// writing the HTTP error itself when the request is unusable.
func (s *Server) segmentFrom(w http.ResponseWriter, req segmentRequest) (*hierarchy.Tree, []segment.Diagnostic, bool) {
	levels, ok := s.compileLevels(w, req)
	if !ok {
		return nil, nil, false
	}

	lines := req.Lines
	if lines == nil && req.Text != "" {
		lines = strings.Split(strings.ReplaceAll(req.Text, "\r\n", "\n"), "\n")
	}
	if len(lines) == 0 {
		jsonError(w, "document is required: set lines or text", http.StatusBadRequest)
		return nil, nil, false
	}
	if req.Clean {
		lines = clean.Clean(lines)
	}

	tree, diags := segment.Segment(lines, levels)
	return tree, diags, true
}

func (s *Server) compileLevels(w http.ResponseWriter, req segmentRequest) (*segment.LevelSpec, bool) {
	switch {
	case req.Spec != "" && len(req.Levels) > 0:
		jsonError(w, "set either spec or levels, not both", http.StatusBadRequest)
		return nil, false

	case req.Spec != "":
		spec, ok := s.registry.Get(req.Spec)
		if !ok {
			jsonError(w, fmt.Sprintf("spec %q not found", req.Spec), http.StatusNotFound)
			return nil, false
		}
		levels, err := spec.Spec()
		if err != nil {
			jsonError(w, fmt.Sprintf("spec %q: %v", req.Spec, err), http.StatusInternalServerError)
			return nil, false
		}
		return levels, true

	case len(req.Levels) > 0:
		levels, err := segment.Compile(req.Levels)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return nil, false
		}
		return levels, true

	default:
		jsonError(w, "header levels are required: set spec or levels", http.StatusBadRequest)
		return nil, false
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func diagStrings(diags []segment.Diagnostic) []string {
	if len(diags) == 0 {
		return nil
	}
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.String()
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
