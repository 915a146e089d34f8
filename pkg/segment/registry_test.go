package segment

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSpecFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing spec file: %v", err)
	}
	return path
}

const validSpecYAML = `name: us-constitution
version: 1.0.0
levels:
  - name: article
    patterns:
      - 'Article [0-9]+'
  - name: section
    patterns:
      - 'Section [0-9]+\.'
`

func TestRegistry_LoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeSpecFile(t, dir, "us-constitution.yaml", validSpecYAML)
	writeSpecFile(t, dir, "notes.txt", "ignored")

	r, err := NewRegistryWithDirectory(dir)
	if err != nil {
		t.Fatalf("NewRegistryWithDirectory: %v", err)
	}
	if r.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", r.Count())
	}
	spec, ok := r.Get("us-constitution")
	if !ok {
		t.Fatal("spec not found")
	}
	if !spec.IsCompiled() {
		t.Error("registered spec should be compiled")
	}
	compiled, err := spec.Spec()
	if err != nil {
		t.Fatalf("Spec(): %v", err)
	}
	if compiled.Depths() != 2 {
		t.Errorf("Depths() = %d, want 2", compiled.Depths())
	}
}

func TestRegistry_LoadDirectoryMissing(t *testing.T) {
	r := NewRegistry()
	if err := r.LoadDirectory(filepath.Join(t.TempDir(), "nope")); err != nil {
		t.Errorf("missing directory should not be an error, got %v", err)
	}
}

func TestRegistry_RegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		spec *SpecFile
	}{
		{"nil", nil},
		{"missing name", &SpecFile{Version: "1.0.0", Levels: []Level{{Patterns: []string{"x"}}}}},
		{"bad name", &SpecFile{Name: "US", Version: "1.0.0", Levels: []Level{{Patterns: []string{"x"}}}}},
		{"bad version", &SpecFile{Name: "us", Version: "1", Levels: []Level{{Patterns: []string{"x"}}}}},
		{"no levels", &SpecFile{Name: "us", Version: "1.0.0"}},
		{"empty level", &SpecFile{Name: "us", Version: "1.0.0", Levels: []Level{{Name: "a"}}}},
		{"bad pattern", &SpecFile{Name: "us", Version: "1.0.0", Levels: []Level{{Patterns: []string{"["}}}}},
	}
	r := NewRegistry()
	for _, tc := range tests {
		if err := r.Register(tc.spec); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestRegistry_DuplicateVersionRejected(t *testing.T) {
	r := NewRegistry()
	mk := func(version string) *SpecFile {
		return &SpecFile{Name: "us", Version: version, Levels: []Level{{Patterns: []string{`Article [0-9]+`}}}}
	}
	if err := r.Register(mk("1.0.0")); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register(mk("1.0.0")); err == nil {
		t.Error("duplicate name+version should be rejected")
	}
	if err := r.Register(mk("1.1.0")); err != nil {
		t.Errorf("new version should replace: %v", err)
	}
}

func TestRegistry_Reload(t *testing.T) {
	dir := t.TempDir()
	writeSpecFile(t, dir, "us-constitution.yaml", validSpecYAML)

	r, err := NewRegistryWithDirectory(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := r.Unregister("us-constitution"); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if r.Count() != 0 {
		t.Fatalf("Count() = %d after unregister", r.Count())
	}
	if err := r.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d after reload, want 1", r.Count())
	}
}

func TestRegistry_LoadFileBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeSpecFile(t, dir, "bad.yaml", "levels: [:::")
	r := NewRegistry()
	if err := r.LoadFile(path); err == nil {
		t.Error("expected YAML parse error")
	}
}

func TestRegistry_List(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"zeta", "alpha"} {
		spec := &SpecFile{Name: name, Version: "1.0.0", Levels: []Level{{Patterns: []string{"x"}}}}
		if err := r.Register(spec); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	specs := r.List()
	if len(specs) != 2 || specs[0].Name != "alpha" || specs[1].Name != "zeta" {
		t.Errorf("List() order wrong: %v", specs)
	}
}
