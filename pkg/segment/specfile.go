package segment

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Level is one hierarchy depth in a spec file: a named set of alternative
// header patterns, all equally ranked at that depth.
type Level struct {
	Name     string   `yaml:"name" json:"name"`
	Patterns []string `yaml:"patterns" json:"patterns"`
}

// SpecFile is a named, versioned header-level spec as loaded from YAML.
// Levels are ordered from highest to lowest hierarchy level.
type SpecFile struct {
	Name    string  `yaml:"name" json:"name"`
	Version string  `yaml:"version" json:"version"`
	Levels  []Level `yaml:"levels" json:"levels"`

	compiled *LevelSpec
}

// Validate checks that the spec file has all required fields.
func (sf *SpecFile) Validate() error {
	if sf.Name == "" {
		return fmt.Errorf("spec name is required")
	}
	if !isValidSpecName(sf.Name) {
		return fmt.Errorf("spec name %q must be lowercase alphanumeric with hyphens, starting with a letter", sf.Name)
	}
	if sf.Version == "" {
		return fmt.Errorf("spec version is required")
	}
	if !isValidVersion(sf.Version) {
		return fmt.Errorf("spec version %q must be a semantic version (e.g. 1.0.0)", sf.Version)
	}
	if len(sf.Levels) == 0 {
		return fmt.Errorf("spec must define at least one level")
	}
	for i, lvl := range sf.Levels {
		if len(lvl.Patterns) == 0 {
			return fmt.Errorf("level %d (%s) has no patterns", i, lvl.Name)
		}
	}
	return nil
}

// Compile compiles all level patterns. A pattern that fails to compile is
// fatal and reported before any segmentation begins.
func (sf *SpecFile) Compile() error {
	levels := make([][]string, 0, len(sf.Levels))
	for _, lvl := range sf.Levels {
		levels = append(levels, lvl.Patterns)
	}
	compiled, err := Compile(levels)
	if err != nil {
		return err
	}
	sf.compiled = compiled
	return nil
}

// IsCompiled returns true once Compile has succeeded.
func (sf *SpecFile) IsCompiled() bool { return sf.compiled != nil }

// Spec returns the compiled level spec, compiling on first use.
func (sf *SpecFile) Spec() (*LevelSpec, error) {
	if sf.compiled == nil {
		if err := sf.Compile(); err != nil {
			return nil, err
		}
	}
	return sf.compiled, nil
}

// LoadSpecFile reads, validates, and compiles a spec from a YAML file.
func LoadSpecFile(path string) (*SpecFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spec file: %w", err)
	}
	var sf SpecFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing spec file %s: %w", path, err)
	}
	if err := sf.Validate(); err != nil {
		return nil, fmt.Errorf("spec file %s: %w", path, err)
	}
	if err := sf.Compile(); err != nil {
		return nil, fmt.Errorf("spec file %s: %w", path, err)
	}
	return &sf, nil
}

func isValidSpecName(name string) bool {
	if len(name) == 0 || name[0] < 'a' || name[0] > 'z' {
		return false
	}
	for _, c := range name[1:] {
		if !((c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-') {
			return false
		}
	}
	return true
}

func isValidVersion(v string) bool {
	parts := strings.Split(v, ".")
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		if len(part) == 0 {
			return false
		}
		for _, c := range part {
			if c < '0' || c > '9' {
				return false
			}
		}
	}
	return true
}
