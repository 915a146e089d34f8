package segment

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/fsnotify.v1"
	"gopkg.in/yaml.v3"
)

// Registry manages named header-level specs loaded from YAML files.
type Registry struct {
	mu       sync.RWMutex
	specs    map[string]*SpecFile
	dir      string
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	onChange func(event string, spec *SpecFile)
}

// NewRegistry creates an empty spec registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]*SpecFile)}
}

// NewRegistryWithDirectory creates a registry and loads all specs from dir.
func NewRegistryWithDirectory(dir string) (*Registry, error) {
	r := NewRegistry()
	if err := r.LoadDirectory(dir); err != nil {
		return nil, err
	}
	return r, nil
}

// Register validates, compiles, and adds a spec to the registry.
func (r *Registry) Register(spec *SpecFile) error {
	if spec == nil {
		return fmt.Errorf("spec cannot be nil")
	}
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("invalid spec: %w", err)
	}
	if !spec.IsCompiled() {
		if err := spec.Compile(); err != nil {
			return fmt.Errorf("compiling spec %q: %w", spec.Name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.specs[spec.Name]; ok && existing.Version == spec.Version {
		return fmt.Errorf("spec %q version %s already registered", spec.Name, spec.Version)
	}
	r.specs[spec.Name] = spec
	return nil
}

// Unregister removes a spec by name.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.specs[name]; !ok {
		return fmt.Errorf("spec %q not found", name)
	}
	delete(r.specs, name)
	return nil
}

// Get returns a spec by name.
func (r *Registry) Get(name string) (*SpecFile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[name]
	return spec, ok
}

// List returns all registered specs, sorted by name.
func (r *Registry) List() []*SpecFile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	specs := make([]*SpecFile, 0, len(r.specs))
	for _, s := range r.specs {
		specs = append(specs, s)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}

// Count returns the number of registered specs.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.specs)
}

// LoadDirectory loads all YAML spec files from a directory. A missing
// directory is not an error; individual file failures are collected so one
// bad spec cannot hide the rest.
func (r *Registry) LoadDirectory(dir string) error {
	r.dir = dir

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var loadErrors []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		if err := r.LoadFile(filepath.Join(dir, name)); err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", name, err))
		}
	}
	if len(loadErrors) > 0 {
		return fmt.Errorf("errors loading specs: %s", strings.Join(loadErrors, "; "))
	}
	return nil
}

// LoadFile loads a single YAML spec file.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	var spec SpecFile
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}
	if err := r.Register(&spec); err != nil {
		return fmt.Errorf("registering spec: %w", err)
	}
	return nil
}

// Reload clears the registry and reloads from the configured directory.
func (r *Registry) Reload() error {
	if r.dir == "" {
		return fmt.Errorf("no directory configured for reload")
	}
	r.mu.Lock()
	r.specs = make(map[string]*SpecFile)
	r.mu.Unlock()
	return r.LoadDirectory(r.dir)
}

// SetOnChange sets a callback invoked when watched specs change.
func (r *Registry) SetOnChange(fn func(event string, spec *SpecFile)) {
	r.onChange = fn
}

// Watch starts watching the spec directory for changes.
func (r *Registry) Watch() error {
	if r.dir == "" {
		return fmt.Errorf("no directory configured for watching")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	r.watcher = watcher
	r.stopChan = make(chan struct{})

	go r.watchLoop()

	if err := watcher.Add(r.dir); err != nil {
		r.watcher.Close()
		return fmt.Errorf("watching directory %s: %w", r.dir, err)
	}
	return nil
}

func (r *Registry) watchLoop() {
	for {
		select {
		case <-r.stopChan:
			return

		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".yaml") && !strings.HasSuffix(event.Name, ".yml") {
				continue
			}
			switch {
			case event.Op&fsnotify.Create == fsnotify.Create:
				r.handleFileChange(event.Name, "create")
			case event.Op&fsnotify.Write == fsnotify.Write:
				r.handleFileChange(event.Name, "modify")
			case event.Op&fsnotify.Remove == fsnotify.Remove,
				event.Op&fsnotify.Rename == fsnotify.Rename:
				r.handleFileRemove()
			}

		case _, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (r *Registry) handleFileChange(path, eventType string) {
	if err := r.LoadFile(path); err != nil {
		return
	}
	if r.onChange != nil {
		base := filepath.Base(path)
		name := strings.TrimSuffix(strings.TrimSuffix(base, ".yaml"), ".yml")
		if spec, ok := r.Get(name); ok {
			r.onChange(eventType, spec)
		}
	}
}

func (r *Registry) handleFileRemove() {
	// File-to-spec mapping is not tracked; reload the directory.
	if err := r.Reload(); err != nil {
		return
	}
	if r.onChange != nil {
		r.onChange("remove", nil)
	}
}

// StopWatch stops watching the spec directory.
func (r *Registry) StopWatch() {
	if r.stopChan != nil {
		close(r.stopChan)
	}
	if r.watcher != nil {
		r.watcher.Close()
	}
}
