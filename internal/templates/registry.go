package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Artifact template ids
const (
	Controller          = "controller"
	ControllerBelongsTo = "controller_belongs_to"
	APIController       = "api_controller"
	APIControllerNested = "api_controller_belongs_to"
	Model               = "model"
	Migration           = "migration"
	ViewIndex           = "view_index"
	ViewShow            = "view_show"
	ViewNew             = "view_new"
	ViewEdit            = "view_edit"
)

const templateExt = ".tmpl"

//go:embed artifacts/*.tmpl
var artifactFS embed.FS

// Registry manages artifact template sources by id
type Registry struct {
	sources map[string]string
	mutex   sync.RWMutex
}

// NewRegistry creates an empty template registry
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]string),
	}
}

// Register registers a template source under id
func (r *Registry) Register(id, source string) error {
	if id == "" {
		return fmt.Errorf("template id is required")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.sources[id]; exists {
		return fmt.Errorf("template %s already registered", id)
	}

	r.sources[id] = source
	return nil
}

// Override replaces (or adds) the source registered under id
func (r *Registry) Override(id, source string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.sources[id] = source
}

// Get retrieves a template source by id
func (r *Registry) Get(id string) (string, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	source, exists := r.sources[id]
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}

	return source, nil
}

// List returns all registered ids, sorted
func (r *Registry) List() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	ids := make([]string, 0, len(r.sources))
	for id := range r.sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Exists checks if a template exists
func (r *Registry) Exists(id string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	_, exists := r.sources[id]
	return exists
}

// LoadDir overrides built-in templates with <id>.tmpl files found in dir.
// A missing directory is not an error.
func (r *Registry) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read template directory: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), templateExt) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return loaded, fmt.Errorf("failed to read template %s: %w", entry.Name(), err)
		}
		r.Override(strings.TrimSuffix(entry.Name(), templateExt), string(data))
		loaded++
	}
	return loaded, nil
}

// NewBuiltinRegistry returns a registry holding the embedded artifact templates
func NewBuiltinRegistry() (*Registry, error) {
	r := NewRegistry()
	err := fs.WalkDir(artifactFS, "artifacts", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := artifactFS.ReadFile(p)
		if err != nil {
			return err
		}
		return r.Register(strings.TrimSuffix(path.Base(p), templateExt), string(data))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load built-in templates: %w", err)
	}
	return r, nil
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the shared registry of built-in templates
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		r, err := NewBuiltinRegistry()
		if err != nil {
			// embedded files are compiled in; failing here is a build defect
			panic(err)
		}
		defaultRegistry = r
	})
	return defaultRegistry
}
