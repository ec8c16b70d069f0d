package plugin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/zyanho/kedro-cli/pkg/cli"
)

// BuiltinRef is the Ref of plugins registered with an in-process Factory
const BuiltinRef = "builtin"

// Registry holds the plugins of every Kind in registration order
type Registry struct {
	mu      sync.RWMutex
	handles map[Kind][]*Handle
	config  *Config
	logger  Logger
	loader  *Loader
	metrics *Metrics
}

// RegistryOption defines a function type for configuring Registry
type RegistryOption func(*Registry)

// WithLogger sets an external logger implementation
func WithLogger(logger Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates an empty plugin registry
func NewRegistry(config *Config, opts ...RegistryOption) (*Registry, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	r := &Registry{
		handles: make(map[Kind][]*Handle),
		config:  config.Clone(),
		logger:  NewDefaultLogger(config.LogLevel),
		metrics: NewMetrics(config.EnableMetrics),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.loader = NewLoader(config.LoadTimeout, r.logger)
	return r, nil
}

// Register adds an in-process plugin. Disabled plugins are skipped.
func (r *Registry) Register(kind Kind, name string, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("nil factory for plugin %s", name)
	}
	return r.add(newHandle(kind, name, BuiltinRef, factory, r.logger, r.metrics))
}

// RegisterPath adds a shared object plugin. The file is not opened until the
// plugin's handle is loaded.
func (r *Registry) RegisterPath(kind Kind, name, path string) error {
	h := newHandle(kind, name, path, nil, r.logger, r.metrics)
	h.factory = r.loader.Factory(path, func(syms *Symbols) { h.version = syms.Version })
	return r.add(h)
}

func (r *Registry) add(h *Handle) error {
	if !h.kind.Valid() {
		return ErrUnknownKind{Kind: string(h.kind)}
	}
	if h.name == "" {
		return fmt.Errorf("plugin name cannot be empty")
	}
	if r.config.IsDisabled(h.name) {
		r.logger.Debug("Plugin disabled", "plugin", h.name, "kind", h.kind)
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.handles[h.kind] {
		if existing.name == h.name {
			return ErrPluginExists{Kind: h.kind, Name: h.name}
		}
	}
	r.handles[h.kind] = append(r.handles[h.kind], h)
	r.logger.Debug("Plugin registered", "plugin", h.name, "kind", h.kind, "ref", h.ref)
	return nil
}

// Discover registers the plugins found under dir: first the entries of
// dir/plugins.toml, then every dir/<kind>/<name>.so not registered yet.
// A missing directory yields no plugins.
func (r *Registry) Discover(dir string) error {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	manifest, err := ReadManifest(filepath.Join(dir, ManifestName))
	if err != nil {
		return err
	}
	for _, entry := range manifest.Plugins {
		kind, err := ParseKind(entry.Kind)
		if err != nil {
			return fmt.Errorf("plugin %s: %w", entry.Name, err)
		}
		if entry.Disabled {
			continue
		}
		path := entry.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		if err := r.RegisterPath(kind, entry.Name, path); err != nil {
			return err
		}
	}

	for _, kind := range Kinds {
		entries, err := os.ReadDir(filepath.Join(dir, string(kind)))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read plugin directory: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() || filepath.Ext(e.Name()) != ".so" {
				continue
			}
			name := getPluginNameFromPath(e.Name())
			if _, err := r.Handle(kind, name); err == nil {
				continue
			}
			if err := r.RegisterPath(kind, name, filepath.Join(dir, string(kind), e.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// Groups returns the handles of kind in registration order without loading
func (r *Registry) Groups(kind Kind) []*Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Handle(nil), r.handles[kind]...)
}

// Lazy returns the handles of kind as router lazy sources
func (r *Registry) Lazy(kind Kind) []cli.LazySource {
	handles := r.Groups(kind)
	lazy := make([]cli.LazySource, 0, len(handles))
	for _, h := range handles {
		lazy = append(lazy, h)
	}
	return lazy
}

// LoadAll loads every plugin of kind and returns the groups of those that
// loaded. Failures are logged by the handle and skipped.
func (r *Registry) LoadAll(ctx context.Context, kind Kind) []cli.Group {
	var groups []cli.Group
	for _, h := range r.Groups(kind) {
		if g, ok := h.Load(ctx); ok {
			groups = append(groups, g...)
		}
	}
	return groups
}

// Handle returns the named plugin of kind
func (r *Registry) Handle(kind Kind, name string) (*Handle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, h := range r.handles[kind] {
		if h.name == name {
			return h, nil
		}
	}
	return nil, ErrPluginNotFound{Name: name}
}

// List returns all registered plugins ordered by kind, then registration
func (r *Registry) List() []PluginInfo {
	var plugins []PluginInfo
	for _, kind := range Kinds {
		for _, h := range r.Groups(kind) {
			plugins = append(plugins, h.info())
		}
	}
	return plugins
}

// Metrics returns the load metrics collector
func (r *Registry) Metrics() *Metrics {
	return r.metrics
}

// Names returns the sorted plugin names of kind
func (r *Registry) Names(kind Kind) []string {
	var names []string
	for _, h := range r.Groups(kind) {
		names = append(names, h.name)
	}
	sort.Strings(names)
	return names
}

// Helper functions
func getPluginNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
