package plugin

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zyanho/kedro-cli/pkg/cli"
)

// Factory materializes the command groups a plugin contributes
type Factory func(ctx context.Context) ([]cli.Group, error)

// Handle is a registered plugin. Nothing is loaded until Load is called, and
// Load resolves the plugin at most once: both the groups and a failure are
// kept for the lifetime of the handle.
type Handle struct {
	mu      sync.Mutex
	kind    Kind
	name    string
	ref     string
	factory Factory
	logger  Logger
	metrics *Metrics

	state   State
	groups  []cli.Group
	version string
	err     error
}

func newHandle(kind Kind, name, ref string, factory Factory, logger Logger, metrics *Metrics) *Handle {
	return &Handle{
		kind:    kind,
		name:    name,
		ref:     ref,
		factory: factory,
		logger:  logger,
		metrics: metrics,
	}
}

func (h *Handle) Name() string {
	return h.name
}

func (h *Handle) Kind() Kind {
	return h.kind
}

// Ref is where the plugin comes from: a shared object path or "builtin"
func (h *Handle) Ref() string {
	return h.ref
}

func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Err returns the captured *LoadError of a failed handle
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Load returns the plugin's groups, loading it on the first call. A failed
// load is logged as a warning and reported as ok == false.
func (h *Handle) Load(ctx context.Context) ([]cli.Group, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.state {
	case StateLoaded:
		return h.groups, true
	case StateFailed:
		return nil, false
	}

	start := time.Now()
	groups, err := h.run(ctx)
	h.metrics.Record(h.name, time.Since(start), err)

	if err != nil {
		h.state = StateFailed
		h.err = &LoadError{Name: h.name, Ref: h.ref, Err: err}
		h.logger.Warn("Failed to load plugin commands", "plugin", h.name, "ref", h.ref, "error", err)
		return nil, false
	}

	h.state = StateLoaded
	h.groups = groups
	h.logger.Debug("Plugin loaded", "plugin", h.name, "groups", len(groups))
	return groups, true
}

func (h *Handle) run(ctx context.Context) (groups []cli.Group, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h.factory(ctx)
}

func (h *Handle) info() PluginInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return PluginInfo{
		Kind:    h.kind,
		Name:    h.name,
		Ref:     h.ref,
		Version: h.version,
		State:   h.state,
		Err:     h.err,
	}
}
