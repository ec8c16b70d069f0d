package plugin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/zyanho/kedro-cli/pkg/cli"
)

// recordLogger keeps every record for inspection
type recordLogger struct {
	mu      sync.Mutex
	records []string
}

func (l *recordLogger) add(level, msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, fmt.Sprintf("%s %s %v", level, msg, args))
}

func (l *recordLogger) Debug(msg string, args ...interface{}) { l.add("DEBUG", msg, args...) }
func (l *recordLogger) Info(msg string, args ...interface{})  { l.add("INFO", msg, args...) }
func (l *recordLogger) Warn(msg string, args ...interface{})  { l.add("WARN", msg, args...) }
func (l *recordLogger) Error(msg string, args ...interface{}) { l.add("ERROR", msg, args...) }

func (l *recordLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, r := range l.records {
		if len(r) > len(level) && r[:len(level)] == level {
			n++
		}
	}
	return n
}

func newTestRegistry(t *testing.T, opts ...func(*Config)) (*Registry, *recordLogger) {
	t.Helper()
	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}
	logger := &recordLogger{}
	r, err := NewRegistry(config, WithLogger(logger))
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return r, logger
}

func groupFactory(calls *int, names ...string) Factory {
	return func(ctx context.Context) ([]cli.Group, error) {
		*calls++
		var cmds []cli.Command
		for _, n := range names {
			cmds = append(cmds, cli.Command{Name: n})
		}
		return []cli.Group{cli.NewGroup("cli", "", cmds...)}, nil
	}
}

func handleNames(handles []*Handle) []string {
	var names []string
	for _, h := range handles {
		names = append(names, h.Name())
	}
	return names
}

func hasCommand(g cli.Group, name string) bool {
	_, ok := g.Command(name)
	return ok
}

func TestRegistry_Register(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		plugin  string
		factory Factory
		check   func(error) bool
	}{
		{
			name:    "valid plugin",
			kind:    KindProject,
			plugin:  "kedro-viz",
			factory: func(context.Context) ([]cli.Group, error) { return nil, nil },
			check:   func(err error) bool { return err == nil },
		},
		{
			name:    "unknown kind",
			kind:    Kind("bogus"),
			plugin:  "kedro-viz",
			factory: func(context.Context) ([]cli.Group, error) { return nil, nil },
			check: func(err error) bool {
				var target ErrUnknownKind
				return errors.As(err, &target)
			},
		},
		{
			name:    "empty name",
			kind:    KindProject,
			factory: func(context.Context) ([]cli.Group, error) { return nil, nil },
			check:   func(err error) bool { return err != nil },
		},
		{
			name:   "nil factory",
			kind:   KindProject,
			plugin: "kedro-viz",
			check:  func(err error) bool { return err != nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRegistry(t)
			if err := r.Register(tt.kind, tt.plugin, tt.factory); !tt.check(err) {
				t.Errorf("Register() unexpected error = %v", err)
			}
		})
	}
}

func TestRegistry_Duplicate(t *testing.T) {
	r, _ := newTestRegistry(t)
	var calls int
	if err := r.Register(KindProject, "kedro-viz", groupFactory(&calls, "viz")); err != nil {
		t.Fatal(err)
	}
	err := r.Register(KindProject, "kedro-viz", groupFactory(&calls, "viz"))
	if !IsPluginExistsError(err) {
		t.Errorf("Register() error = %v, want ErrPluginExists", err)
	}
	// the same name in another kind is a different plugin
	if err := r.Register(KindGlobal, "kedro-viz", groupFactory(&calls, "viz")); err != nil {
		t.Errorf("Register() error = %v", err)
	}
}

func TestRegistry_Disabled(t *testing.T) {
	r, _ := newTestRegistry(t, func(c *Config) { c.Disabled = []string{"kedro-docker"} })
	var calls int
	if err := r.Register(KindProject, "kedro-docker", groupFactory(&calls, "docker")); err != nil {
		t.Fatal(err)
	}
	if got := r.Groups(KindProject); len(got) != 0 {
		t.Errorf("Groups() got = %v, want none", handleNames(got))
	}
}

func TestRegistry_GroupsDoesNotLoad(t *testing.T) {
	r, _ := newTestRegistry(t)
	var calls int
	for _, name := range []string{"kedro-viz", "kedro-docker", "kedro-airflow"} {
		if err := r.Register(KindProject, name, groupFactory(&calls, name)); err != nil {
			t.Fatal(err)
		}
	}

	handles := r.Groups(KindProject)
	if got, want := handleNames(handles), []string{"kedro-viz", "kedro-docker", "kedro-airflow"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Groups() got = %v, want %v", got, want)
	}
	if calls != 0 {
		t.Errorf("Groups() loaded %d plugins", calls)
	}
	for _, h := range handles {
		if h.State() != StateUnloaded {
			t.Errorf("%s state = %v, want unloaded", h.Name(), h.State())
		}
	}
	if got := r.Lazy(KindProject); len(got) != 3 || got[1].Name() != "kedro-docker" {
		t.Errorf("Lazy() got %d sources", len(got))
	}
	if got := r.Names(KindProject); !reflect.DeepEqual(got, []string{"kedro-airflow", "kedro-docker", "kedro-viz"}) {
		t.Errorf("Names() got = %v", got)
	}
}

func TestHandle_LoadOnce(t *testing.T) {
	r, logger := newTestRegistry(t)
	var calls int
	if err := r.Register(KindProject, "kedro-viz", groupFactory(&calls, "viz")); err != nil {
		t.Fatal(err)
	}
	h, err := r.Handle(KindProject, "kedro-viz")
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		groups, ok := h.Load(context.Background())
		if !ok || len(groups) != 1 || !hasCommand(groups[0], "viz") {
			t.Fatalf("Load() got = %v, %v", groups, ok)
		}
	}
	if calls != 1 {
		t.Errorf("factory called %d times, want 1", calls)
	}
	if h.State() != StateLoaded {
		t.Errorf("State() got = %v, want loaded", h.State())
	}
	if logger.count("WARN") != 0 {
		t.Errorf("unexpected warnings: %v", logger.records)
	}
}

func TestHandle_FailureIsCaptured(t *testing.T) {
	boom := errors.New("missing dependency")
	tests := []struct {
		name    string
		factory Factory
		wantIs  error
	}{
		{
			name:    "error",
			factory: func(context.Context) ([]cli.Group, error) { return nil, boom },
			wantIs:  boom,
		},
		{
			name:    "panic",
			factory: func(context.Context) ([]cli.Group, error) { panic("import failed") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, logger := newTestRegistry(t)
			calls := 0
			factory := func(ctx context.Context) ([]cli.Group, error) {
				calls++
				return tt.factory(ctx)
			}
			if err := r.Register(KindProject, "kedro-broken", factory); err != nil {
				t.Fatal(err)
			}
			h, _ := r.Handle(KindProject, "kedro-broken")

			for i := 0; i < 2; i++ {
				if groups, ok := h.Load(context.Background()); ok || groups != nil {
					t.Fatalf("Load() got = %v, %v, want failure", groups, ok)
				}
			}
			if calls != 1 {
				t.Errorf("factory called %d times, want 1", calls)
			}
			if h.State() != StateFailed {
				t.Errorf("State() got = %v, want failed", h.State())
			}
			if !IsLoadError(h.Err()) {
				t.Errorf("Err() got = %v, want *LoadError", h.Err())
			}
			if tt.wantIs != nil && !errors.Is(h.Err(), tt.wantIs) {
				t.Errorf("Err() does not wrap %v", tt.wantIs)
			}
			if logger.count("WARN") != 1 {
				t.Errorf("want one warning, got records %v", logger.records)
			}
		})
	}
}

func TestRegistry_LoadAll(t *testing.T) {
	r, logger := newTestRegistry(t)
	var calls int
	if err := r.Register(KindGlobal, "kedro-a", groupFactory(&calls, "a")); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(KindGlobal, "kedro-bad", func(context.Context) ([]cli.Group, error) {
		return nil, errors.New("boom")
	}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(KindGlobal, "kedro-b", groupFactory(&calls, "b")); err != nil {
		t.Fatal(err)
	}

	groups := r.LoadAll(context.Background(), KindGlobal)
	if len(groups) != 2 || !hasCommand(groups[0], "a") || !hasCommand(groups[1], "b") {
		t.Errorf("LoadAll() got %d groups", len(groups))
	}
	if logger.count("WARN") != 1 {
		t.Errorf("want one warning, got %v", logger.records)
	}

	infos := r.List()
	if len(infos) != 3 {
		t.Fatalf("List() got %d plugins", len(infos))
	}
	if infos[1].Name != "kedro-bad" || infos[1].State != StateFailed || infos[1].Err == nil {
		t.Errorf("List()[1] got = %+v", infos[1])
	}
	if infos[0].Ref != BuiltinRef {
		t.Errorf("List()[0].Ref got = %q", infos[0].Ref)
	}

	stats, err := r.Metrics().Get("kedro-bad")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Count != 1 || stats.Failures != 1 {
		t.Errorf("Metrics() got = %+v", stats)
	}
}

func TestRegistry_RegisterPathInvalidObject(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kedro_bad.so")
	if err := os.WriteFile(path, []byte("not an elf file"), 0644); err != nil {
		t.Fatal(err)
	}

	r, logger := newTestRegistry(t)
	if err := r.RegisterPath(KindProject, "kedro-bad", path); err != nil {
		t.Fatal(err)
	}
	h, _ := r.Handle(KindProject, "kedro-bad")
	if h.Ref() != path {
		t.Errorf("Ref() got = %q, want %q", h.Ref(), path)
	}
	if _, ok := h.Load(context.Background()); ok {
		t.Fatal("Load() of an invalid shared object succeeded")
	}
	if !IsLoadError(h.Err()) {
		t.Errorf("Err() got = %v", h.Err())
	}
	if logger.count("WARN") != 1 {
		t.Errorf("want one warning, got %v", logger.records)
	}
}

func TestRegistry_HandleNotFound(t *testing.T) {
	r, _ := newTestRegistry(t)
	if _, err := r.Handle(KindProject, "nope"); !IsPluginNotFoundError(err) {
		t.Errorf("Handle() error = %v, want ErrPluginNotFound", err)
	}
}

func TestNewRegistry_InvalidConfig(t *testing.T) {
	if _, err := NewRegistry(nil); err == nil {
		t.Error("NewRegistry(nil) succeeded")
	}
}
