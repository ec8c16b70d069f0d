package plugin

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestRegistry_Discover(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "global", "kedro-airflow.so"))
	touch(t, filepath.Join(dir, "project", "kedro-viz.so"))
	touch(t, filepath.Join(dir, "project", "kedro-docker.so"))
	touch(t, filepath.Join(dir, "project", "README.md"))
	touch(t, filepath.Join(dir, "vendor", "kedro-x.so"))
	touch(t, filepath.Join(dir, "build", "telemetry.so"))
	manifest := `
[[plugin]]
name = "telemetry"
kind = "hooks"
path = "build/telemetry.so"

[[plugin]]
name = "kedro-viz"
kind = "project"
path = "project/kedro-viz.so"

[[plugin]]
name = "kedro-old"
kind = "project"
path = "project/kedro-old.so"
disabled = true
`
	if err := os.WriteFile(filepath.Join(dir, ManifestName), []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}

	r, _ := newTestRegistry(t)
	if err := r.Discover(dir); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	tests := []struct {
		kind Kind
		want []string
	}{
		{kind: KindGlobal, want: []string{"kedro-airflow"}},
		// manifest entries come first, then the scan in directory order
		{kind: KindProject, want: []string{"kedro-viz", "kedro-docker"}},
		{kind: KindHooks, want: []string{"telemetry"}},
		{kind: KindStarters, want: nil},
	}
	for _, tt := range tests {
		if got := handleNames(r.Groups(tt.kind)); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Groups(%s) got = %v, want %v", tt.kind, got, tt.want)
		}
	}

	h, _ := r.Handle(KindHooks, "telemetry")
	if h.Ref() != filepath.Join(dir, "build", "telemetry.so") {
		t.Errorf("Ref() got = %q", h.Ref())
	}
	for _, info := range r.List() {
		if info.State != StateUnloaded {
			t.Errorf("Discover() loaded %s", info.Name)
		}
	}
}

func TestRegistry_DiscoverMissingDir(t *testing.T) {
	r, _ := newTestRegistry(t)
	if err := r.Discover(filepath.Join(t.TempDir(), "missing")); err != nil {
		t.Errorf("Discover() error = %v", err)
	}
	if err := r.Discover(""); err != nil {
		t.Errorf("Discover(\"\") error = %v", err)
	}
}

func TestReadManifest(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
		want    int
	}{
		{
			name:    "valid",
			content: "[[plugin]]\nname = \"a\"\nkind = \"global\"\npath = \"a.so\"\n",
			want:    1,
		},
		{
			name:    "missing path",
			content: "[[plugin]]\nname = \"a\"\nkind = \"global\"\n",
			wantErr: "has no path",
		},
		{
			name:    "missing name",
			content: "[[plugin]]\nkind = \"global\"\npath = \"a.so\"\n",
			wantErr: "has no name",
		},
		{
			name:    "syntax",
			content: "[[plugin\n",
			wantErr: "failed to parse manifest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ManifestName)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			m, err := ReadManifest(path)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("ReadManifest() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(m.Plugins) != tt.want {
				t.Errorf("ReadManifest() got %d plugins, want %d", len(m.Plugins), tt.want)
			}
		})
	}
}

func TestDiscover_UnknownManifestKind(t *testing.T) {
	dir := t.TempDir()
	content := "[[plugin]]\nname = \"a\"\nkind = \"nope\"\npath = \"a.so\"\n"
	if err := os.WriteFile(filepath.Join(dir, ManifestName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	r, _ := newTestRegistry(t)
	if err := r.Discover(dir); err == nil || !strings.Contains(err.Error(), "unknown plugin kind") {
		t.Errorf("Discover() error = %v", err)
	}
}
