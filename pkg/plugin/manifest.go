package plugin

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ManifestName is the optional manifest file inside a plugin directory
const ManifestName = "plugins.toml"

// Manifest lists shared object plugins explicitly, in load order:
//
//	[[plugin]]
//	name = "kedro-viz"
//	kind = "project"
//	path = "viz/kedro_viz.so"
type Manifest struct {
	Plugins []ManifestEntry `toml:"plugin"`
}

// ManifestEntry is one [[plugin]] table. Relative paths are resolved
// against the plugin directory.
type ManifestEntry struct {
	Name     string `toml:"name"`
	Kind     string `toml:"kind"`
	Path     string `toml:"path"`
	Disabled bool   `toml:"disabled"`
}

// ReadManifest parses the manifest at path. A missing file is an empty manifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	for i, entry := range m.Plugins {
		if entry.Name == "" {
			return nil, fmt.Errorf("manifest %s: plugin #%d has no name", path, i+1)
		}
		if entry.Path == "" {
			return nil, fmt.Errorf("manifest %s: plugin %s has no path", path, entry.Name)
		}
	}
	return &m, nil
}
