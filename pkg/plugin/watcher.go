package plugin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reports shared objects created under dir or its kind
// subdirectories until ctx is done. Kind directories created while
// watching are added as they appear.
func Watch(ctx context.Context, dir string, logger Logger, fn func(kind Kind, path string)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic in Watch", "error", r)
			err = fmt.Errorf("panic in watcher: %v", r)
		}
	}()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}
	for _, kind := range Kinds {
		sub := filepath.Join(dir, string(kind))
		if info, err := os.Stat(sub); err == nil && info.IsDir() {
			if err := watcher.Add(sub); err != nil {
				return fmt.Errorf("failed to watch directory: %w", err)
			}
		}
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			handleEvent(watcher, dir, event.Name, logger, fn)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("Watcher error", "error", err)
		case <-ctx.Done():
			return nil
		}
	}
}

func handleEvent(watcher *fsnotify.Watcher, dir, path string, logger Logger, fn func(Kind, string)) {
	parent := filepath.Dir(path)
	if parent == filepath.Clean(dir) {
		kind, err := ParseKind(filepath.Base(path))
		if err != nil {
			return
		}
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := watcher.Add(path); err != nil {
				logger.Error("Failed to watch directory", "path", path, "error", err)
			}
			logger.Debug("Watching plugin kind", "kind", kind)
		}
		return
	}

	if filepath.Ext(path) != ".so" || filepath.Dir(parent) != filepath.Clean(dir) {
		return
	}
	kind, err := ParseKind(filepath.Base(parent))
	if err != nil {
		return
	}
	logger.Info("New plugin", "kind", kind, "path", path)
	fn(kind, path)
}
