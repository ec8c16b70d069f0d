package plugin

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type watchEvent struct {
	kind Kind
	path string
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "project"), 0755); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan watchEvent, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, &recordLogger{}, func(kind Kind, path string) {
			events <- watchEvent{kind, path}
		})
	}()

	// give the watcher time to register its directories
	time.Sleep(100 * time.Millisecond)

	touch(t, filepath.Join(dir, "project", "notes.txt"))
	want := filepath.Join(dir, "project", "kedro-viz.so")
	touch(t, want)

	select {
	case ev := <-events:
		if ev.kind != KindProject || ev.path != want {
			t.Errorf("Watch() reported %+v, want %s in project", ev, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch() did not report the new plugin")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch() did not stop after cancel")
	}
}

func TestWatch_MissingDir(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing"), &recordLogger{}, func(Kind, string) {})
	if err == nil {
		t.Error("Watch() of a missing directory succeeded")
	}
}
