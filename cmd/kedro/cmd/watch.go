package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/zyanho/kedro-cli/pkg/cli"
	"github.com/zyanho/kedro-cli/pkg/plugin"
	"golang.org/x/sync/errgroup"
)

type discovered struct {
	kind plugin.Kind
	path string
	// err is the load failure of a registered plugin
	err error
}

func (a *App) watchCommand() cli.Command {
	return cli.Command{
		Name: "watch-plugins",
		Help: "Watch the plugin directory and load plugins as they are installed.",
		Params: []cli.Param{
			{Name: "dir", Short: "d", Help: "Plugin directory to watch. Defaults to KEDRO_PLUGIN_DIR."},
		},
		Run: a.runWatch,
	}
}

// runWatch blocks until interrupted, loading every new shared object
func (a *App) runWatch(ctx context.Context, inv *cli.Invocation) error {
	dir := inv.String("dir")
	if dir == "" {
		dir = a.Config.PluginDir
	}
	if dir == "" {
		return &cli.CliError{Message: "No plugin directory configured. Set KEDRO_PLUGIN_DIR or pass --dir."}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create plugin directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(inv.Out, "Watching %s for plugins\n", dir)
	return a.watch(ctx, dir, func(d discovered) {
		if d.err != nil {
			fmt.Fprintf(inv.Out, "Failed to load %s plugin %s: %v\n", d.kind, filepath.Base(d.path), d.err)
			return
		}
		fmt.Fprintf(inv.Out, "Loaded %s plugin %s\n", d.kind, filepath.Base(d.path))
	})
}

// watch runs the directory watcher and the registration loop until ctx is
// done or either fails. Each new plugin is registered and loaded at once so
// a broken build shows up while watching.
func (a *App) watch(ctx context.Context, dir string, onRegister func(discovered)) error {
	eg, ctx := errgroup.WithContext(ctx)
	found := make(chan discovered)

	eg.Go(func() error {
		defer close(found)
		return plugin.Watch(ctx, dir, a.Logger, func(kind plugin.Kind, path string) {
			select {
			case found <- discovered{kind: kind, path: path}:
			case <-ctx.Done():
			}
		})
	})

	eg.Go(func() error {
		for d := range found {
			name := strings.TrimSuffix(filepath.Base(d.path), filepath.Ext(d.path))
			if err := a.Registry.RegisterPath(d.kind, name, d.path); err != nil {
				if plugin.IsPluginExistsError(err) {
					a.Logger.Debug("Plugin already registered", "plugin", name)
					continue
				}
				return err
			}
			h, err := a.Registry.Handle(d.kind, name)
			if err != nil {
				// disabled in the configuration
				a.Logger.Debug("Plugin not registered", "plugin", name, "error", err)
				continue
			}
			if _, ok := h.Load(ctx); !ok {
				d.err = h.Err()
			}
			onRegister(d)
		}
		return nil
	})

	return eg.Wait()
}
