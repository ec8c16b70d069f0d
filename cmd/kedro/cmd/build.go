package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"
	"github.com/zyanho/kedro-cli/pkg/cli"
	"github.com/zyanho/kedro-cli/pkg/plugin"
)

// hostModule is the module plugins import their command types from. A
// plugin must be built against the same version as the host binary.
const hostModule = "github.com/zyanho/kedro-cli"

func (a *App) buildCommand() cli.Command {
	return cli.Command{
		Name: "build-plugin",
		Help: "Build a plugin directory into a shared object.\n\n" +
			"The plugin package must export Commands, a func() []cli.Group.",
		Args: cobra.ExactArgs(1),
		Params: []cli.Param{
			{Name: "output", Short: "o", Help: "Output file path. Defaults to <dir>/<dir name>.so."},
			{Name: "kind", Short: "k", Help: "Install the plugin into this kind of the plugin directory, e.g. global or project."},
			{Name: "build_args", Help: "Extra arguments passed to go build, e.g. \"-tags 'a b' -trimpath\"."},
		},
		Run: a.runBuild,
	}
}

// runBuild handles the plugin build process
func (a *App) runBuild(ctx context.Context, inv *cli.Invocation) error {
	pluginDir := inv.Args[0]

	if err := validatePluginDir(pluginDir); err != nil {
		return err
	}

	if requirement, err := cli.PkgVersion(filepath.Join(pluginDir, "go.mod"), hostModule); err == nil {
		a.Logger.Debug("Plugin host requirement", "requirement", requirement)
	} else {
		a.Logger.Warn("Plugin does not require the host module", "module", hostModule)
	}

	output, err := a.outputPath(pluginDir, inv.String("output"), inv.String("kind"))
	if err != nil {
		return err
	}

	extra, err := shellwords.Parse(inv.String("build_args"))
	if err != nil {
		return &cli.UsageError{Message: fmt.Sprintf("Invalid --build-args: %v", err)}
	}

	argv := []string{a.Go, "build", "-buildmode=plugin", "-o", output}
	argv = append(argv, extra...)
	argv = append(argv, ".")
	if err := cli.Call(ctx, inv.Out, argv, cli.WithDir(pluginDir), cli.WithStderr(inv.Err), cli.WithEnv("CGO_ENABLED=1")); err != nil {
		return err
	}

	fmt.Fprintf(inv.Out, "Plugin built: %s\n", output)
	return nil
}

// validatePluginDir checks if the plugin directory is valid
func validatePluginDir(dir string) error {
	if _, err := os.Stat(dir); err != nil {
		return &cli.CliError{Message: fmt.Sprintf("Plugin directory not found: %s", dir), Err: err}
	}

	if _, err := os.Stat(filepath.Join(dir, "go.mod")); err != nil {
		return &cli.CliError{Message: fmt.Sprintf("go.mod not found in plugin directory %s", dir), Err: err}
	}

	return nil
}

// outputPath resolves where the shared object is written. With a kind the
// plugin is installed straight into the plugin directory.
func (a *App) outputPath(dir, output, kind string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	name := filepath.Base(abs) + ".so"

	if output != "" {
		return filepath.Abs(output)
	}
	if kind == "" {
		return filepath.Join(abs, name), nil
	}

	k, err := plugin.ParseKind(kind)
	if err != nil {
		return "", &cli.UsageError{Message: err.Error()}
	}
	if a.Config.PluginDir == "" {
		return "", &cli.CliError{Message: "No plugin directory configured. Set KEDRO_PLUGIN_DIR."}
	}
	target := filepath.Join(a.Config.PluginDir, string(k))
	if err := os.MkdirAll(target, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return filepath.Join(target, name), nil
}
