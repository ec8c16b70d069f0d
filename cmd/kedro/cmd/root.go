// Package cmd wires the kedro command surface: built-in commands, plugins
// from the plugin directory and the router that dispatches between them.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/zyanho/kedro-cli/pkg/cli"
	"github.com/zyanho/kedro-cli/pkg/plugin"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=..."
var Version = "0.19.0-dev"

const (
	globalTitle  = "Global commands"
	projectTitle = "Project specific commands"
	pluginTitle  = "Project plugin commands"
)

// App holds what the commands share for one process
type App struct {
	Config   *plugin.Config
	Registry *plugin.Registry
	Logger   plugin.Logger
	Runner   PipelineRunner
	// Go is the go tool used by build-plugin and test
	Go       string
	Out      io.Writer
	Err      io.Writer
}

// LoadConfig reads KEDRO_* environment variables, and anything already set
// on v, into a plugin configuration
func LoadConfig(v *viper.Viper) (*plugin.Config, error) {
	v.SetEnvPrefix("kedro")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	defaults := plugin.DefaultConfig()
	v.SetDefault("plugin_dir", defaultPluginDir())
	v.SetDefault("log_level", "info")
	v.SetDefault("load_timeout", defaults.LoadTimeout)
	v.SetDefault("metrics", defaults.EnableMetrics)

	level, err := plugin.ParseLogLevel(v.GetString("log_level"))
	if err != nil {
		return nil, fmt.Errorf("KEDRO_LOG_LEVEL: %w", err)
	}

	config := &plugin.Config{
		PluginDir:     v.GetString("plugin_dir"),
		LogLevel:      level,
		LoadTimeout:   v.GetDuration("load_timeout"),
		EnableMetrics: v.GetBool("metrics"),
		Disabled:      cli.SplitString(v.GetString("disabled_plugins")),
	}
	if err := plugin.ValidateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func defaultPluginDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "kedro", "plugins")
}

// NewApp loads the configuration and discovers the installed plugins
func NewApp(v *viper.Viper, out, errOut io.Writer) (*App, error) {
	config, err := LoadConfig(v)
	if err != nil {
		return nil, err
	}

	logger := plugin.NewLogger(errOut, config.LogLevel)
	registry, err := plugin.NewRegistry(config, plugin.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := registry.Discover(config.PluginDir); err != nil {
		return nil, fmt.Errorf("failed to discover plugins: %w", err)
	}

	return &App{
		Config:   config,
		Registry: registry,
		Logger:   logger,
		Runner:   &PlanRunner{},
		Go:       "go",
		Out:      out,
		Err:      errOut,
	}, nil
}

// Router builds the command router. Global plugins are loaded now so their
// commands are always listed; project plugins stay lazy until a command
// cannot be found otherwise.
func (a *App) Router(ctx context.Context, opts ...cli.RouterOption) *cli.Router {
	global := append([]cli.Group{a.globalCommands()}, a.Registry.LoadAll(ctx, plugin.KindGlobal)...)
	project := []cli.Group{a.projectCommands()}

	sections := []cli.Section{
		{Title: globalTitle, Groups: global},
		{Title: projectTitle, Groups: project},
	}

	opts = append([]cli.RouterOption{
		cli.WithName("kedro"),
		cli.WithVersion(Version),
		cli.WithOutput(a.Out, a.Err),
		cli.WithPluginTitle(pluginTitle),
		cli.WithLogger(a.Logger),
	}, opts...)
	return cli.NewRouter(sections, a.Registry.Lazy(plugin.KindProject), opts...)
}

func (a *App) globalCommands() cli.Group {
	return cli.NewGroup("kedro", "Kedro is a CLI for creating and using Kedro projects.",
		a.infoCommand(),
		a.buildCommand(),
		a.watchCommand(),
	)
}

func (a *App) projectCommands() cli.Group {
	return cli.NewGroup("project", "Project specific commands.",
		a.runCommand(),
		a.testCommand(),
	)
}

// Execute runs the kedro CLI with the process arguments and returns the exit code
func Execute() int {
	ctx := context.Background()
	app, err := NewApp(viper.New(), os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return app.Router(ctx).Invoke(ctx, os.Args[1:])
}
