package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/zyanho/kedro-cli/pkg/cli"
	"gopkg.in/yaml.v3"
)

// RunOptions selects what part of a pipeline runs and how
type RunOptions struct {
	Env          string            `yaml:"env,omitempty"`
	Pipeline     string            `yaml:"pipeline,omitempty"`
	Runner       string            `yaml:"runner,omitempty"`
	Async        bool              `yaml:"async,omitempty"`
	Namespace    string            `yaml:"namespace,omitempty"`
	ConfSource   string            `yaml:"conf_source,omitempty"`
	Nodes        []string          `yaml:"nodes,omitempty"`
	Tags         []string          `yaml:"tags,omitempty"`
	FromNodes    []string          `yaml:"from_nodes,omitempty"`
	ToNodes      []string          `yaml:"to_nodes,omitempty"`
	FromInputs   []string          `yaml:"from_inputs,omitempty"`
	ToOutputs    []string          `yaml:"to_outputs,omitempty"`
	LoadVersions map[string]string `yaml:"load_versions,omitempty"`
	Params       map[string]any    `yaml:"params,omitempty"`
}

// PipelineRunner executes a pipeline run
type PipelineRunner interface {
	Run(ctx context.Context, w io.Writer, opts RunOptions) error
}

// PlanRunner writes the resolved run plan as YAML instead of executing it
type PlanRunner struct{}

func (PlanRunner) Run(ctx context.Context, w io.Writer, opts RunOptions) error {
	out, err := yaml.Marshal(opts)
	if err != nil {
		return fmt.Errorf("failed to encode run plan: %w", err)
	}
	fmt.Fprintf(w, "Running pipeline '%s'\n%s", pipelineName(opts.Pipeline), out)
	return nil
}

func pipelineName(name string) string {
	if name == "" {
		return "__default__"
	}
	return name
}

func (a *App) runCommand() cli.Command {
	return cli.Command{
		Name:       "run",
		Help:       "Run the pipeline.",
		Args:       cobra.NoArgs,
		ConfigFile: true,
		Params: []cli.Param{
			{Name: "from_inputs", Help: "A list of dataset names which should be used as a starting point.", Parse: cli.ParseList},
			{Name: "to_outputs", Help: "A list of dataset names which should be used as an end point.", Parse: cli.ParseList},
			{Name: "from_nodes", Help: "A list of node names which should be used as a starting point.", Parse: cli.ParseNodeNames},
			{Name: "to_nodes", Help: "A list of node names which should be used as an end point.", Parse: cli.ParseNodeNames},
			{Name: "nodes", Short: "n", Help: "Run only nodes with specified names.", Parse: cli.ParseNodeNames},
			{Name: "runner", Short: "r", Help: "Specify a runner that you want to run the pipeline with."},
			{Name: "async", Kind: cli.Bool, Help: "Load and save node inputs and outputs asynchronously with threads."},
			{Name: "env", Short: "e", Help: "Kedro configuration environment name. Defaults to `local`."},
			{Name: "tags", Short: "t", Help: "Construct the pipeline using only nodes which have this tag attached.", Parse: cli.ParseList},
			{Name: "load_versions", Help: "Specify a particular dataset version (timestamp) for loading.", Parse: cli.ParseLoadVersions},
			{Name: "pipeline", Short: "p", Help: "Name of the registered pipeline to run. If not set, the '__default__' pipeline is run."},
			{Name: "namespace", Help: "Name of the node namespace to run."},
			{Name: "conf_source", Help: "Path of a directory where project configuration is stored."},
			{Name: "params", Help: "Specify extra parameters that you want to pass to the context initialiser. Items must be separated by comma, keys by colon or equals sign.", Parse: cli.ParseParams},
		},
		Run: a.runPipeline,
	}
}

func (a *App) runPipeline(ctx context.Context, inv *cli.Invocation) error {
	opts := RunOptions{
		Env:          inv.String("env"),
		Pipeline:     inv.String("pipeline"),
		Runner:       inv.String("runner"),
		Async:        inv.Bool("async"),
		Namespace:    inv.String("namespace"),
		ConfSource:   inv.String("conf_source"),
		Nodes:        inv.Strings("nodes"),
		Tags:         inv.Strings("tags"),
		FromNodes:    inv.Strings("from_nodes"),
		ToNodes:      inv.Strings("to_nodes"),
		FromInputs:   inv.Strings("from_inputs"),
		ToOutputs:    inv.Strings("to_outputs"),
		LoadVersions: inv.StringMap("load_versions"),
		Params:       inv.Map("params"),
	}
	if err := a.Runner.Run(ctx, inv.Out, opts); err != nil {
		return &cli.CliError{Message: fmt.Sprintf("Pipeline run failed: %v", err), Err: err}
	}
	return nil
}
