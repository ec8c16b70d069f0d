package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zyanho/kedro-cli/pkg/cli"
	"github.com/zyanho/kedro-cli/pkg/plugin"
)

func (a *App) infoCommand() cli.Command {
	return cli.Command{
		Name: "info",
		Help: "Get more information about kedro.",
		Run:  a.runInfo,
	}
}

// runInfo prints the version and the state of every registered plugin
func (a *App) runInfo(ctx context.Context, inv *cli.Invocation) error {
	fmt.Fprintf(inv.Out, "kedro %s\n", Version)

	plugins := a.Registry.List()
	if len(plugins) == 0 {
		fmt.Fprintln(inv.Out, "No plugins installed")
		return nil
	}

	fmt.Fprintln(inv.Out, "Installed plugins:")
	for _, p := range plugins {
		fmt.Fprintf(inv.Out, "  %s: %s\n", cli.CmdStyle.Render(p.Name), describe(p, a.Registry.Metrics()))
	}
	return nil
}

func describe(p plugin.PluginInfo, metrics *plugin.Metrics) string {
	var parts []string
	if p.Version != "" {
		parts = append(parts, p.Version)
	}
	parts = append(parts, string(p.Kind), p.State.String())
	if stats, err := metrics.Get(p.Name); err == nil && stats.Count > 0 {
		parts = append(parts, fmt.Sprintf("load took %s", stats.TotalTime.Round(time.Microsecond)))
	}
	if p.Err != nil {
		parts = append(parts, p.Err.Error())
	}
	return strings.Join(parts, ", ")
}
