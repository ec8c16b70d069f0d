package cmd

import (
	"context"

	"github.com/zyanho/kedro-cli/pkg/cli"
)

func (a *App) testCommand() cli.Command {
	return cli.Command{
		Name: "test",
		Help: "Run the project tests.\n\n" +
			"Arguments are passed to go test unchanged, e.g. kedro test -run TestPipeline -v ./...",
		Forward: true,
		Run:     a.runTest,
	}
}

func (a *App) runTest(ctx context.Context, inv *cli.Invocation) error {
	args := inv.Args
	if len(args) == 0 {
		args = []string{"./..."}
	}
	argv := append([]string{a.Go, "test"}, args...)
	return cli.Call(ctx, inv.Out, argv, cli.WithStderr(inv.Err))
}
