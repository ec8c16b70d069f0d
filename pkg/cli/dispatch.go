package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const verboseFlag = "verbose"

// Invoke runs argv and returns the process exit code. Errors are rendered
// to the router's error output.
func (r *Router) Invoke(ctx context.Context, argv []string) int {
	run, err := r.execute(ctx, argv)
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if IsUsageError(err) {
		fmt.Fprintf(r.errOut, "Usage: %s [OPTIONS] COMMAND [ARGS]...\nTry '%s -h' for help.\n\nError: %s\n", r.name, r.name, err)
	} else {
		r.renderer.RenderError(r.errOut, err, run)
	}
	return ExitCode(err)
}

// Execute runs argv and returns the error of the dispatched command
func (r *Router) Execute(ctx context.Context, argv []string) error {
	_, err := r.execute(ctx, argv)
	return err
}

func (r *Router) execute(ctx context.Context, argv []string) (RunConfig, error) {
	var run RunConfig

	if len(argv) > 0 && !strings.HasPrefix(argv[0], "-") {
		name := argv[0]
		if !r.has(name) {
			r.loadPlugins(ctx, name)
		}
		resolved, err := r.resolve(name)
		if err != nil {
			return run, err
		}
		argv = append([]string{resolved}, argv[1:]...)
	}

	root := r.command()
	root.SetArgs(argv)
	executed, err := root.ExecuteContextC(ctx)
	if executed != nil {
		if f := executed.Flags().Lookup(verboseFlag); f != nil {
			run.Verbose = f.Value.String() == "true"
		}
	}
	return run, err
}

// command builds the cobra tree for the current set of sources
func (r *Router) command() *cobra.Command {
	root := &cobra.Command{
		Use:                r.name,
		Long:               r.help,
		Version:            r.version,
		SilenceErrors:      true,
		SilenceUsage:       true,
		DisableSuggestions: true,
		CompletionOptions:  cobra.CompletionOptions{DisableDefaultCmd: true},
	}
	root.SetOut(r.out)
	root.SetErr(r.errOut)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Message: err.Error()}
	})

	defaultHelp := root.HelpFunc()
	root.SetHelpFunc(func(c *cobra.Command, args []string) {
		if c.HasParent() {
			defaultHelp(c, args)
			return
		}
		r.WriteHelp(c.OutOrStdout())
	})

	if r.hasRoot {
		src := r.root
		for _, p := range src.Params {
			r.addFlag(root.PersistentFlags(), nil, r.name, p)
		}
		if src.Callback != nil {
			root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
				values, err := collect(src.Params, cmd.Flags(), nil)
				if err != nil {
					return err
				}
				return src.Callback(cmd.Context(), &Invocation{
					Command: cmd.Name(),
					Args:    args,
					Values:  values,
					Out:     cmd.OutOrStdout(),
					Err:     cmd.ErrOrStderr(),
				})
			}
		}
	}

	for _, src := range r.sources() {
		for _, c := range src.Commands() {
			root.AddCommand(r.subcommand(c, root.PersistentFlags()))
		}
	}
	return root
}

// subcommand builds the cobra command for c. inherited holds the root's
// persistent flags, whose names and shorthands c cannot reuse.
func (r *Router) subcommand(c Command, inherited *pflag.FlagSet) *cobra.Command {
	cc := &cobra.Command{
		Use:                c.Name,
		Short:              c.short(),
		Long:               c.Help,
		DisableFlagParsing: c.Forward,
	}
	if c.Args != nil {
		cc.Args = func(cmd *cobra.Command, args []string) error {
			if err := c.Args(cmd, args); err != nil {
				return &UsageError{Message: err.Error()}
			}
			return nil
		}
	}

	flags := cc.Flags()
	r.addFlag(flags, inherited, c.Name, Param{Name: verboseFlag, Short: "v", Kind: Bool,
		Help: "See extensive logging and error stack traces."})
	if c.Forward {
		cc.RunE = func(cmd *cobra.Command, args []string) error {
			if !c.ForwardHelp && wantsHelp(args) {
				return cmd.Help()
			}
			return r.run(cmd, c, args, nil)
		}
		return cc
	}

	if c.ConfigFile {
		r.addFlag(flags, inherited, c.Name, Param{Name: ConfigParam,
			Help: "Specify a YAML configuration file to load the command arguments from. " +
				"If command line arguments are provided, they will override the loaded ones."})
	}
	for _, p := range c.Params {
		if p.Name == verboseFlag || p.Name == ConfigParam {
			continue
		}
		r.addFlag(flags, inherited, c.Name, p)
	}

	cc.RunE = func(cmd *cobra.Command, args []string) error {
		var defaults map[string]any
		if c.ConfigFile {
			if path, _ := cmd.Flags().GetString(ConfigParam); path != "" {
				var err error
				if defaults, err = ApplyConfigDefaults(c, path); err != nil {
					return err
				}
			}
		}

		values, err := collect(c.Params, cmd.Flags(), defaults)
		if err != nil {
			return err
		}
		return r.run(cmd, c, args, values)
	}
	return cc
}

func (r *Router) run(cmd *cobra.Command, c Command, args []string, values map[string]any) error {
	if c.Run == nil {
		return cmd.Help()
	}
	if values == nil {
		values = make(map[string]any)
	}
	return c.Run(cmd.Context(), &Invocation{
		Command: c.Name,
		Args:    args,
		Values:  values,
		Out:     cmd.OutOrStdout(),
		Err:     cmd.ErrOrStderr(),
	})
}

func wantsHelp(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "-h" || a == "--help" {
			return true
		}
	}
	return false
}

// addFlag registers p on flags. A flag name already taken on flags or
// inherited skips p; a taken shorthand is dropped. Both are reported.
func (r *Router) addFlag(flags, inherited *pflag.FlagSet, owner string, p Param) {
	name := p.FlagName()
	if lookup(flags, inherited, name) {
		r.logger.Warn("Option already defined, skipping it", "command", owner, "option", "--"+name)
		return
	}

	short := p.Short
	if len(short) != 1 {
		short = ""
	}
	if short != "" && shorthandTaken(flags, inherited, short) {
		r.logger.Warn("Option shorthand already defined, dropping it", "command", owner, "option", "--"+name, "shorthand", "-"+short)
		short = ""
	}

	switch p.Kind {
	case Bool:
		flags.BoolP(name, short, toBool(p.Default), p.Help)
	case Int:
		flags.IntP(name, short, toInt(p.Default), p.Help)
	case Float:
		flags.Float64P(name, short, toFloat(p.Default), p.Help)
	case StringList:
		flags.StringSliceP(name, short, toStrings(p.Default), p.Help)
	default:
		flags.StringP(name, short, toString(p.Default), p.Help)
	}
}

func lookup(flags, inherited *pflag.FlagSet, name string) bool {
	if flags.Lookup(name) != nil {
		return true
	}
	return inherited != nil && inherited.Lookup(name) != nil
}

func shorthandTaken(flags, inherited *pflag.FlagSet, short string) bool {
	// "h" is reserved for --help, which cobra adds later
	if short == "h" || flags.ShorthandLookup(short) != nil {
		return true
	}
	return inherited != nil && inherited.ShorthandLookup(short) != nil
}

// collect resolves parameter values: an option given on the command line,
// else a config file default, else the declared default
func collect(params []Param, flags *pflag.FlagSet, defaults map[string]any) (map[string]any, error) {
	values := make(map[string]any, len(params))
	for _, p := range params {
		f := flags.Lookup(p.FlagName())
		if f == nil {
			continue
		}

		var v any
		if d, ok := defaults[p.Name]; ok && !f.Changed {
			v = d
		} else {
			v = flagValue(flags, p)
		}

		if s, ok := v.(string); ok && p.Parse != nil {
			parsed, err := p.Parse(s)
			if err != nil {
				return nil, &UsageError{Message: err.Error()}
			}
			v = parsed
		}
		values[p.Name] = v
	}
	return values, nil
}

func flagValue(flags *pflag.FlagSet, p Param) any {
	name := p.FlagName()
	switch p.Kind {
	case Bool:
		v, _ := flags.GetBool(name)
		return v
	case Int:
		v, _ := flags.GetInt(name)
		return v
	case Float:
		v, _ := flags.GetFloat64(name)
		return v
	case StringList:
		v, _ := flags.GetStringSlice(name)
		return v
	default:
		v, _ := flags.GetString(name)
		return v
	}
}
