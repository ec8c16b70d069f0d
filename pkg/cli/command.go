package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

// ParamKind is the value type of a command parameter
type ParamKind int

const (
	String ParamKind = iota
	Bool
	Int
	Float
	StringList
)

// Param declares a single command option.
//
// Name is the underscore form used for config file keys and Invocation
// values ("load_versions"); the flag is the dashed form ("--load-versions").
type Param struct {
	Name    string
	Short   string
	Help    string
	Kind    ParamKind
	Default any
	// Parse converts a raw string value, from the command line or a config
	// file, into its final form. Non-string config values bypass it.
	Parse func(string) (any, error)
}

// FlagName returns the command line spelling of the parameter
func (p Param) FlagName() string {
	return strings.ReplaceAll(p.Name, "_", "-")
}

// RunFunc is the handler of a command
type RunFunc func(ctx context.Context, inv *Invocation) error

// Command is an immutable, invocable leaf of the command surface
type Command struct {
	Name   string
	Help   string
	Params []Param
	// Args validates positional arguments, nil accepts anything
	Args cobra.PositionalArgs
	// ConfigFile adds a --config option whose file section named after the
	// command supplies parameter defaults
	ConfigFile bool
	// Forward passes the raw arguments to Run unparsed, options included, for
	// commands wrapping another tool. Params are ignored. Unless ForwardHelp
	// is set, -h and --help still show the command help.
	Forward     bool
	ForwardHelp bool
	Run         RunFunc
}

// ParamNames returns the declared parameter names in order
func (c Command) ParamNames() []string {
	names := make([]string, 0, len(c.Params))
	for _, p := range c.Params {
		names = append(names, p.Name)
	}
	return names
}

func (c Command) short() string {
	line, _, _ := strings.Cut(strings.TrimSpace(c.Help), "\n")
	return line
}

// CallbackFunc runs before any command of the group it belongs to
type CallbackFunc func(ctx context.Context, inv *Invocation) error

// Group is a named, ordered mapping of command names to commands.
// Groups are values: every transformation returns a new Group.
type Group struct {
	Name     string
	Help     string
	Callback CallbackFunc
	Params   []Param

	names    []string
	commands map[string]Command
}

// NewGroup creates a group. A command whose name was already added replaces
// the earlier one and keeps its position.
func NewGroup(name, help string, cmds ...Command) Group {
	g := Group{
		Name:     name,
		Help:     help,
		commands: make(map[string]Command, len(cmds)),
	}
	for _, c := range cmds {
		if _, exists := g.commands[c.Name]; !exists {
			g.names = append(g.names, c.Name)
		}
		g.commands[c.Name] = c
	}
	return g
}

// WithCallback returns a copy of g carrying a group level callback and
// the parameters it consumes
func (g Group) WithCallback(fn CallbackFunc, params ...Param) Group {
	g.Callback = fn
	g.Params = append([]Param(nil), params...)
	return g
}

// Names returns the command names in insertion order
func (g Group) Names() []string {
	return append([]string(nil), g.names...)
}

// Commands returns the commands in insertion order
func (g Group) Commands() []Command {
	cmds := make([]Command, 0, len(g.names))
	for _, name := range g.names {
		cmds = append(cmds, g.commands[name])
	}
	return cmds
}

// Command looks up a command by exact name
func (g Group) Command(name string) (Command, bool) {
	c, ok := g.commands[name]
	return c, ok
}

// Len returns the number of commands in the group
func (g Group) Len() int {
	return len(g.names)
}

// without returns a copy of g minus every command named in claimed
func (g Group) without(claimed map[string]bool) Group {
	out := g
	out.names = nil
	out.commands = make(map[string]Command, len(g.names))
	for _, name := range g.names {
		if claimed[name] {
			continue
		}
		out.names = append(out.names, name)
		out.commands[name] = g.commands[name]
	}
	return out
}
