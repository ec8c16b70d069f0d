package cli

import (
	"context"
	"io"
	"os"
	"sort"
	"strings"
)

// DefaultPluginTitle heads the help section of lazily loaded plugin commands
const DefaultPluginTitle = "Plugin commands"

// LazySource is a plugin contribution that is only materialized on demand.
// Load is called at most once per source; failures are reported by the
// implementation and surface here as ok == false.
type LazySource interface {
	Name() string
	Load(ctx context.Context) (groups []Group, ok bool)
}

// Logger receives warnings about commands that could only be added in part
type Logger interface {
	Warn(msg string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Warn(string, ...interface{}) {}

type section struct {
	title   string
	sources []Source
}

// Router merges command groups from several sections and lazy plugins into
// one command surface and dispatches invocations to it.
//
// A Router is not safe for concurrent use.
type Router struct {
	name        string
	version     string
	pluginTitle string
	prefix      bool
	out         io.Writer
	errOut      io.Writer
	renderer    ErrorRenderer
	logger      Logger

	help     string
	root     Source
	hasRoot  bool
	sections []section
	pending  []LazySource
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithName sets the program name used in usage lines
func WithName(name string) RouterOption {
	return func(r *Router) {
		r.name = name
	}
}

// WithVersion enables the --version flag
func WithVersion(version string) RouterOption {
	return func(r *Router) {
		r.version = version
	}
}

// WithPluginTitle sets the help title of lazily loaded plugin commands
func WithPluginTitle(title string) RouterOption {
	return func(r *Router) {
		r.pluginTitle = title
	}
}

// WithPrefixMatching lets a unique prefix select a command
func WithPrefixMatching(enabled bool) RouterOption {
	return func(r *Router) {
		r.prefix = enabled
	}
}

// WithOutput sets the writers for regular and error output
func WithOutput(out, errOut io.Writer) RouterOption {
	return func(r *Router) {
		if out != nil {
			r.out = out
		}
		if errOut != nil {
			r.errOut = errOut
		}
	}
}

// WithLogger reports option conflicts between commands
func WithLogger(logger Logger) RouterOption {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRouter builds a router from titled sections, lowest priority first,
// and plugins that stay unloaded until a command lookup needs them.
func NewRouter(sections []Section, lazy []LazySource, opts ...RouterOption) *Router {
	r := &Router{
		name:        "kedro",
		pluginTitle: DefaultPluginTitle,
		out:         os.Stdout,
		errOut:      os.Stderr,
		logger:      nopLogger{},
		pending:     append([]LazySource(nil), lazy...),
	}
	for _, opt := range opts {
		opt(r)
	}

	var helps []string
	for _, s := range sections {
		r.sections = append(r.sections, section{title: s.Title, sources: Merge(s.Groups)})
		for _, g := range s.Groups {
			if g.Help != "" {
				helps = append(helps, g.Help)
			}
		}
	}
	r.help = strings.Join(helps, "\n\n")
	r.dedupe()

	if all := r.sources(); len(all) > 0 {
		r.root = all[0]
		r.hasRoot = true
	}
	return r
}

// ListCommands returns the sorted names of every eagerly available command.
// Plugins that were not loaded yet are not included.
func (r *Router) ListCommands() []string {
	var names []string
	for _, src := range r.sources() {
		for _, c := range src.Commands() {
			names = append(names, c.Name)
		}
	}
	sort.Strings(names)
	return names
}

// Pending returns the names of plugins that have not been loaded yet
func (r *Router) Pending() []string {
	names := make([]string, 0, len(r.pending))
	for _, p := range r.pending {
		names = append(names, p.Name())
	}
	return names
}

func (r *Router) has(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

func (r *Router) lookup(name string) (Command, bool) {
	for _, src := range r.sources() {
		if c, ok := src.Command(name); ok {
			return c, true
		}
	}
	return Command{}, false
}

func (r *Router) sources() []Source {
	var all []Source
	for _, s := range r.sections {
		all = append(all, s.sources...)
	}
	return all
}

// dedupe runs Dedupe over every section at once and writes the result back
func (r *Router) dedupe() {
	deduped := Dedupe(r.sources())
	i := 0
	for s := range r.sections {
		n := len(r.sections[s].sources)
		r.sections[s].sources = deduped[i : i+n]
		i += n
	}
}

// loadPlugins tries to make name resolvable. A plugin whose name contains
// name is tried first; if that does not provide the command every other
// pending plugin is loaded in order until one does.
func (r *Router) loadPlugins(ctx context.Context, name string) {
	if i := r.partialMatch(name); i >= 0 {
		r.load(ctx, i)
		if r.has(name) {
			return
		}
	}

	for len(r.pending) > 0 {
		if r.has(name) {
			return
		}
		r.load(ctx, 0)
	}
}

// partialMatch returns the first pending plugin whose name contains name.
// Failing that, the first plugin with a name segment of at least three
// characters contained in name, so "docker-build" picks "kedro-docker".
func (r *Router) partialMatch(name string) int {
	for i, p := range r.pending {
		if strings.Contains(p.Name(), name) {
			return i
		}
	}
	for i, p := range r.pending {
		for _, seg := range strings.FieldsFunc(p.Name(), isSeparator) {
			if len(seg) >= 3 && strings.Contains(name, seg) {
				return i
			}
		}
	}
	return -1
}

func isSeparator(r rune) bool {
	return r == '-' || r == '_' || r == '.'
}

// load removes the i-th pending plugin and adds what it provides
func (r *Router) load(ctx context.Context, i int) {
	p := r.pending[i]
	r.pending = append(r.pending[:i:i], r.pending[i+1:]...)

	groups, ok := p.Load(ctx)
	if !ok || len(groups) == 0 {
		return
	}
	r.addSource(groups)
}

// addSource merges plugin groups into the plugin section, which ranks below
// every eager section, and dedupes again
func (r *Router) addSource(groups []Group) {
	if len(r.sections) == 0 || r.sections[0].title != r.pluginTitle {
		r.sections = append([]section{{title: r.pluginTitle}}, r.sections...)
	}
	r.sections[0].sources = append(r.sections[0].sources, Merge(groups)...)
	r.dedupe()
}

// resolve maps a typed name to a command name: an exact match, or a unique
// prefix when prefix matching is on
func (r *Router) resolve(name string) (string, error) {
	if r.has(name) {
		return name, nil
	}

	names := r.ListCommands()
	if r.prefix {
		var matches []string
		for _, n := range names {
			if strings.HasPrefix(n, name) {
				matches = append(matches, n)
			}
		}
		switch len(matches) {
		case 1:
			return matches[0], nil
		case 0:
		default:
			return "", &UnknownCommandError{Name: name, Ambiguous: matches}
		}
	}
	return "", &UnknownCommandError{Name: name, Suggestion: Suggest(name, names)}
}
