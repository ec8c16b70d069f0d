package plugin

import (
	"context"
	"fmt"
	"plugin"
	"sync"
	"time"

	"github.com/zyanho/kedro-cli/pkg/cli"
)

const (
	// CommandsSymbol is the exported symbol a shared object plugin provides:
	// either func() []cli.Group or a []cli.Group variable
	CommandsSymbol = "Commands"
	// VersionSymbol is optional: a string variable or func() string
	VersionSymbol = "Version"
)

// Symbols are the resolved exports of a shared object plugin
type Symbols struct {
	Commands func() []cli.Group
	Version  string
}

// Loader opens Go shared object plugins built with -buildmode=plugin
type Loader struct {
	timeout time.Duration
	cache   sync.Map // map[string]*Symbols
	logger  Logger
}

// NewLoader creates a new plugin loader
func NewLoader(timeout time.Duration, logger Logger) *Loader {
	return &Loader{
		timeout: timeout,
		logger:  logger,
	}
}

// Open loads the plugin at path and resolves its symbols
func (l *Loader) Open(ctx context.Context, path string) (*Symbols, error) {
	if cached, ok := l.cache.Load(path); ok {
		l.logger.Debug("Using cached plugin", "path", path)
		return cached.(*Symbols), nil
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	type result struct {
		plug *plugin.Plugin
		err  error
	}
	done := make(chan result, 1)
	go func() {
		plug, err := plugin.Open(path)
		done <- result{plug, err}
	}()

	var plug *plugin.Plugin
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("plugin load timeout: %w", ErrPluginTimeout{Name: path})
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("failed to open plugin: %w", res.err)
		}
		plug = res.plug
	}

	syms, err := l.resolve(path, plug)
	if err != nil {
		return nil, err
	}

	l.cache.Store(path, syms)
	return syms, nil
}

// Factory returns a Factory that opens path and calls its Commands symbol.
// onOpen, if not nil, sees the resolved symbols first.
func (l *Loader) Factory(path string, onOpen func(*Symbols)) Factory {
	return func(ctx context.Context) ([]cli.Group, error) {
		syms, err := l.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		if onOpen != nil {
			onOpen(syms)
		}
		return syms.Commands(), nil
	}
}

func (l *Loader) resolve(path string, plug *plugin.Plugin) (*Symbols, error) {
	sym, err := plug.Lookup(CommandsSymbol)
	if err != nil {
		return nil, ErrSymbolNotFound{Path: path, Symbol: CommandsSymbol}
	}

	l.logger.Debug("Found Commands symbol", "type", fmt.Sprintf("%T", sym))

	syms := &Symbols{}
	switch c := sym.(type) {
	case func() []cli.Group:
		syms.Commands = c
	case *[]cli.Group:
		syms.Commands = func() []cli.Group { return *c }
	default:
		return nil, fmt.Errorf("%s is not a func() []cli.Group: got type %T", CommandsSymbol, sym)
	}

	if v, err := plug.Lookup(VersionSymbol); err == nil {
		switch v := v.(type) {
		case *string:
			syms.Version = *v
		case func() string:
			syms.Version = v()
		}
	}
	return syms, nil
}
