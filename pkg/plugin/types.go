package plugin

import "fmt"

// Kind names a registry group. Each kind is an independent list of plugins.
type Kind string

const (
	KindGlobal    Kind = "global"
	KindProject   Kind = "project"
	KindInit      Kind = "init"
	KindLineMagic Kind = "line_magic"
	KindHooks     Kind = "hooks"
	KindCLIHooks  Kind = "cli_hooks"
	KindStarters  Kind = "starters"
)

// Kinds lists every registry group in discovery order
var Kinds = []Kind{KindGlobal, KindProject, KindInit, KindLineMagic, KindHooks, KindCLIHooks, KindStarters}

// Valid reports whether k is one of Kinds
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKind converts a manifest or directory name to a Kind
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", ErrUnknownKind{Kind: s}
	}
	return k, nil
}

// State is the load state of a Handle
type State int

const (
	StateUnloaded State = iota
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// PluginInfo contains basic information about a registered plugin
type PluginInfo struct {
	Kind    Kind
	Name    string
	Ref     string
	Version string
	State   State
	Err     error
}
