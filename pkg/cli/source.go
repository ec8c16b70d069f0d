package cli

import (
	"sort"
	"strings"
)

// Section is a titled list of groups handed to the router, e.g.
// "Global commands" or "Project specific commands"
type Section struct {
	Title  string
	Groups []Group
}

// Source collects every group of a section sharing one name. It behaves as a
// single group whose commands are the union of its members.
type Source struct {
	Name     string
	Help     string
	Callback CallbackFunc
	Params   []Param
	Groups   []Group
}

// Commands returns the union of the member groups' commands. A later member
// overrides an earlier command of the same name, which keeps its position.
func (s Source) Commands() []Command {
	var names []string
	byName := make(map[string]Command)
	for _, g := range s.Groups {
		for _, c := range g.Commands() {
			if _, exists := byName[c.Name]; !exists {
				names = append(names, c.Name)
			}
			byName[c.Name] = c
		}
	}
	cmds := make([]Command, 0, len(names))
	for _, name := range names {
		cmds = append(cmds, byName[name])
	}
	return cmds
}

// Command looks up a command by exact name, later members first
func (s Source) Command(name string) (Command, bool) {
	for i := len(s.Groups) - 1; i >= 0; i-- {
		if c, ok := s.Groups[i].Command(name); ok {
			return c, true
		}
	}
	return Command{}, false
}

// Names returns the sorted command names of the source
func (s Source) Names() []string {
	var names []string
	for _, c := range s.Commands() {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}

// Merge collapses groups sharing a name into one Source per distinct name,
// in first-seen order. Help texts of the members are joined by newlines;
// the callback and parameters come from the first member.
func Merge(groups []Group) []Source {
	var order []string
	members := make(map[string][]Group)
	for _, g := range groups {
		if _, seen := members[g.Name]; !seen {
			order = append(order, g.Name)
		}
		members[g.Name] = append(members[g.Name], g)
	}

	sources := make([]Source, 0, len(order))
	for _, name := range order {
		list := members[name]
		var helps []string
		for _, g := range list {
			if g.Help != "" {
				helps = append(helps, g.Help)
			}
		}
		sources = append(sources, Source{
			Name:     name,
			Help:     strings.Join(helps, "\n"),
			Callback: list[0].Callback,
			Params:   list[0].Params,
			Groups:   list,
		})
	}
	return sources
}

// Dedupe removes commands provided by a higher priority group. Sources are
// ordered lowest priority first, so the last source keeps all its commands.
// Groups left empty are dropped; sources are always kept.
func Dedupe(sources []Source) []Source {
	out := make([]Source, len(sources))
	claimed := make(map[string]bool)

	for i := len(sources) - 1; i >= 0; i-- {
		src := sources[i]
		groups := make([]Group, len(src.Groups))
		for j := len(src.Groups) - 1; j >= 0; j-- {
			g := src.Groups[j].without(claimed)
			for _, name := range g.names {
				claimed[name] = true
			}
			groups[j] = g
		}

		src.Groups = nil
		for _, g := range groups {
			if g.Len() > 0 {
				src.Groups = append(src.Groups, g)
			}
		}
		out[i] = src
	}
	return out
}
