package cli

import (
	"context"
	"reflect"
	"testing"
)

func cmd(name string) Command {
	return Command{Name: name, Help: name + " help"}
}

func groupNames(groups []Group) []string {
	var names []string
	for _, g := range groups {
		names = append(names, g.Name)
	}
	return names
}

func commandNames(src Source) []string {
	var names []string
	for _, c := range src.Commands() {
		names = append(names, c.Name)
	}
	return names
}

func TestNewGroup_LastWriteWins(t *testing.T) {
	g := NewGroup("project", "", Command{Name: "run", Help: "first"}, cmd("test"), Command{Name: "run", Help: "second"})

	if got, want := g.Names(), []string{"run", "test"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() got = %v, want %v", got, want)
	}
	c, ok := g.Command("run")
	if !ok || c.Help != "second" {
		t.Errorf("Command(run) got = %+v, want help %q", c, "second")
	}
}

func TestMerge(t *testing.T) {
	called := ""
	first := NewGroup("project", "H1", cmd("run"), Command{Name: "package", Help: "old"}).
		WithCallback(func(context.Context, *Invocation) error {
			called = "first"
			return nil
		}, Param{Name: "env"})
	second := NewGroup("project", "H2", cmd("test"), Command{Name: "package", Help: "new"}).
		WithCallback(func(context.Context, *Invocation) error {
			called = "second"
			return nil
		})
	global := NewGroup("global", "", cmd("info"))
	silent := NewGroup("project", "", cmd("lint"))

	sources := Merge([]Group{first, global, second, silent})

	if len(sources) != 2 {
		t.Fatalf("Merge() got %d sources, want 2", len(sources))
	}
	project, other := sources[0], sources[1]
	if project.Name != "project" || other.Name != "global" {
		t.Fatalf("Merge() order got = %s, %s", project.Name, other.Name)
	}
	if project.Help != "H1\nH2" {
		t.Errorf("Help got = %q, want %q", project.Help, "H1\nH2")
	}
	if got, want := commandNames(project), []string{"run", "package", "test", "lint"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Commands() got = %v, want %v", got, want)
	}
	if c, _ := project.Command("package"); c.Help != "new" {
		t.Errorf("later member should override, got %q", c.Help)
	}
	if len(project.Params) != 1 || project.Params[0].Name != "env" {
		t.Errorf("Params got = %+v, want those of the first member", project.Params)
	}
	if err := project.Callback(context.Background(), nil); err != nil || called != "first" {
		t.Errorf("Callback should come from the first member, got %q", called)
	}
	if got := groupNames(other.Groups); !reflect.DeepEqual(got, []string{"global"}) {
		t.Errorf("distinct group should pass through, got %v", got)
	}
}

func TestDedupe_LaterSourceWins(t *testing.T) {
	low := Source{Name: "low", Groups: []Group{
		NewGroup("low", "", Command{Name: "run", Help: "low"}, cmd("only-low")),
	}}
	high := Source{Name: "high", Groups: []Group{
		NewGroup("high", "", Command{Name: "run", Help: "high"}, cmd("only-high")),
	}}

	out := Dedupe([]Source{low, high})

	if got, want := commandNames(out[0]), []string{"only-low"}; !reflect.DeepEqual(got, want) {
		t.Errorf("low source got = %v, want %v", got, want)
	}
	c, ok := out[1].Command("run")
	if !ok || c.Help != "high" {
		t.Errorf("run should resolve to the high priority source, got %+v", c)
	}

	if _, ok := low.Command("run"); !ok {
		t.Errorf("Dedupe() must not modify its input")
	}
}

func TestDedupe_GroupsWithinSource(t *testing.T) {
	src := Source{Name: "project", Groups: []Group{
		NewGroup("a", "", cmd("run"), cmd("test")),
		NewGroup("b", "", cmd("run")),
		NewGroup("c", "", cmd("test")),
	}}

	out := Dedupe([]Source{src})

	if got, want := groupNames(out[0].Groups), []string{"b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("surviving groups got = %v, want %v", got, want)
	}
}

func TestDedupe_EmptySourceIsKept(t *testing.T) {
	low := Source{Name: "low", Groups: []Group{NewGroup("low", "", cmd("run"))}}
	high := Source{Name: "high", Groups: []Group{NewGroup("high", "", cmd("run"))}}

	out := Dedupe([]Source{low, high})

	if len(out) != 2 {
		t.Fatalf("Dedupe() got %d sources, want 2", len(out))
	}
	if len(out[0].Groups) != 0 {
		t.Errorf("low source should have no groups left, got %v", groupNames(out[0].Groups))
	}
}

func TestDedupe_Idempotent(t *testing.T) {
	sources := []Source{
		{Name: "a", Groups: []Group{NewGroup("a", "", cmd("run"), cmd("lint")), NewGroup("a2", "", cmd("lint"))}},
		{Name: "b", Groups: []Group{NewGroup("b", "", cmd("run"), cmd("test"))}},
		{Name: "c", Groups: []Group{NewGroup("c", "", cmd("test"))}},
	}

	once := Dedupe(sources)
	twice := Dedupe(once)

	for i := range once {
		if !reflect.DeepEqual(groupNames(once[i].Groups), groupNames(twice[i].Groups)) {
			t.Errorf("source %d groups differ: %v vs %v", i, groupNames(once[i].Groups), groupNames(twice[i].Groups))
		}
		if !reflect.DeepEqual(commandNames(once[i]), commandNames(twice[i])) {
			t.Errorf("source %d commands differ: %v vs %v", i, commandNames(once[i]), commandNames(twice[i]))
		}
	}
}

func TestDedupe_NoNameInTwoGroups(t *testing.T) {
	sources := Dedupe([]Source{
		{Name: "a", Groups: []Group{NewGroup("a", "", cmd("x"), cmd("y"))}},
		{Name: "b", Groups: []Group{NewGroup("b", "", cmd("y"), cmd("z"))}},
		{Name: "c", Groups: []Group{NewGroup("c", "", cmd("z"), cmd("x"))}},
	})

	seen := make(map[string]string)
	for _, src := range sources {
		for _, g := range src.Groups {
			for _, name := range g.Names() {
				if prev, dup := seen[name]; dup {
					t.Errorf("command %q in both %s and %s", name, prev, g.Name)
				}
				seen[name] = g.Name
			}
		}
	}
}
