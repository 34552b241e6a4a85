package pluginloader

import (
	"errors"
	"testing"

	"github.com/ariaos/aria/pkg/types"
)

func named(name string, deps ...string) types.Plugin {
	return types.Plugin{Name: name, Dependencies: deps}
}

func order(plugins []types.Plugin) []string {
	names := make([]string, len(plugins))
	for i, p := range plugins {
		names[i] = p.Name
	}
	return names
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func TestResolveNoDependencies(t *testing.T) {
	got, err := Resolve([]types.Plugin{named("a"), named("b")})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(got))
	}
}

func TestResolveSimpleDependency(t *testing.T) {
	got, err := Resolve([]types.Plugin{named("a", "b"), named("b")})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	names := order(got)
	if indexOf(names, "b") > indexOf(names, "a") {
		t.Fatalf("expected b before a, got %v", names)
	}
}

func TestResolveChainDependency(t *testing.T) {
	got, err := Resolve([]types.Plugin{named("a", "b"), named("b", "c"), named("c")})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	names := order(got)
	if !(indexOf(names, "c") < indexOf(names, "b") && indexOf(names, "b") < indexOf(names, "a")) {
		t.Fatalf("expected order c, b, a, got %v", names)
	}
}

func TestResolveCircularDependency(t *testing.T) {
	_, err := Resolve([]types.Plugin{named("a", "b"), named("b", "a")})
	if !errors.Is(err, ErrCircularDependency) {
		t.Fatalf("expected ErrCircularDependency, got %v", err)
	}
}

func TestResolveMissingDependencyIgnored(t *testing.T) {
	got, err := Resolve([]types.Plugin{named("a", "external-unlisted")})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 1 || got[0].Name != "a" {
		t.Fatalf("expected just [a], got %v", order(got))
	}
}

func TestResolveDiamondDependency(t *testing.T) {
	got, err := Resolve([]types.Plugin{
		named("d", "b", "c"),
		named("b", "a"),
		named("c", "a"),
		named("a"),
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	names := order(got)
	iA, iB, iC, iD := indexOf(names, "a"), indexOf(names, "b"), indexOf(names, "c"), indexOf(names, "d")
	if !(iA < iB && iA < iC && iB < iD && iC < iD) {
		t.Fatalf("expected a before b,c and b,c before d, got %v", names)
	}
}
