// Package pluginloader orders plugins by their declared dependencies.
// Registration and the canonical-doc merge (C12) happen in the caller
// (internal/runtime.Runtime.Use), after the order is resolved here.
//
// Dependencies are resolved with a depth-first topological sort over
// each plugin's Dependencies list, erroring on cycles before any
// plugin's Init runs. Dependencies naming a plugin outside the input set
// are ignored.
package pluginloader

import (
	"fmt"

	"github.com/ariaos/aria/pkg/types"
)

// ErrCircularDependency is fatal at load time (invariant 4: the plugin
// dependency graph must be a DAG).
var ErrCircularDependency = fmt.Errorf("pluginloader: circular dependency")

type mark int

const (
	markWhite mark = iota
	markGrey
	markBlack
)

// Resolve orders plugins so that every plugin appears after all of its
// declared dependencies that are present in the input set. Dependencies
// naming a plugin absent from the input set are ignored — they are
// assumed satisfied out-of-band (test_missing_dependency_handled).
// Ties among siblings are broken by first-seen input order
// (post-order DFS over input order naturally achieves this).
func Resolve(plugins []types.Plugin) ([]types.Plugin, error) {
	byName := make(map[string]types.Plugin, len(plugins))
	order := make([]string, 0, len(plugins))
	for _, p := range plugins {
		if _, exists := byName[p.Name]; !exists {
			order = append(order, p.Name)
		}
		byName[p.Name] = p
	}

	marks := make(map[string]mark, len(plugins))
	var resolved []types.Plugin

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch marks[name] {
		case markBlack:
			return nil
		case markGrey:
			return fmt.Errorf("%w: %s", ErrCircularDependency, appendPath(path, name))
		}
		marks[name] = markGrey

		p := byName[name]
		for _, dep := range p.Dependencies {
			if _, ok := byName[dep]; !ok {
				continue
			}
			if err := visit(dep, append(path, name)); err != nil {
				return err
			}
		}

		marks[name] = markBlack
		resolved = append(resolved, p)
		return nil
	}

	for _, name := range order {
		if err := visit(name, nil); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

func appendPath(path []string, name string) string {
	s := ""
	for _, p := range path {
		s += p + " -> "
	}
	return s + name
}
