// Package statecompose implements the state composer (C7):
// compose_state(msg, include?, exclude?) gathers selected providers
// concurrently and merges them deterministically into a State.
//
// The concurrency shape (semaphore-bounded goroutines writing into a
// preallocated, index-addressed results slice, awaited with a
// sync.WaitGroup) is a fan-out/preserve-order pattern generalized from
// tool calls to provider fetches.
package statecompose

import (
	"context"
	"sort"
	"sync"

	"github.com/ariaos/aria/internal/corelog"
	"github.com/ariaos/aria/internal/registry"
	"github.com/ariaos/aria/pkg/types"
)

// Composer computes the per-turn State from a registry's providers.
type Composer struct {
	reg         *registry.Registry
	log         corelog.Logger
	concurrency int
}

// New builds a Composer over reg. concurrency bounds the number of
// providers fetched in parallel; 0 means unbounded (one goroutine per
// selected provider).
func New(reg *registry.Registry, log corelog.Logger, concurrency int) *Composer {
	if log == nil {
		log = corelog.Noop()
	}
	return &Composer{reg: reg, log: log, concurrency: concurrency}
}

type selected struct {
	provider types.Provider
}

// selectProviders implements step 1 of §4.5: default to all non-private
// providers; include adds privates by name; exclude removes by name;
// dynamic providers are always included unless explicitly excluded.
func (c *Composer) selectProviders(include, exclude []string) []types.Provider {
	excludeSet := toSet(exclude)
	includeSet := toSet(include)

	var out []types.Provider
	for _, p := range c.reg.Providers() {
		if excludeSet[p.Name] {
			continue
		}
		if p.Private && !p.Dynamic && !includeSet[p.Name] {
			continue
		}
		out = append(out, p)
	}

	// Sort by ascending position, ties broken by provider name. The
	// registry keeps providers in a map, so registration order is not
	// available and does not affect the order of equal positions.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func toSet(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// gathered holds one provider's fetch outcome; it is stored at that
// provider's position-sort index in the results slice, so results can be
// merged back in sorted order regardless of which goroutine finished
// first.
type gathered struct {
	result types.ProviderResult
	err    error
}

// Compose runs step 1-4 of §4.5: select, sort, concurrently dispatch, and
// deterministically merge. Providers that error are elided from the
// composed state and logged; the turn continues (§4.5 last paragraph).
func (c *Composer) Compose(ctx context.Context, rt types.Runtime, msg types.Memory, include, exclude []string) (types.State, error) {
	providers := c.selectProviders(include, exclude)
	results := make([]gathered, len(providers))

	limit := c.concurrency
	if limit <= 0 {
		limit = len(providers)
	}
	if limit == 0 {
		limit = 1
	}
	sem := make(chan struct{}, limit)

	var wg sync.WaitGroup
	for i, p := range providers {
		wg.Add(1)
		go func(idx int, prov types.Provider) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx] = gathered{err: ctx.Err()}
				return
			}

			res, err := prov.Get(ctx, rt, msg, types.State{})
			results[idx] = gathered{result: res, err: err}
		}(i, p)
	}
	wg.Wait()

	state := types.State{
		Values: make(map[string]any),
		Data:   make(map[string]any),
	}

	var texts []string
	for i, g := range results {
		if g.err != nil {
			c.log.Warn("provider failed, eliding from state", "provider", providers[i].Name, "error", g.err)
			continue
		}
		if g.result.Text != "" {
			texts = append(texts, g.result.Text)
		}
		for k, v := range g.result.Values {
			state.Values[k] = v
		}
		for k, v := range g.result.Data {
			state.Data[k] = v
		}
	}

	state.Text = joinNonEmpty(texts, "\n\n")
	return state, nil
}

func joinNonEmpty(parts []string, sep string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}
