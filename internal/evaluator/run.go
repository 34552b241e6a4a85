// Package evaluator implements the evaluator runner (C9): after a
// response memory is written, every registered evaluator whose Validate
// returns true (or whose AlwaysRun is set) runs fire-and-forget. Handler
// errors are logged, never surfaced to the message handler (§4.7:
// "evaluators run fire-and-forget and errors are logged").
package evaluator

import (
	"context"
	"sync"

	"github.com/ariaos/aria/internal/corelog"
	"github.com/ariaos/aria/internal/registry"
	"github.com/ariaos/aria/pkg/types"
)

// Runner fans out registered evaluators over a completed turn.
type Runner struct {
	reg *registry.Registry
	log corelog.Logger
}

// New builds a Runner over reg.
func New(reg *registry.Registry, log corelog.Logger) *Runner {
	if log == nil {
		log = corelog.Noop()
	}
	return &Runner{reg: reg, log: log}
}

// RunAsync launches every applicable evaluator in its own goroutine and
// returns immediately; done is closed once all evaluators for this turn
// have finished, so callers that want to wait for completion (e.g. tests,
// or a graceful-shutdown path) can select on it without blocking the
// response path in the common case.
func (r *Runner) RunAsync(ctx context.Context, rt types.Runtime, msg types.Memory, state types.State) (done <-chan struct{}) {
	ch := make(chan struct{})
	go func() {
		defer close(ch)

		evaluators := r.reg.Evaluators()
		var wg sync.WaitGroup
		for _, e := range evaluators {
			e := e
			shouldRun := e.AlwaysRun
			if !shouldRun && e.Validate != nil {
				ok, err := e.Validate(ctx, rt, msg, state)
				if err != nil {
					r.log.Warn("evaluator validate failed", "evaluator", e.Name, "error", err)
					continue
				}
				shouldRun = ok
			}
			if !shouldRun || e.Handler == nil {
				continue
			}

			wg.Add(1)
			go func(ev types.Evaluator) {
				defer wg.Done()
				defer func() {
					if p := recover(); p != nil {
						r.log.Error("evaluator panicked", "evaluator", ev.Name, "panic", p)
					}
				}()
				if err := ev.Handler(ctx, rt, msg, state); err != nil {
					r.log.Warn("evaluator handler failed", "evaluator", ev.Name, "error", err)
				}
			}(e)
		}
		wg.Wait()
	}()
	return ch
}
