package actionexec

import (
	"context"
	"fmt"
	"time"

	"github.com/ariaos/aria/internal/backoff"
	"github.com/ariaos/aria/internal/corelog"
	"github.com/ariaos/aria/internal/registry"
	"github.com/ariaos/aria/pkg/types"
)

// OnError selects what the executor does after a step's handler exhausts
// its retries.
type OnError string

const (
	OnErrorAbort    OnError = "abort"
	OnErrorContinue OnError = "continue"
	OnErrorSkip     OnError = "skip"
)

// RetryPolicy configures per-step retry behavior. The zero value retries
// zero times and aborts the plan on error (§4.6 default).
type RetryPolicy struct {
	MaxRetries        int
	BackoffInitial    time.Duration
	BackoffMultiplier float64
	OnError           OnError
}

func (p RetryPolicy) onError() OnError {
	if p.OnError == "" {
		return OnErrorAbort
	}
	return p.OnError
}

// StepOutcome is one step's result after validation, retries, and
// dependency checks.
type StepOutcome struct {
	Step      Step
	Result    types.ActionResult
	Skipped   bool
	SkipCause string
	Err       error
}

// Executor runs a Plan strictly sequentially, threading State between
// steps and honoring Step.Dependencies (invariant 6: unmet dependencies
// cascade-skip dependents).
type Executor struct {
	reg    *registry.Registry
	log    corelog.Logger
	policy RetryPolicy
}

// New builds an Executor over reg with the given retry policy, applied
// to every step of every plan (steps carry no policy of their own).
func New(reg *registry.Registry, log corelog.Logger, policy RetryPolicy) *Executor {
	if log == nil {
		log = corelog.Noop()
	}
	return &Executor{reg: reg, log: log, policy: policy}
}

// Run executes plan in order against rt/msg, returning one StepOutcome
// per step plus the working State accumulated across them (action
// results' Values/Data are folded in as subsequent steps run, per §4.6:
// "threads state by appending each step's values and data into a working
// copy of State").
func (e *Executor) Run(ctx context.Context, rt types.Runtime, msg types.Memory, state types.State, plan Plan, responses []types.Memory, callback types.ActionCallback) ([]StepOutcome, types.State) {
	skipped := make(map[string]bool)
	outcomes := make([]StepOutcome, 0, len(plan))

	working := types.State{
		Values: cloneMap(state.Values),
		Data:   cloneMap(state.Data),
		Text:   state.Text,
	}

	for _, step := range plan {
		if cause, blocked := dependencyBlocked(step, skipped); blocked {
			skipped[step.ID] = true
			outcomes = append(outcomes, StepOutcome{Step: step, Skipped: true, SkipCause: cause})
			continue
		}

		outcome := e.runStep(ctx, rt, msg, working, step, responses, callback)
		outcomes = append(outcomes, outcome)

		if outcome.Skipped {
			skipped[step.ID] = true
			continue
		}
		if outcome.Err != nil && e.policy.onError() == OnErrorAbort {
			break
		}
		if outcome.Err != nil {
			skipped[step.ID] = true
		}

		if outcome.Result.Values != nil || outcome.Result.Data != nil {
			for k, v := range outcome.Result.Values {
				working.Values[k] = v
			}
			for k, v := range outcome.Result.Data {
				working.Data[k] = v
			}
		}
	}

	return outcomes, working
}

func dependencyBlocked(step Step, skipped map[string]bool) (string, bool) {
	for _, dep := range step.Dependencies {
		if skipped[dep] {
			return fmt.Sprintf("dependency %s skipped", dep), true
		}
	}
	return "", false
}

func (e *Executor) runStep(ctx context.Context, rt types.Runtime, msg types.Memory, state types.State, step Step, responses []types.Memory, callback types.ActionCallback) StepOutcome {
	action, ok := e.reg.Action(step.Name)
	if !ok {
		return StepOutcome{Step: step, Skipped: true, SkipCause: "unknown action"}
	}

	if action.Validate != nil {
		valid, err := action.Validate(ctx, rt, msg, state)
		if err != nil {
			return StepOutcome{Step: step, Skipped: true, SkipCause: "not_valid", Err: err}
		}
		if !valid {
			return StepOutcome{Step: step, Skipped: true, SkipCause: "not_valid"}
		}
	}

	opts := ValidateParams(action, step.Params)

	policy := e.policy
	result, err := e.invokeWithRetry(ctx, rt, msg, state, action, opts, callback, responses, policy)
	if err != nil {
		e.log.Warn("action handler failed", "action", step.Name, "error", err)
		return StepOutcome{Step: step, Result: types.ActionResult{Success: false, Error: err.Error()}, Err: err}
	}
	return StepOutcome{Step: step, Result: result}
}

func (e *Executor) invokeWithRetry(ctx context.Context, rt types.Runtime, msg types.Memory, state types.State, action types.Action, opts types.ActionOptions, callback types.ActionCallback, responses []types.Memory, policy RetryPolicy) (types.ActionResult, error) {
	bp := backoffPolicy(policy)
	var lastErr error

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff.ComputeBackoff(bp, attempt)):
			case <-ctx.Done():
				return types.ActionResult{}, ctx.Err()
			}
		}

		result, err := action.Handler(ctx, rt, msg, state, opts, callback, responses)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return types.ActionResult{}, lastErr
}

// backoffPolicy translates a step's RetryPolicy into the jittered
// exponential formula internal/backoff.ComputeBackoff implements: base =
// initialMs * factor^(attempt-1), plus up to 10% jitter, capped at 30s.
func backoffPolicy(policy RetryPolicy) backoff.BackoffPolicy {
	factor := policy.BackoffMultiplier
	if factor <= 0 {
		factor = 1
	}
	return backoff.BackoffPolicy{
		InitialMs: float64(policy.BackoffInitial.Milliseconds()),
		MaxMs:     30000,
		Factor:    factor,
		Jitter:    0.1,
	}
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
