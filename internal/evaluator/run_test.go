package evaluator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ariaos/aria/internal/registry"
	"github.com/ariaos/aria/pkg/types"
)

func TestRunAsyncRunsAlwaysRunEvaluators(t *testing.T) {
	var ran atomic.Bool
	reg := registry.New(nil)
	reg.RegisterEvaluator(types.Evaluator{
		Name:      "always",
		AlwaysRun: true,
		Handler: func(ctx context.Context, rt types.Runtime, msg types.Memory, state types.State) error {
			ran.Store(true)
			return nil
		},
	})

	r := New(reg, nil)
	waitDone(t, r.RunAsync(context.Background(), nil, types.Memory{}, types.State{}))

	if !ran.Load() {
		t.Fatal("expected always-run evaluator to execute")
	}
}

func TestRunAsyncSkipsWhenValidateFalse(t *testing.T) {
	var ran atomic.Bool
	reg := registry.New(nil)
	reg.RegisterEvaluator(types.Evaluator{
		Name: "conditional",
		Validate: func(ctx context.Context, rt types.Runtime, msg types.Memory, state types.State) (bool, error) {
			return false, nil
		},
		Handler: func(ctx context.Context, rt types.Runtime, msg types.Memory, state types.State) error {
			ran.Store(true)
			return nil
		},
	})

	r := New(reg, nil)
	waitDone(t, r.RunAsync(context.Background(), nil, types.Memory{}, types.State{}))

	if ran.Load() {
		t.Fatal("expected evaluator to be skipped")
	}
}

func TestRunAsyncHandlerErrorDoesNotPanic(t *testing.T) {
	reg := registry.New(nil)
	reg.RegisterEvaluator(types.Evaluator{
		Name:      "broken",
		AlwaysRun: true,
		Handler: func(ctx context.Context, rt types.Runtime, msg types.Memory, state types.State) error {
			return errors.New("boom")
		},
	})

	r := New(reg, nil)
	waitDone(t, r.RunAsync(context.Background(), nil, types.Memory{}, types.State{}))
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("evaluators did not complete in time")
	}
}
