package actionexec

import (
	"context"
	"errors"
	"testing"

	"github.com/ariaos/aria/internal/registry"
	"github.com/ariaos/aria/pkg/types"
)

// TestMissingRequiredParamDoesNotBlockHandler mirrors
// test_process_actions_skips_action_when_required_param_missing from
// original_source: the handler still runs, and receives a
// parameter_errors entry naming the missing parameter.
func TestMissingRequiredParamDoesNotBlockHandler(t *testing.T) {
	var invoked bool
	var gotErrors []string

	reg := registry.New(nil)
	reg.RegisterAction(types.Action{
		Name:       "MOVE",
		Parameters: []types.ActionParameter{{Name: "direction", Required: true}},
		Handler: func(ctx context.Context, rt types.Runtime, msg types.Memory, state types.State, opts types.ActionOptions, callback types.ActionCallback, responses []types.Memory) (types.ActionResult, error) {
			invoked = true
			gotErrors = opts.ParameterErrors
			return types.ActionResult{Success: true}, nil
		},
	})

	exec := New(reg, nil, RetryPolicy{})
	plan := Plan{{ID: "step-0", Name: "MOVE"}}
	outcomes, _ := exec.Run(context.Background(), nil, types.Memory{}, types.State{}, plan, nil, nil)

	if !invoked {
		t.Fatal("expected handler to be invoked despite missing required parameter")
	}
	if len(gotErrors) != 1 || gotErrors[0] != "Required parameter 'direction'" {
		t.Fatalf("parameter errors = %v, want [\"Required parameter 'direction'\"]", gotErrors)
	}
	if !outcomes[0].Result.Success {
		t.Fatalf("expected successful outcome, got %+v", outcomes[0])
	}
}

func TestValidatedParamsReachHandler(t *testing.T) {
	var gotDirection any

	reg := registry.New(nil)
	reg.RegisterAction(types.Action{
		Name: "MOVE",
		Parameters: []types.ActionParameter{
			{Name: "direction", Required: false, Schema: types.ParamSchema{"enum": []any{"north", "south"}, "default": "north"}},
		},
		Handler: func(ctx context.Context, rt types.Runtime, msg types.Memory, state types.State, opts types.ActionOptions, callback types.ActionCallback, responses []types.Memory) (types.ActionResult, error) {
			gotDirection = opts.Parameters["direction"]
			return types.ActionResult{Success: true}, nil
		},
	})

	exec := New(reg, nil, RetryPolicy{})
	plan := Plan{{ID: "step-0", Name: "MOVE", Params: map[string]any{"direction": "south"}}}
	exec.Run(context.Background(), nil, types.Memory{}, types.State{}, plan, nil, nil)

	if gotDirection != "south" {
		t.Fatalf("handler saw direction = %v, want south", gotDirection)
	}
}

func TestDependencyCascadeSkip(t *testing.T) {
	reg := registry.New(nil)
	reg.RegisterAction(types.Action{
		Name: "FAIL",
		Handler: func(ctx context.Context, rt types.Runtime, msg types.Memory, state types.State, opts types.ActionOptions, callback types.ActionCallback, responses []types.Memory) (types.ActionResult, error) {
			return types.ActionResult{}, errors.New("boom")
		},
	})
	var dependentRan bool
	reg.RegisterAction(types.Action{
		Name: "DEPENDENT",
		Handler: func(ctx context.Context, rt types.Runtime, msg types.Memory, state types.State, opts types.ActionOptions, callback types.ActionCallback, responses []types.Memory) (types.ActionResult, error) {
			dependentRan = true
			return types.ActionResult{Success: true}, nil
		},
	})

	exec := New(reg, nil, RetryPolicy{OnError: OnErrorContinue})
	plan := Plan{
		{ID: "step-0", Name: "FAIL"},
		{ID: "step-1", Name: "DEPENDENT", Dependencies: []string{"step-0"}},
	}
	outcomes, _ := exec.Run(context.Background(), nil, types.Memory{}, types.State{}, plan, nil, nil)

	if dependentRan {
		t.Fatal("expected dependent step to be cascade-skipped")
	}
	if !outcomes[1].Skipped {
		t.Fatalf("expected second outcome to be skipped, got %+v", outcomes[1])
	}
}

func TestOnErrorAbortStopsPlan(t *testing.T) {
	reg := registry.New(nil)
	reg.RegisterAction(types.Action{
		Name: "FAIL",
		Handler: func(ctx context.Context, rt types.Runtime, msg types.Memory, state types.State, opts types.ActionOptions, callback types.ActionCallback, responses []types.Memory) (types.ActionResult, error) {
			return types.ActionResult{}, errors.New("boom")
		},
	})
	var secondRan bool
	reg.RegisterAction(types.Action{
		Name: "SECOND",
		Handler: func(ctx context.Context, rt types.Runtime, msg types.Memory, state types.State, opts types.ActionOptions, callback types.ActionCallback, responses []types.Memory) (types.ActionResult, error) {
			secondRan = true
			return types.ActionResult{Success: true}, nil
		},
	})

	exec := New(reg, nil, RetryPolicy{OnError: OnErrorAbort})
	plan := Plan{{ID: "step-0", Name: "FAIL"}, {ID: "step-1", Name: "SECOND"}}
	exec.Run(context.Background(), nil, types.Memory{}, types.State{}, plan, nil, nil)

	if secondRan {
		t.Fatal("expected plan to abort before the second step")
	}
}
