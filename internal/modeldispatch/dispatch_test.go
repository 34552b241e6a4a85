package modeldispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/ariaos/aria/internal/registry"
	"github.com/ariaos/aria/pkg/types"
)

func TestUseModelNoHandlerReturnsNoModelHandler(t *testing.T) {
	d := New(registry.New(nil), nil)
	_, err := d.UseModel(context.Background(), nil, types.ModelTextLarge, nil)
	if !errors.Is(err, ErrNoModelHandler) {
		t.Fatalf("expected ErrNoModelHandler, got %v", err)
	}
}

func TestUseModelPicksHighestPriority(t *testing.T) {
	reg := registry.New(nil)
	reg.RegisterModel(types.ModelHandler{
		ModelType: types.ModelTextLarge,
		Provider:  "low",
		Priority:  1,
		Handler: func(ctx context.Context, rt types.Runtime, params map[string]any) (any, error) {
			return "low", nil
		},
	})
	reg.RegisterModel(types.ModelHandler{
		ModelType: types.ModelTextLarge,
		Provider:  "high",
		Priority:  10,
		Handler: func(ctx context.Context, rt types.Runtime, params map[string]any) (any, error) {
			return "high", nil
		},
	})

	d := New(reg, nil)
	got, err := d.UseModel(context.Background(), nil, types.ModelTextLarge, nil)
	if err != nil {
		t.Fatalf("use model: %v", err)
	}
	if got != "high" {
		t.Fatalf("expected high-priority handler result, got %v", got)
	}
}

func TestUseModelFallsThroughOnError(t *testing.T) {
	reg := registry.New(nil)
	reg.RegisterModel(types.ModelHandler{
		ModelType: types.ModelTextLarge,
		Provider:  "flaky",
		Priority:  10,
		Handler: func(ctx context.Context, rt types.Runtime, params map[string]any) (any, error) {
			return nil, errors.New("503 service unavailable")
		},
	})
	reg.RegisterModel(types.ModelHandler{
		ModelType: types.ModelTextLarge,
		Provider:  "backup",
		Priority:  5,
		Handler: func(ctx context.Context, rt types.Runtime, params map[string]any) (any, error) {
			return "backup-result", nil
		},
	})

	d := New(reg, nil)
	got, err := d.UseModel(context.Background(), nil, types.ModelTextLarge, nil)
	if err != nil {
		t.Fatalf("use model: %v", err)
	}
	if got != "backup-result" {
		t.Fatalf("expected fallback result, got %v", got)
	}
}

func TestUseModelAllFail(t *testing.T) {
	reg := registry.New(nil)
	reg.RegisterModel(types.ModelHandler{
		ModelType: types.ModelTextLarge,
		Provider:  "a",
		Priority:  1,
		Handler: func(ctx context.Context, rt types.Runtime, params map[string]any) (any, error) {
			return nil, errors.New("boom")
		},
	})

	d := New(reg, nil)
	_, err := d.UseModel(context.Background(), nil, types.ModelTextLarge, nil)
	if !errors.Is(err, ErrAllHandlersFailed) {
		t.Fatalf("expected ErrAllHandlersFailed, got %v", err)
	}
}
