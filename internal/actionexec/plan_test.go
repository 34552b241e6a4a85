package actionexec

import "testing"

func TestParsePlanExtractsActionsAndParams(t *testing.T) {
	raw := `I will move south.
<actions>["MOVE"]</actions>
<params>{"MOVE": {"direction": "south"}}</params>`

	plan, err := ParsePlan(raw)
	if err != nil {
		t.Fatalf("parse plan: %v", err)
	}
	if len(plan) != 1 {
		t.Fatalf("expected 1 step, got %d", len(plan))
	}
	if plan[0].Name != "MOVE" {
		t.Errorf("step name = %q, want MOVE", plan[0].Name)
	}
	if plan[0].Params["direction"] != "south" {
		t.Errorf("params[direction] = %v, want south", plan[0].Params["direction"])
	}
}

func TestParsePlanNoParamsBlock(t *testing.T) {
	plan, err := ParsePlan(`<actions>["REPLY"]</actions>`)
	if err != nil {
		t.Fatalf("parse plan: %v", err)
	}
	if len(plan) != 1 || plan[0].Name != "REPLY" {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	if plan[0].Params != nil {
		t.Errorf("expected nil params, got %v", plan[0].Params)
	}
}

func TestPlanFromContent(t *testing.T) {
	plan := PlanFromContent([]string{"MOVE"}, map[string]map[string]any{"MOVE": {"direction": "north"}})
	if len(plan) != 1 || plan[0].Name != "MOVE" || plan[0].Params["direction"] != "north" {
		t.Fatalf("unexpected plan: %+v", plan)
	}
}
