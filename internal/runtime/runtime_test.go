package runtime

import (
	"context"
	"testing"

	"github.com/ariaos/aria/pkg/types"
)

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	rt, err := New(Config{AgentID: "agent-1", SettingsSalt: "test-salt"})
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	return rt
}

func echoAction() types.Action {
	return types.Action{
		Name:        "REPLY",
		Description: "echoes the inbound message text",
		Validate: func(ctx context.Context, rt types.Runtime, msg types.Memory, state types.State) (bool, error) {
			return true, nil
		},
		Handler: func(ctx context.Context, rt types.Runtime, msg types.Memory, state types.State, opts types.ActionOptions, callback types.ActionCallback, responses []types.Memory) (types.ActionResult, error) {
			return types.ActionResult{Success: true, Values: map[string]any{"text": "echo: " + msg.Content.Text}}, nil
		},
	}
}

func TestHandleMessageRunsBypassPlanAndEmitsResponse(t *testing.T) {
	rt := newTestRuntime(t)
	if err := rt.Use(context.Background(), types.Plugin{Name: "echo", Actions: []types.Action{echoAction()}}); err != nil {
		t.Fatalf("use plugin: %v", err)
	}

	var events []EventType
	rt.OnEvent(func(e Event) { events = append(events, e.Type) })

	msg := types.Memory{
		EntityID: "user-1",
		RoomID:   "room-1",
		Content:  types.Content{Text: "hello", Actions: []string{"REPLY"}},
	}

	result, err := rt.HandleMessage(context.Background(), msg, nil)
	if err != nil {
		t.Fatalf("handle message: %v", err)
	}
	if result.Response == nil {
		t.Fatal("expected a response memory")
	}
	if result.Response.Content.Text != "echo: hello" {
		t.Fatalf("response text = %q, want %q", result.Response.Content.Text, "echo: hello")
	}
	if len(result.Steps) != 1 || !result.Steps[0].Result.Success {
		t.Fatalf("unexpected step outcomes: %+v", result.Steps)
	}

	wantOrder := []EventType{EventMessageReceived, EventActionCompleted, EventResponseEmitted}
	if len(events) < len(wantOrder) {
		t.Fatalf("events = %v, want at least %v", events, wantOrder)
	}
	for i, want := range wantOrder {
		if events[i] != want {
			t.Fatalf("event[%d] = %s, want %s", i, events[i], want)
		}
	}
}

func TestHandleMessageUnknownActionSkipsWithoutResponse(t *testing.T) {
	rt := newTestRuntime(t)

	msg := types.Memory{
		EntityID: "user-1",
		RoomID:   "room-1",
		Content:  types.Content{Text: "hello", Actions: []string{"NOPE"}},
	}

	result, err := rt.HandleMessage(context.Background(), msg, nil)
	if err != nil {
		t.Fatalf("handle message: %v", err)
	}
	if result.Response != nil {
		t.Fatalf("expected no response memory, got %+v", result.Response)
	}
	if len(result.Steps) != 1 || !result.Steps[0].Skipped {
		t.Fatalf("expected the unknown action to be skipped, got %+v", result.Steps)
	}
}

func TestRoomsProcessIndependently(t *testing.T) {
	rt := newTestRuntime(t)
	if err := rt.Use(context.Background(), types.Plugin{Name: "echo", Actions: []types.Action{echoAction()}}); err != nil {
		t.Fatalf("use plugin: %v", err)
	}

	done := make(chan error, 2)
	for _, room := range []string{"room-a", "room-b"} {
		room := room
		go func() {
			msg := types.Memory{EntityID: "user-1", RoomID: room, Content: types.Content{Text: "hi", Actions: []string{"REPLY"}}}
			_, err := rt.HandleMessage(context.Background(), msg, nil)
			done <- err
		}()
	}
	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			t.Fatalf("handle message: %v", err)
		}
	}
}
