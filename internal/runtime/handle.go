package runtime

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ariaos/aria/internal/actionexec"
	"github.com/ariaos/aria/internal/telemetry"
	"github.com/ariaos/aria/internal/trajectory"
	"github.com/ariaos/aria/pkg/types"
)

// MessageResult is what HandleMessage returns: the persisted response
// memory (if any action produced one) plus the per-step outcomes of the
// executed plan.
type MessageResult struct {
	Response *types.Memory
	Steps    []actionexec.StepOutcome
}

// HandleMessage runs the full per-turn pipeline (C10): persist the
// inbound memory, compose state (C7), plan (C8), execute the plan (C8),
// write and emit the response, kick off evaluators (C9) in the
// background, and close a trajectory step (C11).
//
// Messages sharing a RoomID are serialized; messages from different
// rooms proceed concurrently (spec.md §5).
func (rt *Runtime) HandleMessage(ctx context.Context, msg types.Memory, callback types.ActionCallback) (result MessageResult, err error) {
	start := time.Now()
	if rt.tracer != nil {
		var span trace.Span
		ctx, span = rt.tracer.Start(ctx, "aria.runtime.handle_message", attribute.String("room_id", msg.RoomID))
		defer func() {
			telemetry.RecordError(span, err)
			span.End()
		}()
	}
	if rt.metrics != nil {
		defer func() {
			outcome := "success"
			if err != nil {
				outcome = "error"
			}
			rt.metrics.MessagesHandled.WithLabelValues(outcome).Inc()
			rt.metrics.MessageHandleDuration.Observe(time.Since(start).Seconds())
		}()
	}

	unlock := rt.lockRoom(msg.RoomID)
	defer unlock()

	msg.AgentID = rt.agentID
	stored, err := rt.store.Create(ctx, msg, "messages")
	if err != nil {
		return MessageResult{}, fmt.Errorf("runtime: persist inbound memory: %w", err)
	}
	msg = stored

	rt.emit(Event{Type: EventMessageReceived, RoomID: msg.RoomID, Payload: msg})

	trajID := rt.trajLogger.StartTrajectory(rt.agentID)
	stepID, err := rt.trajLogger.StartStep(trajID, nil)
	if err != nil {
		rt.log.Warn("runtime: start trajectory step", "error", err)
	}

	state, err := rt.composer.Compose(ctx, rt, msg, msg.Content.Providers, nil)
	if err != nil {
		return MessageResult{}, fmt.Errorf("runtime: compose state: %w", err)
	}

	plan, err := rt.plan(ctx, msg, state)
	if err != nil {
		return MessageResult{}, fmt.Errorf("runtime: plan actions: %w", err)
	}

	var responses []types.Memory
	wrappedCallback := func(c types.Content) {
		rt.emit(Event{Type: EventActionStarted, RoomID: msg.RoomID, Payload: c})
		if callback != nil {
			callback(c)
		}
	}

	outcomes, finalState := rt.executor.Run(ctx, rt, msg, state, plan, responses, wrappedCallback)
	for _, o := range outcomes {
		rt.emit(Event{Type: EventActionCompleted, RoomID: msg.RoomID, Payload: o})
		if rt.metrics != nil {
			rt.metrics.ActionsExecuted.WithLabelValues(o.Step.Name, actionOutcome(o)).Inc()
		}
	}

	result = MessageResult{Steps: outcomes}

	responseContent, ok := responseContentFromOutcomes(outcomes)
	if ok {
		respMem := types.Memory{
			EntityID: rt.agentID,
			AgentID:  rt.agentID,
			RoomID:   msg.RoomID,
			WorldID:  msg.WorldID,
			Content:  responseContent,
			Metadata: &types.MemoryMetadata{Type: types.MemoryTypeMessage},
		}
		stored, err := rt.store.Create(ctx, respMem, "messages")
		if err != nil {
			return result, fmt.Errorf("runtime: persist response memory: %w", err)
		}
		result.Response = &stored
		responses = append(responses, stored)
		if callback != nil {
			callback(stored.Content)
		}
		rt.emit(Event{Type: EventResponseEmitted, RoomID: msg.RoomID, Payload: stored})
	}

	done := rt.evalRunner.RunAsync(ctx, rt, msg, finalState)
	go func() {
		<-done
		rt.emit(Event{Type: EventEvaluatorsComplete, RoomID: msg.RoomID})
	}()

	if stepID != "" {
		fill := func(s *trajectory.Step) {
			s.Action = actionAttemptFromOutcomes(outcomes)
		}
		if err := rt.trajLogger.CompleteStep(trajID, stepID, fill); err != nil {
			rt.log.Warn("runtime: complete trajectory step", "error", err)
		}
	}
	rt.trajLogger.EndTrajectory(trajID, "completed", map[string]any{"step_count": len(outcomes)})

	return result, nil
}

func actionOutcome(o actionexec.StepOutcome) string {
	switch {
	case o.Skipped:
		return "skipped"
	case !o.Result.Success:
		return "error"
	default:
		return "success"
	}
}

// actionAttemptFromOutcomes records the last executed step as this
// turn's ActionAttempt. The trajectory step model (§4.9) holds one
// action per step; multi-action plans are summarized by their final
// non-skipped outcome.
func actionAttemptFromOutcomes(outcomes []actionexec.StepOutcome) *trajectory.ActionAttempt {
	for i := len(outcomes) - 1; i >= 0; i-- {
		o := outcomes[i]
		if o.Skipped {
			continue
		}
		return &trajectory.ActionAttempt{
			ActionName: o.Step.Name,
			Parameters: o.Step.Params,
			Success:    o.Result.Success,
			Error:      o.Result.Error,
		}
	}
	return nil
}

// plan produces the action plan for one turn: an LLM-driven plan via
// TEXT_LARGE when planning is enabled, or a direct bypass from the
// inbound message's actions/params otherwise (spec.md §4.6).
func (rt *Runtime) plan(ctx context.Context, msg types.Memory, state types.State) (actionexec.Plan, error) {
	if !rt.planningEnabled {
		return actionexec.PlanFromContent(msg.Content.Actions, msg.Content.Params), nil
	}

	prompt := rt.planningPrompt(msg, state)
	raw, err := rt.dispatcher.UseModel(ctx, rt, types.ModelTextLarge, map[string]any{"prompt": prompt})
	if err != nil {
		return nil, fmt.Errorf("plan actions: %w", err)
	}
	text, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("plan actions: model returned %T, want string", raw)
	}
	return actionexec.ParsePlan(text)
}

func (rt *Runtime) planningPrompt(msg types.Memory, state types.State) string {
	var b strings.Builder
	b.WriteString("# Available actions\n")
	for _, a := range rt.registry.Actions() {
		fmt.Fprintf(&b, "- %s: %s\n", a.Name, a.Description)
	}
	b.WriteString("\n# Context\n")
	b.WriteString(state.Text)
	b.WriteString("\n\n# Message\n")
	b.WriteString(msg.Content.Text)
	return b.String()
}

// responseContentFromOutcomes builds the response Content from a plan's
// executed steps, recording the successfully executed action names
// (spec.md §4.6: "content.actions records the successfully executed
// action names"). Returns ok=false when nothing ran or every step
// failed/was skipped without output.
func responseContentFromOutcomes(outcomes []actionexec.StepOutcome) (types.Content, bool) {
	var actions []string
	var texts []string
	for _, o := range outcomes {
		if o.Result.Success {
			actions = append(actions, o.Step.Name)
		}
		if text, ok := o.Result.Values["text"].(string); ok && text != "" {
			texts = append(texts, text)
		}
	}
	if len(actions) == 0 && len(texts) == 0 {
		return types.Content{}, false
	}
	return types.Content{
		Text:    strings.Join(texts, "\n\n"),
		Actions: actions,
	}, true
}
