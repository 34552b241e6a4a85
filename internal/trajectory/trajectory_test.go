package trajectory

import (
	"testing"
	"time"
)

func TestLoggerStartStepComplete(t *testing.T) {
	sink := NewMemorySink()
	l := NewLogger(sink)

	tid := l.StartTrajectory("agent-1", WithScenarioID("scenario-a"))
	sid, err := l.StartStep(tid, map[string]any{"balance": 100})
	if err != nil {
		t.Fatalf("start step: %v", err)
	}

	err = l.CompleteStep(tid, sid, func(s *Step) {
		s.Reward = 1.5
		s.Done = true
		s.Action = &ActionAttempt{ActionName: "MOVE", Success: true}
	})
	if err != nil {
		t.Fatalf("complete step: %v", err)
	}

	l.EndTrajectory(tid, "completed", map[string]any{"episode_length": 1})
	waitForSinkCount(t, sink, 1)

	all := sink.All()
	if all[0].TotalReward != 1.5 {
		t.Fatalf("total reward = %v, want 1.5", all[0].TotalReward)
	}
	if all[0].Status != "completed" {
		t.Fatalf("status = %q, want completed", all[0].Status)
	}
}

func waitForSinkCount(t *testing.T, sink *MemorySink, n int) {
	t.Helper()
	for i := 0; i < 100; i++ {
		if len(sink.All()) >= n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("sink did not receive %d trajectories in time", n)
}

func TestGroupTrajectoriesSharedPrefix(t *testing.T) {
	shared := []ChatMessage{{Role: "system", Content: "sys"}, {Role: "user", Content: "hello"}}
	t1 := Trajectory{ScenarioID: "s1", Steps: []Step{{LLMCalls: []LLMCall{{Messages: append(append([]ChatMessage{}, shared...), ChatMessage{Role: "assistant", Content: "a"})}}}}}
	t2 := Trajectory{ScenarioID: "s1", Steps: []Step{{LLMCalls: []LLMCall{{Messages: append(append([]ChatMessage{}, shared...), ChatMessage{Role: "assistant", Content: "b"})}}}}}

	groups := GroupTrajectories([]Trajectory{t1, t2})
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if len(groups[0].SharedPrefix) != 2 {
		t.Fatalf("shared prefix = %v, want len 2", groups[0].SharedPrefix)
	}
}
