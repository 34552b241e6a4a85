package trajectory

// ARTRecord is the message-list + reward shape handed to external
// trainers (§4.9/§6: "{messages: [ChatMessage], reward, metadata,
// metrics?}").
type ARTRecord struct {
	Messages []ChatMessage  `json:"messages"`
	Reward   float64        `json:"reward"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Metrics  map[string]any `json:"metrics,omitempty"`
}

// ToARTMessages flattens every LLM call's prompt/response across a
// trajectory's steps into one chat-message list, in step order.
func ToARTMessages(t Trajectory) []ChatMessage {
	var out []ChatMessage
	for _, step := range t.Steps {
		for _, call := range step.LLMCalls {
			if len(call.Messages) > 0 {
				out = append(out, call.Messages...)
				continue
			}
			if call.SystemPrompt != "" {
				out = append(out, ChatMessage{Role: "system", Content: call.SystemPrompt})
			}
			if call.UserPrompt != "" {
				out = append(out, ChatMessage{Role: "user", Content: call.UserPrompt})
			}
			if call.Response != "" {
				out = append(out, ChatMessage{Role: "assistant", Content: call.Response})
			}
		}
	}
	return out
}

// ToART converts a Trajectory into an ARTRecord.
func ToART(t Trajectory) ARTRecord {
	return ARTRecord{
		Messages: ToARTMessages(t),
		Reward:   t.TotalReward,
		Metadata: t.Metadata,
		Metrics:  t.Metrics,
	}
}

// Group is a set of trajectories sharing a ScenarioID, plus their longest
// common chat-message prefix.
type Group struct {
	ScenarioID   string
	Trajectories []Trajectory
	SharedPrefix []ChatMessage
}

// GroupTrajectories buckets trajectories by ScenarioID and computes each
// group's shared_prefix as the longest common prefix of their ART
// message lists.
func GroupTrajectories(trajectories []Trajectory) []Group {
	order := make([]string, 0)
	byScenario := make(map[string][]Trajectory)
	for _, t := range trajectories {
		if _, ok := byScenario[t.ScenarioID]; !ok {
			order = append(order, t.ScenarioID)
		}
		byScenario[t.ScenarioID] = append(byScenario[t.ScenarioID], t)
	}

	groups := make([]Group, 0, len(order))
	for _, scenarioID := range order {
		ts := byScenario[scenarioID]
		msgLists := make([][]ChatMessage, len(ts))
		for i, t := range ts {
			msgLists[i] = ToARTMessages(t)
		}
		groups = append(groups, Group{
			ScenarioID:   scenarioID,
			Trajectories: ts,
			SharedPrefix: longestCommonPrefix(msgLists),
		})
	}
	return groups
}

func longestCommonPrefix(lists [][]ChatMessage) []ChatMessage {
	if len(lists) == 0 {
		return nil
	}
	prefix := lists[0]
	for _, l := range lists[1:] {
		prefix = commonPrefix(prefix, l)
		if len(prefix) == 0 {
			return nil
		}
	}
	out := make([]ChatMessage, len(prefix))
	copy(out, prefix)
	return out
}

func commonPrefix(a, b []ChatMessage) []ChatMessage {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}
