// Package trajectory implements the trajectory logger (C11): per-step
// traces of LLM calls, provider reads, and action attempts, recorded for
// off-process training/evaluation.
//
// The shape is grounded on internal/agent/tape's Tape/Turn/ToolRun (a
// turn-indexed recording of one conversation, wrapping an LLMProvider
// transparently), generalized from "one LLM turn" to "one environment
// step" per spec.md §4.9/§6's richer step schema (environment_state,
// multiple llm_calls and provider_accesses per step, a single
// ActionAttempt, reward/done/metadata).
package trajectory

import "time"

// LLMCallPurpose tags why an LLM was invoked within a step.
type LLMCallPurpose string

const (
	PurposeAction     LLMCallPurpose = "action"
	PurposeReasoning  LLMCallPurpose = "reasoning"
	PurposeEvaluation LLMCallPurpose = "evaluation"
	PurposeResponse   LLMCallPurpose = "response"
	PurposeOther      LLMCallPurpose = "other"
)

// LLMCall records one model invocation within a step.
type LLMCall struct {
	CallID           string         `json:"call_id"`
	Timestamp        time.Time      `json:"timestamp"`
	Model            string         `json:"model"`
	SystemPrompt     string         `json:"system_prompt,omitempty"`
	UserPrompt       string         `json:"user_prompt,omitempty"`
	Messages         []ChatMessage  `json:"messages,omitempty"`
	Response         string         `json:"response"`
	Temperature      float64        `json:"temperature,omitempty"`
	MaxTokens        int            `json:"max_tokens,omitempty"`
	TopP             *float64       `json:"top_p,omitempty"`
	PromptTokens     int            `json:"prompt_tokens,omitempty"`
	CompletionTokens int            `json:"completion_tokens,omitempty"`
	LatencyMS        int64          `json:"latency_ms,omitempty"`
	Purpose          LLMCallPurpose `json:"purpose"`
	ActionType       string         `json:"action_type,omitempty"`
}

// ChatMessage is one role/content pair, the unit ART records are built
// from.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ProviderAccess records one provider read surfaced inside a step
// (distinct from the state composer's own ProviderResult: this is the
// trajectory's persisted audit record of what a provider returned).
type ProviderAccess struct {
	ProviderID   string `json:"provider_id"`
	ProviderName string `json:"provider_name"`
	Query        string `json:"query,omitempty"`
	Data         any    `json:"data"`
	Purpose      string `json:"purpose,omitempty"`
}

// ActionAttempt records the single action a step executed.
type ActionAttempt struct {
	ActionType      string  `json:"action_type"`
	ActionName      string  `json:"action_name"`
	Parameters      any     `json:"parameters,omitempty"`
	Reasoning       string  `json:"reasoning,omitempty"`
	LLMCallID       string  `json:"llm_call_id,omitempty"`
	Success         bool    `json:"success"`
	Result          any     `json:"result,omitempty"`
	Error           string  `json:"error,omitempty"`
	ImmediateReward float64 `json:"immediate_reward,omitempty"`
}

// Step is one recorded turn of a trajectory.
type Step struct {
	StepID            string            `json:"step_id"`
	StepNumber        int               `json:"step_number"`
	Timestamp         time.Time         `json:"timestamp"`
	EnvironmentState  map[string]any    `json:"environment_state,omitempty"`
	Observation       any               `json:"observation,omitempty"`
	LLMCalls          []LLMCall         `json:"llm_calls,omitempty"`
	ProviderAccesses  []ProviderAccess  `json:"provider_accesses,omitempty"`
	Reasoning         string            `json:"reasoning,omitempty"`
	Action            *ActionAttempt    `json:"action,omitempty"`
	Reward            float64           `json:"reward"`
	Done              bool              `json:"done"`
	Metadata          map[string]any    `json:"metadata,omitempty"`
}

// RewardComponents breaks total reward into its contributing sources.
type RewardComponents struct {
	EnvironmentReward float64        `json:"environment_reward"`
	AIJudgeReward     *float64       `json:"ai_judge_reward,omitempty"`
	Components        map[string]any `json:"components,omitempty"`
	JudgeMeta         map[string]any `json:"judge_meta,omitempty"`
}

// Trajectory is one logical episode: an ordered sequence of Steps plus
// summary metrics.
type Trajectory struct {
	TrajectoryID     string           `json:"trajectory_id"`
	AgentID          string           `json:"agent_id"`
	StartTime        time.Time        `json:"start_time"`
	EndTime          time.Time        `json:"end_time,omitempty"`
	DurationMS       int64            `json:"duration_ms,omitempty"`
	EpisodeID        string           `json:"episode_id,omitempty"`
	ScenarioID       string           `json:"scenario_id,omitempty"`
	BatchID          string           `json:"batch_id,omitempty"`
	GroupIndex       int              `json:"group_index,omitempty"`
	Steps            []Step           `json:"steps"`
	TotalReward      float64          `json:"total_reward"`
	RewardComponents RewardComponents `json:"reward_components"`
	Metrics          map[string]any   `json:"metrics,omitempty"`
	Metadata         map[string]any   `json:"metadata,omitempty"`
	Status           string           `json:"status,omitempty"`
}
