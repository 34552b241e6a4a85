package types

import "context"

// ParamSchema is a JSON-Schema subset: type/enum/default/range/length/
// pattern plus nested properties/items/required for object and array
// parameters. Left as a map so it round-trips arbitrary JSON-Schema
// documents without this package taking on a schema library dependency;
// internal/actionexec is the place that compiles it against
// santhosh-tekuri/jsonschema.
type ParamSchema map[string]any

// ActionParameter declares one named, possibly required input to an
// Action.
type ActionParameter struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Required    bool        `json:"required"`
	Schema      ParamSchema `json:"schema,omitempty"`
}

// ActionResult is what an Action.Handler returns for one execution.
type ActionResult struct {
	Success bool           `json:"success"`
	Values  map[string]any `json:"values,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	Reward  float64        `json:"reward,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// ActionCallback lets a handler stream partial content back to the
// caller before it returns its final ActionResult.
type ActionCallback func(Content)

// ActionOptions is the per-invocation bag the executor builds for a
// handler: validated parameters plus any parameter errors discovered
// during schema validation (invariant 5: required-missing does not block
// invocation, it populates ParameterErrors instead).
type ActionOptions struct {
	Parameters      map[string]any
	ParameterErrors []string
}

// ActionHandler performs one action given the runtime, triggering
// message, composed state, validated options, an optional streaming
// callback, and any prior responses already emitted this turn.
type ActionHandler func(ctx context.Context, rt Runtime, msg Memory, state State, opts ActionOptions, callback ActionCallback, responses []Memory) (ActionResult, error)

// ActionValidator decides whether an Action is applicable to this turn.
type ActionValidator func(ctx context.Context, rt Runtime, msg Memory, state State) (bool, error)

// Action is a named, parameterized operation the agent can choose to
// execute in response to a message.
type Action struct {
	Name        string
	Description string
	Similes     []string
	Parameters  []ActionParameter
	Validate    ActionValidator
	Handler     ActionHandler
	Examples    []ActionExample
}

// ActionExample is one canonical few-shot example call for an Action,
// carried on the Action and in internal/actiondocs catalogs. The
// runtime's planning prompt does not include examples.
type ActionExample struct {
	Prompt string         `json:"prompt"`
	Params map[string]any `json:"params,omitempty"`
}

// ProviderResult is what a Provider.Get returns for one turn.
type ProviderResult struct {
	Text   string         `json:"text,omitempty"`
	Values map[string]any `json:"values,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

// ProviderFunc fetches one provider's contribution to the composed State.
type ProviderFunc func(ctx context.Context, rt Runtime, msg Memory, state State) (ProviderResult, error)

// Provider is a pluggable context source invoked during state composition.
// Private providers are excluded from the default selection and must be
// named explicitly via Include; Dynamic providers are recomputed every
// turn even when otherwise cacheable.
type Provider struct {
	Name        string
	Description string
	Position    int
	Private     bool
	Dynamic     bool
	Get         ProviderFunc
}

// EvaluatorHandler runs an Evaluator's side effects (writing reflections,
// extracted facts, etc.) after a response has been emitted.
type EvaluatorHandler func(ctx context.Context, rt Runtime, msg Memory, state State) error

// EvaluatorValidator decides whether an Evaluator should run this turn.
type EvaluatorValidator func(ctx context.Context, rt Runtime, msg Memory, state State) (bool, error)

// Evaluator is a post-response hook that examines a completed turn.
type Evaluator struct {
	Name        string
	Description string
	Similes     []string
	Examples    []ActionExample
	Validate    EvaluatorValidator
	Handler     EvaluatorHandler
	AlwaysRun   bool
}

// Service is a long-lived singleton keyed by ServiceType, started at init
// and stopped at teardown.
type Service interface {
	ServiceType() string
	Start(ctx context.Context, rt Runtime) error
	Stop(ctx context.Context) error
}

// Well-known service type identifiers (original_source's
// ServiceTypeRegistry), carried here so plugins share a vocabulary even
// though concrete services implementing them are out of this core's
// scope.
const (
	ServiceTypeTranscription = "transcription"
	ServiceTypeBrowser       = "browser"
	ServiceTypeWebSearch     = "web_search"
	ServiceTypeTask          = "task"
	ServiceTypeTextToSpeech  = "tts"
	ServiceTypeMessageBus    = "message_bus"
	ServiceTypeWallet        = "wallet"
)

// ModelType names a routable model capability. The core recognizes these
// but implements none of them; concrete handlers are registered by
// plugins.
type ModelType string

const (
	ModelTextSmall          ModelType = "TEXT_SMALL"
	ModelTextLarge          ModelType = "TEXT_LARGE"
	ModelTextEmbedding      ModelType = "TEXT_EMBEDDING"
	ModelTextReasoningSmall ModelType = "TEXT_REASONING_SMALL"
	ModelTextReasoningLarge ModelType = "TEXT_REASONING_LARGE"
	ModelObjectSmall        ModelType = "OBJECT_SMALL"
	ModelObjectLarge        ModelType = "OBJECT_LARGE"
	ModelImage              ModelType = "IMAGE"
	ModelImageDescription   ModelType = "IMAGE_DESCRIPTION"
	ModelTranscription      ModelType = "TRANSCRIPTION"
	ModelTextToSpeech       ModelType = "TEXT_TO_SPEECH"
	ModelTokenizeText       ModelType = "TOKENIZE_TEXT"
	ModelDetokenizeText     ModelType = "DETOKENIZE_TEXT"
)

// ModelFunc is the callable body of a ModelHandler.
type ModelFunc func(ctx context.Context, rt Runtime, params map[string]any) (any, error)

// ModelHandler is a routable function for a named model type, selected by
// (Provider, Priority). Higher Priority wins; ties break by registration
// order.
type ModelHandler struct {
	ModelType ModelType
	Handler   ModelFunc
	Provider  string
	Priority  int
}

// PluginInit runs once, after dependency ordering, with the live runtime
// handle (DESIGN NOTES: the plugin receives the runtime only inside
// init(rt); it must not own it).
type PluginInit func(ctx context.Context, rt Runtime) error

// Plugin is a named bundle of actions, providers, evaluators, services,
// and model handlers, plus an optional dependency list and init hook.
type Plugin struct {
	Name         string
	Description  string
	Dependencies []string
	Actions      []Action
	Providers    []Provider
	Evaluators   []Evaluator
	Services     []func() Service
	Models       []ModelHandler
	Init         PluginInit
}

// State is the read-mostly per-turn bundle the composer produces and
// actions/evaluators observe.
type State struct {
	Values map[string]any
	Data   map[string]any
	Text   string
}

// Runtime is the capability surface every Action/Provider/Evaluator
// handler is given. It is defined here (rather than in internal/runtime)
// so pkg/types stays free of an import cycle: handlers are typed in terms
// of this interface, and internal/runtime.Runtime implements it.
type Runtime interface {
	UseModel(ctx context.Context, modelType ModelType, params map[string]any) (any, error)
	GetService(serviceType string) (Service, bool)
	GetSetting(key string) (any, bool)
	SetSetting(key string, value any) error
	ComposeState(ctx context.Context, msg Memory, include, exclude []string) (State, error)
	CreateMemory(ctx context.Context, mem Memory, table string) (Memory, error)
	AgentID() string
}
