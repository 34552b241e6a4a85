// Package registry holds the in-process capability tables (C3): actions,
// providers, evaluators, services, and model handlers. It follows a
// mutex-guarded map-of-maps shape, with the maps typed against
// pkg/types instead of map[string]any, since the capability shapes
// here are fixed rather than plugin-defined.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ariaos/aria/internal/corelog"
	"github.com/ariaos/aria/pkg/types"
)

// Registry is the read-mostly capability table set for one runtime.
// Mutated only during plugin registration (§5: "read-mostly, mutated
// only during initialize()/set_setting").
type Registry struct {
	mu sync.RWMutex

	actions    map[string]types.Action
	providers  map[string]types.Provider
	evaluators map[string]types.Evaluator
	services   map[string]types.Service
	models     map[types.ModelType][]types.ModelHandler

	log corelog.Logger
}

// New constructs an empty Registry. A nil logger is replaced with a
// no-op.
func New(log corelog.Logger) *Registry {
	if log == nil {
		log = corelog.Noop()
	}
	return &Registry{
		actions:    make(map[string]types.Action),
		providers:  make(map[string]types.Provider),
		evaluators: make(map[string]types.Evaluator),
		services:   make(map[string]types.Service),
		models:     make(map[types.ModelType][]types.ModelHandler),
		log:        log,
	}
}

// RegisterAction adds or replaces an action. Invariant 1: duplicate names
// replace the earlier registration with a warning rather than erroring.
func (r *Registry) RegisterAction(a types.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.actions[a.Name]; exists {
		r.log.Warn("duplicate action registration, replacing", "name", a.Name)
	}
	r.actions[a.Name] = a
}

// Action looks up a registered action by name.
func (r *Registry) Action(name string) (types.Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actions[name]
	return a, ok
}

// Actions returns all registered actions, sorted by name for deterministic
// iteration (e.g. when building a planner prompt).
func (r *Registry) Actions() []types.Action {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.Action, 0, len(r.actions))
	for _, a := range r.actions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ErrDuplicateProvider is returned by RegisterProvider when a provider
// name is already taken by a different provider (invariant 2: provider
// names are unique).
var ErrDuplicateProvider = fmt.Errorf("registry: duplicate provider name")

// RegisterProvider adds a provider. Unlike actions, provider name
// collisions are a hard error (invariant 2 is phrased as a uniqueness
// constraint, not a replace-with-warning one, so we enforce it at the
// registry boundary).
func (r *Registry) RegisterProvider(p types.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[p.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateProvider, p.Name)
	}
	r.providers[p.Name] = p
	return nil
}

// Provider looks up a registered provider by name.
func (r *Registry) Provider(name string) (types.Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// Providers returns all registered providers.
func (r *Registry) Providers() []types.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.Provider, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p)
	}
	return out
}

// RegisterEvaluator adds or replaces an evaluator.
func (r *Registry) RegisterEvaluator(e types.Evaluator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.evaluators[e.Name]; exists {
		r.log.Warn("duplicate evaluator registration, replacing", "name", e.Name)
	}
	r.evaluators[e.Name] = e
}

// Evaluators returns all registered evaluators.
func (r *Registry) Evaluators() []types.Evaluator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.Evaluator, 0, len(r.evaluators))
	for _, e := range r.evaluators {
		out = append(out, e)
	}
	return out
}

// ErrDuplicateService is returned when a second instance is registered
// for a service_type already taken (invariant 3: one instance per
// service_type).
var ErrDuplicateService = fmt.Errorf("registry: duplicate service type")

// RegisterService installs the singleton instance for its ServiceType().
func (r *Registry) RegisterService(s types.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.services[s.ServiceType()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateService, s.ServiceType())
	}
	r.services[s.ServiceType()] = s
	return nil
}

// Service returns the singleton instance for serviceType, if any.
func (r *Registry) Service(serviceType string) (types.Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.services[serviceType]
	return s, ok
}

// Services returns every registered service instance.
func (r *Registry) Services() []types.Service {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.Service, 0, len(r.services))
	for _, s := range r.services {
		out = append(out, s)
	}
	return out
}

// RegisterModel adds a model handler to the candidate list for its
// ModelType, keeping the list sorted by descending priority with ties
// broken by registration order (stable sort preserves insertion order on
// equal priority).
func (r *Registry) RegisterModel(h types.ModelHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.models[h.ModelType]
	list = append(list, h)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Priority > list[j].Priority })
	r.models[h.ModelType] = list
}

// ModelHandlers returns the priority-ordered candidate list for modelType.
func (r *Registry) ModelHandlers(modelType types.ModelType) []types.ModelHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.models[modelType]
	out := make([]types.ModelHandler, len(list))
	copy(out, list)
	return out
}
