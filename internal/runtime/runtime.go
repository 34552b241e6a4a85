// Package runtime wires C1-C12 into the single object an embedding
// process talks to: registry, settings, model dispatch, state
// composition, action execution, evaluators, trajectory logging, and
// service lifecycle. It implements pkg/types.Runtime, the capability
// surface handed to every Action/Provider/Evaluator handler.
package runtime

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ariaos/aria/internal/actiondocs"
	"github.com/ariaos/aria/internal/actionexec"
	"github.com/ariaos/aria/internal/corelog"
	"github.com/ariaos/aria/internal/evaluator"
	"github.com/ariaos/aria/internal/modeldispatch"
	"github.com/ariaos/aria/internal/pluginloader"
	"github.com/ariaos/aria/internal/registry"
	"github.com/ariaos/aria/internal/servicemgr"
	"github.com/ariaos/aria/internal/settings"
	"github.com/ariaos/aria/internal/statecompose"
	"github.com/ariaos/aria/internal/telemetry"
	"github.com/ariaos/aria/internal/trajectory"
	"github.com/ariaos/aria/pkg/types"
)

// Config controls how a Runtime is assembled. Every field has a usable
// zero value: New(Config{}) builds a runtime with an in-memory settings
// store, an in-memory memory store, no trajectory persistence, and
// planning disabled (plans come from the inbound message's content).
type Config struct {
	AgentID string

	// SettingsSalt overrides the SECRET_SALT environment variable; leave
	// empty to resolve salt/NODE_ENV from the environment as settings.NewStore
	// does.
	SettingsSalt string

	// ProviderConcurrency bounds how many providers statecompose.Composer
	// gathers in parallel. 0 uses the composer's default.
	ProviderConcurrency int

	// ActionRetryPolicy governs per-step retry/error handling in the
	// action executor. The zero value aborts the plan on the first
	// unhandled error, matching actionexec.RetryPolicy's default.
	ActionRetryPolicy actionexec.RetryPolicy

	// ActionPlanningEnabled selects between LLM-driven planning through
	// the TEXT_LARGE model handler (true) and direct
	// actionexec.PlanFromContent bypass (false, the zero value) for
	// connectors that already know which actions to run (spec.md §4.6's
	// "planning may be bypassed" escape hatch).
	ActionPlanningEnabled bool

	// TrajectorySink, if set, receives every completed Trajectory.
	TrajectorySink trajectory.Sink

	// MemoryStore persists Memory rows; defaults to an InMemoryStore.
	MemoryStore MemoryStore

	// ActionDocs supplies canonical description/similes/parameters/examples
	// fallbacks merged into registered actions and evaluators at Use time
	// (C12).
	ActionDocs *actiondocs.Catalog

	Log corelog.Logger

	// Metrics, if set, receives per-turn/per-action/per-model-call
	// counters. Nil disables metrics entirely.
	Metrics *telemetry.Metrics

	// Tracer, if set, wraps each HandleMessage turn in a span. Nil
	// disables tracing entirely.
	Tracer *telemetry.Tracer
}

// Runtime is the concrete pkg/types.Runtime implementation: one per
// embedded agent process.
type Runtime struct {
	agentID string
	log     corelog.Logger

	registry   *registry.Registry
	settings   *settings.Store
	dispatcher *modeldispatch.Dispatcher
	composer   *statecompose.Composer
	executor   *actionexec.Executor
	evalRunner *evaluator.Runner
	trajLogger *trajectory.Logger
	serviceMgr *servicemgr.Manager
	store      MemoryStore
	docs       *actiondocs.Catalog

	planningEnabled bool
	metrics         *telemetry.Metrics
	tracer          *telemetry.Tracer

	listenersMu sync.RWMutex
	listeners   []EventListener

	// roomLocks serializes HandleMessage calls sharing a RoomID: a
	// refcounted mutex per room so in-order processing holds within a
	// room while independent rooms proceed in parallel.
	roomLocksMu sync.Mutex
	roomLocks   map[string]*roomLock
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

// New assembles a Runtime from cfg.
func New(cfg Config) (*Runtime, error) {
	log := cfg.Log
	if log == nil {
		log = corelog.Noop()
	}

	var store *settings.Store
	var err error
	if cfg.SettingsSalt != "" {
		store = settings.NewStoreWithSalt(cfg.SettingsSalt)
	} else {
		store, err = settings.NewStore()
		if err != nil {
			return nil, fmt.Errorf("runtime: settings store: %w", err)
		}
	}

	reg := registry.New(log)

	dispatcher := modeldispatch.New(reg, log)
	if cfg.Metrics != nil {
		dispatcher.WithMetrics(cfg.Metrics)
	}

	memStore := cfg.MemoryStore
	if memStore == nil {
		memStore = NewInMemoryStore()
	}

	docs := cfg.ActionDocs
	if docs == nil {
		docs = actiondocs.NewCatalog(nil, nil)
	}

	rt := &Runtime{
		agentID:         cfg.AgentID,
		log:             log,
		registry:        reg,
		settings:        store,
		dispatcher:      dispatcher,
		composer:        statecompose.New(reg, log, cfg.ProviderConcurrency),
		executor:        actionexec.New(reg, log, cfg.ActionRetryPolicy),
		evalRunner:      evaluator.New(reg, log),
		trajLogger:      trajectory.NewLogger(cfg.TrajectorySink),
		serviceMgr:      servicemgr.New(reg, log),
		store:           memStore,
		docs:            docs,
		planningEnabled: cfg.ActionPlanningEnabled,
		metrics:         cfg.Metrics,
		tracer:          cfg.Tracer,
		roomLocks:       make(map[string]*roomLock),
	}
	return rt, nil
}

// AgentID implements pkg/types.Runtime.
func (rt *Runtime) AgentID() string { return rt.agentID }

// UseModel implements pkg/types.Runtime, dispatching through the
// priority/fallback model router (C6).
func (rt *Runtime) UseModel(ctx context.Context, modelType types.ModelType, params map[string]any) (any, error) {
	return rt.dispatcher.UseModel(ctx, rt, modelType, params)
}

// GetService implements pkg/types.Runtime.
func (rt *Runtime) GetService(serviceType string) (types.Service, bool) {
	return rt.serviceMgr.GetService(serviceType)
}

// GetSetting implements pkg/types.Runtime, transparently decrypting
// encrypted values and coercing "true"/"false" to bool (invariant 9).
func (rt *Runtime) GetSetting(key string) (any, bool) {
	return rt.settings.Get(key)
}

// SetSetting implements pkg/types.Runtime, encrypting string values with
// the current settings salt.
func (rt *Runtime) SetSetting(key string, value any) error {
	return rt.settings.Set(key, value)
}

// ComposeState implements pkg/types.Runtime (C7).
func (rt *Runtime) ComposeState(ctx context.Context, msg types.Memory, include, exclude []string) (types.State, error) {
	return rt.composer.Compose(ctx, rt, msg, include, exclude)
}

// CreateMemory implements pkg/types.Runtime, appending an immutable
// Memory row (invariant 7).
func (rt *Runtime) CreateMemory(ctx context.Context, mem types.Memory, table string) (types.Memory, error) {
	return rt.store.Create(ctx, mem, table)
}

// Use registers one or more plugins, in dependency order (C4), applying
// the C12 doc merge to every action/evaluator before registration and
// invoking each plugin's Init hook with the live Runtime once its own
// capabilities are registered.
func (rt *Runtime) Use(ctx context.Context, plugins ...types.Plugin) error {
	ordered, err := pluginloader.Resolve(plugins)
	if err != nil {
		return fmt.Errorf("runtime: resolve plugin order: %w", err)
	}

	var serviceFactories []func() types.Service
	for _, p := range ordered {
		for _, a := range p.Actions {
			rt.registry.RegisterAction(rt.docs.WithCanonicalActionDocs(a))
		}
		for _, pr := range p.Providers {
			if err := rt.registry.RegisterProvider(pr); err != nil {
				return fmt.Errorf("runtime: plugin %q: %w", p.Name, err)
			}
		}
		for _, e := range p.Evaluators {
			rt.registry.RegisterEvaluator(rt.docs.WithCanonicalEvaluatorDocs(e))
		}
		for _, m := range p.Models {
			rt.registry.RegisterModel(m)
		}
		serviceFactories = append(serviceFactories, p.Services...)

		if p.Init != nil {
			if err := p.Init(ctx, rt); err != nil {
				return fmt.Errorf("runtime: plugin %q init: %w", p.Name, err)
			}
		}
	}

	if len(serviceFactories) > 0 {
		if err := rt.serviceMgr.StartAll(ctx, rt, serviceFactories); err != nil {
			return fmt.Errorf("runtime: start services: %w", err)
		}
	}
	return nil
}

// Shutdown stops every started service in reverse start order.
func (rt *Runtime) Shutdown(ctx context.Context) {
	rt.serviceMgr.StopAll(ctx)
}

func (rt *Runtime) lockRoom(roomID string) func() {
	if strings.TrimSpace(roomID) == "" {
		return func() {}
	}

	rt.roomLocksMu.Lock()
	lock := rt.roomLocks[roomID]
	if lock == nil {
		lock = &roomLock{}
		rt.roomLocks[roomID] = lock
	}
	lock.refs++
	rt.roomLocksMu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		rt.roomLocksMu.Lock()
		lock.refs--
		if lock.refs <= 0 {
			delete(rt.roomLocks, roomID)
		}
		rt.roomLocksMu.Unlock()
	}
}
