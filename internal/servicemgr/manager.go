// Package servicemgr starts and stops the Service singletons a runtime
// collects from its plugins, tracking start order so teardown can run
// in reverse (C5).
package servicemgr

import (
	"context"
	"fmt"

	"github.com/ariaos/aria/internal/corelog"
	"github.com/ariaos/aria/internal/registry"
	"github.com/ariaos/aria/pkg/types"
)

// Manager starts services in the order they are added and stops them in
// reverse, indexing the running set by ServiceType() for GetService
// lookups.
type Manager struct {
	reg     *registry.Registry
	log     corelog.Logger
	started []types.Service
}

// New builds a Manager backed by reg for singleton lookup.
func New(reg *registry.Registry, log corelog.Logger) *Manager {
	if log == nil {
		log = corelog.Noop()
	}
	return &Manager{reg: reg, log: log}
}

// StartAll registers and starts every service the factories produce, in
// order. A failing Start aborts the remaining factories but does not
// unwind services already started — callers that want all-or-nothing
// semantics should call StopAll on error.
func (m *Manager) StartAll(ctx context.Context, rt types.Runtime, factories []func() types.Service) error {
	for _, factory := range factories {
		svc := factory()
		if err := m.reg.RegisterService(svc); err != nil {
			return fmt.Errorf("servicemgr: register %s: %w", svc.ServiceType(), err)
		}
		if err := svc.Start(ctx, rt); err != nil {
			return fmt.Errorf("servicemgr: start %s: %w", svc.ServiceType(), err)
		}
		m.started = append(m.started, svc)
		m.log.Info("service started", "service_type", svc.ServiceType())
	}
	return nil
}

// GetService returns the running singleton for serviceType, if any.
func (m *Manager) GetService(serviceType string) (types.Service, bool) {
	return m.reg.Service(serviceType)
}

// StopAll stops every started service in reverse start order. Individual
// stop failures are logged, not returned, so one bad teardown never blocks
// the rest (§4.3: "failures are logged but do not block other
// teardowns").
func (m *Manager) StopAll(ctx context.Context) {
	for i := len(m.started) - 1; i >= 0; i-- {
		svc := m.started[i]
		if err := svc.Stop(ctx); err != nil {
			m.log.Error("service stop failed", "service_type", svc.ServiceType(), "error", err)
		}
	}
	m.started = nil
}
