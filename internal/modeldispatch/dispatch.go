// Package modeldispatch implements the model dispatcher (C6):
// use_model(type, params) picks the highest-priority registered handler
// for that model type and falls through to the next on failure.
//
// The fallback loop and error classification are grounded directly on
// internal/models/fallback.go's RunWithModelFallback / classifyErrorReason
// idiom, narrowed from "provider failover chain" to "try the
// priority-ordered handler table for one model type, never retrying the
// same handler."
package modeldispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ariaos/aria/internal/corelog"
	"github.com/ariaos/aria/internal/registry"
	"github.com/ariaos/aria/internal/telemetry"
	"github.com/ariaos/aria/pkg/types"
)

// ErrNoModelHandler is returned when no handler is registered for a model
// type at all.
var ErrNoModelHandler = errors.New("modeldispatch: no handler registered")

// ErrAllHandlersFailed is returned when every candidate handler for a
// model type errored.
var ErrAllHandlersFailed = errors.New("modeldispatch: all handlers failed")

// FailoverReason classifies why a handler call failed, mirroring
// fallback.go's classifyErrorReason taxonomy.
type FailoverReason string

const (
	ReasonRateLimit        FailoverReason = "rate_limit"
	ReasonAuth             FailoverReason = "auth_error"
	ReasonTimeout          FailoverReason = "timeout"
	ReasonServerError      FailoverReason = "server_error"
	ReasonModelUnavailable FailoverReason = "model_unavailable"
	ReasonAbort            FailoverReason = "abort"
	ReasonInvalidRequest   FailoverReason = "invalid_request"
	ReasonContentBlocked   FailoverReason = "content_blocked"
	ReasonUnknown          FailoverReason = "unknown"
)

// HandlerError wraps a model handler's error with the provider/model tags
// and the classified failover reason, the way fallback.go's FailoverError
// carries candidate metadata alongside the underlying error.
type HandlerError struct {
	Provider string
	Reason   FailoverReason
	Err      error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("modeldispatch: handler %s failed (%s): %v", e.Provider, e.Reason, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// classify maps a raw handler error to a FailoverReason by substring
// match against common provider error phrasing, mirroring fallback.go's
// pattern-based classifyErrorReason.
func classify(err error) FailoverReason {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429"):
		return ReasonRateLimit
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "401") || strings.Contains(msg, "forbidden"):
		return ReasonAuth
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return ReasonTimeout
	case strings.Contains(msg, "503") || strings.Contains(msg, "502") || strings.Contains(msg, "internal server error"):
		return ReasonServerError
	case strings.Contains(msg, "model not found") || strings.Contains(msg, "unavailable"):
		return ReasonModelUnavailable
	case strings.Contains(msg, "invalid request") || strings.Contains(msg, "400"):
		return ReasonInvalidRequest
	case strings.Contains(msg, "content policy") || strings.Contains(msg, "blocked"):
		return ReasonContentBlocked
	default:
		return ReasonUnknown
	}
}

// isAbort reports whether a reason should stop the fallback chain
// immediately instead of trying the next handler. Context cancellation is
// always an abort signal regardless of message content.
func isAbort(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Dispatcher routes use_model calls against a registry's priority-ordered
// handler tables.
type Dispatcher struct {
	reg     *registry.Registry
	log     corelog.Logger
	metrics *telemetry.Metrics
}

// New builds a Dispatcher over reg.
func New(reg *registry.Registry, log corelog.Logger) *Dispatcher {
	if log == nil {
		log = corelog.Noop()
	}
	return &Dispatcher{reg: reg, log: log}
}

// WithMetrics attaches a telemetry.Metrics that UseModel reports
// request/failover counts to. Optional: a Dispatcher with no metrics
// attached skips reporting entirely.
func (d *Dispatcher) WithMetrics(m *telemetry.Metrics) *Dispatcher {
	d.metrics = m
	return d
}

// UseModel tries each registered handler for modelType in descending
// priority order, returning the first success. A handler is never
// retried; on failure the dispatcher logs and falls through to the next
// highest-priority candidate. If the error is an abort condition (context
// cancelled), the chain stops immediately instead of trying further
// candidates.
func (d *Dispatcher) UseModel(ctx context.Context, rt types.Runtime, modelType types.ModelType, params map[string]any) (any, error) {
	candidates := d.reg.ModelHandlers(modelType)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoModelHandler, modelType)
	}

	var errs []error
	for i, h := range candidates {
		if i > 0 && d.metrics != nil {
			d.metrics.ModelFailovers.WithLabelValues(string(modelType)).Inc()
		}

		result, err := h.Handler(ctx, rt, params)
		if err == nil {
			if d.metrics != nil {
				d.metrics.ModelRequests.WithLabelValues(string(modelType), h.Provider, "success").Inc()
			}
			return result, nil
		}

		if d.metrics != nil {
			d.metrics.ModelRequests.WithLabelValues(string(modelType), h.Provider, "error").Inc()
		}

		reason := classify(err)
		if isAbort(ctx, err) {
			reason = ReasonAbort
		}
		herr := &HandlerError{Provider: h.Provider, Reason: reason, Err: err}
		errs = append(errs, herr)
		d.log.Warn("model handler failed, falling back", "model_type", modelType, "provider", h.Provider, "reason", reason)

		if reason == ReasonAbort {
			break
		}
	}

	return nil, fmt.Errorf("%w for %s: %w", ErrAllHandlersFailed, modelType, errors.Join(errs...))
}
