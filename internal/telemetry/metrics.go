// Package telemetry wires the runtime's per-turn metrics: a struct of
// prometheus/client_golang CounterVec/Histogram fields built with
// promauto, one field per measured concern.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks message-turn throughput and latency, action outcomes,
// and model dispatch request/failover counts.
type Metrics struct {
	// MessagesHandled counts HandleMessage calls by outcome
	// (success|error).
	MessagesHandled *prometheus.CounterVec

	// MessageHandleDuration measures HandleMessage wall-clock latency in
	// seconds.
	MessageHandleDuration prometheus.Histogram

	// ActionsExecuted counts executed plan steps by action name and
	// outcome (success|skipped|error).
	ActionsExecuted *prometheus.CounterVec

	// ModelRequests counts use_model calls by model_type, provider, and
	// status (success|error).
	ModelRequests *prometheus.CounterVec

	// ModelFailovers counts handler-to-handler fallbacks within a single
	// use_model call, labeled by model_type.
	ModelFailovers *prometheus.CounterVec
}

// NewMetrics registers and returns a Metrics using the default
// prometheus registry.
func NewMetrics() *Metrics {
	return &Metrics{
		MessagesHandled: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aria_messages_handled_total",
				Help: "Total number of HandleMessage turns by outcome",
			},
			[]string{"outcome"},
		),
		MessageHandleDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "aria_message_handle_duration_seconds",
				Help:    "Duration of a full HandleMessage turn in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
		),
		ActionsExecuted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aria_actions_executed_total",
				Help: "Total number of executed plan steps by action and outcome",
			},
			[]string{"action", "outcome"},
		),
		ModelRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aria_model_requests_total",
				Help: "Total number of use_model calls by model type, provider, and status",
			},
			[]string{"model_type", "provider", "status"},
		),
		ModelFailovers: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aria_model_failovers_total",
				Help: "Total number of handler-to-handler fallbacks within a use_model call",
			},
			[]string{"model_type"},
		),
	}
}
