package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer wraps an otel.Tracer for the runtime's message-turn spans.
// Exporter and TracerProvider setup belongs to the embedding process,
// not this core, so Tracer here only starts spans against whatever
// global TracerProvider the embedder configured.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer returns a Tracer drawing from the global otel TracerProvider,
// named after instrumentationName (e.g. "github.com/ariaos/aria/internal/runtime").
func NewTracer(instrumentationName string) *Tracer {
	return &Tracer{tracer: otel.Tracer(instrumentationName)}
}

// Start begins a span named name. Unlike a generic Start(ctx, name,
// opts...) signature, this only ever takes plain attributes.
func (t *Tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	opts := []trace.SpanStartOption{}
	if len(attrs) > 0 {
		opts = append(opts, trace.WithAttributes(attrs...))
	}
	return t.tracer.Start(ctx, name, opts...)
}

// RecordError records err on span and marks it as failed.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
