package middleware

import (
	"context"
	"fmt"

	"github.com/vango-dev/doclisten/pkg/dom"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "doclisten"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "doclisten").
	TracerName string

	// TracerProvider overrides the global tracer provider.
	TracerProvider trace.TracerProvider

	// Filter determines which events to trace.
	// If nil, all events are traced.
	Filter func(e *dom.Event) bool

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(e *dom.Event) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithEventFilter sets a filter function for events.
func WithEventFilter(filter func(e *dom.Event) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(e *dom.Event) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// OpenTelemetry returns dispatch middleware that starts a span named
// "doclisten.<event>" for every dispatched event. The span is carried in the
// context passed to inner middleware; SpanFromContext retrieves it.
func OpenTelemetry(opts ...OTelOption) dom.Middleware {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	var tracer trace.Tracer
	if config.TracerProvider != nil {
		tracer = config.TracerProvider.Tracer(config.TracerName)
	} else {
		tracer = otel.Tracer(config.TracerName)
	}

	return func(next dom.DispatchFunc) dom.DispatchFunc {
		return func(ctx context.Context, e *dom.Event) int {
			if config.Filter != nil && !config.Filter(e) {
				return next(ctx, e)
			}

			attrs := []attribute.KeyValue{
				attribute.String("doclisten.event", string(e.Type)),
			}
			if config.AttributeExtractor != nil {
				attrs = append(attrs, config.AttributeExtractor(e)...)
			}

			spanCtx, span := tracer.Start(ctx, fmt.Sprintf("doclisten.%s", e.Type),
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			n := next(spanCtx, e)

			span.SetAttributes(attribute.Int("doclisten.listeners", n))
			if n == 0 {
				span.SetStatus(codes.Unset, "no listeners")
			} else {
				span.SetStatus(codes.Ok, "")
			}
			return n
		}
	}
}

// SpanFromContext returns the dispatch span from ctx, or nil if ctx carries
// no recording span.
func SpanFromContext(ctx context.Context) trace.Span {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return nil
	}
	return span
}
