// Package middleware provides observability for document event dispatch.
//
// This package includes:
//   - Prometheus metrics for listener registration and dispatch
//   - OpenTelemetry tracing for dispatch
//
// # Prometheus Metrics
//
// Metrics is both a dom.Observer (listener counts, panics) and a source of
// dispatch middleware (event counts and durations):
//
//	m := middleware.NewMetrics(middleware.WithNamespace("myapp"))
//	doc := dom.NewDocument(
//	    dom.WithObserver(m),
//	    dom.WithMiddleware(m.Middleware()),
//	)
//
// Collected series:
//   - doclisten_listeners_added_total{event}
//   - doclisten_listeners_removed_total{event}
//   - doclisten_listeners_active{event}
//   - doclisten_listener_panics_total{event}
//   - doclisten_dispatches_total{event,status}
//   - doclisten_dispatch_duration_seconds{event}
//
// Expose them with promhttp:
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # OpenTelemetry
//
// OpenTelemetry starts one span per dispatched event:
//
//	doc := dom.NewDocument(dom.WithMiddleware(
//	    middleware.OpenTelemetry(middleware.WithTracerName("my-app")),
//	))
//
// Middleware installed after it can get the span from the dispatch context
// with SpanFromContext. The tracer comes from the global OpenTelemetry provider;
// configure it with otel.SetTracerProvider before creating documents.
package middleware
