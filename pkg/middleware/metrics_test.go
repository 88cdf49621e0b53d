package middleware

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/vango-dev/doclisten/pkg/dom"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	if m.Gauge == nil {
		t.Fatal("expected gauge metric to have Gauge field")
	}
	return m.GetGauge().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func newTestMetrics() *Metrics {
	return NewMetrics(WithRegistry(prometheus.NewRegistry()), WithNamespace("test"))
}

func TestMetricsObserveListeners(t *testing.T) {
	m := newTestMetrics()
	doc := dom.NewDocument(dom.WithObserver(m))

	a := dom.NewCallback(func(*dom.Event) {})
	b := dom.NewCallback(func(*dom.Event) {})
	doc.AddEventListener(dom.KeyDown, a)
	doc.AddEventListener(dom.KeyDown, b)
	doc.AddEventListener(dom.KeyDown, b)
	doc.RemoveEventListener(dom.KeyDown, a)

	if got := metricCounterValue(t, m.listenersAdded.WithLabelValues("keydown")); got != 2 {
		t.Errorf("listeners_added_total = %v, want 2", got)
	}
	if got := metricCounterValue(t, m.listenersRemoved.WithLabelValues("keydown")); got != 1 {
		t.Errorf("listeners_removed_total = %v, want 1", got)
	}
	if got := metricGaugeValue(t, m.listenersActive.WithLabelValues("keydown")); got != 1 {
		t.Errorf("listeners_active = %v, want 1", got)
	}
}

func TestMetricsDocumentClosed(t *testing.T) {
	m := newTestMetrics()

	for i := 0; i < 3; i++ {
		doc := dom.NewDocument(dom.WithObserver(m))
		doc.AddEventListener(dom.Resize, dom.NewCallback(func(*dom.Event) {}))
		doc.AddEventListener(dom.Resize, dom.NewCallback(func(*dom.Event) {}))
		m.DocumentClosed(doc)
	}

	if got := metricGaugeValue(t, m.listenersActive.WithLabelValues("resize")); got != 0 {
		t.Errorf("listeners_active{resize} = %v after closing every document, want 0", got)
	}
	if got := metricCounterValue(t, m.listenersAdded.WithLabelValues("resize")); got != 6 {
		t.Errorf("listeners_added_total{resize} = %v, want 6", got)
	}
}

func TestMetricsMiddleware(t *testing.T) {
	m := newTestMetrics()
	doc := dom.NewDocument(dom.WithObserver(m), dom.WithMiddleware(m.Middleware()))

	doc.AddEventListener(dom.Click, dom.NewCallback(func(*dom.Event) {}))
	doc.AddEventListener(dom.Click, dom.NewCallback(func(*dom.Event) { panic("boom") }))

	ctx := context.Background()
	doc.Dispatch(ctx, dom.NewEvent(dom.Click, nil))
	doc.Dispatch(ctx, dom.NewEvent(dom.Click, nil))
	doc.Dispatch(ctx, dom.NewEvent(dom.Scroll, nil))

	if got := metricCounterValue(t, m.dispatchesTotal.WithLabelValues("click", "handled")); got != 2 {
		t.Errorf("dispatches_total{click,handled} = %v, want 2", got)
	}
	if got := metricCounterValue(t, m.dispatchesTotal.WithLabelValues("scroll", "unhandled")); got != 1 {
		t.Errorf("dispatches_total{scroll,unhandled} = %v, want 1", got)
	}
	if got := metricHistogramCount(t, m.dispatchDuration.WithLabelValues("click")); got != 2 {
		t.Errorf("dispatch_duration_seconds{click} count = %d, want 2", got)
	}
	if got := metricCounterValue(t, m.listenerPanics.WithLabelValues("click")); got != 2 {
		t.Errorf("listener_panics_total{click} = %v, want 2", got)
	}
}

func TestMetricsConfigOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(
		WithRegistry(reg),
		WithNamespace("app"),
		WithSubsystem("ui"),
		WithConstLabels(prometheus.Labels{"env": "test"}),
		WithBuckets([]float64{0.001, 0.01}),
	)
	m.ListenerAdded(dom.Resize, 1)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}

	found := false
	for _, f := range families {
		if f.GetName() == "app_ui_listeners_added_total" {
			found = true
			labels := f.GetMetric()[0].GetLabel()
			hasEnv := false
			for _, l := range labels {
				if l.GetName() == "env" && l.GetValue() == "test" {
					hasEnv = true
				}
			}
			if !hasEnv {
				t.Errorf("expected const label env=test, got %v", labels)
			}
		}
	}
	if !found {
		t.Error("expected app_ui_listeners_added_total to be registered")
	}
}
