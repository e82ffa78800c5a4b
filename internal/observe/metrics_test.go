package observe

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumOf(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	m := findMetric(rm, name)
	if m == nil {
		t.Fatalf("metric %q not found", name)
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %q data = %T, want Sum[int64]", name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestCounters(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordSpeak(ctx, "mr-IN")
	m.RecordSpeak(ctx, "en-US")
	m.RecordAttempt(ctx, "primary", "error")
	m.RecordAttempt(ctx, "substitute", "ok")
	m.RecordExhausted(ctx, "ta-IN")
	m.RecordTutorFallback(ctx, "store", "error")
	m.SessionOpened(ctx)

	rm := collect(t, reader)
	for name, want := range map[string]int64{
		"speakgenie.speech.requests":  2,
		"speakgenie.speech.attempts":  2,
		"speakgenie.speech.exhausted": 1,
		"speakgenie.tutor.fallbacks":  1,
		"speakgenie.sessions.active":  1,
	} {
		if got := sumOf(t, rm, name); got != want {
			t.Errorf("%s = %d, want %d", name, got, want)
		}
	}
}

func TestGaugeAndHistogram(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordVoices(ctx, 3)
	m.RecordVoices(ctx, 5)
	m.RecordTutor(ctx, "openai", "ok", 0.4)

	rm := collect(t, reader)

	g := findMetric(rm, "speakgenie.voices.available")
	if g == nil {
		t.Fatal("voices gauge not found")
	}
	gauge, ok := g.Data.(metricdata.Gauge[int64])
	if !ok || len(gauge.DataPoints) != 1 || gauge.DataPoints[0].Value != 5 {
		t.Errorf("voices gauge = %+v, want single point 5", g.Data)
	}

	h := findMetric(rm, "speakgenie.tutor.duration")
	if h == nil {
		t.Fatal("tutor histogram not found")
	}
	hist, ok := h.Data.(metricdata.Histogram[float64])
	if !ok || len(hist.DataPoints) != 1 || hist.DataPoints[0].Count != 1 {
		t.Errorf("tutor histogram = %+v, want one observation", h.Data)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordSpeak(ctx, "en-US")
	m.RecordAttempt(ctx, "primary", "ok")
	m.RecordExhausted(ctx, "en-US")
	m.RecordTutor(ctx, "local", "error", 1)
	m.RecordTutorFallback(ctx, "home", "open")
	m.RecordVoices(ctx, 1)
	m.SessionOpened(ctx)
}
