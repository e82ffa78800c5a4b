// Package observe provides the OpenTelemetry metric instruments shared by the
// speech engine, the tutor and the transports.
//
// Metrics are recorded through the OpenTelemetry Metrics API and exported
// for Prometheus scraping by [InitProvider]. Tests should build their own
// [Metrics] with [NewMetrics] and a manual reader instead of touching the
// global provider.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/nadzzz/speakgenie"

// Metrics holds all metric instruments. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	// SpeakRequests counts accepted speak calls by requested locale.
	SpeakRequests metric.Int64Counter

	// SpeechAttempts counts utterance attempts by fallback tier and status.
	SpeechAttempts metric.Int64Counter

	// SpeechExhausted counts speak calls whose whole fallback chain failed.
	SpeechExhausted metric.Int64Counter

	// TutorDuration tracks LLM reply latency by backend and status.
	TutorDuration metric.Float64Histogram

	// TutorFallbacks counts canned replies served instead of the LLM.
	TutorFallbacks metric.Int64Counter

	// VoicesAvailable is the size of the voice catalog after the last refresh.
	VoicesAvailable metric.Int64Gauge

	// ActiveSessions tracks the number of conversation sessions in memory.
	ActiveSessions metric.Int64UpDownCounter
}

var latencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16}

// NewMetrics creates all instruments on the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.SpeakRequests, err = m.Int64Counter("speakgenie.speech.requests",
		metric.WithDescription("Speak requests accepted by the speech controller."),
	); err != nil {
		return nil, err
	}
	if met.SpeechAttempts, err = m.Int64Counter("speakgenie.speech.attempts",
		metric.WithDescription("Utterance attempts by fallback tier and status."),
	); err != nil {
		return nil, err
	}
	if met.SpeechExhausted, err = m.Int64Counter("speakgenie.speech.exhausted",
		metric.WithDescription("Speak requests whose fallback chain was exhausted."),
	); err != nil {
		return nil, err
	}
	if met.TutorDuration, err = m.Float64Histogram("speakgenie.tutor.duration",
		metric.WithDescription("Latency of tutor replies."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TutorFallbacks, err = m.Int64Counter("speakgenie.tutor.fallbacks",
		metric.WithDescription("Canned tutor replies served instead of the LLM."),
	); err != nil {
		return nil, err
	}
	if met.VoicesAvailable, err = m.Int64Gauge("speakgenie.voices.available",
		metric.WithDescription("Voices in the catalog after the last refresh."),
	); err != nil {
		return nil, err
	}
	if met.ActiveSessions, err = m.Int64UpDownCounter("speakgenie.sessions.active",
		metric.WithDescription("Conversation sessions held in memory."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level instance built on the global
// meter provider. Call it after [InitProvider].
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordSpeak counts one accepted speak request.
func (m *Metrics) RecordSpeak(ctx context.Context, locale string) {
	if m == nil {
		return
	}
	m.SpeakRequests.Add(ctx, 1, metric.WithAttributes(attribute.String("locale", locale)))
}

// RecordAttempt counts one utterance attempt.
func (m *Metrics) RecordAttempt(ctx context.Context, tier, status string) {
	if m == nil {
		return
	}
	m.SpeechAttempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tier", tier),
		attribute.String("status", status),
	))
}

// RecordExhausted counts one request whose every candidate failed.
func (m *Metrics) RecordExhausted(ctx context.Context, locale string) {
	if m == nil {
		return
	}
	m.SpeechExhausted.Add(ctx, 1, metric.WithAttributes(attribute.String("locale", locale)))
}

// RecordTutor records the latency of one tutor reply.
func (m *Metrics) RecordTutor(ctx context.Context, backend, status string, seconds float64) {
	if m == nil {
		return
	}
	m.TutorDuration.Record(ctx, seconds, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("status", status),
	))
}

// RecordTutorFallback counts one canned reply.
func (m *Metrics) RecordTutorFallback(ctx context.Context, scenario, reason string) {
	if m == nil {
		return
	}
	m.TutorFallbacks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scenario", scenario),
		attribute.String("reason", reason),
	))
}

// RecordVoices sets the current catalog size.
func (m *Metrics) RecordVoices(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.VoicesAvailable.Record(ctx, int64(n))
}

// SessionOpened increments the active session gauge.
func (m *Metrics) SessionOpened(ctx context.Context) {
	if m == nil {
		return
	}
	m.ActiveSessions.Add(ctx, 1)
}
