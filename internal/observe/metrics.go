// Package observe provides application-wide observability primitives for
// habla: OpenTelemetry metrics, tracing helpers, structured logging, and
// HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all habla metrics.
const meterName = "github.com/ecantero/habla"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Histograms ---

	// AttemptScore tracks the distribution of attempt scores (0-100). Use
	// with attributes:
	//   attribute.String("tier", ...), attribute.String("band", ...)
	AttemptScore metric.Int64Histogram

	// CaptureDuration tracks how long recording sessions stay open.
	CaptureDuration metric.Float64Histogram

	// PlaybackDuration tracks model-pronunciation playback latency.
	PlaybackDuration metric.Float64Histogram

	// --- Counters ---

	// Attempts counts evaluated scoring passes. Use with attributes:
	//   attribute.String("tier", ...), attribute.String("band", ...)
	Attempts metric.Int64Counter

	// EmptyTranscripts counts attempts discarded because nothing was
	// recognized.
	EmptyTranscripts metric.Int64Counter

	// --- Error counters ---

	// ProviderErrors counts capture and playback provider errors. Use with
	// attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter

	// --- Gauges ---

	// ActiveSessions tracks the number of live practice sessions.
	ActiveSessions metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// scoreBuckets defines histogram bucket boundaries aligned with the feedback
// band cut-offs at 70 and 90.
var scoreBuckets = []float64{
	10, 20, 30, 40, 50, 60, 70, 80, 90, 100,
}

// durationBuckets defines histogram bucket boundaries (in seconds) sized for
// spoken-paragraph capture and playback.
var durationBuckets = []float64{
	0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.AttemptScore, err = m.Int64Histogram("habla.attempt.score",
		metric.WithDescription("Distribution of attempt scores by tier and band."),
		metric.WithExplicitBucketBoundaries(scoreBuckets...),
	); err != nil {
		return nil, err
	}
	if met.CaptureDuration, err = m.Float64Histogram("habla.capture.duration",
		metric.WithDescription("Length of recording sessions."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.PlaybackDuration, err = m.Float64Histogram("habla.playback.duration",
		metric.WithDescription("Latency of model-pronunciation playback."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.Attempts, err = m.Int64Counter("habla.attempts",
		metric.WithDescription("Total evaluated practice attempts by tier and band."),
	); err != nil {
		return nil, err
	}
	if met.EmptyTranscripts, err = m.Int64Counter("habla.empty_transcripts",
		metric.WithDescription("Total attempts discarded because no speech was recognized."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.ProviderErrors, err = m.Int64Counter("habla.provider.errors",
		metric.WithDescription("Total provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveSessions, err = m.Int64UpDownCounter("habla.active_sessions",
		metric.WithDescription("Number of live practice sessions."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("habla.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
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

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordAttempt is a convenience method that records one evaluated attempt:
// the counter increment and the score histogram sample, both with the
// standard attribute set.
func (m *Metrics) RecordAttempt(ctx context.Context, tier, band string, score int) {
	attrs := metric.WithAttributes(
		attribute.String("tier", tier),
		attribute.String("band", band),
	)
	m.Attempts.Add(ctx, 1, attrs)
	m.AttemptScore.Record(ctx, int64(score), attrs)
}

// RecordProviderError is a convenience method that records a provider error
// counter increment.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}
