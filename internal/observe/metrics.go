// Package observe provides the observability primitives shared by the
// painvoice service: OpenTelemetry metrics, tracing, trace-aware logging and
// the HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API and bridged to
// Prometheus by [InitProvider]; [MetricsHandler] serves the scrape endpoint.
// Tests should build their own instance with [NewMetrics] and a
// [sdkmetric.ManualReader] instead of using [DefaultMetrics].
package observe

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all painvoice metrics.
const meterName = "github.com/MrWong99/painvoice"

// Metrics holds all OpenTelemetry instruments for the service. All fields are
// safe for concurrent use.
type Metrics struct {
	// ── Parser ──

	// ParseDuration tracks the latency of one parser operation. Attribute:
	//   attribute.String("operation", ...) (normalize, intent, segment, reminder, entry, merge)
	ParseDuration metric.Float64Histogram

	// IntentClassified counts classification results by intent.
	IntentClassified metric.Int64Counter

	// SegmentsProduced counts context segments by segment type.
	SegmentsProduced metric.Int64Counter

	// MergeApplied counts review-state merges, split by whether the
	// default pain level was filled in.
	MergeApplied metric.Int64Counter

	// ── Storage ──

	// StoreErrors counts failed storage calls. Attributes:
	//   attribute.String("store", ...), attribute.String("op", ...)
	StoreErrors metric.Int64Counter

	// MedicationCacheLookups counts medication cache lookups by result
	// ("hit" or "miss").
	MedicationCacheLookups metric.Int64Counter

	// ── Transport ──

	// ToolCalls counts MCP tool invocations by tool and status.
	ToolCalls metric.Int64Counter

	// DictationConnections tracks open dictation websocket connections.
	DictationConnections metric.Int64UpDownCounter

	// HTTPRequestDuration tracks HTTP request processing time. Attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// parseBuckets covers the sub-millisecond to tens-of-milliseconds range a
// rule-based parse of one utterance takes.
var parseBuckets = []float64{
	0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1,
}

// latencyBuckets defines HTTP latency bucket boundaries in seconds.
var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider].
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ParseDuration, err = m.Float64Histogram("painvoice.parse.duration",
		metric.WithDescription("Latency of a single parser operation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(parseBuckets...),
	); err != nil {
		return nil, err
	}
	if met.IntentClassified, err = m.Int64Counter("painvoice.intent.classified",
		metric.WithDescription("Classified transcripts by winning intent."),
	); err != nil {
		return nil, err
	}
	if met.SegmentsProduced, err = m.Int64Counter("painvoice.segments.produced",
		metric.WithDescription("Context segments produced by segment type."),
	); err != nil {
		return nil, err
	}
	if met.MergeApplied, err = m.Int64Counter("painvoice.merge.applied",
		metric.WithDescription("Review state merges by default pain usage."),
	); err != nil {
		return nil, err
	}

	if met.StoreErrors, err = m.Int64Counter("painvoice.store.errors",
		metric.WithDescription("Failed storage calls by store and operation."),
	); err != nil {
		return nil, err
	}
	if met.MedicationCacheLookups, err = m.Int64Counter("painvoice.medication_cache.lookups",
		metric.WithDescription("Medication cache lookups by result."),
	); err != nil {
		return nil, err
	}

	if met.ToolCalls, err = m.Int64Counter("painvoice.tool.calls",
		metric.WithDescription("MCP tool invocations by tool name and status."),
	); err != nil {
		return nil, err
	}
	if met.DictationConnections, err = m.Int64UpDownCounter("painvoice.dictation.connections",
		metric.WithDescription("Open dictation websocket connections."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("painvoice.http.request.duration",
		metric.WithDescription("HTTP request latency by method and route."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. It panics if instrument creation
// fails.
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

// RecordParse records the duration of a parser operation started at start.
func (m *Metrics) RecordParse(ctx context.Context, operation string, start time.Time) {
	m.ParseDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("operation", operation)),
	)
}

// RecordIntent counts one classification result.
func (m *Metrics) RecordIntent(ctx context.Context, intent string) {
	m.IntentClassified.Add(ctx, 1,
		metric.WithAttributes(attribute.String("intent", intent)),
	)
}

// RecordSegment counts one produced segment of the given type.
func (m *Metrics) RecordSegment(ctx context.Context, segmentType string) {
	m.SegmentsProduced.Add(ctx, 1,
		metric.WithAttributes(attribute.String("type", segmentType)),
	)
}

// RecordMerge counts one review-state merge.
func (m *Metrics) RecordMerge(ctx context.Context, painDefaultUsed bool) {
	m.MergeApplied.Add(ctx, 1,
		metric.WithAttributes(attribute.String("pain_default_used", strconv.FormatBool(painDefaultUsed))),
	)
}

// RecordStoreError counts one failed storage call.
func (m *Metrics) RecordStoreError(ctx context.Context, store, op string) {
	m.StoreErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("store", store),
			attribute.String("op", op),
		),
	)
}

// RecordCacheLookup counts a medication cache hit or miss.
func (m *Metrics) RecordCacheLookup(ctx context.Context, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.MedicationCacheLookups.Add(ctx, 1,
		metric.WithAttributes(attribute.String("result", result)),
	)
}

// RecordToolCall counts one MCP tool invocation.
func (m *Metrics) RecordToolCall(ctx context.Context, tool, status string) {
	m.ToolCalls.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("tool", tool),
			attribute.String("status", status),
		),
	)
}
