// collector.go: OpenTelemetry-backed MetricsCollector for mnemo
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package otel

import (
	"context"
	"errors"

	"github.com/agilira/mnemo"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetricsCollector implements mnemo.MetricsCollector using OpenTelemetry.
//
// This collector records cache operations to OpenTelemetry metrics, enabling
// enterprise-grade observability with automatic percentile calculation and
// multi-backend support.
//
// Thread-safety: Safe for concurrent use by multiple goroutines.
// The underlying OTEL instruments are thread-safe and lock-free.
//
// Performance: Minimal overhead (<100ns per operation), allocation-free after initialization.
type OTelMetricsCollector struct {
	// OTEL instruments for recording metrics
	lookupLatency  metric.Int64Histogram // Get operation latency histogram
	computeLatency metric.Int64Histogram // Data source call latency histogram
	hits           metric.Int64Counter   // Cache hits counter
	misses         metric.Int64Counter   // Cache misses counter
	failedComputes metric.Int64Counter   // Failed data source calls counter
	reclamations   metric.Int64Counter   // Reclaimed references counter
	expired        metric.Int64Counter   // TTL-based removals counter
	staleRemoved   metric.Int64Counter   // Reclaimed mappings removed by sweeps
	sweeps         metric.Int64Counter   // Completed sweeps counter
}

// Options for configuring OTelMetricsCollector.
type Options struct {
	// MeterName is the name of the OpenTelemetry meter.
	// Default: "github.com/agilira/mnemo"
	MeterName string
}

// Option is a functional option for configuring OTelMetricsCollector.
type Option func(*Options)

// WithMeterName sets a custom meter name.
// This is useful for distinguishing metrics from multiple cache instances
// or integrating with existing OTEL instrumentation.
func WithMeterName(name string) Option {
	return func(o *Options) {
		o.MeterName = name
	}
}

// NewOTelMetricsCollector creates a new OpenTelemetry metrics collector.
//
// Parameters:
//   - provider: OpenTelemetry MeterProvider. Must not be nil.
//   - opts: Optional configuration options (meter name, etc.)
//
// Returns:
//   - *OTelMetricsCollector: The collector instance
//   - error: if provider is nil, or OTEL instrument creation errors
//
// The collector creates the following OTEL instruments:
//   - Int64Histogram for latencies (lookups, data source calls)
//   - Int64Counter for hits, misses, failures, reclamations and sweeps
//
// All instruments are thread-safe and lock-free.
//
// Example:
//
//	exporter, _ := prometheus.New()
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//	collector, err := NewOTelMetricsCollector(provider)
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewOTelMetricsCollector(provider metric.MeterProvider, opts ...Option) (*OTelMetricsCollector, error) {
	if provider == nil {
		return nil, errors.New("meter provider cannot be nil")
	}

	// Apply options
	options := Options{
		MeterName: "github.com/agilira/mnemo",
	}
	for _, opt := range opts {
		opt(&options)
	}

	// Create meter
	meter := provider.Meter(options.MeterName)

	// Create collector
	collector := &OTelMetricsCollector{}

	// Create lookup latency histogram
	var err error
	collector.lookupLatency, err = meter.Int64Histogram(
		"mnemo_lookup_latency_ns",
		metric.WithDescription("Latency of Get operations in nanoseconds"),
		metric.WithUnit("ns"),
	)
	if err != nil {
		return nil, err
	}

	// Create compute latency histogram
	collector.computeLatency, err = meter.Int64Histogram(
		"mnemo_compute_latency_ns",
		metric.WithDescription("Latency of data source calls in nanoseconds"),
		metric.WithUnit("ns"),
	)
	if err != nil {
		return nil, err
	}

	// Create hits counter
	collector.hits, err = meter.Int64Counter(
		"mnemo_lookup_hits_total",
		metric.WithDescription("Total number of cache hits"),
	)
	if err != nil {
		return nil, err
	}

	// Create misses counter
	collector.misses, err = meter.Int64Counter(
		"mnemo_lookup_misses_total",
		metric.WithDescription("Total number of cache misses"),
	)
	if err != nil {
		return nil, err
	}

	// Create failed computes counter
	collector.failedComputes, err = meter.Int64Counter(
		"mnemo_computes_failed_total",
		metric.WithDescription("Total number of failed data source calls"),
	)
	if err != nil {
		return nil, err
	}

	// Create reclamations counter
	collector.reclamations, err = meter.Int64Counter(
		"mnemo_reclamations_total",
		metric.WithDescription("Total number of reclaimed entry references"),
	)
	if err != nil {
		return nil, err
	}

	// Create expirations counter
	collector.expired, err = meter.Int64Counter(
		"mnemo_expired_total",
		metric.WithDescription("Total number of entries removed for exceeding the TTL"),
	)
	if err != nil {
		return nil, err
	}

	// Create stale removals counter
	collector.staleRemoved, err = meter.Int64Counter(
		"mnemo_stale_removed_total",
		metric.WithDescription("Total number of reclaimed mappings removed by sweeps"),
	)
	if err != nil {
		return nil, err
	}

	// Create sweeps counter
	collector.sweeps, err = meter.Int64Counter(
		"mnemo_sweeps_total",
		metric.WithDescription("Total number of completed reaper sweeps"),
	)
	if err != nil {
		return nil, err
	}

	return collector, nil
}

// RecordLookup records a completed Get operation.
//
// Parameters:
//   - latencyNs: Operation latency in nanoseconds. Must be >= 0.
//   - hit: Whether the caller joined an existing entry (true) or owned
//     the computation (false).
//
// This method:
//   - Records latency to the lookup latency histogram (used for percentile calculation)
//   - Increments either hits or misses counter
//
// Thread-safety: Safe for concurrent use.
// Performance: ~50-100ns overhead, allocation-free.
func (c *OTelMetricsCollector) RecordLookup(latencyNs int64, hit bool) {
	ctx := context.Background()

	// Record latency histogram
	c.lookupLatency.Record(ctx, latencyNs)

	// Increment hit/miss counter
	if hit {
		c.hits.Add(ctx, 1)
	} else {
		c.misses.Add(ctx, 1)
	}
}

// RecordCompute records one data source call.
//
// Parameters:
//   - latencyNs: Call latency in nanoseconds. Must be >= 0.
//   - failed: Whether the call returned an error or panicked.
//
// This method records latency to the compute latency histogram and
// increments the failed computes counter when failed is true.
//
// Thread-safety: Safe for concurrent use.
// Performance: ~50-100ns overhead, allocation-free.
func (c *OTelMetricsCollector) RecordCompute(latencyNs int64, failed bool) {
	ctx := context.Background()

	c.computeLatency.Record(ctx, latencyNs)
	if failed {
		c.failedComputes.Add(ctx, 1)
	}
}

// RecordReclamation records one reference cleared by the residency tier
// or ForceEvict.
//
// This method increments the reclamations counter.
//
// Thread-safety: Safe for concurrent use.
// Performance: ~50-100ns overhead, allocation-free.
func (c *OTelMetricsCollector) RecordReclamation() {
	c.reclamations.Add(context.Background(), 1)
}

// RecordSweep records the outcome of one reaper sweep.
//
// Parameters:
//   - expired: Number of entries removed for exceeding the TTL.
//   - stale: Number of reclaimed mappings removed.
//
// This method increments the sweeps counter and adds the removal counts
// to their respective counters.
//
// Thread-safety: Safe for concurrent use.
// Performance: ~50-100ns overhead, allocation-free.
func (c *OTelMetricsCollector) RecordSweep(expired int, stale int) {
	ctx := context.Background()

	c.sweeps.Add(ctx, 1)
	if expired > 0 {
		c.expired.Add(ctx, int64(expired))
	}
	if stale > 0 {
		c.staleRemoved.Add(ctx, int64(stale))
	}
}

// Compile-time interface check
var _ mnemo.MetricsCollector = (*OTelMetricsCollector)(nil)
