// Package otel provides OpenTelemetry integration for mnemo cache metrics.
//
// # Overview
//
// This package implements the mnemo.MetricsCollector interface using OpenTelemetry,
// enabling enterprise-grade observability with automatic percentile calculation and
// multi-backend support (Prometheus, Jaeger, DataDog, Grafana).
//
// The package is a separate module to keep the mnemo core lightweight.
// Applications that don't need metrics collection don't pay for the OTEL dependencies.
//
// # Features
//
//   - Automatic Percentiles: OTEL Histograms calculate p50, p95, p99, p99.9 latencies
//   - Multi-Backend Support: Works with Prometheus, Jaeger, DataDog, any OTEL-compatible backend
//   - Hit Ratio Tracking: Real-time cache hit/miss monitoring
//   - Pressure Monitoring: Reclamations, expirations and sweep activity
//   - Thread-Safe: Lock-free, safe for concurrent use
//   - Low Overhead: ~50-100ns per operation
//   - Industry Standard: Uses OpenTelemetry (CNCF standard)
//
// # Installation
//
//	go get github.com/agilira/mnemo/otel
//
// # Quick Start
//
// Basic setup with Prometheus exporter:
//
//	import (
//	    "github.com/agilira/mnemo"
//	    mnemotel "github.com/agilira/mnemo/otel"
//	    "go.opentelemetry.io/otel/exporters/prometheus"
//	    "go.opentelemetry.io/otel/sdk/metric"
//	)
//
//	// Setup Prometheus exporter
//	exporter, err := prometheus.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Create OTEL MeterProvider
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//	defer provider.Shutdown(context.Background())
//
//	// Create metrics collector
//	metricsCollector, err := mnemotel.NewOTelMetricsCollector(provider)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Configure cache with metrics
//	cache, err := mnemo.New(mnemo.Config{
//	    Source:           src,
//	    TTL:              time.Minute,
//	    MetricsCollector: metricsCollector,
//	})
//
//	// Use cache normally - metrics are automatically collected
//	cache.Get(ctx, "key")
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":2112", nil))
//
// # Metrics Exposed
//
// Histograms (with automatic percentiles):
//   - mnemo_lookup_latency_ns: Get() operation latency in nanoseconds
//   - mnemo_compute_latency_ns: Data source call latency in nanoseconds
//
// Counters:
//   - mnemo_lookup_hits_total: Total number of cache hits
//   - mnemo_lookup_misses_total: Total number of cache misses
//   - mnemo_computes_failed_total: Total number of failed data source calls
//   - mnemo_reclamations_total: Total number of reclaimed entry references
//   - mnemo_expired_total: Total number of TTL-based removals
//   - mnemo_stale_removed_total: Total number of reclaimed mappings removed by sweeps
//   - mnemo_sweeps_total: Total number of completed reaper sweeps
//
// All metrics are thread-safe and use lock-free OTEL instruments.
//
// # Configuration
//
// Custom meter name (useful for multiple cache instances):
//
//	collector, err := mnemotel.NewOTelMetricsCollector(
//	    provider,
//	    mnemotel.WithMeterName("myapp_user_cache"),
//	)
//
// Custom histogram buckets for better percentile accuracy:
//
//	provider := metric.NewMeterProvider(
//	    metric.WithReader(exporter),
//	    metric.WithView(metric.NewView(
//	        metric.Instrument{Name: "mnemo_lookup_latency_ns"},
//	        metric.Stream{
//	            Aggregation: metric.AggregationExplicitBucketHistogram{
//	                // Buckets in nanoseconds: 100ns, 500ns, 1μs, 5μs, 10μs, 50μs, 100μs
//	                Boundaries: []float64{100, 500, 1000, 5000, 10000, 50000, 100000},
//	            },
//	        },
//	    )),
//	)
//
// # Prometheus Queries
//
// Calculate P95 lookup latency (last 5 minutes):
//
//	histogram_quantile(0.95, rate(mnemo_lookup_latency_ns_bucket[5m]))
//
// Calculate hit ratio:
//
//	rate(mnemo_lookup_hits_total[5m]) /
//	(rate(mnemo_lookup_hits_total[5m]) + rate(mnemo_lookup_misses_total[5m]))
//
// Calculate data source failure rate:
//
//	rate(mnemo_computes_failed_total[5m])
//
// Calculate reclamations per minute (residency pressure):
//
//	rate(mnemo_reclamations_total[1m]) * 60
//
// # Architecture
//
// Separation of concerns:
//
//	┌─────────────────────────────────────┐
//	│      mnemo Cache (Core Module)      │
//	│  • No OTEL dependencies             │
//	│  • MetricsCollector interface       │
//	│  • NoOpMetricsCollector (default)   │
//	└──────────────┬──────────────────────┘
//	               │
//	               │ implements
//	               ▼
//	┌─────────────────────────────────────┐
//	│     mnemo/otel (This Package)       │
//	│  • OTelMetricsCollector             │
//	│  • OTEL SDK dependencies            │
//	│  • Histograms + Counters            │
//	└──────────────┬──────────────────────┘
//	               │
//	               │ exports to
//	               ▼
//	┌─────────────────────────────────────┐
//	│      OTEL MeterProvider             │
//	│  • Aggregates metrics               │
//	│  • Calculates percentiles           │
//	│  • Exports to backends              │
//	└──────────────┬──────────────────────┘
//	               │
//	     ┌─────────┴──────┬────────┐
//	     ▼                ▼        ▼
//	Prometheus        Jaeger   DataDog
//
// This architecture keeps the core lightweight while enabling enterprise observability
// as an optional add-on.
//
// # Thread Safety
//
// All methods are thread-safe and use lock-free OTEL instruments:
//
//	collector, _ := mnemotel.NewOTelMetricsCollector(provider)
//
//	// Safe to call from multiple goroutines
//	go func() { collector.RecordLookup(1000, true) }()
//	go func() { collector.RecordCompute(2000, false) }()
//	go func() { collector.RecordReclamation() }()
//	go func() { collector.RecordSweep(3, 1) }()
//
// # Best Practices
//
// 1. Reuse MeterProvider across cache instances:
//
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//	defer provider.Shutdown(context.Background())
//
//	collector1, _ := mnemotel.NewOTelMetricsCollector(provider)
//	collector2, _ := mnemotel.NewOTelMetricsCollector(provider,
//	    mnemotel.WithMeterName("cache2"))
//
// 2. Always shutdown MeterProvider on exit:
//
//	defer func() {
//	    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	    defer cancel()
//	    if err := provider.Shutdown(ctx); err != nil {
//	        log.Printf("Failed to shutdown meter provider: %v", err)
//	    }
//	}()
//
// 3. Monitor key metrics:
//   - Hit ratio: Target >80%
//   - P95 lookup latency: should track your data source, not the cache
//   - Failure rate: sustained failures indicate a sick upstream
//   - Reclamation rate: high values mean MaxLive is too small
//
// # Examples
//
// Complete working example with Prometheus:
//
//	examples/otel-prometheus/
//	├── main.go        # Application with simulated workload
//	└── go.mod
//
// Run the example:
//
//	cd examples/otel-prometheus
//	go run main.go
//
// Access:
//   - Metrics: http://localhost:2112/metrics
//
// # Compatibility
//
//   - Go: 1.23+
//   - OpenTelemetry: v1.31.0+
//   - Prometheus: v2.30.0+
//
// # Version
//
// Current version: v0.1.0 (matches mnemo core)
//
// # License
//
// Same as mnemo core (see LICENSE in main repository).
package otel
