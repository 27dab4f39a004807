// Package mnemo provides a concurrent memoizing cache that computes values
// through a user-supplied data source and remembers them under
// memory-elastic references.
//
// # Overview
//
// Mnemo sits in front of an expensive, blocking lookup (a database query, a
// remote call, a costly computation) and guarantees that at most one lookup
// per key is in flight at any time. Concurrent callers for the same key join
// the in-flight computation instead of duplicating it; callers for distinct
// keys never serialize on each other's lookups.
//
// Core properties:
//   - Read-Through: Get computes on miss, returns cached value on hit
//   - Stampede Prevention: N concurrent Gets for a cold key = 1 source call
//   - Memory Elasticity: Entries held through reclaimable references
//   - TTL Expiry: Background reaper removes entries past their lifetime
//   - Failure Caching: Failed computations are remembered like values
//   - Structured Errors: Rich error context with error codes
//   - Observability: Logger, MetricsCollector and TimeProvider seams
//
// # Quick Start
//
//	import "github.com/agilira/mnemo"
//
//	func main() {
//	    cache, err := mnemo.New(mnemo.Config{
//	        Source: mnemo.DataSourceFunc(func(ctx context.Context, key string) (interface{}, error) {
//	            return fetchUserFromDB(ctx, key)
//	        }),
//	        TTL: 5 * time.Minute,
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer cache.Close()
//
//	    value, err := cache.Get(context.Background(), "user:123")
//	    if err != nil {
//	        log.Printf("lookup failed: %v", err)
//	        return
//	    }
//	    fmt.Println(value)
//	}
//
// # Stampede Prevention
//
// Get is the only read/compute operation. When a key is absent, exactly one
// caller (the owner, decided by an atomic install protocol) invokes the data
// source; every other concurrent caller for that key blocks on the same
// in-flight computation and receives the same result:
//
//	// 1000 goroutines, one Find call
//	for i := 0; i < 1000; i++ {
//	    go cache.Get(ctx, "user:123")
//	}
//
// The install decision is serialized on one instance-wide mutex held only
// for the map operation itself, never during the computation. Lookups for
// different keys proceed in parallel once installed.
//
// Key characteristics of Get:
//   - Cache hit: two atomic loads and a channel check, no locks
//   - Concurrent requests: N requests = 1 source call per key
//   - Error handling: source errors are cached (see Failure Caching)
//   - Panic recovery: returns MNEMO_PANIC_RECOVERED if the source panics
//
// # Memory Elasticity
//
// Entries are held through references that the residency tier may clear.
// The tier keeps at most MaxLive entries strongly referenced in recency
// order; admitting an entry over budget reclaims the coldest reference. A
// reclaimed entry disappears from readers immediately, while its mapping
// lingers until a sweep or a replacing lookup cleans it up. The next Get
// for a reclaimed key recomputes through the data source.
//
// ForceEvict reclaims a single key on demand, which makes
// reclamation-driven recomputation deterministic:
//
//	cache.ForceEvict("user:123") // next Get recomputes
//
// # TTL and the Reaper
//
// Every cache has a required TTL. A background reaper goroutine started by
// New sweeps the cache on a fixed period (SweepInterval, default one
// second, independent of the TTL):
//
//   - Entries still computing are skipped, whatever their age
//   - Mappings whose reference was reclaimed are removed
//   - Entries strictly older than the TTL are removed
//
// A panic while examining one entry is confined to that entry; the sweep
// continues and the reaper survives. SweepNow runs one synchronous sweep
// on the caller's goroutine, which combines with a custom TimeProvider for
// deterministic expiry tests.
//
// # Failure Caching
//
// A computation that returns an error is cached exactly like a value:
// subsequent Gets for the key receive the same MNEMO_LOOKUP_FAILED error
// without touching the data source again, until the entry ages out or is
// reclaimed. This absorbs repeated hits on a failing upstream.
//
// Set EvictOnFailure to drop failed entries immediately instead, so the
// next Get retries the source:
//
//	cache, _ := mnemo.New(mnemo.Config{
//	    Source:         src,
//	    TTL:            time.Minute,
//	    EvictOnFailure: true, // failures are not remembered
//	})
//
// # Cancellation
//
// Get honors context cancellation. A caller cancelled while waiting on
// another goroutine's computation detaches, discards the mapping it was
// waiting on (best effort) and returns the context error; the computation
// itself keeps running for the callers still joined to it. Cancellation
// that interrupts the owner's own source call surfaces as a cached failure,
// like any other source error.
//
// # Type Safety
//
// Typed wraps a cache with a generic, type-checked API:
//
//	users, err := mnemo.NewTyped[User](mnemo.Config{
//	    Source: userSource,
//	    TTL:    time.Minute,
//	})
//
//	user, err := users.Get(ctx, "user:123") // user is User, no assertion
//
// A cached value of the wrong dynamic type yields MNEMO_TYPE_MISMATCH.
//
// # Observability
//
// Built-in stats tracking:
//
//	stats := cache.Stats()
//	fmt.Printf("Hits: %d, Misses: %d, Hit Ratio: %.2f%%\n",
//	    stats.Hits, stats.Misses, stats.HitRatio())
//	fmt.Printf("Size: %d, Expirations: %d, Reclamations: %d\n",
//	    stats.Size, stats.Expirations, stats.Reclamations)
//
// Enterprise observability with OpenTelemetry (optional):
//
//	import mnemotel "github.com/agilira/mnemo/otel"
//
//	exporter, _ := prometheus.New()
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//	collector, _ := mnemotel.NewOTelMetricsCollector(provider)
//
//	cache, _ := mnemo.New(mnemo.Config{
//	    Source:           src,
//	    TTL:              time.Minute,
//	    MetricsCollector: collector,
//	})
//
// Metrics exposed (via OpenTelemetry):
//   - mnemo_lookup_latency_ns: Get latencies with automatic percentiles
//   - mnemo_compute_latency_ns: Data source call latencies
//   - mnemo_lookup_hits_total: Counter of cache hits
//   - mnemo_lookup_misses_total: Counter of cache misses
//   - mnemo_computes_failed_total: Counter of failed computations
//   - mnemo_reclamations_total: Counter of reclaimed references
//   - mnemo_expired_total / mnemo_stale_removed_total: Sweep counters
//
// The core mnemo package has zero OTEL dependencies. The mnemo/otel package
// is a separate module.
//
// # Configuration
//
// Complete configuration options:
//
//	config := mnemo.Config{
//	    // Required: the data source computed through on miss
//	    Source: src,
//
//	    // Required: entry lifetime; entries older than TTL are swept
//	    TTL: time.Hour,
//
//	    // Optional: reaper period (default: 1s)
//	    SweepInterval: time.Second,
//
//	    // Optional: residency budget (default: 10_000 entries)
//	    MaxLive: 10_000,
//
//	    // Optional: drop failed computations instead of caching them
//	    EvictOnFailure: false,
//
//	    // Optional: Logger for errors and events (default: no-op)
//	    Logger: myLogger,
//
//	    // Optional: Metrics collector (default: NoOp, zero overhead)
//	    MetricsCollector: collector,
//
//	    // Optional: Custom time provider for testing (default: cached time)
//	    TimeProvider: myTimeProvider,
//
//	    // Optional: callbacks for reclaimed and expired entries
//	    OnEvict:  func(key string) {},
//	    OnExpire: func(key string) {},
//	}
//
// # Error Handling
//
// Mnemo uses structured errors with error codes:
//
//	value, err := cache.Get(ctx, "user:123")
//	if err != nil {
//	    switch {
//	    case mnemo.IsLookupFailed(err):
//	        log.Printf("source failed: %v", err)
//	    case mnemo.IsPanicRecovered(err):
//	        log.Printf("source panicked: %v", err)
//	    case errors.Is(err, context.Canceled):
//	        log.Printf("wait cancelled: %v", err)
//	    }
//	}
//
// Available error codes:
//   - MNEMO_EMPTY_KEY: empty key provided (keys cannot be empty)
//   - MNEMO_NIL_SOURCE: Config.Source is nil
//   - MNEMO_INVALID_TTL: Config.TTL is zero or negative
//   - MNEMO_LOOKUP_FAILED: data source returned an error (retryable)
//   - MNEMO_PANIC_RECOVERED: data source panicked (panic value included)
//   - MNEMO_TYPE_MISMATCH: cached value has the wrong type (Typed API)
//   - MNEMO_CACHE_CLOSED: operation on a closed cache
//
// All errors can be unwrapped and inspected with the go-errors helpers.
//
// # Dynamic Configuration
//
// HotConfig watches a configuration file through Argus and applies TTL,
// MaxLive and EvictOnFailure changes to a running cache without
// reconstruction. See hot-reload.go and the HotConfig type.
//
// # Thread Safety
//
// All exported methods are safe for concurrent use:
//
//	go func() { cache.Get(ctx, "key1") }()
//	go func() { cache.Invalidate("key1") }()
//	go func() { cache.ForceEvict("key1") }()
//	go func() { stats := cache.Stats() }()
//
// Internal synchronization:
//   - Hits: atomic loads plus a closed-channel check
//   - Install decisions: one short-lived instance-wide mutex
//   - Computations: outside all locks, joined through a channel
//   - Residency tier: fine-grained lock around the recency list
//
// # Examples
//
// See the examples directory for complete working examples:
//   - examples/readthrough/: read-through lookups and stampede prevention
//   - examples/errors/: error handling patterns
//   - examples/zaplogger/: adapting a zap logger to the Logger interface
//   - examples/otel-prometheus/: OpenTelemetry + Prometheus integration
//
// # Packages
//
//   - github.com/agilira/mnemo: Core cache implementation
//   - github.com/agilira/mnemo/otel: OpenTelemetry integration (separate module)
//
// # License
//
// See LICENSE file in the repository.
//
// Contributions welcome at https://github.com/agilira/mnemo
package mnemo
