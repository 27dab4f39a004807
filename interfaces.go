// interfaces.go: public interfaces for Mnemo
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import "context"

// DataSource computes the value for a key. The cache calls Find at most
// once per key per cache generation; concurrent Gets for the same missing
// key share one Find call.
//
// Find receives the context of the Get that owns the computation. It may
// block, and it must be safe for concurrent use across distinct keys.
// Returning an error caches the failure (see Config.EvictOnFailure).
type DataSource interface {
	// Find computes the value for key. A nil error means the returned
	// value is cached and delivered to every waiting caller.
	Find(ctx context.Context, key string) (interface{}, error)
}

// DataSourceFunc adapts a plain function to the DataSource interface.
type DataSourceFunc func(ctx context.Context, key string) (interface{}, error)

// Find calls f(ctx, key).
func (f DataSourceFunc) Find(ctx context.Context, key string) (interface{}, error) {
	return f(ctx, key)
}

// Cache represents a read-through memoizing cache.
// All methods must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key, computing it through the data source
	// on a miss. Concurrent Gets for the same missing key share a single
	// computation; the losers block until it completes or ctx is done.
	//
	// A cached failure is returned as a MNEMO_LOOKUP_FAILED error without
	// re-invoking the source. A cancelled wait returns ctx.Err().
	Get(ctx context.Context, key string) (interface{}, error)

	// Invalidate removes an entry from the cache.
	// Returns true if the entry was present and removed.
	Invalidate(key string) bool

	// ForceEvict reclaims the reference held for key, as residency
	// pressure would. The mapping lingers until swept or replaced; the
	// next Get for key recomputes. Returns true if a live reference
	// was reclaimed.
	ForceEvict(key string) bool

	// SweepNow runs one synchronous sweep on the caller's goroutine and
	// returns the number of expired entries and stale mappings removed.
	// The background reaper performs the same sweep on its own schedule.
	SweepNow() (expired int, stale int)

	// Len returns the current number of mapped entries, including
	// in-flight computations and not-yet-swept stale mappings.
	Len() int

	// Clear removes all entries and resets statistics.
	// Note: This operation is not atomic. During Clear(), other goroutines
	// may still read/compute, potentially observing a partially cleared cache.
	// This is acceptable for most use cases (cache flush, shutdown, testing).
	Clear()

	// Stats returns cache statistics.
	Stats() CacheStats

	// Close stops the background reaper and releases all entries.
	// Subsequent Gets return MNEMO_CACHE_CLOSED. Close is idempotent.
	Close() error
}

// CacheStats provides statistics about cache performance.
type CacheStats struct {
	// Hits is the number of Gets answered from a completed entry
	Hits uint64

	// Misses is the number of Gets that had to compute
	Misses uint64

	// Computes is the number of data source calls started
	Computes uint64

	// Failures is the number of data source calls that failed or panicked
	Failures uint64

	// Expirations is the number of entries removed for exceeding the TTL
	Expirations uint64

	// Reclamations is the number of references cleared by the residency
	// tier or ForceEvict
	Reclamations uint64

	// StaleRemovals is the number of reclaimed mappings removed by sweeps
	StaleRemovals uint64

	// Size is the current number of mapped entries
	Size int

	// Capacity is the residency budget (Config.MaxLive)
	Capacity int
}

// HitRatio returns the cache hit ratio as a percentage (0-100).
// Returns 0.0 if no Get operations have completed yet.
// Formula: (Hits / (Hits + Misses)) * 100
func (s CacheStats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Logger defines a minimal logging interface with zero overhead.
// Implementations should use structured logging and be allocation-free.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, keyvals ...interface{})

	// Info logs an info message with optional key-value pairs.
	Info(msg string, keyvals ...interface{})

	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, keyvals ...interface{})

	// Error logs an error message with optional key-value pairs.
	Error(msg string, keyvals ...interface{})
}

// NoOpLogger is a logger that does nothing. Used as default to avoid nil checks.
type NoOpLogger struct{}

// Debug does nothing (no-op implementation).
func (NoOpLogger) Debug(msg string, keyvals ...interface{}) {}

// Info does nothing (no-op implementation).
func (NoOpLogger) Info(msg string, keyvals ...interface{}) {}

// Warn does nothing (no-op implementation).
func (NoOpLogger) Warn(msg string, keyvals ...interface{}) {}

// Error does nothing (no-op implementation).
func (NoOpLogger) Error(msg string, keyvals ...interface{}) {}

// TimeProvider provides current time with caching for performance.
// This interface allows injecting optimized time implementations.
type TimeProvider interface {
	// Now returns the current time in nanoseconds since epoch.
	// This method must be very fast and allocation-free.
	Now() int64
}

// MetricsCollector defines an interface for collecting cache operation metrics.
// Implementations can send metrics to Prometheus, DataDog, StatsD, or other monitoring systems.
// This interface is designed for zero overhead when nil - no metrics are collected.
//
// Performance requirements:
//   - All methods must be lock-free or use minimal locking
//   - All methods must be allocation-free
//   - All methods must complete in < 100ns for production use
//
// Thread-safety:
//   - All methods must be safe for concurrent use
//   - Multiple goroutines will call these methods simultaneously
type MetricsCollector interface {
	// RecordLookup records a completed Get with its latency and hit/miss
	// result. latencyNs is the duration of the Get in nanoseconds; hit
	// indicates whether the caller joined an existing entry (true) or
	// owned the computation (false).
	RecordLookup(latencyNs int64, hit bool)

	// RecordCompute records a data source call with its latency.
	// failed indicates whether the call returned an error or panicked.
	RecordCompute(latencyNs int64, failed bool)

	// RecordReclamation records one reference cleared by the residency
	// tier or ForceEvict.
	RecordReclamation()

	// RecordSweep records the outcome of one reaper sweep.
	// expired is the number of entries removed for age, stale the number
	// of reclaimed mappings removed.
	RecordSweep(expired int, stale int)
}

// NoOpMetricsCollector is a metrics collector that does nothing.
// Used as default to avoid nil checks and ensure zero overhead.
// All methods are inlined by the compiler for maximum performance.
type NoOpMetricsCollector struct{}

// RecordLookup does nothing. Inlined by compiler.
func (NoOpMetricsCollector) RecordLookup(latencyNs int64, hit bool) {}

// RecordCompute does nothing. Inlined by compiler.
func (NoOpMetricsCollector) RecordCompute(latencyNs int64, failed bool) {}

// RecordReclamation does nothing. Inlined by compiler.
func (NoOpMetricsCollector) RecordReclamation() {}

// RecordSweep does nothing. Inlined by compiler.
func (NoOpMetricsCollector) RecordSweep(expired int, stale int) {}
