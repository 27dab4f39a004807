// config.go: configuration for Mnemo
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import (
	"time"

	"github.com/agilira/go-timecache"
)

// Config holds configuration parameters for the cache.
type Config struct {
	// Source computes values on cache misses.
	// Required: New fails with MNEMO_NIL_SOURCE if nil.
	Source DataSource

	// TTL is the time-to-live for cache entries. Entries strictly older
	// than TTL are removed by the reaper.
	// Required: must be > 0, New fails with MNEMO_INVALID_TTL otherwise.
	TTL time.Duration

	// SweepInterval is the period of the background reaper. It is fixed
	// at construction and independent of the TTL.
	// If <= 0, DefaultSweepInterval is used. Default: 1 second.
	SweepInterval time.Duration

	// MaxLive is the residency budget: the maximum number of entries the
	// residency tier keeps strongly referenced. Admitting an entry over
	// budget reclaims the coldest reference.
	// If <= 0, DefaultMaxLive is used. Default: 10,000.
	MaxLive int

	// EvictOnFailure drops failed computations instead of caching them.
	// When false (the default), a source error is remembered and served
	// to subsequent Gets until the entry ages out or is reclaimed.
	EvictOnFailure bool

	// Logger is used for debugging and monitoring.
	// If nil, NoOpLogger is used. Default: NoOpLogger.
	Logger Logger

	// TimeProvider provides current time for TTL calculations.
	// If nil, a default implementation is used. Default: cached system time.
	TimeProvider TimeProvider

	// MetricsCollector is used for collecting operation metrics (latencies, hit/miss rates).
	// If nil, NoOpMetricsCollector is used (zero overhead). Default: NoOpMetricsCollector.
	// Use this to integrate with Prometheus, DataDog, StatsD, or other monitoring systems.
	MetricsCollector MetricsCollector

	// OnEvict is called when the residency tier or ForceEvict reclaims a
	// reference. This callback must be fast and non-blocking.
	OnEvict func(key string)

	// OnExpire is called when the reaper removes an entry past its TTL.
	// This callback must be fast and non-blocking.
	OnExpire func(key string)
}

// Validate checks configuration parameters and applies sensible defaults.
// Hard requirements (a usable Source, a positive TTL) yield errors; the
// remaining fields are normalized in place.
//
// This method is automatically called by New and NewTyped, so you typically
// don't need to call it manually. However, it's provided as a public API if
// you want to inspect the normalized configuration before creating a cache.
//
// Default values applied:
//   - SweepInterval: DefaultSweepInterval (1s) if <= 0
//   - MaxLive: DefaultMaxLive (10,000) if <= 0
//   - Logger: NoOpLogger{} if nil
//   - TimeProvider: systemTimeProvider{} if nil
//   - MetricsCollector: NoOpMetricsCollector{} if nil
func (c *Config) Validate() error {
	if c.Source == nil {
		return NewErrNilSource()
	}

	if c.TTL <= 0 {
		return NewErrInvalidTTL(c.TTL)
	}

	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}

	if c.MaxLive <= 0 {
		c.MaxLive = DefaultMaxLive
	}

	if c.Logger == nil {
		c.Logger = NoOpLogger{}
	}

	if c.TimeProvider == nil {
		c.TimeProvider = &systemTimeProvider{}
	}

	if c.MetricsCollector == nil {
		c.MetricsCollector = NoOpMetricsCollector{}
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
// Source and TTL remain zero and must be set before use.
func DefaultConfig() Config {
	return Config{
		SweepInterval:    DefaultSweepInterval,
		MaxLive:          DefaultMaxLive,
		Logger:           NoOpLogger{},
		TimeProvider:     &systemTimeProvider{},
		MetricsCollector: NoOpMetricsCollector{},
	}
}

// systemTimeProvider is the default time provider using go-timecache.
// This provides ~121x faster time access compared to time.Now() with zero allocations.
type systemTimeProvider struct{}

func (t *systemTimeProvider) Now() int64 {
	return timecache.CachedTimeNano()
}
