// cache.go: core read-through memoizing cache
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// memoCache implements Cache: a key-to-reference store, a residency tier
// bounding how many entries stay strongly held, and a background reaper.
//
// Lookups for distinct keys never serialize on each other. The only
// instance-wide lock is installMu, held for the install decision alone
// and never while a computation runs.
type memoCache struct {
	source DataSource

	store *entryStore
	tier  *residencyTier

	// installMu serializes the decision of which caller installs the
	// computation for a missing or reclaimed key.
	installMu sync.Mutex

	ttlNanos       int64 // atomic; adjustable at runtime
	evictOnFailure int32 // atomic flag; adjustable at runtime
	sweepInterval  time.Duration

	timeProvider TimeProvider
	logger       Logger
	metrics      MetricsCollector

	onEvict  func(key string)
	onExpire func(key string)

	// Reaper lifecycle
	stopCh chan struct{}
	wg     sync.WaitGroup
	closed int32 // atomic flag

	// Atomic statistics counters
	hits          int64
	misses        int64
	computes      int64
	failures      int64
	expirations   int64
	reclamations  int64
	staleRemovals int64
}

// New creates a read-through memoizing cache and starts its background
// reaper. The returned cache must be Closed to stop the reaper.
func New(config Config) (Cache, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &memoCache{
		source:        config.Source,
		store:         &entryStore{},
		ttlNanos:      int64(config.TTL),
		sweepInterval: config.SweepInterval,
		timeProvider:  config.TimeProvider,
		logger:        config.Logger,
		metrics:       config.MetricsCollector,
		onEvict:       config.OnEvict,
		onExpire:      config.OnExpire,
		stopCh:        make(chan struct{}),
	}
	if config.EvictOnFailure {
		c.evictOnFailure = 1
	}
	c.tier = newResidencyTier(config.MaxLive, func(key string, ref *entryRef) {
		c.reclaimRef(key, ref)
	})

	c.wg.Add(1)
	go c.reapLoop()

	return c, nil
}

// Get returns the value for key, computing it through the data source on
// a miss. Exactly one caller owns the computation for a missing key; the
// rest join it and receive the same outcome, including a cached failure.
//
// Returns:
//   - value: the cached or freshly computed value
//   - error: MNEMO_EMPTY_KEY for an empty key,
//     MNEMO_CACHE_CLOSED after Close,
//     MNEMO_LOOKUP_FAILED if the data source failed,
//     MNEMO_PANIC_RECOVERED if the data source panicked,
//     or the context error if the wait was cancelled
//
// Performance:
//   - Cache hit: two atomic loads and a channel check, no locks
//   - Cache miss: source execution time + one short mutex acquisition
//   - Concurrent misses: one source execution, all callers share it
func (c *memoCache) Get(ctx context.Context, key string) (interface{}, error) {
	if key == "" {
		return nil, NewErrEmptyKey("Get")
	}
	if atomic.LoadInt32(&c.closed) == 1 {
		return nil, NewErrCacheClosed("Get")
	}

	start := c.timeProvider.Now()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ref := c.store.get(key)
		var comp *computation
		if ref != nil {
			comp = ref.deref()
		}

		owned := false
		if comp == nil {
			fresh := newComputation(c.newLookup(ctx, key), c.timeProvider.Now)
			freshRef := newEntryRef(fresh)

			c.installMu.Lock()
			if ref == nil {
				if winner, installed := c.store.installIfAbsent(key, freshRef); installed {
					comp, ref, owned = fresh, freshRef, true
				} else {
					ref = winner
					comp = winner.deref()
				}
			} else if c.store.replaceIfCurrent(key, ref, freshRef) {
				comp, ref, owned = fresh, freshRef, true
			}
			c.installMu.Unlock()

			if comp == nil {
				// Lost to a concurrent install or removal; re-read.
				continue
			}
		}

		if owned {
			c.tier.admit(key, ref)
			atomic.AddInt64(&c.misses, 1)

			comp.run()
			entry, err := comp.outcome()
			if err != nil {
				if c.dropFailures() {
					if c.store.removeIfCurrent(key, ref) {
						c.tier.forget(key, ref)
					}
				}
				c.recordLookup(start, false)
				return nil, err
			}
			c.recordLookup(start, false)
			return entry.value, nil
		}

		// Join the computation another caller owns.
		if !comp.finished() {
			select {
			case <-comp.done:
			case <-ctx.Done():
				// Detach. Dropping a still-pending mapping lets the next
				// Get start clean instead of joining an abandoned
				// computation; callers already joined still get the
				// result when the owner completes it.
				if !comp.finished() {
					if c.store.removeIfCurrent(key, ref) {
						c.tier.forget(key, ref)
					}
				}
				continue
			}
		}

		entry, err := comp.outcome()
		c.tier.touch(key)
		atomic.AddInt64(&c.hits, 1)
		c.recordLookup(start, true)
		if err != nil {
			return nil, err
		}
		return entry.value, nil
	}
}

// newLookup builds the run-once body of key's computation: the source
// call wrapped with panic recovery, failure wrapping and compute metrics.
// The closure carries the context of the Get that installed it.
func (c *memoCache) newLookup(ctx context.Context, key string) func() (interface{}, error) {
	return func() (interface{}, error) {
		atomic.AddInt64(&c.computes, 1)
		computeStart := c.timeProvider.Now()

		var value interface{}
		var err error
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = NewErrPanicRecovered("Get:"+key, r)
				}
			}()
			value, err = c.source.Find(ctx, key)
		}()

		failed := err != nil
		c.metrics.RecordCompute(c.timeProvider.Now()-computeStart, failed)
		if failed {
			atomic.AddInt64(&c.failures, 1)
			if !IsPanicRecovered(err) {
				err = NewErrLookupFailed(key, err)
			}
			c.logger.Warn("data source lookup failed", "key", key, "error", err)
			return nil, err
		}
		return value, nil
	}
}

// Invalidate removes the entry for key unconditionally.
// Returns true if a mapping was present and removed.
func (c *memoCache) Invalidate(key string) bool {
	ref := c.store.remove(key)
	if ref == nil {
		return false
	}
	c.tier.forget(key, ref)
	ref.reclaim()
	return true
}

// ForceEvict reclaims the reference held for key, exactly as residency
// pressure would: the entry disappears from readers while its mapping
// lingers until a sweep or a replacing install. The next Get for key
// recomputes. Returns true if a live reference was reclaimed.
func (c *memoCache) ForceEvict(key string) bool {
	ref := c.store.get(key)
	if ref == nil {
		return false
	}
	c.tier.forget(key, ref)
	return c.reclaimRef(key, ref)
}

// reclaimRef clears ref and runs the reclamation side effects. The
// exactly-once guarantee of entryRef.reclaim keeps counters and callbacks
// single-shot even when the tier and ForceEvict race over one reference.
func (c *memoCache) reclaimRef(key string, ref *entryRef) bool {
	if !ref.reclaim() {
		return false
	}
	atomic.AddInt64(&c.reclamations, 1)
	c.metrics.RecordReclamation()
	c.logger.Debug("entry reference reclaimed", "key", key)
	if c.onEvict != nil {
		c.onEvict(key)
	}
	return true
}

// Len returns the current number of mapped entries, including in-flight
// computations and not-yet-swept stale mappings.
func (c *memoCache) Len() int {
	return c.store.len()
}

// Clear removes all entries and resets statistics.
func (c *memoCache) Clear() {
	removed := c.store.reset()
	c.tier.reset()
	for _, e := range removed {
		e.ref.reclaim()
	}

	// Reset counters
	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
	atomic.StoreInt64(&c.computes, 0)
	atomic.StoreInt64(&c.failures, 0)
	atomic.StoreInt64(&c.expirations, 0)
	atomic.StoreInt64(&c.reclamations, 0)
	atomic.StoreInt64(&c.staleRemovals, 0)
}

// Stats returns cache statistics.
func (c *memoCache) Stats() CacheStats {
	return CacheStats{
		Hits:          uint64(atomic.LoadInt64(&c.hits)),          // #nosec G115 - stats counters are always positive
		Misses:        uint64(atomic.LoadInt64(&c.misses)),        // #nosec G115 - stats counters are always positive
		Computes:      uint64(atomic.LoadInt64(&c.computes)),      // #nosec G115 - stats counters are always positive
		Failures:      uint64(atomic.LoadInt64(&c.failures)),      // #nosec G115 - stats counters are always positive
		Expirations:   uint64(atomic.LoadInt64(&c.expirations)),   // #nosec G115 - stats counters are always positive
		Reclamations:  uint64(atomic.LoadInt64(&c.reclamations)),  // #nosec G115 - stats counters are always positive
		StaleRemovals: uint64(atomic.LoadInt64(&c.staleRemovals)), // #nosec G115 - stats counters are always positive
		Size:          c.store.len(),
		Capacity:      c.tier.capacity(),
	}
}

// Close stops the background reaper, releases all entries and resets
// statistics. Subsequent Gets fail with MNEMO_CACHE_CLOSED. Close is
// idempotent; only the first call does the work.
func (c *memoCache) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	close(c.stopCh)
	c.wg.Wait()
	c.Clear()
	return nil
}

// Logger returns the cache's logger so companions like HotConfig can
// inherit the logging destination.
func (c *memoCache) Logger() Logger {
	return c.logger
}

// recordLookup reports one returning Get to the metrics collector.
// Cancelled waits never reach it.
func (c *memoCache) recordLookup(startNs int64, hit bool) {
	c.metrics.RecordLookup(c.timeProvider.Now()-startNs, hit)
}

// dropFailures reports whether failed computations are removed instead
// of cached.
func (c *memoCache) dropFailures() bool {
	return atomic.LoadInt32(&c.evictOnFailure) == 1
}

// setTTL adjusts the entry lifetime used by subsequent sweeps.
func (c *memoCache) setTTL(ttl time.Duration) {
	atomic.StoreInt64(&c.ttlNanos, int64(ttl))
}

// setMaxLive adjusts the residency budget, shedding cold references
// immediately when shrinking.
func (c *memoCache) setMaxLive(n int) {
	c.tier.setCapacity(n)
}

// setEvictOnFailure toggles failure caching at runtime.
func (c *memoCache) setEvictOnFailure(on bool) {
	var v int32
	if on {
		v = 1
	}
	atomic.StoreInt32(&c.evictOnFailure, v)
}
