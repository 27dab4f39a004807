// reaper.go: background TTL reaper
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import (
	"sync/atomic"
	"time"
)

// reapLoop drives the background reaper: one fixed settling delay after
// construction, then a sweep every SweepInterval until Close. The period
// is fixed at construction and independent of the TTL; TTL changes apply
// to the next sweep without rescheduling.
func (c *memoCache) reapLoop() {
	defer c.wg.Done()

	initial := time.NewTimer(sweepInitialDelay)
	defer initial.Stop()

	select {
	case <-initial.C:
	case <-c.stopCh:
		return
	}
	c.runSweep()

	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.runSweep()
		case <-c.stopCh:
			return
		}
	}
}

// SweepNow runs one synchronous sweep on the caller's goroutine and
// returns the number of expired entries and stale mappings removed.
// Combined with a custom TimeProvider this makes expiry deterministic in
// tests; the background reaper performs the same sweep on its schedule.
func (c *memoCache) SweepNow() (expired int, stale int) {
	return c.runSweep()
}

// runSweep walks a snapshot of the store once, removing mappings whose
// reference was reclaimed and entries strictly older than the TTL.
func (c *memoCache) runSweep() (expired, stale int) {
	now := c.timeProvider.Now()
	ttl := atomic.LoadInt64(&c.ttlNanos)

	for _, e := range c.store.snapshot() {
		x, s := c.sweepEntry(e.key, e.ref, now, ttl)
		expired += x
		stale += s
	}

	if expired > 0 || stale > 0 {
		atomic.AddInt64(&c.expirations, int64(expired))
		atomic.AddInt64(&c.staleRemovals, int64(stale))
		c.logger.Debug("sweep removed entries", "expired", expired, "stale", stale)
	}
	c.metrics.RecordSweep(expired, stale)
	return expired, stale
}

// sweepEntry examines one mapping. A panic raised while examining an
// entry (a hostile OnExpire callback, for one) is confined to that entry;
// the sweep moves on and the reaper survives.
//
// Entries still computing are skipped whatever their age: a pending
// computation has no completion time to age against, and removing it
// would orphan the callers joined to it.
func (c *memoCache) sweepEntry(key string, ref *entryRef, now, ttl int64) (expired, stale int) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("sweep fault confined to entry",
				"key", key, "error", NewErrPanicRecovered("sweep:"+key, r))
		}
	}()

	comp := ref.deref()
	if comp == nil {
		// Reclaimed reference, lingering mapping.
		if c.store.removeIfCurrent(key, ref) {
			stale = 1
		}
		return
	}

	if !comp.finished() {
		return
	}

	if now-comp.completedAt() > ttl {
		if c.store.removeIfCurrent(key, ref) {
			c.tier.forget(key, ref)
			expired = 1
			if c.onExpire != nil {
				c.onExpire(key)
			}
		}
	}
	return
}
