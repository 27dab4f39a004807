// computation.go: run-once deferred computation cell
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import "sync/atomic"

// cacheEntry is the completed product of one computation: the value the
// data source produced and the instant it was produced, which the reaper
// ages against the TTL.
type cacheEntry struct {
	value     interface{}
	createdAt int64 // nanoseconds since epoch, from the cache's TimeProvider
}

// computation is a single-use deferred computation for one key. Exactly
// one goroutine executes it (the owner that installed it); every other
// interested goroutine blocks on done.
//
// entry and err are written strictly before done is closed and never
// mutated afterwards, so any goroutine that observed done closed may read
// them without further synchronization.
type computation struct {
	fn  func() (interface{}, error)
	now func() int64

	started int32 // CAS gate so fn runs at most once
	done    chan struct{}

	entry  *cacheEntry // non-nil on success
	err    error       // non-nil on failure
	doneAt int64       // completion instant, ages failed entries
}

func newComputation(fn func() (interface{}, error), now func() int64) *computation {
	return &computation{
		fn:   fn,
		now:  now,
		done: make(chan struct{}),
	}
}

// run executes fn unless another goroutine already has. It never blocks
// waiting for a concurrent runner; losers return immediately and join
// through done.
func (c *computation) run() {
	if !atomic.CompareAndSwapInt32(&c.started, 0, 1) {
		return
	}

	value, err := c.fn()
	at := c.now()
	if err != nil {
		c.err = err
	} else {
		c.entry = &cacheEntry{value: value, createdAt: at}
	}
	c.doneAt = at
	close(c.done)
}

// finished reports completion without blocking.
func (c *computation) finished() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// outcome returns the result. Valid only after done is closed; callers
// must have observed completion first.
func (c *computation) outcome() (*cacheEntry, error) {
	return c.entry, c.err
}

// completedAt returns the completion instant. For successful computations
// this equals the entry's creation time. Valid only after done is closed.
func (c *computation) completedAt() int64 {
	if c.entry != nil {
		return c.entry.createdAt
	}
	return c.doneAt
}
