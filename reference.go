// reference.go: reclaimable references to cached computations
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import "sync/atomic"

// entryRef holds a computation through a clearable pointer. The residency
// tier (or ForceEvict) reclaims cold references to release their entries;
// a reclaimed ref dereferences to nil while its key mapping lingers in the
// store until a sweep or a replacing install removes it.
//
// Store mutations compare refs by pointer identity, so each install gets
// a fresh ref and a stale ref can never satisfy a conditional update.
type entryRef struct {
	ptr atomic.Pointer[computation]
}

func newEntryRef(c *computation) *entryRef {
	r := &entryRef{}
	r.ptr.Store(c)
	return r
}

// deref returns the referent, or nil once reclaimed.
func (r *entryRef) deref() *computation {
	return r.ptr.Load()
}

// reclaim clears the reference and reports whether this call cleared it.
// At most one caller observes true, so reclamation side effects (counters,
// callbacks) run exactly once per reference.
func (r *entryRef) reclaim() bool {
	return r.ptr.Swap(nil) != nil
}
