// store.go: concurrent key-to-reference store
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import (
	"sync"
	"sync/atomic"
)

// storedEntry is one (key, reference) mapping captured by snapshot.
type storedEntry struct {
	key string
	ref *entryRef
}

// entryStore maps keys to entry references with atomic conditional
// mutations. Every mutation is conditional on the currently mapped
// reference (pointer identity), which lets installers, sweepers and
// invalidators race without holding any lock across a computation: a
// mutation keyed to a reference that has since been replaced simply
// fails and the caller re-reads.
type entryStore struct {
	m    sync.Map // string -> *entryRef
	size int64    // mapped entry count, kept exact via conditional ops
}

// get returns the mapped reference for key, or nil if absent.
func (s *entryStore) get(key string) *entryRef {
	v, ok := s.m.Load(key)
	if !ok {
		return nil
	}
	return v.(*entryRef)
}

// installIfAbsent maps key to ref unless a mapping already exists.
// Returns the winning reference and whether ref was installed.
func (s *entryStore) installIfAbsent(key string, ref *entryRef) (*entryRef, bool) {
	actual, loaded := s.m.LoadOrStore(key, ref)
	if loaded {
		return actual.(*entryRef), false
	}
	atomic.AddInt64(&s.size, 1)
	return ref, true
}

// replaceIfCurrent swaps the mapping for key from observed to next.
// Returns false when observed is nil or no longer the mapped reference;
// the caller re-reads and retries.
func (s *entryStore) replaceIfCurrent(key string, observed, next *entryRef) bool {
	if observed == nil {
		return false
	}
	return s.m.CompareAndSwap(key, observed, next)
}

// removeIfCurrent unmaps key only while observed is still its reference,
// so a removal aimed at a stale entry can never take out a replacement
// installed in the meantime.
func (s *entryStore) removeIfCurrent(key string, observed *entryRef) bool {
	if observed == nil {
		return false
	}
	if s.m.CompareAndDelete(key, observed) {
		atomic.AddInt64(&s.size, -1)
		return true
	}
	return false
}

// remove unmaps key unconditionally and returns the removed reference,
// or nil if the key was not mapped.
func (s *entryStore) remove(key string) *entryRef {
	v, loaded := s.m.LoadAndDelete(key)
	if !loaded {
		return nil
	}
	atomic.AddInt64(&s.size, -1)
	return v.(*entryRef)
}

// snapshot captures the current mappings. Sweeps iterate the snapshot so
// concurrent removals cannot skip or revisit entries mid-walk.
func (s *entryStore) snapshot() []storedEntry {
	entries := make([]storedEntry, 0, s.len())
	s.m.Range(func(k, v interface{}) bool {
		entries = append(entries, storedEntry{key: k.(string), ref: v.(*entryRef)})
		return true
	})
	return entries
}

// len returns the current number of mapped entries.
func (s *entryStore) len() int {
	return int(atomic.LoadInt64(&s.size))
}

// reset removes every mapping present at the start of the call and
// returns the removed entries. Mappings installed concurrently survive,
// with the count kept exact.
func (s *entryStore) reset() []storedEntry {
	entries := s.snapshot()
	for _, e := range entries {
		if s.m.CompareAndDelete(e.key, e.ref) {
			atomic.AddInt64(&s.size, -1)
		}
	}
	return entries
}
