// residency_test.go: tests for the residency tier and reference reclamation
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// pinnedRef wraps a finished computation in a fresh reference, the shape
// the tier pins in production.
func pinnedRef() *entryRef {
	c := newComputation(func() (interface{}, error) { return "v", nil }, func() int64 { return 0 })
	c.run()
	return newEntryRef(c)
}

// reclaimRecorder collects reclamation callbacks and reclaims the shed
// references the way the cache does.
type reclaimRecorder struct {
	mu   sync.Mutex
	keys []string
}

func (r *reclaimRecorder) hook() func(key string, ref *entryRef) {
	return func(key string, ref *entryRef) {
		ref.reclaim()
		r.mu.Lock()
		r.keys = append(r.keys, key)
		r.mu.Unlock()
	}
}

func (r *reclaimRecorder) reclaimed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.keys...)
}

func TestResidencyTier_AdmitWithinBudget(t *testing.T) {
	rec := &reclaimRecorder{}
	tier := newResidencyTier(3, rec.hook())

	for i := 0; i < 3; i++ {
		tier.admit("key"+strconv.Itoa(i), pinnedRef())
	}

	if tier.len() != 3 {
		t.Errorf("tier len = %d, want 3", tier.len())
	}
	if got := rec.reclaimed(); len(got) != 0 {
		t.Errorf("reclaimed within budget = %v, want none", got)
	}
}

func TestResidencyTier_ShedsColdestOverBudget(t *testing.T) {
	rec := &reclaimRecorder{}
	tier := newResidencyTier(2, rec.hook())

	oldest := pinnedRef()
	tier.admit("oldest", oldest)
	tier.admit("middle", pinnedRef())
	tier.admit("newest", pinnedRef())

	if tier.len() != 2 {
		t.Errorf("tier len = %d, want 2", tier.len())
	}
	got := rec.reclaimed()
	if len(got) != 1 || got[0] != "oldest" {
		t.Errorf("reclaimed = %v, want [oldest]", got)
	}
	if oldest.deref() != nil {
		t.Error("shed reference should dereference to nil")
	}
}

func TestResidencyTier_TouchRefreshesRecency(t *testing.T) {
	rec := &reclaimRecorder{}
	tier := newResidencyTier(2, rec.hook())

	tier.admit("a", pinnedRef())
	tier.admit("b", pinnedRef())
	tier.touch("a") // b is now the coldest
	tier.admit("c", pinnedRef())

	got := rec.reclaimed()
	if len(got) != 1 || got[0] != "b" {
		t.Errorf("reclaimed = %v, want [b]", got)
	}
}

// Re-admitting a key replaces the pinned generation in place without
// shedding and without growing the tier.
func TestResidencyTier_AdmitReplacesGeneration(t *testing.T) {
	rec := &reclaimRecorder{}
	tier := newResidencyTier(2, rec.hook())

	first := pinnedRef()
	second := pinnedRef()
	tier.admit("key", first)
	tier.admit("key", second)

	if tier.len() != 1 {
		t.Errorf("tier len = %d, want 1", tier.len())
	}
	if got := rec.reclaimed(); len(got) != 0 {
		t.Errorf("reclaimed = %v, want none", got)
	}

	// A forget aimed at the superseded generation must not unpin the
	// current one.
	if tier.forget("key", first) {
		t.Error("forget with a stale reference should fail")
	}
	if !tier.forget("key", second) {
		t.Error("forget with the current reference should succeed")
	}
	if tier.len() != 0 {
		t.Errorf("tier len after forget = %d, want 0", tier.len())
	}
}

func TestResidencyTier_TouchUnknownKey(t *testing.T) {
	tier := newResidencyTier(2, func(string, *entryRef) {})
	tier.touch("ghost") // must not panic
	if tier.len() != 0 {
		t.Errorf("tier len = %d, want 0", tier.len())
	}
}

func TestResidencyTier_SetCapacityShrinks(t *testing.T) {
	rec := &reclaimRecorder{}
	tier := newResidencyTier(4, rec.hook())

	for i := 0; i < 4; i++ {
		tier.admit("key"+strconv.Itoa(i), pinnedRef())
	}

	tier.setCapacity(2)

	if tier.capacity() != 2 {
		t.Errorf("capacity = %d, want 2", tier.capacity())
	}
	if tier.len() != 2 {
		t.Errorf("tier len = %d, want 2", tier.len())
	}
	got := rec.reclaimed()
	if len(got) != 2 || got[0] != "key0" || got[1] != "key1" {
		t.Errorf("reclaimed = %v, want the two coldest in order", got)
	}
}

func TestResidencyTier_MinimumCapacity(t *testing.T) {
	tier := newResidencyTier(0, func(string, *entryRef) {})
	if tier.capacity() != 1 {
		t.Errorf("capacity = %d, want clamped to 1", tier.capacity())
	}

	tier.setCapacity(-5)
	if tier.capacity() != 1 {
		t.Errorf("capacity after negative resize = %d, want 1", tier.capacity())
	}
}

func TestResidencyTier_Reset(t *testing.T) {
	rec := &reclaimRecorder{}
	tier := newResidencyTier(4, rec.hook())
	for i := 0; i < 3; i++ {
		tier.admit("key"+strconv.Itoa(i), pinnedRef())
	}

	tier.reset()

	if tier.len() != 0 {
		t.Errorf("tier len after reset = %d, want 0", tier.len())
	}
	// Reset drops pins without reclaiming.
	if got := rec.reclaimed(); len(got) != 0 {
		t.Errorf("reclaimed on reset = %v, want none", got)
	}
}

// TestCache_ResidencyPressureRecomputes is the reclamation re-fetch
// property: once the residency tier sheds a key under capacity pressure,
// the next Get for that key recomputes instead of returning a stale value.
func TestCache_ResidencyPressureRecomputes(t *testing.T) {
	src := &staticSource{}
	cache, err := New(Config{Source: src, TTL: time.Minute, MaxLive: 2})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = cache.Close() }()

	ctx := context.Background()
	for _, key := range []string{"a", "b", "c"} {
		if _, err := cache.Get(ctx, key); err != nil {
			t.Fatalf("Get(%q) failed: %v", key, err)
		}
	}

	// "a" was the coldest and has been shed; its mapping lingers.
	stats := cache.Stats()
	if stats.Reclamations != 1 {
		t.Fatalf("reclamations = %d, want 1", stats.Reclamations)
	}

	value, err := cache.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get after reclamation failed: %v", err)
	}
	if value != "value:a" {
		t.Errorf("Get = %v, want value:a", value)
	}
	if src.Finds() != 4 {
		t.Errorf("finds = %d, want 4 (three initial + one recompute)", src.Finds())
	}
}

func TestCache_ForceEvict(t *testing.T) {
	src := &staticSource{}
	var evicted []string
	cache, err := New(Config{
		Source:  src,
		TTL:     time.Minute,
		OnEvict: func(key string) { evicted = append(evicted, key) },
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = cache.Close() }()

	ctx := context.Background()

	if cache.ForceEvict("missing") {
		t.Error("ForceEvict of an absent key should return false")
	}

	if _, err := cache.Get(ctx, "alpha"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if !cache.ForceEvict("alpha") {
		t.Error("ForceEvict of a live key should return true")
	}
	if cache.ForceEvict("alpha") {
		t.Error("ForceEvict of an already reclaimed key should return false")
	}

	if len(evicted) != 1 || evicted[0] != "alpha" {
		t.Errorf("OnEvict keys = %v, want [alpha]", evicted)
	}

	// The next Get recomputes through the replace path.
	if _, err := cache.Get(ctx, "alpha"); err != nil {
		t.Fatalf("Get after ForceEvict failed: %v", err)
	}
	if src.Finds() != 2 {
		t.Errorf("finds = %d, want 2", src.Finds())
	}

	stats := cache.Stats()
	if stats.Reclamations != 1 {
		t.Errorf("reclamations = %d, want 1", stats.Reclamations)
	}
}

// TestCache_ForceEvictDuringHerd reclaims a key while a herd is joined to
// its still-pending computation; the owner completes unobserved and a
// later Get recomputes.
func TestCache_ForceEvictDuringHerd(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	var finds int64
	src := DataSourceFunc(func(ctx context.Context, key string) (interface{}, error) {
		n := atomic.AddInt64(&finds, 1)
		started <- struct{}{}
		if n == 1 {
			<-release
		}
		return n, nil
	})

	cache, err := New(Config{Source: src, TTL: time.Minute})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = cache.Close() }()

	ownerDone := make(chan struct{})
	go func() {
		defer close(ownerDone)
		value, err := cache.Get(context.Background(), "Q")
		if err != nil {
			t.Errorf("owner failed: %v", err)
		}
		if value != int64(1) {
			t.Errorf("owner value = %v, want 1", value)
		}
	}()
	<-started

	// Reclaim the pending entry out from under the owner.
	if !cache.ForceEvict("Q") {
		t.Fatal("ForceEvict of a pending entry should succeed")
	}
	close(release)
	<-ownerDone

	// The mapping now dereferences to nil; the next Get installs fresh.
	value, err := cache.Get(context.Background(), "Q")
	if err != nil {
		t.Fatalf("Get after eviction failed: %v", err)
	}
	if value != int64(2) {
		t.Errorf("Get = %v, want 2 (fresh computation)", value)
	}
	<-started
}
