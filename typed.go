// typed.go: type-safe generic API over the cache
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import (
	"context"
	"fmt"
)

// Typed wraps a Cache with compile-time type checking for values. Keys
// remain strings; only the value side is typed. A cached value whose
// dynamic type is not V yields MNEMO_TYPE_MISMATCH, which can happen when
// several typed views share one cache.
type Typed[V any] struct {
	inner Cache
}

// NewTyped creates a read-through cache and wraps it with a typed API.
//
// Example:
//
//	users, err := mnemo.NewTyped[User](mnemo.Config{
//	    Source: userSource,
//	    TTL:    time.Minute,
//	})
//	user, err := users.Get(ctx, "user:123") // user is User
func NewTyped[V any](config Config) (*Typed[V], error) {
	inner, err := New(config)
	if err != nil {
		return nil, err
	}
	return &Typed[V]{inner: inner}, nil
}

// AsTyped wraps an existing cache with a typed view without creating a
// new one. Useful to share one cache and its reaper across call sites.
func AsTyped[V any](cache Cache) *Typed[V] {
	return &Typed[V]{inner: cache}
}

// Get returns the typed value for key, computing it through the data
// source on a miss. Carries the same semantics as Cache.Get plus a
// dynamic type check on the cached value.
func (t *Typed[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V
	value, err := t.inner.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	typed, ok := value.(V)
	if !ok {
		return zero, NewErrTypeMismatch(key, fmt.Sprintf("%T", zero), fmt.Sprintf("%T", value))
	}
	return typed, nil
}

// Invalidate removes an entry. See Cache.Invalidate.
func (t *Typed[V]) Invalidate(key string) bool {
	return t.inner.Invalidate(key)
}

// ForceEvict reclaims the reference held for key. See Cache.ForceEvict.
func (t *Typed[V]) ForceEvict(key string) bool {
	return t.inner.ForceEvict(key)
}

// SweepNow runs one synchronous sweep. See Cache.SweepNow.
func (t *Typed[V]) SweepNow() (expired int, stale int) {
	return t.inner.SweepNow()
}

// Len returns the current number of mapped entries.
func (t *Typed[V]) Len() int {
	return t.inner.Len()
}

// Clear removes all entries and resets statistics.
func (t *Typed[V]) Clear() {
	t.inner.Clear()
}

// Stats returns cache statistics.
func (t *Typed[V]) Stats() CacheStats {
	return t.inner.Stats()
}

// Close stops the background reaper and releases all entries.
func (t *Typed[V]) Close() error {
	return t.inner.Close()
}

// Unwrap returns the underlying untyped cache.
func (t *Typed[V]) Unwrap() Cache {
	return t.inner
}
