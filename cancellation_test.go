// cancellation_test.go: tests for context cancellation during lookups
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import (
	"context"
	goerrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGet_ContextAlreadyCancelled(t *testing.T) {
	src := &staticSource{}
	cache, err := New(Config{Source: src, TTL: time.Minute})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = cache.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = cache.Get(ctx, "alpha")
	if !goerrors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if src.Finds() != 0 {
		t.Errorf("finds = %d, want 0 (cancelled Get must not compute)", src.Finds())
	}
}

// TestGet_JoinerCancelled verifies a cancelled joiner detaches with the
// context error while the owner and the remaining joiners complete
// normally with the computed value.
func TestGet_JoinerCancelled(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	var finds int64

	cache, err := New(Config{
		Source: DataSourceFunc(func(ctx context.Context, key string) (interface{}, error) {
			atomic.AddInt64(&finds, 1)
			started <- struct{}{}
			<-release
			return 42, nil
		}),
		TTL: time.Minute,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = cache.Close() }()

	// Owner.
	ownerDone := make(chan struct{})
	var ownerValue interface{}
	var ownerErr error
	go func() {
		defer close(ownerDone)
		ownerValue, ownerErr = cache.Get(context.Background(), "Q")
	}()
	<-started

	// Patient joiners, parked on the pending computation before the
	// impatient one's deadline can fire.
	const joiners = 10
	var wg sync.WaitGroup
	joinerValues := make([]interface{}, joiners)
	joinerErrs := make([]error, joiners)
	wg.Add(joiners)
	for i := 0; i < joiners; i++ {
		go func(index int) {
			defer wg.Done()
			joinerValues[index], joinerErrs[index] = cache.Get(context.Background(), "Q")
		}(i)
	}
	time.Sleep(20 * time.Millisecond)

	// Impatient joiner with its own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, impatientErr := cache.Get(ctx, "Q")
	if !goerrors.Is(impatientErr, context.DeadlineExceeded) {
		t.Errorf("impatient joiner error = %v, want context.DeadlineExceeded", impatientErr)
	}

	close(release)
	<-ownerDone
	wg.Wait()

	if ownerErr != nil {
		t.Fatalf("owner failed: %v", ownerErr)
	}
	if ownerValue != 42 {
		t.Errorf("owner value = %v, want 42", ownerValue)
	}
	for i := 0; i < joiners; i++ {
		if joinerErrs[i] != nil {
			t.Errorf("joiner %d failed: %v", i, joinerErrs[i])
		}
		if joinerValues[i] != 42 {
			t.Errorf("joiner %d value = %v, want 42", i, joinerValues[i])
		}
	}

	if got := atomic.LoadInt64(&finds); got != 1 {
		t.Errorf("finds = %d, want 1", got)
	}
}

// TestGet_CancelledJoinerCleanup verifies the detach cleanup: a joiner
// cancelled mid-wait removes the pending mapping best-effort, so a later
// herd elects exactly one fresh owner instead of joining the abandoned
// computation.
func TestGet_CancelledJoinerCleanup(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	var finds int64

	cache, err := New(Config{
		Source: DataSourceFunc(func(ctx context.Context, key string) (interface{}, error) {
			n := atomic.AddInt64(&finds, 1)
			started <- struct{}{}
			if n == 1 {
				<-release
			}
			return n, nil
		}),
		TTL: time.Minute,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = cache.Close() }()

	ownerDone := make(chan struct{})
	go func() {
		defer close(ownerDone)
		_, _ = cache.Get(context.Background(), "Q")
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if _, err := cache.Get(ctx, "Q"); !goerrors.Is(err, context.Canceled) {
		t.Fatalf("cancelled joiner error = %v, want context.Canceled", err)
	}

	// The cancelled joiner discarded the pending mapping; a new herd
	// must elect exactly one new owner rather than wait on the old one.
	const herdSize = 20
	var wg sync.WaitGroup
	wg.Add(herdSize)
	for i := 0; i < herdSize; i++ {
		go func() {
			defer wg.Done()
			if _, err := cache.Get(context.Background(), "Q"); err != nil {
				t.Errorf("herd Get failed: %v", err)
			}
		}()
	}

	// Wait for the second computation to start, then let the first owner
	// finish too.
	<-started
	close(release)
	<-ownerDone
	wg.Wait()

	if got := atomic.LoadInt64(&finds); got != 2 {
		t.Errorf("finds = %d, want 2 (one abandoned, one fresh)", got)
	}
}

// TestGet_OwnerCancellationIsCachedFailure documents the contract for the
// owner path: cancellation that interrupts the owner's own source call
// surfaces as a failed computation, which is then cached for the key like
// any other failure.
func TestGet_OwnerCancellationIsCachedFailure(t *testing.T) {
	var finds int64
	cache, err := New(Config{
		Source: DataSourceFunc(func(ctx context.Context, key string) (interface{}, error) {
			atomic.AddInt64(&finds, 1)
			select {
			case <-time.After(time.Minute):
				return "too late", nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}),
		TTL: time.Minute,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = cache.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = cache.Get(ctx, "Q")
	if err == nil {
		t.Fatal("owner Get should fail when its context expires mid-compute")
	}
	if !IsLookupFailed(err) {
		t.Errorf("expected MNEMO_LOOKUP_FAILED wrapping the context error, got %v", err)
	}
	if !goerrors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error should wrap context.DeadlineExceeded, got %v", err)
	}

	// The failure is cached: a later Get re-raises it without recomputing.
	_, err2 := cache.Get(context.Background(), "Q")
	if err2 == nil {
		t.Fatal("second Get should surface the cached failure")
	}
	if got := atomic.LoadInt64(&finds); got != 1 {
		t.Errorf("finds = %d, want 1", got)
	}
}
