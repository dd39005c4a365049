// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryCache_BasicOperations(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      time.Hour,
		MaxSize:         100,
		CleanupInterval: 0, // No background cleanup for tests
	})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	err := cache.Set(ctx, "key1", []byte("value1"), 0)
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, err := cache.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != "value1" {
		t.Errorf("expected value1, got %s", string(val))
	}

	has, err := cache.Has(ctx, "key1")
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if !has {
		t.Error("expected key1 to exist")
	}

	err = cache.Delete(ctx, "key1")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err = cache.Get(ctx, "key1")
	if err != ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      50 * time.Millisecond,
		CleanupInterval: 0,
	})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	if err := cache.Set(ctx, "expiring", []byte("value"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Should exist immediately
	if _, err := cache.Get(ctx, "expiring"); err != nil {
		t.Error("expected key to exist immediately")
	}

	time.Sleep(60 * time.Millisecond)

	_, err := cache.Get(ctx, "expiring")
	if err != ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss after expiration, got %v", err)
	}
}

func TestMemoryCache_DeleteByPrefix(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	_ = cache.Set(ctx, "view:post:1", []byte("1"), 0)
	_ = cache.Set(ctx, "view:post:2", []byte("1"), 0)
	_ = cache.Set(ctx, "ipguard:settings", []byte("1"), 0)

	if err := cache.DeleteByPrefix(ctx, "view:"); err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}

	if _, err := cache.Get(ctx, "view:post:1"); err != ErrCacheMiss {
		t.Errorf("expected view:post:1 removed, got %v", err)
	}
	if _, err := cache.Get(ctx, "ipguard:settings"); err != nil {
		t.Errorf("expected ipguard:settings to survive, got %v", err)
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n)
			for j := 0; j < 100; j++ {
				_ = cache.Set(ctx, key, []byte("v"), 0)
				_, _ = cache.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()
}

func TestMemoryCache_Closed(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour})
	ctx := context.Background()

	if err := cache.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := cache.Get(ctx, "key"); err != ErrCacheClosed {
		t.Errorf("expected ErrCacheClosed, got %v", err)
	}
	if err := cache.Set(ctx, "key", []byte("v"), 0); err != ErrCacheClosed {
		t.Errorf("expected ErrCacheClosed, got %v", err)
	}

	// Double close is a no-op
	if err := cache.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour})
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	_ = cache.Set(ctx, "key", []byte("v"), 0)
	_, _ = cache.Get(ctx, "key")
	_, _ = cache.Get(ctx, "missing")

	stats := cache.Stats()
	if stats.Hits != 1 {
		t.Errorf("Hits = %d, want 1", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
	if stats.Sets != 1 {
		t.Errorf("Sets = %d, want 1", stats.Sets)
	}
}
