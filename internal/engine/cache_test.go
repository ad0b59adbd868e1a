package engine

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestCacheKey(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		k1 := CacheKey("top_videos", "UClb90NQQcskPUGDIXsQEz5Q", "50")
		k2 := CacheKey("top_videos", "UClb90NQQcskPUGDIXsQEz5Q", "50")
		if k1 != k2 {
			t.Errorf("CacheKey not deterministic: %q != %q", k1, k2)
		}
	})

	t.Run("different inputs differ", func(t *testing.T) {
		k1 := CacheKey("top_videos", "a", "10")
		k2 := CacheKey("top_videos", "a", "20")
		if k1 == k2 {
			t.Errorf("different inputs produced same key: %q", k1)
		}
	})

	t.Run("has prefix", func(t *testing.T) {
		k := CacheKey("test")
		if k[:3] != "yc:" {
			t.Errorf("expected yc: prefix, got %q", k[:3])
		}
	})
}

func TestCacheLoadStoreJSON(t *testing.T) {
	// Init minimal cache (no Redis)
	InitCache("", 1*time.Minute, 100, 5*time.Minute)

	ctx := context.Background()
	key := CacheKey("test", "round-trip")

	if _, ok := CacheLoadJSON[[]VideoDescriptor](ctx, key); ok {
		t.Error("expected cache miss on empty cache")
	}

	want := []VideoDescriptor{{OwnerName: "Dev Ed", VideoID: "9ODGKI_VAmE", Title: "I React To Viewers Projects!"}}
	CacheStoreJSON(ctx, key, want)

	got, ok := CacheLoadJSON[[]VideoDescriptor](ctx, key)
	if !ok {
		t.Fatal("expected cache hit after set")
	}
	if len(got) != 1 || got[0] != want[0] {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCacheDisabled(t *testing.T) {
	InitCache("", 0, 100, time.Minute)
	t.Cleanup(func() { lookupCache = nil })

	ctx := context.Background()
	key := CacheKey("disabled")
	CacheStoreJSON(ctx, key, "x")
	if _, ok := CacheLoadJSON[string](ctx, key); ok {
		t.Error("expected miss with caching disabled")
	}
}

func TestCacheExpiration(t *testing.T) {
	InitCache("", 1*time.Millisecond, 100, 5*time.Minute)

	ctx := context.Background()
	key := CacheKey("test", "expiry")

	CacheStoreJSON(ctx, key, "temp")
	time.Sleep(5 * time.Millisecond)

	if _, ok := CacheLoadJSON[string](ctx, key); ok {
		t.Error("expected cache miss after TTL expiry")
	}
}

func TestCacheEviction(t *testing.T) {
	InitCache("", 1*time.Minute, 3, 5*time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		CacheStoreJSON(ctx, CacheKey("evict", fmt.Sprintf("item-%d", i)), i)
	}

	count := 0
	lookupCache.l1.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count > 3 {
		t.Errorf("expected at most 3 entries after eviction, got %d", count)
	}
}

func TestCacheStats(t *testing.T) {
	InitCache("", 1*time.Minute, 100, 5*time.Minute)
	cacheHits.Store(0)
	cacheMisses.Store(0)

	ctx := context.Background()
	key := CacheKey("stats", "test")

	CacheLoadJSON[string](ctx, key)
	if _, misses := CacheStats(); misses != 1 {
		t.Errorf("misses = %d, want 1", misses)
	}

	CacheStoreJSON(ctx, key, "x")
	CacheLoadJSON[string](ctx, key)
	if hits, _ := CacheStats(); hits != 1 {
		t.Errorf("hits = %d, want 1", hits)
	}
}
