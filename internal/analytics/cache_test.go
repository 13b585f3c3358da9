package analytics

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCacheVersionedKeys(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "newhope", "dashboard")
	if err != nil {
		t.Fatalf("build key: %v", err)
	}
	if key != "newhope:dashboard:v1" {
		t.Fatalf("unexpected key %q", key)
	}
	if err := cache.SetJSON(ctx, key, map[string]int{"n": 1}); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got map[string]int
	ok, err := cache.GetJSON(ctx, key, &got)
	if err != nil || !ok || got["n"] != 1 {
		t.Fatalf("get: ok=%v err=%v got=%v", ok, err, got)
	}

	if err := cache.Bump(ctx); err != nil {
		t.Fatalf("bump: %v", err)
	}
	next, err := cache.BuildKey(ctx, "newhope", "dashboard")
	if err != nil {
		t.Fatalf("build key: %v", err)
	}
	if !strings.HasSuffix(next, ":v2") {
		t.Fatalf("expected bumped version, got %q", next)
	}
	ok, err = cache.GetJSON(ctx, next, &got)
	if err != nil || ok {
		t.Fatalf("expected miss after bump, ok=%v err=%v", ok, err)
	}
}

func TestCacheMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	cache := newTestCache(t).WithMetrics(reg)
	ctx := context.Background()

	var v int
	_, _ = cache.GetJSON(ctx, "missing", &v)
	_ = cache.SetJSON(ctx, "present", 3)
	_, _ = cache.GetJSON(ctx, "present", &v)

	if got := testutil.ToFloat64(cache.lookups.WithLabelValues("miss")); got != 1 {
		t.Fatalf("expected 1 miss, got %v", got)
	}
	if got := testutil.ToFloat64(cache.lookups.WithLabelValues("hit")); got != 1 {
		t.Fatalf("expected 1 hit, got %v", got)
	}
}

func TestNilCacheIsPassThrough(t *testing.T) {
	var cache *Cache
	ctx := context.Background()
	key, err := cache.BuildKey(ctx, "a", "b")
	if err != nil || key != "a:b" {
		t.Fatalf("unexpected %q %v", key, err)
	}
	var v int
	if ok, err := cache.GetJSON(ctx, key, &v); ok || err != nil {
		t.Fatalf("nil cache must miss silently")
	}
	if err := cache.InvalidateReports(ctx, "x"); err != nil {
		t.Fatalf("nil cache invalidate: %v", err)
	}
}

func TestListenForInvalidation(t *testing.T) {
	cache := newTestCache(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan int64, 1)
	if err := cache.ListenForInvalidation(ctx, func(v int64) { got <- v }); err != nil {
		t.Fatalf("listen: %v", err)
	}
	if err := cache.Bump(ctx); err != nil {
		t.Fatalf("bump: %v", err)
	}
	select {
	case v := <-got:
		if v != 1 {
			t.Fatalf("expected version 1, got %d", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("bump not observed")
	}
}
