package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type record struct {
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
}

func newTestCache(t *testing.T, opts ...MemoryOption) (*MemoryCache, *time.Time) {
	t.Helper()
	mc := NewMemoryCache(opts...)
	t.Cleanup(func() { _ = mc.Close() })
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { return now }
	return mc, &now
}

func TestMemoryCacheTypedRoundTrip(t *testing.T) {
	mc, _ := newTestCache(t)
	ctx := context.Background()

	in := []record{{Metric: "bmi", Value: 23.1}, {Metric: "whr", Value: 0.84}}
	if err := mc.Set(ctx, "k", in, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := GetTyped[[]record](ctx, mc, "k")
	if err != nil {
		t.Fatalf("GetTyped: %v", err)
	}
	if len(got) != 2 || got[0] != in[0] || got[1] != in[1] {
		t.Fatalf("got %+v", got)
	}

	var s string
	_ = mc.Set(ctx, "s", "plain", time.Minute)
	if err := mc.Get(ctx, "s", &s); err != nil || s != "plain" {
		t.Fatalf("string round trip failed: %q %v", s, err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc, now := newTestCache(t)
	ctx := context.Background()

	_ = mc.Set(ctx, "k", 1, time.Second)
	if ok, _ := mc.Exists(ctx, "k"); !ok {
		t.Fatalf("expected key to exist")
	}
	*now = now.Add(2 * time.Second)
	var v int
	if err := mc.Get(ctx, "k", &v); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after expiry, got %v", err)
	}
	if mc.Len() != 0 {
		t.Fatalf("expired key should be removed on read")
	}
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	mc, now := newTestCache(t, WithMemoryMaxSize(2))
	ctx := context.Background()

	_ = mc.Set(ctx, "a", 1, time.Minute)
	*now = now.Add(time.Millisecond)
	_ = mc.Set(ctx, "b", 2, time.Minute)
	*now = now.Add(time.Millisecond)
	var v int
	_ = mc.Get(ctx, "a", &v)
	*now = now.Add(time.Millisecond)
	_ = mc.Set(ctx, "c", 3, time.Minute)

	if ok, _ := mc.Exists(ctx, "b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if ok, _ := mc.Exists(ctx, "a", "c"); !ok {
		t.Fatalf("a and c should remain")
	}
	if mc.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", mc.Len())
	}
}

func TestMemoryCacheSweepDropsExpired(t *testing.T) {
	mc, now := newTestCache(t)
	ctx := context.Background()

	_ = mc.Set(ctx, "short", 1, time.Second)
	_ = mc.Set(ctx, "long", 2, time.Hour)
	*now = now.Add(time.Minute)
	mc.sweep()

	if mc.Len() != 1 {
		t.Fatalf("expected only the live entry to remain, got %d", mc.Len())
	}
	if ok, _ := mc.Exists(ctx, "long"); !ok {
		t.Fatalf("live entry removed")
	}
}

func TestMemoryCacheDefaultTTL(t *testing.T) {
	mc, now := newTestCache(t, WithMemoryDefaultTTL(time.Minute))
	ctx := context.Background()

	_ = mc.Set(ctx, "k", 1, 0)
	*now = now.Add(30 * time.Second)
	if ok, _ := mc.Exists(ctx, "k"); !ok {
		t.Fatalf("entry should live for the default ttl")
	}
	*now = now.Add(time.Minute)
	if ok, _ := mc.Exists(ctx, "k"); ok {
		t.Fatalf("entry should expire after the default ttl")
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	mc, _ := newTestCache(t)
	ctx := context.Background()
	_ = mc.Set(ctx, "a", 1, 0)
	_ = mc.Delete(ctx, "a", "missing")
	if ok, _ := mc.Exists(ctx, "a"); ok {
		t.Fatalf("expected delete")
	}
}

func TestNoopCache(t *testing.T) {
	c := NewNoopCache()
	ctx := context.Background()
	_ = c.Set(ctx, "a", 1, time.Minute)
	var v int
	if err := c.Get(ctx, "a", &v); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss")
	}
}

func TestHashValueStable(t *testing.T) {
	a, err := HashValue(record{Metric: "bmi", Value: 1})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := HashValue(record{Metric: "bmi", Value: 1})
	c, _ := HashValue(record{Metric: "bmi", Value: 2})
	if a != b || a == c {
		t.Fatalf("unexpected hashes %s %s %s", a, b, c)
	}
	if GenerateKey("compute", a) != "compute:"+a {
		t.Fatalf("unexpected key")
	}
}
