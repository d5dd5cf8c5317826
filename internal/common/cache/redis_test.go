package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) *RedisCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c, err := NewRedisCacheWithClient(client)
	if err != nil {
		t.Fatalf("new cache failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisCacheBasicOps(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	value, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if value != "v" {
		t.Fatalf("unexpected value: %s", value)
	}

	// Absent keys return an empty string and no error.
	value, err = c.Get(ctx, "absent")
	if err != nil {
		t.Fatalf("get absent failed: %v", err)
	}
	if value != "" {
		t.Fatalf("expected empty value for absent key, got %s", value)
	}

	ok, err := c.SetNX(ctx, "k", "other", time.Minute)
	if err != nil {
		t.Fatalf("setnx failed: %v", err)
	}
	if ok {
		t.Fatalf("setnx must not overwrite an existing key")
	}

	count, err := c.Exists(ctx, "k", "absent")
	if err != nil {
		t.Fatalf("exists failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 existing key, got %d", count)
	}

	if err := c.Del(ctx, "k"); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	value, _ = c.Get(ctx, "k")
	if value != "" {
		t.Fatalf("key should be gone after delete")
	}
}

func TestRedisCacheIncr(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := c.Incr(ctx, "counter")
		if err != nil {
			t.Fatalf("incr failed: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}
}

func TestGetWithCached(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	calls := 0

	load := func(ctx context.Context) (string, error) {
		calls++
		return "loaded", nil
	}
	identity := func(s string) string { return s }
	parse := func(s string) (string, error) { return s, nil }
	isEmpty := func(s string) bool { return s == "" }

	for i := 0; i < 3; i++ {
		value, err := GetWithCached(ctx, c, "key", time.Minute, time.Second, isEmpty, identity, parse, load)
		if err != nil {
			t.Fatalf("get with cached failed: %v", err)
		}
		if value != "loaded" {
			t.Fatalf("unexpected value: %s", value)
		}
	}
	if calls != 1 {
		t.Fatalf("expected a single source load, got %d", calls)
	}
}

func TestGetWithCachedEmptyResult(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	calls := 0

	load := func(ctx context.Context) (string, error) {
		calls++
		return "", nil
	}
	identity := func(s string) string { return s }
	parse := func(s string) (string, error) { return s, nil }
	isEmpty := func(s string) bool { return s == "" }

	for i := 0; i < 2; i++ {
		value, err := GetWithCached(ctx, c, "missing", time.Minute, time.Minute, isEmpty, identity, parse, load)
		if err != nil {
			t.Fatalf("get with cached failed: %v", err)
		}
		if value != "" {
			t.Fatalf("expected empty value, got %s", value)
		}
	}
	if calls != 1 {
		t.Fatalf("absence should be cached, got %d loads", calls)
	}

	// The null sentinel must be stored under the key.
	raw, err := c.Get(ctx, "missing")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if raw != NullCacheValue {
		t.Fatalf("expected null sentinel, got %q", raw)
	}
}

func TestJitterTTL(t *testing.T) {
	ttl := time.Minute
	for i := 0; i < 100; i++ {
		jittered := JitterTTL(ttl)
		if jittered > ttl || jittered < ttl-ttl/10 {
			t.Fatalf("jittered ttl %v out of range", jittered)
		}
	}
	if JitterTTL(0) != 0 {
		t.Fatalf("zero ttl must pass through")
	}
}

func TestUpdateCached(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", "stale", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	err := UpdateCached(ctx, c, "k", func(ctx context.Context) error { return nil })
	if err != nil {
		t.Fatalf("update cached failed: %v", err)
	}
	value, _ := c.Get(ctx, "k")
	if value != "" {
		t.Fatalf("cache key should be invalidated after update")
	}

	if err := c.Set(ctx, "k", "stale", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	wantErr := fmt.Errorf("update failed")
	err = UpdateCached(ctx, c, "k", func(ctx context.Context) error { return wantErr })
	if err != wantErr {
		t.Fatalf("expected update error, got %v", err)
	}
	value, _ = c.Get(ctx, "k")
	if value != "stale" {
		t.Fatalf("cache key must survive a failed update")
	}
}
