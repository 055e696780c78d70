// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ManuGH/launchpad/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(0) // No cleanup for this test

	cache.Set(ctx, "key1", []byte("value1"), 5*time.Minute)

	val, ok := cache.Get(ctx, "key1")
	require.True(t, ok, "expected to find key1")
	assert.Equal(t, []byte("value1"), val)

	_, ok = cache.Get(ctx, "nonexistent")
	assert.False(t, ok, "expected not to find nonexistent key")
}

func TestMemoryCache_StoresCopy(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(0)

	buf := []byte("original")
	cache.Set(ctx, "k", buf, time.Minute)
	copy(buf, "mutated!")

	val, ok := cache.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "original", string(val))
}

func TestMemoryCache_Expiration(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(0)

	cache.Set(ctx, "shortlived", []byte("value"), 50*time.Millisecond)
	_, ok := cache.Get(ctx, "shortlived")
	require.True(t, ok)

	time.Sleep(100 * time.Millisecond)

	_, ok = cache.Get(ctx, "shortlived")
	assert.False(t, ok, "expected key to be expired")
}

func TestMemoryCache_ZeroTTLNotStored(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(0)
	cache.Set(ctx, "k", []byte("v"), 0)
	_, ok := cache.Get(ctx, "k")
	assert.False(t, ok)
	assert.Zero(t, cache.Stats().Sets)
}

func TestMemoryCache_Delete(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(0)

	cache.Set(ctx, "key1", []byte("value1"), 5*time.Minute)
	cache.Delete(ctx, "key1")

	_, ok := cache.Get(ctx, "key1")
	assert.False(t, ok)
}

func TestMemoryCache_Stats(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(0)

	cache.Set(ctx, "k1", []byte("v1"), time.Minute)
	cache.Set(ctx, "k2", []byte("v2"), time.Minute)
	cache.Get(ctx, "k1")
	cache.Get(ctx, "missing")

	stats := cache.Stats()
	assert.Equal(t, int64(2), stats.Sets)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 2, stats.CurrentSize)
}

func TestMemoryCache_JanitorEvictsAndStops(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx := context.Background()
	cache := NewMemoryCache(10 * time.Millisecond)
	cache.Set(ctx, "k", []byte("v"), 5*time.Millisecond)

	require.Eventually(t, func() bool {
		return cache.Stats().Evictions == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, cache.Stats().CurrentSize)

	require.NoError(t, cache.Close())
	require.NoError(t, cache.Close(), "close is idempotent")
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(0)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cache.Set(ctx, "shared", []byte("x"), time.Minute)
				cache.Get(ctx, "shared")
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1000), cache.Stats().Sets)
}

func TestNoOpCache(t *testing.T) {
	ctx := context.Background()
	cache := NewNoOpCache()
	cache.Set(ctx, "k", []byte("v"), time.Minute)
	_, ok := cache.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, Stats{}, cache.Stats())
	assert.NoError(t, cache.Close())
}

func TestNew_Backends(t *testing.T) {
	ctx := context.Background()

	c, err := New(ctx, config.CacheConfig{Backend: config.CacheBackendNone}, "chat", zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, noOpCache{}, c)

	c, err = New(ctx, config.CacheConfig{Backend: config.CacheBackendMemory}, "chat", zerolog.Nop())
	require.NoError(t, err)
	defer c.Close()
	c.Set(ctx, "k", []byte("v"), time.Minute)
	v, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v", string(v))

	_, err = New(ctx, config.CacheConfig{Backend: config.CacheBackendRedis, RedisAddr: "127.0.0.1:1"}, "chat", zerolog.Nop())
	assert.Error(t, err, "unreachable redis must fail fast")
}
