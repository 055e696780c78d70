// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"time"

	"github.com/ManuGH/launchpad/internal/config"
	"github.com/ManuGH/launchpad/internal/metrics"
	"github.com/rs/zerolog"
)

const memoryCleanupInterval = time.Minute

// New builds the cache selected by cfg.Backend. namespace separates caches
// sharing one backend ("chat", "demo") and labels the lookup metrics.
func New(ctx context.Context, cfg config.CacheConfig, namespace string, logger zerolog.Logger) (Cache, error) {
	var c Cache
	switch cfg.Backend {
	case config.CacheBackendNone:
		return NewNoOpCache(), nil
	case config.CacheBackendRedis:
		rc, err := NewRedisCache(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   "launchpad:" + namespace + ":",
		}, logger)
		if err != nil {
			return nil, err
		}
		c = rc
	default:
		c = NewMemoryCache(memoryCleanupInterval)
	}
	return Instrument(namespace, c), nil
}

// Instrument wraps c so every lookup is counted in the cache metrics.
func Instrument(name string, c Cache) Cache {
	return &instrumented{Cache: c, name: name}
}

type instrumented struct {
	Cache
	name string
}

func (i *instrumented) Get(ctx context.Context, key string) ([]byte, bool) {
	v, ok := i.Cache.Get(ctx, key)
	metrics.RecordCacheLookup(i.name, ok)
	return v, ok
}

// HealthCheck pings the backend when it supports it.
func (i *instrumented) HealthCheck(ctx context.Context) error {
	if hc, ok := i.Cache.(interface{ HealthCheck(context.Context) error }); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
