// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/ManuGH/launchpad/internal/config"
	"github.com/ManuGH/launchpad/internal/health"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func bootstrapConfig(t *testing.T) config.AppConfig {
	t.Helper()
	cfg := config.Default()
	cfg.Version = "test"
	cfg.Server = testServerConfig(reserveListenAddr(t))
	cfg.Metrics.ListenAddr = reserveListenAddr(t)
	cfg.Usage.DBPath = filepath.Join(t.TempDir(), "usage.db")
	return cfg
}

func TestBuild_RedisCacheHealth(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := bootstrapConfig(t)
	cfg.Chat.APIKey = "sk-test-key"
	cfg.Cache.Backend = config.CacheBackendRedis
	cfg.Cache.RedisAddr = mr.Addr()

	comps, err := Build(context.Background(), config.NewConfigHolder(cfg, nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = comps.Close(context.Background()) })

	resp := comps.Health.Health(context.Background(), true)
	assert.Equal(t, health.StatusHealthy, resp.Status)
	for _, name := range []string{"upstream_api_key", "chat_upstream", "chat_cache", "demo_cache", "usage_db"} {
		assert.Contains(t, resp.Checks, name)
	}

	mr.Close()
	resp = comps.Health.Health(context.Background(), true)
	assert.Equal(t, health.StatusDegraded, resp.Status)
	assert.Equal(t, health.StatusDegraded, resp.Checks["chat_cache"].Status)
	assert.True(t, comps.Health.Ready(context.Background()).Ready, "a degraded cache must not take the instance out of rotation")
}

func TestBuild_FailsOnUnreachableRedis(t *testing.T) {
	cfg := bootstrapConfig(t)
	cfg.Cache.Backend = config.CacheBackendRedis
	cfg.Cache.RedisAddr = reserveListenAddr(t)

	comps, err := Build(context.Background(), config.NewConfigHolder(cfg, nil))
	require.Error(t, err)
	assert.Nil(t, comps)
}

func TestRun_ServesUntilCancelled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	cfg := bootstrapConfig(t)
	holder := config.NewConfigHolder(cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, holder) }()

	require.NoError(t, waitForListen(cfg.Server.ListenAddr, 5*time.Second))
	require.NoError(t, waitForListen(cfg.Metrics.ListenAddr, 5*time.Second))

	code, body := get(t, "http://"+cfg.Server.ListenAddr+"/readyz")
	assert.Equal(t, http.StatusOK, code)
	var ready health.ReadinessResponse
	require.NoError(t, json.Unmarshal([]byte(body), &ready))
	assert.True(t, ready.Ready)

	code, body = get(t, "http://"+cfg.Metrics.ListenAddr+"/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "launchpad_http_request_duration_seconds")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
