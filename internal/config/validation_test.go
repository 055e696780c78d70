// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Defaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(&cfg))
}

func TestValidate_NormalizesUpstreamURL(t *testing.T) {
	cfg := Default()
	cfg.Chat.UpstreamURL = "HTTPS://API.Example.COM/v1/"
	require.NoError(t, Validate(&cfg))
	assert.Equal(t, "https://api.example.com/v1", cfg.Chat.UpstreamURL)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		want   string
	}{
		{"listen addr", func(c *AppConfig) { c.Server.ListenAddr = "8080" }, "server.listenAddr"},
		{"metrics addr", func(c *AppConfig) { c.Metrics.ListenAddr = "nope" }, "metrics.listenAddr"},
		{"upstream scheme", func(c *AppConfig) { c.Chat.UpstreamURL = "ftp://x.example" }, "chat.upstreamUrl"},
		{"temperature", func(c *AppConfig) { c.Chat.DefaultTemperature = 2.5 }, "defaultTemperature"},
		{"max tokens", func(c *AppConfig) { c.Chat.DefaultMaxTokens = 0 }, "defaultMaxTokens"},
		{"empty model", func(c *AppConfig) { c.Chat.DefaultModel = " " }, "defaultModel"},
		{"cache backend", func(c *AppConfig) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"redis addr", func(c *AppConfig) { c.Cache.Backend = CacheBackendRedis }, "cache.redisAddr"},
		{"tracing exporter", func(c *AppConfig) {
			c.Tracing.Enabled = true
			c.Tracing.Exporter = "zipkin"
			c.Tracing.Endpoint = "localhost:4317"
		}, "tracing.exporter"},
		{"sampling", func(c *AppConfig) { c.Tracing.SamplingRate = 1.5 }, "samplingRate"},
		{"demo refresh", func(c *AppConfig) { c.Demo.RefreshInterval = 0 }, "demo.refreshInterval"},
		{"trusted proxies", func(c *AppConfig) { c.HTTP.TrustedProxies = []string{"10.0.0.0/8", "lb.internal"} }, "http.trustedProxies"},
		{"model rps", func(c *AppConfig) { c.RateLimit.ModelRPS = map[string]float64{"gpt-4": 0} }, "modelRps[gpt-4]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := Validate(&cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Chat.DefaultMaxTokens = -1
	cfg.Cache.Backend = "bogus"
	err := Validate(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "defaultMaxTokens")
	assert.Contains(t, err.Error(), "cache.backend")
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "***", MaskSecret("LAUNCHPAD_ADMIN_TOKEN", "abc"))
	assert.Equal(t, "***", MaskSecret("OPENAI_API_KEY", "sk-1"))
	assert.Equal(t, "", MaskSecret("OPENAI_API_KEY", ""))
	assert.Equal(t, ":8080", MaskSecret("LAUNCHPAD_LISTEN", ":8080"))
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "", Redact(""))
	assert.Equal(t, "***", Redact("short"))
	assert.Equal(t, "sk-a***", Redact("sk-abcdefghijkl"))
}
