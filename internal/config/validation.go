// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	platformnet "github.com/ManuGH/launchpad/internal/platform/net"
)

// Validate checks cfg and normalises fields that have a canonical form
// (the upstream URL). All problems are reported together.
func Validate(cfg *AppConfig) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if err := validateListenAddr(cfg.Server.ListenAddr); err != nil {
		add("server.listenAddr: %w", err)
	}
	if cfg.Metrics.ListenAddr != "" {
		if err := validateListenAddr(cfg.Metrics.ListenAddr); err != nil {
			add("metrics.listenAddr: %w", err)
		}
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		add("server.shutdownTimeout must be > 0")
	}

	if _, err := platformnet.ParseCIDRs(cfg.HTTP.TrustedProxies); err != nil {
		add("http.trustedProxies: %w", err)
	}

	normalized, err := platformnet.NormalizeBaseURL(cfg.Chat.UpstreamURL)
	if err != nil {
		add("chat.upstreamUrl: %w", err)
	} else {
		cfg.Chat.UpstreamURL = normalized
	}
	if strings.TrimSpace(cfg.Chat.DefaultModel) == "" {
		add("chat.defaultModel must not be empty")
	}
	if cfg.Chat.DefaultTemperature < 0 || cfg.Chat.DefaultTemperature > 2 {
		add("chat.defaultTemperature must be within [0,2] (got %v)", cfg.Chat.DefaultTemperature)
	}
	if cfg.Chat.DefaultMaxTokens <= 0 {
		add("chat.defaultMaxTokens must be > 0 (got %d)", cfg.Chat.DefaultMaxTokens)
	}
	if cfg.Chat.Timeout <= 0 {
		add("chat.timeout must be > 0")
	}
	if cfg.Chat.MaxBodyBytes <= 0 {
		add("chat.maxBodyBytes must be > 0")
	}
	if cfg.Chat.BreakerThreshold < 0 {
		add("chat.breakerThreshold must be >= 0")
	}

	rl := cfg.RateLimit
	if rl.APIRequestsPerMinute < 0 || rl.ChatGlobalRPS < 0 || rl.ChatGlobalBurst < 0 ||
		rl.ChatPerIPRPS < 0 || rl.ChatPerIPBurst < 0 {
		add("rateLimit values must be >= 0")
	}
	for model, rps := range rl.ModelRPS {
		if rps <= 0 {
			add("rateLimit.modelRps[%s] must be > 0", model)
		}
	}

	switch cfg.Cache.Backend {
	case CacheBackendMemory, CacheBackendNone:
	case CacheBackendRedis:
		if strings.TrimSpace(cfg.Cache.RedisAddr) == "" {
			add("cache.redisAddr is required for the redis backend")
		}
	default:
		add("cache.backend must be one of memory, redis, none (got %q)", cfg.Cache.Backend)
	}
	if cfg.Cache.ChatTTL < 0 || cfg.Cache.DemoTTL < 0 {
		add("cache TTLs must be >= 0")
	}

	if cfg.Demo.RefreshInterval < 100*time.Millisecond {
		add("demo.refreshInterval must be >= 100ms")
	}
	if cfg.Demo.MaxPoints <= 0 {
		add("demo.maxPoints must be > 0")
	}

	if cfg.Tracing.Enabled {
		switch cfg.Tracing.Exporter {
		case TracingExporterGRPC, TracingExporterHTTP:
		default:
			add("tracing.exporter must be grpc or http (got %q)", cfg.Tracing.Exporter)
		}
		if strings.TrimSpace(cfg.Tracing.Endpoint) == "" {
			add("tracing.endpoint is required when tracing is enabled")
		}
	}
	if cfg.Tracing.SamplingRate < 0 || cfg.Tracing.SamplingRate > 1 {
		add("tracing.samplingRate must be within [0,1]")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func validateListenAddr(addr string) error {
	if strings.TrimSpace(addr) == "" {
		return fmt.Errorf("must not be empty")
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("invalid host:port %q: %w", addr, err)
	}
	return nil
}
