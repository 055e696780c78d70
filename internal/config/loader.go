// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment keys.
const (
	EnvListen          = "LAUNCHPAD_LISTEN"
	EnvMetricsAddr     = "LAUNCHPAD_METRICS_ADDR"
	EnvLogLevel        = "LAUNCHPAD_LOG_LEVEL"
	EnvAllowedOrigins  = "LAUNCHPAD_ALLOWED_ORIGINS"
	EnvCSP             = "LAUNCHPAD_CSP"
	EnvTrustedProxies  = "LAUNCHPAD_TRUSTED_PROXIES"
	EnvAPIKey          = "OPENAI_API_KEY"
	EnvUpstreamURL     = "LAUNCHPAD_UPSTREAM_URL"
	EnvChatModel       = "LAUNCHPAD_CHAT_MODEL"
	EnvChatTemperature = "LAUNCHPAD_CHAT_TEMPERATURE"
	EnvChatMaxTokens   = "LAUNCHPAD_CHAT_MAX_TOKENS"
	EnvChatMaxBody     = "LAUNCHPAD_CHAT_MAX_BODY_BYTES"
	EnvUpstreamTimeout = "LAUNCHPAD_UPSTREAM_TIMEOUT"
	EnvRateEnabled     = "LAUNCHPAD_RATE_ENABLED"
	EnvRateAPIPerMin   = "LAUNCHPAD_RATE_API_PER_MINUTE"
	EnvRateChatRPS     = "LAUNCHPAD_RATE_CHAT_RPS"
	EnvRateChatBurst   = "LAUNCHPAD_RATE_CHAT_BURST"
	EnvRateChatIPRPS   = "LAUNCHPAD_RATE_CHAT_PER_IP_RPS"
	EnvRateChatIPBurst = "LAUNCHPAD_RATE_CHAT_PER_IP_BURST"
	EnvCacheBackend    = "LAUNCHPAD_CACHE_BACKEND"
	EnvRedisAddr       = "LAUNCHPAD_REDIS_ADDR"
	EnvRedisPassword   = "LAUNCHPAD_REDIS_PASSWORD"
	EnvChatCacheTTL    = "LAUNCHPAD_CHAT_CACHE_TTL"
	EnvDemoCacheTTL    = "LAUNCHPAD_DEMO_CACHE_TTL"
	EnvUsageDB         = "LAUNCHPAD_USAGE_DB"
	EnvAdminToken      = "LAUNCHPAD_ADMIN_TOKEN"
	EnvSiteDir         = "LAUNCHPAD_SITE_DIR"
	EnvDemoRefresh     = "LAUNCHPAD_DEMO_REFRESH"
	EnvTracingEnabled  = "LAUNCHPAD_TRACING_ENABLED"
	EnvTracingExporter = "LAUNCHPAD_TRACING_EXPORTER"
	EnvTracingEndpoint = "LAUNCHPAD_TRACING_ENDPOINT"
	EnvTracingSampling = "LAUNCHPAD_TRACING_SAMPLING_RATE"
)

// Loader handles configuration loading with precedence.
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{} // keys the loader consulted, for diagnostics
}

// NewLoader creates a new configuration loader.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Path returns the config file path (may be empty).
func (l *Loader) Path() string { return l.configPath }

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults.
// It enforces Parse File (strict) -> Apply Env -> Validate.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Default()
	cfg.Version = l.version

	if l.configPath != "" {
		if err := l.mergeFile(&cfg, l.configPath); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	l.mergeEnv(&cfg)

	if err := Validate(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// mergeFile decodes the YAML file over cfg. Keys absent from the file keep their current value.
func (l *Loader) mergeFile(cfg *AppConfig, path string) error {
	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	return decodeStrict(data, cfg)
}

func decodeStrict(data []byte, cfg *AppConfig) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // Reject unknown fields

	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	// Strict: Ensure no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}

func (l *Loader) mergeEnv(cfg *AppConfig) {
	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)
	cfg.Server.ListenAddr = l.envString(EnvListen, cfg.Server.ListenAddr)
	cfg.Metrics.ListenAddr = l.envString(EnvMetricsAddr, cfg.Metrics.ListenAddr)

	l.ConsumedEnvKeys[EnvAllowedOrigins] = struct{}{}
	cfg.HTTP.AllowedOrigins = ParseStringList(EnvAllowedOrigins, cfg.HTTP.AllowedOrigins)
	cfg.HTTP.CSP = l.envString(EnvCSP, cfg.HTTP.CSP)
	l.ConsumedEnvKeys[EnvTrustedProxies] = struct{}{}
	cfg.HTTP.TrustedProxies = ParseStringList(EnvTrustedProxies, cfg.HTTP.TrustedProxies)

	cfg.Chat.APIKey = strings.TrimSpace(l.envString(EnvAPIKey, cfg.Chat.APIKey))
	cfg.Chat.UpstreamURL = l.envString(EnvUpstreamURL, cfg.Chat.UpstreamURL)
	cfg.Chat.DefaultModel = l.envString(EnvChatModel, cfg.Chat.DefaultModel)
	cfg.Chat.DefaultTemperature = l.envFloat(EnvChatTemperature, cfg.Chat.DefaultTemperature)
	cfg.Chat.DefaultMaxTokens = l.envInt(EnvChatMaxTokens, cfg.Chat.DefaultMaxTokens)
	l.ConsumedEnvKeys[EnvChatMaxBody] = struct{}{}
	cfg.Chat.MaxBodyBytes = ParseInt64(EnvChatMaxBody, cfg.Chat.MaxBodyBytes)
	l.ConsumedEnvKeys[EnvUpstreamTimeout] = struct{}{}
	cfg.Chat.Timeout = ParseDuration(EnvUpstreamTimeout, cfg.Chat.Timeout)

	cfg.RateLimit.Enabled = l.envBool(EnvRateEnabled, cfg.RateLimit.Enabled)
	cfg.RateLimit.APIRequestsPerMinute = l.envInt(EnvRateAPIPerMin, cfg.RateLimit.APIRequestsPerMinute)
	cfg.RateLimit.ChatGlobalRPS = l.envFloat(EnvRateChatRPS, cfg.RateLimit.ChatGlobalRPS)
	cfg.RateLimit.ChatGlobalBurst = l.envInt(EnvRateChatBurst, cfg.RateLimit.ChatGlobalBurst)
	cfg.RateLimit.ChatPerIPRPS = l.envFloat(EnvRateChatIPRPS, cfg.RateLimit.ChatPerIPRPS)
	cfg.RateLimit.ChatPerIPBurst = l.envInt(EnvRateChatIPBurst, cfg.RateLimit.ChatPerIPBurst)

	cfg.Cache.Backend = strings.ToLower(l.envString(EnvCacheBackend, cfg.Cache.Backend))
	cfg.Cache.RedisAddr = l.envString(EnvRedisAddr, cfg.Cache.RedisAddr)
	cfg.Cache.RedisPassword = l.envString(EnvRedisPassword, cfg.Cache.RedisPassword)
	l.ConsumedEnvKeys[EnvChatCacheTTL] = struct{}{}
	cfg.Cache.ChatTTL = ParseDuration(EnvChatCacheTTL, cfg.Cache.ChatTTL)
	l.ConsumedEnvKeys[EnvDemoCacheTTL] = struct{}{}
	cfg.Cache.DemoTTL = ParseDuration(EnvDemoCacheTTL, cfg.Cache.DemoTTL)

	cfg.Usage.DBPath = l.envString(EnvUsageDB, cfg.Usage.DBPath)
	cfg.Usage.AdminToken = strings.TrimSpace(l.envString(EnvAdminToken, cfg.Usage.AdminToken))

	cfg.Site.Dir = l.envString(EnvSiteDir, cfg.Site.Dir)
	l.ConsumedEnvKeys[EnvDemoRefresh] = struct{}{}
	cfg.Demo.RefreshInterval = ParseDuration(EnvDemoRefresh, cfg.Demo.RefreshInterval)

	cfg.Tracing.Enabled = l.envBool(EnvTracingEnabled, cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = strings.ToLower(l.envString(EnvTracingExporter, cfg.Tracing.Exporter))
	cfg.Tracing.Endpoint = l.envString(EnvTracingEndpoint, cfg.Tracing.Endpoint)
	cfg.Tracing.SamplingRate = l.envFloat(EnvTracingSampling, cfg.Tracing.SamplingRate)
}
