// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
	CacheBackendNone   = "none"
)

// Tracing exporters.
const (
	TracingExporterGRPC = "grpc"
	TracingExporterHTTP = "http"
)

// AppConfig is the fully resolved runtime configuration.
// The yaml tags describe the on-disk file format.
type AppConfig struct {
	Version    string `yaml:"-"`
	LogLevel   string `yaml:"logLevel,omitempty"`
	LogService string `yaml:"logService,omitempty"`

	Server  ServerConfig  `yaml:"server"`
	Metrics MetricsConfig `yaml:"metrics"`
	HTTP    HTTPConfig    `yaml:"http"`

	Chat      ChatConfig      `yaml:"chat"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Cache     CacheConfig     `yaml:"cache"`
	Usage     UsageConfig     `yaml:"usage"`
	Site      SiteConfig      `yaml:"site"`
	Demo      DemoConfig      `yaml:"demo"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	ListenAddr      string        `yaml:"listenAddr"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	MaxHeaderBytes  int           `yaml:"maxHeaderBytes"`
}

// MetricsConfig configures the Prometheus endpoint. An empty ListenAddr disables it.
type MetricsConfig struct {
	ListenAddr string `yaml:"listenAddr,omitempty"`
}

// HTTPConfig holds cross-cutting ingress settings.
type HTTPConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
	CSP            string   `yaml:"csp,omitempty"`

	// TrustedProxies lists the peers (CIDR or IP) whose X-Forwarded-For and
	// X-Real-IP headers are honoured. Empty means forwarding headers are ignored.
	TrustedProxies []string `yaml:"trustedProxies,omitempty"`
}

// ChatConfig configures the chat-completion proxy.
type ChatConfig struct {
	// APIKey is the upstream bearer credential. ENV only (OPENAI_API_KEY).
	APIKey string `yaml:"-"`

	UpstreamURL        string        `yaml:"upstreamUrl"`
	DefaultModel       string        `yaml:"defaultModel"`
	DefaultTemperature float64       `yaml:"defaultTemperature"`
	DefaultMaxTokens   int           `yaml:"defaultMaxTokens"`
	Timeout            time.Duration `yaml:"timeout"`
	MaxBodyBytes       int64         `yaml:"maxBodyBytes"`

	BreakerThreshold int           `yaml:"breakerThreshold"`
	BreakerReset     time.Duration `yaml:"breakerReset"`
}

// RateLimitConfig configures both the API-wide sliding window and the chat token buckets.
type RateLimitConfig struct {
	Enabled bool `yaml:"enabled"`

	// APIRequestsPerMinute is the per-IP sliding window applied to every /api route.
	APIRequestsPerMinute int `yaml:"apiRequestsPerMinute"`

	ChatGlobalRPS   float64 `yaml:"chatGlobalRps"`
	ChatGlobalBurst int     `yaml:"chatGlobalBurst"`
	ChatPerIPRPS    float64 `yaml:"chatPerIpRps"`
	ChatPerIPBurst  int     `yaml:"chatPerIpBurst"`

	// ModelRPS / ModelBurst optionally cap individual upstream models.
	ModelRPS   map[string]float64 `yaml:"modelRps,omitempty"`
	ModelBurst map[string]int     `yaml:"modelBurst,omitempty"`
}

// CacheConfig selects the response cache backend.
type CacheConfig struct {
	Backend       string        `yaml:"backend"`
	RedisAddr     string        `yaml:"redisAddr,omitempty"`
	RedisPassword string        `yaml:"-"`
	RedisDB       int           `yaml:"redisDb,omitempty"`
	ChatTTL       time.Duration `yaml:"chatTtl"`
	DemoTTL       time.Duration `yaml:"demoTtl"`
}

// UsageConfig configures the chat usage ledger.
type UsageConfig struct {
	// DBPath is the SQLite file. Empty disables the ledger.
	DBPath string `yaml:"dbPath,omitempty"`
	// AdminToken guards the usage summary endpoint. ENV only.
	AdminToken string `yaml:"-"`
}

// SiteConfig configures the marketing front end.
type SiteConfig struct {
	// Dir overrides the embedded build with an on-disk directory.
	Dir string `yaml:"dir,omitempty"`
}

// DemoConfig configures the analytics demo data endpoints.
type DemoConfig struct {
	RefreshInterval time.Duration `yaml:"refreshInterval"`
	MaxPoints       int           `yaml:"maxPoints"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter,omitempty"`
	Endpoint     string  `yaml:"endpoint,omitempty"`
	SamplingRate float64 `yaml:"samplingRate"`
	Environment  string  `yaml:"environment,omitempty"`
}
