// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// Default values. Chat defaults match what the browser client assumed.
const (
	DefaultListenAddr         = ":8080"
	DefaultUpstreamURL        = "https://api.openai.com/v1"
	DefaultChatModel          = "gpt-3.5-turbo"
	DefaultChatTemperature    = 0.7
	DefaultChatMaxTokens      = 1000
	DefaultChatTimeout        = 30 * time.Second
	DefaultChatMaxBodyBytes   = 1 << 20
	DefaultBreakerThreshold   = 5
	DefaultBreakerReset       = 30 * time.Second
	DefaultDemoRefresh        = 5 * time.Second
	DefaultDemoMaxPoints      = 120
	DefaultAPIRequestsPerMin  = 600
	DefaultChatCacheTTL       = 10 * time.Minute
	DefaultDemoCacheTTL       = time.Minute
	DefaultTracingSampleRate  = 0.1
	DefaultServerShutdownWait = 15 * time.Second
)

// DefaultCSP allows same-origin scripts and API calls (including /api/chat) and the
// inline styles the front end's component library injects.
const DefaultCSP = "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; " +
	"img-src 'self' data: blob:; font-src 'self' data:; connect-src 'self'; " +
	"frame-ancestors 'none'; base-uri 'self'; form-action 'self'"

// Default returns the built-in configuration.
func Default() AppConfig {
	return AppConfig{
		LogLevel:   "info",
		LogService: "launchpad",
		Server: ServerConfig{
			ListenAddr:      DefaultListenAddr,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: DefaultServerShutdownWait,
			MaxHeaderBytes:  1 << 20,
		},
		HTTP: HTTPConfig{
			CSP: DefaultCSP,
		},
		Chat: ChatConfig{
			UpstreamURL:        DefaultUpstreamURL,
			DefaultModel:       DefaultChatModel,
			DefaultTemperature: DefaultChatTemperature,
			DefaultMaxTokens:   DefaultChatMaxTokens,
			Timeout:            DefaultChatTimeout,
			MaxBodyBytes:       DefaultChatMaxBodyBytes,
			BreakerThreshold:   DefaultBreakerThreshold,
			BreakerReset:       DefaultBreakerReset,
		},
		RateLimit: RateLimitConfig{
			Enabled:              true,
			APIRequestsPerMinute: DefaultAPIRequestsPerMin,
			ChatGlobalRPS:        20,
			ChatGlobalBurst:      40,
			ChatPerIPRPS:         1,
			ChatPerIPBurst:       5,
		},
		Cache: CacheConfig{
			Backend: CacheBackendMemory,
			ChatTTL: DefaultChatCacheTTL,
			DemoTTL: DefaultDemoCacheTTL,
		},
		Demo: DemoConfig{
			RefreshInterval: DefaultDemoRefresh,
			MaxPoints:       DefaultDemoMaxPoints,
		},
		Tracing: TracingConfig{
			Exporter:     TracingExporterGRPC,
			SamplingRate: DefaultTracingSampleRate,
			Environment:  "production",
		},
	}
}
