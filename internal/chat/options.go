// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package chat

import (
	"time"

	"github.com/ManuGH/launchpad/internal/config"
)

// Options are the per-request proxy settings. The handler asks for a fresh copy on
// every request so configuration reloads apply without a restart.
type Options struct {
	APIKey             string
	BaseURL            string
	DefaultModel       string
	DefaultTemperature float64
	DefaultMaxTokens   int
	MaxBodyBytes       int64
	// CacheTTL > 0 enables the response cache for temperature 0 requests.
	CacheTTL time.Duration
}

// OptionsFromConfig maps the runtime config.
func OptionsFromConfig(cfg config.AppConfig) Options {
	ttl := cfg.Cache.ChatTTL
	if cfg.Cache.Backend == config.CacheBackendNone {
		ttl = 0
	}
	return Options{
		APIKey:             cfg.Chat.APIKey,
		BaseURL:            cfg.Chat.UpstreamURL,
		DefaultModel:       cfg.Chat.DefaultModel,
		DefaultTemperature: cfg.Chat.DefaultTemperature,
		DefaultMaxTokens:   cfg.Chat.DefaultMaxTokens,
		MaxBodyBytes:       cfg.Chat.MaxBodyBytes,
		CacheTTL:           ttl,
	}
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = config.DefaultUpstreamURL
	}
	if o.DefaultModel == "" {
		o.DefaultModel = config.DefaultChatModel
	}
	if o.DefaultMaxTokens <= 0 {
		o.DefaultMaxTokens = config.DefaultChatMaxTokens
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = config.DefaultChatMaxBodyBytes
	}
	return o
}
