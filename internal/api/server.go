// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api assembles the launchpad HTTP surface.
package api

import (
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/ManuGH/launchpad/internal/cache"
	"github.com/ManuGH/launchpad/internal/chat"
	"github.com/ManuGH/launchpad/internal/config"
	"github.com/ManuGH/launchpad/internal/health"
	"github.com/ManuGH/launchpad/internal/i18n"
	"github.com/ManuGH/launchpad/internal/log"
	"github.com/ManuGH/launchpad/internal/platform/httpx"
	"github.com/ManuGH/launchpad/internal/ratelimit"
	"github.com/ManuGH/launchpad/internal/site"
	"github.com/ManuGH/launchpad/internal/usage"
	"github.com/go-chi/chi/v5"
)

// Deps are the collaborators of Server. Nil fields are built from the config
// or replaced by a no-op.
type Deps struct {
	Upstream  *chat.Upstream
	Limiter   *ratelimit.Limiter
	ChatCache cache.Cache
	DemoCache cache.Cache
	Usage     usage.Store
	Catalog   *i18n.Catalog
	Site      http.Handler
	Health    *health.Manager
}

// Server represents the HTTP API server for launchpad.
type Server struct {
	mu  sync.RWMutex
	cfg config.AppConfig

	upstream  *chat.Upstream
	limiter   *ratelimit.Limiter
	chatCache cache.Cache
	demoCache cache.Cache
	usage     usage.Store
	catalog   *i18n.Catalog
	site      http.Handler
	health    *health.Manager

	router chi.Router
}

// New builds the server and its router from the initial config.
func New(cfg config.AppConfig, d Deps) (*Server, error) {
	s := &Server{
		cfg:       cfg,
		upstream:  d.Upstream,
		limiter:   d.Limiter,
		chatCache: d.ChatCache,
		demoCache: d.DemoCache,
		usage:     d.Usage,
		catalog:   d.Catalog,
		site:      d.Site,
		health:    d.Health,
	}

	if err := ratelimit.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	if s.upstream == nil {
		s.upstream = chat.NewUpstream(
			httpx.NewClient(cfg.Chat.Timeout),
			chat.NewBreaker(cfg.Chat.BreakerThreshold, cfg.Chat.BreakerReset),
		)
	}
	if s.limiter == nil {
		s.limiter = ratelimit.New(limiterConfig(cfg.RateLimit))
	}
	if s.chatCache == nil {
		s.chatCache = cache.NewNoOpCache()
	}
	if s.demoCache == nil {
		s.demoCache = cache.NewNoOpCache()
	}
	if s.usage == nil {
		s.usage = usage.NopStore{}
	}
	if s.catalog == nil {
		catalog, err := i18n.Load()
		if err != nil {
			return nil, fmt.Errorf("load translations: %w", err)
		}
		s.catalog = catalog
	}
	if s.site == nil {
		h, err := site.Handler(site.Config{CSP: cfg.HTTP.CSP, Dir: cfg.Site.Dir})
		if err != nil {
			return nil, fmt.Errorf("site handler: %w", err)
		}
		s.site = h
	}
	if s.health == nil {
		s.health = health.NewManager(cfg.Version)
	}

	s.router = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// HealthManager exposes the manager so the daemon can register checkers.
func (s *Server) HealthManager() *health.Manager { return s.health }

// Upstream exposes the chat upstream for breaker health checks.
func (s *Server) Upstream() *chat.Upstream { return s.upstream }

// ApplyConfig swaps the runtime config after a reload. Chat, demo and the admin
// token read it per request, the chat limiter is retuned in place and the
// trusted proxy list is replaced. Settings reported by restartOnlyChanges keep
// their startup values.
func (s *Server) ApplyConfig(cfg config.AppConfig) {
	s.mu.Lock()
	old := s.cfg
	s.cfg = cfg
	s.mu.Unlock()

	logger := log.WithComponent("api")
	s.limiter.Reconfigure(limiterConfig(cfg.RateLimit))
	if err := ratelimit.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "config.trusted_proxies_invalid").Msg("keeping previous trusted proxies")
	}

	if changed := restartOnlyChanges(old, cfg); len(changed) > 0 {
		logger.Warn().
			Str(log.FieldEvent, "config.restart_required").
			Strs("settings", changed).
			Msg("some changed settings only take effect after a restart")
	}
}

// restartOnlyChanges lists the settings that differ between old and cfg but are
// bound when the process starts.
func restartOnlyChanges(old, cfg config.AppConfig) []string {
	var changed []string
	check := func(name string, differs bool) {
		if differs {
			changed = append(changed, name)
		}
	}
	check("server.listenAddr", old.Server.ListenAddr != cfg.Server.ListenAddr)
	check("metrics.listenAddr", old.Metrics.ListenAddr != cfg.Metrics.ListenAddr)
	check("http.csp", old.HTTP.CSP != cfg.HTTP.CSP)
	check("http.allowedOrigins", !slices.Equal(old.HTTP.AllowedOrigins, cfg.HTTP.AllowedOrigins))
	check("site.dir", old.Site.Dir != cfg.Site.Dir)
	check("rateLimit.apiRequestsPerMinute", old.RateLimit.APIRequestsPerMinute != cfg.RateLimit.APIRequestsPerMinute)
	check("chat.timeout", old.Chat.Timeout != cfg.Chat.Timeout)
	check("chat.breakerThreshold", old.Chat.BreakerThreshold != cfg.Chat.BreakerThreshold)
	check("chat.breakerReset", old.Chat.BreakerReset != cfg.Chat.BreakerReset)
	check("cache.backend", old.Cache.Backend != cfg.Cache.Backend || old.Cache.RedisAddr != cfg.Cache.RedisAddr)
	check("usage.dbPath", old.Usage.DBPath != cfg.Usage.DBPath)
	return changed
}

func (s *Server) config() config.AppConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// limiterConfig maps the chat buckets. Disabled rate limiting leaves every scope unlimited.
func limiterConfig(rl config.RateLimitConfig) ratelimit.Config {
	if !rl.Enabled {
		return ratelimit.Config{IdleTTL: ratelimit.DefaultConfig().IdleTTL}
	}
	return ratelimit.FromAppConfig(rl)
}
