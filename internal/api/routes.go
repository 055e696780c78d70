// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"net/http"

	"github.com/ManuGH/launchpad/internal/api/middleware"
	"github.com/ManuGH/launchpad/internal/auth"
	"github.com/ManuGH/launchpad/internal/chat"
	"github.com/ManuGH/launchpad/internal/demo"
	"github.com/ManuGH/launchpad/internal/device"
	"github.com/ManuGH/launchpad/internal/platform/httpx"
	"github.com/ManuGH/launchpad/internal/usage"
	"github.com/go-chi/chi/v5"
)

const tracingService = "launchpad-http"

func (s *Server) routes() chi.Router {
	cfg := s.config()

	r := middleware.NewRouter(middleware.StackConfig{
		EnableSecurityHeaders: true,
		EnableMetrics:         true,
		TracingService:        tracingService,
		EnableLogging:         true,
	})

	r.Get("/healthz", s.health.ServeHealth)
	r.Head("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Head("/readyz", s.health.ServeReady)

	apiLimit := 0
	if cfg.RateLimit.Enabled {
		apiLimit = cfg.RateLimit.APIRequestsPerMinute
	}

	chatHandler := chat.NewHandler(chat.Deps{
		Options:  func() chat.Options { return chat.OptionsFromConfig(s.config()) },
		Upstream: s.upstream,
		Limiter:  s.limiter,
		Cache:    s.chatCache,
		Usage:    s.usage,
	})
	demoHandler := demo.NewHandler(s.demoCache, func() demo.Options {
		return demo.OptionsFromConfig(s.config())
	})
	adminToken := func() string { return s.config().Usage.AdminToken }

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIRateLimit(apiLimit))
		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			httpx.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
			httpx.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		})

		// The chat proxy answers its own preflight with a wildcard origin.
		r.Handle("/chat", chatHandler)

		// CORS wraps each mount so preflights are answered before method routing.
		cors := middleware.CORS(cfg.HTTP.AllowedOrigins)

		deviceRoutes := chi.NewRouter()
		deviceRoutes.Get("/", device.Handler())

		r.Mount("/chat/usage", cors(auth.RequireToken(adminToken, usage.NewHandler(s.usage))))
		r.Mount("/demo", cors(demoHandler.Routes()))
		r.Mount("/device", cors(deviceRoutes))
		r.Mount("/i18n", cors(s.catalog.Routes()))
	})

	r.Handle("/*", s.site)
	return r
}
