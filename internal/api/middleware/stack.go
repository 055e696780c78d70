// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"github.com/ManuGH/launchpad/internal/log"
	"github.com/go-chi/chi/v5"
)

// StackConfig configures the canonical ingress stack.
type StackConfig struct {
	EnableSecurityHeaders bool
	EnableMetrics         bool
	// TracingService is the tracer name. Empty disables tracing.
	TracingService string
	EnableLogging  bool
}

// NewRouter returns a chi router with the canonical stack applied.
func NewRouter(cfg StackConfig) *chi.Mux {
	r := chi.NewRouter()
	ApplyStack(r, cfg)
	return r
}

// ApplyStack installs the canonical stack on r, outermost first.
func ApplyStack(r chi.Router, cfg StackConfig) {
	// RequestID runs first so a recovered panic is logged with its ID.
	r.Use(RequestID)
	r.Use(Recoverer)
	if cfg.EnableSecurityHeaders {
		r.Use(SecurityHeaders())
	}
	if cfg.EnableMetrics {
		r.Use(Metrics())
	}
	if cfg.TracingService != "" {
		r.Use(Tracing(cfg.TracingService))
	}
	if cfg.EnableLogging {
		r.Use(log.Middleware())
	}
}
