// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/ManuGH/launchpad/internal/api"
	"github.com/ManuGH/launchpad/internal/cache"
	"github.com/ManuGH/launchpad/internal/chat"
	"github.com/ManuGH/launchpad/internal/config"
	"github.com/ManuGH/launchpad/internal/health"
	"github.com/ManuGH/launchpad/internal/log"
	"github.com/ManuGH/launchpad/internal/platform/httpx"
	"github.com/ManuGH/launchpad/internal/telemetry"
	"github.com/ManuGH/launchpad/internal/usage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Components are the long-lived collaborators built from the startup config.
type Components struct {
	Telemetry *telemetry.Provider
	ChatCache cache.Cache
	DemoCache cache.Cache
	Usage     usage.Store
	Upstream  *chat.Upstream
	Health    *health.Manager
}

// Build opens every backend the config asks for and registers their health checks.
// On error everything opened so far is closed again.
func Build(ctx context.Context, holder *config.ConfigHolder) (c *Components, err error) {
	cfg := holder.Get()
	logger := log.WithComponent("daemon")
	c = &Components{}
	defer func() {
		if err != nil {
			_ = c.Close(context.WithoutCancel(ctx))
			c = nil
		}
	}()

	if c.Telemetry, err = telemetry.NewProvider(ctx, telemetry.FromAppConfig(cfg)); err != nil {
		return c, fmt.Errorf("telemetry: %w", err)
	}
	if c.ChatCache, err = cache.New(ctx, cfg.Cache, "chat", log.WithComponent("cache")); err != nil {
		return c, fmt.Errorf("chat cache: %w", err)
	}
	if c.DemoCache, err = cache.New(ctx, cfg.Cache, "demo", log.WithComponent("cache")); err != nil {
		return c, fmt.Errorf("demo cache: %w", err)
	}

	if cfg.Usage.DBPath == "" {
		c.Usage = usage.NopStore{}
		logger.Info().Str(log.FieldEvent, "usage.disabled").Msg("usage ledger disabled (no database path)")
	} else {
		store, err := usage.NewSqliteStore(ctx, cfg.Usage.DBPath)
		if err != nil {
			return c, fmt.Errorf("usage store: %w", err)
		}
		c.Usage = store
	}

	c.Upstream = chat.NewUpstream(
		httpx.NewClient(cfg.Chat.Timeout),
		chat.NewBreaker(cfg.Chat.BreakerThreshold, cfg.Chat.BreakerReset),
	)

	c.Health = health.NewManager(cfg.Version)
	c.Health.RegisterChecker(health.NewAPIKeyChecker(func() string { return holder.Get().Chat.APIKey }))
	c.Health.RegisterChecker(health.NewBreakerChecker("chat_upstream", c.Upstream.BreakerState))
	c.Health.RegisterChecker(health.NewFuncChecker("chat_cache", health.StatusDegraded, pingCache(c.ChatCache)))
	c.Health.RegisterChecker(health.NewFuncChecker("demo_cache", health.StatusDegraded, pingCache(c.DemoCache)))
	c.Health.RegisterChecker(health.NewFuncChecker("usage_db", health.StatusDegraded, c.Usage.Ping))

	return c, nil
}

func pingCache(c cache.Cache) func(context.Context) error {
	return func(ctx context.Context) error {
		if hc, ok := c.(interface{ HealthCheck(context.Context) error }); ok {
			return hc.HealthCheck(ctx)
		}
		return nil
	}
}

// RegisterHooks hands cleanup to the manager. Hooks run LIFO, so tracing flushes last.
func (c *Components) RegisterHooks(mgr Manager) {
	mgr.RegisterShutdownHook("telemetry", c.Telemetry.Shutdown)
	mgr.RegisterShutdownHook("chat_cache", func(context.Context) error { return c.ChatCache.Close() })
	mgr.RegisterShutdownHook("demo_cache", func(context.Context) error { return c.DemoCache.Close() })
	mgr.RegisterShutdownHook("usage_store", func(context.Context) error { return c.Usage.Close() })
}

// Close releases everything Build opened. It is only used when startup fails
// before the manager owns the hooks.
func (c *Components) Close(ctx context.Context) error {
	var errs []error
	if c.Usage != nil {
		errs = append(errs, c.Usage.Close())
	}
	if c.DemoCache != nil {
		errs = append(errs, c.DemoCache.Close())
	}
	if c.ChatCache != nil {
		errs = append(errs, c.ChatCache.Close())
	}
	if c.Telemetry != nil {
		errs = append(errs, c.Telemetry.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// Run builds the runtime from holder and blocks until ctx is cancelled.
func Run(ctx context.Context, holder *config.ConfigHolder) error {
	logger := log.WithComponent("daemon")
	cfg := holder.Get()

	comps, err := Build(ctx, holder)
	if err != nil {
		return err
	}

	srv, err := api.New(cfg, api.Deps{
		Upstream:  comps.Upstream,
		ChatCache: comps.ChatCache,
		DemoCache: comps.DemoCache,
		Usage:     comps.Usage,
		Health:    comps.Health,
	})
	if err != nil {
		_ = comps.Close(context.WithoutCancel(ctx))
		return fmt.Errorf("api server: %w", err)
	}

	mgr, err := NewManager(cfg.Server, Deps{
		Logger:         logger,
		APIHandler:     srv.Handler(),
		MetricsHandler: promhttp.Handler(),
		MetricsAddr:    cfg.Metrics.ListenAddr,
	})
	if err != nil {
		_ = comps.Close(context.WithoutCancel(ctx))
		return fmt.Errorf("daemon manager: %w", err)
	}
	comps.RegisterHooks(mgr)

	return NewApp(logger, mgr, holder, srv).Run(ctx)
}
