// SPDX-License-Identifier: MIT

// Package ratelimit implements the token buckets in front of the chat upstream.
package ratelimit

import (
	"sync"
	"time"

	"github.com/ManuGH/launchpad/internal/config"
	"github.com/ManuGH/launchpad/internal/metrics"
	"golang.org/x/time/rate"
)

// Scopes reported when a request is rejected.
const (
	ScopeGlobal = "global"
	ScopeModel  = "model"
	ScopeIP     = "ip"
)

// Config holds rate limiting configuration.
// A zero rate means unlimited for that scope.
type Config struct {
	// Global limits
	GlobalRate  rate.Limit // requests per second
	GlobalBurst int        // max burst size

	// Per-IP limits
	PerIPRate  rate.Limit
	PerIPBurst int

	// Per-model limits, keyed by upstream model name
	ModelRates map[string]rate.Limit
	ModelBurst map[string]int

	// IdleTTL evicts per-IP limiters not used for this long
	IdleTTL time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		GlobalRate:  20,
		GlobalBurst: 40,
		PerIPRate:   1,
		PerIPBurst:  5,
		IdleTTL:     10 * time.Minute,
	}
}

// FromAppConfig maps the chat section of the runtime config.
func FromAppConfig(rl config.RateLimitConfig) Config {
	cfg := DefaultConfig()
	cfg.GlobalRate = rate.Limit(rl.ChatGlobalRPS)
	cfg.GlobalBurst = rl.ChatGlobalBurst
	cfg.PerIPRate = rate.Limit(rl.ChatPerIPRPS)
	cfg.PerIPBurst = rl.ChatPerIPBurst
	if len(rl.ModelRPS) > 0 {
		cfg.ModelRates = make(map[string]rate.Limit, len(rl.ModelRPS))
		cfg.ModelBurst = make(map[string]int, len(rl.ModelRPS))
		for model, rps := range rl.ModelRPS {
			cfg.ModelRates[model] = rate.Limit(rps)
			burst := rl.ModelBurst[model]
			if burst <= 0 {
				burst = 1
			}
			cfg.ModelBurst[model] = burst
		}
	}
	return cfg
}

// Decision is the outcome of Allow.
type Decision struct {
	Allowed    bool
	Scope      string        // set when rejected
	RetryAfter time.Duration // earliest time a retry could succeed
}

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter manages rate limiting for chat requests
type Limiter struct {
	config Config

	global   *rate.Limiter
	perIP    map[string]*ipEntry
	perModel map[string]*rate.Limiter
	mu       sync.Mutex

	lastCleanup time.Time
	now         func() time.Time
}

// New creates a new rate limiter with the given config
func New(config Config) *Limiter {
	l := &Limiter{
		config:      config,
		global:      newLimiter(config.GlobalRate, config.GlobalBurst),
		perIP:       make(map[string]*ipEntry),
		perModel:    make(map[string]*rate.Limiter),
		lastCleanup: time.Now(),
		now:         time.Now,
	}
	for model, modelRate := range config.ModelRates {
		l.perModel[model] = newLimiter(modelRate, config.ModelBurst[model])
	}
	return l
}

// Reconfigure applies new limits in place. Finite buckets keep their tokens; buckets
// moving to or from unlimited start fresh. Per-model buckets for models no longer
// listed are dropped.
func (l *Limiter) Reconfigure(config Config) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.config = config
	l.global = retune(l.global, now, config.GlobalRate, config.GlobalBurst)
	for model, lim := range l.perModel {
		if r, ok := config.ModelRates[model]; ok {
			l.perModel[model] = retune(lim, now, r, config.ModelBurst[model])
		} else {
			delete(l.perModel, model)
		}
	}
	for model, r := range config.ModelRates {
		if _, ok := l.perModel[model]; !ok {
			l.perModel[model] = newLimiter(r, config.ModelBurst[model])
		}
	}
	for _, entry := range l.perIP {
		entry.limiter = retune(entry.limiter, now, config.PerIPRate, config.PerIPBurst)
	}
}

func retune(lim *rate.Limiter, now time.Time, r rate.Limit, burst int) *rate.Limiter {
	if r <= 0 || lim.Limit() == rate.Inf {
		return newLimiter(r, burst)
	}
	if burst <= 0 {
		burst = 1
	}
	lim.SetLimitAt(now, r)
	lim.SetBurstAt(now, burst)
	return lim
}

func newLimiter(r rate.Limit, burst int) *rate.Limiter {
	if r <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(r, burst)
}

type bucket struct {
	scope string
	lim   *rate.Limiter
}

// Allow admits a request only when the global, per-model and per-IP buckets all
// have a token. Tokens are reserved from every bucket first and handed back when
// any of them refuses, so a rejected request costs nothing. The reported scope is
// the first refusing bucket in global, model, ip order.
func (l *Limiter) Allow(clientIP, model string) Decision {
	now := l.now()

	l.mu.Lock()
	buckets := []bucket{{ScopeGlobal, l.global}}
	if lim := l.perModel[model]; lim != nil {
		buckets = append(buckets, bucket{ScopeModel, lim})
	}
	l.mu.Unlock()
	buckets = append(buckets, bucket{ScopeIP, l.ipLimiter(clientIP, now)})

	var (
		held     = make([]*rate.Reservation, 0, len(buckets))
		rejected string
		wait     time.Duration
	)
	for _, b := range buckets {
		r := b.lim.ReserveN(now, 1)
		d := time.Second
		if r.OK() {
			held = append(held, r)
			d = r.DelayFrom(now)
		}
		if d > 0 {
			if rejected == "" {
				rejected = b.scope
			}
			wait = max(wait, d)
		}
	}

	if rejected != "" {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].CancelAt(now)
		}
		metrics.IncRateLimitRejection(rejected)
		return Decision{Scope: rejected, RetryAfter: wait}
	}

	l.maybeCleanup(now)
	return Decision{Allowed: true}
}

// ipLimiter returns the rate limiter for a specific IP
func (l *Limiter) ipLimiter(ip string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.perIP[ip]
	if !exists {
		entry = &ipEntry{limiter: newLimiter(l.config.PerIPRate, l.config.PerIPBurst)}
		l.perIP[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// maybeCleanup evicts per-IP limiters idle for longer than IdleTTL.
func (l *Limiter) maybeCleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ttl := l.config.IdleTTL
	if ttl <= 0 || now.Sub(l.lastCleanup) < ttl {
		return
	}
	for ip, entry := range l.perIP {
		if now.Sub(entry.lastSeen) >= ttl {
			delete(l.perIP, ip)
		}
	}
	l.lastCleanup = now
}
