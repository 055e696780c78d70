// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package resilience guards outbound calls with a circuit breaker.
package resilience

import (
	"errors"
	"sync"
	"time"

	"github.com/ManuGH/launchpad/internal/metrics"
)

// State is the breaker position as exported to health checks and metrics.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

// ErrCircuitOpen is returned by Execute while calls are being shed.
var ErrCircuitOpen = errors.New("circuit breaker is open")

const (
	defaultThreshold = 3
	defaultReset     = 30 * time.Second
)

type clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// CircuitBreaker opens after threshold consecutive failures and lets a single
// trial request through once resetTimeout has elapsed.
type CircuitBreaker struct {
	name      string
	threshold int
	reset     time.Duration
	clock     clock
	isFailure func(error) bool

	mu       sync.Mutex
	state    State
	streak   int
	openedAt time.Time
	inFlight bool // half-open trial request outstanding
}

// Option tunes a CircuitBreaker.
type Option func(*CircuitBreaker)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clock) Option {
	return func(cb *CircuitBreaker) { cb.clock = c }
}

// WithFailurePredicate limits which errors count as failures.
// Errors for which fn returns false are passed through without touching the state.
func WithFailurePredicate(fn func(error) bool) Option {
	return func(cb *CircuitBreaker) {
		if fn != nil {
			cb.isFailure = fn
		}
	}
}

// NewCircuitBreaker returns a closed breaker. A threshold <= 0 falls back to 3,
// a resetTimeout <= 0 to 30s.
func NewCircuitBreaker(name string, threshold int, resetTimeout time.Duration, opts ...Option) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:      name,
		threshold: threshold,
		reset:     resetTimeout,
		clock:     wallClock{},
		isFailure: func(error) bool { return true },
		state:     StateClosed,
	}
	if cb.threshold <= 0 {
		cb.threshold = defaultThreshold
	}
	if cb.reset <= 0 {
		cb.reset = defaultReset
	}
	for _, opt := range opts {
		opt(cb)
	}
	metrics.ObserveBreakerState(cb.name, string(cb.state))
	return cb
}

// Execute runs fn unless the breaker is shedding calls, in which case it
// returns ErrCircuitOpen without calling fn. A panic in fn counts as a failure
// and is propagated.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.admit() {
		return ErrCircuitOpen
	}

	ok := false
	defer func() {
		if !ok {
			cb.settle(true)
		}
	}()
	err := fn()
	ok = true

	cb.settle(err != nil && cb.isFailure(err))
	return err
}

func (cb *CircuitBreaker) admit() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if cb.clock.Now().Sub(cb.openedAt) < cb.reset {
			return false
		}
		cb.setState(StateHalfOpen)
	}
	if cb.state == StateHalfOpen {
		if cb.inFlight {
			return false
		}
		cb.inFlight = true
	}
	return true
}

func (cb *CircuitBreaker) settle(failed bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	trial := cb.state == StateHalfOpen
	cb.inFlight = false

	if !failed {
		cb.streak = 0
		cb.setState(StateClosed)
		return
	}

	cb.streak++
	switch {
	case trial:
		metrics.CountBreakerTrip(cb.name, "trial_failed")
		cb.setState(StateOpen)
	case cb.state == StateClosed && cb.streak >= cb.threshold:
		metrics.CountBreakerTrip(cb.name, "threshold")
		cb.setState(StateOpen)
	}
}

// setState must be called with mu held.
func (cb *CircuitBreaker) setState(s State) {
	if cb.state == s {
		return
	}
	cb.state = s
	if s == StateOpen {
		cb.openedAt = cb.clock.Now()
	}
	metrics.ObserveBreakerState(cb.name, string(s))
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// RetryAfter reports how long callers should wait before the next trial request is
// allowed. It is zero unless the breaker is open.
func (cb *CircuitBreaker) RetryAfter() time.Duration {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state != StateOpen {
		return 0
	}
	return max(cb.reset-cb.clock.Now().Sub(cb.openedAt), 0)
}
