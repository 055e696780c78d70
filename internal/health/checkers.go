// SPDX-License-Identifier: MIT

package health

import (
	"context"

	"github.com/ManuGH/launchpad/internal/resilience"
)

// FuncChecker adapts a ping function. A failing ping reports failStatus.
type FuncChecker struct {
	name       string
	ping       func(ctx context.Context) error
	failStatus Status
}

// NewFuncChecker creates a checker around ping.
func NewFuncChecker(name string, failStatus Status, ping func(ctx context.Context) error) *FuncChecker {
	return &FuncChecker{name: name, ping: ping, failStatus: failStatus}
}

func (c *FuncChecker) Name() string { return c.name }

func (c *FuncChecker) Check(ctx context.Context) CheckResult {
	if err := c.ping(ctx); err != nil {
		return CheckResult{Status: c.failStatus, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy}
}

// APIKeyChecker reports whether the upstream credential is configured.
// The key itself never appears in the result.
type APIKeyChecker struct {
	key func() string
}

// NewAPIKeyChecker reads the current key through key on every check.
func NewAPIKeyChecker(key func() string) *APIKeyChecker {
	return &APIKeyChecker{key: key}
}

func (c *APIKeyChecker) Name() string { return "upstream_api_key" }

// Check is degraded rather than unhealthy: the site and demo data still work.
func (c *APIKeyChecker) Check(context.Context) CheckResult {
	if c.key() == "" {
		return CheckResult{Status: StatusDegraded, Message: "API key not configured; /api/chat answers 500"}
	}
	return CheckResult{Status: StatusHealthy, Message: "configured"}
}

// BreakerChecker reports the chat upstream circuit.
type BreakerChecker struct {
	name  string
	state func() resilience.State
}

// NewBreakerChecker creates a checker for a circuit breaker's state.
func NewBreakerChecker(name string, state func() resilience.State) *BreakerChecker {
	return &BreakerChecker{name: name, state: state}
}

func (c *BreakerChecker) Name() string { return c.name }

func (c *BreakerChecker) Check(context.Context) CheckResult {
	switch s := c.state(); s {
	case resilience.StateClosed:
		return CheckResult{Status: StatusHealthy, Message: string(s)}
	default:
		return CheckResult{Status: StatusDegraded, Message: "circuit " + string(s)}
	}
}
