// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package chat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/ManuGH/launchpad/internal/log"
	"github.com/ManuGH/launchpad/internal/metrics"
	"github.com/ManuGH/launchpad/internal/resilience"
	"github.com/ManuGH/launchpad/internal/telemetry"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName       = "github.com/ManuGH/launchpad/internal/chat"
	completionsPath  = "/chat/completions"
	maxUpstreamBody  = 8 << 20
	breakerComponent = "chat_upstream"
)

// Upstream calls the chat-completion API through a circuit breaker.
type Upstream struct {
	client  *http.Client
	breaker *resilience.CircuitBreaker
	tracer  trace.Tracer
}

// NewUpstream wires client and breaker. A nil breaker gets the default one.
func NewUpstream(client *http.Client, breaker *resilience.CircuitBreaker) *Upstream {
	if client == nil {
		client = http.DefaultClient
	}
	if breaker == nil {
		breaker = NewBreaker(0, 0)
	}
	return &Upstream{
		client:  client,
		breaker: breaker,
		tracer:  telemetry.Tracer(tracerName),
	}
}

// NewBreaker returns a breaker that only counts upstream-side failures.
func NewBreaker(threshold int, reset time.Duration) *resilience.CircuitBreaker {
	return resilience.NewCircuitBreaker(breakerComponent, threshold, reset,
		resilience.WithFailurePredicate(countsAsBreakerFailure))
}

// BreakerState reports the upstream circuit state.
func (u *Upstream) BreakerState() resilience.State { return u.breaker.State() }

// RetryAfter reports how long the breaker stays open.
func (u *Upstream) RetryAfter() time.Duration { return u.breaker.RetryAfter() }

// Complete POSTs body to {baseURL}/chat/completions.
// A 2xx answer returns the exact response bytes. A non-2xx answer returns *UpstreamError.
// Transport failures wrap ErrUpstreamUnavailable or ErrUpstreamTimeout, and an open
// circuit returns resilience.ErrCircuitOpen.
func (u *Upstream) Complete(ctx context.Context, baseURL, apiKey, model string, body []byte) ([]byte, error) {
	ctx, span := u.tracer.Start(ctx, "chat.completion",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(telemetry.ChatAttributes(model, false, 0)...))
	defer span.End()

	var out []byte
	err := u.breaker.Execute(func() error {
		var callErr error
		out, callErr = u.do(ctx, baseURL, apiKey, model, body)
		return callErr
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return out, nil
}

func (u *Upstream) do(ctx context.Context, baseURL, apiKey, model string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	if rid := log.RequestIDFromContext(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	start := time.Now()
	resp, err := u.client.Do(req)
	if err != nil {
		metrics.ObserveChatUpstream(model, 0, time.Since(start))
		return nil, classifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody+1))
	metrics.ObserveChatUpstream(model, resp.StatusCode, time.Since(start))
	trace.SpanFromContext(ctx).SetAttributes(telemetry.ChatAttributes(model, false, resp.StatusCode)...)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if len(data) > maxUpstreamBody {
		return nil, ErrResponseTooLarge
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, ParseUpstreamError(resp.StatusCode, data)
	}
	return data, nil
}

func classifyTransportError(err error) error {
	if isCanceled(err) {
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
