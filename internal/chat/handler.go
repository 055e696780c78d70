// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package chat implements the /api/chat completion proxy.
package chat

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/ManuGH/launchpad/internal/cache"
	"github.com/ManuGH/launchpad/internal/log"
	"github.com/ManuGH/launchpad/internal/metrics"
	"github.com/ManuGH/launchpad/internal/platform/httpx"
	"github.com/ManuGH/launchpad/internal/ratelimit"
	"github.com/ManuGH/launchpad/internal/resilience"
	"github.com/ManuGH/launchpad/internal/telemetry"
	"github.com/ManuGH/launchpad/internal/usage"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const (
	allowMethods = "POST, OPTIONS"
	allowHeaders = "Content-Type, Authorization, X-Request-ID"

	// statusClientClosed is recorded when the caller disconnects before the upstream answers.
	statusClientClosed = 499

	usageRecordTimeout = 2 * time.Second
)

// Deps are the collaborators of Handler. Only Options and Upstream are required.
type Deps struct {
	Options  func() Options
	Upstream *Upstream
	Limiter  *ratelimit.Limiter // nil disables per-request limiting
	Cache    cache.Cache        // nil disables response caching
	Usage    usage.Store        // nil disables the ledger
}

// Handler serves POST /api/chat.
type Handler struct {
	options  func() Options
	upstream *Upstream
	limiter  *ratelimit.Limiter
	cache    cache.Cache
	usage    usage.Store
	flight   singleflight.Group
	now      func() time.Time
}

// NewHandler builds the proxy handler.
func NewHandler(d Deps) *Handler {
	h := &Handler{
		options:  d.Options,
		upstream: d.Upstream,
		limiter:  d.Limiter,
		cache:    d.Cache,
		usage:    d.Usage,
		now:      time.Now,
	}
	if h.options == nil {
		h.options = func() Options { return Options{} }
	}
	if h.upstream == nil {
		h.upstream = NewUpstream(nil, nil)
	}
	if h.cache == nil {
		h.cache = cache.NewNoOpCache()
	}
	if h.usage == nil {
		h.usage = usage.NopStore{}
	}
	return h
}

func setCORS(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", allowMethods)
	h.Set("Access-Control-Allow-Headers", allowHeaders)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORS(w.Header())

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", allowMethods)
		metrics.IncChatRequest("invalid")
		httpx.WriteJSON(w, http.StatusMethodNotAllowed, ErrorEnvelope{Error: errMethodNotAllowed})
		return
	}

	ctx := r.Context()
	logger := log.WithComponentFromContext(ctx, "chat")
	opts := h.options().withDefaults()

	if opts.APIKey == "" {
		logger.Error().Str("event", "chat.api_key_missing").Msg("chat request rejected: upstream API key not configured")
		metrics.IncChatRequest("misconfigured")
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorEnvelope{Error: errServerConfig, Message: msgNoAPIKey})
		return
	}

	req, messages, err := decodeRequest(w, r, opts.MaxBodyBytes)
	if err != nil {
		metrics.IncChatRequest("invalid")
		if errors.Is(err, errBodyTooBig) {
			httpx.WriteJSON(w, http.StatusRequestEntityTooLarge, ErrorEnvelope{
				Error:   errRequestTooLarge,
				Message: "request body exceeds " + strconv.FormatInt(opts.MaxBodyBytes, 10) + " bytes",
			})
			return
		}
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorEnvelope{Error: errInvalidRequest, Message: msgMessagesRequired})
		return
	}

	payload, body, err := buildPayload(req, messages, opts)
	if err != nil {
		logger.Error().Err(err).Str("event", "chat.encode_failed").Msg("failed to encode upstream request")
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorEnvelope{Error: errInternal, Message: "failed to encode request"})
		return
	}

	start := h.now()
	entry := usage.Entry{
		RequestID: log.RequestIDFromContext(ctx),
		Model:     payload.Model,
		CreatedAt: start,
	}
	defer func() {
		entry.Latency = h.now().Sub(start)
		h.record(ctx, logger, entry)
	}()

	if h.limiter != nil {
		if d := h.limiter.Allow(ratelimit.GetClientIP(r), payload.Model); !d.Allowed {
			entry.Status = http.StatusTooManyRequests
			metrics.IncChatRequest("rejected")
			logger.Warn().
				Str("event", "chat.rate_limited").
				Str("scope", d.Scope).
				Str(log.FieldModel, payload.Model).
				Msg("chat request rate limited")
			w.Header().Set("Retry-After", retryAfterSeconds(d.RetryAfter))
			httpx.WriteJSON(w, http.StatusTooManyRequests, ErrorEnvelope{
				Error:   errRateLimited,
				Message: "too many chat requests, retry later",
			})
			return
		}
	}

	cacheable := opts.CacheTTL > 0 && payload.Temperature == 0
	var key string
	if cacheable {
		key = cacheKey(opts.BaseURL, body)
		if cached, ok := h.cache.Get(ctx, key); ok {
			entry.Status = http.StatusOK
			entry.CacheHit = true
			metrics.IncChatRequest("ok")
			trace.SpanFromContext(ctx).SetAttributes(telemetry.ChatAttributes(payload.Model, true, 0)...)
			writeRaw(w, cached)
			return
		}
	}

	out, err := h.complete(ctx, opts, payload.Model, body, key, cacheable)
	if err != nil {
		entry.Status = h.writeUpstreamFailure(w, r, logger, payload.Model, err)
		return
	}

	entry.Status = http.StatusOK
	entry.PromptTokens, entry.CompletionTokens = parseUsage(out)
	metrics.AddChatTokens(payload.Model, entry.PromptTokens, entry.CompletionTokens)
	metrics.IncChatRequest("ok")
	writeRaw(w, out)
}

// complete calls the upstream. Cacheable requests with the same key share one
// in-flight call and populate the cache on success.
func (h *Handler) complete(ctx context.Context, opts Options, model string, body []byte, key string, cacheable bool) ([]byte, error) {
	if !cacheable {
		return h.upstream.Complete(ctx, opts.BaseURL, opts.APIKey, model, body)
	}
	v, err, _ := h.flight.Do(key, func() (any, error) {
		// Detached: one caller hanging up must not fail the others waiting on this key.
		callCtx := context.WithoutCancel(ctx)
		out, err := h.upstream.Complete(callCtx, opts.BaseURL, opts.APIKey, model, body)
		if err != nil {
			return nil, err
		}
		h.cache.Set(callCtx, key, out, opts.CacheTTL)
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// writeUpstreamFailure maps an upstream error to the client response and returns the status written.
func (h *Handler) writeUpstreamFailure(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, model string, err error) int {
	var ue *UpstreamError
	switch {
	case errors.As(err, &ue):
		metrics.IncChatRequest("upstream_error")
		logger.Warn().
			Str("event", "chat.upstream_error").
			Int(log.FieldStatus, ue.Status).
			Str(log.FieldModel, model).
			Str("upstream_message", ue.Message).
			Msg("upstream returned an error")
		httpx.WriteJSON(w, ue.Status, ue.Envelope())
		return ue.Status

	case errors.Is(err, resilience.ErrCircuitOpen):
		metrics.IncChatRequest("unavailable")
		logger.Warn().Str("event", "chat.circuit_open").Str(log.FieldModel, model).Msg("upstream circuit open")
		w.Header().Set("Retry-After", retryAfterSeconds(h.upstream.RetryAfter()))
		httpx.WriteJSON(w, http.StatusServiceUnavailable, ErrorEnvelope{
			Error:   errInternal,
			Message: "upstream temporarily unavailable",
		})
		return http.StatusServiceUnavailable

	case isCanceled(err) || r.Context().Err() != nil:
		logger.Debug().Str("event", "chat.client_gone").Msg("client disconnected before upstream answered")
		return statusClientClosed

	case errors.Is(err, ErrUpstreamTimeout):
		metrics.IncChatRequest("unavailable")
		logger.Error().Err(err).Str("event", "chat.upstream_timeout").Str(log.FieldModel, model).Msg("upstream timed out")
		httpx.WriteJSON(w, http.StatusGatewayTimeout, ErrorEnvelope{Error: errInternal, Message: "upstream timed out"})
		return http.StatusGatewayTimeout

	default:
		metrics.IncChatRequest("unavailable")
		logger.Error().Err(err).Str("event", "chat.upstream_failed").Str(log.FieldModel, model).Msg("upstream request failed")
		httpx.WriteJSON(w, http.StatusBadGateway, ErrorEnvelope{Error: errInternal, Message: "failed to reach upstream"})
		return http.StatusBadGateway
	}
}

func (h *Handler) record(ctx context.Context, logger zerolog.Logger, e usage.Entry) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), usageRecordTimeout)
	defer cancel()
	if err := h.usage.Record(ctx, e); err != nil {
		logger.Warn().Err(err).Str("event", "chat.usage_record_failed").Msg("failed to record chat usage")
	}
}

func writeRaw(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
