// SPDX-License-Identifier: MIT
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chatRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "launchpad_chat_requests_total",
		Help: "Chat proxy requests by outcome",
	}, []string{"outcome"}) // outcome=ok|upstream_error|invalid|rejected|unavailable|misconfigured

	chatUpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "launchpad_chat_upstream_duration_seconds",
		Help:    "Latency of upstream chat completion calls",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 32},
	}, []string{"model", "status"})

	chatTokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "launchpad_chat_tokens_total",
		Help: "Tokens reported by the upstream, by model and kind",
	}, []string{"model", "kind"}) // kind=prompt|completion

	cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "launchpad_cache_lookups_total",
		Help: "Response cache lookups by cache and result",
	}, []string{"cache", "result"}) // result=hit|miss

	rateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "launchpad_rate_limit_rejections_total",
		Help: "Requests rejected by a rate limiter",
	}, []string{"scope"}) // scope=api|global|ip|model

	demoStreamClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "launchpad_demo_stream_clients",
		Help: "Connected demo SSE clients",
	})

	configReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "launchpad_config_reloads_total",
		Help: "Configuration reloads by result",
	}, []string{"result"})
)

// IncChatRequest counts a finished chat request.
func IncChatRequest(outcome string) {
	chatRequestsTotal.WithLabelValues(outcome).Inc()
}

// ObserveChatUpstream records one upstream round trip. status 0 means transport failure.
func ObserveChatUpstream(model string, status int, d time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	chatUpstreamDuration.WithLabelValues(model, label).Observe(d.Seconds())
}

// AddChatTokens adds upstream-reported token counts.
func AddChatTokens(model string, prompt, completion int) {
	if prompt > 0 {
		chatTokensTotal.WithLabelValues(model, "prompt").Add(float64(prompt))
	}
	if completion > 0 {
		chatTokensTotal.WithLabelValues(model, "completion").Add(float64(completion))
	}
}

// RecordCacheLookup counts a hit or miss for the named cache.
func RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(cache, result).Inc()
}

// IncRateLimitRejection counts a rejected request for the given limiter scope.
func IncRateLimitRejection(scope string) {
	rateLimitRejections.WithLabelValues(scope).Inc()
}

// DemoStreamConnected tracks SSE client lifetimes. Call the returned func on disconnect.
func DemoStreamConnected() func() {
	demoStreamClients.Inc()
	return demoStreamClients.Dec
}

// RecordConfigReload counts a reload attempt.
func RecordConfigReload(success bool) {
	if success {
		configReloadsTotal.WithLabelValues("success").Inc()
		return
	}
	configReloadsTotal.WithLabelValues("failure").Inc()
}
