// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ManuGH/launchpad/internal/log"
	"github.com/ManuGH/launchpad/internal/metrics"
	"github.com/ManuGH/launchpad/internal/platform/httpx"
	"github.com/ManuGH/launchpad/internal/ratelimit"
	"github.com/go-chi/httprate"
)

// RateLimitConfig configures the API-wide sliding window limiter.
type RateLimitConfig struct {
	// RequestLimit is the maximum number of requests per key in WindowSize.
	RequestLimit int
	WindowSize   time.Duration
	// KeyFunc extracts the limiter key. Defaults to the client IP.
	KeyFunc func(r *http.Request) (string, error)
}

// RateLimit limits requests with httprate's sliding window counter.
// A non-positive RequestLimit disables limiting.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.RequestLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = time.Minute
	}
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = func(r *http.Request) (string, error) { return ratelimit.GetClientIP(r), nil }
	}

	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowSize,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.IncRateLimitRejection("api")
			log.FromContext(r.Context()).Warn().
				Str(log.FieldEvent, "ratelimit.api_rejected").
				Str(log.FieldClientIP, ratelimit.GetClientIP(r)).
				Msg("API rate limit exceeded")

			w.Header().Set("Retry-After", strconv.Itoa(int(cfg.WindowSize.Seconds())))
			httpx.WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"error":   "Rate limit exceeded",
				"message": "Too many requests. Please try again later.",
			})
		}),
	)
}

// APIRateLimit applies requestsPerMinute per client IP.
func APIRateLimit(requestsPerMinute int) func(http.Handler) http.Handler {
	return RateLimit(RateLimitConfig{RequestLimit: requestsPerMinute, WindowSize: time.Minute})
}
