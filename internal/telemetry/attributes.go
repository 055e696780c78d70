// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Span attribute keys.
const (
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"
	HTTPRequestIDKey  = "http.request_id"

	ChatModelKey        = "chat.model"
	ChatCacheHitKey     = "chat.cache_hit"
	ChatUpstreamCodeKey = "chat.upstream_status"

	RateLimitScopeKey = "ratelimit.scope"
	DeviceClassKey    = "device.class"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates span attributes for an HTTP request.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// ChatAttributes describes one chat completion. Zero upstream status is omitted.
func ChatAttributes(model string, cacheHit bool, upstreamStatus int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(ChatModelKey, model),
		attribute.Bool(ChatCacheHitKey, cacheHit),
	}
	if upstreamStatus != 0 {
		attrs = append(attrs, attribute.Int(ChatUpstreamCodeKey, upstreamStatus))
	}
	return attrs
}

// ErrorAttributes marks a span as failed with a coarse error class.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
