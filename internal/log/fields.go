// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldClientIP  = "client_ip"

	// Event fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// HTTP fields
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldRoute      = "route"
	FieldStatus     = "status"
	FieldBytes      = "bytes"
	FieldDurationMS = "duration_ms"
	FieldUserAgent  = "user_agent"

	// Upstream / chat fields
	FieldUpstream    = "upstream"
	FieldModel       = "model"
	FieldUpstreamURL = "upstream_url"
	FieldCacheHit    = "cache_hit"

	// Device / locale fields
	FieldDeviceClass = "device_class"
	FieldLocale      = "locale"
)
