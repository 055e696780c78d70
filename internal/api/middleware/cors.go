// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"net/http"
	"strings"
)

const (
	corsMethods = "GET, OPTIONS"
	corsHeaders = "Content-Type, X-Request-ID, Authorization, Accept-Language"
	corsExpose  = "Retry-After, Content-Length, Content-Language, X-Request-ID, X-Cache"
)

// CORS sets Cross-Origin Resource Sharing headers for the read-only API routes.
// Only listed origins are echoed back; "*" allows any origin. Credentials are never
// allowed. An empty list disables CORS headers entirely (same-origin only).
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[strings.TrimRight(origin, "/")] = true
	}
	allowAll := allowed["*"]

	return func(next http.Handler) http.Handler {
		if len(allowed) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hdr := w.Header()
			addVary(hdr, "Origin")

			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || allowed[origin]) {
				if allowAll {
					hdr.Set("Access-Control-Allow-Origin", "*")
				} else {
					hdr.Set("Access-Control-Allow-Origin", origin)
				}
				hdr.Set("Access-Control-Allow-Methods", corsMethods)
				hdr.Set("Access-Control-Allow-Headers", corsHeaders)
				hdr.Set("Access-Control-Expose-Headers", corsExpose)
				hdr.Set("Access-Control-Max-Age", "600")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				hdr.Set("Allow", corsMethods)
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func addVary(h http.Header, value string) {
	for _, v := range h.Values("Vary") {
		for _, part := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(part), value) {
				return
			}
		}
	}
	h.Add("Vary", value)
}
