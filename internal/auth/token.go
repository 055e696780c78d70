// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package auth guards operator endpoints with a static bearer token.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/ManuGH/launchpad/internal/log"
	"github.com/ManuGH/launchpad/internal/platform/httpx"
)

// ExtractToken retrieves the operator token from the request.
// Only the Authorization header is consulted: tokens in query strings end up in access logs.
func ExtractToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// AuthorizeToken returns true if got matches expected using constant-time comparison.
// Empty tokens are always treated as unauthorized.
func AuthorizeToken(got, expected string) bool {
	if strings.TrimSpace(expected) == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}

// AuthorizeRequest extracts a token from r and validates it against expectedToken.
func AuthorizeRequest(r *http.Request, expectedToken string) bool {
	if r == nil {
		return false
	}
	return AuthorizeToken(ExtractToken(r), expectedToken)
}

// RequireToken wraps next with bearer authentication against the token returned by expected.
// The token is read per request so reloads take effect. While no token is configured the
// endpoint answers 404, which keeps disabled operator routes indistinguishable from absent ones.
func RequireToken(expected func() string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := expected()
		if strings.TrimSpace(token) == "" {
			httpx.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		if !AuthorizeRequest(r, token) {
			logger := log.WithComponentFromContext(r.Context(), "auth")
			logger.Warn().
				Str("event", "auth.invalid_token").
				Str(log.FieldPath, r.URL.Path).
				Msg("operator token missing or invalid")
			w.Header().Set("WWW-Authenticate", `Bearer realm="launchpad"`)
			httpx.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
