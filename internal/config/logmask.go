// SPDX-License-Identifier: MIT

package config

import "strings"

// sensitiveKeywords contains keywords that indicate sensitive keys.
var sensitiveKeywords = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"apikey",
	"api_key",
	"credential",
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, kw := range sensitiveKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// MaskSecret returns "***" for non-empty values of sensitive keys and the value unchanged otherwise.
func MaskSecret(key, value string) string {
	if value != "" && isSensitiveKey(key) {
		return "***"
	}
	return value
}

// Redact masks a credential for display: the first four characters survive
// so operators can tell keys apart, the rest is hidden.
func Redact(secret string) string {
	switch {
	case secret == "":
		return ""
	case len(secret) <= 8:
		return "***"
	default:
		return secret[:4] + "***"
	}
}
