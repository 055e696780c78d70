// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestParseUpstreamError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"nested message", `{"error":{"message":"Rate limit reached","type":"requests"}}`, "Rate limit reached"},
		{"string error", `{"error":"model overloaded"}`, "model overloaded"},
		{"empty nested message", `{"error":{"message":""}}`, "Unknown error"},
		{"no error field", `{"detail":"x"}`, "Unknown error"},
		{"error is number", `{"error":42}`, "Unknown error"},
		{"not json", `Bad Gateway`, "Unknown error"},
		{"empty body", ``, "Unknown error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseUpstreamError(429, []byte(tt.body))
			if got.Status != 429 {
				t.Errorf("Status = %d, want 429", got.Status)
			}
			if got.Message != tt.want {
				t.Errorf("Message = %q, want %q", got.Message, tt.want)
			}
		})
	}
}

func TestUpstreamError_Envelope(t *testing.T) {
	env := (&UpstreamError{Status: 503, Message: "down"}).Envelope()
	if env.Error != "OpenAI API error" || env.Message != "down" || env.Status != 503 {
		t.Errorf("unexpected envelope %+v", env)
	}
}

func TestCountsAsBreakerFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"upstream 429", &UpstreamError{Status: 429}, false},
		{"upstream 400", &UpstreamError{Status: 400}, false},
		{"upstream 500", &UpstreamError{Status: 500}, true},
		{"wrapped 503", fmt.Errorf("call: %w", &UpstreamError{Status: 503}), true},
		{"transport", fmt.Errorf("%w: dial", ErrUpstreamUnavailable), true},
		{"canceled", context.Canceled, false},
		{"other", errors.New("x"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := countsAsBreakerFailure(tt.err); got != tt.want {
				t.Errorf("countsAsBreakerFailure(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestCacheKey_StableAndScoped(t *testing.T) {
	body := []byte(`{"model":"m","messages":[],"temperature":0,"max_tokens":1}`)
	if cacheKey("https://a", body) != cacheKey("https://a", body) {
		t.Error("cache key must be deterministic")
	}
	if cacheKey("https://a", body) == cacheKey("https://b", body) {
		t.Error("cache key must include the upstream")
	}
}

func TestParseUsage(t *testing.T) {
	p, c := parseUsage([]byte(successBody))
	if p != 9 || c != 3 {
		t.Errorf("parseUsage = %d/%d, want 9/3", p, c)
	}
	p, c = parseUsage([]byte(`garbage`))
	if p != 0 || c != 0 {
		t.Errorf("parseUsage on garbage = %d/%d, want 0/0", p, c)
	}
}
