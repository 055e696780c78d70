// SPDX-License-Identifier: MIT

package ratelimit

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"
)

func trustProxies(t *testing.T, cidrs ...string) {
	t.Helper()
	if err := SetTrustedProxies(cidrs); err != nil {
		t.Fatalf("SetTrustedProxies: %v", err)
	}
	t.Cleanup(func() { _ = SetTrustedProxies(nil) })
}

func TestGetClientIP(t *testing.T) {
	trustProxies(t, "10.0.0.0/8", "127.0.0.1")

	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{
			name:       "untrusted peer ignores X-Forwarded-For",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1"},
			remoteAddr: "192.168.1.1:12345",
			want:       "192.168.1.1",
		},
		{
			name:       "untrusted peer ignores X-Real-IP",
			headers:    map[string]string{"X-Real-IP": "203.0.113.2"},
			remoteAddr: "192.168.1.1:12345",
			want:       "192.168.1.1",
		},
		{
			name:       "trusted peer single hop",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1"},
			remoteAddr: "10.0.0.5:443",
			want:       "203.0.113.1",
		},
		{
			name:       "rightmost untrusted hop wins",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.66, 203.0.113.1, 10.0.0.7"},
			remoteAddr: "127.0.0.1:12345",
			want:       "203.0.113.1",
		},
		{
			name:       "all hops trusted falls back to peer",
			headers:    map[string]string{"X-Forwarded-For": "10.1.1.1, 10.2.2.2"},
			remoteAddr: "10.0.0.5:443",
			want:       "10.0.0.5",
		},
		{
			name:       "garbage hops are skipped",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.9, not-an-ip"},
			remoteAddr: "10.0.0.5:443",
			want:       "203.0.113.9",
		},
		{
			name:       "trusted peer X-Real-IP",
			headers:    map[string]string{"X-Real-IP": "203.0.113.2"},
			remoteAddr: "10.0.0.5:443",
			want:       "203.0.113.2",
		},
		{
			name:       "no headers",
			remoteAddr: "192.168.1.100:54321",
			want:       "192.168.1.100",
		},
		{
			name:       "RemoteAddr without port",
			remoteAddr: "192.168.1.101",
			want:       "192.168.1.101",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			req.RemoteAddr = tt.remoteAddr

			if got := GetClientIP(req); got != tt.want {
				t.Errorf("GetClientIP() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetClientIP_NoTrustedProxiesIgnoresHeaders(t *testing.T) {
	trustProxies(t)

	req := httptest.NewRequest("POST", "/api/chat", nil)
	req.RemoteAddr = "127.0.0.1:40000"
	req.Header.Set("X-Forwarded-For", "203.0.113.1")
	if got := GetClientIP(req); got != "127.0.0.1" {
		t.Errorf("GetClientIP() = %v, want socket peer", got)
	}
}

func TestSetTrustedProxies_KeepsPreviousOnError(t *testing.T) {
	trustProxies(t, "10.0.0.0/8")
	if err := SetTrustedProxies([]string{"bogus"}); err == nil {
		t.Fatal("expected parse error")
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:1"
	req.Header.Set("X-Forwarded-For", "203.0.113.4")
	if got := GetClientIP(req); got != "203.0.113.4" {
		t.Errorf("trusted list was lost: got %v", got)
	}
}

func TestPerIPLimitHoldsAgainstSpoofedForwarding(t *testing.T) {
	trustProxies(t)
	limiter := New(Config{PerIPRate: 1, PerIPBurst: 1})
	base := time.Unix(1_700_000_000, 0)
	limiter.now = func() time.Time { return base }

	allowed := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest("POST", "/api/chat", nil)
		req.RemoteAddr = "192.0.2.10:5000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		if limiter.Allow(GetClientIP(req), "m").Allowed {
			allowed++
		}
	}
	if allowed != 1 {
		t.Errorf("expected 1 request through the per-IP bucket, got %d", allowed)
	}
}
