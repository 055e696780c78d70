// SPDX-License-Identifier: MIT

package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync/atomic"

	platformnet "github.com/ManuGH/launchpad/internal/platform/net"
)

// trustedProxies holds the peers allowed to set forwarding headers.
// A nil or empty list means X-Forwarded-For and X-Real-IP are ignored.
var trustedProxies atomic.Pointer[[]*net.IPNet]

// SetTrustedProxies replaces the trusted proxy list used by GetClientIP.
// The previous list stays in place when cidrs does not parse.
func SetTrustedProxies(cidrs []string) error {
	nets, err := platformnet.ParseCIDRs(cidrs)
	if err != nil {
		return err
	}
	trustedProxies.Store(&nets)
	return nil
}

func isTrusted(ip net.IP) bool {
	nets := trustedProxies.Load()
	return nets != nil && platformnet.ContainsIP(*nets, ip)
}

// GetClientIP returns the address the rate limits are keyed on. Forwarding
// headers are honoured only when the socket peer is a trusted proxy; then
// X-Forwarded-For is walked right to left and the first untrusted hop wins.
func GetClientIP(r *http.Request) string {
	peer := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(peer); err == nil {
		peer = host
	}
	peerIP := net.ParseIP(peer)
	if peerIP == nil || !isTrusted(peerIP) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			ip := net.ParseIP(strings.TrimSpace(hops[i]))
			if ip == nil || isTrusted(ip) {
				continue
			}
			return ip.String()
		}
		return peer
	}

	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	return peer
}
