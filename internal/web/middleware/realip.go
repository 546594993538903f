package middleware

import (
	"fmt"
	"net/http"
	"net/netip"
	"strings"
)

// RealIP rewrites r.RemoteAddr to the client address reported by a trusted
// reverse proxy. Forwarding headers from any other peer are ignored, so a
// phone on the LAN cannot spoof its address in the request log.
//
// X-Forwarded-For is read right to left and the first hop outside the
// trusted set wins; X-Real-IP is used when X-Forwarded-For is absent.
// Entries in trusted are CIDR prefixes or single addresses.
func RealIP(trusted []string) (func(http.Handler) http.Handler, error) {
	prefixes, err := ParseTrusted(trusted)
	if err != nil {
		return nil, err
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if peer, ok := remoteAddr(r.RemoteAddr); ok && contains(prefixes, peer) {
				if client, ok := forwardedClient(r, prefixes); ok {
					r.RemoteAddr = client.String()
				}
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}

// ParseTrusted parses proxy entries, rejecting any that are neither a prefix
// nor an address.
func ParseTrusted(entries []string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if p, err := netip.ParsePrefix(e); err == nil {
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q", e)
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return prefixes, nil
}

func forwardedClient(r *http.Request, trusted []netip.Prefix) (netip.Addr, bool) {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				return netip.Addr{}, false
			}
			addr = addr.Unmap()
			if !contains(trusted, addr) {
				return addr, true
			}
		}
		return netip.Addr{}, false
	}

	if rip := strings.TrimSpace(r.Header.Get("X-Real-IP")); rip != "" {
		if addr, err := netip.ParseAddr(rip); err == nil {
			return addr.Unmap(), true
		}
	}
	return netip.Addr{}, false
}

// remoteAddr parses a host:port or bare address.
func remoteAddr(s string) (netip.Addr, bool) {
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.Addr().Unmap(), true
	}
	if addr, err := netip.ParseAddr(s); err == nil {
		return addr.Unmap(), true
	}
	return netip.Addr{}, false
}

func contains(prefixes []netip.Prefix, addr netip.Addr) bool {
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
