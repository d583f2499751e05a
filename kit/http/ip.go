package http

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// IPResolver finds the client ip of a request. Forwarding headers are only
// read when the peer is a trusted proxy, otherwise any client could pick its
// own ip. A nil resolver trusts nobody.
type IPResolver struct {
	trustedProxies []*net.IPNet
}

// CreateIPResolver accepts CIDRs ("10.0.0.0/8") and single ips ("127.0.0.1").
func CreateIPResolver(trustedProxies []string) (*IPResolver, error) {
	resolver := &IPResolver{}
	for _, proxy := range trustedProxies {
		if !strings.Contains(proxy, "/") {
			ip := net.ParseIP(proxy)
			if ip == nil {
				return nil, errors.Errorf("invalid trusted proxy %q", proxy)
			}
			bits := 8 * net.IPv4len
			if ip.To4() == nil {
				bits = 8 * net.IPv6len
			}
			proxy = proxy + "/" + strconv.Itoa(bits)
		}
		_, ipNet, err := net.ParseCIDR(proxy)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid trusted proxy %q", proxy)
		}
		resolver.trustedProxies = append(resolver.trustedProxies, ipNet)
	}
	return resolver, nil
}

func (i *IPResolver) isTrusted(ip string) bool {
	if i == nil {
		return false
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, ipNet := range i.trustedProxies {
		if ipNet.Contains(parsed) {
			return true
		}
	}
	return false
}

// ClientIP walks X-Forwarded-For from the right and returns the first hop
// that is not a trusted proxy.
func (i *IPResolver) ClientIP(r *http.Request) string {
	remoteIP := r.RemoteAddr
	if host, _, err := net.SplitHostPort(remoteIP); err == nil {
		remoteIP = host
	}
	if !i.isTrusted(remoteIP) {
		return remoteIP
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for idx := len(hops) - 1; idx >= 0; idx-- {
		hop := strings.TrimSpace(hops[idx])
		if hop == "" || net.ParseIP(hop) == nil {
			continue
		}
		if !i.isTrusted(hop) {
			return hop
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-Ip")); net.ParseIP(realIP) != nil {
		return realIP
	}
	return remoteIP
}

// ReadUserIP is the peer address of r. Forwarding headers are ignored.
func ReadUserIP(r *http.Request) string {
	var resolver *IPResolver
	return resolver.ClientIP(r)
}
