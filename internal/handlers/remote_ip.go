package handlers

import (
	"net"
	"net/http"
	"strings"
)

// firstForwardedValue takes the first element of a possibly comma-separated
// header value, trimmed. Proxies append to X-Forwarded-For, so the first
// element is the original client.
func firstForwardedValue(v string) string {
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}

// ClientIP trusts the usual reverse-proxy headers in priority order and
// falls back to the connection address. Assumes the proxy in front of the
// service overwrites these headers.
func ClientIP(r *http.Request) string {
	if v := firstForwardedValue(r.Header.Get("X-Real-IP")); v != "" {
		return v
	}
	if v := firstForwardedValue(r.Header.Get("X-Forwarded-For")); v != "" {
		return v
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "no ip"
}
