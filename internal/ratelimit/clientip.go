package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// UnknownClient is the shared bucket for requests with no usable address.
const UnknownClient = "unknown"

// ClientIP identifies the caller: leftmost X-Forwarded-For entry, then X-Real-IP,
// then the transport remote address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
			return host
		}
		return r.RemoteAddr
	}
	return UnknownClient
}
