package httpserver

import (
	"net"
	"net/http"
	"strings"
)

// UnknownClient keys requests whose origin address cannot be determined.
// They share one quota.
const UnknownClient = "unknown"

// ClientIdentity derives the rate-limit key: the first X-Forwarded-For hop
// when trusted, else the connection host, else UnknownClient.
func ClientIdentity(r *http.Request, trustForwarded bool) string {
	if trustForwarded {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if addr := strings.TrimSpace(r.RemoteAddr); addr != "" {
		return addr
	}
	return UnknownClient
}
