package observability

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP resolves the originating address, preferring the first
// X-Forwarded-For hop set by the portal's edge proxy.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx >= 0 {
			fwd = fwd[:idx]
		}
		return strings.TrimSpace(fwd)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// DeviceID returns the client-supplied device identifier, if any.
func DeviceID(r *http.Request) string {
	return r.Header.Get("X-Device-Id")
}
