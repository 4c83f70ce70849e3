package netx

import (
	"net"
	"net/http"
	"strings"
)

const HeaderXForwardedFor = "X-Forwarded-For"

// ClientIP returns the first X-Forwarded-For entry when present, otherwise
// the host part of the connection's remote address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get(HeaderXForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
