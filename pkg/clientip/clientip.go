// Package clientip extracts the client source address from HTTP requests,
// checking common proxy headers before falling back to the connection's
// remote address. The result feeds identity-token derivation, so the same
// client should resolve to the same address across requests.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Proxy headers in priority order. X-Forwarded-For may contain a chain
// "client, proxy1, proxy2"; only the leftmost entry identifies the client.
var proxyHeaders = []string{
	"CF-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
}

// GetIP returns the client IP for the request, or an empty string when no
// valid address can be determined. Invalid and unspecified (0.0.0.0, ::)
// addresses are rejected; valid addresses are normalized via net.IP.String.
func GetIP(r *http.Request) string {
	for _, header := range proxyHeaders {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}
		if ip := parseIP(strings.SplitN(value, ",", 2)[0]); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port, e.g. in tests or unix sockets.
		host = r.RemoteAddr
	}
	return parseIP(host)
}

func parseIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil || ip.IsUnspecified() {
		return ""
	}
	return ip.String()
}
