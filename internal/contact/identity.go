package contact

import (
	"net/http"
	"strings"
)

// UnknownIdentity is used when no forwarding header names the client.
const UnknownIdentity = "unknown"

// Identify derives a best-effort client identity from proxy headers. It is
// the rate-limit key, not an authentication mechanism; all three headers are
// spoofable by a client that talks to the server directly.
//
// Priority: first hop of X-Forwarded-For, then X-Real-IP, then the
// Cloudflare connecting IP.
func Identify(h http.Header) string {
	if forwardedFor := h.Get("X-Forwarded-For"); forwardedFor != "" {
		// X-Forwarded-For is "client, proxy1, proxy2, ..."; the leftmost
		// entry is the client.
		first := strings.TrimSpace(strings.Split(forwardedFor, ",")[0])
		if first != "" {
			return first
		}
	}

	if realIP := h.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	if cfIP := h.Get("CF-Connecting-IP"); cfIP != "" {
		return cfIP
	}

	return UnknownIdentity
}
