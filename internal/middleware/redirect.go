// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/serve/internal/metrics"
)

// RedirectHTTPS is the whole behavior of the plain listener in the
// redirect topology: every request is answered with a 308 Permanent
// Redirect to the HTTPS version of the same URL, path and query intact.
// The Host header names the target; a request without one cannot be
// redirected and gets a 400.
//
// The host's port is dropped rather than rewritten because this topology
// only exists when HTTPS runs on 443, the port https:// implies.
func RedirectHTTPS() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Host == "" {
			zap.L().Warn("redirect impossible, no Host header")
			http.Error(w, "missing Host header", http.StatusBadRequest)
			return
		}

		target := "https://" + stripPort(r.Host) + r.URL.RequestURI()
		metrics.HTTPRedirectsTotal.Inc()
		http.Redirect(w, r, target, http.StatusPermanentRedirect)
	})
}

// stripPort removes any :port suffix from a Host header value.  Bracketed
// IPv6 hosts keep their brackets so the result stays URL-safe.
func stripPort(h string) string {
	host, _, err := net.SplitHostPort(h)
	if err != nil {
		return h
	}
	if strings.Contains(host, ":") {
		return "[" + host + "]"
	}
	return host
}
