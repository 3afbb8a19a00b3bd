// internal/middleware/security.go
//
// Security-header middleware.
//
// Context
// -------
// Adds the headers that hold for arbitrary static content:
//
//   • X-Content-Type-Options     –  MIME-sniffing defence
//   • Referrer-Policy            –  drops path/query from Referer
//   • Strict-Transport-Security  –  only when the listener itself does TLS
//
// Content-Security-Policy and X-Frame-Options are not set: the server
// hosts whatever tree it is pointed at and cannot assume a policy on the
// content's behalf.
//
// Notes
// -----
// • Headers are set *before* next.ServeHTTP; once a handler writes the
//   status line, later header changes are lost.  Existing values are
//   never overwritten.

package middleware

import "net/http"

// Security sets response headers appropriate for static content.  hsts
// must be true only when the listener terminates TLS itself.
func Security(hsts bool) func(http.Handler) http.Handler {
	const (
		sts   = "max-age=63072000; includeSubDomains"
		nosn  = "nosniff"
		refer = "strict-origin-when-cross-origin"
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if h.Get("X-Content-Type-Options") == "" {
				h.Set("X-Content-Type-Options", nosn)
			}
			if h.Get("Referrer-Policy") == "" {
				h.Set("Referrer-Policy", refer)
			}
			if hsts && h.Get("Strict-Transport-Security") == "" {
				h.Set("Strict-Transport-Security", sts)
			}
			next.ServeHTTP(w, r)
		})
	}
}
