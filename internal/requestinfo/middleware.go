// internal/requestinfo/middleware.go
//
// HTTP middleware that enriches each request and logs each response.
//
/*
Context
--------
This handler sits first in the chain.  For every request it:

  1. Parses the User-Agent header and Accept-Language list.
  2. Records the peer address from `r.RemoteAddr`.  serve terminates its
     own connections, so forwarding headers are not consulted.
  3. Stores a `*RequestInfo` in `request.Context` under an unexported
     key, retrievable with FromContext without reparsing.
  4. After the handler returns, emits one INFO access line with method,
     path, status, bytes written, latency, and the UA summary.  Status
     and size come from chi's WrapResponseWriter.

Notes
-----
  • All look-ups are read-only, so the middleware is safe under heavy
    concurrency.  UA parse costs well under a microsecond.
*/
package requestinfo

import (
	"context"
	"net"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

/*──────────────────────────── middleware ───────────────────────────────────*/

// Enrich wraps an http.Handler, attaches *RequestInfo, and writes the
// access line once the response is done.
func Enrich(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		info := &RequestInfo{
			UA:        parseUA(r.UserAgent(), r.Header.Get("Accept-Language")),
			RemoteIP:  clientIP(r),
			URL:       r.URL, // pointer copy; safe for read-only access
			Timestamp: start.UTC(),
		}

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		ctx := context.WithValue(r.Context(), ctxKey{}, info)
		next.ServeHTTP(ww, r.WithContext(ctx))

		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", info.RemoteIP),
			zap.String("browser", info.UA.Browser),
			zap.Bool("bot", info.UA.IsBot),
		)
	})
}

/*──────────────────────────── client IP helper ─────────────────────────────*/

// clientIP is the peer address without the port.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
