// internal/server/timeouts.go
//
// HTTP server factory with hardened timeouts.
//
// Hardening for a file server:
//
//   • ReadHeaderTimeout – abort slow-loris headers (10 s)
//   • IdleTimeout       – close keep-alives on idle clients (60 s)
//
// There is deliberately no WriteTimeout and no whole-request ReadTimeout:
// a legitimate client pulling a multi-gigabyte file over a slow link must
// not be cut off mid-transfer.
//

package server

import (
	"net/http"
	"time"
)

// newHTTPServer constructs an *http.Server with the shared hardening.
// TLSConfig is injected by callers that terminate TLS.
func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
