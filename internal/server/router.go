// internal/server/router.go
//
// Router assembly.
//
// One router serves every topology: request enrichment and access logging
// first, then security headers, then optional compression, then the
// catch-all static handler.  chi's Compress only kicks in for responses
// whose content type is on its allow list and whose client offered a
// matching Accept-Encoding, so enabling it is safe for binary assets.

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/yanizio/serve/internal/config"
	"github.com/yanizio/serve/internal/middleware"
	"github.com/yanizio/serve/internal/policy"
	"github.com/yanizio/serve/internal/requestinfo"
	"github.com/yanizio/serve/internal/static"
)

// newRouter wires the middleware chain around the static handler.
func newRouter(cfg *config.Config, pol *policy.Policy) http.Handler {
	r := chi.NewRouter()

	r.Use(requestinfo.Enrich)
	r.Use(middleware.Security(cfg.TLS != nil))
	if !cfg.DisableCompression {
		r.Use(chimw.Compress(5))
	}

	// Every method and every path lands on the policy engine; the
	// handler itself answers non-GET/HEAD with 405.
	r.Handle("/*", static.New(pol))
	return r
}
