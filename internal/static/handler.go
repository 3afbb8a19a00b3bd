// internal/static/handler.go
//
// HTTP surface of the disposition engine.
//
// Context
// -------
// Handler maps each disposition onto a response.  Files go through
// http.ServeContent, which brings ranges, conditional requests, and
// content-type detection; OKOverride rides the same path, so the SPA
// fallback gets all of that for free with the 200 status ServeContent
// sends for a full response.  The 404-with-body case writes by hand
// because ServeContent cannot send a non-200 family status.
//
// The only request-time error is ErrOutOfRoot, answered with 400 and
// counted; nothing here can take the process down.

package static

import (
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/yanizio/serve/internal/metrics"
	"github.com/yanizio/serve/internal/policy"
)

// Handler serves every request through the policy engine.
type Handler struct {
	policy *policy.Policy
}

// New returns the catch-all handler mounted at the router root.
func New(p *policy.Policy) *Handler { return &Handler{policy: p} }

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	disp, err := h.policy.Decide(r.URL.Path)
	if err != nil {
		if errors.Is(err, policy.ErrOutOfRoot) {
			metrics.RequestsTotal.WithLabelValues("out_of_root").Inc()
			zap.L().Warn("request escapes root", zap.String("path", r.URL.Path))
			http.Error(w, "invalid path", http.StatusBadRequest)
			return
		}
		zap.L().Error("disposition failed", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	metrics.RequestsTotal.WithLabelValues(disp.Kind.String()).Inc()

	switch disp.Kind {
	case policy.ServeFile, policy.OKOverride:
		h.sendFile(w, r, disp.Path)
	case policy.NotFoundWithBody:
		h.sendNotFound(w, r, disp.Path)
	default: // NotFoundEmpty
		w.WriteHeader(http.StatusNotFound)
	}
}

// sendFile opens name and hands it to ServeContent.
func (h *Handler) sendFile(w http.ResponseWriter, r *http.Request, name string) {
	f, err := os.Open(name)
	if err != nil {
		h.sendOpenError(w, name, err)
		return
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		zap.L().Error("stat failed", zap.String("file", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	http.ServeContent(w, r, st.Name(), st.ModTime(), f)
}

// sendOpenError translates open failures the way the net/http file server
// does: permission problems are the client's 403, a file that vanished
// between Decide and Open is a 404, the rest stay 500.
func (h *Handler) sendOpenError(w http.ResponseWriter, name string, err error) {
	switch {
	case errors.Is(err, fs.ErrPermission):
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	case errors.Is(err, fs.ErrNotExist):
		w.WriteHeader(http.StatusNotFound)
	default:
		zap.L().Error("open failed", zap.String("file", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// sendNotFound writes the fallback body with a 404 status and a type
// derived from the fallback's extension.
func (h *Handler) sendNotFound(w http.ResponseWriter, r *http.Request, name string) {
	body, err := os.ReadFile(name)
	if err != nil {
		zap.L().Error("read fallback failed", zap.String("file", name), zap.Error(err))
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(http.StatusNotFound)
	if r.Method != http.MethodHead {
		_, _ = w.Write(body)
	}
}
