// internal/middleware/security_test.go
//
// Security-header middleware tests: baseline headers on every response,
// HSTS gated on the TLS flag, pre-set values left alone.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSecurity_BaselineHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	Security(false)(okHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if v := rr.Header().Get("X-Content-Type-Options"); v != "nosniff" {
		t.Fatalf("x-content-type-options = %q, want nosniff", v)
	}
	if v := rr.Header().Get("Referrer-Policy"); v != "strict-origin-when-cross-origin" {
		t.Fatalf("referrer-policy = %q", v)
	}
	if v := rr.Header().Get("Strict-Transport-Security"); v != "" {
		t.Fatalf("hsts = %q on a plain listener, want none", v)
	}
}

func TestSecurity_HSTSOnTLS(t *testing.T) {
	rr := httptest.NewRecorder()
	Security(true)(okHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if v := rr.Header().Get("Strict-Transport-Security"); v == "" {
		t.Fatal("hsts missing on a TLS listener")
	}
}

func TestSecurity_KeepsExistingValues(t *testing.T) {
	inner := Security(false)(okHandler())
	outer := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Referrer-Policy", "no-referrer")
		inner.ServeHTTP(w, r)
	})

	rr := httptest.NewRecorder()
	outer.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rr.Header().Get("Referrer-Policy"); got != "no-referrer" {
		t.Fatalf("referrer-policy = %q, want the pre-set value kept", got)
	}
}
