// internal/server/server_test.go
//
// Topology planning and listener lifecycle tests.
//
// Context
// -------
// Behaviours covered:
//
//   • topology follows the config: plain, TLS, TLS with redirect on 443
//   • redirect_http off 443 degrades to a plain HTTPS topology
//   • Run serves requests and returns nil once the context is cancelled
//   • a bind failure surfaces as an error instead of hanging
//
// The lifecycle tests bind real sockets on 127.0.0.1 with ports picked by
// the kernel.

package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yanizio/serve/internal/config"
)

func TestPlanTopology(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.Config
		want Topology
	}{
		{"plain", config.Config{Port: 3000}, topologyHTTP},
		{"tls", config.Config{Port: 8443, TLS: &config.TLS{}}, topologyHTTPS},
		{"redirect on 443", config.Config{Port: 443, TLS: &config.TLS{RedirectHTTP: true}}, topologyHTTPSRedirect},
		{"redirect off 443", config.Config{Port: 8443, TLS: &config.TLS{RedirectHTTP: true}}, topologyHTTPS},
	}
	for _, c := range cases {
		if got := planTopology(&c.cfg); got != c.want {
			t.Fatalf("%s: topology = %v, want %v", c.name, got, c.want)
		}
	}
}

func pickPort(t *testing.T) uint16 {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("pick port: %v", err)
	}
	defer l.Close()
	return uint16(l.Addr().(*net.TCPAddr).Port)
}

func testConfig(t *testing.T, port uint16) *config.Config {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "index.html"), []byte("<html>up</html>"), 0o644); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return &config.Config{
		Path:        root,
		Addr:        "127.0.0.1",
		Port:        port,
		LogLevel:    "info",
		LogMaxFiles: 7,
	}
}

func TestRun_ServesAndStopsOnCancel(t *testing.T) {
	cfg := testConfig(t, pickPort(t))

	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	url := fmt.Sprintf("http://%s/", cfg.ListenAddr())
	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never came up: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_BindFailureSurfaces(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("occupy port: %v", err)
	}
	defer l.Close()

	cfg := testConfig(t, uint16(l.Addr().(*net.TCPAddr).Port))
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Run(ctx); err == nil {
		t.Fatal("Run succeeded with the port already taken")
	}
}
