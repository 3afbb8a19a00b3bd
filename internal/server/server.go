// internal/server/server.go
//
// Topology planning and process lifetime.
//
/*
Context
--------
planTopology picks exactly one of three transport layouts from the
effective configuration, once, at startup:

  topologyHTTP           plain listener on addr:port
  topologyHTTPS          TLS listener on addr:port
  topologyHTTPSRedirect  TLS on addr:443 plus a port-80 redirect listener

redirect_http asks for the third layout but only holds when the TLS port
is 443.  On any other port the redirect is skipped with a warning, not an
error: no canonical HTTP port is implied.

Run starts the listener set under one errgroup: the main listener, the
optional redirect listener, the optional Prometheus listener, and the
certificate watcher when TLS is active.  Shutdown is abrupt: when ctx is
canceled every server closes immediately, no drain grace.  A failed bind
or a certificate that will not parse surfaces as an error from New/Run
and terminates the process.
*/
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/serve/internal/config"
	"github.com/yanizio/serve/internal/middleware"
	"github.com/yanizio/serve/internal/policy"
)

//
// topology
//

// Topology is the closed set of transport layouts.
type Topology int

const (
	topologyHTTP Topology = iota
	topologyHTTPS
	topologyHTTPSRedirect
)

func (t Topology) String() string {
	switch t {
	case topologyHTTP:
		return "http"
	case topologyHTTPS:
		return "https"
	case topologyHTTPSRedirect:
		return "https+redirect"
	default:
		return "unknown"
	}
}

// planTopology decides the layout from the effective configuration.
func planTopology(cfg *config.Config) Topology {
	switch {
	case cfg.TLS == nil:
		return topologyHTTP
	case cfg.TLS.RedirectHTTP && cfg.Port == 443:
		return topologyHTTPSRedirect
	default:
		if cfg.TLS.RedirectHTTP {
			zap.L().Warn("redirect_http requested but the TLS port is not 443, skipping the redirect listener",
				zap.Uint16("port", cfg.Port))
		}
		return topologyHTTPS
	}
}

//
// server
//

// Server runs one resolved configuration.
type Server struct {
	cfg     *config.Config
	top     Topology
	handler http.Handler
	kp      *keypair // nil unless TLS is active
}

// New plans the topology, builds the router, and loads TLS material.
// A certificate or key that will not parse fails here, before any
// listener binds.
func New(cfg *config.Config) (*Server, error) {
	pol, err := policy.New(cfg.Path, cfg.NotFound, cfg.OK)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		top:     planTopology(cfg),
		handler: newRouter(cfg, pol),
	}

	if cfg.TLS != nil {
		kp, err := loadKeypair(cfg.TLS.Cert, cfg.TLS.Key)
		if err != nil {
			return nil, fmt.Errorf("load tls keypair: %w", err)
		}
		s.kp = kp
	}
	return s, nil
}

// Run blocks until ctx is canceled or a listener fails.  A nil return
// means clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	switch s.top {
	case topologyHTTP:
		srv := newHTTPServer(s.cfg.ListenAddr(), s.handler)
		zap.L().Info("listening", zap.String("addr", srv.Addr))
		g.Go(func() error { return serveClosing(ctx, srv, srv.ListenAndServe) })

	case topologyHTTPS, topologyHTTPSRedirect:
		srv := newHTTPServer(s.cfg.ListenAddr(), s.handler)
		srv.TLSConfig = s.kp.tlsConfig()
		zap.L().Info("listening with TLS", zap.String("addr", srv.Addr))
		g.Go(func() error {
			return serveClosing(ctx, srv, func() error { return srv.ListenAndServeTLS("", "") })
		})
		g.Go(func() error { return s.kp.watch(ctx) })

		if s.top == topologyHTTPSRedirect {
			red := newHTTPServer(net.JoinHostPort(s.cfg.Addr, "80"), middleware.RedirectHTTPS())
			zap.L().Info("redirecting HTTP to HTTPS", zap.String("addr", red.Addr))
			g.Go(func() error { return serveClosing(ctx, red, red.ListenAndServe) })
		}
	}

	if s.cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		msrv := newHTTPServer(s.cfg.MetricsAddr, mux)
		zap.L().Info("metrics listening", zap.String("addr", msrv.Addr))
		g.Go(func() error { return serveClosing(ctx, msrv, msrv.ListenAndServe) })
	}

	return g.Wait()
}

// serveClosing runs serve and force-closes srv the moment ctx ends.
// ErrServerClosed is the expected way out on shutdown and maps to nil;
// real failures come back naming the listener.
func serveClosing(ctx context.Context, srv *http.Server, serve func() error) error {
	done := make(chan error, 1)
	go func() { done <- serve() }()

	select {
	case <-ctx.Done():
		_ = srv.Close()
		<-done
		return nil
	case err := <-done:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listener %s: %w", srv.Addr, err)
		}
		return nil
	}
}
