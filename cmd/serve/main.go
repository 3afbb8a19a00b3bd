// cmd/serve/main.go
//
// serve – static file server entry point.
//
// Startup order
// -------------
//
//  1. Load .env (best effort) so SERVE_ variables reach the resolver.
//
//  2. Install the bootstrap console logger.
//
//  3. Parse flags.  Usage mistakes exit 2; --help and --version exit 0.
//
//  4. Resolve configuration: defaults, then file, then environment, then
//     flags.  Validated centrally, persisted once when --config names a
//     new file.  Any failure exits 1 with the offending field and path.
//
//  5. Start the configured logger (file sink when log_path is set).
//
//  6. Plan the topology, bind listeners, serve until SIGINT/SIGTERM.
//     Bind and TLS failures exit 1; signal shutdown exits 0.
//
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/yanizio/serve/internal/cli"
	"github.com/yanizio/serve/internal/config"
	"github.com/yanizio/serve/internal/logger"
	"github.com/yanizio/serve/internal/server"
	"github.com/yanizio/serve/internal/version"
)

// loadEnv is best effort; a missing .env is the normal case.
func loadEnv() { _ = godotenv.Load() }

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	loadEnv()
	logger.Bootstrap()

	res, err := cli.Parse(os.Args[1:])
	switch {
	case errors.Is(err, pflag.ErrHelp):
		fmt.Print(cli.Usage())
		os.Exit(0)
	case err != nil:
		fmt.Fprintf(os.Stderr, "serve: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'serve --help' for usage.")
		os.Exit(2)
	}
	if res.ShowVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	cfg, err := config.Resolve(res.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "serve: %v\n", err)
		os.Exit(1)
	}
	if cfg.Created {
		fmt.Printf("Configuration file created at: %s\nYou can run\n  serve --config %s\nto use it.\n",
			cfg.ConfigPath, cfg.ConfigPath)
	}

	log, err := logger.New(cfg, runningInTTY())
	if err != nil {
		fmt.Fprintf(os.Stderr, "serve: %v\n", err)
		os.Exit(1)
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Errorw("startup failed", "err", err)
		fmt.Fprintf(os.Stderr, "serve: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infow("serve starting",
		"version", version.Version,
		"path", cfg.Path,
		"addr", cfg.ListenAddr(),
		"compression", !cfg.DisableCompression,
	)

	if err := srv.Run(ctx); err != nil {
		log.Errorw("server failed", "err", err)
		fmt.Fprintf(os.Stderr, "serve: %v\n", err)
		os.Exit(1)
	}
	log.Infow("shutdown complete")
}
