// internal/server/tlswatch.go
//
// TLS keypair store with filesystem hot reload.
//
/*
Context
--------
The HTTPS listener never holds a certificate directly.  It asks the store
through tls.Config.GetCertificate, and the store swaps its pair whenever
the certificate or key file changes on disk, so renewals take effect
without a restart.

fsnotify watches the parent directories of both files rather than the
files themselves: issuers and editors replace files by rename, which
would silently detach a watch held on the old inode.

A failed reload keeps the previous pair, counts into metrics, and retries
after a doubling delay that resets on success, so a renewal that writes
cert and key non-atomically converges once the second file lands.
*/
package server

import (
	"context"
	"crypto/tls"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/yanizio/serve/internal/metrics"
)

// keypair serves and reloads one certificate/key pair.
type keypair struct {
	certFile string
	keyFile  string

	mu   sync.RWMutex
	cert *tls.Certificate
}

// loadKeypair parses the pair once.  Failure here is fatal to startup.
func loadKeypair(certFile, keyFile string) (*keypair, error) {
	kp := &keypair{certFile: certFile, keyFile: keyFile}
	if err := kp.reload(); err != nil {
		return nil, err
	}
	return kp, nil
}

// get is the tls.Config.GetCertificate hook.
func (kp *keypair) get(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	kp.mu.RLock()
	defer kp.mu.RUnlock()
	return kp.cert, nil
}

// reload re-parses the pair from disk and swaps it in.
func (kp *keypair) reload() error {
	cert, err := tls.LoadX509KeyPair(kp.certFile, kp.keyFile)
	if err != nil {
		return err
	}
	kp.mu.Lock()
	kp.cert = &cert
	kp.mu.Unlock()
	return nil
}

// tlsConfig returns the listener configuration backed by the store.
func (kp *keypair) tlsConfig() *tls.Config {
	return &tls.Config{
		GetCertificate: kp.get,
		MinVersion:     tls.VersionTLS12,
	}
}

// watch blocks until ctx is done, reloading on every write or create of
// either file.
func (kp *keypair) watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	certAbs, err := filepath.Abs(kp.certFile)
	if err != nil {
		return err
	}
	keyAbs, err := filepath.Abs(kp.keyFile)
	if err != nil {
		return err
	}

	dirs := map[string]struct{}{
		filepath.Dir(certAbs): {},
		filepath.Dir(keyAbs):  {},
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			return err
		}
	}
	zap.L().Info("watching certificate pair",
		zap.String("cert", certAbs), zap.String("key", keyAbs))

	var (
		retry <-chan time.Time
		delay = time.Millisecond
	)

	reload := func() {
		if err := kp.reload(); err != nil {
			metrics.TLSReloadErrorsTotal.Inc()
			delay *= 2
			zap.L().Error("certificate reload failed",
				zap.Error(err), zap.Duration("retry_in", delay))
			retry = time.After(delay)
			return
		}
		metrics.TLSReloadsTotal.Inc()
		delay = time.Millisecond
		retry = nil
		zap.L().Info("certificate pair reloaded")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Op.Has(fsnotify.Write | fsnotify.Create) {
				continue
			}
			evAbs, err := filepath.Abs(ev.Name)
			if err != nil || (evAbs != certAbs && evAbs != keyAbs) {
				continue
			}
			reload()
		case <-retry:
			reload()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			zap.L().Error("certificate watcher error", zap.Error(err))
		}
	}
}
