package tlscert

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yndnr/docmesh-go/internal/telemetry/logger"
)

// DefaultSettle is how long file events must be quiet before a reload.
const DefaultSettle = 250 * time.Millisecond

// ErrNoCertificate is returned by GetCertificate before a successful load.
var ErrNoCertificate = errors.New("tlscert: no certificate loaded")

// Reloader holds the current certificate of a cert/key file pair.
type Reloader struct {
	certFile string
	keyFile  string
	settle   time.Duration
	logger   logger.Logger

	cert    atomic.Pointer[tls.Certificate]
	reloads atomic.Uint64
}

// Option configures a Reloader.
type Option func(*Reloader)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Reloader) { r.logger = l }
}

// WithSettle sets the quiet period that must follow the last file event
// before the pair is reloaded. Writing a new pair touches two files; the
// settle period keeps the reload from reading a half-rotated pair.
func WithSettle(d time.Duration) Option {
	return func(r *Reloader) { r.settle = d }
}

// New loads the pair once and returns a Reloader serving it.
func New(certFile, keyFile string, opts ...Option) (*Reloader, error) {
	r := &Reloader{
		certFile: certFile,
		keyFile:  keyFile,
		settle:   DefaultSettle,
		logger:   logger.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload reads the pair from disk. On failure the previous certificate
// stays in use.
func (r *Reloader) Reload() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return fmt.Errorf("tlscert: load key pair: %w", err)
	}
	r.cert.Store(&cert)
	r.reloads.Add(1)

	if cert.Leaf != nil {
		r.logger.Info("tls certificate loaded",
			"cert_file", r.certFile,
			"subject", cert.Leaf.Subject.String(),
			"not_after", cert.Leaf.NotAfter)
	}
	return nil
}

// Reloads returns how many times the pair was loaded successfully.
func (r *Reloader) Reloads() uint64 {
	return r.reloads.Load()
}

// GetCertificate implements tls.Config.GetCertificate.
func (r *Reloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	cert := r.cert.Load()
	if cert == nil {
		return nil, ErrNoCertificate
	}
	return cert, nil
}

// NotAfter returns the expiry of the current certificate.
func (r *Reloader) NotAfter() time.Time {
	if cert := r.cert.Load(); cert != nil && cert.Leaf != nil {
		return cert.Leaf.NotAfter
	}
	return time.Time{}
}

// TLSConfig returns a server configuration backed by r.
func (r *Reloader) TLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion:     tls.VersionTLS12,
		GetCertificate: r.GetCertificate,
	}
}

// Run watches the directories of both files and reloads after changes
// settle. It blocks until ctx is cancelled.
//
// Directories are watched instead of the files so that atomic renames
// and symlink swaps (as done by cert-manager style tooling) are seen.
func (r *Reloader) Run(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tlscert: create watcher: %w", err)
	}
	defer w.Close()

	dirs := map[string]struct{}{
		filepath.Dir(r.certFile): {},
		filepath.Dir(r.keyFile):  {},
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("tlscert: watch %s: %w", dir, err)
		}
	}

	names := map[string]struct{}{
		filepath.Base(r.certFile): {},
		filepath.Base(r.keyFile):  {},
	}

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending bool
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if _, ours := names[filepath.Base(event.Name)]; !ours {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			r.logger.Debug("tls file changed", "file", event.Name, "op", event.Op.String())

			if timer == nil {
				timer = time.NewTimer(r.settle)
				timerC = timer.C
			} else {
				timer.Reset(r.settle)
			}
			pending = true

		case <-timerC:
			if !pending {
				continue
			}
			pending = false
			if err := r.Reload(); err != nil {
				r.logger.Error("tls certificate reload failed, keeping previous certificate",
					"error", err,
					"cert_file", r.certFile,
					"key_file", r.keyFile)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("tls watcher error", "error", err)
		}
	}
}
