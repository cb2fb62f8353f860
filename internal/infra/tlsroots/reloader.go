// Package tlsroots keeps the exporter's serving certificate current.
//
// Reloader loads a key pair and reloads it whenever the certificate or key
// file is written, so certificates rotate without a restart. Attempts are
// counted in the omfamily_tls_reloads family when a registry is given.
package tlsroots

import (
	"crypto/tls"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yndnr/omfamily/internal/telemetry/logger"
	"github.com/yndnr/omfamily/internal/telemetry/metric"
	"github.com/yndnr/omfamily/pkg/family"
	"github.com/yndnr/omfamily/pkg/labels"
	pkgmetric "github.com/yndnr/omfamily/pkg/metric"
)

// ReloadsName is the family counting reload attempts by result.
const ReloadsName = "omfamily_tls_reloads"

// DefaultDebounce collapses the burst of events a single rotation produces.
const DefaultDebounce = 500 * time.Millisecond

type resultLabels struct {
	Result string
}

func (l resultLabels) Pairs() []labels.Pair {
	return []labels.Pair{{Name: "result", Value: l.Result}}
}

// Reloader serves the latest successfully loaded certificate.
type Reloader struct {
	certFile string
	keyFile  string
	cert     atomic.Pointer[tls.Certificate]

	watcher  *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
	logger   logger.Logger

	registry *metric.Registry
	reloads  family.Family[resultLabels, *pkgmetric.Counter]

	debounce time.Duration
	timerMu  sync.Mutex
	timer    *time.Timer
	reloadMu sync.Mutex
}

// Option configures a Reloader.
type Option func(*Reloader)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Reloader) {
		r.logger = l
	}
}

// WithDebounce sets how long the files must stay quiet before a reload.
func WithDebounce(d time.Duration) Option {
	return func(r *Reloader) {
		r.debounce = d
	}
}

// WithRegistry registers the reload counter family in reg.
func WithRegistry(reg *metric.Registry) Option {
	return func(r *Reloader) {
		r.registry = reg
	}
}

// NewReloader loads certFile and keyFile and starts watching their
// directories. Call Start or StartAsync to process changes.
func NewReloader(certFile, keyFile string, opts ...Option) (*Reloader, error) {
	r := &Reloader{
		certFile: filepath.Clean(certFile),
		keyFile:  filepath.Clean(keyFile),
		done:     make(chan struct{}),
		logger:   logger.Default(),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.registry != nil {
		f, err := metric.NewCounterFamily[resultLabels](r.registry, ReloadsName, "Certificate reload attempts by result")
		if err != nil {
			return nil, fmt.Errorf("tlsroots: %w", err)
		}
		r.reloads = f
	}

	if err := r.reload(); err != nil {
		return nil, fmt.Errorf("tlsroots: initial load: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("tlsroots: create watcher: %w", err)
	}
	// Directories survive the rename-into-place most rotation tools use.
	for _, dir := range uniqueDirs(r.certFile, r.keyFile) {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, fmt.Errorf("tlsroots: watch %s: %w", dir, err)
		}
	}
	r.watcher = w
	return r, nil
}

func uniqueDirs(paths ...string) []string {
	var dirs []string
	seen := make(map[string]bool)
	for _, p := range paths {
		d := filepath.Dir(p)
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// Start processes file events until Stop is called.
func (r *Reloader) Start() {
	r.logger.Info("certificate watcher started", "cert_file", r.certFile, "key_file", r.keyFile)

	for {
		select {
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			name := filepath.Clean(event.Name)
			if name != r.certFile && name != r.keyFile {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			r.logger.Debug("certificate file changed", "file", name, "op", event.Op.String())
			r.scheduleReload()

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Error("certificate watcher error", "error", err)

		case <-r.done:
			return
		}
	}
}

// StartAsync runs Start in a goroutine.
func (r *Reloader) StartAsync() {
	go r.Start()
}

// Stop stops watching. It is safe to call more than once.
func (r *Reloader) Stop() error {
	var err error
	r.stopOnce.Do(func() {
		close(r.done)
		r.timerMu.Lock()
		if r.timer != nil {
			r.timer.Stop()
		}
		r.timerMu.Unlock()
		err = r.watcher.Close()
	})
	return err
}

// GetCertificate implements tls.Config.GetCertificate.
func (r *Reloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return r.cert.Load(), nil
}

// TLSConfig returns a server configuration backed by the reloader.
func (r *Reloader) TLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion:     tls.VersionTLS12,
		GetCertificate: r.GetCertificate,
	}
}

// scheduleReload reloads once the files have been quiet for the debounce
// interval. Every event restarts the wait, so a cert and key written
// separately are loaded together.
func (r *Reloader) scheduleReload() {
	r.timerMu.Lock()
	defer r.timerMu.Unlock()

	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.debounce, func() {
		select {
		case <-r.done:
			return
		default:
		}
		if err := r.reload(); err != nil {
			r.logger.Error("certificate reload failed", "error", err, "cert_file", r.certFile)
		}
	})
}

// reload loads the pair. A failed load keeps the previous certificate.
func (r *Reloader) reload() error {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		r.count("failure")
		return fmt.Errorf("load key pair: %w", err)
	}
	r.cert.Store(&cert)
	r.count("success")
	r.logger.Info("certificate loaded", "cert_file", r.certFile)
	return nil
}

func (r *Reloader) count(result string) {
	if r.registry == nil {
		return
	}
	r.reloads.GetOrCreate(resultLabels{Result: result}).Inc()
}
