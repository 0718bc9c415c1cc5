// Package watcher reloads a keyword file into a Reloadable matcher whenever the
// file changes on disk.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/endorses/lexmatch/internal/pkg/ahocorasick"
	"github.com/endorses/lexmatch/internal/pkg/constants"
	"github.com/endorses/lexmatch/internal/pkg/keywords"
	"github.com/endorses/lexmatch/internal/pkg/logger"
	"github.com/fsnotify/fsnotify"
)

// Config configures the keyword file watcher.
type Config struct {
	// PollInterval is the fallback polling interval when fsnotify is unavailable.
	// Default: 1 second
	PollInterval time.Duration

	// Alphabet overrides the alphabet named in the keyword file.
	// Empty keeps the file's value.
	Alphabet string

	// ForcePolling skips fsnotify.
	ForcePolling bool
}

// DefaultConfig returns the default watcher configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval: constants.DefaultPollInterval,
	}
}

// Watcher watches a keyword file and rebuilds the matcher on change.
type Watcher struct {
	config    Config
	matcher   *ahocorasick.Reloadable
	path      string
	fsWatcher *fsnotify.Watcher
	mu        sync.Mutex
	stopChan  chan struct{}
	wg        sync.WaitGroup
	running   bool
	mode      string

	// Snapshot of the file version the last reload read. Taken before
	// reading, so a write racing the read is seen as a change by the poller.
	lastModTime time.Time
	lastSize    int64

	// Stats
	reloads uint64
	errors  uint64
	lastErr error
}

// New creates a watcher for path feeding m.
func New(path string, m *ahocorasick.Reloadable, config Config) *Watcher {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultConfig().PollInterval
	}
	return &Watcher{
		config:   config,
		matcher:  m,
		path:     path,
		lastSize: -1,
	}
}

// Start loads the keyword file once and then watches it for changes.
// A missing or broken file at start is logged and counted, not fatal.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.stopChan = make(chan struct{})
	w.fsWatcher = nil
	stop := w.stopChan
	w.mu.Unlock()

	if err := w.Reload(); err != nil {
		logger.Warn("failed to load keyword file",
			"path", w.path,
			"error", err)
	}

	if w.config.ForcePolling {
		return w.startPolling(ctx, stop)
	}
	return w.startFileWatcher(ctx, stop)
}

// startFileWatcher watches the parent directory so that atomic
// rename-into-place updates are seen.
func (w *Watcher) startFileWatcher(ctx context.Context, stop <-chan struct{}) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("fsnotify unavailable, falling back to polling",
			"error", err)
		return w.startPolling(ctx, stop)
	}

	dir := filepath.Dir(w.path)
	if err := fsWatcher.Add(dir); err != nil {
		logger.Warn("failed to watch directory, falling back to polling",
			"path", w.path,
			"dir", dir,
			"error", err)
		if cerr := fsWatcher.Close(); cerr != nil {
			logger.Error("failed to close fsnotify watcher", "error", cerr)
		}
		return w.startPolling(ctx, stop)
	}

	w.mu.Lock()
	w.fsWatcher = fsWatcher
	w.mode = "fsnotify"
	w.mu.Unlock()

	w.wg.Add(1)
	go w.fsWatchLoop(ctx, stop, fsWatcher)

	logger.Info("started keyword file watcher",
		"path", w.path,
		"mode", "fsnotify")

	return nil
}

func (w *Watcher) startPolling(ctx context.Context, stop <-chan struct{}) error {
	w.mu.Lock()
	w.mode = "polling"
	w.mu.Unlock()

	w.wg.Add(1)
	go w.pollLoop(ctx, stop)

	logger.Info("started keyword file watcher",
		"path", w.path,
		"mode", "polling",
		"interval", w.config.PollInterval)

	return nil
}

// Reload reads the keyword file and swaps in a new automaton. On any error the
// matcher keeps its current automaton.
func (w *Watcher) Reload() error {
	err := w.reload()

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.errors++
		w.lastErr = err
		return err
	}
	w.reloads++
	w.lastErr = nil
	return nil
}

func (w *Watcher) reload() error {
	w.snapshot()

	set, err := keywords.Load(w.path)
	if err != nil {
		return err
	}
	if w.config.Alphabet != "" {
		set.Alphabet = w.config.Alphabet
	}
	if err := set.Validate(); err != nil {
		return fmt.Errorf("%s: %w", w.path, err)
	}

	p, err := set.Policy()
	if err != nil {
		return err
	}
	if want := w.matcher.Policy().Name(); p.Name() != want {
		return fmt.Errorf("%s: alphabet %q does not match matcher alphabet %q", w.path, p.Name(), want)
	}

	return w.matcher.Update(set.Keywords)
}

// snapshot records the file's modtime and size as the version being loaded.
func (w *Watcher) snapshot() {
	info, err := os.Stat(w.path)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.lastModTime = time.Time{}
		w.lastSize = -1
		return
	}
	w.lastModTime = info.ModTime()
	w.lastSize = info.Size()
}

// changed reports whether info differs from the last loaded version.
func (w *Watcher) changed(info os.FileInfo) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !info.ModTime().Equal(w.lastModTime) || info.Size() != w.lastSize
}

func (w *Watcher) fsWatchLoop(ctx context.Context, stop <-chan struct{}, fsWatcher *fsnotify.Watcher) {
	defer w.wg.Done()

	targetPath, _ := filepath.Abs(w.path)

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}

			eventPath, _ := filepath.Abs(event.Name)
			if eventPath != targetPath {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if err := w.Reload(); err != nil {
					logger.Warn("keyword reload failed, keeping previous keywords",
						"path", w.path,
						"error", err)
				}
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				logger.Debug("keyword file moved away, waiting for it to reappear",
					"path", w.path)
			}
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			logger.Warn("fsnotify error", "error", err)
			w.mu.Lock()
			w.errors++
			w.mu.Unlock()
		}
	}
}

func (w *Watcher) pollLoop(ctx context.Context, stop <-chan struct{}) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			info, err := os.Stat(w.path)
			if err != nil {
				if !os.IsNotExist(err) {
					logger.Warn("failed to stat keyword file",
						"path", w.path,
						"error", err)
				}
				continue
			}

			if w.changed(info) {
				if err := w.Reload(); err != nil {
					logger.Warn("keyword reload failed, keeping previous keywords",
						"path", w.path,
						"error", err)
				}
			}
		}
	}
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	fsWatcher := w.fsWatcher
	stop := w.stopChan
	w.mu.Unlock()

	close(stop)

	if fsWatcher != nil {
		if err := fsWatcher.Close(); err != nil {
			logger.Error("failed to close fsnotify watcher", "error", err)
		}
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(constants.GracefulShutdownTimeout):
		logger.Warn("keyword file watcher did not stop in time",
			"path", w.path,
			"timeout", constants.GracefulShutdownTimeout)
	}

	logger.Info("stopped keyword file watcher",
		"path", w.path,
		"reloads", w.Reloads())

	return nil
}

// Reloads returns the number of successful reloads.
func (w *Watcher) Reloads() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

// Errors returns the number of failed reloads and watch errors.
func (w *Watcher) Errors() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errors
}

// Stats returns watcher statistics.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := Stats{
		Path:    w.path,
		Mode:    w.mode,
		Reloads: w.reloads,
		Errors:  w.errors,
		Running: w.running,
	}
	if w.lastErr != nil {
		s.LastError = w.lastErr.Error()
	}
	return s
}

// Stats contains watcher statistics.
type Stats struct {
	Path      string
	Mode      string
	Reloads   uint64
	Errors    uint64
	LastError string
	Running   bool
}
