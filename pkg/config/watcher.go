package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc is called with the freshly loaded configuration after the
// watched file changes and parses cleanly. Implementations should apply
// only the runtime-tunable fields; structural settings (listen address,
// store path) require a restart.
type ReloadFunc func(cfg *Config)

// Watcher watches the configuration file for changes and triggers reloads.
// Edits are debounced to avoid reload storms from editors that write a
// file in several syscalls.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	reload   ReloadFunc
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher for the configuration file at path. The
// reload function is invoked after each successful reload.
func NewWatcher(path string, reload ReloadFunc) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		path:     path,
		watcher:  fsw,
		reload:   reload,
		debounce: 100 * time.Millisecond,
		logger:   slog.Default().With("component", "config.watcher"),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. Watching the parent directory rather than the
// file itself survives the rename-and-replace write pattern most editors
// and config management tools use.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("config watcher already running")
	}

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", dir, err)
	}
	w.running = true

	go w.loop()

	w.logger.Info("config watcher started", "path", w.path)
	return nil
}

// Stop stops watching and waits for the event loop to exit. Safe to call
// more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	_ = w.watcher.Close()
	<-w.doneCh
}

func (w *Watcher) loop() {
	defer close(w.doneCh)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watch error", "error", err)

		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.doReload)
}

func (w *Watcher) doReload() {
	// Environment overrides outrank the file on reload just as they do
	// at startup; a file edit must not clobber a pinned JANUS_* value.
	cfg, err := LoadWithEnvOverrides(w.path)
	if err != nil {
		// Keep running with the previous configuration.
		w.logger.Error("config reload failed", "path", w.path, "error", err)
		return
	}

	w.logger.Info("configuration reloaded", "path", w.path)
	w.reload(cfg)
}
