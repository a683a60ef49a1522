package config

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceWindow coalesces the burst of events editors produce
// when saving a file.
const DefaultDebounceWindow = 500 * time.Millisecond

// Debouncer coalesces rapid triggers using a trailing-edge debounce: the
// callback runs once no trigger has arrived for the debounce window.
type Debouncer struct {
	timer    *time.Timer
	duration time.Duration
	mu       sync.Mutex
}

// NewDebouncer creates a new Debouncer with the specified duration.
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{
		duration: duration,
	}
}

// Trigger schedules callback after the debounce window, resetting any
// pending timer.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, callback)
}

// Stop cancels any pending timer.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Watcher reloads the API key into a KeyStore whenever the config file
// changes on disk.
//
// The parent directory is watched rather than the file itself so that
// editors which save by rename, and files created after startup, are
// still picked up.
type Watcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	path      string
	store     *KeyStore
	logger    *log.Logger
	done      chan struct{}
	closeOnce sync.Once

	// OnReload, when set, is called after every reload attempt.
	OnReload func(changed bool, err error)
}

// NewWatcher creates a watcher for path. Call Run to start it.
func NewWatcher(path string, store *KeyStore, logger *log.Logger) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("config file path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	return &Watcher{
		watcher:   fsw,
		debouncer: NewDebouncer(DefaultDebounceWindow),
		path:      abs,
		store:     store,
		logger:    logger,
		done:      make(chan struct{}),
	}, nil
}

// SetDebounce overrides the debounce window. Must be called before Run.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debouncer = NewDebouncer(d)
}

// isConfigEvent reports whether the event touched the watched file.
func (w *Watcher) isConfigEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// Run processes events until Close is called.
func (w *Watcher) Run() error {
	w.logger.Debug("watching config file", "path", w.path)

	for {
		select {
		case <-w.done:
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.isConfigEvent(event) {
				w.debouncer.Trigger(w.reload)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

// reload re-reads the key from the config file. A file without a key, or
// one that cannot be read, leaves the current key in place.
func (w *Watcher) reload() {
	key, err := ReadConfigKey(w.path)
	changed := false
	switch {
	case err != nil:
		w.logger.Warn("failed to reload config file", "path", w.path, "error", err)
	case key == "":
		w.logger.Debug("config file has no API key, keeping current key", "path", w.path)
	default:
		changed = w.store.Set(key, SourceConfigFile)
		if changed {
			w.logger.Info("API key reloaded from config file", "path", w.path)
		}
	}

	if w.OnReload != nil {
		w.OnReload(changed, err)
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		w.debouncer.Stop()
		err = w.watcher.Close()
	})
	return err
}
