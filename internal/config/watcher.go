package config

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/inkstorm/internal/logging"
)

// Handler receives the freshly loaded configuration after the watched
// file changes.
type Handler func(Config)

// Watcher reloads the configuration when its file changes on disk.
// Rapid write bursts (editors often write a file several times in one
// save) are debounced into a single reload.
type Watcher struct {
	path     string
	handler  Handler
	logger   *logging.Logger
	debounce time.Duration

	mu    sync.Mutex
	fsw   *fsnotify.Watcher
	timer *time.Timer
	done  chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatchDebounce sets the quiet period after the last write before
// a reload fires.
func WithWatchDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatchLogger sets the diagnostic logger.
func WithWatchLogger(l *logging.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l.WithComponent("config")
		}
	}
}

// Watch starts watching the config file at path. The handler is called
// with the reloaded configuration; load or validation failures are
// logged and the previous configuration stays in effect.
func Watch(path string, handler Handler, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     path,
		handler:  handler,
		logger:   logging.Null,
		debounce: 250 * time.Millisecond,
		fsw:      fsw,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := fsw.Add(path); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	go w.run()
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watch error: %v", err)
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("config reload failed, keeping previous: %v", err)
		return
	}
	w.logger.Info("config reloaded from %s", w.path)
	w.handler(cfg)
}
