package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Aman-CERP/typeahead/internal/debounce"
)

// DefaultReloadWindow coalesces editor write bursts into one reload.
const DefaultReloadWindow = 200 * time.Millisecond

// WordsWatcher reloads a WordList whenever its backing file changes.
// The parent directory is watched so atomic rename-on-save is seen.
type WordsWatcher struct {
	path     string
	list     *WordList
	gate     *debounce.Gate
	logger   *slog.Logger
	onReload func(words int)

	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	mu        sync.Mutex
	stopped   bool
}

// WatchOption configures a WordsWatcher.
type WatchOption func(*WordsWatcher)

// WithReloadHook is called after every successful reload with the new size.
func WithReloadHook(fn func(words int)) WatchOption {
	return func(w *WordsWatcher) {
		w.onReload = fn
	}
}

// WithWatchLogger sets the logger.
func WithWatchLogger(logger *slog.Logger) WatchOption {
	return func(w *WordsWatcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithReloadWindow overrides the reload debounce window.
func WithReloadWindow(d time.Duration) WatchOption {
	return func(w *WordsWatcher) {
		w.gate = debounce.New(d)
	}
}

// NewWordsWatcher creates a watcher for path that refreshes list.
func NewWordsWatcher(path string, list *WordList, opts ...WatchOption) (*WordsWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve absolute path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &WordsWatcher{
		path:      abs,
		list:      list,
		gate:      debounce.New(DefaultReloadWindow),
		logger:    slog.Default(),
		fsWatcher: fsw,
		stopCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return w, nil
}

// Run processes file events until ctx is done or Stop is called.
func (w *WordsWatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.gate.Schedule(w.reload)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("words_watch_error", slog.String("error", err.Error()))
		}
	}
}

// reload reads the file and swaps the vocabulary. A failed read keeps the
// previous vocabulary.
func (w *WordsWatcher) reload() {
	words, err := ReadWords(w.path)
	if err != nil {
		w.logger.Warn("words_reload_failed",
			slog.String("path", w.path),
			slog.String("error", err.Error()))
		return
	}
	w.list.Replace(words)
	w.logger.Info("words_reloaded",
		slog.String("path", w.path),
		slog.Int("words", len(words)))
	if w.onReload != nil {
		w.onReload(len(words))
	}
}

// Stop stops watching. Safe to call multiple times.
func (w *WordsWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	w.gate.Stop()
	close(w.stopCh)
	return w.fsWatcher.Close()
}
