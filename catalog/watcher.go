package catalog

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

const (
	// seedEventBuffer is the size of the watch event channel.
	seedEventBuffer = 64

	defaultDebounce = 500 * time.Millisecond
)

// SeedEvent reports a change to a seed file on disk.
type SeedEvent struct {
	// Path is the absolute path of the changed seed file.
	Path string

	// Removed is true when the file was deleted or renamed away.
	Removed bool
}

// SeedWatcher watches a directory tree for changes to seed files
// matching a glob pattern and emits debounced events. A burst of
// writes to the same file collapses into a single event.
type SeedWatcher struct {
	root     string
	pattern  string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]bool // path -> removed

	events chan SeedEvent

	dropped atomic.Int64
}

// NewSeedWatcher creates a watcher for seed files under root matching
// pattern. The pattern is relative to root and supports ** globs,
// e.g. "seeds/**/*.json".
func NewSeedWatcher(root, pattern string, debounce time.Duration, logger *slog.Logger) (*SeedWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &SeedWatcher{
		root:     root,
		pattern:  pattern,
		debounce: debounce,
		watcher:  fsw,
		logger:   logger,
		pending:  make(map[string]bool),
		events:   make(chan SeedEvent, seedEventBuffer),
	}, nil
}

// Events returns the channel of seed file events. The channel is
// closed when the watcher stops.
func (w *SeedWatcher) Events() <-chan SeedEvent {
	return w.events
}

// Dropped reports how many events were discarded because the event
// channel was full.
func (w *SeedWatcher) Dropped() int64 {
	return w.dropped.Load()
}

// Start begins watching. It returns after the initial watches are in
// place; event processing continues until ctx is cancelled or Stop is
// called.
func (w *SeedWatcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.root, 0755); err != nil {
		return err
	}
	if err := w.addWatchesRecursive(w.root); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Seed watcher started",
		"root", w.root,
		"pattern", w.pattern,
		"debounce", w.debounce)
	return nil
}

// Stop stops the watcher. The events channel is closed by the event
// loop when it exits.
func (w *SeedWatcher) Stop() error {
	return w.watcher.Close()
}

// Matches reports whether path matches the watcher's seed pattern.
func (w *SeedWatcher) Matches(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	ok, err := doublestar.Match(w.pattern, filepath.ToSlash(rel))
	return err == nil && ok
}

func (w *SeedWatcher) addWatchesRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}

		base := filepath.Base(path)
		if strings.HasPrefix(base, ".") && base != "." {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory",
				"path", path,
				"error", err)
		}
		return nil
	})
}

func (w *SeedWatcher) processEvents(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Seed watcher error", "error", err)

		case <-ticker.C:
			w.flushPending()
		}
	}
}

func (w *SeedWatcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	// New directories need their own watch for recursion.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !strings.HasPrefix(filepath.Base(path), ".") {
				if err := w.watcher.Add(path); err != nil {
					w.logger.Warn("Failed to watch new directory",
						"path", path,
						"error", err)
				}
			}
			return
		}
	}

	if !w.Matches(path) {
		return
	}

	removed := event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)

	w.pendingMu.Lock()
	w.pending[path] = removed
	w.pendingMu.Unlock()

	w.logger.Debug("Seed change detected",
		"path", path,
		"op", event.Op.String())
}

func (w *SeedWatcher) flushPending() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	batch := w.pending
	w.pending = make(map[string]bool)
	w.pendingMu.Unlock()

	for path, removed := range batch {
		select {
		case w.events <- SeedEvent{Path: path, Removed: removed}:
		default:
			w.dropped.Add(1)
			w.logger.Warn("Seed event dropped, channel full", "path", path)
		}
	}
}
