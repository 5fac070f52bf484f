// Package watcher notices edits to a task store so the dashboard can refresh
// before its next timer tick.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// StoreWatcher watches a store root and all of its non-hidden directories.
// Directories created later are added as they appear.
type StoreWatcher struct {
	root      string
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	changed   chan struct{} // capacity 1; a pending signal absorbs new ones
	cancel    context.CancelFunc
	done      chan struct{}
}

// New creates a watcher for root. debounce <= 0 uses
// DefaultDebounceDuration.
func New(root string, debounce time.Duration) (*StoreWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &StoreWatcher{
		root:      root,
		watcher:   fw,
		debouncer: NewDebouncer(debounce),
		changed:   make(chan struct{}, 1),
		done:      make(chan struct{}),
	}, nil
}

// Changed delivers one value per debounced burst of filesystem events.
func (w *StoreWatcher) Changed() <-chan struct{} {
	return w.changed
}

// Start registers the directory tree and begins the event loop. It stops
// when ctx is done or Stop is called.
func (w *StoreWatcher) Start(ctx context.Context) error {
	if err := w.addTree(w.root); err != nil {
		return fmt.Errorf("watch store: %w", err)
	}
	ctx, w.cancel = context.WithCancel(ctx)
	go w.watchLoop(ctx)
	return nil
}

// Stop ends the event loop and releases the fsnotify handle. Safe to call
// more than once.
func (w *StoreWatcher) Stop() {
	if w.cancel != nil {
		w.cancel()
		<-w.done
		w.cancel = nil
	}
	w.debouncer.Cancel()
	_ = w.watcher.Close()
}

// WatchedDirs returns the directories currently registered.
func (w *StoreWatcher) WatchedDirs() []string {
	return w.watcher.WatchList()
}

func (w *StoreWatcher) watchLoop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !hidden(event.Name) {
					if err := w.addTree(event.Name); err != nil {
						log.Warn("watch new task directory", "dir", event.Name, "err", err)
					}
				}
			}
			w.debouncer.Trigger(w.signal)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Errors don't stop the watcher; the refresh timer still runs.
			log.Warn("store watcher error", "err", err)
		}
	}
}

// signal does a non-blocking send on changed.
func (w *StoreWatcher) signal() {
	select {
	case w.changed <- struct{}{}:
	default:
	}
}

// addTree watches dir and every non-hidden directory below it.
func (w *StoreWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return filepath.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && hidden(path) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func hidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
