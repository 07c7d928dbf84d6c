// Package watcher reloads local CSV sources when they change on disk.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/graph-explorer/pkg/logging"
)

// ChangeEvent signals that the watched source changed.
type ChangeEvent struct {
	Path      string
	Timestamp time.Time
}

// FileWatcher watches a single local source file. Rapid successive
// writes (editors, partial downloads) are debounced: an event is
// emitted only after a quiet period, and at the latest after maxWait.
type FileWatcher struct {
	watcher     *fsnotify.Watcher
	path        string
	events      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewFileWatcher creates a watcher for the given source file.
func NewFileWatcher(path string, quietPeriod, maxWait time.Duration) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	return &FileWatcher{
		watcher:     w,
		path:        abs,
		events:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}, nil
}

// Start begins watching. Watching the containing directory rather than
// the file itself survives rename-based atomic saves.
func (fw *FileWatcher) Start(ctx context.Context) error {
	if err := fw.watcher.Add(filepath.Dir(fw.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(fw.path), err)
	}

	logging.Info("watching source for changes", "path", fw.path)
	go fw.processEvents(ctx)
	return nil
}

func (fw *FileWatcher) processEvents(ctx context.Context) {
	var (
		quietTimer   *time.Timer
		maxWaitTimer *time.Timer
		pending      bool
	)

	timerC := func(t *time.Timer) <-chan time.Time {
		if t == nil {
			return nil
		}
		return t.C
	}

	flush := func() {
		if !pending {
			return
		}
		pending = false
		if quietTimer != nil {
			quietTimer.Stop()
			quietTimer = nil
		}
		if maxWaitTimer != nil {
			maxWaitTimer.Stop()
			maxWaitTimer = nil
		}
		fw.events <- ChangeEvent{Path: fw.path, Timestamp: time.Now()}
	}

	for {
		select {
		case <-ctx.Done():
			fw.watcher.Close()
			close(fw.events)
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				close(fw.events)
				return
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			pending = true
			if quietTimer == nil {
				quietTimer = time.NewTimer(fw.quietPeriod)
			} else {
				quietTimer.Reset(fw.quietPeriod)
			}
			if maxWaitTimer == nil {
				maxWaitTimer = time.NewTimer(fw.maxWait)
			}

		case <-timerC(quietTimer):
			flush()

		case <-timerC(maxWaitTimer):
			flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of debounced change events.
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Stop stops the file watcher.
func (fw *FileWatcher) Stop() error {
	return fw.watcher.Close()
}
