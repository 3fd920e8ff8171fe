// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/flowvo-tui/internal/model"
)

// =============================================================================
// DROP FOLDER WATCHER
// =============================================================================

// defaultDebounce waits for writes to settle before ingesting; editors
// and downloads write files in bursts.
const defaultDebounce = 500 * time.Millisecond

// WatchEvent is one file picked up from the drop folder.
type WatchEvent struct {
	Attachment model.Attachment
	Err        error
	Path       string
}

// Watcher ingests files dropped into a watched directory and delivers
// them on Events.
type Watcher struct {
	pipeline *Pipeline
	dir      string
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]time.Time

	events chan WatchEvent
	ctx    context.Context
	cancel context.CancelFunc
}

// NewWatcher creates a watcher for dir. Call Watch to start it.
func NewWatcher(pipeline *Pipeline, dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		pipeline: pipeline,
		dir:      dir,
		watcher:  fw,
		debounce: defaultDebounce,
		pending:  make(map[string]time.Time),
		events:   make(chan WatchEvent, 16),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Events delivers ingested files. Closed when the watcher stops.
func (w *Watcher) Events() <-chan WatchEvent {
	return w.events
}

// Watch starts watching the drop folder. Only the top-level directory
// is watched; drop folders are flat by convention.
func (w *Watcher) Watch() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}
	go w.processEvents()
	go w.processPending()
	return nil
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

// processEvents records create/write events for debounced ingestion.
func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.mu.Lock()
			w.pending[ev.Name] = time.Now()
			w.mu.Unlock()
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// processPending ingests files whose last write settled past the
// debounce window.
func (w *Watcher) processPending() {
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()
	defer close(w.events)

	for {
		select {
		case <-w.ctx.Done():
			return
		case now := <-ticker.C:
			var ready []string
			w.mu.Lock()
			for path, last := range w.pending {
				if now.Sub(last) >= w.debounce {
					ready = append(ready, path)
					delete(w.pending, path)
				}
			}
			w.mu.Unlock()

			for _, path := range ready {
				att, err := w.pipeline.Ingest(w.ctx, path, "")
				select {
				case w.events <- WatchEvent{Attachment: att, Err: err, Path: path}:
				case <-w.ctx.Done():
					return
				}
			}
		}
	}
}
