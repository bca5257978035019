// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch re-runs a conversion whenever its input file changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events editors produce on save.
const DefaultDebounce = 200 * time.Millisecond

// Watcher calls a function on every change to one file.
type Watcher struct {
	Path     string
	Debounce time.Duration
	Logger   *slog.Logger
}

// Run calls fn once, then again after each write, create or rename onto
// w.Path, until ctx is cancelled. Errors from fn are logged and do not stop
// the loop. Run returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context) error) error {
	logger := w.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file instead of writing in place, so the
	// directory is watched rather than the file.
	dir := filepath.Dir(w.Path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	base := filepath.Base(w.Path)

	run := func() {
		if err := fn(ctx); err != nil {
			logger.Error("conversion failed", "path", w.Path, "error", err)
		}
	}
	run()

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			logger.Debug("input changed", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			run()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "path", w.Path, "error", err)
		}
	}
}
