// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Source hands out the current directory.
//
// The directory itself is never mutated; Store replaces it as a whole so a
// caller holding an older *Directory keeps a consistent view.
//
// Thread Safety: Safe for concurrent use.
type Source struct {
	current atomic.Pointer[Directory]
}

// NewSource creates a source serving d.
func NewSource(d *Directory) *Source {
	s := &Source{}
	s.current.Store(d)
	return s
}

// Current returns the directory in effect.
func (s *Source) Current() *Directory {
	return s.current.Load()
}

// Store replaces the directory in effect.
func (s *Source) Store(d *Directory) {
	if d != nil {
		s.current.Store(d)
	}
}

// Watcher reloads a directory file into a Source when it changes.
//
// # Description
//
// Watches the parent directory of the file (editors replace files through
// rename, which drops a watch placed on the file itself). Events are
// debounced; a file that fails to parse leaves the previous directory in
// effect and is logged.
//
// # Thread Safety
//
// Start and Stop are safe to call from different goroutines.
type Watcher struct {
	path     string
	source   *Source
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	onReload func(*Directory)

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewWatcher creates a watcher for path feeding source.
//
// Inputs:
//
//	path - The YAML directory file.
//	source - Receives every successfully parsed directory.
//	logger - Logger for reload events. Nil uses slog.Default().
//
// Outputs:
//
//	*Watcher - Not watching until Start is called.
//	error - Non-nil if the OS watcher cannot be created.
func NewWatcher(path string, source *Source, logger *slog.Logger) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("directory path is required")
	}
	if source == nil {
		return nil, errors.New("source must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		path:     filepath.Clean(path),
		source:   source,
		watcher:  fw,
		debounce: 200 * time.Millisecond,
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

// OnReload registers fn to run after each successful reload. Must be called
// before Start.
func (w *Watcher) OnReload(fn func(*Directory)) {
	w.onReload = fn
}

// Start begins watching. Watching ends when ctx is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}

	w.wg.Add(1)
	go w.loop(ctx)
	return nil
}

// Stop stops watching and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
	w.wg.Wait()
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerCh = timer.C
		case <-timerCh:
			timerCh = nil
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("directory watcher error", "path", w.path, "error", err)
		}
	}
}

func (w *Watcher) reload() {
	d, err := LoadFile(w.path)
	if err != nil {
		w.logger.Error("directory reload failed, keeping previous", "path", w.path, "error", err)
		return
	}
	w.source.Store(d)
	w.logger.Info("directory reloaded", "path", w.path, "entries", d.Len())
	if w.onReload != nil {
		w.onReload(d)
	}
}
