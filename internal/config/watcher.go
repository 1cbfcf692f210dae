// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG FILE WATCHER
// =============================================================================

// Watcher hot-reloads the configuration file while the TUI runs. Editors
// typically write config files with a rename or a burst of writes, so
// events are debounced before a reload is attempted. A reload that fails
// validation keeps the previous configuration.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	lastHit time.Time
	subs    []func(*Config)

	ctx    context.Context
	cancel context.CancelFunc
}

// NewWatcher creates a watcher over the configuration directory. The
// directory, not the file, is watched: rename-style saves replace the
// inode and a file watch would go stale.
func NewWatcher(debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		watcher:  fsw,
		debounce: debounce,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Subscribe registers a callback invoked with the new configuration after
// every successful reload. Callbacks run on the watcher goroutine and
// receive a clone they may keep.
func (w *Watcher) Subscribe(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.subs = append(w.subs, fn)
}

// Watch starts watching. It returns immediately; events are processed on a
// background goroutine until Close.
func (w *Watcher) Watch() error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := w.watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}
	go w.processEvents(filepath.Base(path))
	return nil
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

func (w *Watcher) processEvents(filename string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("config: watcher goroutine panic: %v", r)
		}
	}()

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Debounce: restart the timer on every hit.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("config: watch error: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load()
	if err != nil {
		log.Printf("config: reload failed, keeping previous: %v", err)
		return
	}
	SetGlobal(cfg)

	w.mu.Lock()
	subs := make([]func(*Config), len(w.subs))
	copy(subs, w.subs)
	w.mu.Unlock()

	for _, fn := range subs {
		fn(cfg.Clone())
	}
}
