// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gogpu/graphview/options"
)

// DefaultDebounce coalesces the bursts of events editors produce on save.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads a configuration file and applies its render section to
// an options store.
type Watcher struct {
	path     string
	store    *options.Store
	debounce time.Duration

	// OnReload, if set, is called with every configuration that was
	// applied.
	OnReload func(*Config)

	// OnError, if set, is called when a reload fails. The store keeps its
	// previous options.
	OnError func(error)
}

// NewWatcher returns a watcher for path.
func NewWatcher(path string, store *options.Store) *Watcher {
	return &Watcher{path: path, store: store, debounce: DefaultDebounce}
}

// SetDebounce changes the quiet period before a reload.
func (w *Watcher) SetDebounce(d time.Duration) { w.debounce = max(d, 0) }

// Run watches until ctx is done. The parent directory is watched so that
// editors replacing the file by rename are seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}
	defer fw.Close()

	abs, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("config: watch %s: %w", filepath.Dir(abs), err)
	}
	slogger().Info("config: watching", "path", abs)

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slogger().Warn("config: watch error", "err", err)
		case <-timer.C:
			w.Reload()
		}
	}
}

// Reload reads the file once and applies it.
func (w *Watcher) Reload() {
	cfg, err := Load(w.path)
	if err == nil {
		var o options.Options
		if o, err = cfg.Options(); err == nil {
			err = w.store.Set(o)
		}
	}
	if err != nil {
		slogger().Warn("config: reload failed", "path", w.path, "err", err)
		if w.OnError != nil {
			w.OnError(err)
		}
		return
	}
	slogger().Info("config: reloaded", "path", w.path, "version", w.store.Version())
	if w.OnReload != nil {
		w.OnReload(cfg)
	}
}

// Watch runs a Watcher for path until ctx is done.
func Watch(ctx context.Context, path string, store *options.Store) error {
	return NewWatcher(path, store).Run(ctx)
}
