// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: registry/watcher.go
// Summary: Watches the programs directory and reports debounced changes.
// Usage: The shell posts the change callback onto the frame loop, which
// rescans the catalog and rebuilds the taskbar.

package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce coalesces bursts of file events such as a program copy.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reports changes below a programs directory. The callback runs on
// the watcher's own goroutine.
type Watcher struct {
	log      *zap.Logger
	dir      string
	debounce time.Duration
	onChange func()

	fs *fsnotify.Watcher

	mu     sync.Mutex
	timer  *time.Timer
	closed bool

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher starts watching dir and its immediate subdirectories. dir is
// created if it does not exist.
func NewWatcher(dir string, debounce time.Duration, onChange func(), log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create programs directory: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		log:      log,
		dir:      dir,
		debounce: debounce,
		onChange: onChange,
		fs:       fsw,
		done:     make(chan struct{}),
	}
	if err := w.addTree(); err != nil {
		fsw.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

func (w *Watcher) addTree() error {
	if err := w.fs.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("read programs directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			w.addDir(filepath.Join(w.dir, e.Name()))
		}
	}
	return nil
}

func (w *Watcher) addDir(path string) {
	if err := w.fs.Add(path); err != nil {
		w.log.Warn("watch program directory", zap.String("dir", path), zap.Error(err))
	}
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.log.Debug("programs directory event", zap.String("op", ev.Op.String()), zap.String("file", ev.Name))
			if ev.Has(fsnotify.Create) && filepath.Dir(ev.Name) == filepath.Clean(w.dir) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					w.addDir(ev.Name)
				}
			}
			if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			w.schedule()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("programs watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed || w.onChange == nil {
		return
	}
	w.onChange()
}

// Close stops watching. Pending notifications are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()
	return err
}
