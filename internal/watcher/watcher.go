// Package watcher signals, debounced, when images or the manifest change inside a result
// folder.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alexisbeaulieu97/xyzplot/internal/logger"
	"github.com/alexisbeaulieu97/xyzplot/internal/manifest"
	"github.com/alexisbeaulieu97/xyzplot/internal/store"
)

// DefaultDebounce coalesces the burst of writes a finished cell produces.
const DefaultDebounce = 250 * time.Millisecond

// Config holds watcher configuration options.
type Config struct {
	// Folder is the result folder path. It may not exist yet; its parent must.
	Folder   string
	Debounce time.Duration
	Logger   *logger.Logger
}

// Watcher monitors one result folder and sends a notification after changes settle.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	folder    string
	debounce  time.Duration
	log       *logger.Logger
	onChange  chan struct{}
	done      chan struct{}
	wg        sync.WaitGroup
	stopOnce  sync.Once
}

// New creates a new folder watcher.
func New(cfg Config) (*Watcher, error) {
	if cfg.Folder == "" {
		return nil, fmt.Errorf("watcher folder is required")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Watcher{
		fsWatcher: fsw,
		folder:    filepath.Clean(cfg.Folder),
		debounce:  debounce,
		log:       log.Component("watcher"),
		onChange:  make(chan struct{}, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching. When the folder does not exist yet its parent is watched until
// the folder is created. The returned channel receives a signal per settled burst.
func (w *Watcher) Start() (<-chan struct{}, error) {
	if isDir(w.folder) {
		if err := w.fsWatcher.Add(w.folder); err != nil {
			return nil, fmt.Errorf("watching directory %s: %w", w.folder, err)
		}
	} else {
		parent := filepath.Dir(w.folder)
		if err := w.fsWatcher.Add(parent); err != nil {
			return nil, fmt.Errorf("watching directory %s: %w", parent, err)
		}
	}

	w.wg.Add(1)
	go w.loop()

	return w.onChange, nil
}

// Stop terminates the watcher, waits for its goroutine and releases resources.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var (
		timer   *time.Timer
		pending bool
	)
	timerC := func() <-chan time.Time {
		if timer != nil {
			return timer.C
		}
		return nil
	}

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if w.isFolderCreated(event) {
				if err := w.fsWatcher.Add(w.folder); err != nil {
					w.log.WithField("folder", w.folder).WarnErr(err, "cannot watch created result folder")
				}
			} else if !w.isRelevantEvent(event) {
				continue
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			pending = true

		case <-timerC():
			if pending {
				select {
				case w.onChange <- struct{}{}:
				default:
				}
				pending = false
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.WithField("folder", w.folder).WarnErr(err, "folder watch error")

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) isFolderCreated(event fsnotify.Event) bool {
	return event.Op&fsnotify.Create != 0 && filepath.Clean(event.Name) == w.folder && isDir(w.folder)
}

// isRelevantEvent accepts changes to images and the manifest directly inside the folder.
// Temporary files of atomic writes start with a dot and are skipped; their rename
// produces a Create for the final name.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if filepath.Dir(filepath.Clean(event.Name)) != w.folder {
		return false
	}

	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if base == manifest.FileName {
		return true
	}
	_, ok := store.ImageExtensions[strings.ToLower(filepath.Ext(base))]
	return ok
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
