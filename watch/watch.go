// Package watch reruns a task whenever a config file changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Common errors
var (
	ErrNoPath     = errors.New("watch: no file to watch")
	ErrNoCallback = errors.New("watch: no change callback")
)

// DefaultDebounce coalesces bursts of writes from editors
const DefaultDebounce = 200 * time.Millisecond

// Config holds watcher configuration
type Config struct {
	// Path is the file to watch. Its directory is watched so that
	// editors replacing the file by rename are still seen.
	Path string

	// Debounce is the quiet period before OnChange runs
	Debounce time.Duration

	// OnChange runs after the file settles
	OnChange func(ctx context.Context) error

	// OnError receives watcher and OnChange errors; Run keeps going
	OnError func(err error)
}

// Watcher watches a single file
type Watcher struct {
	config  Config
	target  string
	fs      *fsnotify.Watcher
	changes int32
}

// New creates a watcher and starts listening immediately, so changes made
// after New returns are never missed.
func New(config Config) (*Watcher, error) {
	if config.Path == "" {
		return nil, ErrNoPath
	}
	if config.OnChange == nil {
		return nil, ErrNoCallback
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}

	target, err := filepath.Abs(config.Path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", config.Path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if err := fsw.Add(filepath.Dir(target)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch: add %s: %w", filepath.Dir(target), err)
	}

	return &Watcher{config: config, target: target, fs: fsw}, nil
}

// Changes returns how many times OnChange has run
func (w *Watcher) Changes() int {
	return int(atomic.LoadInt32(&w.changes))
}

// Run dispatches change events until ctx is done. The watcher is closed
// on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.config.Debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.config.Debounce)
			}
			fire = timer.C

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.reportError(err)

		case <-fire:
			fire = nil
			atomic.AddInt32(&w.changes, 1)
			if err := w.config.OnChange(ctx); err != nil {
				w.reportError(err)
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	name, err := filepath.Abs(ev.Name)
	if err != nil || name != w.target {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

func (w *Watcher) reportError(err error) {
	if w.config.OnError != nil {
		w.config.OnError(err)
	}
}
