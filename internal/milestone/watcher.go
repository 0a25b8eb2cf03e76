package milestone

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/litescript/ls-telescope/internal/logging"
)

// DefaultDebounce is how long a file must stay quiet before it is re-read.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads a milestones file whenever it changes on disk.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *logging.Logger
	fsw      *fsnotify.Watcher
}

// NewWatcher creates a watcher for path. Call Start to begin watching.
func NewWatcher(path string, logger *logging.Logger) *Watcher {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: DefaultDebounce,
		logger:   logger,
	}
}

// Start watches the file's directory until ctx is cancelled. Editors often
// replace files instead of writing them in place, so the directory is watched
// and events are filtered by name. onChange runs on the watcher goroutine.
func (w *Watcher) Start(ctx context.Context, onChange func([]Milestone, error)) error {
	if w.path == "" || w.path == "." {
		return fmt.Errorf("milestones path is empty")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return fmt.Errorf("watch dir %s: %w", dir, err)
	}
	w.fsw = fsw

	w.logger.Info("watching milestones file %s", w.path)
	go w.loop(ctx, onChange)
	return nil
}

func (w *Watcher) loop(ctx context.Context, onChange func([]Milestone, error)) {
	defer w.fsw.Close()

	var reload <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("milestone watcher shutting down")
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			reload = time.After(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("milestone watcher: %v", err)

		case <-reload:
			reload = nil
			ms, err := Load(w.path)
			if err != nil {
				w.logger.Warn("reload milestones: %v", err)
			} else {
				w.logger.Info("reloaded %d milestones", len(ms))
			}
			onChange(ms, err)
		}
	}
}
