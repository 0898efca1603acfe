package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/atomspace/atom"
	"github.com/teranos/atomspace/errors"
	"github.com/teranos/atomspace/logger"
)

// DefaultDebounce collapses bursts of writes from editors into one reload
const DefaultDebounce = 500 * time.Millisecond

// ReloadFunc is called after each reload of the watched seed file.
// err is non-nil when the file could not be applied; the watcher keeps going.
type ReloadFunc func(res Result, err error)

// Watcher re-applies a seed file to a store whenever the file changes.
// Loading is idempotent, so a reload only adds what is new.
type Watcher struct {
	path     string
	dst      atom.Builder
	onReload ReloadFunc
	debounce time.Duration
	logger   *zap.SugaredLogger

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher creates a watcher for the seed file at path. onReload may be nil.
func NewWatcher(path string, dst atom.Builder, onReload ReloadFunc, log *zap.SugaredLogger) *Watcher {
	return &Watcher{
		path:     path,
		dst:      dst,
		onReload: onReload,
		debounce: DefaultDebounce,
		logger:   logger.OrNop(log).Named("ingest.watch"),
	}
}

// Run loads the file once, then reloads it on every change until ctx ends.
// The directory is watched rather than the file so editors that replace the
// file on save keep triggering reloads.
func (w *Watcher) Run(ctx context.Context) error {
	w.reload()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create fsnotify watcher")
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return errors.Wrapf(err, "failed to watch %s", w.path)
	}
	w.logger.Infow("Watching seed file", logger.FieldPath, w.path)

	target := filepath.Clean(w.path)
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.logger.Debugw("Seed file changed", logger.FieldPath, event.Name, "op", event.Op.String())
				w.schedule()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("Seed watcher error", logger.FieldError, err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	res, err := w.loadFile()
	if err != nil {
		w.logger.Errorw("Seed reload failed", logger.FieldPath, w.path, logger.FieldError, err)
	} else {
		w.logger.Infow("Seed loaded", logger.FieldPath, w.path,
			"nodes", len(res.Nodes), "links", len(res.Links))
	}
	if w.onReload != nil {
		w.onReload(res, err)
	}
}

func (w *Watcher) loadFile() (Result, error) {
	f, err := os.Open(w.path)
	if err != nil {
		return Result{}, errors.Wrapf(err, "open %s", w.path)
	}
	defer f.Close()
	return Load(f, w.dst)
}
