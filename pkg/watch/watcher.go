package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/gearbox/pkg/protogen"
)

// Runner is the generation task the watcher drives
type Runner interface {
	Run(ctx context.Context) (*protogen.Result, error)
}

// Watcher watches a source directory for schema changes and re-runs the
// generation task after a debounce delay
type Watcher struct {
	runner    Runner
	sourceDir string
	delay     time.Duration
	log       *logrus.Logger

	mu         sync.Mutex
	dirtyAt    time.Time
	dirty      bool
	lastResult *protogen.Result
	lastErr    error
	lastRunAt  time.Time
}

// NewWatcher creates a watcher over sourceDir. delay is the quiet period
// after the last change before a run starts.
func NewWatcher(runner Runner, sourceDir string, delay time.Duration, log *logrus.Logger) *Watcher {
	if log == nil {
		log = logrus.New()
	}
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &Watcher{
		runner:    runner,
		sourceDir: sourceDir,
		delay:     delay,
		log:       log,
	}
}

// Start runs an initial generation pass, then blocks processing
// filesystem events until the context is cancelled
func (w *Watcher) Start(ctx context.Context) error {
	w.runOnce(ctx)

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsWatcher.Close()

	if err := addRecursive(fsWatcher, w.sourceDir); err != nil {
		return err
	}
	w.log.WithField("source_dir", w.sourceDir).Info("watching for schema changes")

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fsWatcher, event)

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("watcher error")

		case <-ticker.C:
			if w.takeDue() {
				w.runOnce(ctx)
			}
		}
	}
}

// handleEvent marks the watcher dirty on schema writes and tracks newly
// created directories
func (w *Watcher) handleEvent(fsWatcher *fsnotify.Watcher, event fsnotify.Event) {
	relevant := event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
	if relevant && strings.HasSuffix(event.Name, protogen.ProtoExtension) {
		w.log.WithField("file", event.Name).Debug("schema change detected")
		w.markDirty()
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := fsWatcher.Add(event.Name); err != nil {
				w.log.WithError(err).WithField("dir", event.Name).Warn("failed to watch new directory")
			}
		}
	}
}

// markDirty records a pending change
func (w *Watcher) markDirty() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dirty = true
	w.dirtyAt = time.Now()
}

// takeDue consumes the dirty flag once the debounce delay has elapsed
func (w *Watcher) takeDue() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.dirty || time.Since(w.dirtyAt) < w.delay {
		return false
	}
	w.dirty = false
	return true
}

// runOnce executes the generation task and records the outcome
func (w *Watcher) runOnce(ctx context.Context) {
	result, err := w.runner.Run(ctx)

	w.mu.Lock()
	w.lastResult = result
	w.lastErr = err
	w.lastRunAt = time.Now()
	w.mu.Unlock()

	if err != nil {
		w.log.WithError(err).Error("generation failed")
		return
	}
	w.log.WithFields(logrus.Fields{
		"generated": len(result.GeneratedFiles),
		"cache_hit": result.CacheHit,
	}).Info("generation complete")
}

// LastRun returns the outcome and time of the most recent generation pass
func (w *Watcher) LastRun() (*protogen.Result, time.Time, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastResult, w.lastRunAt, w.lastErr
}

// addRecursive registers every directory under root with the watcher
func addRecursive(fsWatcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsWatcher.Add(path)
		}
		return nil
	})
}

