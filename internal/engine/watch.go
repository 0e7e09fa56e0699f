package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/leapstack-labs/namelint/pkg/core"
	"github.com/leapstack-labs/namelint/pkg/report"
)

// DefaultDebounce is the quiet period after the last change before a re-run.
const DefaultDebounce = 100 * time.Millisecond

// RunFunc receives the outcome of every run in watch mode.
type RunFunc func(rep *report.Reporter, stats Stats, err error)

// Watch lints the tree, then lints it again after every burst of changes to
// lintable files until ctx is done. Runs never overlap. A nil newReporter
// means report.New.
func (e *Engine) Watch(ctx context.Context, debounce time.Duration, newReporter func() *report.Reporter, onRun RunFunc) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if newReporter == nil {
		newReporter = func() *report.Reporter { return report.New() }
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	for dir := range e.scanner.Dirs() {
		if err := watcher.Add(dir); err != nil {
			e.logger.Warn("failed to watch directory", "path", dir, "error", err)
		}
	}

	run := func() {
		rep := newReporter()
		stats, err := e.Run(ctx, rep)
		if ctx.Err() != nil {
			return
		}
		onRun(rep, stats, err)
	}
	run()

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !e.relevant(watcher, event) {
				continue
			}
			e.logger.Debug("file changed", "path", event.Name, "op", event.Op.String())
			timer.Reset(debounce)

		case <-timer.C:
			run()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				timer.Reset(debounce)
			}
			e.logger.Error("watcher error", "error", err)
		}
	}
}

// relevant reports whether event should trigger a run. New directories are
// added to the watcher.
func (e *Engine) relevant(watcher *fsnotify.Watcher, event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	rel, err := filepath.Rel(e.scanner.Root(), event.Name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if e.scanner.SkipsDir(rel) {
				return false
			}
			if err := watcher.Add(event.Name); err != nil {
				e.logger.Warn("failed to watch directory", "path", event.Name, "error", err)
			}
			return true
		}
	}
	return e.scanner.Classify(event.Name) != core.FileKindUnknown
}
