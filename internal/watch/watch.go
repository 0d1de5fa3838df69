// Package watch rebuilds the site when source files change on disk.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// RebuildFunc runs a build in response to file changes. The paths slice
// carries the files that changed since the previous rebuild.
type RebuildFunc func(ctx context.Context, paths []string) error

// Config controls the watcher.
type Config struct {
	// Dirs are the roots to watch recursively. Missing directories are
	// skipped with a warning.
	Dirs []string
	// Extensions limits which files trigger a rebuild. Empty means every
	// file counts. Entries include the dot, e.g. ".md".
	Extensions []string
	// Debounce is the quiet period between the last event and the rebuild.
	Debounce time.Duration
}

const defaultDebounce = 300 * time.Millisecond

// Watch runs an fsnotify watcher over cfg.Dirs until ctx is cancelled,
// invoking rebuild after each debounced burst of changes. Directories
// created while watching are added to the watch list.
func Watch(ctx context.Context, cfg Config, provider interfaces.LoggerProvider, rebuild RebuildFunc) error {
	if rebuild == nil {
		return errors.New("watch: rebuild callback required")
	}
	if len(cfg.Dirs) == 0 {
		return errors.New("watch: at least one directory required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}

	logger := logging.WatchLogger(provider)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	watched := 0
	for _, dir := range cfg.Dirs {
		if _, statErr := os.Stat(dir); statErr != nil {
			logger.Warn("watch.dir.missing", "dir", dir)
			continue
		}
		if addErr := addDirsRecursive(w, dir); addErr != nil {
			return addErr
		}
		watched++
	}
	if watched == 0 {
		return errors.New("watch: no watchable directories")
	}

	logger.Info("watch.started", "dirs", strings.Join(cfg.Dirs, ","), "debounce_ms", cfg.Debounce.Milliseconds())

	var timer *time.Timer
	var timerCh <-chan time.Time
	pending := map[string]struct{}{}

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(cfg.Debounce)
			timerCh = timer.C
			return
		}
		timer.Reset(cfg.Debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watch.stopped")
			return nil

		case <-timerCh:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			pending = map[string]struct{}{}

			logger.Info("watch.rebuild", "changed", len(paths))
			if buildErr := rebuild(ctx, paths); buildErr != nil {
				logger.Error("watch.rebuild.failed", "error", buildErr)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watch.dir.add_failed", "dir", ev.Name, "error", addErr)
					}
					continue
				}
			}

			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !matchesExtension(ev.Name, cfg.Extensions) {
				continue
			}

			pending[ev.Name] = struct{}{}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch.error", "error", watchErr)
		}
	}
}

func matchesExtension(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range exts {
		if strings.EqualFold(candidate, ext) {
			return true
		}
	}
	return false
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
