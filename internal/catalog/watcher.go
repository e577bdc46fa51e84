package catalog

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/lectern/internal/storage"
)

// ChangeCallback is invoked after a watcher-driven catalog refresh so
// callers can invalidate derived caches and broadcast the change.
type ChangeCallback func(presentationID string)

const debounceWindow = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the library root and keeps the
// catalog in sync with filesystem changes until ctx is cancelled.
//
// Editors produce bursts of events per save, so refreshes are
// debounced per presentation. New presentation folders are picked up
// automatically; removed ones are dropped on the next refresh.
func Watch(ctx context.Context, db *DB, store storage.Provider, libraryRoot string, logger *slog.Logger, cb ChangeCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root, err := filepath.Abs(libraryRoot)
	if err != nil {
		return err
	}
	if err := addDirs(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	// Pending presentation ids, flushed after a quiet period.
	pending := map[string]struct{}{}
	var flushTimer *time.Timer
	var flushCh <-chan time.Time

	schedule := func(id string) {
		pending[id] = struct{}{}
		if flushTimer == nil {
			flushTimer = time.NewTimer(debounceWindow)
			flushCh = flushTimer.C
		} else {
			flushTimer.Reset(debounceWindow)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if flushTimer != nil {
				flushTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-flushCh:
			for id := range pending {
				delete(pending, id)
				if err := Refresh(db, store, id); err != nil {
					logger.Warn("watcher: refresh failed", slog.String("presentation", id), slog.String("error", err.Error()))
					continue
				}
				logger.Debug("watcher: refreshed", slog.String("presentation", id))
				if cb != nil {
					cb(id)
				}
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			// A new presentation folder: watch it and refresh.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirs(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed", slog.String("path", ev.Name), slog.String("error", addErr.Error()))
					}
					if id := presentationID(root, ev.Name); id != "" {
						schedule(id)
					}
					continue
				}
			}

			name := filepath.Base(ev.Name)
			if !strings.HasSuffix(name, ".html") && name != storage.ManifestFile {
				continue
			}
			if id := presentationID(root, ev.Name); id != "" {
				schedule(id)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// presentationID maps an absolute event path to the presentation
// folder directly under root, or "" when the path is outside one.
func presentationID(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	id := parts[0]
	if id == "" || strings.HasPrefix(id, ".") || id == storage.TemplateDir {
		return ""
	}
	return id
}

// addDirs adds root and its first-level subdirectories to the watcher.
// Presentations are flat folders, so deeper nesting is not watched.
func addDirs(w *fsnotify.Watcher, root string) error {
	if err := w.Add(root); err != nil {
		return err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if err := w.Add(filepath.Join(root, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
