package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/avigne/quotevault/internal/storage"
)

// EventCallback is called after a watcher-driven index refresh.
// kind is one of "created", "updated", "deleted"; path is root-relative.
type EventCallback func(kind string, path string)

// debounce is how long the watcher waits after the last shard event
// before resyncing. A folder rewrite touches many files back to back;
// one sync at the end covers them all.
const debounce = 300 * time.Millisecond

type pendingEvent struct {
	kind string
	path string
}

// Watch starts an fsnotify watcher on the library root and keeps the
// index in sync with on-disk shard churn until ctx is cancelled. It
// calls cb (if non-nil) once per observed shard event after each
// resync.
//
// New directories created at runtime (fresh quote folders, staging
// dirs) are added to the watch list. Events inside a staging
// subdirectory and for temp files are ignored; only the promoted
// shards matter.
func Watch(ctx context.Context, db *DB, store storage.Provider, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := store.Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var syncTimer *time.Timer
	var syncCh <-chan time.Time
	var pending []pendingEvent

	scheduleSync := func() {
		if syncTimer == nil {
			syncTimer = time.NewTimer(debounce)
			syncCh = syncTimer.C
		} else {
			syncTimer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if syncTimer != nil {
				syncTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-syncCh:
			if err := Sync(db, store, logger); err != nil {
				logger.Warn("watcher: sync failed", slog.String("error", err.Error()))
			}
			if cb != nil {
				for _, ev := range pending {
					cb(ev.kind, ev.path)
				}
			}
			pending = pending[:0]

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// Watch new directories as they appear.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					}
					continue
				}
			}

			rel, relErr := filepath.Rel(root, absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if !relevantShardEvent(rel) {
				continue
			}

			switch {
			case ev.Op&fsnotify.Create != 0:
				pending = append(pending, pendingEvent{"created", rel})
			case ev.Op&fsnotify.Write != 0:
				pending = append(pending, pendingEvent{"updated", rel})
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				pending = append(pending, pendingEvent{"deleted", rel})
			default:
				continue
			}
			scheduleSync()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// relevantShardEvent filters events down to promoted shard files:
// .json files that are not inside a staging subdirectory and not
// atomic-write temp files.
func relevantShardEvent(rel string) bool {
	if !strings.HasSuffix(rel, ".json") {
		return false
	}
	base := filepath.Base(rel)
	if strings.HasPrefix(base, ".") {
		return false
	}
	for _, part := range strings.Split(filepath.Dir(rel), "/") {
		if part == "new" {
			return false
		}
	}
	return true
}

// addDirsRecursive adds dir and every subdirectory to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}
