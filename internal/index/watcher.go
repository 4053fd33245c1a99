package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/cardex/internal/storage"
)

// EventKind names an index change made by the watcher.
type EventKind string

const (
	Created EventKind = "created"
	Updated EventKind = "updated"
	Deleted EventKind = "deleted"
)

// EventCallback is called after a watcher-driven index change.
type EventCallback func(kind EventKind, path string)

const reconcileDelay = 200 * time.Millisecond

type watcher struct {
	db     *DB
	store  storage.Provider
	root   string
	logger *slog.Logger
	cb     EventCallback
}

func (w *watcher) emit(kind EventKind, path string) {
	if w.cb != nil {
		w.cb(kind, path)
	}
}

// Watch starts an fsnotify watcher on the vault root and keeps the index in
// step with card files until ctx is cancelled. cb, if non-nil, runs after
// each successful index mutation.
//
// Directories created at runtime are added to the watch list. Renames
// schedule a debounced reconciliation that drops stale entries.
func Watch(ctx context.Context, db *DB, store storage.Provider, vaultRoot string, logger *slog.Logger, cb EventCallback) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := addDirsRecursive(fw, vaultRoot); err != nil {
		return err
	}
	w := &watcher{db: db, store: store, root: vaultRoot, logger: logger, cb: cb}
	logger.Info("watcher: started", slog.String("root", vaultRoot))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time
	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			w.reconcile()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(fw, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					w.indexDir(ev.Name)
					continue
				}
			}
			if w.handle(ev) {
				scheduleReconcile()
			}

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func (w *watcher) rel(abs string) (string, bool) {
	rel, err := filepath.Rel(w.root, abs)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// handle applies one file event and reports whether a reconcile pass is due.
func (w *watcher) handle(ev fsnotify.Event) bool {
	if !storage.IsCardFile(ev.Name) {
		return false
	}
	rel, ok := w.rel(ev.Name)
	if !ok {
		return false
	}

	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		kind := Updated
		if ev.Op&fsnotify.Create != 0 {
			kind = Created
		}
		w.index(rel, kind)

	case ev.Op&fsnotify.Remove != 0:
		w.remove(rel)

	case ev.Op&fsnotify.Rename != 0:
		// fsnotify reports the old path only; the new one arrives as Create.
		w.remove(rel)
		return true
	}
	return false
}

func (w *watcher) index(rel string, kind EventKind) {
	data, err := w.store.Read(rel)
	if err != nil {
		w.logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	rec, err := w.db.IndexFile(rel, data)
	if err != nil {
		w.logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	w.logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", string(kind)),
		slog.Bool("valid", rec.Valid))
	w.emit(kind, rel)
}

func (w *watcher) remove(rel string) {
	if err := w.db.DeleteCard(rel); err != nil {
		w.logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	w.logger.Debug("watcher: deleted", slog.String("path", rel))
	w.emit(Deleted, rel)
}

// reconcile removes index entries without a file on disk and indexes files
// whose checksum differs from the index.
func (w *watcher) reconcile() {
	checksums, err := w.db.AllChecksums()
	if err != nil {
		w.logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	metas, err := w.store.List("")
	if err != nil {
		w.logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			w.remove(p)
		}
	}
	for p, cs := range disk {
		if checksums[p] != cs {
			w.index(p, Created)
		}
	}
}

// indexDir indexes card files already present in a newly created directory.
func (w *watcher) indexDir(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !storage.IsCardFile(path) {
			return nil
		}
		if rel, ok := w.rel(path); ok {
			w.index(rel, Created)
		}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
}
