// Package watcher turns file-system notifications from the vault into
// change events for the sync controller.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/headsync/internal/storage"
	"github.com/starford/headsync/internal/syncer"
)

// Handler receives change notifications for notes, as vault-relative
// slash paths.
type Handler interface {
	OnFileChanged(ctx context.Context, path string) syncer.Result
	InFlight() bool
}

// Callback is called with the result of every evaluated change. It may be
// nil.
type Callback func(res syncer.Result)

// Watch starts an fsnotify watcher on the vault root and forwards note
// writes to h until ctx is cancelled. Events that arrive while h has a
// rename in flight are dropped; they are the rename's own echo.
//
// New directories created at runtime are automatically added to the watch
// list.
func Watch(ctx context.Context, h Handler, vaultRoot string, logger *slog.Logger, cb Callback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, vaultRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", vaultRoot))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					continue
				}
			}

			if !storage.IsNote(absPath) || ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}

			rel, relErr := filepath.Rel(vaultRoot, absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			if h.InFlight() {
				logger.Debug("watcher: dropped rename echo", slog.String("path", rel))
				continue
			}

			res := h.OnFileChanged(ctx, rel)
			logger.Debug("watcher: evaluated",
				slog.String("path", rel),
				slog.String("op", ev.Op.String()),
				slog.String("outcome", string(res.Outcome)))
			if cb != nil {
				cb(res)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher,
// skipping hidden directories such as .git or .trash.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
