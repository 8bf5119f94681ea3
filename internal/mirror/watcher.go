package mirror

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Updater applies an external edit of a mirrored file to its work.
type Updater interface {
	UpdateFile(ctx context.Context, workID, fileName, text string) error
}

// EventCallback is called after an external edit was applied.
type EventCallback func(workID, fileName string)

// Watch starts an fsnotify watcher on the mirror root and applies document
// file writes through u until ctx is cancelled. New work directories created
// at runtime are added to the watch list. Removing or renaming a mirror file
// never deletes a document; the next export writes it back.
func Watch(ctx context.Context, m *Mirror, u Updater, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, m.root); err != nil {
		return err
	}

	logger.Info("mirror: watcher started", slog.String("root", m.root))

	for {
		select {
		case <-ctx.Done():
			logger.Info("mirror: watcher stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("mirror: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
						continue
					}
					applyDir(ctx, m, u, ev.Name, logger, cb)
					continue
				}
			}

			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			workID, fileName, ok := m.split(ev.Name)
			if !ok {
				continue
			}
			apply(ctx, m, u, workID, fileName, logger, cb)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("mirror: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

func apply(ctx context.Context, m *Mirror, u Updater, workID, fileName string, logger *slog.Logger, cb EventCallback) {
	text, err := m.Read(workID, fileName)
	if err != nil {
		logger.Warn("mirror: read failed",
			slog.String("work_id", workID), slog.String("file", fileName), slog.String("error", err.Error()))
		return
	}
	if err := u.UpdateFile(ctx, workID, fileName, text); err != nil {
		logger.Warn("mirror: apply failed",
			slog.String("work_id", workID), slog.String("file", fileName), slog.String("error", err.Error()))
		return
	}
	logger.Debug("mirror: applied", slog.String("work_id", workID), slog.String("file", fileName))
	if cb != nil {
		cb(workID, fileName)
	}
}

// applyDir applies document files already present in a newly created directory.
func applyDir(ctx context.Context, m *Mirror, u Updater, dir string, logger *slog.Logger, cb EventCallback) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if workID, fileName, ok := m.split(p); ok {
			apply(ctx, m, u, workID, fileName, logger, cb)
		}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
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
