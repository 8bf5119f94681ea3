package mirror

import (
	"context"
	"log/slog"

	"github.com/starford/quire/internal/checksum"
	"github.com/starford/quire/internal/models"
)

// Export writes every file document of w to the mirror, skipping files whose
// content is already identical on disk. It returns the number of files written.
func (m *Mirror) Export(w *models.Work) (int, error) {
	written := 0
	for _, d := range w.FileDocuments() {
		if m.unchanged(w.ID, d.FileName(), d.Text) {
			continue
		}
		if err := m.Write(w.ID, d.FileName(), d.Text); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func (m *Mirror) unchanged(workID, fileName, text string) bool {
	current, err := m.Read(workID, fileName)
	if err != nil {
		return false
	}
	return checksum.String(current) == checksum.String(text)
}

// Source lists and loads works for a full mirror pass.
type Source interface {
	WorkIDs(ctx context.Context) ([]string, error)
	Work(ctx context.Context, id string) (*models.Work, error)
}

// Sync brings the mirror up to date with src:
//   - every work is exported, unchanged files are left alone
//   - directories of works that no longer exist are removed
func Sync(ctx context.Context, m *Mirror, src Source, logger *slog.Logger) error {
	ids, err := src.WorkIDs(ctx)
	if err != nil {
		return err
	}

	known := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}

		w, err := src.Work(ctx, id)
		if err != nil {
			logger.Warn("mirror: load failed", slog.String("work_id", id), slog.String("error", err.Error()))
			continue
		}
		n, err := m.Export(w)
		if err != nil {
			logger.Warn("mirror: export failed", slog.String("work_id", id), slog.String("error", err.Error()))
			continue
		}
		if n > 0 {
			logger.Debug("mirror: exported", slog.String("work_id", id), slog.Int("files", n))
		}
	}

	dirs, err := m.WorkIDs()
	if err != nil {
		return err
	}
	for _, id := range dirs {
		if _, ok := known[id]; ok {
			continue
		}
		if err := m.RemoveWork(id); err != nil {
			logger.Warn("mirror: remove stale failed", slog.String("work_id", id), slog.String("error", err.Error()))
		} else {
			logger.Debug("mirror: removed stale", slog.String("work_id", id))
		}
	}
	return nil
}
