package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/models"
)

const snapshotColumns = `id, work_id, title, memo, device_name, kind, manifest, created_at`

// InsertSnapshot stores an immutable snapshot. The work must exist.
func (db *DB) InsertSnapshot(ctx context.Context, s models.Snapshot) error {
	if err := checkTimes(s.CreatedAt); err != nil {
		return err
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO snapshots (`+snapshotColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.WorkID, s.Title, s.Memo, s.DeviceName, string(s.Kind), s.Manifest, formatTime(s.CreatedAt))
	if err != nil {
		if isForeignKeyErr(err) {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("store: insert snapshot: %w", err)
	}
	return nil
}

// ListSnapshots returns the snapshots of a work, newest first.
func (db *DB) ListSnapshots(ctx context.Context, workID string) ([]models.Snapshot, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+snapshotColumns+` FROM snapshots
		WHERE work_id = ? ORDER BY created_at DESC, rowid DESC
	`, workID)
	if err != nil {
		return nil, fmt.Errorf("store: list snapshots: %w", err)
	}
	defer rows.Close()

	var out []models.Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetSnapshot returns a single snapshot of a work.
func (db *DB) GetSnapshot(ctx context.Context, workID, id string) (models.Snapshot, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+` FROM snapshots WHERE work_id = ? AND id = ?
	`, workID, id)
	s, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Snapshot{}, apperr.ErrNotFound
	}
	return s, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(sc scanner) (models.Snapshot, error) {
	var s models.Snapshot
	var kind, created string
	err := sc.Scan(&s.ID, &s.WorkID, &s.Title, &s.Memo, &s.DeviceName, &kind, &s.Manifest, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return s, err
	}
	if err != nil {
		return s, fmt.Errorf("store: scan snapshot: %w", err)
	}
	s.Kind = models.ParseSnapshotKind(kind)
	if s.CreatedAt, err = parseTime(created); err != nil {
		return s, err
	}
	return s, nil
}
