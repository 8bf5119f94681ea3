//go:build sqlite_fts5

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/quire/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
			work_id UNINDEXED,
			file_name UNINDEXED,
			title,
			text,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

// ftsIndex replaces the FTS rows of w with its current documents.
func ftsIndex(ctx context.Context, tx *sql.Tx, w *models.Work) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents_fts WHERE work_id = ?`, w.ID); err != nil {
		return fmt.Errorf("store: clear fts: %w", err)
	}
	for _, d := range w.Documents {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO documents_fts (work_id, file_name, title, text) VALUES (?, ?, ?, ?)
		`, w.ID, d.FileName(), w.Title, d.Text)
		if err != nil {
			return fmt.Errorf("store: upsert fts: %w", err)
		}
	}
	return nil
}

func ftsDelete(ctx context.Context, q querier, workID string) {
	_, _ = q.ExecContext(ctx, `DELETE FROM documents_fts WHERE work_id = ?`, workID)
}

// SearchDocuments performs an FTS5 full-text search over document texts and
// work titles, best matches first.
func (db *DB) SearchDocuments(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT work_id,
		       title,
		       file_name,
		       snippet(documents_fts, 3, '<b>', '</b>', '...', 24)
		FROM documents_fts
		WHERE documents_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, searchLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	defer rows.Close()

	var out []SearchHit
	for rows.Next() {
		var h SearchHit
		if err := rows.Scan(&h.WorkID, &h.WorkTitle, &h.FileName, &h.Snippet); err != nil {
			return nil, fmt.Errorf("store: scan search hit: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
