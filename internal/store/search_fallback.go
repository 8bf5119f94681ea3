//go:build !sqlite_fts5

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/quire/internal/models"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE over the documents table.
	return nil
}

func ftsIndex(_ context.Context, _ *sql.Tx, _ *models.Work) error { return nil }

func ftsDelete(_ context.Context, _ querier, _ string) {}

// SearchDocuments finds documents whose text or work title contains query,
// most recently updated works first.
func (db *DB) SearchDocuments(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	like := "%" + escapeLike(query) + "%"
	rows, err := db.conn.QueryContext(ctx, `
		SELECT w.id, w.title, d.kind, d.text
		FROM documents d
		JOIN nodes n ON n.id = d.node_id
		JOIN works w ON w.id = n.work_id
		WHERE d.text LIKE ? ESCAPE '\' OR w.title LIKE ? ESCAPE '\'
		ORDER BY w.updated_at DESC, n.position
		LIMIT ?
	`, like, like, searchLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	defer rows.Close()

	var out []SearchHit
	for rows.Next() {
		var h SearchHit
		var kind, text string
		if err := rows.Scan(&h.WorkID, &h.WorkTitle, &kind, &text); err != nil {
			return nil, fmt.Errorf("store: scan search hit: %w", err)
		}
		h.FileName = models.ParseStoredDocumentKind(kind).FileName()
		h.Snippet = snippet(text, query)
		out = append(out, h)
	}
	return out, rows.Err()
}
