package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/models"
)

// WorkRow is the listing view of a work, without its tree.
type WorkRow struct {
	ID        string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// InsertWork stores a new work with its nodes and documents in one transaction.
func (db *DB) InsertWork(ctx context.Context, w *models.Work) error {
	if err := checkWorkTimes(w); err != nil {
		return err
	}
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.ExecContext(ctx, `
		INSERT INTO works (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)
	`, w.ID, w.Title, formatTime(w.CreatedAt), formatTime(w.UpdatedAt))
	if err != nil {
		if isUniqueErr(err) {
			return apperr.ErrAlreadyExists
		}
		return fmt.Errorf("store: insert work: %w", err)
	}
	if err := writeTree(ctx, tx, w); err != nil {
		return err
	}
	return tx.Commit()
}

// GetWork loads a work with its nodes, documents and snapshots.
func (db *DB) GetWork(ctx context.Context, id string) (*models.Work, error) {
	w, err := loadWork(ctx, db.conn, id)
	if err != nil {
		return nil, err
	}
	snaps, err := db.ListSnapshots(ctx, id)
	if err != nil {
		return nil, err
	}
	w.Snapshots = snaps
	return w, nil
}

// ListWorks returns all works, most recently updated first.
func (db *DB) ListWorks(ctx context.Context) ([]WorkRow, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, title, created_at, updated_at FROM works
		ORDER BY updated_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list works: %w", err)
	}
	defer rows.Close()

	var out []WorkRow
	for rows.Next() {
		var r WorkRow
		var created, updated string
		if err := rows.Scan(&r.ID, &r.Title, &created, &updated); err != nil {
			return nil, fmt.Errorf("store: scan work: %w", err)
		}
		if r.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if r.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteWork removes a work; nodes, documents and snapshots cascade.
func (db *DB) DeleteWork(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM works WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete work: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete work: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	ftsDelete(ctx, db.conn, id)
	return nil
}

// UpdateWork loads the work inside a transaction, lets fn mutate it in memory
// and writes the whole entity back. An error from fn aborts the transaction.
func (db *DB) UpdateWork(ctx context.Context, id string, fn func(w *models.Work) error) (*models.Work, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	w, err := loadWork(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(w); err != nil {
		return nil, err
	}
	if err := checkWorkTimes(w); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE works SET title = ?, created_at = ?, updated_at = ? WHERE id = ?
	`, w.Title, formatTime(w.CreatedAt), formatTime(w.UpdatedAt), w.ID)
	if err != nil {
		return nil, fmt.Errorf("store: update work: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE work_id = ?`, w.ID); err != nil {
		return nil, fmt.Errorf("store: clear nodes: %w", err)
	}
	if err := writeTree(ctx, tx, w); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}
	return w, nil
}

// writeTree inserts every node and document of w.
func writeTree(ctx context.Context, tx *sql.Tx, w *models.Work) error {
	nodeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (id, work_id, parent_id, name, kind, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("store: prepare node insert: %w", err)
	}
	defer nodeStmt.Close()

	for i, n := range w.Nodes {
		_, err := nodeStmt.ExecContext(ctx, n.ID, w.ID, n.ParentID, n.Name, string(n.Kind), i,
			formatTime(n.CreatedAt), formatTime(n.UpdatedAt))
		if err != nil {
			return fmt.Errorf("store: insert node: %w", err)
		}
	}

	docStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (id, node_id, kind, text, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("store: prepare document insert: %w", err)
	}
	defer docStmt.Close()

	for _, d := range w.Documents {
		_, err := docStmt.ExecContext(ctx, d.ID, d.NodeID, string(d.Kind), d.Text,
			formatTime(d.CreatedAt), formatTime(d.UpdatedAt))
		if err != nil {
			return fmt.Errorf("store: insert document: %w", err)
		}
	}
	return ftsIndex(ctx, tx, w)
}

// loadWork reads the work row, its nodes in position order and their documents.
func loadWork(ctx context.Context, q querier, id string) (*models.Work, error) {
	var created, updated string
	w := &models.Work{ID: id}
	err := q.QueryRowContext(ctx, `
		SELECT title, created_at, updated_at FROM works WHERE id = ?
	`, id).Scan(&w.Title, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get work: %w", err)
	}
	if w.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if w.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}

	if err := loadNodes(ctx, q, w); err != nil {
		return nil, err
	}
	if err := loadDocuments(ctx, q, w); err != nil {
		return nil, err
	}
	return w, nil
}

func loadNodes(ctx context.Context, q querier, w *models.Work) error {
	rows, err := q.QueryContext(ctx, `
		SELECT id, parent_id, name, kind, created_at, updated_at
		FROM nodes WHERE work_id = ? ORDER BY position
	`, w.ID)
	if err != nil {
		return fmt.Errorf("store: load nodes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		n := models.Node{WorkID: w.ID}
		var kind, created, updated string
		if err := rows.Scan(&n.ID, &n.ParentID, &n.Name, &kind, &created, &updated); err != nil {
			return fmt.Errorf("store: scan node: %w", err)
		}
		n.Kind = models.ParseNodeKind(kind)
		if n.CreatedAt, err = parseTime(created); err != nil {
			return err
		}
		if n.UpdatedAt, err = parseTime(updated); err != nil {
			return err
		}
		w.Nodes = append(w.Nodes, n)
	}
	return rows.Err()
}

func loadDocuments(ctx context.Context, q querier, w *models.Work) error {
	rows, err := q.QueryContext(ctx, `
		SELECT d.id, d.node_id, d.kind, d.text, d.created_at, d.updated_at
		FROM documents d JOIN nodes n ON n.id = d.node_id
		WHERE n.work_id = ? ORDER BY n.position
	`, w.ID)
	if err != nil {
		return fmt.Errorf("store: load documents: %w", err)
	}
	defer rows.Close()

	byNode := make(map[string]int, len(w.Nodes))
	for i := range w.Nodes {
		byNode[w.Nodes[i].ID] = i
	}

	for rows.Next() {
		var d models.Document
		var kind, created, updated string
		if err := rows.Scan(&d.ID, &d.NodeID, &kind, &d.Text, &created, &updated); err != nil {
			return fmt.Errorf("store: scan document: %w", err)
		}
		d.Kind = models.ParseStoredDocumentKind(kind)
		if d.CreatedAt, err = parseTime(created); err != nil {
			return err
		}
		if d.UpdatedAt, err = parseTime(updated); err != nil {
			return err
		}
		if i, ok := byNode[d.NodeID]; ok {
			w.Nodes[i].DocumentID = d.ID
		}
		w.Documents = append(w.Documents, d)
	}
	return rows.Err()
}
