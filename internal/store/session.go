package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/quire/internal/navigation"
)

// LoadSession returns the stored session, or the zero state if none was saved.
func (db *DB) LoadSession(ctx context.Context) (navigation.SessionState, error) {
	var s navigation.SessionState
	err := db.conn.QueryRowContext(ctx, `
		SELECT user_id, error_message, revision FROM session WHERE id = 1
	`).Scan(&s.StoredUserID, &s.ErrorMessage, &s.Revision)
	if errors.Is(err, sql.ErrNoRows) {
		return navigation.SessionState{}, nil
	}
	if err != nil {
		return s, fmt.Errorf("store: load session: %w", err)
	}
	return s, nil
}

// SaveSession replaces the stored session.
func (db *DB) SaveSession(ctx context.Context, s navigation.SessionState) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO session (id, user_id, error_message, revision) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id       = excluded.user_id,
			error_message = excluded.error_message,
			revision      = excluded.revision
	`, s.StoredUserID, s.ErrorMessage, s.Revision)
	if err != nil {
		return fmt.Errorf("store: save session: %w", err)
	}
	return nil
}
