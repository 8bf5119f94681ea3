// Package store persists works, their nodes, documents and snapshots, and the
// session state in SQLite. Entities are read and written whole.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/navigation"
)

//go:embed sql/*.sql
var migrations embed.FS

const migrationsDir = "sql"

// WorkStore defines the persistence operations used by the services.
// Consumers should depend on this interface rather than the concrete *DB type.
type WorkStore interface {
	InsertWork(ctx context.Context, w *models.Work) error
	GetWork(ctx context.Context, id string) (*models.Work, error)
	ListWorks(ctx context.Context) ([]WorkRow, error)
	DeleteWork(ctx context.Context, id string) error
	UpdateWork(ctx context.Context, id string, fn func(w *models.Work) error) (*models.Work, error)
	InsertSnapshot(ctx context.Context, s models.Snapshot) error
	ListSnapshots(ctx context.Context, workID string) ([]models.Snapshot, error)
	GetSnapshot(ctx context.Context, workID, id string) (models.Snapshot, error)
	LoadSession(ctx context.Context) (navigation.SessionState, error)
	SaveSession(ctx context.Context, s navigation.SessionState) error
	SearchDocuments(ctx context.Context, query string, limit int) ([]SearchHit, error)
	Close() error
}

// Verify *DB satisfies WorkStore at compile time.
var _ WorkStore = (*DB)(nil)

// DB wraps a sql.DB with work-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies pending migrations.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

func migrate(conn *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("store: set goose dialect: %w", err)
	}
	if err := goose.Up(conn, migrationsDir); err != nil {
		return fmt.Errorf("store: apply migrations: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// timeLayout is RFC 3339 with a fixed-width fraction so stored values sort
// lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// checkTimes rejects timestamps whose year does not fit the four-digit layout.
func checkTimes(ts ...time.Time) error {
	for _, t := range ts {
		if y := t.UTC().Year(); y < 0 || y > 9999 {
			return fmt.Errorf("%w: timestamp year %d out of range", apperr.ErrValidation, y)
		}
	}
	return nil
}

// checkWorkTimes applies checkTimes to a work and every node and document.
func checkWorkTimes(w *models.Work) error {
	ts := []time.Time{w.CreatedAt, w.UpdatedAt}
	for _, n := range w.Nodes {
		ts = append(ts, n.CreatedAt, n.UpdatedAt)
	}
	for _, d := range w.Documents {
		ts = append(ts, d.CreatedAt, d.UpdatedAt)
	}
	return checkTimes(ts...)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("store: parse time %q: %w", s, err)
	}
	return t.UTC(), nil
}

func isForeignKeyErr(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

func isUniqueErr(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) &&
		(se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || se.ExtendedCode == sqlite3.ErrConstraintUnique)
}
