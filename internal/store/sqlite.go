package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteWorkspaceStore keeps the workspace blob in a local SQLite file.
type SQLiteWorkspaceStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteWorkspaceStore opens (or creates) the database at path.
func NewSQLiteWorkspaceStore(path string) (*SQLiteWorkspaceStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	s := &SQLiteWorkspaceStore{db: db, path: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteWorkspaceStore) initialize() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS ach_workspace (
		id INTEGER PRIMARY KEY,
		state TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`)
	if err != nil {
		return fmt.Errorf("failed to create workspace table: %w", err)
	}
	return nil
}

func (s *SQLiteWorkspaceStore) Load(ctx context.Context) ([]byte, error) {
	var state string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM ach_workspace WHERE id = ?`, workspaceRowID,
	).Scan(&state)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(state), nil
}

func (s *SQLiteWorkspaceStore) Save(ctx context.Context, blob []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ach_workspace (id, state, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET state = excluded.state, updated_at = CURRENT_TIMESTAMP`,
		workspaceRowID, string(blob),
	)
	return err
}

func (s *SQLiteWorkspaceStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteWorkspaceStore) Path() string {
	return s.path
}

func (s *SQLiteWorkspaceStore) Close() error {
	return s.db.Close()
}
