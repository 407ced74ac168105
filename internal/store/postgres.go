package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const workspaceRowID = 1

// PostgresWorkspaceStore keeps the workspace blob in a single JSONB row.
type PostgresWorkspaceStore struct {
	db *pgxpool.Pool
}

func NewPostgresWorkspaceStore(db *pgxpool.Pool) *PostgresWorkspaceStore {
	return &PostgresWorkspaceStore{db: db}
}

// EnsureSchema creates the workspace table if it does not exist.
func (s *PostgresWorkspaceStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS ach_workspace (
			id SMALLINT PRIMARY KEY,
			state JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}

func (s *PostgresWorkspaceStore) Load(ctx context.Context) ([]byte, error) {
	var state string
	err := s.db.QueryRow(ctx,
		`SELECT state::text FROM ach_workspace WHERE id = $1`,
		workspaceRowID,
	).Scan(&state)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(state), nil
}

func (s *PostgresWorkspaceStore) Save(ctx context.Context, blob []byte) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO ach_workspace (id, state, updated_at)
		 VALUES ($1, $2::jsonb, NOW())
		 ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, updated_at = NOW()`,
		workspaceRowID, string(blob),
	)
	return err
}

func (s *PostgresWorkspaceStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
