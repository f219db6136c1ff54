package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresStore persists the single operator session in a one-row table
// so the console survives restarts without a fresh login.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed session store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the console_session table if it doesn't exist.
// The singleton CHECK keeps the table at one row by construction.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS console_session (
			singleton BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (singleton),
			token TEXT NOT NULL,
			user_id TEXT NOT NULL,
			username TEXT NOT NULL,
			email TEXT NOT NULL,
			role TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("create console_session table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (string, *User, error) {
	var token string
	var u User
	err := s.db.QueryRowContext(ctx, `
		SELECT token, user_id, username, email, role
		FROM console_session
		WHERE singleton
	`).Scan(&token, &u.ID, &u.Username, &u.Email, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("load session: %w", err)
	}
	return token, &u, nil
}

func (s *PostgresStore) Save(ctx context.Context, token string, user *User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO console_session (singleton, token, user_id, username, email, role, updated_at)
		VALUES (TRUE, $1, $2, $3, $4, $5, NOW())
		ON CONFLICT (singleton) DO UPDATE SET
			token = EXCLUDED.token,
			user_id = EXCLUDED.user_id,
			username = EXCLUDED.username,
			email = EXCLUDED.email,
			role = EXCLUDED.role,
			updated_at = NOW()
	`, token, user.ID, user.Username, user.Email, user.Role)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM console_session WHERE singleton`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
