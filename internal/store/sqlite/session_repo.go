package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"mindfulmate-backend/internal/models"
	"mindfulmate-backend/internal/store"
)

// CreateSession inserts a new session record.
func (s *Store) CreateSession(ctx context.Context, session *models.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token_hash, username, created_at, expires_at, active)
		VALUES (?, ?, ?, ?, ?)
	`, session.TokenHash, session.Username, session.CreatedAt, session.ExpiresAt, session.Active)
	return err
}

// SessionByTokenHash retrieves a session by its hashed token.
func (s *Store) SessionByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	session := &models.Session{}

	err := s.db.QueryRowContext(ctx, `
		SELECT token_hash, username, created_at, expires_at, active
		FROM sessions WHERE token_hash = ?
	`, tokenHash).Scan(
		&session.TokenHash, &session.Username,
		&session.CreatedAt, &session.ExpiresAt, &session.Active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	return session, nil
}

// DeactivateSession marks a session inactive. Sessions are never deleted.
func (s *Store) DeactivateSession(ctx context.Context, tokenHash string) error {
	result, err := s.db.ExecContext(ctx, "UPDATE sessions SET active = 0 WHERE token_hash = ?", tokenHash)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrSessionNotFound
	}

	return nil
}
