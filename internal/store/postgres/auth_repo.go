package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"mindfulmate-backend/internal/models"
	"mindfulmate-backend/internal/store"
)

// uniqueViolation is the PostgreSQL error code for unique-constraint breaks.
const uniqueViolation = "23505"

// CreateUser inserts a new user, mapping constraint violations to the
// duplicate-username/email domain errors by constraint name.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, created_at, last_login)
		VALUES ($1, $2, $3, $4, $5)
	`, user.Username, user.Email, user.PasswordHash, user.CreatedAt, user.LastLogin)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if pgErr.ConstraintName == "users_email_key" {
				return store.ErrDuplicateEmail
			}
			return store.ErrDuplicateUsername
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// UserByUsername retrieves a user by username.
func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT username, email, password_hash, created_at, last_login
		FROM users WHERE username = $1
	`, username))
}

// UserByEmail retrieves a user by email.
func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT username, email, password_hash, created_at, last_login
		FROM users WHERE email = $1
	`, email))
}

func (s *Store) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var lastLogin sql.NullTime

	err := row.Scan(&user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}

	return user, nil
}

// UpdateLastLogin updates the user's last login timestamp.
func (s *Store) UpdateLastLogin(ctx context.Context, username string, at time.Time) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE users SET last_login = $1 WHERE username = $2", at, username)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrUserNotFound
	}

	return nil
}

// CreateSession inserts a new session record.
func (s *Store) CreateSession(ctx context.Context, session *models.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token_hash, username, created_at, expires_at, active)
		VALUES ($1, $2, $3, $4, $5)
	`, session.TokenHash, session.Username, session.CreatedAt, session.ExpiresAt, session.Active)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// SessionByTokenHash retrieves a session by its hashed token.
func (s *Store) SessionByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	session := &models.Session{}

	err := s.db.QueryRowContext(ctx, `
		SELECT token_hash, username, created_at, expires_at, active
		FROM sessions WHERE token_hash = $1
	`, tokenHash).Scan(
		&session.TokenHash, &session.Username,
		&session.CreatedAt, &session.ExpiresAt, &session.Active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return session, nil
}

// DeactivateSession marks a session inactive. Sessions are never deleted.
func (s *Store) DeactivateSession(ctx context.Context, tokenHash string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET active = FALSE WHERE token_hash = $1", tokenHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
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
