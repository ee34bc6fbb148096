package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"mindfulmate-backend/internal/models"
	"mindfulmate-backend/internal/store"
)

// CreateUser inserts a new user record.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, created_at, last_login)
		VALUES (?, ?, ?, ?, ?)
	`, user.Username, user.Email, user.PasswordHash, user.CreatedAt, user.LastLogin)
	return err
}

// UserByUsername retrieves a user by username.
func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT username, email, password_hash, created_at, last_login
		FROM users WHERE username = ?
	`, username))
}

// UserByEmail retrieves a user by email.
func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT username, email, password_hash, created_at, last_login
		FROM users WHERE email = ?
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
		return nil, err
	}

	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}

	return user, nil
}

// UpdateLastLogin updates the user's last login timestamp.
func (s *Store) UpdateLastLogin(ctx context.Context, username string, at time.Time) error {
	result, err := s.db.ExecContext(ctx, "UPDATE users SET last_login = ? WHERE username = ?", at, username)
	if err != nil {
		return err
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
