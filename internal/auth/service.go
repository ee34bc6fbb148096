// Package auth owns users and sessions: registration, login, token
// validation, and logout. All persistence goes through the injected
// dual-tier auth store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"mindfulmate-backend/internal/models"
	"mindfulmate-backend/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

// DefaultSessionTTL is how long a session stays valid after login.
const DefaultSessionTTL = 30 * 24 * time.Hour

// Service handles authentication logic.
type Service struct {
	// mu serializes register's check-then-insert so two concurrent
	// registrations cannot both pass the uniqueness checks.
	mu     sync.Mutex
	st     store.AuthStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewService creates a new auth service backed by the given store.
func NewService(st store.AuthStore, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{st: st, ttl: ttl, logger: logger}
}

// LoginResult carries the session token and the public user fields.
type LoginResult struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	User      *models.UserInfo `json:"user"`
}

// Register creates a new user. The password is stored only as a bcrypt hash.
func (s *Service) Register(ctx context.Context, username, email, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.st.UserByUsername(ctx, username); err == nil {
		return ErrDuplicateUsername
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return fmt.Errorf("user lookup failed: %w", err)
	}

	if _, err := s.st.UserByEmail(ctx, email); err == nil {
		return ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return fmt.Errorf("email lookup failed: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("password hashing failed: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.st.CreateUser(ctx, user); err != nil {
		// The tier's unique constraints are the backstop for races the
		// mutex cannot see (two processes sharing the primary tier).
		switch {
		case errors.Is(err, store.ErrDuplicateUsername):
			return ErrDuplicateUsername
		case errors.Is(err, store.ErrDuplicateEmail):
			return ErrDuplicateEmail
		}
		return fmt.Errorf("user creation failed: %w", err)
	}

	s.logger.Info("user registered", zap.String("username", username))
	return nil
}

// Login verifies credentials and creates a 30-day session.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.st.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("token generation failed: %w", err)
	}

	now := time.Now().UTC()
	session := &models.Session{
		TokenHash: hashToken(token),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		Active:    true,
	}

	if err := s.st.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("session creation failed: %w", err)
	}

	if err := s.st.UpdateLastLogin(ctx, username, now); err != nil {
		s.logger.Warn("failed to update last login", zap.String("username", username), zap.Error(err))
	}
	user.LastLogin = &now

	s.logger.Info("user logged in", zap.String("username", username))
	return &LoginResult{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		User:      user.Info(),
	}, nil
}

// Validate resolves a token to its identity. Expiry is checked lazily:
// a session found past its expires_at is deactivated here, on first access,
// rather than by any background sweep. The active flag is re-checked against
// expires_at on every call, so a stale true can only ever be corrected to
// false, never the other way.
func (s *Service) Validate(ctx context.Context, token string) (*models.UserInfo, error) {
	session, err := s.st.SessionByTokenHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}

	if !session.Active {
		return nil, ErrInvalidSession
	}

	if session.Expired(time.Now().UTC()) {
		// Lazy expiry write-back. Deactivation is idempotent, so a
		// concurrent logout of the same token lands on the same state.
		if err := s.st.DeactivateSession(ctx, session.TokenHash); err != nil {
			s.logger.Warn("failed to deactivate expired session", zap.Error(err))
		}
		return nil, ErrInvalidSession
	}

	user, err := s.st.UserByUsername(ctx, session.Username)
	if err != nil {
		return nil, ErrInvalidSession
	}

	return user.Info(), nil
}

// Logout deactivates a session. It is idempotent: logging out an already
// inactive session succeeds. Only an entirely unknown token is an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	err := s.st.DeactivateSession(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return ErrInvalidSession
		}
		return fmt.Errorf("logout failed: %w", err)
	}
	return nil
}

// GetUserInfo returns the public fields for a username.
func (s *Service) GetUserInfo(ctx context.Context, username string) (*models.UserInfo, error) {
	user, err := s.st.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return user.Info(), nil
}
