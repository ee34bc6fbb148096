// Package store defines the persistence contracts shared by both storage
// tiers and the fallback composition that joins them. Two logical stores
// exist: the auth store (users and sessions) and the memory store (journals,
// conversation turns, daily summaries). Cross-references between records are
// by value only (username, token hash), never by handle.
package store

import (
	"context"
	"errors"
	"time"

	"mindfulmate-backend/internal/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrSessionNotFound   = errors.New("session not found")
)

// UserStore persists user records.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, username string, at time.Time) error
}

// SessionStore persists session records keyed by token hash.
type SessionStore interface {
	CreateSession(ctx context.Context, session *models.Session) error
	SessionByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error)
	// DeactivateSession marks a session inactive. It is idempotent: the lazy
	// expiry write-back and an explicit logout may both land and the result
	// is the same terminal state.
	DeactivateSession(ctx context.Context, tokenHash string) error
}

// AuthStore groups the user and session contracts; each tier implements both
// so the pair can fall back together.
type AuthStore interface {
	UserStore
	SessionStore
}

// MemoryStore persists journals, conversation turns, and summaries.
//
// Every method that takes a username returns an empty result when username
// is empty. That is the anti-leak guard: anonymous turns are stored with no
// identity and must never be attributed to, or mixed into, any user's
// history.
type MemoryStore interface {
	SaveJournal(ctx context.Context, entry *models.JournalEntry) error
	JournalsByUser(ctx context.Context, username string) ([]models.JournalEntry, error)
	JournalsByDate(ctx context.Context, date string) ([]models.JournalEntry, error)

	SaveTurn(ctx context.Context, turn *models.ConversationTurn) error
	TurnsByDate(ctx context.Context, date, username string) ([]models.ConversationTurn, error)
	RecentTurns(ctx context.Context, limit int, username string) ([]models.ConversationTurn, error)

	AllSummaries(ctx context.Context) ([]models.Summary, error)
	UpsertSummary(ctx context.Context, summary *models.Summary) error
}
