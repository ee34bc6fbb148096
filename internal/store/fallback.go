package store

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"mindfulmate-backend/internal/models"
)

// DefaultPrimaryTimeout bounds every primary-tier operation. The primary is
// a networked store; a hung connection must not stall a chat request.
const DefaultPrimaryTimeout = 3 * time.Second

// domainError reports whether err is an authoritative answer from a tier
// rather than a tier failure. Domain errors must propagate to the caller;
// only infrastructure failures trigger the fallback.
func domainError(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrDuplicateUsername) ||
		errors.Is(err, ErrDuplicateEmail) ||
		errors.Is(err, ErrSessionNotFound)
}

// FallbackAuthStore composes a primary auth tier with a local one. Every
// operation tries the primary under a short timeout and, on any failure
// other than a domain error, is absorbed into the local tier. Callers never
// see a primary failure.
//
// There is no reconciliation between tiers: records written while the
// primary was degraded live only in the local tier and stay invisible to
// readers that reach the primary. The split is logged, never surfaced.
type FallbackAuthStore struct {
	primary AuthStore // may be nil when no primary is configured
	local   AuthStore
	timeout time.Duration
	logger  *zap.Logger
}

// NewFallbackAuthStore composes the two auth tiers. primary may be nil.
func NewFallbackAuthStore(primary, local AuthStore, timeout time.Duration, logger *zap.Logger) *FallbackAuthStore {
	if timeout <= 0 {
		timeout = DefaultPrimaryTimeout
	}
	return &FallbackAuthStore{primary: primary, local: local, timeout: timeout, logger: logger}
}

func (s *FallbackAuthStore) absorb(op string, err error) {
	s.logger.Warn("primary auth tier failed, using local tier",
		zap.String("op", op), zap.Error(err))
}

func (s *FallbackAuthStore) CreateUser(ctx context.Context, user *models.User) error {
	if s.primary != nil {
		pctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.primary.CreateUser(pctx, user)
		cancel()
		if err == nil || domainError(err) {
			return err
		}
		s.absorb("CreateUser", err)
	}
	return s.local.CreateUser(ctx, user)
}

func (s *FallbackAuthStore) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.primary != nil {
		pctx, cancel := context.WithTimeout(ctx, s.timeout)
		user, err := s.primary.UserByUsername(pctx, username)
		cancel()
		if err == nil || domainError(err) {
			return user, err
		}
		s.absorb("UserByUsername", err)
	}
	return s.local.UserByUsername(ctx, username)
}

func (s *FallbackAuthStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.primary != nil {
		pctx, cancel := context.WithTimeout(ctx, s.timeout)
		user, err := s.primary.UserByEmail(pctx, email)
		cancel()
		if err == nil || domainError(err) {
			return user, err
		}
		s.absorb("UserByEmail", err)
	}
	return s.local.UserByEmail(ctx, email)
}

func (s *FallbackAuthStore) UpdateLastLogin(ctx context.Context, username string, at time.Time) error {
	if s.primary != nil {
		pctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.primary.UpdateLastLogin(pctx, username, at)
		cancel()
		if err == nil || domainError(err) {
			return err
		}
		s.absorb("UpdateLastLogin", err)
	}
	return s.local.UpdateLastLogin(ctx, username, at)
}

func (s *FallbackAuthStore) CreateSession(ctx context.Context, session *models.Session) error {
	if s.primary != nil {
		pctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.primary.CreateSession(pctx, session)
		cancel()
		if err == nil || domainError(err) {
			return err
		}
		s.absorb("CreateSession", err)
	}
	return s.local.CreateSession(ctx, session)
}

func (s *FallbackAuthStore) SessionByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	if s.primary != nil {
		pctx, cancel := context.WithTimeout(ctx, s.timeout)
		session, err := s.primary.SessionByTokenHash(pctx, tokenHash)
		cancel()
		if err == nil || domainError(err) {
			return session, err
		}
		s.absorb("SessionByTokenHash", err)
	}
	return s.local.SessionByTokenHash(ctx, tokenHash)
}

func (s *FallbackAuthStore) DeactivateSession(ctx context.Context, tokenHash string) error {
	if s.primary != nil {
		pctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.primary.DeactivateSession(pctx, tokenHash)
		cancel()
		if err == nil || domainError(err) {
			return err
		}
		s.absorb("DeactivateSession", err)
	}
	return s.local.DeactivateSession(ctx, tokenHash)
}

// FallbackMemoryStore composes a primary memory tier with a local one,
// with the same absorb-and-fall-through policy as FallbackAuthStore.
type FallbackMemoryStore struct {
	primary MemoryStore // may be nil when no primary is configured
	local   MemoryStore
	timeout time.Duration
	logger  *zap.Logger
}

// NewFallbackMemoryStore composes the two memory tiers. primary may be nil.
func NewFallbackMemoryStore(primary, local MemoryStore, timeout time.Duration, logger *zap.Logger) *FallbackMemoryStore {
	if timeout <= 0 {
		timeout = DefaultPrimaryTimeout
	}
	return &FallbackMemoryStore{primary: primary, local: local, timeout: timeout, logger: logger}
}

func (s *FallbackMemoryStore) absorb(op string, err error) {
	s.logger.Warn("primary memory tier failed, using local tier",
		zap.String("op", op), zap.Error(err))
}

func (s *FallbackMemoryStore) SaveJournal(ctx context.Context, entry *models.JournalEntry) error {
	if s.primary != nil {
		pctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.primary.SaveJournal(pctx, entry)
		cancel()
		if err == nil {
			return nil
		}
		s.absorb("SaveJournal", err)
	}
	return s.local.SaveJournal(ctx, entry)
}

func (s *FallbackMemoryStore) JournalsByUser(ctx context.Context, username string) ([]models.JournalEntry, error) {
	if s.primary != nil {
		pctx, cancel := context.WithTimeout(ctx, s.timeout)
		entries, err := s.primary.JournalsByUser(pctx, username)
		cancel()
		if err == nil {
			return entries, nil
		}
		s.absorb("JournalsByUser", err)
	}
	return s.local.JournalsByUser(ctx, username)
}

func (s *FallbackMemoryStore) JournalsByDate(ctx context.Context, date string) ([]models.JournalEntry, error) {
	if s.primary != nil {
		pctx, cancel := context.WithTimeout(ctx, s.timeout)
		entries, err := s.primary.JournalsByDate(pctx, date)
		cancel()
		if err == nil {
			return entries, nil
		}
		s.absorb("JournalsByDate", err)
	}
	return s.local.JournalsByDate(ctx, date)
}

func (s *FallbackMemoryStore) SaveTurn(ctx context.Context, turn *models.ConversationTurn) error {
	if s.primary != nil {
		pctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.primary.SaveTurn(pctx, turn)
		cancel()
		if err == nil {
			return nil
		}
		s.absorb("SaveTurn", err)
	}
	return s.local.SaveTurn(ctx, turn)
}

func (s *FallbackMemoryStore) TurnsByDate(ctx context.Context, date, username string) ([]models.ConversationTurn, error) {
	if username == "" {
		return nil, nil
	}
	if s.primary != nil {
		pctx, cancel := context.WithTimeout(ctx, s.timeout)
		turns, err := s.primary.TurnsByDate(pctx, date, username)
		cancel()
		if err == nil {
			return turns, nil
		}
		s.absorb("TurnsByDate", err)
	}
	return s.local.TurnsByDate(ctx, date, username)
}

func (s *FallbackMemoryStore) RecentTurns(ctx context.Context, limit int, username string) ([]models.ConversationTurn, error) {
	if username == "" {
		return nil, nil
	}
	if s.primary != nil {
		pctx, cancel := context.WithTimeout(ctx, s.timeout)
		turns, err := s.primary.RecentTurns(pctx, limit, username)
		cancel()
		if err == nil {
			return turns, nil
		}
		s.absorb("RecentTurns", err)
	}
	return s.local.RecentTurns(ctx, limit, username)
}

func (s *FallbackMemoryStore) AllSummaries(ctx context.Context) ([]models.Summary, error) {
	if s.primary != nil {
		pctx, cancel := context.WithTimeout(ctx, s.timeout)
		summaries, err := s.primary.AllSummaries(pctx)
		cancel()
		if err == nil {
			return summaries, nil
		}
		s.absorb("AllSummaries", err)
	}
	return s.local.AllSummaries(ctx)
}

func (s *FallbackMemoryStore) UpsertSummary(ctx context.Context, summary *models.Summary) error {
	if s.primary != nil {
		pctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.primary.UpsertSummary(pctx, summary)
		cancel()
		if err == nil {
			return nil
		}
		s.absorb("UpsertSummary", err)
	}
	return s.local.UpsertSummary(ctx, summary)
}
