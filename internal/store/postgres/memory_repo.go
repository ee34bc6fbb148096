package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"mindfulmate-backend/internal/models"
)

// SaveJournal stores a journal entry.
func (s *Store) SaveJournal(ctx context.Context, entry *models.JournalEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO journals (id, title, entry, username, ts)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.ID, entry.Title, entry.Entry, entry.Username, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// JournalsByUser returns the user's journal entries, most recent first.
func (s *Store) JournalsByUser(ctx context.Context, username string) ([]models.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, entry, username, ts
		FROM journals WHERE username = $1 ORDER BY ts DESC
	`, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var entries []models.JournalEntry
	for rows.Next() {
		var entry models.JournalEntry
		if err := rows.Scan(&entry.ID, &entry.Title, &entry.Entry, &entry.Username, &entry.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// JournalsByDate returns all journal entries for a date, oldest first.
func (s *Store) JournalsByDate(ctx context.Context, date string) ([]models.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, entry, username, ts
		FROM journals
		WHERE ts >= $1::date AND ts < $1::date + INTERVAL '1 day'
		ORDER BY ts ASC
	`, date)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var entries []models.JournalEntry
	for rows.Next() {
		var entry models.JournalEntry
		if err := rows.Scan(&entry.ID, &entry.Title, &entry.Entry, &entry.Username, &entry.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// SaveTurn stores a conversation turn. Username is NULL for anonymous turns.
func (s *Store) SaveTurn(ctx context.Context, turn *models.ConversationTurn) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, user_input, sentiment_score, response, username, ts)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, turn.ID, turn.UserInput, turn.SentimentScore, turn.Response, turn.Username, turn.Timestamp)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// TurnsByDate returns the identity's turns for a date, oldest first. The
// username filter is a plain equality, so NULL-username (anonymous) rows can
// never match; an empty username yields an empty result.
func (s *Store) TurnsByDate(ctx context.Context, date, username string) ([]models.ConversationTurn, error) {
	if username == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_input, sentiment_score, response, username, ts
		FROM conversations
		WHERE username = $2 AND ts >= $1::date AND ts < $1::date + INTERVAL '1 day'
		ORDER BY ts ASC
	`, date, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return scanTurns(rows)
}

// RecentTurns returns the identity's most recent turns, newest first,
// truncated to limit. An empty username yields an empty result.
func (s *Store) RecentTurns(ctx context.Context, limit int, username string) ([]models.ConversationTurn, error) {
	if username == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_input, sentiment_score, response, username, ts
		FROM conversations
		WHERE username = $1 ORDER BY ts DESC LIMIT $2
	`, username, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return scanTurns(rows)
}

func scanTurns(rows *sql.Rows) ([]models.ConversationTurn, error) {
	var turns []models.ConversationTurn
	for rows.Next() {
		var turn models.ConversationTurn
		if err := rows.Scan(&turn.ID, &turn.UserInput, &turn.SentimentScore,
			&turn.Response, &turn.Username, &turn.Timestamp); err != nil {
			return nil, err
		}
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}

// AllSummaries returns all summaries, most recent date first.
func (s *Store) AllSummaries(ctx context.Context) ([]models.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, overall_mood, sentiment_score, chat_summary, journal_summary
		FROM summaries ORDER BY date DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var summaries []models.Summary
	for rows.Next() {
		var summary models.Summary
		if err := rows.Scan(&summary.Date, &summary.OverallMood, &summary.SentimentScore,
			&summary.ChatSummary, &summary.JournalSummary); err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// UpsertSummary writes the summary for its date, replacing any existing one.
func (s *Store) UpsertSummary(ctx context.Context, summary *models.Summary) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO summaries (date, overall_mood, sentiment_score, chat_summary, journal_summary)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (date) DO UPDATE SET
			overall_mood = EXCLUDED.overall_mood,
			sentiment_score = EXCLUDED.sentiment_score,
			chat_summary = EXCLUDED.chat_summary,
			journal_summary = EXCLUDED.journal_summary
	`, summary.Date, summary.OverallMood, summary.SentimentScore,
		summary.ChatSummary, summary.JournalSummary)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
