// Package badgerstore is the local fallback tier for journals, conversation
// turns, and summaries: a Badger key-value store holding JSON-encoded
// records. Keys are prefixed per record kind (journal:, turn:, summary:);
// summaries are keyed by date so writes upsert naturally.
package badgerstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"mindfulmate-backend/internal/models"
)

const (
	journalPrefix = "journal:"
	turnPrefix    = "turn:"
	summaryPrefix = "summary:"
)

// Store implements store.MemoryStore on a local Badger database.
type Store struct {
	db *badger.DB
}

// Open initializes the Badger database at dir. SyncWrites is on so that
// fallback-tier data survives a process restart.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).
		WithSyncWrites(true).
		WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// scanPrefix decodes every record under prefix via the visit callback.
// Record sets here are small (a single user's history), so a filtered
// scan is enough.
func (s *Store) scanPrefix(prefix string, visit func(data []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				return visit(val)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveJournal stores a journal entry.
func (s *Store) SaveJournal(_ context.Context, entry *models.JournalEntry) error {
	return s.put(journalPrefix+entry.ID, entry)
}

// JournalsByUser returns the user's journal entries, most recent first.
func (s *Store) JournalsByUser(_ context.Context, username string) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	err := s.scanPrefix(journalPrefix, func(data []byte) error {
		var entry models.JournalEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return err
		}
		if entry.Username == username {
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries, nil
}

// JournalsByDate returns all journal entries for a date, oldest first.
func (s *Store) JournalsByDate(_ context.Context, date string) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	err := s.scanPrefix(journalPrefix, func(data []byte) error {
		var entry models.JournalEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return err
		}
		if entry.Timestamp.UTC().Format("2006-01-02") == date {
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	return entries, nil
}

// SaveTurn stores a conversation turn.
func (s *Store) SaveTurn(_ context.Context, turn *models.ConversationTurn) error {
	return s.put(turnPrefix+turn.ID, turn)
}

// TurnsByDate returns the identity's turns for a date, oldest first.
// An empty username yields an empty result; anonymous turns are never
// attributed to a user.
func (s *Store) TurnsByDate(_ context.Context, date, username string) ([]models.ConversationTurn, error) {
	if username == "" {
		return nil, nil
	}

	var turns []models.ConversationTurn
	err := s.scanPrefix(turnPrefix, func(data []byte) error {
		var turn models.ConversationTurn
		if err := json.Unmarshal(data, &turn); err != nil {
			return err
		}
		if turn.Username != nil && *turn.Username == username &&
			turn.Timestamp.UTC().Format("2006-01-02") == date {
			turns = append(turns, turn)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(turns, func(i, j int) bool {
		return turns[i].Timestamp.Before(turns[j].Timestamp)
	})
	return turns, nil
}

// RecentTurns returns the identity's most recent turns, newest first,
// truncated to limit. An empty username yields an empty result.
func (s *Store) RecentTurns(_ context.Context, limit int, username string) ([]models.ConversationTurn, error) {
	if username == "" {
		return nil, nil
	}

	var turns []models.ConversationTurn
	err := s.scanPrefix(turnPrefix, func(data []byte) error {
		var turn models.ConversationTurn
		if err := json.Unmarshal(data, &turn); err != nil {
			return err
		}
		if turn.Username != nil && *turn.Username == username {
			turns = append(turns, turn)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(turns, func(i, j int) bool {
		return turns[i].Timestamp.After(turns[j].Timestamp)
	})
	if limit > 0 && len(turns) > limit {
		turns = turns[:limit]
	}
	return turns, nil
}

// AllSummaries returns all summaries, most recent date first.
func (s *Store) AllSummaries(_ context.Context) ([]models.Summary, error) {
	var summaries []models.Summary
	err := s.scanPrefix(summaryPrefix, func(data []byte) error {
		var summary models.Summary
		if err := json.Unmarshal(data, &summary); err != nil {
			return err
		}
		summaries = append(summaries, summary)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Date > summaries[j].Date
	})
	return summaries, nil
}

// UpsertSummary writes the summary for its date, replacing any existing one.
func (s *Store) UpsertSummary(_ context.Context, summary *models.Summary) error {
	return s.put(summaryPrefix+summary.Date, summary)
}
