package models

import "time"

// JournalEntry is a single journal submission. Entries are immutable and
// always identity-tagged; there are no anonymous journals.
type JournalEntry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Entry     string    `json:"entry"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

// JournalRequest represents the request body for saving a journal entry
type JournalRequest struct {
	Title    string `json:"title"`
	Entry    string `json:"entry"`
	Username string `json:"username"`
}
