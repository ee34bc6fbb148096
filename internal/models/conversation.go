package models

import "time"

// ConversationTurn is one chat exchange: the user's input, its sentiment
// score in [-1, 1], and the generated reply. Username is nil for anonymous
// turns; such turns must never appear in any identity-scoped read.
type ConversationTurn struct {
	ID             string    `json:"id"`
	UserInput      string    `json:"user_input"`
	SentimentScore float64   `json:"sentiment_score"`
	Response       string    `json:"response"`
	Username       *string   `json:"username"`
	Timestamp      time.Time `json:"timestamp"`
}

// ChatRequest represents the request body for a chat exchange
type ChatRequest struct {
	Prompt string `json:"prompt"`
	Mood   string `json:"mood,omitempty"`
}
