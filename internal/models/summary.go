package models

// Summary is the distilled long-term memory for one calendar date,
// produced by the external summarization job and only read here.
type Summary struct {
	Date           string  `json:"date"` // YYYY-MM-DD
	OverallMood    string  `json:"overall_mood"`
	SentimentScore float64 `json:"sentiment_score"`
	ChatSummary    string  `json:"chat_summary"`
	JournalSummary string  `json:"journal_summary"`
}
