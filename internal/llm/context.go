package llm

import (
	"context"
	"fmt"
	"strings"

	"mindfulmate-backend/internal/models"
	"mindfulmate-backend/internal/store"
)

// DefaultShortTermWindow is how many recent turns feed the prompt.
const DefaultShortTermWindow = 10

// NoSummariesSentinel stands in for the long-term context when no daily
// summaries exist yet. Callers treat it as valid context, not an error.
const NoSummariesSentinel = "No summaries available."

// AssembledContext is the memory handed to the prompt composer.
type AssembledContext struct {
	ShortTerm string
	LongTerm  string
}

// ContextAssembler builds the bounded conversational memory for an
// identity from the durable store.
type ContextAssembler struct {
	memory store.MemoryStore
	window int
}

// NewContextAssembler builds an assembler with the given turn window.
func NewContextAssembler(memory store.MemoryStore, window int) *ContextAssembler {
	if window <= 0 {
		window = DefaultShortTermWindow
	}
	return &ContextAssembler{memory: memory, window: window}
}

// Assemble gathers the identity's recent turns and all daily summaries.
// An empty username yields an empty short-term section because the store
// returns nothing for it; anonymous chats run on long-term context only.
func (a *ContextAssembler) Assemble(ctx context.Context, username string) (*AssembledContext, error) {
	turns, err := a.memory.RecentTurns(ctx, a.window, username)
	if err != nil {
		return nil, fmt.Errorf("recent turns lookup failed: %w", err)
	}

	summaries, err := a.memory.AllSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("summaries lookup failed: %w", err)
	}

	return &AssembledContext{
		ShortTerm: renderTurns(turns),
		LongTerm:  renderSummaries(summaries),
	}, nil
}

// renderTurns formats turns as input/response pairs in chronological
// order. RecentTurns returns newest first, so iterate backwards.
func renderTurns(turns []models.ConversationTurn) string {
	var b strings.Builder
	for i := len(turns) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "user_input: %s\nresponse: %s\n", turns[i].UserInput, turns[i].Response)
	}
	return b.String()
}

func renderSummaries(summaries []models.Summary) string {
	if len(summaries) == 0 {
		return NoSummariesSentinel
	}

	var b strings.Builder
	for _, s := range summaries {
		fmt.Fprintf(&b, "Date: %s\nOverall mood: %s\nSentiment score: %.2f\nChat summary: %s\nJournal summary: %s\n\n",
			s.Date, s.OverallMood, s.SentimentScore, s.ChatSummary, s.JournalSummary)
	}
	return strings.TrimSpace(b.String())
}
