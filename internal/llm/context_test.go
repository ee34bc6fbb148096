package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindfulmate-backend/internal/models"
)

func turnFor(username, input, response string, at time.Time) models.ConversationTurn {
	t := models.ConversationTurn{UserInput: input, Response: response, Timestamp: at}
	if username != "" {
		t.Username = &username
	}
	return t
}

func TestAssembleShortTermChronological(t *testing.T) {
	now := time.Now().UTC()
	mem := &fakeMemory{turns: []models.ConversationTurn{
		turnFor("alice", "first", "reply one", now.Add(-2*time.Minute)),
		turnFor("alice", "second", "reply two", now.Add(-time.Minute)),
	}}

	a := NewContextAssembler(mem, 10)
	got, err := a.Assemble(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, "user_input: first\nresponse: reply one\nuser_input: second\nresponse: reply two\n", got.ShortTerm)
	assert.Equal(t, NoSummariesSentinel, got.LongTerm)
}

func TestAssembleWindowBound(t *testing.T) {
	now := time.Now().UTC()
	mem := &fakeMemory{}
	for i := 0; i < 15; i++ {
		mem.turns = append(mem.turns, turnFor("alice", "q", "a", now.Add(time.Duration(i)*time.Second)))
	}

	a := NewContextAssembler(mem, 10)
	got, err := a.Assemble(context.Background(), "alice")
	require.NoError(t, err)

	// 10 pairs, two lines each.
	assert.Equal(t, 20, countLines(got.ShortTerm))
}

func countLines(s string) int {
	n := 0
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}

func TestAssembleAnonymousGetsNoShortTerm(t *testing.T) {
	now := time.Now().UTC()
	mem := &fakeMemory{turns: []models.ConversationTurn{
		turnFor("alice", "private", "reply", now),
		turnFor("", "anon question", "anon reply", now),
	}}

	a := NewContextAssembler(mem, 10)
	got, err := a.Assemble(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got.ShortTerm)
}

func TestAssembleExcludesOtherIdentities(t *testing.T) {
	now := time.Now().UTC()
	mem := &fakeMemory{turns: []models.ConversationTurn{
		turnFor("bob", "bob secret", "bob reply", now),
		turnFor("", "anon", "anon reply", now),
		turnFor("alice", "mine", "my reply", now),
	}}

	a := NewContextAssembler(mem, 10)
	got, err := a.Assemble(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "user_input: mine\nresponse: my reply\n", got.ShortTerm)
}

func TestAssembleRendersSummaries(t *testing.T) {
	mem := &fakeMemory{summaries: []models.Summary{
		{Date: "2026-08-30", OverallMood: "calm", SentimentScore: 0.35, ChatSummary: "steady day", JournalSummary: "wrote about work"},
	}}

	a := NewContextAssembler(mem, 10)
	got, err := a.Assemble(context.Background(), "alice")
	require.NoError(t, err)
	assert.Contains(t, got.LongTerm, "Date: 2026-08-30")
	assert.Contains(t, got.LongTerm, "Overall mood: calm")
	assert.Contains(t, got.LongTerm, "Sentiment score: 0.35")
	assert.Contains(t, got.LongTerm, "Chat summary: steady day")
	assert.Contains(t, got.LongTerm, "Journal summary: wrote about work")
}

func TestComposePromptMoodTag(t *testing.T) {
	assembled := &AssembledContext{ShortTerm: "", LongTerm: NoSummariesSentinel}

	plain := ComposePrompt(assembled, "hello", "", 0.1)
	assert.NotContains(t, plain, "tagged their current mood")

	tagged := ComposePrompt(assembled, "hello", "anxious", 0.1)
	assert.Contains(t, tagged, "tagged their current mood as: anxious")
	assert.Contains(t, tagged, "User: hello")
}
