package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mindfulmate-backend/internal/models"
)

type fakeProvider struct {
	name    string
	replies []string
	errs    []error
	calls   int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return "", &ProviderError{Provider: f.name, Class: EmptyReply, Err: errors.New("no scripted reply")}
}

type fakeMemory struct {
	mu        sync.Mutex
	turns     []models.ConversationTurn
	summaries []models.Summary
}

func (m *fakeMemory) SaveJournal(ctx context.Context, e *models.JournalEntry) error { return nil }
func (m *fakeMemory) JournalsByUser(ctx context.Context, u string) ([]models.JournalEntry, error) {
	return nil, nil
}
func (m *fakeMemory) JournalsByDate(ctx context.Context, d string) ([]models.JournalEntry, error) {
	return nil, nil
}

func (m *fakeMemory) SaveTurn(ctx context.Context, t *models.ConversationTurn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, *t)
	return nil
}

func (m *fakeMemory) TurnsByDate(ctx context.Context, date, username string) ([]models.ConversationTurn, error) {
	return nil, nil
}

func (m *fakeMemory) RecentTurns(ctx context.Context, limit int, username string) ([]models.ConversationTurn, error) {
	if username == "" {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ConversationTurn
	for i := len(m.turns) - 1; i >= 0 && len(out) < limit; i-- {
		if m.turns[i].Username != nil && *m.turns[i].Username == username {
			out = append(out, m.turns[i])
		}
	}
	return out, nil
}

func (m *fakeMemory) AllSummaries(ctx context.Context) ([]models.Summary, error) {
	return m.summaries, nil
}

func (m *fakeMemory) UpsertSummary(ctx context.Context, s *models.Summary) error {
	m.summaries = append(m.summaries, *s)
	return nil
}

type fixedScorer struct{ score float64 }

func (s fixedScorer) Score(ctx context.Context, text string) float64 { return s.score }

func newTestOrchestrator(mem *fakeMemory, chain ...ChainEntry) *Orchestrator {
	o := NewOrchestrator(chain, fixedScorer{score: -0.4}, NewContextAssembler(mem, 10), mem, zap.NewNop())
	o.retryWait = time.Millisecond
	return o
}

func TestRespondPrimarySuccess(t *testing.T) {
	mem := &fakeMemory{}
	primary := &fakeProvider{name: "gemini", replies: []string{"I hear you."}}
	o := newTestOrchestrator(mem, ChainEntry{Provider: primary, Retries: 2})

	reply, err := o.Respond(context.Background(), "rough day", "", "alice")
	require.NoError(t, err)
	assert.Equal(t, "I hear you.", reply.Text)
	assert.Equal(t, "gemini", reply.Provider)
	assert.InDelta(t, -0.4, reply.Sentiment, 1e-9)

	require.Len(t, mem.turns, 1)
	assert.Equal(t, "rough day", mem.turns[0].UserInput)
	require.NotNil(t, mem.turns[0].Username)
	assert.Equal(t, "alice", *mem.turns[0].Username)
}

func TestRespondUnavailableAdvancesImmediately(t *testing.T) {
	mem := &fakeMemory{}
	primary := &fakeProvider{name: "gemini", errs: []error{
		&ProviderError{Provider: "gemini", Class: Unavailable, Err: errors.New("model not found")},
	}}
	secondary := &fakeProvider{name: "openai", replies: []string{"That sounds hard."}}
	o := newTestOrchestrator(mem,
		ChainEntry{Provider: primary, Retries: 3},
		ChainEntry{Provider: secondary})

	reply, err := o.Respond(context.Background(), "hi", "", "alice")
	require.NoError(t, err)
	assert.Equal(t, "openai", reply.Provider)
	assert.Equal(t, 1, primary.calls, "unavailable must not be retried")
}

func TestRespondRetryableUsesBudgetThenAdvances(t *testing.T) {
	mem := &fakeMemory{}
	flaky := &fakeProvider{name: "gemini", errs: []error{
		&ProviderError{Provider: "gemini", Class: Retryable, Err: errors.New("timeout")},
		&ProviderError{Provider: "gemini", Class: Retryable, Err: errors.New("timeout")},
		&ProviderError{Provider: "gemini", Class: Retryable, Err: errors.New("timeout")},
	}}
	secondary := &fakeProvider{name: "openai", replies: []string{"I'm here."}}
	o := newTestOrchestrator(mem,
		ChainEntry{Provider: flaky, Retries: 2},
		ChainEntry{Provider: secondary})

	reply, err := o.Respond(context.Background(), "hi", "", "alice")
	require.NoError(t, err)
	assert.Equal(t, "openai", reply.Provider)
	assert.Equal(t, 3, flaky.calls, "retries plus initial attempt")
}

func TestRespondRetryableRecoversOnSameProvider(t *testing.T) {
	mem := &fakeMemory{}
	flaky := &fakeProvider{
		name:    "gemini",
		errs:    []error{&ProviderError{Provider: "gemini", Class: Retryable, Err: errors.New("blip")}, nil},
		replies: []string{"", "Welcome back."},
	}
	o := newTestOrchestrator(mem, ChainEntry{Provider: flaky, Retries: 2})

	reply, err := o.Respond(context.Background(), "hi", "", "alice")
	require.NoError(t, err)
	assert.Equal(t, "Welcome back.", reply.Text)
	assert.Equal(t, "gemini", reply.Provider)
}

func TestRespondChainExhaustedReturnsFallback(t *testing.T) {
	mem := &fakeMemory{}
	down := &fakeProvider{name: "gemini", errs: []error{
		&ProviderError{Provider: "gemini", Class: Unavailable, Err: errors.New("gone")},
	}}
	o := newTestOrchestrator(mem, ChainEntry{Provider: down})

	reply, err := o.Respond(context.Background(), "hi", "", "alice")
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, reply.Text)
	assert.Empty(t, reply.Provider)
	assert.Empty(t, mem.turns, "fallback reply must not be persisted as a turn")
}

func TestRespondEmptyReplyAdvances(t *testing.T) {
	mem := &fakeMemory{}
	blank := &fakeProvider{name: "gemini", errs: []error{
		&ProviderError{Provider: "gemini", Class: EmptyReply, Err: errors.New("blank")},
	}}
	secondary := &fakeProvider{name: "openai", replies: []string{"Still with you."}}
	o := newTestOrchestrator(mem,
		ChainEntry{Provider: blank, Retries: 3},
		ChainEntry{Provider: secondary})

	reply, err := o.Respond(context.Background(), "hi", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Still with you.", reply.Text)
	assert.Equal(t, 1, blank.calls, "empty reply must not be retried")
}

func TestRespondAnonymousTurnHasNoUsername(t *testing.T) {
	mem := &fakeMemory{}
	primary := &fakeProvider{name: "gemini", replies: []string{"Hello."}}
	o := newTestOrchestrator(mem, ChainEntry{Provider: primary})

	_, err := o.Respond(context.Background(), "hi", "", "")
	require.NoError(t, err)
	require.Len(t, mem.turns, 1)
	assert.Nil(t, mem.turns[0].Username)
}

func TestRespondPersistsAfterCallerCancel(t *testing.T) {
	mem := &fakeMemory{}
	primary := &fakeProvider{name: "gemini", replies: []string{"Take care."}}
	o := newTestOrchestrator(mem, ChainEntry{Provider: primary})

	ctx, cancel := context.WithCancel(context.Background())
	reply, err := o.Respond(ctx, "bye", "", "alice")
	cancel()
	require.NoError(t, err)
	assert.Equal(t, "Take care.", reply.Text)
	require.Len(t, mem.turns, 1)
}
