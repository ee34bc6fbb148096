package llm

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mindfulmate-backend/internal/models"
	"mindfulmate-backend/internal/store"
)

// FallbackReply is returned when every provider in the chain fails. The
// contract is "always produce a reply": a chat request never surfaces a
// provider failure to the caller.
const FallbackReply = "I'm having trouble connecting right now, but I'm still here with you. " +
	"Take a moment to breathe, and please try again in a little while."

// ChainEntry is one provider in the ordered chain with its call budget.
type ChainEntry struct {
	Provider Provider
	Timeout  time.Duration
	Retries  int
}

// Reply is the outcome of a chat exchange.
type Reply struct {
	Text      string  `json:"response"`
	Sentiment float64 `json:"sentiment_score"`
	Provider  string  `json:"provider,omitempty"`
}

// Scorer computes the signed sentiment score for a text.
type Scorer interface {
	Score(ctx context.Context, text string) float64
}

// Orchestrator runs the full chat exchange: sentiment, context assembly,
// prompt composition, the provider chain, and persistence of the turn.
type Orchestrator struct {
	chain     []ChainEntry
	scorer    Scorer
	assembler *ContextAssembler
	memory    store.MemoryStore
	retryWait time.Duration
	logger    *zap.Logger
}

// NewOrchestrator wires the orchestrator. The chain is tried strictly in
// the order given.
func NewOrchestrator(chain []ChainEntry, scorer Scorer, assembler *ContextAssembler,
	memory store.MemoryStore, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		chain:     chain,
		scorer:    scorer,
		assembler: assembler,
		memory:    memory,
		retryWait: time.Second,
		logger:    logger,
	}
}

// Providers reports the configured chain, in order.
func (o *Orchestrator) Providers() []string {
	names := make([]string, 0, len(o.chain))
	for _, entry := range o.chain {
		names = append(names, entry.Provider.Name())
	}
	return names
}

// Respond produces a reply for the user input. username is empty for
// anonymous chats. It never returns an error for provider failures; the
// chain exhausting ends in FallbackReply, not a failure.
func (o *Orchestrator) Respond(ctx context.Context, userInput, mood, username string) (*Reply, error) {
	sentiment := o.scorer.Score(ctx, userInput)

	assembled, err := o.assembler.Assemble(ctx, username)
	if err != nil {
		// Degrade to empty context rather than failing the chat.
		o.logger.Warn("context assembly failed", zap.Error(err))
		assembled = &AssembledContext{LongTerm: NoSummariesSentinel}
	}

	prompt := ComposePrompt(assembled, userInput, mood, sentiment)

	text, provider := o.generate(ctx, prompt)
	reply := &Reply{Text: text, Sentiment: sentiment, Provider: provider}

	if provider != "" {
		o.persistTurn(ctx, userInput, text, sentiment, username)
	}

	return reply, nil
}

// generate walks the provider chain and returns the first usable reply
// plus the provider that produced it. An empty provider name means the
// chain was exhausted and the text is the fixed fallback.
func (o *Orchestrator) generate(ctx context.Context, prompt string) (string, string) {
	for _, entry := range o.chain {
		attempts := entry.Retries + 1
		for attempt := 1; attempt <= attempts; attempt++ {
			text, err := o.callProvider(ctx, entry, prompt)
			if err == nil {
				o.logger.Info("provider reply",
					zap.String("provider", entry.Provider.Name()),
					zap.Int("attempt", attempt))
				return text, entry.Provider.Name()
			}

			var perr *ProviderError
			if !errors.As(err, &perr) {
				perr = &ProviderError{Provider: entry.Provider.Name(), Class: Retryable, Err: err}
			}

			o.logger.Warn("provider call failed",
				zap.String("provider", perr.Provider),
				zap.String("class", perr.Class.String()),
				zap.Int("attempt", attempt),
				zap.Error(perr.Err))

			// Structural failures and empty replies cannot improve on
			// retry; advance to the next provider immediately.
			if perr.Class == Unavailable || perr.Class == EmptyReply {
				break
			}

			if attempt < attempts {
				select {
				case <-time.After(o.retryWait):
				case <-ctx.Done():
					return FallbackReply, ""
				}
			}
		}
	}

	o.logger.Error("provider chain exhausted")
	return FallbackReply, ""
}

func (o *Orchestrator) callProvider(ctx context.Context, entry ChainEntry, prompt string) (string, error) {
	cctx := ctx
	if entry.Timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, entry.Timeout)
		defer cancel()
	}

	text, err := entry.Provider.Generate(cctx, prompt)
	if err != nil && cctx.Err() == context.DeadlineExceeded {
		return "", &ProviderError{Provider: entry.Provider.Name(), Class: Retryable, Err: cctx.Err()}
	}
	return text, err
}

// persistTurn records a successful exchange. The write runs detached from
// the request context so a caller disconnecting after the reply was
// generated does not discard it.
func (o *Orchestrator) persistTurn(ctx context.Context, userInput, response string, sentiment float64, username string) {
	turn := &models.ConversationTurn{
		ID:             uuid.NewString(),
		UserInput:      userInput,
		SentimentScore: sentiment,
		Response:       response,
		Timestamp:      time.Now().UTC(),
	}
	if username != "" {
		turn.Username = &username
	}

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := o.memory.SaveTurn(wctx, turn); err != nil {
		o.logger.Error("failed to persist conversation turn", zap.Error(err))
	}
}
