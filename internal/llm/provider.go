// Package llm composes prompts from stored context and drives an ordered
// chain of text-generation providers with typed failure classification.
package llm

import (
	"context"
	"fmt"
)

// ErrorClass partitions provider failures by how the chain reacts to them.
type ErrorClass int

const (
	// Retryable covers timeouts and transient network failures. The same
	// provider is retried until its budget runs out.
	Retryable ErrorClass = iota
	// Unavailable covers structural failures such as an unknown model,
	// a bad API version, or rejected credentials. Retrying cannot help;
	// the chain advances immediately.
	Unavailable
	// RateLimited is retried like Retryable but logged distinctly.
	RateLimited
	// EmptyReply marks a call that succeeded at the transport level but
	// produced no usable text. The chain advances immediately.
	EmptyReply
)

func (c ErrorClass) String() string {
	switch c {
	case Retryable:
		return "retryable"
	case Unavailable:
		return "unavailable"
	case RateLimited:
		return "rate_limited"
	case EmptyReply:
		return "empty_reply"
	default:
		return "unknown"
	}
}

// ProviderError wraps a provider failure with its classification. The
// orchestrator branches on Class alone, never on error text.
type ProviderError struct {
	Provider string
	Class    ErrorClass
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Class, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Provider generates a reply for a fully composed prompt. Implementations
// return *ProviderError for every failure so the orchestrator can classify
// without inspecting vendor error types.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}
