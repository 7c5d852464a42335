// Package llm defines universal types and the provider interface for
// large language model backends, plus convenience helpers for plain-text
// and structured-JSON completions.
package llm

import (
	"context"

	"github.com/skillsenselab/jobhunt/internal/provider"
)

// Provider is the interface that LLM backends must implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// CompleteStructured sends a completion request expecting structured JSON
	// output. Providers with a native JSON mode enable it here.
	CompleteStructured(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
