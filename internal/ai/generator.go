// Package ai defines the response-generation contract and adapters for concrete
// generation backends.
package ai

import (
	"context"
	"fmt"
)

// Turn is one prior conversation turn passed to a generator as context. Only role
// and content cross the boundary; ids and timestamps stay in the session store.
type Turn struct {
	Role    string
	Content string
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Generator produces assistant text for a prompt, given the prior turns of the
// conversation in order. Implementations are stateless: everything they need must
// arrive via prompt and history, and the prompt is appended as the final user turn
// by the implementation itself, not pre-included by the caller.
type Generator interface {
	Generate(ctx context.Context, prompt string, history []Turn) (string, error)
}

// GenerationError wraps a failure from a generation backend. By the time it is
// returned the user half of the turn has already been persisted; callers may
// resubmit without duplicating history.
type GenerationError struct {
	Backend string
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s failed to generate response: %v", e.Backend, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
