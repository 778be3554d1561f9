package chat

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates a chat that does not exist or belongs to a different owner.
// The two cases are indistinguishable to callers so that chat ids cannot be probed
// across owners.
var ErrNotFound = errors.New("chat not found")

// ValidationError reports input rejected before any store mutation
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
