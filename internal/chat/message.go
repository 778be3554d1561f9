// Package chat implements the conversation session engine: the message and chat
// data model, the in-memory session store, and the service that drives full turns
// against a response generator.
package chat

import (
	"fmt"
	"time"
)

// Role identifies the author of a message. Conversations have exactly two
// participants; there is no system or tool role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MaxContentLength is the upper bound on message content, in bytes.
const MaxContentLength = 32 * 1024

// Message is one turn of a conversation. Messages are immutable once appended:
// ids are assigned per-chat in monotonically increasing order, and timestamps are
// assigned by the store at append time, never by the caller.
type Message struct {
	ID        int64     `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// validateMessage rejects malformed input before any store mutation
func validateMessage(role Role, content string) error {
	if role != RoleUser && role != RoleAssistant {
		return &ValidationError{Field: "role", Reason: fmt.Sprintf("unknown role %q", role)}
	}
	if content == "" {
		return &ValidationError{Field: "content", Reason: "must not be empty"}
	}
	if len(content) > MaxContentLength {
		return &ValidationError{Field: "content", Reason: fmt.Sprintf("exceeds %d bytes", MaxContentLength)}
	}
	return nil
}
