package chat

import (
	"time"

	"github.com/google/uuid"
)

// titlePrefixLength bounds titles derived from a first user message
const titlePrefixLength = 50

// Chat is an ordered, append-only log of messages owned by a single user. Message
// order is insertion order; history is never edited or deleted.
type Chat struct {
	ID        uuid.UUID `json:"id"`
	Owner     string    `json:"owner"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// OriginTaskID back-references the task card that spawned this chat, if any.
	// It is a lookup key only, not an ownership relation. Zero means none.
	OriginTaskID int `json:"originTaskId,omitempty"`
}

// Summary is a projection of a chat for listings: message count instead of bodies
type Summary struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"messageCount"`
	UpdatedAt    time.Time `json:"updatedAt"`
	OriginTaskID int       `json:"originTaskId,omitempty"`
}

func (c Chat) summary() Summary {
	return Summary{
		ID:           c.ID,
		Title:        c.Title,
		MessageCount: len(c.Messages),
		UpdatedAt:    c.UpdatedAt,
		OriginTaskID: c.OriginTaskID,
	}
}

// clone returns a deep copy so that callers cannot mutate store-owned state
func (c Chat) clone() Chat {
	out := c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return out
}

// DeriveTitle produces a chat title from a first user message: a bounded prefix
// plus a truncation marker
func DeriveTitle(firstMessage string) string {
	r := []rune(firstMessage)
	if len(r) > titlePrefixLength {
		r = r[:titlePrefixLength]
	}
	return string(r) + "..."
}
