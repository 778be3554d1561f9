// Package focus tracks which single conversation is currently selected to receive
// newly typed input.
package focus

import (
	"sync"

	"github.com/google/uuid"
)

// Selector holds at most one focused chat id. It is a pure pointer, not a
// validator: selecting an id no store knows about is legal, and resolution happens
// at read time by the consumer. Switching focus never mutates any chat.
type Selector struct {
	mu      sync.RWMutex
	id      uuid.UUID
	focused bool
}

func NewSelector() *Selector {
	return &Selector{}
}

// Select focuses a chat id, replacing any previous focus
func (s *Selector) Select(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
	s.focused = true
}

// Clear removes focus
func (s *Selector) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = uuid.UUID{}
	s.focused = false
}

// Active returns the focused chat id, if any
func (s *Selector) Active() (uuid.UUID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id, s.focused
}
