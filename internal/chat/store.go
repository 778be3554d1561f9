package chat

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store is the authoritative, in-memory registry of chats. It enforces the core
// invariants: appends to one chat are serialized so message order is arrival order,
// appends to different chats proceed in parallel, and every query is scoped to an
// owner.
type Store struct {
	logger zerolog.Logger
	now    func() time.Time

	mu    sync.RWMutex
	chats map[uuid.UUID]*record
}

// record pairs a chat with its locks. appendMu serializes individual appends;
// turnMu serializes a whole user-append/generate/assistant-append sequence.
type record struct {
	appendMu      sync.Mutex
	turnMu        sync.Mutex
	chat          Chat
	nextMessageID int64
}

type StoreOption func(*Store)

// WithClock overrides the store's time source
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty session store
func NewStore(logger zerolog.Logger, opts ...StoreOption) *Store {
	s := &Store{
		logger: logger,
		now:    time.Now,
		chats:  map[uuid.UUID]*record{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a chat from a first user message. The title is derived from the
// message and the chat begins with that message already appended.
func (s *Store) Create(owner string, firstMessage string) (Chat, error) {
	if owner == "" {
		return Chat{}, &ValidationError{Field: "owner", Reason: "must not be empty"}
	}
	if err := validateMessage(RoleUser, firstMessage); err != nil {
		return Chat{}, err
	}

	now := s.now()
	rec := &record{
		chat: Chat{
			ID:        uuid.New(),
			Owner:     owner,
			Title:     DeriveTitle(firstMessage),
			CreatedAt: now,
			UpdatedAt: now,
		},
		nextMessageID: 1,
	}
	rec.chat.Messages = append(rec.chat.Messages, Message{
		ID:        rec.nextMessageID,
		Role:      RoleUser,
		Content:   firstMessage,
		Timestamp: now,
	})
	rec.nextMessageID++

	s.mu.Lock()
	s.chats[rec.chat.ID] = rec
	s.mu.Unlock()

	s.logger.Debug().
		Stringer("chat_id", rec.chat.ID).
		Str("title", rec.chat.Title).
		Msg("created chat from first message")

	return rec.chat.clone(), nil
}

// CreateTitled starts an empty chat with an explicit title, typically the name of
// the task that spawned it. originTaskID may be zero.
func (s *Store) CreateTitled(owner string, title string, originTaskID int) (Chat, error) {
	if owner == "" {
		return Chat{}, &ValidationError{Field: "owner", Reason: "must not be empty"}
	}
	if title == "" {
		return Chat{}, &ValidationError{Field: "title", Reason: "must not be empty"}
	}

	now := s.now()
	rec := &record{
		chat: Chat{
			ID:           uuid.New(),
			Owner:        owner,
			Title:        title,
			CreatedAt:    now,
			UpdatedAt:    now,
			OriginTaskID: originTaskID,
		},
		nextMessageID: 1,
	}

	s.mu.Lock()
	s.chats[rec.chat.ID] = rec
	s.mu.Unlock()

	s.logger.Debug().
		Stringer("chat_id", rec.chat.ID).
		Str("title", title).
		Msg("created titled chat")

	return rec.chat.clone(), nil
}

// Append adds one message to a chat. The message id and timestamp are assigned
// here, under the chat's append lock, so concurrent appends to the same chat land
// in arrival order. Returns ErrNotFound if the chat does not exist for the owner.
func (s *Store) Append(chatID uuid.UUID, owner string, role Role, content string) (Chat, error) {
	if err := validateMessage(role, content); err != nil {
		return Chat{}, err
	}

	rec, err := s.lookup(chatID, owner)
	if err != nil {
		return Chat{}, err
	}

	rec.appendMu.Lock()
	defer rec.appendMu.Unlock()

	now := s.now()
	rec.chat.Messages = append(rec.chat.Messages, Message{
		ID:        rec.nextMessageID,
		Role:      role,
		Content:   content,
		Timestamp: now,
	})
	rec.nextMessageID++
	rec.chat.UpdatedAt = now

	return rec.chat.clone(), nil
}

// Get returns a copy of a chat. Returns ErrNotFound if the chat does not exist for
// the owner.
func (s *Store) Get(chatID uuid.UUID, owner string) (Chat, error) {
	rec, err := s.lookup(chatID, owner)
	if err != nil {
		return Chat{}, err
	}

	rec.appendMu.Lock()
	defer rec.appendMu.Unlock()
	return rec.chat.clone(), nil
}

// List returns summaries of all of an owner's chats, most recently updated first
func (s *Store) List(owner string) []Summary {
	s.mu.RLock()
	summaries := []Summary{}
	for _, rec := range s.chats {
		rec.appendMu.Lock()
		if rec.chat.Owner == owner {
			summaries = append(summaries, rec.chat.summary())
		}
		rec.appendMu.Unlock()
	}
	s.mu.RUnlock()

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries
}

// Recent returns up to limit of the owner's most recently updated chats. A limit
// of zero or less means the default of 5.
func (s *Store) Recent(owner string, limit int) []Summary {
	if limit <= 0 {
		limit = 5
	}
	summaries := s.List(owner)
	if len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries
}

// BeginTurn acquires the chat's turn lock, making the whole
// user-append/generate/assistant-append sequence one critical section for that
// chat. Other chats are unaffected. The returned release function must be called
// exactly once.
func (s *Store) BeginTurn(chatID uuid.UUID, owner string) (release func(), err error) {
	rec, err := s.lookup(chatID, owner)
	if err != nil {
		return nil, err
	}
	rec.turnMu.Lock()
	return rec.turnMu.Unlock, nil
}

// Restore seeds the store from previously archived chats, e.g. at process start.
// Message ids continue from the highest id present in each chat.
func (s *Store) Restore(chats []Chat) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range chats {
		var maxID int64
		for _, m := range c.Messages {
			if m.ID > maxID {
				maxID = m.ID
			}
		}
		s.chats[c.ID] = &record{
			chat:          c.clone(),
			nextMessageID: maxID + 1,
		}
	}

	s.logger.Info().Int("count", len(chats)).Msg("restored chats")
}

func (s *Store) lookup(chatID uuid.UUID, owner string) (*record, error) {
	s.mu.RLock()
	rec, ok := s.chats[chatID]
	s.mu.RUnlock()
	if !ok || rec.chat.Owner != owner {
		return nil, ErrNotFound
	}
	return rec, nil
}
