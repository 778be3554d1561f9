package chat

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cchalm/task-concierge/internal/ai"
)

// Service exposes the boundary operations of the session engine. Owner identities
// are assumed to be resolved by an external auth collaborator before they reach
// this layer; the service only checks ownership equality via the store.
type Service struct {
	store  *Store
	gen    ai.Generator
	logger zerolog.Logger
	tracer trace.Tracer
}

func NewService(store *Store, gen ai.Generator, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		gen:    gen,
		logger: logger,
		tracer: otel.Tracer("github.com/cchalm/task-concierge/internal/chat"),
	}
}

// CreateChat starts a chat from a first user message and runs one generation pass
// for the opening assistant reply. If generation fails, the chat still exists with
// the user message appended and the error is returned alongside it, so the caller
// can surface a retry without resending the user message.
func (svc *Service) CreateChat(ctx context.Context, owner string, firstMessage string) (Chat, error) {
	ctx, span := svc.tracer.Start(ctx, "CreateChat")
	defer span.End()

	c, err := svc.store.Create(owner, firstMessage)
	if err != nil {
		return Chat{}, err
	}
	span.SetAttributes(attribute.String("chat.id", c.ID.String()))

	reply, err := svc.gen.Generate(ctx, firstMessage, nil)
	if err != nil {
		svc.logger.Warn().Err(err).Stringer("chat_id", c.ID).Msg("initial generation failed")
		return c, err
	}

	c, err = svc.store.Append(c.ID, owner, RoleAssistant, reply)
	if err != nil {
		return Chat{}, err
	}
	return c, nil
}

// PostMessage appends a user message to a chat and generates the assistant reply,
// using the chat's prior messages as context. The whole turn is one critical
// section for the chat: a second PostMessage for the same chat blocks until this
// one finishes, while other chats proceed in parallel.
//
// On generation failure the user message remains persisted, no assistant message
// is appended, and the returned chat reflects that state alongside the error.
func (svc *Service) PostMessage(ctx context.Context, chatID uuid.UUID, owner string, text string) (Chat, error) {
	ctx, span := svc.tracer.Start(ctx, "PostMessage",
		trace.WithAttributes(attribute.String("chat.id", chatID.String())))
	defer span.End()

	if err := validateMessage(RoleUser, text); err != nil {
		return Chat{}, err
	}

	release, err := svc.store.BeginTurn(chatID, owner)
	if err != nil {
		return Chat{}, err
	}
	defer release()

	// Context is the history before this turn; the generator appends the prompt as
	// the final user turn itself
	before, err := svc.store.Get(chatID, owner)
	if err != nil {
		return Chat{}, err
	}
	history := historyOf(before)

	c, err := svc.store.Append(chatID, owner, RoleUser, text)
	if err != nil {
		return Chat{}, err
	}

	reply, err := svc.gen.Generate(ctx, text, history)
	if err != nil {
		svc.logger.Warn().Err(err).Stringer("chat_id", chatID).Msg("generation failed, user message retained")
		return c, err
	}

	c, err = svc.store.Append(chatID, owner, RoleAssistant, reply)
	if err != nil {
		return Chat{}, err
	}
	return c, nil
}

// ListChats returns summaries of the owner's chats, most recently updated first
func (svc *Service) ListChats(ctx context.Context, owner string) []Summary {
	_, span := svc.tracer.Start(ctx, "ListChats")
	defer span.End()
	return svc.store.List(owner)
}

// RecentChats returns up to limit of the owner's most recently updated chats
func (svc *Service) RecentChats(ctx context.Context, owner string, limit int) []Summary {
	_, span := svc.tracer.Start(ctx, "RecentChats")
	defer span.End()
	return svc.store.Recent(owner, limit)
}

// GetChat returns a chat with its full message history
func (svc *Service) GetChat(ctx context.Context, chatID uuid.UUID, owner string) (Chat, error) {
	_, span := svc.tracer.Start(ctx, "GetChat",
		trace.WithAttributes(attribute.String("chat.id", chatID.String())))
	defer span.End()
	return svc.store.Get(chatID, owner)
}

func historyOf(c Chat) []ai.Turn {
	history := make([]ai.Turn, 0, len(c.Messages))
	for _, m := range c.Messages {
		history = append(history, ai.Turn{Role: string(m.Role), Content: m.Content})
	}
	return history
}
