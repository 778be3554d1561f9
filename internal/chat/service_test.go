package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cchalm/task-concierge/internal/ai"
)

// stubGenerator records the last call and returns a canned reply or error
type stubGenerator struct {
	reply       string
	err         error
	lastPrompt  string
	lastHistory []ai.Turn
}

func (sg *stubGenerator) Generate(_ context.Context, prompt string, history []ai.Turn) (string, error) {
	sg.lastPrompt = prompt
	sg.lastHistory = history
	if sg.err != nil {
		return "", sg.err
	}
	return sg.reply, nil
}

func newTestService(gen ai.Generator) (*Service, *Store) {
	store := newTestStore()
	return NewService(store, gen, zerolog.Nop()), store
}

func TestCreateChat_AppendsUserAndAssistant(t *testing.T) {
	gen := &stubGenerator{reply: "happy to help"}
	svc, _ := newTestService(gen)

	c, err := svc.CreateChat(context.Background(), "u1", "track my order")
	require.NoError(t, err)

	require.Len(t, c.Messages, 2)
	assert.Equal(t, RoleUser, c.Messages[0].Role)
	assert.Equal(t, "track my order", c.Messages[0].Content)
	assert.Equal(t, RoleAssistant, c.Messages[1].Role)
	assert.Equal(t, "happy to help", c.Messages[1].Content)

	assert.Equal(t, "track my order", gen.lastPrompt)
	assert.Empty(t, gen.lastHistory)
}

func TestCreateChat_GenerationFailureKeepsUserMessage(t *testing.T) {
	gen := &stubGenerator{err: &ai.GenerationError{Backend: "stub", Err: fmt.Errorf("boom")}}
	svc, store := newTestService(gen)

	c, err := svc.CreateChat(context.Background(), "u1", "track my order")

	var genErr *ai.GenerationError
	require.ErrorAs(t, err, &genErr)
	require.Len(t, c.Messages, 1)
	assert.Equal(t, RoleUser, c.Messages[0].Role)

	// The chat is persisted despite the failure
	persisted, err := store.Get(c.ID, "u1")
	require.NoError(t, err)
	assert.Len(t, persisted.Messages, 1)
}

func TestPostMessage_PassesPriorHistoryAsContext(t *testing.T) {
	gen := &stubGenerator{reply: "first reply"}
	svc, _ := newTestService(gen)

	c, err := svc.CreateChat(context.Background(), "u1", "hello")
	require.NoError(t, err)

	gen.reply = "second reply"
	c, err = svc.PostMessage(context.Background(), c.ID, "u1", "more details please")
	require.NoError(t, err)

	// Context is the prior turns only; the new prompt is passed separately and the
	// generator appends it by its own protocol
	assert.Equal(t, "more details please", gen.lastPrompt)
	require.Len(t, gen.lastHistory, 2)
	assert.Equal(t, ai.Turn{Role: "user", Content: "hello"}, gen.lastHistory[0])
	assert.Equal(t, ai.Turn{Role: "assistant", Content: "first reply"}, gen.lastHistory[1])

	require.Len(t, c.Messages, 4)
	assert.Equal(t, "second reply", c.Messages[3].Content)
}

func TestPostMessage_GenerationFailureKeepsUserMessage(t *testing.T) {
	gen := &stubGenerator{reply: "opening reply"}
	svc, store := newTestService(gen)

	c, err := svc.CreateChat(context.Background(), "u1", "hello")
	require.NoError(t, err)

	gen.err = &ai.GenerationError{Backend: "stub", Err: fmt.Errorf("backend down")}
	c, err = svc.PostMessage(context.Background(), c.ID, "u1", "are you there?")

	var genErr *ai.GenerationError
	require.ErrorAs(t, err, &genErr)
	require.Len(t, c.Messages, 3)
	assert.Equal(t, RoleUser, c.Messages[2].Role)
	assert.Equal(t, "are you there?", c.Messages[2].Content)

	persisted, err := store.Get(c.ID, "u1")
	require.NoError(t, err)
	assert.Len(t, persisted.Messages, 3)
}

func TestPostMessage_UnknownChat(t *testing.T) {
	svc, _ := newTestService(&stubGenerator{reply: "hi"})

	c, err := svc.CreateChat(context.Background(), "u1", "hello")
	require.NoError(t, err)

	_, err = svc.PostMessage(context.Background(), c.ID, "u2", "hello again")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPostMessage_EmptyRejectedBeforeAppend(t *testing.T) {
	svc, store := newTestService(&stubGenerator{reply: "hi"})

	c, err := svc.CreateChat(context.Background(), "u1", "hello")
	require.NoError(t, err)

	_, err = svc.PostMessage(context.Background(), c.ID, "u1", "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	persisted, err := store.Get(c.ID, "u1")
	require.NoError(t, err)
	assert.Len(t, persisted.Messages, 2)
}

func TestListChats_RoundTrip(t *testing.T) {
	gen := &stubGenerator{reply: "reply"}
	svc, _ := newTestService(gen)
	ctx := context.Background()

	first, err := svc.CreateChat(ctx, "u1", "first")
	require.NoError(t, err)
	second, err := svc.CreateChat(ctx, "u1", "second")
	require.NoError(t, err)

	_, err = svc.PostMessage(ctx, first.ID, "u1", "follow-up")
	require.NoError(t, err)

	summaries := svc.ListChats(ctx, "u1")
	require.Len(t, summaries, 2)
	assert.Equal(t, first.ID, summaries[0].ID)
	assert.Equal(t, 4, summaries[0].MessageCount)
	assert.Equal(t, second.ID, summaries[1].ID)
	assert.Equal(t, 2, summaries[1].MessageCount)

	updated, err := svc.GetChat(ctx, first.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, updated.Messages[len(updated.Messages)-1].Timestamp, summaries[0].UpdatedAt)
}

func TestGenerationErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &ai.GenerationError{Backend: "stub", Err: cause}
	assert.ErrorIs(t, err, cause)
}
