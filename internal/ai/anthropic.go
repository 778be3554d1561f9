package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

// AnthropicGenerator generates responses with the Anthropic Messages API, streaming
// and accumulating the response server-side events into a single message.
type AnthropicGenerator struct {
	client          anthropic.Client
	model           anthropic.Model
	maxOutputTokens int64
	systemPrompt    string
}

func NewAnthropicGenerator(
	client anthropic.Client,
	model anthropic.Model,
	maxOutputTokens int64,
	systemPrompt string,
) AnthropicGenerator {
	return AnthropicGenerator{
		client:          client,
		model:           model,
		maxOutputTokens: maxOutputTokens,
		systemPrompt:    systemPrompt,
	}
}

func (g AnthropicGenerator) Generate(ctx context.Context, prompt string, history []Turn) (string, error) {
	messages := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, turn := range history {
		switch turn.Role {
		case RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(turn.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(turn.Content)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)))

	params := anthropic.MessageNewParams{
		Model:     g.model,
		MaxTokens: g.maxOutputTokens,
		Messages:  messages,
	}
	if g.systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: g.systemPrompt},
		}
	}

	stream := g.client.Messages.NewStreaming(ctx, params)
	response := anthropic.Message{}
	for stream.Next() {
		event := stream.Current()
		err := response.Accumulate(event)
		if err != nil {
			return "", &GenerationError{Backend: "anthropic", Err: fmt.Errorf("failed to accumulate response content stream: %w", err)}
		}
	}
	if stream.Err() != nil {
		return "", &GenerationError{Backend: "anthropic", Err: fmt.Errorf("failed to stream response: %w", stream.Err())}
	}
	if response.StopReason == "" {
		return "", &GenerationError{Backend: "anthropic", Err: fmt.Errorf("malformed message: empty stop reason")}
	}

	var text strings.Builder
	for _, contentBlock := range response.Content {
		switch block := contentBlock.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", &GenerationError{Backend: "anthropic", Err: fmt.Errorf("response contained no text content")}
	}
	return text.String(), nil
}
