package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIGenerator generates responses against any OpenAI-compatible chat
// completions endpoint. Groq-style providers are supported by pointing baseURL at
// their API.
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func NewOpenAIGenerator(apiKey string, baseURL string, model string) OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return OpenAIGenerator{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: 0.7,
		maxTokens:   500,
	}
}

func (g OpenAIGenerator) Generate(ctx context.Context, prompt string, history []Turn) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	for _, turn := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    turn.Role,
			Content: turn.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", &GenerationError{Backend: "openai", Err: fmt.Errorf("chat completion request failed: %w", err)}
	}
	if len(resp.Choices) == 0 {
		return "", &GenerationError{Backend: "openai", Err: fmt.Errorf("response contained no choices")}
	}
	return resp.Choices[0].Message.Content, nil
}
