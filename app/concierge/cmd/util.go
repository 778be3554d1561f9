package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/cchalm/task-concierge/internal/ai"
	"github.com/cchalm/task-concierge/internal/config"
	"github.com/cchalm/task-concierge/internal/telemetry"
	"github.com/cchalm/task-concierge/internal/transport"
)

const (
	defaultAnthropicModel = string(anthropic.ModelClaudeSonnet4_0)
	defaultOpenAIModel    = "gpt-4o-mini"
)

func setupContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	// Setup graceful shutdown
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		logger.Info().Msg("interrupt signal detected, shutting down gracefully")
		cancel()
		<-interrupt
		logger.Fatal().Msg("forcing shutdown")
	}()

	return ctx
}

func createAnthropicClient(apiKey string) anthropic.Client {
	rateLimitedHTTPClient := &http.Client{
		Transport: transport.WithRateLimiting(nil, logger),
	}
	return anthropic.NewClient(
		option.WithHTTPClient(rateLimitedHTTPClient),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(5),
	)
}

// createGenerator builds the response generator for the configured backend
func createGenerator() (ai.Generator, error) {
	switch cfg.Backend {
	case config.BackendAnthropic:
		model := cfg.Model
		if model == "" {
			model = defaultAnthropicModel
		}
		client := createAnthropicClient(cfg.AnthropicAPIKey)
		return ai.NewAnthropicGenerator(client, anthropic.Model(model), 1024, ""), nil
	case config.BackendOpenAI:
		model := cfg.Model
		if model == "" {
			model = defaultOpenAIModel
		}
		return ai.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, model), nil
	default:
		return nil, fmt.Errorf("backend %q has no live generator", cfg.Backend)
	}
}

func createTelemetryProvider(ctx context.Context) (*telemetry.Provider, error) {
	return telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:  cfg.TelemetryEnabled,
		Endpoint: cfg.OTLPEndpoint,
	}, version)
}
