package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicService implements LLMService for Anthropic Claude
type AnthropicService struct {
	modelName string
	client    anthropic.Client
	logger    *slog.Logger
}

func NewAnthropicService(apiKey, modelName, baseURL string, logger *slog.Logger) *AnthropicService {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &AnthropicService{
		modelName: modelName,
		client:    anthropic.NewClient(opts...),
		logger:    logger,
	}
}

func (a *AnthropicService) Name() string {
	return "anthropic"
}

func (a *AnthropicService) Complete(ctx context.Context, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.modelName),
		MaxTokens:   DefaultMaxTokens,
		Temperature: anthropic.Float(DefaultTemperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	a.logger.Debug("Making Anthropic messages request",
		"model", a.modelName,
		"prompt_length", len(prompt))

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" {
			if text := block.AsText().Text; text != "" {
				parts = append(parts, text)
			}
		}
	}
	if len(parts) == 0 {
		return "", errors.New("no text content in response")
	}
	return strings.Join(parts, "\n"), nil
}
