package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// GeminiOpenAIBaseURL is Gemini's OpenAI-compatible endpoint.
const GeminiOpenAIBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// OpenAIService implements LLMService over the Chat Completions API.
// It serves both OpenAI and Gemini, which speaks the same protocol.
type OpenAIService struct {
	provider  string
	modelName string
	client    openai.Client
	logger    *slog.Logger
}

// NewOpenAIService creates a Chat Completions client. An empty baseURL uses the SDK default.
func NewOpenAIService(provider, apiKey, modelName, baseURL string, logger *slog.Logger) *OpenAIService {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAIService{
		provider:  provider,
		modelName: modelName,
		client:    openai.NewClient(opts...),
		logger:    logger,
	}
}

// NewGeminiService targets Gemini unless baseURL overrides the endpoint
func NewGeminiService(apiKey, modelName, baseURL string, logger *slog.Logger) *OpenAIService {
	if baseURL == "" {
		baseURL = GeminiOpenAIBaseURL
	}
	return NewOpenAIService("gemini", apiKey, modelName, baseURL, logger)
}

func (s *OpenAIService) Name() string {
	return s.provider
}

func (s *OpenAIService) Complete(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:               s.modelName,
		Temperature:         openai.Float(DefaultTemperature),
		MaxCompletionTokens: openai.Int(DefaultMaxTokens),
	}

	s.logger.Debug("Making chat completion request",
		"provider", s.provider,
		"model", s.modelName,
		"prompt_length", len(prompt))

	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%s api error: %w", s.provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", errors.New("empty response content")
	}
	return content, nil
}
