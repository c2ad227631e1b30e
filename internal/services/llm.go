package services

import "context"

// LLMService defines the interface for interacting with an LLM provider
type LLMService interface {
	// Complete sends a single prompt and returns the model's text reply
	Complete(ctx context.Context, prompt string) (string, error)

	// Name identifies the provider in logs
	Name() string
}

const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1024
)
