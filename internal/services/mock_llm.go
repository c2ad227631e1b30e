package services

import (
	"context"
	"sync"
)

// MockLLMAPI is a mock implementation of LLMService for testing
type MockLLMAPI struct {
	CompleteFunc func(ctx context.Context, prompt string) (string, error)

	// Track calls for testing
	CompleteCalls []string

	mu sync.Mutex // protects all fields above
}

// NewMockLLMAPI creates a new mock LLM service
func NewMockLLMAPI() *MockLLMAPI {
	return &MockLLMAPI{
		CompleteCalls: make([]string, 0),
	}
}

// Complete records the prompt and returns CompleteFunc's result
func (m *MockLLMAPI) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.CompleteCalls = append(m.CompleteCalls, prompt)
	fn := m.CompleteFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt)
	}

	// Default behavior - a well-formed reply choosing "look"
	return "理由: 周囲を調べる。\n選択: look", nil
}

func (m *MockLLMAPI) Name() string {
	return "mock"
}

// GetCompleteCalls returns a copy of the recorded prompts
func (m *MockLLMAPI) GetCompleteCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.CompleteCalls...)
}

// Reset clears all recorded calls
func (m *MockLLMAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteCalls = make([]string, 0)
}
