package services

import (
	"context"
	"sync"
)

// MockGameEngine is a mock implementation of GameEngine for testing
type MockGameEngine struct {
	StartFunc func(ctx context.Context, gamePath string, infos RequestInfos) (GameEnv, error)

	// Track calls for testing
	StartCalls []StartCall
	Envs       []*MockGameEnv

	mu sync.Mutex
}

type StartCall struct {
	GamePath string
	Infos    RequestInfos
}

// NewMockGameEngine creates a new mock engine
func NewMockGameEngine() *MockGameEngine {
	return &MockGameEngine{}
}

// Start records the call and returns StartFunc's env, or a fresh MockGameEnv.
func (m *MockGameEngine) Start(ctx context.Context, gamePath string, infos RequestInfos) (GameEnv, error) {
	m.mu.Lock()
	m.StartCalls = append(m.StartCalls, StartCall{GamePath: gamePath, Infos: infos})
	fn := m.StartFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, gamePath, infos)
	}

	env := NewMockGameEnv()
	m.mu.Lock()
	m.Envs = append(m.Envs, env)
	m.mu.Unlock()
	return env, nil
}

// GetStartCalls returns a copy of the recorded Start calls
func (m *MockGameEngine) GetStartCalls() []StartCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]StartCall(nil), m.StartCalls...)
}

// MockGameEnv is a scriptable GameEnv
type MockGameEnv struct {
	ResetFunc func(ctx context.Context) (*Snapshot, error)
	StepFunc  func(ctx context.Context, command string) (*StepResult, error)

	ResetCalls int
	StepCalls  []string
	CloseCalls int

	mu sync.Mutex
}

// NewMockGameEnv creates a mock env that starts in a one-room game
func NewMockGameEnv() *MockGameEnv {
	return &MockGameEnv{}
}

func (m *MockGameEnv) Reset(ctx context.Context) (*Snapshot, error) {
	m.mu.Lock()
	m.ResetCalls++
	fn := m.ResetFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	return &Snapshot{
		Description:        Ptr("You are in a small room. There is a door to the north."),
		Inventory:          Ptr("You are carrying nothing."),
		Score:              Ptr(0),
		AdmissibleCommands: []string{"look", "go north", "inventory"},
	}, nil
}

func (m *MockGameEnv) Step(ctx context.Context, command string) (*StepResult, error) {
	m.mu.Lock()
	m.StepCalls = append(m.StepCalls, command)
	fn := m.StepFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, command)
	}
	return &StepResult{
		State: Snapshot{
			Feedback:           Ptr("You " + command + "."),
			Score:              Ptr(0),
			AdmissibleCommands: []string{"look", "go north", "inventory"},
		},
	}, nil
}

func (m *MockGameEnv) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalls++
	return nil
}

// Closed reports whether Close has been called at least once
func (m *MockGameEnv) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CloseCalls > 0
}

// Ptr returns a pointer to v. Handy for building snapshots.
func Ptr[T any](v T) *T {
	return &v
}
