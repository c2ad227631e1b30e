package services

import "context"

// RequestInfos selects which extra fields the engine includes in each snapshot.
type RequestInfos struct {
	Description        bool `json:"description"`
	Inventory          bool `json:"inventory"`
	AdmissibleCommands bool `json:"admissible_commands"`
	Won                bool `json:"won"`
	Lost               bool `json:"lost"`
}

// DefaultRequestInfos is what the game adapter asks for on every session.
var DefaultRequestInfos = RequestInfos{
	Description:        true,
	Inventory:          true,
	AdmissibleCommands: true,
	Won:                true,
	Lost:               true,
}

// Snapshot is the raw engine state after a reset or step.
// Pointer fields are nil when the engine did not report them.
type Snapshot struct {
	Description        *string  `json:"description,omitempty"`
	Feedback           *string  `json:"feedback,omitempty"`
	Inventory          *string  `json:"inventory,omitempty"`
	Score              *int     `json:"score,omitempty"`
	AdmissibleCommands []string `json:"admissible_commands,omitempty"`
	Won                bool     `json:"won"`
	Lost               bool     `json:"lost"`
}

// StepResult is what a single engine step yields. Reward is the engine's
// native reward and is not surfaced to API clients.
type StepResult struct {
	State  Snapshot `json:"state"`
	Reward float64  `json:"reward"`
	Done   bool     `json:"done"`
}

// GameEngine starts game environments from game files.
type GameEngine interface {
	// Start loads the game at gamePath and returns a handle that has not been reset yet
	Start(ctx context.Context, gamePath string, infos RequestInfos) (GameEnv, error)
}

// GameEnv is a live engine environment owned by exactly one session.
type GameEnv interface {
	Reset(ctx context.Context) (*Snapshot, error)
	Step(ctx context.Context, command string) (*StepResult, error)
	// Close releases the engine side resources. Safe to call more than once.
	Close(ctx context.Context) error
}
