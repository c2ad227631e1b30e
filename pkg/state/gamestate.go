package state

import (
	"errors"
	"strings"
)

// GameState is the public view of a game session after reset or step.
// It is derived from the engine snapshot and never stored as-is.
type GameState struct {
	SessionID        string   `json:"session_id"`
	Observation      string   `json:"observation"`
	AvailableActions []string `json:"available_actions"`
	Score            int      `json:"score"`
	Reward           *int     `json:"reward,omitempty"` // Score delta; absent on initialization
	Done             bool     `json:"done"`
	MaxSteps         int      `json:"max_steps"`
	CurrentStep      int      `json:"current_step"`
}

// StepRecord is one executed action in a session's history.
type StepRecord struct {
	StepNumber  int    `json:"step_number"`
	Action      string `json:"action"`
	Observation string `json:"observation"`
	Reward      int    `json:"reward"`
	Score       int    `json:"score"`
	Done        bool   `json:"done"`
}

// ResetRequest starts a new session for a game.
type ResetRequest struct {
	GameID string `json:"game_id"`
}

func (r *ResetRequest) Validate() error {
	if strings.TrimSpace(r.GameID) == "" {
		return errors.New("game_id is required")
	}
	return nil
}

// StepRequest executes one action in an existing session.
type StepRequest struct {
	SessionID string `json:"session_id"`
	Action    string `json:"action"`
}

func (r *StepRequest) Validate() error {
	if strings.TrimSpace(r.SessionID) == "" {
		return errors.New("session_id is required")
	}
	if strings.TrimSpace(r.Action) == "" {
		return errors.New("action is required")
	}
	return nil
}
